package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/reciclamais/waste-service/internal/domain"
	"github.com/reciclamais/waste-service/internal/events"
	"github.com/reciclamais/waste-service/internal/repository"
	apperrors "github.com/reciclamais/waste-service/pkg/util/errorutil"
	"github.com/reciclamais/waste-service/pkg/util/validation"
)

// WasteService records disposal events and serves scoped reads over them.
type WasteService struct {
	wastes     repository.WasteRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// Period bounds a read. A nil bound leaves that side open.
type Period struct {
	From *time.Time
	To   *time.Time
}

// WasteQuery narrows Search. An empty OwnerEmail matches every owner.
type WasteQuery struct {
	OwnerEmail string
	Period     Period
}

// WasteDependencies bundles repositories for waste service.
type WasteDependencies struct {
	WasteRepo  repository.WasteRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewWasteService builds the service.
func NewWasteService(deps WasteDependencies) *WasteService {
	return &WasteService{
		wastes:     deps.WasteRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// Save attaches the owner identified by ownerEmail to the record and stores it.
// The description is trimmed and the date truncated to its day before
// validation. waste is updated with the stored record only on success.
func (s *WasteService) Save(ctx context.Context, waste *domain.Waste, ownerEmail string) error {
	ownerEmail = normalizeEmail(ownerEmail)
	if ownerEmail == "" {
		return apperrors.NewValidationError("owner email is required", map[string]any{"email": "required"})
	}

	owner, err := s.lookupOwner(ctx, ownerEmail)
	if err != nil {
		return err
	}

	record := *waste
	record.Description = strings.TrimSpace(record.Description)
	if !record.Date.IsZero() {
		record.Date = domain.Day(record.Date)
	}
	if err := validation.Struct(record, "invalid waste record"); err != nil {
		return err
	}

	record.UserID = owner.ID
	record.UserName = owner.Name
	if err := s.wastes.Create(ctx, &record); err != nil {
		return apperrors.NewPersistenceError("failed to save waste record", err)
	}
	*waste = record

	s.logger.Info("waste recorded",
		zap.String("waste_id", waste.ID),
		zap.String("user_id", owner.ID),
		zap.String("type", string(waste.Type)),
		zap.Float64("weight", waste.Weight))
	s.dispatcher.Publish(ctx, events.Event{
		Type:   events.EventWasteRecorded,
		UserID: owner.ID,
		Payload: events.WasteRecordedPayload{
			WasteID:  waste.ID,
			Type:     waste.Type,
			Weight:   waste.Weight,
			Recycled: waste.Recycled,
			Date:     waste.Date.Format(time.DateOnly),
		},
	})
	return nil
}

// FindAll returns every stored record ordered by date.
func (s *WasteService) FindAll(ctx context.Context) ([]domain.Waste, error) {
	records, err := s.wastes.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to list waste records", err)
	}
	return records, nil
}

// FindByPeriod returns records dated within [from, to], both days inclusive.
func (s *WasteService) FindByPeriod(ctx context.Context, from, to time.Time) ([]domain.Waste, error) {
	from, to = domain.Day(from), domain.Day(to)
	if from.After(to) {
		return nil, apperrors.NewValidationError("invalid period", map[string]any{
			"from": from.Format(time.DateOnly),
			"to":   to.Format(time.DateOnly),
		})
	}
	records, err := s.wastes.ListByPeriod(ctx, from, to)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to list waste records", err)
	}
	return records, nil
}

// FindByUser returns the records owned by the user with the given email.
func (s *WasteService) FindByUser(ctx context.Context, email string) ([]domain.Waste, error) {
	owner, err := s.lookupOwner(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	records, err := s.wastes.ListByUser(ctx, owner.ID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to list waste records", err)
	}
	return records, nil
}

// Search combines the owner and period filters.
func (s *WasteService) Search(ctx context.Context, q WasteQuery) ([]domain.Waste, error) {
	if q.OwnerEmail != "" {
		records, err := s.FindByUser(ctx, q.OwnerEmail)
		if err != nil {
			return nil, err
		}
		return s.filterPeriod(records, q.Period)
	}
	if q.Period.From == nil && q.Period.To == nil {
		return s.FindAll(ctx)
	}
	from, to := s.bounds(q.Period)
	return s.FindByPeriod(ctx, from, to)
}

func (s *WasteService) bounds(p Period) (time.Time, time.Time) {
	var from time.Time
	if p.From != nil {
		from = *p.From
	}
	to := domain.OpenEnd
	if p.To != nil {
		to = *p.To
	}
	return from, to
}

func (s *WasteService) filterPeriod(records []domain.Waste, p Period) ([]domain.Waste, error) {
	if p.From == nil && p.To == nil {
		return records, nil
	}
	from, to := s.bounds(p)
	from, to = domain.Day(from), domain.Day(to)
	if from.After(to) {
		return nil, apperrors.NewValidationError("invalid period", map[string]any{
			"from": from.Format(time.DateOnly),
			"to":   to.Format(time.DateOnly),
		})
	}
	filtered := make([]domain.Waste, 0, len(records))
	for _, w := range records {
		d := domain.Day(w.Date)
		if !d.Before(from) && !d.After(to) {
			filtered = append(filtered, w)
		}
	}
	return filtered, nil
}

var demoRecords = []struct {
	wasteType   domain.WasteType
	weight      float64
	monthsAgo   int
	description string
}{
	{domain.WastePlastic, 20, 0, "Garrafas PET e embalagens plásticas"},
	{domain.WastePaper, 15, 1, "Jornais, revistas e papelão"},
	{domain.WasteGlass, 10, 2, "Garrafas e potes de vidro"},
}

// GenerateDemoData logs a small recycled history for the owner spanning the
// current and the two previous months.
func (s *WasteService) GenerateDemoData(ctx context.Context, ownerEmail string) ([]domain.Waste, error) {
	today := domain.Day(s.now().UTC())
	created := make([]domain.Waste, 0, len(demoRecords))
	for _, demo := range demoRecords {
		waste := &domain.Waste{
			Type:        demo.wasteType,
			Weight:      demo.weight,
			Date:        today.AddDate(0, -demo.monthsAgo, 0),
			Recycled:    true,
			Description: demo.description,
		}
		if err := s.Save(ctx, waste, ownerEmail); err != nil {
			return nil, err
		}
		created = append(created, *waste)
	}
	return created, nil
}

func (s *WasteService) lookupOwner(ctx context.Context, email string) (*domain.User, error) {
	owner, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return nil, apperrors.NewPersistenceError("failed to load user", err)
	}
	return owner, nil
}
