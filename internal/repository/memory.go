package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/reciclamais/waste-service/internal/domain"
)

// MemoryUserRepository keeps users in process memory. It is used when no
// Postgres DSN is configured and as a test double.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
}

// NewMemoryUserRepository constructs an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return ErrDuplicateEmail
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[key] = user.ID
	return nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now().UTC()
	existing.Name = user.Name
	existing.PasswordHash = user.PasswordHash
	existing.Role = user.Role
	existing.UpdatedAt = user.UpdatedAt
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[strings.ToLower(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryUserRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}

// MemoryWasteRepository keeps waste records in process memory.
type MemoryWasteRepository struct {
	mu      sync.RWMutex
	records []domain.Waste
}

// NewMemoryWasteRepository constructs an empty repository.
func NewMemoryWasteRepository() *MemoryWasteRepository {
	return &MemoryWasteRepository{}
}

func (r *MemoryWasteRepository) Create(_ context.Context, waste *domain.Waste) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	waste.ID = uuid.NewString()
	waste.CreatedAt = time.Now().UTC()
	r.records = append(r.records, *waste)
	return nil
}

func (r *MemoryWasteRepository) ListAll(_ context.Context) ([]domain.Waste, error) {
	return r.filter(func(domain.Waste) bool { return true }), nil
}

func (r *MemoryWasteRepository) ListByPeriod(_ context.Context, from, to time.Time) ([]domain.Waste, error) {
	start, end := domain.Day(from), domain.Day(to)
	return r.filter(func(w domain.Waste) bool {
		d := domain.Day(w.Date)
		return !d.Before(start) && !d.After(end)
	}), nil
}

func (r *MemoryWasteRepository) ListByUser(_ context.Context, userID string) ([]domain.Waste, error) {
	return r.filter(func(w domain.Waste) bool { return w.UserID == userID }), nil
}

func (r *MemoryWasteRepository) filter(keep func(domain.Waste) bool) []domain.Waste {
	r.mu.RLock()
	result := make([]domain.Waste, 0, len(r.records))
	for _, w := range r.records {
		if keep(w) {
			result = append(result, w)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}
