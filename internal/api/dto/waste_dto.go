package dto

import (
	"strings"
	"time"

	"github.com/reciclamais/waste-service/internal/domain"
	apperrors "github.com/reciclamais/waste-service/pkg/util/errorutil"
)

// CreateWasteRequest payload. Date is a calendar day (YYYY-MM-DD).
type CreateWasteRequest struct {
	Type        domain.WasteType `json:"type"`
	Weight      float64          `json:"weight"`
	Date        string           `json:"date" validate:"required,datetime=2006-01-02"`
	Recycled    *bool            `json:"recycled" validate:"required"`
	Description string           `json:"description"`
}

// ToDomain converts the request into an unsaved record. Type names are
// case-insensitive. Field rules beyond the date format and recycled flag are
// enforced by the service.
func (r CreateWasteRequest) ToDomain() (*domain.Waste, error) {
	day, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid waste record", map[string]any{"date": "datetime=2006-01-02"})
	}
	wasteType := r.Type
	if upper := domain.WasteType(strings.ToUpper(strings.TrimSpace(string(r.Type)))); upper.Valid() {
		wasteType = upper
	}
	return &domain.Waste{
		Type:        wasteType,
		Weight:      r.Weight,
		Date:        day,
		Recycled:    r.Recycled != nil && *r.Recycled,
		Description: r.Description,
	}, nil
}

// WasteResponse is the public view of a record.
type WasteResponse struct {
	ID          string           `json:"id"`
	Type        domain.WasteType `json:"type"`
	Weight      float64          `json:"weight"`
	Date        string           `json:"date"`
	Recycled    bool             `json:"recycled"`
	Description string           `json:"description,omitempty"`
	UserID      string           `json:"user_id"`
	UserName    string           `json:"user_name"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewWasteResponse maps a record to its public view.
func NewWasteResponse(w domain.Waste) WasteResponse {
	return WasteResponse{
		ID:          w.ID,
		Type:        w.Type,
		Weight:      w.Weight,
		Date:        w.Date.Format(time.DateOnly),
		Recycled:    w.Recycled,
		Description: w.Description,
		UserID:      w.UserID,
		UserName:    w.UserName,
		CreatedAt:   w.CreatedAt,
	}
}

// NewWasteList maps records preserving order.
func NewWasteList(records []domain.Waste) []WasteResponse {
	items := make([]WasteResponse, 0, len(records))
	for _, w := range records {
		items = append(items, NewWasteResponse(w))
	}
	return items
}
