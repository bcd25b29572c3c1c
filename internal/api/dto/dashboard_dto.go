package dto

import (
	"time"

	"github.com/reciclamais/waste-service/internal/domain"
)

// TypeBreakdownResponse is one row of the per-type distribution.
type TypeBreakdownResponse struct {
	Type       domain.WasteType `json:"type"`
	Quantity   int              `json:"quantity"`
	Percentage float64          `json:"percentage"`
}

// UserRankingResponse is one row of the recycling ranking.
type UserRankingResponse struct {
	Name          string  `json:"name"`
	TotalRecycled float64 `json:"total_recycled"`
}

// ForecastResponse is the next-month projection.
type ForecastResponse struct {
	PredictedAmount float64 `json:"predicted_amount"`
	Confidence      float64 `json:"confidence"`
	Month           string  `json:"month,omitempty"`
	MonthsObserved  int     `json:"months_observed"`
}

// DashboardResponse is the dashboard view model.
type DashboardResponse struct {
	TotalWaste    float64                 `json:"total_waste"`
	WasteRecycled float64                 `json:"waste_recycled"`
	RecyclingRate float64                 `json:"recycling_rate"`
	TypeBreakdown []TypeBreakdownResponse `json:"type_breakdown"`
	UserRankings  []UserRankingResponse   `json:"user_rankings"`
	Forecast      ForecastResponse        `json:"forecast"`
	RecordCount   int                     `json:"record_count"`
	From          string                  `json:"from,omitempty"`
	To            string                  `json:"to,omitempty"`
	GeneratedAt   time.Time               `json:"generated_at"`
}

// NewForecastResponse maps a forecast.
func NewForecastResponse(f domain.Forecast) ForecastResponse {
	return ForecastResponse{
		PredictedAmount: f.PredictedAmount,
		Confidence:      f.Confidence,
		Month:           f.Month,
		MonthsObserved:  f.MonthsObserved,
	}
}

// NewDashboardResponse maps a dashboard to its view model.
func NewDashboardResponse(d *domain.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		TotalWaste:    d.TotalWaste,
		WasteRecycled: d.WasteRecycled,
		RecyclingRate: d.RecyclingRate,
		TypeBreakdown: make([]TypeBreakdownResponse, 0, len(d.TypeBreakdown)),
		UserRankings:  make([]UserRankingResponse, 0, len(d.UserRankings)),
		Forecast:      NewForecastResponse(d.Forecast),
		RecordCount:   d.RecordCount,
		GeneratedAt:   d.GeneratedAt,
	}
	for _, b := range d.TypeBreakdown {
		resp.TypeBreakdown = append(resp.TypeBreakdown, TypeBreakdownResponse{
			Type:       b.Type,
			Quantity:   b.Quantity,
			Percentage: b.Percentage,
		})
	}
	for _, r := range d.UserRankings {
		resp.UserRankings = append(resp.UserRankings, UserRankingResponse{
			Name:          r.Name,
			TotalRecycled: r.TotalRecycled,
		})
	}
	if d.From != nil {
		resp.From = d.From.Format(time.DateOnly)
	}
	if d.To != nil {
		resp.To = d.To.Format(time.DateOnly)
	}
	return resp
}
