package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/reciclamais/waste-service/internal/analytics"
	"github.com/reciclamais/waste-service/internal/domain"
	"github.com/reciclamais/waste-service/internal/observability"
)

// DashboardService assembles dashboards from a fresh read of the records.
type DashboardService struct {
	wastes  *WasteService
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewDashboardService builds the service.
func NewDashboardService(wastes *WasteService, metrics *observability.Metrics, logger *zap.Logger) *DashboardService {
	return &DashboardService{wastes: wastes, metrics: metrics, logger: logger, now: time.Now}
}

// Build reads the records in the period once and derives every metric and
// the forecast from that snapshot.
func (s *DashboardService) Build(ctx context.Context, period Period) (*domain.Dashboard, error) {
	started := time.Now()

	records, err := s.records(ctx, period)
	if err != nil {
		return nil, err
	}

	summary := analytics.Summarize(records)
	dashboard := &domain.Dashboard{
		TotalWaste:    summary.TotalWeight,
		WasteRecycled: summary.RecycledWeight,
		RecyclingRate: summary.RecyclingRate,
		TypeBreakdown: summary.ByType,
		UserRankings:  summary.Rankings,
		Forecast:      analytics.PredictNextMonth(records),
		RecordCount:   len(records),
		From:          period.From,
		To:            period.To,
		GeneratedAt:   s.now().UTC(),
	}

	elapsed := time.Since(started)
	s.metrics.ObserveDashboardBuild(elapsed)
	s.logger.Debug("dashboard built",
		zap.Int("records", len(records)),
		zap.Duration("elapsed", elapsed))
	return dashboard, nil
}

// Forecast projects the month after the last recorded one over every record.
func (s *DashboardService) Forecast(ctx context.Context) (domain.Forecast, error) {
	records, err := s.wastes.FindAll(ctx)
	if err != nil {
		return domain.Forecast{}, err
	}
	return analytics.PredictNextMonth(records), nil
}

func (s *DashboardService) records(ctx context.Context, period Period) ([]domain.Waste, error) {
	return s.wastes.Search(ctx, WasteQuery{Period: period})
}
