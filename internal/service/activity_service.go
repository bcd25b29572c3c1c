package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/reciclamais/waste-service/internal/events"
	"github.com/reciclamais/waste-service/internal/observability"
)

// ActivityService reacts to domain events by logging them and feeding metrics.
type ActivityService struct {
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserRegistered, a.handleUserRegistered)
	a.dispatcher.Subscribe(events.EventWasteRecorded, a.handleWasteRecorded)
}

func (a *ActivityService) handleUserRegistered(_ context.Context, event events.Event) error {
	a.logger.Info("UserRegistered", zap.String("event_id", event.ID), zap.String("user_id", event.UserID))
	a.metrics.RecordUserRegistered()
	return nil
}

func (a *ActivityService) handleWasteRecorded(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.WasteRecordedPayload)
	if !ok {
		a.logger.Warn("WasteRecorded with unexpected payload", zap.String("event_id", event.ID))
		return nil
	}
	a.logger.Info("WasteRecorded",
		zap.String("event_id", event.ID),
		zap.String("user_id", event.UserID),
		zap.String("waste_id", payload.WasteID),
		zap.String("type", string(payload.Type)),
		zap.Bool("recycled", payload.Recycled))
	a.metrics.RecordWaste(string(payload.Type), payload.Recycled, payload.Weight)
	return nil
}
