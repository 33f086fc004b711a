// Package tracker folds platform activity events from the queue into the
// metrics store the snapshot builder reads.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"vigil-go/internal/domain"
	"vigil-go/internal/metrics"
	"vigil-go/internal/queue"
	"vigil-go/internal/store"
)

// Service consumes activity events and maintains the aggregated counters.
type Service struct {
	consumer queue.Consumer
	metrics  store.MetricsStore
	logger   *slog.Logger
}

// NewService creates a new tracker service.
func NewService(consumer queue.Consumer, ms store.MetricsStore, logger *slog.Logger) *Service {
	return &Service{
		consumer: consumer,
		metrics:  ms,
		logger:   logger,
	}
}

// Start begins consuming activity events from the queue.
// This is a blocking call that runs until the context is canceled.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("starting activity tracker")
	return s.consumer.Start(ctx, s.handleMessage)
}

// handleMessage is the callback for processing each message from the queue.
func (s *Service) handleMessage(ctx context.Context, msg *queue.Message) error {
	var event domain.ActivityEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		s.logger.Error("failed to deserialize activity event", "error", err)
		// Return nil to avoid reprocessing malformed messages
		return nil
	}

	if err := event.Validate(); err != nil {
		s.logger.Warn("dropping invalid activity event", "error", err)
		return nil
	}

	if err := s.apply(ctx, &event); err != nil {
		metrics.ActivityEventsProcessedTotal.WithLabelValues(string(event.Kind), "failure").Inc()
		s.logger.Error("failed to apply activity event",
			"kind", string(event.Kind),
			"error", err,
		)
		return err
	}

	metrics.ActivityEventsProcessedTotal.WithLabelValues(string(event.Kind), "success").Inc()
	return nil
}

// apply routes one event to the matching counter update.
func (s *Service) apply(ctx context.Context, event *domain.ActivityEvent) error {
	switch event.Kind {
	case domain.ActivityDocumentProcessed:
		return s.metrics.IncrDocuments(ctx, false)
	case domain.ActivityDocumentFailed:
		return s.metrics.IncrDocuments(ctx, true)
	case domain.ActivityUserSeen:
		return s.metrics.TouchUser(ctx, event.UserID)
	case domain.ActivityGauge:
		return s.metrics.SetGauge(ctx, event.Gauge, event.Value)
	default:
		// Validate rejects unknown kinds before we get here.
		return fmt.Errorf("unhandled activity kind %q", event.Kind)
	}
}

// Stop gracefully stops the tracker.
func (s *Service) Stop() error {
	s.logger.Info("stopping activity tracker")
	return s.consumer.Close()
}
