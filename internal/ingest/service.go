// Package ingest provides the activity event intake service.
// It validates incoming platform activity, computes routing keys, and
// publishes to the message queue for asynchronous aggregation.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"vigil-go/internal/domain"
	"vigil-go/internal/metrics"
	"vigil-go/internal/queue"
)

// Service handles activity event intake.
type Service struct {
	producer queue.Producer
	logger   *slog.Logger
}

// NewService creates a new ingest service.
func NewService(producer queue.Producer, logger *slog.Logger) *Service {
	return &Service{
		producer: producer,
		logger:   logger,
	}
}

// IngestEvent validates an incoming activity event and publishes it to the
// message queue. Events with a zero timestamp are stamped with the receive
// time.
func (s *Service) IngestEvent(ctx context.Context, event *domain.ActivityEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	metrics.ActivityEventsTotal.WithLabelValues(string(event.Kind)).Inc()

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("failed to serialize activity event", "error", err)
		return fmt.Errorf("failed to serialize activity event: %w", err)
	}

	// Events for the same user (or the same gauge) share a partition key so
	// a single consumer sees them in order.
	msg := &queue.Message{
		Key:   []byte(computePartitionKey(event)),
		Value: payload,
		Headers: map[string]string{
			"kind": string(event.Kind),
		},
	}

	publishStart := time.Now()
	if err := s.producer.Publish(ctx, msg); err != nil {
		s.logger.Error("failed to publish activity event", "error", err, "kind", string(event.Kind))
		return fmt.Errorf("failed to publish activity event: %w", err)
	}
	metrics.QueuePublishLatency.Observe(time.Since(publishStart).Seconds())

	s.logger.Debug("activity event published",
		"kind", string(event.Kind),
		"user_id", event.UserID,
	)

	return nil
}

// computePartitionKey generates a deterministic partition key for an event.
func computePartitionKey(event *domain.ActivityEvent) string {
	var scope string
	switch event.Kind {
	case domain.ActivityGauge:
		scope = event.Gauge
	default:
		scope = event.UserID
	}
	input := string(event.Kind) + ":" + scope
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:8])
}
