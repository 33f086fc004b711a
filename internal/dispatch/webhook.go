package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"

	"vigil-go/internal/domain"
)

// WebhookSender records webhook deliveries. Outbound HTTP delivery with
// retries is not implemented yet; the payload is logged so the contract and
// routing are exercised end to end.
// TODO: post the payload to each recipient URL once the retry policy is settled.
type WebhookSender struct {
	logger *slog.Logger
}

// NewWebhookSender creates a webhook sender.
func NewWebhookSender(logger *slog.Logger) *WebhookSender {
	return &WebhookSender{logger: logger}
}

// Send logs the serialized trigger for each recipient URL.
func (s *WebhookSender) Send(_ context.Context, event *domain.TriggerEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	for _, url := range event.Recipients {
		s.logger.Info("webhook delivery",
			"alert_id", event.AlertID,
			"url", url,
			"payload_bytes", len(payload),
		)
	}
	return nil
}
