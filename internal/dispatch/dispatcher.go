// Package dispatch routes fired alerts to their delivery channel.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vigil-go/internal/domain"
	"vigil-go/internal/metrics"
)

// Dispatcher delivers trigger events on the channel their definition names.
type Dispatcher struct {
	email       EmailSender
	broadcaster Broadcaster
	webhook     *WebhookSender
	logger      *slog.Logger
}

// NewDispatcher creates a dispatcher with the given channel backends.
func NewDispatcher(email EmailSender, broadcaster Broadcaster, webhook *WebhookSender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		email:       email,
		broadcaster: broadcaster,
		webhook:     webhook,
		logger:      logger,
	}
}

// Dispatch delivers one trigger event under the context's deadline. An
// unsupported channel is logged and dropped rather than failing the sweep; a
// definition with a bad channel must not block the remaining definitions.
func (d *Dispatcher) Dispatch(ctx context.Context, event *domain.TriggerEvent) error {
	start := time.Now()
	defer func() {
		metrics.DispatchLatency.Observe(time.Since(start).Seconds())
	}()

	if !event.Channel.IsValid() {
		d.logger.Warn("unsupported alert channel, dropping notification",
			"alert_id", event.AlertID,
			"channel", string(event.Channel),
		)
		return nil
	}

	if err := d.deliver(ctx, event); err != nil {
		metrics.DispatchFailuresTotal.WithLabelValues(string(event.Channel)).Inc()
		return err
	}

	metrics.TriggersTotal.WithLabelValues(string(event.Channel), string(event.Priority)).Inc()
	return nil
}

// deliver runs the channel sink, bounded by the context's deadline even when
// the sink itself ignores its context (a stalled SMTP server, a wedged
// websocket peer). On expiry the sink goroutine is abandoned and the delivery
// counts as a channel failure; it must not stall the sweep.
func (d *Dispatcher) deliver(ctx context.Context, event *domain.TriggerEvent) error {
	done := make(chan error, 1)
	go func() {
		switch event.Channel {
		case domain.ChannelEmail:
			done <- d.dispatchEmail(ctx, event)
		case domain.ChannelSystem:
			done <- d.dispatchSystem(ctx, event)
		case domain.ChannelWebhook:
			done <- d.webhook.Send(ctx, event)
		}
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("dispatch on channel %s gave up: %w", event.Channel, ctx.Err())
	}
}

// dispatchEmail sends the notification to every recipient independently.
// Delivery succeeds if at least one recipient got the message.
func (d *Dispatcher) dispatchEmail(ctx context.Context, event *domain.TriggerEvent) error {
	subject := event.Subject()
	body := event.Body()

	var delivered int
	var lastErr error
	for _, recipient := range event.Recipients {
		if err := d.email.Send(ctx, recipient, subject, body); err != nil {
			d.logger.Error("email delivery failed",
				"alert_id", event.AlertID,
				"recipient", recipient,
				"error", err,
			)
			lastErr = err
			continue
		}
		delivered++
	}

	if delivered == 0 && lastErr != nil {
		return fmt.Errorf("email delivery failed for all %d recipients: %w", len(event.Recipients), lastErr)
	}

	d.logger.Info("alert emailed",
		"alert_id", event.AlertID,
		"delivered", delivered,
		"recipients", len(event.Recipients),
	)
	return nil
}

// dispatchSystem pushes an in-app notification. A single recipient targets
// that user; anything else broadcasts to all connected administrators.
func (d *Dispatcher) dispatchSystem(ctx context.Context, event *domain.TriggerEvent) error {
	notification := &domain.Notification{
		Title:     event.Subject(),
		Message:   event.Body(),
		Type:      "alert",
		Priority:  event.Priority,
		ActionURL: event.ActionURL(),
		PlaySound: event.Priority.Audible(),
	}
	if len(event.Recipients) == 1 {
		notification.TargetUserID = event.Recipients[0]
	}

	if err := d.broadcaster.Notify(ctx, notification); err != nil {
		return fmt.Errorf("system notification failed: %w", err)
	}

	d.logger.Info("alert broadcast",
		"alert_id", event.AlertID,
		"target_user_id", notification.TargetUserID,
		"play_sound", notification.PlaySound,
	)
	return nil
}
