// Package domain contains the core business entities and value objects for VigilGo.
// These models represent the ubiquitous language of the alert engine domain.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrDefinitionNotFound is returned when an alert definition cannot be found.
var ErrDefinitionNotFound = errors.New("alert definition not found")

// ChannelKind identifies the delivery mechanism for a triggered alert.
type ChannelKind string

const (
	// ChannelEmail delivers one message per recipient over SMTP.
	ChannelEmail ChannelKind = "EMAIL"
	// ChannelSystem delivers an in-app notification over the broadcast hub.
	ChannelSystem ChannelKind = "SYSTEM"
	// ChannelWebhook is an outbound HTTP delivery extension point.
	ChannelWebhook ChannelKind = "WEBHOOK"
)

// IsValid returns true if the channel kind is a known valid value.
func (c ChannelKind) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelSystem, ChannelWebhook:
		return true
	default:
		return false
	}
}

// Priority represents the urgency of a triggered alert.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// IsValid returns true if the priority is a known valid value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Audible returns true if notifications for this priority should request a
// sound/toast cue downstream.
func (p Priority) Audible() bool {
	return p == PriorityHigh || p == PriorityCritical
}

// AlertDefinition is an operator-authored alert: a condition over platform
// metrics plus the channel it fires on. Run-state fields are written
// exclusively by the scheduler and surfaced read-only for audit.
type AlertDefinition struct {
	// ID is the store-assigned identifier.
	ID int64 `json:"id"`

	// Name is a short operator-facing label.
	Name string `json:"name"`

	// Description explains what the alert watches for.
	Description string `json:"description"`

	// Condition is the authored expression, in either the flat infix
	// grammar or the JSON tree grammar.
	Condition string `json:"condition"`

	// Channel selects the delivery mechanism when the alert fires.
	Channel ChannelKind `json:"channel"`

	// Recipients is the ordered delivery target list. Email addresses for
	// EMAIL, user identifiers for SYSTEM (empty means all administrators).
	Recipients []string `json:"recipients"`

	// Active definitions are evaluated on every sweep. Disabling is a soft
	// operation; the engine never deletes definitions itself.
	Active bool `json:"active"`

	// Priority indicates the urgency carried into notifications.
	Priority Priority `json:"priority"`

	// CreatedBy is the identifier of the operator who authored the alert.
	CreatedBy int64 `json:"created_by"`

	// CreatedAt is when the definition was created.
	CreatedAt time.Time `json:"created_at"`

	// LastTriggeredAt is set only when a trigger actually fires, never on a
	// plain evaluation. Nil until the first trigger.
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`

	// TriggerCount is incremented on every successful trigger and never
	// decreases.
	TriggerCount int64 `json:"trigger_count"`

	// LastResult records the outcome of the most recent trigger attempt,
	// e.g. "TRIGGERED" or "ERROR: ...".
	LastResult string `json:"last_result,omitempty"`
}

// Validation errors for AlertDefinition.
var (
	ErrEmptyName       = errors.New("name is required")
	ErrEmptyCondition  = errors.New("condition is required")
	ErrInvalidChannel  = errors.New("channel must be 'EMAIL', 'SYSTEM', or 'WEBHOOK'")
	ErrInvalidPriority = errors.New("priority must be 'LOW', 'MEDIUM', 'HIGH', or 'CRITICAL'")
	ErrEmptyRecipients = errors.New("at least one recipient is required for email alerts")
)

// Validate checks structural fields of the definition. Condition syntax is
// validated separately by the condition evaluator against the catalog.
func (d *AlertDefinition) Validate() error {
	if d.Name == "" {
		return ErrEmptyName
	}
	if d.Condition == "" {
		return ErrEmptyCondition
	}
	if !d.Channel.IsValid() {
		return ErrInvalidChannel
	}
	if !d.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if d.Channel == ChannelEmail && len(d.Recipients) == 0 {
		return ErrEmptyRecipients
	}
	return nil
}

// InCooldown returns true if the definition triggered within the cooldown
// window ending at now. Definitions in cooldown are skipped without
// evaluation.
func (d *AlertDefinition) InCooldown(now time.Time, window time.Duration) bool {
	if d.LastTriggeredAt == nil {
		return false
	}
	return now.Sub(*d.LastTriggeredAt) < window
}

// RecordTrigger updates run-state for a successful trigger: the count goes up,
// the timestamp is set, and the result is reset to TRIGGERED. Dispatch errors
// discovered afterwards overwrite LastResult but keep the count.
func (d *AlertDefinition) RecordTrigger(now time.Time) {
	d.TriggerCount++
	t := now
	d.LastTriggeredAt = &t
	d.LastResult = "TRIGGERED"
}

// RecordDispatchError notes a delivery failure for the most recent trigger.
func (d *AlertDefinition) RecordDispatchError(err error) {
	d.LastResult = fmt.Sprintf("ERROR: %v", err)
}

// DefinitionFilter provides filtering options for querying alert definitions.
type DefinitionFilter struct {
	Channel ChannelKind
	Active  *bool
	Limit   int
	Offset  int
}
