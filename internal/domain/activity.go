package domain

import (
	"errors"
	"time"
)

// ActivityKind classifies an incoming platform activity event.
type ActivityKind string

const (
	// ActivityDocumentProcessed records a successfully classified document.
	ActivityDocumentProcessed ActivityKind = "document_processed"
	// ActivityDocumentFailed records a document that failed classification.
	ActivityDocumentFailed ActivityKind = "document_failed"
	// ActivityUserSeen records that a user was active.
	ActivityUserSeen ActivityKind = "user_activity"
	// ActivityGauge carries a sampled infrastructure value such as
	// queue_size, cpu_usage, memory_usage or api_latency.
	ActivityGauge ActivityKind = "gauge"
)

// IsValid returns true if the activity kind is a known valid value.
func (k ActivityKind) IsValid() bool {
	switch k {
	case ActivityDocumentProcessed, ActivityDocumentFailed, ActivityUserSeen, ActivityGauge:
		return true
	default:
		return false
	}
}

// ActivityEvent is an incoming platform event folded into the metric
// counters that alert conditions are evaluated against.
type ActivityEvent struct {
	// Kind classifies the event.
	Kind ActivityKind `json:"kind"`

	// UserID identifies the acting user. Required for user_activity.
	UserID string `json:"user_id,omitempty"`

	// Gauge names the sampled metric. Required for gauge events.
	Gauge string `json:"gauge,omitempty"`

	// Value is the sampled value for gauge events.
	Value float64 `json:"value,omitempty"`

	// OccurredAt is when the event happened on the platform. Zero means
	// "now" and is stamped at ingestion.
	OccurredAt time.Time `json:"occurred_at,omitempty"`
}

// Validation errors for ActivityEvent.
var (
	ErrInvalidActivityKind = errors.New("kind must be 'document_processed', 'document_failed', 'user_activity', or 'gauge'")
	ErrEmptyUserID         = errors.New("user_id is required for user_activity events")
	ErrEmptyGaugeName      = errors.New("gauge is required for gauge events")
)

// Validate checks if the event has all required fields with valid values.
func (e *ActivityEvent) Validate() error {
	if !e.Kind.IsValid() {
		return ErrInvalidActivityKind
	}
	if e.Kind == ActivityUserSeen && e.UserID == "" {
		return ErrEmptyUserID
	}
	if e.Kind == ActivityGauge && e.Gauge == "" {
		return ErrEmptyGaugeName
	}
	return nil
}
