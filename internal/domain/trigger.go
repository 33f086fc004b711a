package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// TriggerEvent is the payload handed to the dispatcher when a condition
// evaluates true. It is ephemeral; only the definition's run-state persists.
type TriggerEvent struct {
	// ID uniquely identifies this firing for log correlation.
	ID string `json:"id"`

	// AlertID is the definition that fired.
	AlertID int64 `json:"alert_id"`

	// Name and Description are copied from the definition for notification text.
	Name        string `json:"name"`
	Description string `json:"description"`

	// Priority and Channel select formatting and routing downstream.
	Priority Priority    `json:"priority"`
	Channel  ChannelKind `json:"channel"`

	// Recipients is the definition's delivery target list.
	Recipients []string `json:"recipients"`

	// Excerpt holds the variables the condition referenced with their
	// snapshot values, for human-readable notification bodies.
	Excerpt map[string]string `json:"excerpt,omitempty"`

	// FiredAt is the sweep timestamp at which the condition held.
	FiredAt time.Time `json:"fired_at"`
}

// NewTriggerEvent builds the dispatch payload for a fired definition.
func NewTriggerEvent(def *AlertDefinition, excerpt map[string]string, firedAt time.Time) *TriggerEvent {
	return &TriggerEvent{
		ID:          uuid.New().String(),
		AlertID:     def.ID,
		Name:        def.Name,
		Description: def.Description,
		Priority:    def.Priority,
		Channel:     def.Channel,
		Recipients:  append([]string(nil), def.Recipients...),
		Excerpt:     excerpt,
		FiredAt:     firedAt,
	}
}

// Subject returns the notification subject line for this firing.
func (e *TriggerEvent) Subject() string {
	return fmt.Sprintf("[%s] Alert: %s", e.Priority, e.Name)
}

// Body renders a plain-text notification body including the context excerpt.
func (e *TriggerEvent) Body() string {
	body := e.Description
	if body == "" {
		body = e.Name
	}
	if len(e.Excerpt) > 0 {
		body += "\n\nContext:"
		for _, name := range sortedKeys(e.Excerpt) {
			body += fmt.Sprintf("\n  %s = %s", name, e.Excerpt[name])
		}
	}
	body += fmt.Sprintf("\n\nFired at %s", e.FiredAt.UTC().Format(time.RFC3339))
	return body
}

// ActionURL returns the path to the alert's detail view.
func (e *TriggerEvent) ActionURL() string {
	return fmt.Sprintf("/alerts/%d", e.AlertID)
}

// sortedKeys returns map keys in a stable order so notification bodies are
// deterministic.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
