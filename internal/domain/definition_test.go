package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validDefinition() *AlertDefinition {
	return &AlertDefinition{
		Name:       "High error rate",
		Condition:  "error_rate > 5",
		Channel:    ChannelEmail,
		Priority:   PriorityHigh,
		Recipients: []string{"ops@example.com"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AlertDefinition)
		wantErr error
	}{
		{"valid", func(*AlertDefinition) {}, nil},
		{"empty name", func(d *AlertDefinition) { d.Name = "" }, ErrEmptyName},
		{"empty condition", func(d *AlertDefinition) { d.Condition = "" }, ErrEmptyCondition},
		{"bad channel", func(d *AlertDefinition) { d.Channel = "PAGER" }, ErrInvalidChannel},
		{"bad priority", func(d *AlertDefinition) { d.Priority = "URGENT" }, ErrInvalidPriority},
		{"email without recipients", func(d *AlertDefinition) { d.Recipients = nil }, ErrEmptyRecipients},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validDefinition()
			tt.mutate(def)
			if err := def.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSystemChannelAllowsEmptyRecipients(t *testing.T) {
	def := validDefinition()
	def.Channel = ChannelSystem
	def.Recipients = nil
	if err := def.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil (empty recipients broadcast to admins)", err)
	}
}

func TestInCooldown(t *testing.T) {
	now := time.Now().UTC()
	window := 30 * time.Minute

	def := validDefinition()
	if def.InCooldown(now, window) {
		t.Error("never-triggered definition reported in cooldown")
	}

	recent := now.Add(-10 * time.Minute)
	def.LastTriggeredAt = &recent
	if !def.InCooldown(now, window) {
		t.Error("definition triggered 10m ago not in 30m cooldown")
	}

	old := now.Add(-31 * time.Minute)
	def.LastTriggeredAt = &old
	if def.InCooldown(now, window) {
		t.Error("definition triggered 31m ago still in 30m cooldown")
	}
}

func TestRecordTriggerAndDispatchError(t *testing.T) {
	def := validDefinition()
	now := time.Now().UTC()

	def.RecordTrigger(now)
	if def.TriggerCount != 1 {
		t.Errorf("TriggerCount = %d, want 1", def.TriggerCount)
	}
	if def.LastTriggeredAt == nil || !def.LastTriggeredAt.Equal(now) {
		t.Errorf("LastTriggeredAt = %v, want %v", def.LastTriggeredAt, now)
	}
	if def.LastResult != "TRIGGERED" {
		t.Errorf("LastResult = %q, want TRIGGERED", def.LastResult)
	}

	def.RecordDispatchError(errors.New("smtp timeout"))
	if def.TriggerCount != 1 {
		t.Errorf("TriggerCount changed by dispatch error")
	}
	if !strings.HasPrefix(def.LastResult, "ERROR:") {
		t.Errorf("LastResult = %q, want ERROR prefix", def.LastResult)
	}
}

func TestAudible(t *testing.T) {
	audible := map[Priority]bool{
		PriorityLow:      false,
		PriorityMedium:   false,
		PriorityHigh:     true,
		PriorityCritical: true,
	}
	for p, want := range audible {
		if got := p.Audible(); got != want {
			t.Errorf("%s.Audible() = %v, want %v", p, got, want)
		}
	}
}

func TestTriggerEventRendering(t *testing.T) {
	def := validDefinition()
	def.ID = 9
	fired := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	excerpt := map[string]string{"error_rate": "7.50", "queue_size": "120.00"}

	event := NewTriggerEvent(def, excerpt, fired)

	if event.ID == "" {
		t.Error("trigger event missing ID")
	}
	if got, want := event.Subject(), "[HIGH] Alert: High error rate"; got != want {
		t.Errorf("Subject() = %q, want %q", got, want)
	}
	if got, want := event.ActionURL(), "/alerts/9"; got != want {
		t.Errorf("ActionURL() = %q, want %q", got, want)
	}

	body := event.Body()
	for _, want := range []string{"error_rate = 7.50", "queue_size = 120.00", "2026-08-31T12:00:00Z"} {
		if !strings.Contains(body, want) {
			t.Errorf("Body() missing %q:\n%s", want, body)
		}
	}
	// Excerpt keys appear in sorted order for stable bodies
	if strings.Index(body, "error_rate") > strings.Index(body, "queue_size") {
		t.Error("excerpt keys not sorted")
	}
}
