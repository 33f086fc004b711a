package domain

import "time"

// CreateAlertRequest is the payload for creating an alert definition.
type CreateAlertRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Condition   string      `json:"condition"`
	Channel     ChannelKind `json:"channel"`
	Recipients  []string    `json:"recipients"`
	Active      *bool       `json:"active"`
	Priority    Priority    `json:"priority"`
	CreatedBy   int64       `json:"created_by"`
}

// ToDefinition converts the request to a new definition. New definitions
// default to active and MEDIUM priority unless the request says otherwise.
func (r *CreateAlertRequest) ToDefinition(now time.Time) *AlertDefinition {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	priority := r.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	return &AlertDefinition{
		Name:        r.Name,
		Description: r.Description,
		Condition:   r.Condition,
		Channel:     r.Channel,
		Recipients:  append([]string(nil), r.Recipients...),
		Active:      active,
		Priority:    priority,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   now,
	}
}

// UpdateAlertRequest is the payload for updating an alert definition.
// Nil fields keep their current value; run-state fields cannot be written.
type UpdateAlertRequest struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Condition   *string      `json:"condition"`
	Channel     *ChannelKind `json:"channel"`
	Recipients  []string     `json:"recipients"`
	Active      *bool        `json:"active"`
	Priority    *Priority    `json:"priority"`
}

// ApplyTo applies the requested changes to an existing definition.
func (r *UpdateAlertRequest) ApplyTo(def *AlertDefinition) {
	if r.Name != nil {
		def.Name = *r.Name
	}
	if r.Description != nil {
		def.Description = *r.Description
	}
	if r.Condition != nil {
		def.Condition = *r.Condition
	}
	if r.Channel != nil {
		def.Channel = *r.Channel
	}
	if r.Recipients != nil {
		def.Recipients = append([]string(nil), r.Recipients...)
	}
	if r.Active != nil {
		def.Active = *r.Active
	}
	if r.Priority != nil {
		def.Priority = *r.Priority
	}
}
