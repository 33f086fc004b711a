package domain

// Notification is the payload pushed to the in-app broadcast channel for
// SYSTEM alerts.
type Notification struct {
	// Title is the short headline shown to the user.
	Title string `json:"title"`

	// Message is the notification body.
	Message string `json:"message"`

	// Type classifies the notification for the client, e.g. "alert".
	Type string `json:"type"`

	// Priority is carried through so the client can style accordingly.
	Priority Priority `json:"priority"`

	// TargetUserID addresses a specific user. Empty broadcasts to all
	// connected administrators.
	TargetUserID string `json:"target_user_id,omitempty"`

	// ActionURL links back to the alert's detail view.
	ActionURL string `json:"action_url,omitempty"`

	// PlaySound requests an audible/toast cue downstream.
	PlaySound bool `json:"play_sound"`
}
