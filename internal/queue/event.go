// Package queue defines the auth event trail exchanged over the
// message broker, plus the publisher and the background consumer.
package queue

// Event types published to the auth.events queue.
const (
	EventUserRegistered  = "user.registered"
	EventPasswordChanged = "user.password_changed"
	EventUserDeactivated = "user.deactivated"
)

// Event is published after a state-changing auth operation
// succeeds. It carries enough for downstream consumers to log or
// trigger notifications without querying the primary database.
// Email is set only for registration events.
type Event struct {
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
