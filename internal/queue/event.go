// Package queue defines the account lifecycle messages exchanged over the
// message broker and the background consumer that turns them into audit
// log lines.
package queue

import "time"

// Queue names used for account lifecycle events.
const (
	RegisteredQueue = "user.registered"
	DeletedQueue    = "user.deleted"
)

// UserRegisteredEvent is published after a successful registration.  It
// carries enough information for downstream consumers to log or notify
// without querying the primary database.  No credential material is ever
// included.
type UserRegisteredEvent struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	RegisteredAt time.Time `json:"registered_at"`
}

// UserDeletedEvent is published after an admin deletes an account.
type UserDeletedEvent struct {
	UserID    string    `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}
