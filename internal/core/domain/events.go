package domain

import "time"

// PasswordChangedEvent represents the payload for guard.password.changed messages.
type PasswordChangedEvent struct {
	EventID    string
	UserID     string
	SessionID  string
	ChangedAt  time.Time
	HistoryLen int
	Metadata   map[string]any
}

// LoginFailedEvent represents the payload for guard.session.login_failed messages.
type LoginFailedEvent struct {
	EventID   string
	UserID    string
	SessionID string
	Attempt   int
	Remaining int
	FailedAt  time.Time
}

// SessionAbortedEvent represents the payload for guard.session.aborted messages.
type SessionAbortedEvent struct {
	EventID   string
	UserID    string
	SessionID string
	Reason    string
	AbortedAt time.Time
}

// SessionAuthenticatedEvent represents the payload for guard.session.authenticated messages.
type SessionAuthenticatedEvent struct {
	EventID         string
	UserID          string
	SessionID       string
	AuthenticatedAt time.Time
}
