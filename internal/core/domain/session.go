package domain

import "time"

// SessionState enumerates the phases of an interactive login session.
type SessionState string

const (
	SessionStateAwaitingLogin        SessionState = "awaiting_login"
	SessionStateAwaitingRenewal      SessionState = "awaiting_renewal"
	SessionStateAwaitingSecondFactor SessionState = "awaiting_second_factor"
	SessionStateAuthenticated        SessionState = "authenticated"
	SessionStateAborted              SessionState = "aborted"
)

// Terminal reports whether no further transitions are possible.
func (s SessionState) Terminal() bool {
	return s == SessionStateAuthenticated || s == SessionStateAborted
}

// OTPState enumerates the states of a one-time-password engine.
type OTPState string

const (
	OTPStateIdle       OTPState = "idle"
	OTPStateCodeIssued OTPState = "code_issued"
	OTPStateVerified   OTPState = "verified"
	OTPStateExpired    OTPState = "expired"
)

// VerificationResult is the outcome of a single second-factor attempt.
type VerificationResult string

const (
	// VerificationPending means the code did not match and the window is still open.
	VerificationPending  VerificationResult = "pending"
	VerificationVerified VerificationResult = "verified"
	VerificationExpired  VerificationResult = "expired"
)

// OTPChallenge is the code handed to the user together with the moment it was issued.
type OTPChallenge struct {
	Code     string
	IssuedAt time.Time
	Deadline time.Time
}

// Session tracks a single interactive login.
type Session struct {
	ID             string
	UserID         string
	State          SessionState
	FailedAttempts int
	StartedAt      time.Time
	AbortReason    string
	Challenge      *OTPChallenge
}
