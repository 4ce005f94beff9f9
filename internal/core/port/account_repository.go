package port

import (
	"time"

	"github.com/arklim/account-guard/internal/core/domain"
)

// AccountRepository exposes the credential history store to the session orchestrator.
type AccountRepository interface {
	Lookup(id string) (domain.UserAccount, bool)
	IDs() []string
	IsSimilarToHistory(id, candidate string) bool
	SetNewPassword(id, candidate string) error
	CommitPassword(id, candidate string) error
	SetStatus(id string, status domain.AccountStatus) error
}

// PasswordEvaluator scores a password and returns actionable feedback.
type PasswordEvaluator interface {
	Assess(password string) domain.PasswordAssessment
}

// OTPVerifier issues and checks second-factor codes for a single session.
type OTPVerifier interface {
	Issue() domain.OTPChallenge
	Verify(input string, issuedAt time.Time) domain.VerificationResult
}
