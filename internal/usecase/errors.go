package usecase

import (
	"errors"
	"fmt"

	"github.com/arklim/account-guard/internal/repository"
)

var (
	// ErrUserNotFound indicates the requested account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials indicates a wrong password while attempts remain.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount indicates the account is locked or disabled.
	ErrInactiveAccount = errors.New("account is not active")
	// ErrLoginAttemptsExhausted indicates the session was aborted after too many failed passwords.
	ErrLoginAttemptsExhausted = errors.New("login attempts exhausted")
	// ErrTOTPExpired indicates no correct code was entered within the verification window.
	ErrTOTPExpired = errors.New("one-time password expired")
	// ErrInvalidTransition indicates a session operation was called in the wrong state.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrPasswordPolicy indicates a renewal candidate failed the configured policy.
	ErrPasswordPolicy = errors.New("password does not satisfy policy")

	// ErrPasswordReused indicates the renewal candidate equals the current password.
	ErrPasswordReused = repository.ErrPasswordReused
	// ErrPasswordTooSimilar indicates the renewal candidate overlaps the password history.
	ErrPasswordTooSimilar = repository.ErrPasswordTooSimilar
)

func mapRepositoryError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrPasswordReused), errors.Is(err, repository.ErrPasswordTooSimilar):
		return err
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
