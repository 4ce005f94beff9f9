package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrPasswordReused indicates the candidate equals the current password.
	ErrPasswordReused = errors.New("password cannot be the same as the current password")
	// ErrPasswordTooSimilar indicates the candidate shares a fragment with the current password or history.
	ErrPasswordTooSimilar = errors.New("password shares at least four consecutive characters with the history or current password")
)
