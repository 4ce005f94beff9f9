package domain

import "strings"

// AccountStatus enumerates possible account states.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusLocked   AccountStatus = "locked"
	AccountStatusDisabled AccountStatus = "disabled"
)

// UserAccount is the in-memory credential record for a single user.
// CurrentPassword and History hold plaintext values; this is a demonstration model.
type UserAccount struct {
	ID                   string
	FirstName            string
	LastName             string
	CurrentPassword      string
	History              []string
	ExpirationMonthsLeft int
	Status               AccountStatus
}

// FullName joins the first and last name for display.
func (a UserAccount) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Expired reports whether the password must be renewed before continuing.
func (a UserAccount) Expired() bool {
	return a.ExpirationMonthsLeft <= 0
}

// Clone returns a copy that does not share the history backing array.
func (a UserAccount) Clone() UserAccount {
	out := a
	if a.History != nil {
		out.History = make([]string, len(a.History))
		copy(out.History, a.History)
	}
	return out
}

// SeedAccounts is the fixed set of accounts loaded at process start.
type SeedAccounts []UserAccount

// ReferenceWordlist is the list of common passwords used for dictionary-proximity checks.
type ReferenceWordlist []string
