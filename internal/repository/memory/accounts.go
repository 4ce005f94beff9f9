package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/arklim/account-guard/internal/core/domain"
	"github.com/arklim/account-guard/internal/core/port"
	"github.com/arklim/account-guard/internal/repository"
)

const (
	defaultHistorySize      = 3
	defaultRenewalMonths    = 6
	defaultSimilarityWindow = 4
)

// AccountOptions tunes the credential history rules.
type AccountOptions struct {
	HistorySize      int
	RenewalMonths    int
	SimilarityWindow int
}

func (o AccountOptions) normalized() AccountOptions {
	if o.HistorySize <= 0 {
		o.HistorySize = defaultHistorySize
	}
	if o.RenewalMonths <= 0 {
		o.RenewalMonths = defaultRenewalMonths
	}
	if o.SimilarityWindow <= 0 {
		o.SimilarityWindow = defaultSimilarityWindow
	}
	return o
}

// AccountRepository keeps user accounts in process memory. It is the
// credential history store: lookups, the similarity rule and the commit primitive.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.UserAccount
	opts     AccountOptions
}

// NewAccountRepository seeds a repository with copies of the supplied accounts.
func NewAccountRepository(seed domain.SeedAccounts, opts AccountOptions) *AccountRepository {
	opts = opts.normalized()
	r := &AccountRepository{
		accounts: make(map[string]*domain.UserAccount, len(seed)),
		opts:     opts,
	}
	for _, acc := range seed {
		copied := acc.Clone()
		if copied.Status == "" {
			copied.Status = domain.AccountStatusActive
		}
		if len(copied.History) > opts.HistorySize {
			copied.History = copied.History[:opts.HistorySize]
		}
		r.accounts[copied.ID] = &copied
	}
	return r
}

// Lookup returns a copy of the account, or false when the id is unknown.
func (r *AccountRepository) Lookup(id string) (domain.UserAccount, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[strings.TrimSpace(id)]
	if !ok {
		return domain.UserAccount{}, false
	}
	return acc.Clone(), true
}

// IDs returns the known account ids in sorted order.
func (r *AccountRepository) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.accounts))
	for id := range r.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsSimilarToHistory reports whether candidate shares a window-sized fragment
// with the joined history or with the current password, in either direction.
// Unknown ids are never similar. It does not modify state.
func (r *AccountRepository) IsSimilarToHistory(id, candidate string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[strings.TrimSpace(id)]
	if !ok {
		return false
	}
	return r.similar(acc, candidate)
}

func (r *AccountRepository) similar(acc *domain.UserAccount, candidate string) bool {
	n := r.opts.SimilarityWindow
	return sharesWindow(candidate, strings.Join(acc.History, ""), n) ||
		sharesWindow(candidate, acc.CurrentPassword, n) ||
		sharesWindow(acc.CurrentPassword, candidate, n)
}

// SetNewPassword validates candidate against the pre-update state. A nil error
// means the caller may commit; the store itself is not modified.
func (r *AccountRepository) SetNewPassword(id, candidate string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[strings.TrimSpace(id)]
	if !ok {
		return repository.ErrNotFound
	}
	if candidate == acc.CurrentPassword {
		return repository.ErrPasswordReused
	}
	if r.similar(acc, candidate) {
		return repository.ErrPasswordTooSimilar
	}
	return nil
}

// CommitPassword rotates candidate in: the old current password becomes the
// newest history entry, the oldest entry past the cap is dropped, and the
// expiration countdown restarts.
func (r *AccountRepository) CommitPassword(id, candidate string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[strings.TrimSpace(id)]
	if !ok {
		return repository.ErrNotFound
	}

	history := make([]string, 0, r.opts.HistorySize)
	history = append(history, acc.CurrentPassword)
	history = append(history, acc.History...)
	if len(history) > r.opts.HistorySize {
		history = history[:r.opts.HistorySize]
	}

	acc.History = history
	acc.CurrentPassword = candidate
	acc.ExpirationMonthsLeft = r.opts.RenewalMonths
	return nil
}

// SetStatus updates the account status in memory.
func (r *AccountRepository) SetStatus(id string, status domain.AccountStatus) error {
	switch status {
	case domain.AccountStatusActive, domain.AccountStatusLocked, domain.AccountStatusDisabled:
	default:
		return fmt.Errorf("unknown account status %q", status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[strings.TrimSpace(id)]
	if !ok {
		return repository.ErrNotFound
	}
	acc.Status = status
	return nil
}

func sharesWindow(source, target string, n int) bool {
	runes := []rune(source)
	for i := 0; i+n <= len(runes); i++ {
		if strings.Contains(target, string(runes[i:i+n])) {
			return true
		}
	}
	return false
}

var _ port.AccountRepository = (*AccountRepository)(nil)
