package memory

import (
	"errors"
	"reflect"
	"testing"

	"github.com/arklim/account-guard/internal/core/domain"
	"github.com/arklim/account-guard/internal/infra/dataset"
	"github.com/arklim/account-guard/internal/repository"
)

func newSeededRepository() *AccountRepository {
	return NewAccountRepository(dataset.SeedAccounts(), AccountOptions{})
}

func TestLookup(t *testing.T) {
	repo := newSeededRepository()

	if _, ok := repo.Lookup("42"); ok {
		t.Fatal("expected unknown id to be absent")
	}

	acc, ok := repo.Lookup(" 1 ")
	if !ok {
		t.Fatal("expected seeded account to be present")
	}
	if acc.FullName() != "Jane Doe" || acc.Status != domain.AccountStatusActive {
		t.Fatalf("unexpected account %+v", acc)
	}

	acc.History[0] = "mutated"
	acc.CurrentPassword = "mutated"
	again, _ := repo.Lookup("1")
	if again.History[0] != "R#2p$L@9x!" || again.CurrentPassword != "JaneDoe@2024!" {
		t.Fatal("Lookup must return an independent copy")
	}

	if got := repo.IDs(); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Fatalf("unexpected ids %v", got)
	}
}

func TestNewAccountRepositoryTruncatesHistory(t *testing.T) {
	seed := domain.SeedAccounts{{
		ID:              "9",
		History:         []string{"a", "b", "c", "d"},
		CurrentPassword: "e",
	}}
	repo := NewAccountRepository(seed, AccountOptions{HistorySize: 2})

	acc, _ := repo.Lookup("9")
	if !reflect.DeepEqual(acc.History, []string{"a", "b"}) {
		t.Fatalf("expected history capped at 2, got %v", acc.History)
	}
	if acc.Status != domain.AccountStatusActive {
		t.Fatalf("expected default active status, got %s", acc.Status)
	}
}

func TestIsSimilarToHistory(t *testing.T) {
	repo := newSeededRepository()

	cases := []struct {
		name      string
		id        string
		candidate string
		want      bool
	}{
		{"fragment of history", "1", "Xq7!Sunshine", true},
		{"prefix around current", "1", "XqrsJaneDoe@2024!", true},
		{"suffix around current", "1", "JaneDoe@2024!Xqrs", true},
		{"fragment of current", "3", "zzWav3yy", true},
		{"ocean waves overlap", "3", "Waves#Rock9", true},
		{"unrelated", "1", "Zk8#Lm3$Qp", false},
		{"shorter than window", "1", "Jan", false},
		{"unknown id", "42", "Sunshine4@", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			first := repo.IsSimilarToHistory(tc.id, tc.candidate)
			if first != tc.want {
				t.Fatalf("IsSimilarToHistory(%s, %q) = %v, want %v", tc.id, tc.candidate, first, tc.want)
			}
			if second := repo.IsSimilarToHistory(tc.id, tc.candidate); second != first {
				t.Fatal("IsSimilarToHistory must be idempotent")
			}
		})
	}

	acc, _ := repo.Lookup("1")
	if acc.CurrentPassword != "JaneDoe@2024!" || len(acc.History) != 3 {
		t.Fatal("IsSimilarToHistory must not modify the account")
	}
}

func TestSharesWindowSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"OceanWaves!", "Alic3@Wav3s!2024"},
		{"MoonRiver#88", "river"},
		{"abcd", "xxabcdxx"},
	}
	for _, p := range pairs {
		if sharesWindow(p[0], p[1], 4) != sharesWindow(p[1], p[0], 4) {
			t.Fatalf("sharesWindow not symmetric for %q and %q", p[0], p[1])
		}
	}
}

func TestSetNewPassword(t *testing.T) {
	repo := newSeededRepository()

	if err := repo.SetNewPassword("42", "Zk8#Lm3$Qp"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.SetNewPassword("1", "JaneDoe@2024!"); !errors.Is(err, repository.ErrPasswordReused) {
		t.Fatalf("expected ErrPasswordReused, got %v", err)
	}
	if err := repo.SetNewPassword("3", "Waves#Rock9"); !errors.Is(err, repository.ErrPasswordTooSimilar) {
		t.Fatalf("expected ErrPasswordTooSimilar, got %v", err)
	}
	if err := repo.SetNewPassword("1", "Zk8#Lm3$Qp"); err != nil {
		t.Fatalf("expected candidate to be accepted, got %v", err)
	}

	acc, _ := repo.Lookup("1")
	if acc.CurrentPassword != "JaneDoe@2024!" || acc.ExpirationMonthsLeft != 0 {
		t.Fatal("SetNewPassword must not modify the account")
	}
}

func TestCommitPasswordRotatesHistory(t *testing.T) {
	repo := newSeededRepository()

	for _, pw := range []string{"N1", "N2", "N3", "N4"} {
		if err := repo.CommitPassword("2", pw); err != nil {
			t.Fatalf("CommitPassword(%s) returned error: %v", pw, err)
		}
	}

	acc, _ := repo.Lookup("2")
	if acc.CurrentPassword != "N4" {
		t.Fatalf("expected current password N4, got %s", acc.CurrentPassword)
	}
	if !reflect.DeepEqual(acc.History, []string{"N3", "N2", "N1"}) {
		t.Fatalf("expected newest-first capped history, got %v", acc.History)
	}
	if acc.ExpirationMonthsLeft != 6 {
		t.Fatalf("expected renewal countdown reset to 6, got %d", acc.ExpirationMonthsLeft)
	}

	if err := repo.CommitPassword("42", "N5"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCommitPasswordFirstRotation(t *testing.T) {
	repo := newSeededRepository()

	if err := repo.CommitPassword("1", "Zk8#Lm3$Qp"); err != nil {
		t.Fatalf("CommitPassword returned error: %v", err)
	}
	acc, _ := repo.Lookup("1")
	want := []string{"JaneDoe@2024!", "R#2p$L@9x!", "Sunshine4@"}
	if !reflect.DeepEqual(acc.History, want) {
		t.Fatalf("unexpected history %v", acc.History)
	}
	if acc.Expired() {
		t.Fatal("account must not be expired after renewal")
	}
}

func TestSetStatus(t *testing.T) {
	repo := newSeededRepository()

	if err := repo.SetStatus("2", domain.AccountStatusLocked); err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	acc, _ := repo.Lookup("2")
	if acc.Status != domain.AccountStatusLocked {
		t.Fatalf("expected locked, got %s", acc.Status)
	}

	if err := repo.SetStatus("2", domain.AccountStatus("frozen")); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if err := repo.SetStatus("42", domain.AccountStatusDisabled); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
