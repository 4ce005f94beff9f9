package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSeedAccountsReturnsFreshCopies(t *testing.T) {
	a := SeedAccounts()
	b := SeedAccounts()

	if len(a) != 3 {
		t.Fatalf("expected 3 seed accounts, got %d", len(a))
	}
	a[0].History[0] = "mutated"
	if b[0].History[0] == "mutated" {
		t.Fatal("seed accounts must not share history slices")
	}
	for _, acc := range b {
		if len(acc.History) > 3 {
			t.Fatalf("seed account %s exceeds history cap", acc.ID)
		}
	}
}

func TestLoadWordlistDefault(t *testing.T) {
	words, err := LoadWordlist("")
	if err != nil {
		t.Fatalf("LoadWordlist returned error: %v", err)
	}
	if len(words) != len(CommonPasswords()) {
		t.Fatalf("expected built-in list, got %d entries", len(words))
	}
}

func TestLoadWordlistFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("# comment\nhunter2\n\n  dragon  \n"), 0o600); err != nil {
		t.Fatalf("write wordlist: %v", err)
	}

	words, err := LoadWordlist(path)
	if err != nil {
		t.Fatalf("LoadWordlist returned error: %v", err)
	}
	if len(words) != 2 || words[0] != "hunter2" || words[1] != "dragon" {
		t.Fatalf("unexpected words %v", words)
	}
}

func TestLoadWordlistErrors(t *testing.T) {
	if _, err := LoadWordlist(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}

	empty := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(empty, []byte("# nothing\n"), 0o600); err != nil {
		t.Fatalf("write wordlist: %v", err)
	}
	if _, err := LoadWordlist(empty); err == nil {
		t.Fatal("expected error for empty wordlist")
	}
}
