package security

import (
	"strings"

	"github.com/arklim/account-guard/internal/core/domain"
)

const (
	minDigitRun          = 3
	defaultDictionaryRun = 4
	defaultKeyboardRun   = 3
)

var keyboardRows = []string{"qwerty", "asdfgh", "zxcvbn", "poiuyt", "lkjhgf", "mnbvcx"}

// SequenceAnalyzer detects predictable runs of digits and letters inside a password.
type SequenceAnalyzer struct {
	wordlist      []string
	dictionaryRun int
	keyboardRun   int
	keyboardRows  []string
}

// SequenceOption customises a SequenceAnalyzer.
type SequenceOption func(*SequenceAnalyzer)

// WithDictionaryRun sets the minimum letter run length compared against the wordlist.
func WithDictionaryRun(n int) SequenceOption {
	return func(a *SequenceAnalyzer) {
		if n > 0 {
			a.dictionaryRun = n
		}
	}
}

// WithKeyboardRun sets the minimum letter run length compared against keyboard rows.
func WithKeyboardRun(n int) SequenceOption {
	return func(a *SequenceAnalyzer) {
		if n > 0 {
			a.keyboardRun = n
		}
	}
}

// NewSequenceAnalyzer builds an analyzer over the supplied reference wordlist.
func NewSequenceAnalyzer(wordlist domain.ReferenceWordlist, opts ...SequenceOption) *SequenceAnalyzer {
	lowered := make([]string, 0, len(wordlist))
	for _, word := range wordlist {
		if word = strings.ToLower(strings.TrimSpace(word)); word != "" {
			lowered = append(lowered, word)
		}
	}

	a := &SequenceAnalyzer{
		wordlist:      lowered,
		dictionaryRun: defaultDictionaryRun,
		keyboardRun:   defaultKeyboardRun,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.keyboardRows = make([]string, 0, len(keyboardRows)*2)
	for _, row := range keyboardRows {
		a.keyboardRows = append(a.keyboardRows, row, reverse(row))
	}

	return a
}

// NumericSequenceSafe reports whether no digit run of three or more characters is a step sequence.
func (a *SequenceAnalyzer) NumericSequenceSafe(password string) bool {
	for _, run := range digitRuns(password) {
		if isStepSequence(run) {
			return false
		}
	}
	return true
}

// LetterSequenceSafe reports whether no letter run shares a dictionaryRun-long fragment with the wordlist.
func (a *SequenceAnalyzer) LetterSequenceSafe(password string) bool {
	return !sharesFragment(letterRuns(password, a.dictionaryRun), a.wordlist, a.dictionaryRun)
}

// KeyboardRowSafe reports whether no letter run follows a QWERTY row forwards or backwards.
func (a *SequenceAnalyzer) KeyboardRowSafe(password string) bool {
	return !sharesFragment(letterRuns(password, a.keyboardRun), a.keyboardRows, a.keyboardRun)
}

// SafePatterns combines all three sequence checks.
func (a *SequenceAnalyzer) SafePatterns(password string) bool {
	return a.NumericSequenceSafe(password) && a.LetterSequenceSafe(password) && a.KeyboardRowSafe(password)
}

func sharesFragment(runs, targets []string, window int) bool {
	for _, run := range runs {
		for i := 0; i+window <= len(run); i++ {
			fragment := run[i : i+window]
			for _, target := range targets {
				if strings.Contains(target, fragment) {
					return true
				}
			}
		}
	}
	return false
}

// isStepSequence reports whether run, with repeated digits collapsed, has two
// neighbours one apart in either direction ("123", "3221" qualify; "1990" does not).
func isStepSequence(run string) bool {
	prev := -1
	for i := 0; i < len(run); i++ {
		d := int(run[i] - '0')
		if d == prev {
			continue
		}
		if prev >= 0 && (d-prev == 1 || prev-d == 1) {
			return true
		}
		prev = d
	}
	return false
}

func digitRuns(password string) []string {
	return extractRuns(password, minDigitRun, isASCIIDigit, false)
}

func letterRuns(password string, min int) []string {
	return extractRuns(password, min, isASCIILetter, true)
}

func extractRuns(s string, min int, match func(byte) bool, lower bool) []string {
	var runs []string
	start := -1
	flush := func(end int) {
		if start >= 0 && end-start >= min {
			run := s[start:end]
			if lower {
				run = strings.ToLower(run)
			}
			runs = append(runs, run)
		}
		start = -1
	}

	for i := 0; i < len(s); i++ {
		if match(s[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(s))

	return runs
}

func isASCIIDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
