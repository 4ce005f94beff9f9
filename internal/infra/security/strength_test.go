package security

import (
	"reflect"
	"testing"

	"github.com/arklim/account-guard/internal/core/domain"
)

var testWordlist = domain.ReferenceWordlist{"password", "qwerty", "asdfgh", "monkey", "letmein"}

func newTestEvaluator() *PasswordStrengthEvaluator {
	return NewPasswordStrengthEvaluator(NewSequenceAnalyzer(testWordlist))
}

func TestEvaluateLevels(t *testing.T) {
	evaluator := newTestEvaluator()

	cases := []struct {
		password string
		want     domain.SecurityLevel
	}{
		{"Tr0ub4dor&3x", domain.SecurityLevelVeryStrong},
		{"Tr0ub@dor#1990", domain.SecurityLevelVeryStrong},
		{"Password1!", domain.SecurityLevelStrong},
		{"Qwerty9!xx", domain.SecurityLevelStrong},
		{"asdfg123", domain.SecurityLevelModerate},
		{"Ab1!", domain.SecurityLevelModerate},
		{"abc", domain.SecurityLevelWeak},
		{"", domain.SecurityLevelWeak},
	}

	for _, tc := range cases {
		evaluator.SetPassword(tc.password)
		if got := evaluator.Evaluate(); got != tc.want {
			t.Fatalf("Evaluate(%q) = %s, want %s", tc.password, got, tc.want)
		}
	}
}

func TestEvaluatePatternSafetyNeverCompensates(t *testing.T) {
	evaluator := newTestEvaluator()

	// Long, pattern-free, but missing the special character.
	evaluator.SetPassword("Tr0ub4dor3x")
	if !evaluator.HasSafePatterns() {
		t.Fatal("expected safe patterns")
	}
	if got := evaluator.Evaluate(); got != domain.SecurityLevelModerate {
		t.Fatalf("expected Moderate, got %s", got)
	}
}

func TestAsdfg123Assessment(t *testing.T) {
	evaluator := newTestEvaluator()
	evaluator.SetPassword("asdfg123")

	if evaluator.HasUppercase() {
		t.Fatal("expected no uppercase")
	}
	if !evaluator.HasLowercase() || !evaluator.HasDigit() {
		t.Fatal("expected lowercase and digit")
	}
	if evaluator.HasSpecialChar() {
		t.Fatal("expected no special character")
	}
	if evaluator.IsComplex() {
		t.Fatal("expected complexity check to fail")
	}
	if !evaluator.HasMinLength() {
		t.Fatal("expected length check to pass")
	}

	want := []string{
		"Add an uppercase letter.",
		"Add a special character.",
		"Avoid using 3 consecutive numbers.",
		"Avoid using 4 consecutive letters from common passwords.",
		"Avoid using 3 consecutive letters from the QWERTY keyboard.",
	}
	if got := evaluator.Feedback(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected feedback:\n got %q\nwant %q", got, want)
	}
	if got := evaluator.Evaluate(); got != domain.SecurityLevelModerate {
		t.Fatalf("expected Moderate, got %s", got)
	}
}

func TestFeedbackEmptyForVeryStrong(t *testing.T) {
	evaluator := newTestEvaluator()
	evaluator.SetPassword("Tr0ub4dor&3x")

	feedback := evaluator.Feedback()
	if feedback == nil || len(feedback) != 0 {
		t.Fatalf("expected empty non-nil feedback, got %v", feedback)
	}
}

func TestFeedbackOrder(t *testing.T) {
	evaluator := newTestEvaluator()
	evaluator.SetPassword("   ")

	want := []string{
		"Add an uppercase letter.",
		"Add a lowercase letter.",
		"Add a digit.",
		"Add a special character.",
	}
	if got := evaluator.Feedback(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected feedback:\n got %q\nwant %q", got, want)
	}
}

func TestSetPasswordRepointsEvaluator(t *testing.T) {
	evaluator := newTestEvaluator()

	evaluator.SetPassword("abc")
	if evaluator.Evaluate() != domain.SecurityLevelWeak {
		t.Fatal("expected Weak")
	}
	evaluator.SetPassword("Tr0ub4dor&3x")
	if evaluator.Password() != "Tr0ub4dor&3x" {
		t.Fatalf("unexpected password %q", evaluator.Password())
	}
	if evaluator.Evaluate() != domain.SecurityLevelVeryStrong {
		t.Fatal("expected Very Strong after re-pointing")
	}
}

func TestWithMinLength(t *testing.T) {
	evaluator := NewPasswordStrengthEvaluator(NewSequenceAnalyzer(nil), WithMinLength(12))
	evaluator.SetPassword("Tr0ub4dor&3")
	if evaluator.HasMinLength() {
		t.Fatal("expected 11 characters to fail a 12 character minimum")
	}
}

func TestAssess(t *testing.T) {
	evaluator := newTestEvaluator()

	assessment := evaluator.Assess("asdfg123")
	if assessment.Level != domain.SecurityLevelModerate {
		t.Fatalf("expected Moderate, got %s", assessment.Level)
	}
	if len(assessment.Feedback) != 5 {
		t.Fatalf("expected 5 feedback entries, got %d", len(assessment.Feedback))
	}
	checks := assessment.Checks
	if checks.NumericSequence || checks.LetterSequence || checks.KeyboardSequence {
		t.Fatalf("expected every sequence check to fail: %+v", checks)
	}
	if checks.Complex() || checks.SafePatterns() {
		t.Fatalf("unexpected composite checks: %+v", checks)
	}
	if assessment.EntropyScore < 0 || assessment.EntropyScore > 4 {
		t.Fatalf("entropy score out of range: %d", assessment.EntropyScore)
	}
	if evaluator.Password() != "asdfg123" {
		t.Fatal("Assess must point the evaluator at the assessed password")
	}
}

func TestSecurityLevelString(t *testing.T) {
	if domain.SecurityLevelVeryStrong.String() != "Very Strong" {
		t.Fatalf("unexpected label %q", domain.SecurityLevelVeryStrong.String())
	}
	if domain.SecurityLevel(42).String() != "Unknown" {
		t.Fatal("expected Unknown for out-of-range level")
	}
}
