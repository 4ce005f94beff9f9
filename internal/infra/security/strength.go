package security

import (
	"errors"
	"unicode"

	"github.com/arklim/account-guard/internal/core/domain"
)

const defaultMinPasswordLength = 8

// PasswordStrengthEvaluator scores the password it currently points at. The
// wordlist is fixed at construction; SetPassword re-points the evaluator.
type PasswordStrengthEvaluator struct {
	password  string
	minLength int
	analyzer  *SequenceAnalyzer
	feedback  *PasswordValidator
}

// EvaluatorOption customises a PasswordStrengthEvaluator.
type EvaluatorOption func(*PasswordStrengthEvaluator)

// WithMinLength overrides the minimum length used by HasMinLength.
func WithMinLength(n int) EvaluatorOption {
	return func(e *PasswordStrengthEvaluator) {
		if n > 0 {
			e.minLength = n
		}
	}
}

// NewPasswordStrengthEvaluator builds an evaluator backed by the given sequence analyzer.
func NewPasswordStrengthEvaluator(analyzer *SequenceAnalyzer, opts ...EvaluatorOption) *PasswordStrengthEvaluator {
	if analyzer == nil {
		analyzer = NewSequenceAnalyzer(nil)
	}
	e := &PasswordStrengthEvaluator{
		minLength: defaultMinPasswordLength,
		analyzer:  analyzer,
	}
	for _, opt := range opts {
		opt(e)
	}

	// Rule order fixes the order of feedback messages.
	e.feedback = NewPasswordValidator(
		RequireUppercaseRule(),
		RequireLowercaseRule(),
		RequireDigitRule(),
		RequireSpecialCharRule(),
		NumericSequenceRule(analyzer),
		DictionarySequenceRule(analyzer),
		KeyboardSequenceRule(analyzer),
	)
	return e
}

// SetPassword points the evaluator at a new candidate.
func (e *PasswordStrengthEvaluator) SetPassword(password string) {
	e.password = password
}

// Password returns the candidate currently under evaluation.
func (e *PasswordStrengthEvaluator) Password() string {
	return e.password
}

func (e *PasswordStrengthEvaluator) HasMinLength() bool {
	return hasMinLength(e.password, e.minLength)
}

func (e *PasswordStrengthEvaluator) HasUppercase() bool {
	return containsFunc(e.password, unicode.IsUpper)
}

func (e *PasswordStrengthEvaluator) HasLowercase() bool {
	return containsFunc(e.password, unicode.IsLower)
}

func (e *PasswordStrengthEvaluator) HasDigit() bool {
	return containsFunc(e.password, unicode.IsDigit)
}

func (e *PasswordStrengthEvaluator) HasSpecialChar() bool {
	return RequireSpecialCharRule().Validate(e.password) == nil
}

// IsComplex requires every character class.
func (e *PasswordStrengthEvaluator) IsComplex() bool {
	return e.HasUppercase() && e.HasLowercase() && e.HasDigit() && e.HasSpecialChar()
}

// HasSafePatterns requires all sequence checks to pass.
func (e *PasswordStrengthEvaluator) HasSafePatterns() bool {
	return e.analyzer.SafePatterns(e.password)
}

// Evaluate returns the security level of the current password. Pattern safety
// only ever lifts Strong to VeryStrong; it never compensates for length or complexity.
func (e *PasswordStrengthEvaluator) Evaluate() domain.SecurityLevel {
	lengthOK := e.HasMinLength()
	complexOK := e.IsComplex()
	patternsOK := e.HasSafePatterns()

	switch {
	case lengthOK && complexOK && patternsOK:
		return domain.SecurityLevelVeryStrong
	case lengthOK && complexOK:
		return domain.SecurityLevelStrong
	case lengthOK || complexOK:
		return domain.SecurityLevelModerate
	default:
		return domain.SecurityLevelWeak
	}
}

// Feedback lists one improvement message per failing check. It is empty iff the
// verdict is VeryStrong.
func (e *PasswordStrengthEvaluator) Feedback() []string {
	if e.Evaluate() == domain.SecurityLevelVeryStrong {
		return []string{}
	}

	violations := e.feedback.Violations(e.password)
	out := make([]string, 0, len(violations))
	for _, err := range violations {
		var vErr *PasswordValidationError
		if errors.As(err, &vErr) {
			out = append(out, vErr.Message)
		}
	}
	return out
}

// Checks reports every predicate for the current password.
func (e *PasswordStrengthEvaluator) Checks() domain.PasswordChecks {
	return domain.PasswordChecks{
		MinLength:        e.HasMinLength(),
		Uppercase:        e.HasUppercase(),
		Lowercase:        e.HasLowercase(),
		Digit:            e.HasDigit(),
		SpecialChar:      e.HasSpecialChar(),
		NumericSequence:  e.analyzer.NumericSequenceSafe(e.password),
		LetterSequence:   e.analyzer.LetterSequenceSafe(e.password),
		KeyboardSequence: e.analyzer.KeyboardRowSafe(e.password),
	}
}

// Assess points the evaluator at password and returns the full assessment.
func (e *PasswordStrengthEvaluator) Assess(password string) domain.PasswordAssessment {
	e.SetPassword(password)
	return domain.PasswordAssessment{
		Level:        e.Evaluate(),
		Feedback:     e.Feedback(),
		Checks:       e.Checks(),
		EntropyScore: EntropyScore(password),
	}
}
