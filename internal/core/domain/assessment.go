package domain

// SecurityLevel is the verdict produced by the password strength evaluator.
type SecurityLevel int

const (
	SecurityLevelWeak SecurityLevel = iota
	SecurityLevelModerate
	SecurityLevelStrong
	SecurityLevelVeryStrong
)

// String returns a human-readable representation of the security level.
func (l SecurityLevel) String() string {
	switch l {
	case SecurityLevelWeak:
		return "Weak"
	case SecurityLevelModerate:
		return "Moderate"
	case SecurityLevelStrong:
		return "Strong"
	case SecurityLevelVeryStrong:
		return "Very Strong"
	default:
		return "Unknown"
	}
}

// PasswordChecks records the outcome of each individual strength predicate.
type PasswordChecks struct {
	MinLength        bool
	Uppercase        bool
	Lowercase        bool
	Digit            bool
	SpecialChar      bool
	NumericSequence  bool
	LetterSequence   bool
	KeyboardSequence bool
}

// Complex reports whether every character class is present.
func (c PasswordChecks) Complex() bool {
	return c.Uppercase && c.Lowercase && c.Digit && c.SpecialChar
}

// SafePatterns reports whether no sequence check flagged the password.
func (c PasswordChecks) SafePatterns() bool {
	return c.NumericSequence && c.LetterSequence && c.KeyboardSequence
}

// PasswordAssessment is the ephemeral result of scoring a password. It carries no identity.
type PasswordAssessment struct {
	Level    SecurityLevel
	Feedback []string
	Checks   PasswordChecks
	// EntropyScore is a 0-4 estimate reported alongside the verdict; it never changes Level.
	EntropyScore int
}
