package security

import (
	"fmt"
	"strings"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// SpecialCharacters is the set of characters counted by the special-character check.
const SpecialCharacters = "!@#$%^&*()-_=+[]{}|;:'\",.<>/?`~"

// Violation codes reported by the built-in rules.
const (
	CodeMinLength          = "min_length"
	CodeUppercase          = "uppercase"
	CodeLowercase          = "lowercase"
	CodeDigit              = "digit"
	CodeSpecialChar        = "special_char"
	CodeNumericSequence    = "numeric_sequence"
	CodeDictionarySequence = "dictionary_sequence"
	CodeKeyboardSequence   = "keyboard_sequence"
	CodeWeakPassword       = "weak_password"
)

// PasswordValidationError represents a single password policy violation.
type PasswordValidationError struct {
	Code    string
	Message string
}

// Error implements error for PasswordValidationError.
func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordRule validates a password according to a specific policy rule.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) error

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// PasswordValidator applies a sequence of password rules.
type PasswordValidator struct {
	rules []PasswordRule
}

// NewPasswordValidator constructs a validator with the provided rules.
func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordValidator{rules: copied}
}

// Validate executes all rules and returns the first encountered violation.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// Violations executes every rule and returns all failures in rule order.
func (v *PasswordValidator) Violations(password string) []error {
	if v == nil {
		return nil
	}
	var out []error
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			out = append(out, err)
		}
	}
	return out
}

func violation(code, message string) *PasswordValidationError {
	return &PasswordValidationError{Code: code, Message: message}
}

// MinLengthRule ensures the password has at least min characters.
func MinLengthRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if !hasMinLength(password, min) {
			return violation(CodeMinLength, fmt.Sprintf("Use at least %d characters.", min))
		}
		return nil
	})
}

// RequireUppercaseRule ensures the password contains an uppercase letter.
func RequireUppercaseRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if !containsFunc(password, unicode.IsUpper) {
			return violation(CodeUppercase, "Add an uppercase letter.")
		}
		return nil
	})
}

// RequireLowercaseRule ensures the password contains a lowercase letter.
func RequireLowercaseRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if !containsFunc(password, unicode.IsLower) {
			return violation(CodeLowercase, "Add a lowercase letter.")
		}
		return nil
	})
}

// RequireDigitRule ensures the password contains at least one digit.
func RequireDigitRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if !containsFunc(password, unicode.IsDigit) {
			return violation(CodeDigit, "Add a digit.")
		}
		return nil
	})
}

// RequireSpecialCharRule ensures the password contains a character from SpecialCharacters.
func RequireSpecialCharRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if !strings.ContainsAny(password, SpecialCharacters) {
			return violation(CodeSpecialChar, "Add a special character.")
		}
		return nil
	})
}

// NumericSequenceRule rejects digit runs that step up or down.
func NumericSequenceRule(analyzer *SequenceAnalyzer) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if !analyzer.NumericSequenceSafe(password) {
			return violation(CodeNumericSequence, "Avoid using 3 consecutive numbers.")
		}
		return nil
	})
}

// DictionarySequenceRule rejects letter runs shared with the reference wordlist.
func DictionarySequenceRule(analyzer *SequenceAnalyzer) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if !analyzer.LetterSequenceSafe(password) {
			return violation(CodeDictionarySequence,
				fmt.Sprintf("Avoid using %d consecutive letters from common passwords.", analyzer.dictionaryRun))
		}
		return nil
	})
}

// KeyboardSequenceRule rejects letter runs that follow a keyboard row.
func KeyboardSequenceRule(analyzer *SequenceAnalyzer) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if !analyzer.KeyboardRowSafe(password) {
			return violation(CodeKeyboardSequence,
				fmt.Sprintf("Avoid using %d consecutive letters from the QWERTY keyboard.", analyzer.keyboardRun))
		}
		return nil
	})
}

// RequirePasswordStrengthRule enforces a minimum zxcvbn score to reject weak passwords.
func RequirePasswordStrengthRule(minScore int, userInputs ...string) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if minScore <= 0 {
			return nil
		}
		if minScore > 4 {
			minScore = 4
		}

		if EntropyScore(password, userInputs...) >= minScore {
			return nil
		}

		return violation(CodeWeakPassword, "password is too weak; choose a more complex value")
	})
}

// EntropyScore returns the zxcvbn 0-4 estimate for password.
func EntropyScore(password string, userInputs ...string) int {
	if password == "" {
		return 0
	}
	return zxcvbn.PasswordStrength(password, userInputs).Score
}

func hasMinLength(password string, min int) bool {
	return len([]rune(password)) >= min
}

func containsFunc(password string, f func(rune) bool) bool {
	return strings.IndexFunc(password, f) >= 0
}
