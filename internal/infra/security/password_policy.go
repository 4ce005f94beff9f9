package security

import (
	"strings"

	"github.com/arklim/account-guard/internal/core/domain"
)

// RenewalPolicy screens candidates offered during password renewal before the
// history rule runs. A zero policy accepts everything.
type RenewalPolicy struct {
	minLength       int
	minEntropyScore int
}

// NewRenewalPolicy builds a policy. Non-positive values disable the respective rule.
func NewRenewalPolicy(minLength, minEntropyScore int) *RenewalPolicy {
	return &RenewalPolicy{minLength: minLength, minEntropyScore: minEntropyScore}
}

// Validate applies the configured rules with the account's names as zxcvbn user inputs.
func (p *RenewalPolicy) Validate(candidate string, account domain.UserAccount) error {
	if p == nil {
		return nil
	}

	rules := make([]PasswordRule, 0, 2)
	if p.minLength > 0 {
		rules = append(rules, MinLengthRule(p.minLength))
	}
	if p.minEntropyScore > 0 {
		inputs := make([]string, 0, 2)
		if name := strings.TrimSpace(account.FirstName); name != "" {
			inputs = append(inputs, name)
		}
		if name := strings.TrimSpace(account.LastName); name != "" {
			inputs = append(inputs, name)
		}
		rules = append(rules, RequirePasswordStrengthRule(p.minEntropyScore, inputs...))
	}

	return NewPasswordValidator(rules...).Validate(candidate)
}
