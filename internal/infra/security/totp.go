package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/arklim/account-guard/internal/core/domain"
)

const (
	defaultTOTPPeriod      = 30 * time.Second
	defaultTOTPWindow      = 180 * time.Second
	defaultTOTPDigits      = 6
	defaultTOTPSecretBytes = 20
	minTOTPSecretBytes     = 10
)

var digitsPow = [...]uint32{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000}

// OTPConfig tunes the one-time-password engine.
type OTPConfig struct {
	Period      time.Duration
	Window      time.Duration
	Digits      int
	SecretBytes int
}

// DefaultOTPConfig returns the 30-second, 6-digit, 180-second-window configuration.
func DefaultOTPConfig() OTPConfig {
	return OTPConfig{
		Period:      defaultTOTPPeriod,
		Window:      defaultTOTPWindow,
		Digits:      defaultTOTPDigits,
		SecretBytes: defaultTOTPSecretBytes,
	}
}

func (c OTPConfig) normalized() OTPConfig {
	def := DefaultOTPConfig()
	if c.Period < time.Second {
		c.Period = def.Period
	}
	if c.Window <= 0 {
		c.Window = def.Window
	}
	if c.Digits < 6 || c.Digits > 8 {
		c.Digits = def.Digits
	}
	if c.SecretBytes < minTOTPSecretBytes {
		c.SecretBytes = def.SecretBytes
	}
	return c
}

// OTPEngine derives HOTP/TOTP codes from a per-instance random secret and runs
// the time-boxed verification protocol. One engine serves one login session.
type OTPEngine struct {
	cfg    OTPConfig
	secret []byte
	state  domain.OTPState
	issued string
	now    func() time.Time
}

// NewOTPEngine generates a fresh secret and returns an engine in the Idle state.
func NewOTPEngine(cfg OTPConfig) (*OTPEngine, error) {
	cfg = cfg.normalized()
	secret := make([]byte, cfg.SecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("totp: generate secret: %w", err)
	}
	return newOTPEngine(cfg, secret), nil
}

// NewOTPEngineWithSecret builds an engine over a caller-supplied secret.
func NewOTPEngineWithSecret(cfg OTPConfig, secret []byte) (*OTPEngine, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	copied := make([]byte, len(secret))
	copy(copied, secret)
	return newOTPEngine(cfg.normalized(), copied), nil
}

func newOTPEngine(cfg OTPConfig, secret []byte) *OTPEngine {
	return &OTPEngine{
		cfg:    cfg,
		secret: secret,
		state:  domain.OTPStateIdle,
		now:    time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (e *OTPEngine) WithClock(clock func() time.Time) {
	if clock != nil {
		e.now = clock
	}
}

// State returns the current protocol state.
func (e *OTPEngine) State() domain.OTPState {
	return e.state
}

// DeriveCode computes the RFC 4226 HOTP value for counter.
func (e *OTPEngine) DeriveCode(counter uint64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, e.secret)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%0*d", e.cfg.Digits, value%digitsPow[e.cfg.Digits])
}

// Counter returns the TOTP time step for t.
func (e *OTPEngine) Counter(t time.Time) uint64 {
	return uint64(t.Unix()) / uint64(e.cfg.Period/time.Second)
}

// CurrentCode returns the TOTP code for the current time step and marks a code as issued.
func (e *OTPEngine) CurrentCode() string {
	code := e.DeriveCode(e.Counter(e.now()))
	if e.state == domain.OTPStateIdle {
		e.state = domain.OTPStateCodeIssued
	}
	return code
}

// Issue captures the current code as the challenge the user must echo back.
func (e *OTPEngine) Issue() domain.OTPChallenge {
	issuedAt := e.now()
	e.issued = e.DeriveCode(e.Counter(issuedAt))
	e.state = domain.OTPStateCodeIssued
	return domain.OTPChallenge{
		Code:     e.issued,
		IssuedAt: issuedAt,
		Deadline: issuedAt.Add(e.cfg.Window),
	}
}

// Verify checks input against the code captured at issue time. The window
// measured from issuedAt is the only expiry: a match is accepted after the
// 30-second step rolls over, and nothing is accepted once the window has
// elapsed. Terminal states are sticky.
func (e *OTPEngine) Verify(input string, issuedAt time.Time) domain.VerificationResult {
	switch e.state {
	case domain.OTPStateVerified:
		return domain.VerificationVerified
	case domain.OTPStateExpired:
		return domain.VerificationExpired
	case domain.OTPStateIdle:
		return domain.VerificationPending
	}

	if e.now().Sub(issuedAt) >= e.cfg.Window {
		e.state = domain.OTPStateExpired
		return domain.VerificationExpired
	}

	expected := e.issued
	if expected == "" {
		expected = e.DeriveCode(e.Counter(issuedAt))
	}

	if len(input) == len(expected) && subtle.ConstantTimeCompare([]byte(input), []byte(expected)) == 1 {
		e.state = domain.OTPStateVerified
		return domain.VerificationVerified
	}

	return domain.VerificationPending
}

// ErrMissingSecret is returned when secret is empty.
var ErrMissingSecret = fmt.Errorf("totp secret is required")
