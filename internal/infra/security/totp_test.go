package security

import (
	"bytes"
	"testing"
	"time"

	"github.com/arklim/account-guard/internal/core/domain"
)

var rfcSecret = []byte("12345678901234567890")

func newRFCEngine(t *testing.T, cfg OTPConfig) *OTPEngine {
	t.Helper()
	engine, err := NewOTPEngineWithSecret(cfg, rfcSecret)
	if err != nil {
		t.Fatalf("NewOTPEngineWithSecret returned error: %v", err)
	}
	return engine
}

func TestDeriveCodeRFC4226Vectors(t *testing.T) {
	engine := newRFCEngine(t, DefaultOTPConfig())

	want := []string{
		"755224", "287082", "359152", "969429", "338314",
		"254676", "287922", "162583", "399871", "520489",
	}
	for counter, code := range want {
		if got := engine.DeriveCode(uint64(counter)); got != code {
			t.Fatalf("DeriveCode(%d) = %s, want %s", counter, got, code)
		}
	}
}

func TestDeriveCodeRFC6238Vectors(t *testing.T) {
	cfg := DefaultOTPConfig()
	cfg.Digits = 8
	engine := newRFCEngine(t, cfg)

	cases := []struct {
		unix int64
		code string
	}{
		{59, "94287082"},
		{1111111109, "07081804"},
		{1111111111, "14050471"},
		{1234567890, "89005924"},
		{2000000000, "69279037"},
		{20000000000, "65353130"},
	}
	for _, tc := range cases {
		got := engine.DeriveCode(engine.Counter(time.Unix(tc.unix, 0)))
		if got != tc.code {
			t.Fatalf("code at %d = %s, want %s", tc.unix, got, tc.code)
		}
	}
}

func TestDeriveCodeZeroPadsSixDigits(t *testing.T) {
	engine := newRFCEngine(t, DefaultOTPConfig())
	// 07081804 truncated to six digits keeps its leading zero.
	if got := engine.DeriveCode(engine.Counter(time.Unix(1111111109, 0))); got != "081804" {
		t.Fatalf("expected zero padded code 081804, got %s", got)
	}
}

func TestDeriveCodeDeterministic(t *testing.T) {
	engine := newRFCEngine(t, DefaultOTPConfig())
	for _, counter := range []uint64{0, 1, 1 << 32, 1<<64 - 1} {
		first := engine.DeriveCode(counter)
		if len(first) != 6 {
			t.Fatalf("expected 6 digits, got %q", first)
		}
		if second := engine.DeriveCode(counter); first != second {
			t.Fatalf("DeriveCode(%d) not deterministic: %s vs %s", counter, first, second)
		}
	}
}

func TestNewOTPEngineGeneratesSecret(t *testing.T) {
	a, err := NewOTPEngine(DefaultOTPConfig())
	if err != nil {
		t.Fatalf("NewOTPEngine returned error: %v", err)
	}
	b, err := NewOTPEngine(OTPConfig{SecretBytes: 4})
	if err != nil {
		t.Fatalf("NewOTPEngine returned error: %v", err)
	}

	if a.State() != domain.OTPStateIdle {
		t.Fatalf("expected idle state, got %s", a.State())
	}
	if bytes.Equal(a.secret, b.secret) {
		t.Fatal("expected independent secrets")
	}
	// Undersized requests fall back to the default 20 bytes.
	if len(b.secret) != 20 {
		t.Fatalf("expected default secret size, got %d", len(b.secret))
	}
}

func TestNewOTPEngineWithSecretRequiresSecret(t *testing.T) {
	if _, err := NewOTPEngineWithSecret(DefaultOTPConfig(), nil); err != ErrMissingSecret {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestCurrentCodeStableWithinWindow(t *testing.T) {
	engine := newRFCEngine(t, DefaultOTPConfig())
	base := time.Unix(30*1000, 0)

	now := base.Add(time.Second)
	engine.WithClock(func() time.Time { return now })
	first := engine.CurrentCode()
	if engine.State() != domain.OTPStateCodeIssued {
		t.Fatalf("expected code issued state, got %s", engine.State())
	}

	now = base.Add(29 * time.Second)
	if second := engine.CurrentCode(); first != second {
		t.Fatalf("expected identical codes within a step: %s vs %s", first, second)
	}

	now = base.Add(31 * time.Second)
	if next := engine.CurrentCode(); next != engine.DeriveCode(1001) {
		t.Fatalf("expected code for the following step, got %s", next)
	}
}

func TestVerifyProtocol(t *testing.T) {
	engine := newRFCEngine(t, DefaultOTPConfig())
	start := time.Unix(1_700_000_000, 0)
	now := start
	engine.WithClock(func() time.Time { return now })

	if res := engine.Verify("000000", start); res != domain.VerificationPending {
		t.Fatalf("expected pending before any code is issued, got %s", res)
	}

	challenge := engine.Issue()
	if !challenge.IssuedAt.Equal(start) || !challenge.Deadline.Equal(start.Add(180*time.Second)) {
		t.Fatalf("unexpected challenge window: %+v", challenge)
	}

	now = start.Add(10 * time.Second)
	if res := engine.Verify("not-it", challenge.IssuedAt); res != domain.VerificationPending {
		t.Fatalf("expected pending for wrong code, got %s", res)
	}
	if engine.State() != domain.OTPStateCodeIssued {
		t.Fatalf("expected state to remain code issued, got %s", engine.State())
	}

	// The captured code stays valid after the 30-second step rolls over.
	now = start.Add(95 * time.Second)
	if res := engine.Verify(challenge.Code, challenge.IssuedAt); res != domain.VerificationVerified {
		t.Fatalf("expected verified, got %s", res)
	}

	now = start.Add(500 * time.Second)
	if res := engine.Verify("wrong", challenge.IssuedAt); res != domain.VerificationVerified {
		t.Fatalf("verified state must be sticky, got %s", res)
	}
}

func TestVerifyExpiresAfterWindow(t *testing.T) {
	cases := []struct {
		name    string
		elapsed time.Duration
	}{
		{"exactly at the deadline", 180 * time.Second},
		{"one second late", 181 * time.Second},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := newRFCEngine(t, DefaultOTPConfig())
			start := time.Unix(0, 0)
			now := start
			engine.WithClock(func() time.Time { return now })

			challenge := engine.Issue()
			now = start.Add(tc.elapsed)

			if res := engine.Verify(challenge.Code, challenge.IssuedAt); res != domain.VerificationExpired {
				t.Fatalf("expected expired, got %s", res)
			}
			if engine.State() != domain.OTPStateExpired {
				t.Fatalf("expected expired state, got %s", engine.State())
			}

			now = start
			if res := engine.Verify(challenge.Code, challenge.IssuedAt); res != domain.VerificationExpired {
				t.Fatalf("expired state must be sticky, got %s", res)
			}
		})
	}
}

func TestVerifyAfterCurrentCode(t *testing.T) {
	engine := newRFCEngine(t, DefaultOTPConfig())
	issuedAt := time.Unix(90, 0)
	engine.WithClock(func() time.Time { return issuedAt })

	code := engine.CurrentCode()
	if res := engine.Verify(code, issuedAt); res != domain.VerificationVerified {
		t.Fatalf("expected code from CurrentCode to verify, got %s", res)
	}
}
