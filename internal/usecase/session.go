package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/account-guard/internal/core/domain"
	"github.com/arklim/account-guard/internal/core/port"
	"github.com/arklim/account-guard/internal/infra/logger"
	"github.com/arklim/account-guard/internal/infra/metrics"
	"github.com/arklim/account-guard/internal/repository"
)

const (
	defaultMaxLoginAttempts = 5

	abortReasonAttemptsExhausted = "login_attempts_exhausted"
	abortReasonTOTPExpired       = "totp_expired"
	abortReasonCancelled         = "cancelled"
	abortReasonUserMissing       = "user_not_found"
	abortReasonOTPUnavailable    = "otp_unavailable"
)

// RenewalValidator screens renewal candidates before the history rule runs.
type RenewalValidator interface {
	Validate(candidate string, account domain.UserAccount) error
}

// OTPFactory creates a fresh second-factor engine for a session.
type OTPFactory func() (port.OTPVerifier, error)

// SessionService starts login sessions and holds their shared collaborators.
type SessionService struct {
	accounts    port.AccountRepository
	otpFactory  OTPFactory
	renewal     RenewalValidator
	events      port.EventPublisher
	metrics     *metrics.GuardMetrics
	logger      *zap.Logger
	now         func() time.Time
	maxAttempts int
}

// NewSessionService constructs a SessionService.
func NewSessionService(accounts port.AccountRepository, otpFactory OTPFactory, events port.EventPublisher, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		accounts:    accounts,
		otpFactory:  otpFactory,
		events:      events,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		maxAttempts: defaultMaxLoginAttempts,
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (s *SessionService) WithClock(clock func() time.Time) *SessionService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// WithMaxAttempts sets how many wrong passwords abort a session.
func (s *SessionService) WithMaxAttempts(n int) *SessionService {
	if n > 0 {
		s.maxAttempts = n
	}
	return s
}

// WithRenewalValidator injects an extra policy applied to renewal candidates.
func (s *SessionService) WithRenewalValidator(v RenewalValidator) *SessionService {
	s.renewal = v
	return s
}

// WithMetrics attaches Prometheus collectors.
func (s *SessionService) WithMetrics(m *metrics.GuardMetrics) *SessionService {
	s.metrics = m
	return s
}

// KnownUserIDs lists the account ids a session can be started for.
func (s *SessionService) KnownUserIDs() []string {
	return s.accounts.IDs()
}

// Start opens a session for userID in the AwaitingLogin state.
func (s *SessionService) Start(ctx context.Context, userID string) (*LoginSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	acc, ok := s.accounts.Lookup(userID)
	if !ok {
		return nil, ErrUserNotFound
	}
	if acc.Status != domain.AccountStatusActive {
		return nil, fmt.Errorf("%w: %s", ErrInactiveAccount, acc.Status)
	}

	session := domain.Session{
		ID:        uuid.NewString(),
		UserID:    acc.ID,
		State:     domain.SessionStateAwaitingLogin,
		StartedAt: s.now(),
	}
	l := &LoginSession{
		svc:     s,
		session: session,
		logger:  logger.ForSession(s.logger, session.ID, acc.ID),
	}
	l.logger.Info("session started")
	return l, nil
}

// LoginSession walks one user through password login, optional renewal and
// the second factor. It is not safe for concurrent use.
type LoginSession struct {
	svc     *SessionService
	session domain.Session
	otp     port.OTPVerifier
	logger  *zap.Logger
}

// Snapshot returns a copy of the session record.
func (l *LoginSession) Snapshot() domain.Session {
	out := l.session
	if l.session.Challenge != nil {
		challenge := *l.session.Challenge
		out.Challenge = &challenge
	}
	return out
}

// State returns the current session state.
func (l *LoginSession) State() domain.SessionState {
	return l.session.State
}

// RemainingAttempts returns how many wrong passwords are still tolerated.
func (l *LoginSession) RemainingAttempts() int {
	remaining := l.svc.maxAttempts - l.session.FailedAttempts
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Account returns the current view of the session's account.
func (l *LoginSession) Account() (domain.UserAccount, bool) {
	return l.svc.accounts.Lookup(l.session.UserID)
}

// Challenge returns the issued second-factor code, if any.
func (l *LoginSession) Challenge() (domain.OTPChallenge, bool) {
	if l.session.Challenge == nil {
		return domain.OTPChallenge{}, false
	}
	return *l.session.Challenge, true
}

// SubmitPassword checks a login password. A wrong password returns
// ErrInvalidCredentials until the attempt budget is spent, after which the
// account is locked, the session aborts and ErrLoginAttemptsExhausted is returned.
func (l *LoginSession) SubmitPassword(ctx context.Context, password string) error {
	if err := l.expect(ctx, domain.SessionStateAwaitingLogin, "submit password"); err != nil {
		return err
	}

	acc, ok := l.Account()
	if !ok {
		l.abort(ctx, abortReasonUserMissing)
		return ErrUserNotFound
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(acc.CurrentPassword)) == 1 {
		l.svc.metrics.ObserveLogin("success")
		l.logger.Info("password accepted", zap.Bool("renewal_required", acc.Expired()))
		if acc.Expired() {
			l.session.State = domain.SessionStateAwaitingRenewal
			return nil
		}
		return l.beginSecondFactor(ctx)
	}

	l.session.FailedAttempts++
	remaining := l.RemainingAttempts()
	l.svc.metrics.ObserveLogin("failure")
	l.logger.Warn("password rejected",
		zap.Int("attempt", l.session.FailedAttempts),
		zap.Int("remaining", remaining),
	)
	l.publish("login failed", func() error {
		return l.svc.events.PublishLoginFailed(ctx, domain.LoginFailedEvent{
			EventID:   uuid.NewString(),
			UserID:    l.session.UserID,
			SessionID: l.session.ID,
			Attempt:   l.session.FailedAttempts,
			Remaining: remaining,
			FailedAt:  l.svc.now(),
		})
	})

	if remaining > 0 {
		return fmt.Errorf("%w: %d attempts remaining", ErrInvalidCredentials, remaining)
	}

	if err := l.svc.accounts.SetStatus(l.session.UserID, domain.AccountStatusLocked); err != nil {
		l.logger.Warn("lock account failed", zap.Error(err))
	}
	l.abort(ctx, abortReasonAttemptsExhausted)
	return ErrLoginAttemptsExhausted
}

// RenewPassword replaces an expired password. Rejected candidates leave the
// session in AwaitingRenewal so the caller can ask again.
func (l *LoginSession) RenewPassword(ctx context.Context, candidate string) error {
	if err := l.expect(ctx, domain.SessionStateAwaitingRenewal, "renew password"); err != nil {
		return err
	}

	acc, ok := l.Account()
	if !ok {
		l.abort(ctx, abortReasonUserMissing)
		return ErrUserNotFound
	}

	if l.svc.renewal != nil {
		if err := l.svc.renewal.Validate(candidate, acc); err != nil {
			l.svc.metrics.ObservePasswordChange("policy")
			return fmt.Errorf("%w: %v", ErrPasswordPolicy, err)
		}
	}

	if err := l.svc.accounts.SetNewPassword(acc.ID, candidate); err != nil {
		l.svc.metrics.ObservePasswordChange(changeOutcome(err))
		l.logger.Info("renewal candidate rejected",
			zap.String("candidate", logger.MaskString(candidate)),
			zap.Error(err),
		)
		return mapRepositoryError("validate new password", err)
	}
	if err := l.svc.accounts.CommitPassword(acc.ID, candidate); err != nil {
		return mapRepositoryError("commit password", err)
	}
	l.svc.metrics.ObservePasswordChange("accepted")

	updated, _ := l.Account()
	l.logger.Info("password renewed", zap.Int("expiration_months_left", updated.ExpirationMonthsLeft))
	l.publish("password changed", func() error {
		return l.svc.events.PublishPasswordChanged(ctx, domain.PasswordChangedEvent{
			EventID:    uuid.NewString(),
			UserID:     acc.ID,
			SessionID:  l.session.ID,
			ChangedAt:  l.svc.now(),
			HistoryLen: len(updated.History),
			Metadata:   map[string]any{"reason": "expired"},
		})
	})

	return l.beginSecondFactor(ctx)
}

// VerifySecondFactor checks a one-time code. Pending results may be retried;
// an expired window aborts the session with ErrTOTPExpired.
func (l *LoginSession) VerifySecondFactor(ctx context.Context, code string) (domain.VerificationResult, error) {
	if err := l.expect(ctx, domain.SessionStateAwaitingSecondFactor, "verify second factor"); err != nil {
		return domain.VerificationPending, err
	}

	result := l.otp.Verify(strings.TrimSpace(code), l.session.Challenge.IssuedAt)
	l.svc.metrics.ObserveOTP(string(result))

	switch result {
	case domain.VerificationVerified:
		l.session.State = domain.SessionStateAuthenticated
		l.svc.metrics.ObserveSession(string(l.session.State))
		l.logger.Info("session authenticated")
		l.publish("session authenticated", func() error {
			return l.svc.events.PublishSessionAuthenticated(ctx, domain.SessionAuthenticatedEvent{
				EventID:         uuid.NewString(),
				UserID:          l.session.UserID,
				SessionID:       l.session.ID,
				AuthenticatedAt: l.svc.now(),
			})
		})
		return result, nil
	case domain.VerificationExpired:
		l.abort(ctx, abortReasonTOTPExpired)
		return result, ErrTOTPExpired
	default:
		return result, nil
	}
}

// Abort ends a session that has not reached a terminal state.
func (l *LoginSession) Abort(ctx context.Context, reason string) error {
	if l.session.State.Terminal() {
		return fmt.Errorf("%w: abort in state %s", ErrInvalidTransition, l.session.State)
	}
	l.abort(ctx, reason)
	return nil
}

func (l *LoginSession) expect(ctx context.Context, want domain.SessionState, op string) error {
	if l.session.State != want {
		return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, op, l.session.State)
	}
	if err := ctx.Err(); err != nil {
		l.abort(context.WithoutCancel(ctx), abortReasonCancelled)
		return err
	}
	return nil
}

func (l *LoginSession) beginSecondFactor(ctx context.Context) error {
	if l.svc.otpFactory == nil {
		l.abort(ctx, abortReasonOTPUnavailable)
		return fmt.Errorf("second factor not configured")
	}
	otp, err := l.svc.otpFactory()
	if err != nil {
		l.abort(ctx, abortReasonOTPUnavailable)
		return fmt.Errorf("init second factor: %w", err)
	}

	challenge := otp.Issue()
	l.otp = otp
	l.session.Challenge = &challenge
	l.session.State = domain.SessionStateAwaitingSecondFactor
	l.logger.Info("second factor issued", zap.Time("deadline", challenge.Deadline))
	return nil
}

func (l *LoginSession) abort(ctx context.Context, reason string) {
	l.session.State = domain.SessionStateAborted
	l.session.AbortReason = reason
	l.svc.metrics.ObserveSession(string(l.session.State))
	l.logger.Warn("session aborted", zap.String("reason", reason))
	l.publish("session aborted", func() error {
		return l.svc.events.PublishSessionAborted(ctx, domain.SessionAbortedEvent{
			EventID:   uuid.NewString(),
			UserID:    l.session.UserID,
			SessionID: l.session.ID,
			Reason:    reason,
			AbortedAt: l.svc.now(),
		})
	})
}

func (l *LoginSession) publish(name string, fn func() error) {
	if l.svc.events == nil {
		return
	}
	if err := fn(); err != nil {
		l.logger.Warn("publish event failed", zap.String("event", name), zap.Error(err))
	}
}

func changeOutcome(err error) string {
	switch {
	case errors.Is(err, repository.ErrPasswordReused):
		return "reused"
	case errors.Is(err, repository.ErrPasswordTooSimilar):
		return "too_similar"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
