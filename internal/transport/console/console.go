// Package console drives a login session over line-oriented text input and output.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/account-guard/internal/core/domain"
	"github.com/arklim/account-guard/internal/usecase"
)

const separator = "---------------------------------------------------------"

// Dependencies groups the services the console needs.
type Dependencies struct {
	Sessions    *usecase.SessionService
	Credentials *usecase.CredentialService
	Logger      *zap.Logger
}

// Console is the interactive front end for one login session.
type Console struct {
	sessions    *usecase.SessionService
	credentials *usecase.CredentialService
	prompt      *Prompter
	logger      *zap.Logger
}

// New builds a Console reading from in and writing to out.
func New(deps Dependencies, in io.Reader, out io.Writer) *Console {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Console{
		sessions:    deps.Sessions,
		credentials: deps.Credentials,
		prompt:      NewPrompter(in, out),
		logger:      log,
	}
}

// Run walks the user through login, renewal, the second factor and the
// security report. Lockout and code expiry end the session without an error;
// the returned snapshot records how it ended.
func (c *Console) Run(ctx context.Context) (domain.Session, error) {
	defer c.prompt.Close()

	session, err := c.startSession(ctx)
	if err != nil {
		return domain.Session{}, err
	}

	steps := []func(context.Context, *usecase.LoginSession) error{
		c.login,
		c.renew,
		c.secondFactor,
		c.report,
	}
	for _, step := range steps {
		if session.State() == domain.SessionStateAborted {
			break
		}
		if err := step(ctx, session); err != nil {
			if !session.State().Terminal() {
				reason := "input_closed"
				if ctx.Err() != nil {
					reason = "cancelled"
				}
				_ = session.Abort(context.WithoutCancel(ctx), reason)
			}
			return session.Snapshot(), err
		}
	}

	snapshot := session.Snapshot()
	c.logger.Info("console session finished",
		zap.String("session_id", snapshot.ID),
		zap.String("state", string(snapshot.State)),
		zap.String("abort_reason", snapshot.AbortReason),
	)
	return snapshot, nil
}

func (c *Console) startSession(ctx context.Context) (*usecase.LoginSession, error) {
	for {
		userID, err := c.prompt.Ask(ctx, "Enter your user ID: ")
		if err != nil {
			return nil, err
		}

		session, err := c.sessions.Start(ctx, userID)
		switch {
		case err == nil:
			acc, _ := session.Account()
			c.prompt.Printf("Welcome, %s.\n", acc.FullName())
			return session, nil
		case errors.Is(err, usecase.ErrUserNotFound):
			c.prompt.Print("Invalid ID. Please enter a valid numeric ID.\n")
			if ids := c.sessions.KnownUserIDs(); len(ids) > 0 {
				c.prompt.Printf("Known IDs: %s\n", strings.Join(ids, ", "))
			}
		case errors.Is(err, usecase.ErrInactiveAccount):
			c.prompt.Print("This account is locked. Please choose another user ID.\n")
		default:
			return nil, err
		}
	}
}

func (c *Console) login(ctx context.Context, session *usecase.LoginSession) error {
	for session.State() == domain.SessionStateAwaitingLogin {
		password, err := c.prompt.Ask(ctx, "Enter your Password: ")
		if err != nil {
			return err
		}

		err = session.SubmitPassword(ctx, password)
		switch {
		case err == nil:
			c.prompt.Print("Login success!\n")
		case errors.Is(err, usecase.ErrInvalidCredentials):
			c.prompt.Printf("Failed to login. \nFailed Login Attempt: %d\n\n", session.Snapshot().FailedAttempts)
		case errors.Is(err, usecase.ErrLoginAttemptsExhausted):
			c.prompt.Printf("Unable to login. Account is locked due to %d failed login attempts.\nTerminating session...\n",
				session.Snapshot().FailedAttempts)
			return nil
		default:
			return err
		}
	}
	return nil
}

func (c *Console) renew(ctx context.Context, session *usecase.LoginSession) error {
	for session.State() == domain.SessionStateAwaitingRenewal {
		candidate, err := c.prompt.Ask(ctx, "\nYour password has expired. Enter a new password: ")
		if err != nil {
			return err
		}

		err = session.RenewPassword(ctx, candidate)
		switch {
		case err == nil:
			c.prompt.Printf("Password updated successfully for userID %s.\n", session.Snapshot().UserID)
		case errors.Is(err, usecase.ErrPasswordReused):
			c.prompt.Print("Password cannot be the same as the current password.\n")
		case errors.Is(err, usecase.ErrPasswordTooSimilar):
			c.prompt.Print("Password cannot be set. It contains at least four consecutive characters shared with the history or current password.\n")
		case errors.Is(err, usecase.ErrPasswordPolicy):
			c.prompt.Printf("Password cannot be set. %s\n", policyReason(err))
		default:
			return err
		}
	}
	return nil
}

func (c *Console) secondFactor(ctx context.Context, session *usecase.LoginSession) error {
	challenge, ok := session.Challenge()
	if !ok {
		return nil
	}

	window := challenge.Deadline.Sub(challenge.IssuedAt).Round(time.Second)
	c.prompt.Printf("\nYour Generated TOTP: %s (valid for %s)\n", challenge.Code, window)

	for session.State() == domain.SessionStateAwaitingSecondFactor {
		code, err := c.prompt.Ask(ctx, "Enter TOTP: ")
		if err != nil {
			return err
		}

		result, err := session.VerifySecondFactor(ctx, code)
		switch {
		case errors.Is(err, usecase.ErrTOTPExpired):
			c.prompt.Print("TOTP has expired.\nTerminating session...\n")
			return nil
		case err != nil:
			return err
		case result == domain.VerificationVerified:
			c.prompt.Print("Correct TOTP entered. Access granted!\n")
		default:
			c.prompt.Print("Incorrect TOTP. Try again.\n\n")
		}
	}
	return nil
}

func (c *Console) report(ctx context.Context, session *usecase.LoginSession) error {
	if session.State() != domain.SessionStateAuthenticated || c.credentials == nil {
		return nil
	}
	acc, ok := session.Account()
	if !ok {
		return usecase.ErrUserNotFound
	}

	salted, err := c.askYesNo(ctx, "\nWould you like to add salt to your password? (y / n) ")
	if err != nil {
		return err
	}

	report, err := c.credentials.Report(ctx, acc, salted)
	if err != nil {
		return fmt.Errorf("build security report: %w", err)
	}
	c.writeReport(report)
	return nil
}

func (c *Console) askYesNo(ctx context.Context, prompt string) (bool, error) {
	for {
		answer, err := c.prompt.Ask(ctx, prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		c.prompt.Print("Invalid input.\n")
	}
}

func (c *Console) writeReport(report *usecase.SecurityReport) {
	assessment := report.Assessment
	sealed := report.Sealed

	c.prompt.Printf("%s\n", separator)
	c.prompt.Printf("\nYour Current Password Security Level: %s\n", assessment.Level)
	c.prompt.Print("\nImprovement Feedback:\n")
	for _, item := range assessment.Feedback {
		c.prompt.Printf("- %s\n", item)
	}
	c.prompt.Printf("\nEntropy Score: %d / 4\n", assessment.EntropyScore)
	c.prompt.Printf("\n%s\n", separator)

	if sealed.Salted() {
		c.prompt.Printf("\nYour password has been successfully salted!\nSalt: %s\n", sealed.SaltHex())
	}
	c.prompt.Printf("Encrypted Password: %s\n", sealed.EncodedCiphertext())
	c.prompt.Printf("Raw Password Hash: %s\n", sealed.PasswordDigest)
	c.prompt.Printf("Encrypted Password Hash: %s\n", sealed.CiphertextDigest)
	if sealed.Verifier != "" {
		c.prompt.Printf("Password Verifier: %s\n", sealed.Verifier)
	}
}

func policyReason(err error) string {
	msg := err.Error()
	if _, reason, ok := strings.Cut(msg, ": "); ok {
		return reason
	}
	return msg
}
