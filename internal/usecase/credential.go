package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/account-guard/internal/core/domain"
	"github.com/arklim/account-guard/internal/core/port"
	"github.com/arklim/account-guard/internal/infra/metrics"
	"github.com/arklim/account-guard/internal/infra/security"
)

// SealedCredential is the protected form of a password produced after scoring.
type SealedCredential struct {
	PasswordDigest   string
	Salt             []byte
	Ciphertext       []byte
	CiphertextDigest string
	Verifier         string
	SealedAt         time.Time
}

// Salted reports whether a salt was appended before encryption.
func (c *SealedCredential) Salted() bool {
	return len(c.Salt) > 0
}

// EncodedCiphertext returns the ciphertext in base64 for display.
func (c *SealedCredential) EncodedCiphertext() string {
	return base64.StdEncoding.EncodeToString(c.Ciphertext)
}

// SaltHex returns the salt in hex, or an empty string when unsalted.
func (c *SealedCredential) SaltHex() string {
	return hex.EncodeToString(c.Salt)
}

// SecurityReport combines the strength assessment with the sealed credential.
type SecurityReport struct {
	UserID     string
	FullName   string
	Assessment domain.PasswordAssessment
	Sealed     *SealedCredential
}

// CredentialService scores live passwords and seals them for storage.
type CredentialService struct {
	evaluator port.PasswordEvaluator
	encryptor port.Encryptor
	salts     port.SaltSource
	verifier  port.PasswordHasher
	newHasher func() port.Hasher
	metrics   *metrics.GuardMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewCredentialService constructs a CredentialService backed by SHA-256.
func NewCredentialService(evaluator port.PasswordEvaluator, encryptor port.Encryptor, salts port.SaltSource, logger *zap.Logger) *CredentialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialService{
		evaluator: evaluator,
		encryptor: encryptor,
		salts:     salts,
		newHasher: func() port.Hasher { return security.NewSHA256Hasher() },
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithVerifier adds a password verifier (Argon2id) to every sealed credential.
func (s *CredentialService) WithVerifier(verifier port.PasswordHasher) *CredentialService {
	s.verifier = verifier
	return s
}

// WithMetrics attaches Prometheus collectors.
func (s *CredentialService) WithMetrics(m *metrics.GuardMetrics) *CredentialService {
	s.metrics = m
	return s
}

// WithClock overrides the internal clock for deterministic tests.
func (s *CredentialService) WithClock(clock func() time.Time) *CredentialService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Assess scores a password.
func (s *CredentialService) Assess(password string) domain.PasswordAssessment {
	assessment := s.evaluator.Assess(password)
	s.metrics.ObserveAssessment(assessment.Level.String())
	return assessment
}

// Seal hashes the raw password, optionally appends a fresh salt, encrypts the
// result and hashes the ciphertext.
func (s *CredentialService) Seal(ctx context.Context, password string, salted bool) (*SealedCredential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sealed := &SealedCredential{
		PasswordDigest: s.digest([]byte(password)),
		SealedAt:       s.now(),
	}

	plaintext := []byte(password)
	if salted {
		salt, err := s.salts.Generate()
		if err != nil {
			return nil, fmt.Errorf("generate salt: %w", err)
		}
		sealed.Salt = salt
		plaintext = security.SaltPassword(password, salt)
	}

	ciphertext, err := s.encryptor.Encrypt(plaintext)
	if err != nil {
		return nil, fmt.Errorf("encrypt credential: %w", err)
	}
	sealed.Ciphertext = ciphertext
	sealed.CiphertextDigest = s.digest(ciphertext)

	if s.verifier != nil {
		verifier, err := s.verifier.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("hash credential: %w", err)
		}
		sealed.Verifier = verifier
	}

	s.logger.Debug("credential sealed",
		zap.Bool("salted", salted),
		zap.String("ciphertext_digest", sealed.CiphertextDigest),
	)
	return sealed, nil
}

// Unseal decrypts a sealed credential and strips its salt.
func (s *CredentialService) Unseal(sealed *SealedCredential) (string, error) {
	if sealed == nil {
		return "", fmt.Errorf("sealed credential is nil")
	}
	if got := s.digest(sealed.Ciphertext); got != sealed.CiphertextDigest {
		return "", fmt.Errorf("ciphertext digest mismatch")
	}

	plaintext, err := s.encryptor.Decrypt(sealed.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("decrypt credential: %w", err)
	}
	if sealed.Salted() {
		if !bytes.HasSuffix(plaintext, sealed.Salt) {
			return "", fmt.Errorf("salt mismatch")
		}
		plaintext = plaintext[:len(plaintext)-len(sealed.Salt)]
	}
	return string(plaintext), nil
}

// Matches checks a password against the sealed verifier, falling back to the raw digest.
func (s *CredentialService) Matches(password string, sealed *SealedCredential) (bool, error) {
	if sealed == nil {
		return false, nil
	}
	if sealed.Verifier != "" && s.verifier != nil {
		return s.verifier.Verify(password, sealed.Verifier)
	}
	return s.digest([]byte(password)) == sealed.PasswordDigest, nil
}

// Report scores the account's live password and seals it.
func (s *CredentialService) Report(ctx context.Context, account domain.UserAccount, salted bool) (*SecurityReport, error) {
	assessment := s.Assess(account.CurrentPassword)
	sealed, err := s.Seal(ctx, account.CurrentPassword, salted)
	if err != nil {
		return nil, err
	}

	s.logger.Info("security report generated",
		zap.String("user_id", account.ID),
		zap.String("level", assessment.Level.String()),
		zap.Int("feedback_items", len(assessment.Feedback)),
		zap.Int("entropy_score", assessment.EntropyScore),
	)
	return &SecurityReport{
		UserID:     account.ID,
		FullName:   account.FullName(),
		Assessment: assessment,
		Sealed:     sealed,
	}, nil
}

func (s *CredentialService) digest(data []byte) string {
	h := s.newHasher()
	h.Update(data)
	return h.HexDigest()
}
