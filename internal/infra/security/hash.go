package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/arklim/account-guard/internal/core/port"
)

const defaultSaltLength = 16

// SHA256Hasher is a resettable streaming SHA-256 digest.
type SHA256Hasher struct {
	h hash.Hash
}

// NewSHA256Hasher returns an empty hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{h: sha256.New()}
}

// Update appends data to the running digest.
func (s *SHA256Hasher) Update(data []byte) {
	s.h.Write(data)
}

// Digest returns the digest of everything written since the last Reset.
func (s *SHA256Hasher) Digest() []byte {
	return s.h.Sum(nil)
}

// HexDigest returns Digest hex-encoded.
func (s *SHA256Hasher) HexDigest() string {
	return hex.EncodeToString(s.Digest())
}

// Reset discards all written data.
func (s *SHA256Hasher) Reset() {
	s.h.Reset()
}

// RandomSalt produces fixed-size salts from crypto/rand.
type RandomSalt struct {
	length int
}

// NewRandomSalt returns a salt source of the given length; non-positive lengths use 16 bytes.
func NewRandomSalt(length int) *RandomSalt {
	if length <= 0 {
		length = defaultSaltLength
	}
	return &RandomSalt{length: length}
}

// Generate returns a fresh random salt.
func (r *RandomSalt) Generate() ([]byte, error) {
	salt := make([]byte, r.length)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// SaltPassword concatenates the password bytes and the salt. No key derivation is applied.
func SaltPassword(password string, salt []byte) []byte {
	out := make([]byte, 0, len(password)+len(salt))
	out = append(out, password...)
	return append(out, salt...)
}

var (
	_ port.Hasher     = (*SHA256Hasher)(nil)
	_ port.SaltSource = (*RandomSalt)(nil)
)
