package port

// Encryptor seals and opens opaque credential blobs. Implementations hold their key
// for the object lifetime and use fresh randomness per call.
type Encryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// Hasher accumulates bytes and produces a fixed-size digest.
type Hasher interface {
	Update(data []byte)
	Digest() []byte
	HexDigest() string
	Reset()
}

// SaltSource produces fixed-size random salts.
type SaltSource interface {
	Generate() ([]byte, error)
}

// PasswordHasher hashes and verifies secrets using the configured algorithm.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encoded string) (bool, error)
}
