package security

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/arklim/account-guard/internal/core/port"
)

const aesKeyLength = 16

var errInvalidCiphertext = errors.New("aes: invalid ciphertext")

// AESCipher encrypts blobs with AES-CBC and PKCS7 padding. The key is generated
// once per instance; every call draws a fresh IV which is prefixed to the output.
type AESCipher struct {
	block cipher.Block
}

// NewAESCipher generates a random 128-bit key.
func NewAESCipher() (*AESCipher, error) {
	key := make([]byte, aesKeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("aes: generate key: %w", err)
	}
	return NewAESCipherWithKey(key)
}

// NewAESCipherWithKey builds a cipher over a 16, 24 or 32 byte key.
func NewAESCipherWithKey(key []byte) (*AESCipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes: %w", err)
	}
	return &AESCipher{block: block}, nil
}

// Encrypt returns IV || CBC(pad(plaintext)).
func (c *AESCipher) Encrypt(plaintext []byte) ([]byte, error) {
	padded := pkcs7Pad(plaintext, aes.BlockSize)

	out := make([]byte, aes.BlockSize+len(padded))
	iv := out[:aes.BlockSize]
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("aes: generate iv: %w", err)
	}

	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out[aes.BlockSize:], padded)
	return out, nil
}

// Decrypt reverses Encrypt.
func (c *AESCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < 2*aes.BlockSize || len(ciphertext)%aes.BlockSize != 0 {
		return nil, errInvalidCiphertext
	}

	iv := ciphertext[:aes.BlockSize]
	body := make([]byte, len(ciphertext)-aes.BlockSize)
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(body, ciphertext[aes.BlockSize:])

	return pkcs7Unpad(body, aes.BlockSize)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errInvalidCiphertext
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errInvalidCiphertext
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errInvalidCiphertext
		}
	}
	return data[:len(data)-n], nil
}

var _ port.Encryptor = (*AESCipher)(nil)
