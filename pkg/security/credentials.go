package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceLen = 24

// ErrInvalidCiphertext signals a sealed blob that cannot be opened.
var ErrInvalidCiphertext = fmt.Errorf("invalid sealed credential")

// CredentialSealer seals account credentials at rest. Credentials must remain
// recoverable so they can be shown to the owning customer, so this is
// authenticated encryption rather than a one-way hash.
type CredentialSealer struct {
	key [32]byte
}

// NewCredentialSealer derives a sealer from the base64-encoded 32-byte key.
func NewCredentialSealer(encodedKey string) (*CredentialSealer, error) {
	if encodedKey == "" {
		return nil, fmt.Errorf("credential key is required")
	}
	raw, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("decode credential key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("credential key must be 32 bytes, got %d", len(raw))
	}
	sealer := &CredentialSealer{}
	copy(sealer.key[:], raw)
	return sealer, nil
}

// Seal encrypts the plaintext with a random nonce. An empty plaintext seals to
// nil so optional credentials stay NULL in storage.
func (s *CredentialSealer) Seal(plaintext string) ([]byte, error) {
	if plaintext == "" {
		return nil, nil
	}
	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key), nil
}

// Open decrypts a sealed blob. A nil blob opens to the empty string.
func (s *CredentialSealer) Open(sealed []byte) (string, error) {
	if len(sealed) == 0 {
		return "", nil
	}
	if len(sealed) < nonceLen {
		return "", ErrInvalidCiphertext
	}
	var nonce [nonceLen]byte
	copy(nonce[:], sealed[:nonceLen])
	plaintext, ok := secretbox.Open(nil, sealed[nonceLen:], &nonce, &s.key)
	if !ok {
		return "", ErrInvalidCiphertext
	}
	return string(plaintext), nil
}
