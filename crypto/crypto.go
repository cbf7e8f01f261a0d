// Package crypto provides the symmetric encryption capability consumed by
// the codec pipeline: AES-256-GCM with a key derived from a shared secret
// string and a fresh random IV per call.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
)

var (
	ErrNoKey = errors.New("crypto: empty encryption key")

	// ErrDecrypt covers both tampered ciphertext and a wrong key; GCM cannot
	// distinguish the two.
	ErrDecrypt = errors.New("crypto: decryption failed")
)

// Envelope wraps an encrypted payload. Binary records whether the plaintext
// that was sealed was a compressed binary rather than serialized text, so
// the decode side can reverse format conversion correctly.
//
// An Envelope is only ever produced from a freshly drawn IV; IVs are never
// reused across entries.
type Envelope struct {
	Ciphertext []byte
	IV         []byte
	Binary     bool
}

// Cipher is an AES-256-GCM sealer/opener. Safe for concurrent use.
type Cipher struct {
	aead cipher.AEAD
}

// New derives a 32-byte AES key from secret via SHA-256 and constructs the
// GCM cipher. The secret itself is never persisted.
func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, ErrNoKey
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("crypto: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random IV. binary flags whether the
// plaintext is a compressed binary form.
func (c *Cipher) Encrypt(plaintext []byte, binary bool) (Envelope, error) {
	iv := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return Envelope{}, fmt.Errorf("crypto: generate iv: %w", err)
	}
	return Envelope{
		Ciphertext: c.aead.Seal(nil, iv, plaintext, nil),
		IV:         iv,
		Binary:     binary,
	}, nil
}

// Decrypt opens the envelope, verifying the GCM tag.
func (c *Cipher) Decrypt(env Envelope) ([]byte, error) {
	if len(env.IV) != c.aead.NonceSize() {
		return nil, ErrDecrypt
	}
	plaintext, err := c.aead.Open(nil, env.IV, env.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
