// Package crypto implements the authenticated encryption codec used to
// protect vault secrets at rest. Secrets are sealed with AES-256-GCM under a
// single process-wide key; the IV, ciphertext and authentication tag are
// stored as separate hex strings so a payload is self-contained.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	// KeySize is the required key length in bytes (AES-256).
	KeySize = 32
	// ivSize is the GCM-recommended nonce length.
	ivSize = 12
	// tagSize is the GCM authentication tag length.
	tagSize = 16
)

// ErrIntegrity is returned when decryption fails authentication: tampered
// ciphertext, a corrupted IV or tag, or the wrong key. No plaintext is ever
// returned alongside it.
var ErrIntegrity = errors.New("payload failed integrity check")

// ErrInvalidKey is returned when a key is not exactly 32 bytes.
var ErrInvalidKey = errors.New("encryption key must be 32 bytes (64 hex chars)")

// Payload is an encrypted secret as stored and transported. Each field is a
// hex-encoded byte string.
type Payload struct {
	IV      string `json:"iv"`
	Content string `json:"content"`
	Tag     string `json:"tag"`
}

// ParseKey decodes a hex-encoded key and enforces the AES-256 length.
func ParseKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, ErrInvalidKey
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	return key, nil
}

// Encrypt seals plaintext under key with a fresh random 12-byte IV. The IV
// must never be reused under the same key, so it is generated here and
// nowhere else.
func Encrypt(plaintext string, key []byte) (Payload, error) {
	if len(key) != KeySize {
		return Payload{}, ErrInvalidKey
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return Payload{}, fmt.Errorf("generate iv: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return Payload{}, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return Payload{}, err
	}

	// Seal appends the 16-byte tag to the ciphertext; store them separately.
	sealed := aesgcm.Seal(nil, iv, []byte(plaintext), nil)
	content := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	return Payload{
		IV:      hex.EncodeToString(iv),
		Content: hex.EncodeToString(content),
		Tag:     hex.EncodeToString(tag),
	}, nil
}

// Decrypt opens a payload and returns the plaintext. Any authentication
// failure yields ErrIntegrity.
func Decrypt(p Payload, key []byte) (string, error) {
	if len(key) != KeySize {
		return "", ErrInvalidKey
	}

	iv, err := hex.DecodeString(p.IV)
	if err != nil {
		return "", ErrIntegrity
	}
	content, err := hex.DecodeString(p.Content)
	if err != nil {
		return "", ErrIntegrity
	}
	tag, err := hex.DecodeString(p.Tag)
	if err != nil {
		return "", ErrIntegrity
	}
	if len(iv) != ivSize || len(tag) != tagSize {
		return "", ErrIntegrity
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plain, err := aesgcm.Open(nil, iv, append(content, tag...), nil)
	if err != nil {
		return "", ErrIntegrity
	}
	return string(plain), nil
}
