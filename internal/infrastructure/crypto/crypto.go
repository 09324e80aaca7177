// Package crypto seals secrets kept in env files, such as the portal password.
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// SealedPrefix marks a value produced by Sealer.Seal.
const SealedPrefix = "sealed:"

var ErrNotSealed = errors.New("value is not sealed")

// Sealer wraps XChaCha20-Poly1305 with a 32 byte key.
type Sealer struct{ aead cipher.AEAD }

func New(key []byte) (*Sealer, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("key must be %d bytes (got %d)", chacha20poly1305.KeySize, len(key))
	}
	a, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: a}, nil
}

// NewKey returns a fresh random key, base64 encoded.
func NewKey() (string, error) {
	k := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(k); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(k), nil
}

// Seal returns "sealed:" followed by base64(nonce|ciphertext).
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	buf := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return SealedPrefix + base64.RawStdEncoding.EncodeToString(buf), nil
}

func (s *Sealer) Open(sealed string) (string, error) {
	if !IsSealed(sealed) {
		return "", ErrNotSealed
	}
	buf, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(sealed, SealedPrefix))
	if err != nil {
		return "", fmt.Errorf("decode sealed value: %w", err)
	}
	ns := s.aead.NonceSize()
	if len(buf) < ns+s.aead.Overhead() {
		return "", fmt.Errorf("sealed value too short")
	}
	pt, err := s.aead.Open(nil, buf[:ns], buf[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("open sealed value: %w", err)
	}
	return string(pt), nil
}

func IsSealed(v string) bool { return strings.HasPrefix(v, SealedPrefix) }

// DecodeKey accepts padded or unpadded standard base64.
func DecodeKey(v string) ([]byte, error) {
	v = strings.TrimSpace(v)
	if b, err := base64.StdEncoding.DecodeString(v); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(v)
}
