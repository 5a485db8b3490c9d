package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"golang.org/x/crypto/hkdf"
	"io"
	"strings"
)

const (
	sealedPrefix = "v1:"
	sealerInfo   = "siteauth private key cache"
)

// Sealer encrypts values before they are written to a Store.
type Sealer interface {
	Seal(plain string) (string, error)
	Open(sealed string) (string, error)
}

// AESSealer seals values with AES-256-GCM. The key is derived from a passphrase with HKDF-SHA256.
type AESSealer struct {
	aead cipher.AEAD
}

// NewAESSealer derives a 256-bit key from passphrase. An empty passphrase is ErrInvalidValue.
func NewAESSealer(passphrase string) (*AESSealer, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("%w of encryption key: it's empty", ErrInvalidValue)
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(passphrase), nil, []byte(sealerInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESSealer{aead: aead}, nil
}

// Seal encrypts plain with a random nonce and returns it in the v1 text format.
func (s *AESSealer) Seal(plain string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plain), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open decrypts a value returned by Seal.
func (s *AESSealer) Open(sealed string) (string, error) {
	if !strings.HasPrefix(sealed, sealedPrefix) {
		return "", fmt.Errorf("%w of sealed value: unknown format", ErrInvalidValue)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w of sealed value: %v", ErrInvalidValue, err)
	}
	n := s.aead.NonceSize()
	if len(raw) < n {
		return "", fmt.Errorf("%w of sealed value: too short", ErrInvalidValue)
	}
	plain, err := s.aead.Open(nil, raw[:n], raw[n:], nil)
	if err != nil {
		return "", fmt.Errorf("%w of sealed value: %v", ErrInvalidValue, err)
	}
	return string(plain), nil
}
