package store

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"strings"
)

// PendingStates is the single-slot storage of the OAuth2 CSRF state.
type PendingStates struct {
	s Store
}

// NewPendingStates returns PendingStates kept in s.
func NewPendingStates(s Store) *PendingStates {
	return &PendingStates{s: s}
}

// Generate returns a new random opaque state. It doesn't save it.
func (p *PendingStates) Generate() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Save replaces any previously saved state.
func (p *PendingStates) Save(ctx context.Context, state string) error {
	if state == "" {
		return fmt.Errorf("%w of state: it's empty", ErrInvalidValue)
	}
	return p.s.Set(ctx, KeyPendingState, state)
}

// Load returns the saved state without deleting it. Returns "" if there is none.
func (p *PendingStates) Load(ctx context.Context) (string, error) {
	return getOrEmpty(ctx, p.s, KeyPendingState)
}

// Clear removes the saved state. It's not an error if there is none.
func (p *PendingStates) Clear(ctx context.Context) error {
	return p.s.Delete(ctx, KeyPendingState)
}

// Tokens is the single-slot storage of the OAuth2 bearer token.
type Tokens struct {
	s Store
}

// NewTokens returns Tokens kept in s.
func NewTokens(s Store) *Tokens {
	return &Tokens{s: s}
}

// Save replaces the saved token.
func (t *Tokens) Save(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w of token: it's empty", ErrInvalidValue)
	}
	return t.s.Set(ctx, KeyOAuth2Token, token)
}

// Load returns "" if there is no token.
func (t *Tokens) Load(ctx context.Context) (string, error) {
	return getOrEmpty(ctx, t.s, KeyOAuth2Token)
}

// Has reports whether a token is saved.
func (t *Tokens) Has(ctx context.Context) (bool, error) {
	tok, err := t.Load(ctx)
	return tok != "", err
}

func (t *Tokens) Clear(ctx context.Context) error {
	return t.s.Delete(ctx, KeyOAuth2Token)
}

// Keys is the single-slot storage of the private key material. If sealer isn't nil
// the material is sealed at rest.
type Keys struct {
	s      Store
	sealer Sealer
}

// NewKeys returns Keys kept in s. sealer may be nil.
func NewKeys(s Store, sealer Sealer) *Keys {
	return &Keys{s: s, sealer: sealer}
}

// Save replaces the cached key, sealing it first if there is a sealer.
func (k *Keys) Save(ctx context.Context, material string) (err error) {
	if material == "" {
		return fmt.Errorf("%w of private key: it's empty", ErrInvalidValue)
	}
	if k.sealer != nil {
		if material, err = k.sealer.Seal(material); err != nil {
			return err
		}
	}
	return k.s.Set(ctx, KeyPrivateKey, material)
}

// Load returns "" if there is no cached key.
func (k *Keys) Load(ctx context.Context) (string, error) {
	v, err := getOrEmpty(ctx, k.s, KeyPrivateKey)
	if err != nil || v == "" || k.sealer == nil {
		return v, err
	}
	return k.sealer.Open(v)
}

func (k *Keys) Clear(ctx context.Context) error {
	return k.s.Delete(ctx, KeyPrivateKey)
}

// Clear removes the token and the private key in a single Delete call.
func Clear(ctx context.Context, t *Tokens, k *Keys) error {
	if t.s == k.s {
		return t.s.Delete(ctx, KeyOAuth2Token, KeyPrivateKey)
	}
	if err := t.Clear(ctx); err != nil {
		return err
	}
	return k.Clear(ctx)
}
