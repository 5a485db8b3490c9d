package store

import (
	"context"
	"errors"
)

// Fixed keys of the three single-value credential slots.
const (
	KeyPendingState = "github_oauth_state"
	KeyOAuth2Token  = "github_oauth_token"
	KeyPrivateKey   = "github_app_pem"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidValue = errors.New("invalid value")
)

// Store is a durable flat string key/value storage.
type Store interface {
	valueGetter
	valueSetter
	valueDeleter
}

type valueGetter interface {
	// Get returns ErrNotFound if the key has no value.
	Get(ctx context.Context, key string) (string, error)
}

type valueSetter interface {
	Set(ctx context.Context, key, value string) error
}

type valueDeleter interface {
	// Delete removes all keys as a single unit. Absent keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// getOrEmpty returns "" instead of ErrNotFound.
func getOrEmpty(ctx context.Context, s valueGetter, key string) (string, error) {
	v, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}
