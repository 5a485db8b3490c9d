package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory keeps values in a map. It is used for tests and ephemeral runs.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get returns ErrNotFound if key isn't set.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", fmt.Errorf("%w value of %s key", ErrNotFound, key)
	}
	return v, nil
}

// Set stores value by key. An empty key is ErrInvalidValue.
func (m *Memory) Set(_ context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w of key: it's empty", ErrInvalidValue)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete removes keys at once. Missing keys are ignored.
func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Len returns a number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
