package auth

import (
	"context"
	"fmt"
	"github.com/hashicorp/go-hclog"
	"github.com/maxsid/siteauth/store"
	"sync"
)

// SiteConfig is the part of the site configuration the authenticator depends on.
type SiteConfig interface {
	// CachePEM reports whether an imported private key is persisted.
	CachePEM() bool
}

// StaticSite is a SiteConfig with fixed values.
type StaticSite struct {
	CachePem bool
}

// CachePEM returns the fixed caching flag.
func (s StaticSite) CachePEM() bool { return s.CachePem }

// State is a snapshot of the authentication state.
// HasPrivateKeyAuth is true exactly when PrivateKey isn't empty.
// HasOAuth2Auth is cached: it lags behind the token store until a refresh.
type State struct {
	HasPrivateKeyAuth bool   `json:"has_private_key_auth"`
	HasOAuth2Auth     bool   `json:"has_oauth2_auth"`
	PrivateKey        string `json:"-"`
}

// Authenticator resolves which credential authenticates GitHub writes.
// An OAuth2 token always has precedence over a private key.
type Authenticator struct {
	mu     sync.Mutex
	state  State
	tokens *store.Tokens
	keys   *store.Keys
	site   SiteConfig
	logger hclog.Logger
}

// New returns an Authenticator with an empty state. Call Load to rehydrate it from the stores.
// A nil site disables key caching and a nil logger discards logs.
func New(tokens *store.Tokens, keys *store.Keys, site SiteConfig, logger hclog.Logger) *Authenticator {
	if site == nil {
		site = StaticSite{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Authenticator{tokens: tokens, keys: keys, site: site, logger: logger}
}

// State returns a copy of the current state.
func (a *Authenticator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// GetAuthToken returns the OAuth2 token if there is one, otherwise the private key material.
// Returns ErrUnauthenticated if there is neither.
func (a *Authenticator) GetAuthToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	token, err := a.tokens.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load oauth2 token: %w", err)
	}
	a.state.HasOAuth2Auth = token != ""
	if token != "" {
		return token, nil
	}

	a.syncPrivateKey(ctx)
	if a.state.PrivateKey != "" {
		return a.state.PrivateKey, nil
	}
	return "", ErrUnauthenticated
}

// SetPrivateKey makes material the private key credential. It's persisted only if
// the site config allows caching. OAuth2 state isn't touched.
func (a *Authenticator) SetPrivateKey(ctx context.Context, material string) error {
	if material == "" {
		return fmt.Errorf("%w of private key: it's empty", ErrInvalidValue)
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state.PrivateKey = material
	a.state.HasPrivateKeyAuth = true
	if !a.site.CachePEM() {
		return nil
	}
	if err := a.keys.Save(ctx, material); err != nil {
		return fmt.Errorf("cache private key: %w", err)
	}
	return nil
}

// SetOAuth2Auth re-reads the token store presence. It doesn't call the provider.
func (a *Authenticator) SetOAuth2Auth(ctx context.Context) error {
	has, err := a.tokens.Has(ctx)
	if err != nil {
		return fmt.Errorf("check oauth2 token: %w", err)
	}
	a.mu.Lock()
	a.state.HasOAuth2Auth = has
	a.mu.Unlock()
	return nil
}

// ClearAuth removes both durable credentials and resets the state.
// Readers never observe one credential cleared and the other still reported.
// The state is kept as is when the stores can't be cleared.
func (a *Authenticator) ClearAuth(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := store.Clear(ctx, a.tokens, a.keys); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	a.state = State{}
	return nil
}

// RefreshAuthState re-derives the state from both stores, so credentials changed by
// another process sharing the storage are picked up.
func (a *Authenticator) RefreshAuthState(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	has, err := a.tokens.Has(ctx)
	if err != nil {
		return fmt.Errorf("check oauth2 token: %w", err)
	}
	a.state.HasOAuth2Auth = has
	a.syncPrivateKey(ctx)
	return nil
}

// Load rehydrates the state from the stores at startup.
func (a *Authenticator) Load(ctx context.Context) error {
	return a.RefreshAuthState(ctx)
}

// syncPrivateKey reconciles the private key with its cache. Must be called with mu held.
// With caching on the cache is authoritative: a key removed from it is dropped here too.
// With caching off a key held in memory is kept and the cache only fills an empty state.
// An unreadable cache leaves the state untouched.
func (a *Authenticator) syncPrivateKey(ctx context.Context) {
	cached := a.site.CachePEM()
	if !cached && a.state.PrivateKey != "" {
		return
	}
	key, err := a.keys.Load(ctx)
	if err != nil {
		a.logger.Warn("cached private key is unreadable", "error", err)
		return
	}
	if key == "" && !cached {
		return
	}
	a.state.PrivateKey = key
	a.state.HasPrivateKeyAuth = key != ""
}
