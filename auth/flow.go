package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"github.com/hashicorp/go-hclog"
	"github.com/maxsid/siteauth/github"
	"sync"
)

// Phase is a step of the OAuth2 authorization code flow.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingRedirect
	PhaseValidatingCallback
	PhaseExchanging
	PhaseAuthenticated
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingRedirect:
		return "awaiting_redirect"
	case PhaseValidatingCallback:
		return "validating_callback"
	case PhaseExchanging:
		return "exchanging"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseFailed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

type pendingStateStore interface {
	Generate() string
	Save(ctx context.Context, state string) error
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

type tokenSaver interface {
	Save(ctx context.Context, token string) error
}

// Flow drives the OAuth2 authorization code flow: initiate, callback validation, exchange.
type Flow struct {
	mu        sync.Mutex
	phase     Phase
	conf      github.ConfigCodeURLGenerator
	states    pendingStateStore
	tokens    tokenSaver
	exchanger Exchanger
	logger    hclog.Logger
}

// NewFlow returns a Flow in the Idle phase. A nil logger discards logs.
func NewFlow(conf github.ConfigCodeURLGenerator, states pendingStateStore, tokens tokenSaver, exchanger Exchanger, logger hclog.Logger) *Flow {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Flow{
		conf:      conf,
		states:    states,
		tokens:    tokens,
		exchanger: exchanger,
		logger:    logger,
	}
}

// Phase returns the current phase.
func (f *Flow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Initiate saves a new pending state, invalidating any previous one, and returns
// the authorization URL the user agent has to navigate to.
func (f *Flow) Initiate(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	state := f.states.Generate()
	if err := f.states.Save(ctx, state); err != nil {
		return "", fmt.Errorf("save pending state: %w", err)
	}
	f.phase = PhaseAwaitingRedirect
	return f.conf.AuthCodeURL(state), nil
}

// HandleCallback validates the callback state against the pending one and exchanges the code.
// On success the token is saved and the pending state cleared. On failure nothing is written.
// Calls are serialized, so a duplicated callback sees the state already cleared.
func (f *Flow) HandleCallback(ctx context.Context, code, state string) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() {
		if err != nil {
			f.phase = PhaseFailed
		}
	}()

	f.phase = PhaseValidatingCallback
	if code == "" || state == "" {
		return ErrMissingParameters
	}
	saved, err := f.states.Load(ctx)
	if err != nil {
		return fmt.Errorf("load pending state: %w", err)
	}
	if saved == "" || subtle.ConstantTimeCompare([]byte(saved), []byte(state)) != 1 {
		f.logger.Warn("invalid state parameter", "pending", saved != "")
		return ErrStateMismatch
	}

	f.phase = PhaseExchanging
	token, err := f.exchanger.Exchange(ctx, code, state)
	if err != nil {
		f.logger.Error("oauth2 callback failed", "error", err)
		return err
	}
	if err = f.tokens.Save(ctx, token); err != nil {
		return fmt.Errorf("save oauth2 token: %w", err)
	}
	if clearErr := f.states.Clear(ctx); clearErr != nil {
		f.logger.Error("failed to clear pending state", "error", clearErr)
	}
	f.phase = PhaseAuthenticated
	return nil
}

// Abort invalidates the pending state after the provider denied the authorization.
func (f *Flow) Abort(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phase = PhaseFailed
	if err := f.states.Clear(ctx); err != nil {
		return fmt.Errorf("clear pending state: %w", err)
	}
	return nil
}
