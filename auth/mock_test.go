package auth

import (
	"context"
	"errors"
	"github.com/maxsid/siteauth/store"
	"golang.org/x/oauth2"
	"sync"
)

// --- urlGeneratorMock --- //

type urlGeneratorMock struct{}

func (urlGeneratorMock) AuthCodeURL(state string, _ ...oauth2.AuthCodeOption) string {
	return "https://github.com/login/oauth/authorize?state=" + state
}

// --- exchangerMock --- //

type exchangerMock struct {
	mu    sync.Mutex
	token string
	err   error
	calls []ExchangeRequest
}

func (e *exchangerMock) Exchange(_ context.Context, code, state string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, ExchangeRequest{Code: code, State: state})
	if e.err != nil {
		return "", e.err
	}
	return e.token, nil
}

func (e *exchangerMock) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

// --- failingStore --- //

// failingStore fails every operation on keys from failKeys.
// Delete fails on any key if failDelete is set.
type failingStore struct {
	*store.Memory
	failKeys   map[string]bool
	failDelete bool
}

var errStorage = errors.New("storage failure")

func newFailingStore(keys ...string) *failingStore {
	m := make(map[string]bool)
	for _, k := range keys {
		m[k] = true
	}
	return &failingStore{Memory: store.NewMemory(), failKeys: m}
}

func (s *failingStore) Get(ctx context.Context, key string) (string, error) {
	if s.failKeys[key] {
		return "", errStorage
	}
	return s.Memory.Get(ctx, key)
}

func (s *failingStore) Set(ctx context.Context, key, value string) error {
	if s.failKeys[key] {
		return errStorage
	}
	return s.Memory.Set(ctx, key, value)
}

func (s *failingStore) Delete(ctx context.Context, keys ...string) error {
	if s.failDelete {
		return errStorage
	}
	for _, k := range keys {
		if s.failKeys[k] {
			return errStorage
		}
	}
	return s.Memory.Delete(ctx, keys...)
}

// --- fixture --- //

type fixture struct {
	mem       *store.Memory
	states    *store.PendingStates
	tokens    *store.Tokens
	keys      *store.Keys
	exchanger *exchangerMock
	flow      *Flow
	auth      *Authenticator
}

func newFixture(cachePem bool) *fixture {
	mem := store.NewMemory()
	f := &fixture{
		mem:       mem,
		states:    store.NewPendingStates(mem),
		tokens:    store.NewTokens(mem),
		keys:      store.NewKeys(mem, nil),
		exchanger: &exchangerMock{token: "tok_1"},
	}
	f.flow = NewFlow(urlGeneratorMock{}, f.states, f.tokens, f.exchanger, nil)
	f.auth = New(f.tokens, f.keys, StaticSite{CachePem: cachePem}, nil)
	return f
}
