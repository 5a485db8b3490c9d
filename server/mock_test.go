package server

import (
	"context"
	"github.com/maxsid/siteauth/auth"
	"github.com/maxsid/siteauth/github"
	"github.com/maxsid/siteauth/store"
	"golang.org/x/oauth2"
	"net/url"
)

// --- Errors Mock --- //

type errorsMock struct {
	errors []error
}

func (em *errorsMock) SetNextError(err ...error) {
	em.errors = append(em.errors, err...)
}

// nextError returns the first element of em.errors and delete it from slice.
// Works by FIFO principe.
func (em *errorsMock) nextError() (err error) {
	if em == nil || len(em.errors) == 0 {
		return nil
	}
	err = em.errors[0]
	em.errors = em.errors[1:]
	return
}

// --- oauth2.Config Mock --- //

type configMockT struct {
	errorsMock
	token *oauth2.Token
	codes []string
}

func (c *configMockT) AuthCodeURL(state string, _ ...oauth2.AuthCodeOption) string {
	return "https://github.com/login/oauth/authorize?state=" + url.QueryEscape(state)
}

func (c *configMockT) Exchange(_ context.Context, code string, _ ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	c.codes = append(c.codes, code)
	if err := c.nextError(); err != nil {
		return nil, err
	}
	return c.token, nil
}

// --- auth.Exchanger Mock --- //

type exchangerMockT struct {
	errorsMock
	token string
	calls int
}

func (e *exchangerMockT) Exchange(_ context.Context, _, _ string) (string, error) {
	e.calls++
	if err := e.nextError(); err != nil {
		return "", err
	}
	return e.token, nil
}

// --- profileGetter Mock --- //

type profileMockT struct {
	profile *github.Profile
}

func (p *profileMockT) CurrentUser(_ context.Context) *github.Profile {
	return p.profile
}

// --- environment --- //

type testEnv struct {
	mem       *store.Memory
	states    *store.PendingStates
	tokens    *store.Tokens
	exchanger *exchangerMockT
	config    *configMockT
	flow      *auth.Flow
	auth      *auth.Authenticator
	profiles  *profileMockT
}

func newTestEnv() *testEnv {
	mem := store.NewMemory()
	env := &testEnv{
		mem:       mem,
		states:    store.NewPendingStates(mem),
		tokens:    store.NewTokens(mem),
		exchanger: &exchangerMockT{token: "tok_1"},
		config:    &configMockT{token: &oauth2.Token{AccessToken: "gho_test"}},
		profiles:  &profileMockT{},
	}
	env.flow = auth.NewFlow(env.config, env.states, env.tokens, env.exchanger, nil)
	env.auth = auth.New(env.tokens, store.NewKeys(mem, nil), auth.StaticSite{CachePem: true}, nil)
	return env
}

func (env *testEnv) handlers() *Handlers {
	return &Handlers{
		Flow:      env.flow,
		Auth:      env.auth,
		Profiles:  env.profiles,
		Exchanger: env.config,
	}
}
