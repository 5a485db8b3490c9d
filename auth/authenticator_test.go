package auth

import (
	"context"
	"errors"
	"github.com/go-test/deep"
	"github.com/maxsid/siteauth/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
)

const testPEM = "-----BEGIN KEY-----\nMIIEpAIBAAKCAQEA\n-----END KEY-----"

func TestAuthenticator_ScenarioA(t *testing.T) {
	ctx := context.Background()
	f := newFixture(false)
	require.NoError(t, f.states.Save(ctx, "abc123"))

	require.NoError(t, f.flow.HandleCallback(ctx, "xyz", "abc123"))
	require.NoError(t, f.auth.SetOAuth2Auth(ctx))
	assert.True(t, f.auth.State().HasOAuth2Auth)

	token, err := f.auth.GetAuthToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok_1", token)
}

func TestAuthenticator_ScenarioB(t *testing.T) {
	ctx := context.Background()
	f := newFixture(false)
	require.NoError(t, f.states.Save(ctx, "abc123"))

	assert.Error(t, f.flow.HandleCallback(ctx, "xyz", "wrong"))
	_, err := f.auth.GetAuthToken(ctx)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
}

func TestAuthenticator_ScenarioC(t *testing.T) {
	ctx := context.Background()
	f := newFixture(false)
	require.NoError(t, f.auth.SetPrivateKey(ctx, testPEM))

	token, err := f.auth.GetAuthToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, testPEM, token)
}

func TestAuthenticator_ScenarioD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)
	require.NoError(t, f.tokens.Save(ctx, "tok_1"))
	require.NoError(t, f.auth.SetPrivateKey(ctx, testPEM))

	token, err := f.auth.GetAuthToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok_1", token, "oauth2 token has precedence")

	require.NoError(t, f.auth.ClearAuth(ctx))
	if diff := deep.Equal(f.auth.State(), State{}); diff != nil {
		t.Error(diff)
	}
	_, err = f.auth.GetAuthToken(ctx)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
	assert.Zero(t, f.mem.Len())
}

func TestAuthenticator_SetPrivateKey(t *testing.T) {
	tests := []struct {
		name       string
		cachePem   bool
		wantCached string
	}{
		{name: "Without caching", cachePem: false, wantCached: ""},
		{name: "With caching", cachePem: true, wantCached: testPEM},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(tt.cachePem)
			require.NoError(t, f.auth.SetPrivateKey(ctx, testPEM))
			require.NoError(t, f.auth.SetPrivateKey(ctx, testPEM))

			want := State{HasPrivateKeyAuth: true, PrivateKey: testPEM}
			if diff := deep.Equal(f.auth.State(), want); diff != nil {
				t.Error(diff)
			}
			cached, err := f.keys.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCached, cached)
			if !tt.cachePem {
				assert.Zero(t, f.mem.Len(), "no durable write")
			}
		})
	}
}

func TestAuthenticator_SetPrivateKey_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)
	assert.True(t, errors.Is(f.auth.SetPrivateKey(ctx, ""), ErrInvalidValue))
	assert.False(t, f.auth.State().HasPrivateKeyAuth)

	mem := newFailingStore(store.KeyPrivateKey)
	a := New(store.NewTokens(mem), store.NewKeys(mem, nil), StaticSite{CachePem: true}, nil)
	err := a.SetPrivateKey(ctx, testPEM)
	assert.True(t, errors.Is(err, errStorage))
	assert.True(t, a.State().HasPrivateKeyAuth, "the key stays usable for this process")
}

func TestAuthenticator_SetPrivateKey_KeepsOAuth2(t *testing.T) {
	ctx := context.Background()
	f := newFixture(false)
	require.NoError(t, f.tokens.Save(ctx, "tok_1"))
	require.NoError(t, f.auth.SetOAuth2Auth(ctx))
	require.NoError(t, f.auth.SetPrivateKey(ctx, testPEM))

	st := f.auth.State()
	assert.True(t, st.HasOAuth2Auth)
	assert.True(t, st.HasPrivateKeyAuth)
}

func TestAuthenticator_HasOAuth2AuthLags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(false)
	require.NoError(t, f.tokens.Save(ctx, "tok_1"))
	assert.False(t, f.auth.State().HasOAuth2Auth)

	require.NoError(t, f.auth.RefreshAuthState(ctx))
	assert.True(t, f.auth.State().HasOAuth2Auth)

	require.NoError(t, f.tokens.Clear(ctx))
	assert.True(t, f.auth.State().HasOAuth2Auth)
	require.NoError(t, f.auth.SetOAuth2Auth(ctx))
	assert.False(t, f.auth.State().HasOAuth2Auth)
}

func TestAuthenticator_Load(t *testing.T) {
	ctx := context.Background()
	sealer, err := store.NewAESSealer("wudishiduomejimo")
	require.NoError(t, err)
	mem := store.NewMemory()
	keys := store.NewKeys(mem, sealer)
	tokens := store.NewTokens(mem)
	require.NoError(t, keys.Save(ctx, testPEM))
	require.NoError(t, tokens.Save(ctx, "tok_1"))

	a := New(tokens, keys, StaticSite{CachePem: true}, nil)
	require.NoError(t, a.Load(ctx))
	want := State{HasPrivateKeyAuth: true, HasOAuth2Auth: true, PrivateKey: testPEM}
	if diff := deep.Equal(a.State(), want); diff != nil {
		t.Error(diff)
	}
}

func TestAuthenticator_UnreadableCachedKey(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.Set(ctx, store.KeyPrivateKey, "not sealed"))
	sealer, err := store.NewAESSealer("secret")
	require.NoError(t, err)

	a := New(store.NewTokens(mem), store.NewKeys(mem, sealer), nil, nil)
	require.NoError(t, a.Load(ctx))
	assert.False(t, a.State().HasPrivateKeyAuth)
	_, err = a.GetAuthToken(ctx)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
}

func TestAuthenticator_GetAuthToken_StoreError(t *testing.T) {
	mem := newFailingStore(store.KeyOAuth2Token)
	a := New(store.NewTokens(mem), store.NewKeys(mem, nil), nil, nil)
	_, err := a.GetAuthToken(context.Background())
	assert.True(t, errors.Is(err, errStorage))
	assert.True(t, errors.Is(a.RefreshAuthState(context.Background()), errStorage))
}

func TestAuthenticator_ClearAuthIsAtomicForReaders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			st := f.auth.State()
			if st.HasPrivateKeyAuth != (st.PrivateKey != "") {
				t.Errorf("inconsistent state %+v", st)
				return
			}
			if token, err := f.auth.GetAuthToken(ctx); err == nil && token != "tok_1" && token != testPEM {
				t.Errorf("unexpected token %q", token)
				return
			}
		}
	}()

	for i := 0; i < 50; i++ {
		require.NoError(t, f.tokens.Save(ctx, "tok_1"))
		require.NoError(t, f.auth.SetPrivateKey(ctx, testPEM))
		require.NoError(t, f.auth.ClearAuth(ctx))
	}
	close(stop)
	wg.Wait()
}

func TestAuthenticator_ClearAuth_StoreError(t *testing.T) {
	ctx := context.Background()
	mem := newFailingStore()
	mem.failDelete = true
	tokens := store.NewTokens(mem)
	a := New(tokens, store.NewKeys(mem, nil), StaticSite{CachePem: true}, nil)
	require.NoError(t, tokens.Save(ctx, "tok_1"))
	require.NoError(t, a.SetPrivateKey(ctx, testPEM))
	require.NoError(t, a.RefreshAuthState(ctx))
	before := a.State()

	err := a.ClearAuth(ctx)
	assert.True(t, errors.Is(err, errStorage))
	if diff := deep.Equal(a.State(), before); diff != nil {
		t.Error(diff)
	}
	token, err := a.GetAuthToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok_1", token)
}

func TestAuthenticator_SharedStore(t *testing.T) {
	tests := []struct {
		name      string
		cachePem  bool
		wantState State
		wantToken string
	}{
		{
			name:      "Cached key cleared by another process",
			cachePem:  true,
			wantState: State{},
		},
		{
			name:      "Memory only key survives",
			cachePem:  false,
			wantState: State{HasPrivateKeyAuth: true, PrivateKey: testPEM},
			wantToken: testPEM,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mem := store.NewMemory()
			tokens, keys := store.NewTokens(mem), store.NewKeys(mem, nil)
			server := New(tokens, keys, StaticSite{CachePem: tt.cachePem}, nil)
			cli := New(tokens, keys, StaticSite{CachePem: tt.cachePem}, nil)

			require.NoError(t, server.SetPrivateKey(ctx, testPEM))
			require.NoError(t, cli.ClearAuth(ctx))
			assert.Zero(t, mem.Len())

			token, err := server.GetAuthToken(ctx)
			if tt.wantToken == "" {
				assert.True(t, errors.Is(err, ErrUnauthenticated))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantToken, token)

			require.NoError(t, server.RefreshAuthState(ctx))
			if diff := deep.Equal(server.State(), tt.wantState); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestAuthenticator_RefreshAuthState_AdoptsKeyFromAnotherProcess(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	tokens, keys := store.NewTokens(mem), store.NewKeys(mem, nil)
	server := New(tokens, keys, StaticSite{CachePem: true}, nil)
	cli := New(tokens, keys, StaticSite{CachePem: true}, nil)

	require.NoError(t, cli.SetPrivateKey(ctx, testPEM))
	assert.False(t, server.State().HasPrivateKeyAuth)
	require.NoError(t, server.RefreshAuthState(ctx))
	want := State{HasPrivateKeyAuth: true, PrivateKey: testPEM}
	if diff := deep.Equal(server.State(), want); diff != nil {
		t.Error(diff)
	}
}
