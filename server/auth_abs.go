package server

import (
	"context"
	"github.com/maxsid/siteauth/auth"
	"github.com/maxsid/siteauth/github"
)

// flowController is an auth.Flow abstraction.
type flowController interface {
	flowInitiator
	callbackHandler
	flowAborter
}

type flowInitiator interface {
	Initiate(ctx context.Context) (string, error)
}

type callbackHandler interface {
	HandleCallback(ctx context.Context, code, state string) error
}

type flowAborter interface {
	Abort(ctx context.Context) error
}

// authenticator is an auth.Authenticator abstraction.
type authenticator interface {
	State() auth.State
	SetOAuth2Auth(ctx context.Context) error
	SetPrivateKey(ctx context.Context, material string) error
	ClearAuth(ctx context.Context) error
}

// profileGetter is a github.ProfileFetcher abstraction.
type profileGetter interface {
	CurrentUser(ctx context.Context) *github.Profile
}
