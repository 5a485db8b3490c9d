package github

import (
	"context"
	"golang.org/x/oauth2"
)

// Config is an oauth2.Config abstraction.
type Config interface {
	ConfigCodeURLGenerator
	ConfigCodeExchanger
}

// ConfigCodeExchanger swaps an authorization code for a token. It needs the client secret.
type ConfigCodeExchanger interface {
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// ConfigCodeURLGenerator builds the provider's authorization URL.
type ConfigCodeURLGenerator interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
}
