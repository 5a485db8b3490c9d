package cmd

import (
	"context"
	"github.com/hashicorp/go-hclog"
	"github.com/maxsid/siteauth/auth"
	"github.com/maxsid/siteauth/github"
	"github.com/maxsid/siteauth/store"
	"github.com/spf13/viper"
	"os"
	"strings"
)

// viperSite reads the site flags on every call, so config changes apply without restart.
type viperSite struct{}

func (viperSite) CachePEM() bool { return viper.GetBool(keyCachePem) }

// components are the credential subsystem parts shared by commands.
type components struct {
	logger   hclog.Logger
	backend  store.Store
	closer   func() error
	states   *store.PendingStates
	tokens   *store.Tokens
	auth     *auth.Authenticator
	profiles *github.ProfileFetcher
}

func newLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "siteauth",
		Level:  hclog.LevelFromString(viper.GetString(keyLogLevel)),
		Output: os.Stderr,
	})
}

// newComponents opens the storage and rehydrates the authentication state.
func newComponents(ctx context.Context) (*components, error) {
	c := &components{logger: newLogger(), closer: func() error { return nil }}

	if ephemeral {
		c.backend = store.NewMemory()
	} else {
		db, err := store.OpenSQLite(viper.GetString(keyStoragePath))
		if err != nil {
			return nil, err
		}
		c.backend, c.closer = db, db.Close
	}

	var sealer store.Sealer
	if key := viper.GetString(keyEncryptKey); key != "" {
		s, err := store.NewAESSealer(key)
		if err != nil {
			_ = c.closer()
			return nil, err
		}
		sealer = s
	} else if viper.GetBool(keyCachePem) {
		c.logger.Warn("private key cache is not encrypted, set site.encrypt_key to seal it")
	}

	c.states = store.NewPendingStates(c.backend)
	c.tokens = store.NewTokens(c.backend)
	c.auth = auth.New(c.tokens, store.NewKeys(c.backend, sealer), viperSite{}, c.logger.Named("auth"))
	c.profiles = github.NewProfileFetcher(c.tokens, github.NewHTTPClient(0), c.logger.Named("github"))

	if err := c.auth.Load(ctx); err != nil {
		_ = c.closer()
		return nil, err
	}
	return c, nil
}

func (c *components) Close() error {
	return c.closer()
}

// exchangeURL returns the configured token exchange endpoint or the one served by this site.
func exchangeURL() string {
	if u := viper.GetString(keyExchangeURL); u != "" {
		return u
	}
	return strings.TrimRight(viper.GetString(keySiteURL), "/") + auth.ExchangePath
}
