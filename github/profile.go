package github

import (
	"context"
	"fmt"
	gh "github.com/google/go-github/v68/github"
	"github.com/hashicorp/go-hclog"
	"net/http"
	"net/url"
	"strings"
)

// Profile is a human-readable identity of the token owner.
type Profile struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	Name      string `json:"name,omitempty"`
	HTMLURL   string `json:"html_url,omitempty"`
}

type tokenLoader interface {
	Load(ctx context.Context) (string, error)
}

// ProfileFetcher resolves the profile of the OAuth2 token owner.
type ProfileFetcher struct {
	tokens  tokenLoader
	client  *http.Client
	baseURL *url.URL
	logger  hclog.Logger
}

// NewProfileFetcher returns a fetcher which calls api.github.com. A nil client means NewHTTPClient(0).
func NewProfileFetcher(tokens tokenLoader, client *http.Client, logger hclog.Logger) *ProfileFetcher {
	if client == nil {
		client = NewHTTPClient(0)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ProfileFetcher{tokens: tokens, client: client, logger: logger}
}

// SetBaseURL points the fetcher to another API root, e.g. GitHub Enterprise or a test server.
func (f *ProfileFetcher) SetBaseURL(rawURL string) error {
	if !strings.HasSuffix(rawURL, "/") {
		rawURL += "/"
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	f.baseURL = u
	return nil
}

// CurrentUser returns nil if there is no OAuth2 token or the profile can't be fetched.
// Failures are only logged.
func (f *ProfileFetcher) CurrentUser(ctx context.Context) *Profile {
	token, err := f.tokens.Load(ctx)
	if err != nil {
		f.logger.Error("failed to load oauth2 token", "error", err)
		return nil
	}
	if token == "" {
		return nil
	}

	client := gh.NewClient(&http.Client{
		Transport: &tokenTransport{token: token, base: f.client.Transport},
		Timeout:   f.client.Timeout,
	})
	if f.baseURL != nil {
		client.BaseURL = f.baseURL
	}
	user, resp, err := client.Users.Get(ctx, "")
	if err != nil {
		if resp != nil {
			f.logger.Error("failed to get user info", "status", resp.StatusCode, "error", err)
		} else {
			f.logger.Error("error fetching user info", "error", err)
		}
		return nil
	}
	if user.GetLogin() == "" {
		f.logger.Error("user info has no login")
		return nil
	}
	return &Profile{
		Login:     user.GetLogin(),
		AvatarURL: user.GetAvatarURL(),
		Name:      user.GetName(),
		HTMLURL:   user.GetHTMLURL(),
	}
}
