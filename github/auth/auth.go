package auth

import (
	"errors"
	"fmt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"net/url"
	"strings"
)

// Scope grants repository write access. It's the only scope requested.
const Scope = "repo"

// CallbackPath is the route the provider redirects back to.
const CallbackPath = "/auth/callback"

var ErrInvalidValue = errors.New("invalid value")

// NewOAuthConfig returns oauth2.Config of a GitHub OAuth App.
// clientSecret may be empty when the config is used only for building authorization URLs.
func NewOAuthConfig(clientID, clientSecret, siteURL string) (*oauth2.Config, error) {
	return newOAuthConfig(clientID, clientSecret, siteURL, github.Endpoint)
}

func newOAuthConfig(clientID, clientSecret, siteURL string, endpoint oauth2.Endpoint) (*oauth2.Config, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w of client id: it's empty", ErrInvalidValue)
	}
	redirect, err := RedirectURL(siteURL)
	if err != nil {
		return nil, err
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     endpoint,
		RedirectURL:  redirect,
		Scopes:       []string{Scope},
	}, nil
}

// RedirectURL joins the site URL and CallbackPath.
func RedirectURL(siteURL string) (string, error) {
	u, err := url.Parse(siteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w of site url %q", ErrInvalidValue, siteURL)
	}
	return strings.TrimRight(siteURL, "/") + CallbackPath, nil
}
