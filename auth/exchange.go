package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/maxsid/siteauth/github"
	"io"
	"net/http"
)

// ExchangePath is where the server serves the token exchange endpoint.
const ExchangePath = "/api/auth/github/oauth2/callback"

// ExchangeRequest is the body of a token exchange call.
type ExchangeRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// ExchangeResponse is the answer of the token exchange endpoint.
type ExchangeResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Exchanger swaps an authorization code for a bearer token.
type Exchanger interface {
	Exchange(ctx context.Context, code, state string) (string, error)
}

// EndpointExchanger calls the trusted token exchange endpoint which holds the client secret.
type EndpointExchanger struct {
	url    string
	client *http.Client
}

// NewEndpointExchanger returns an exchanger posting to url. A nil client means github.NewHTTPClient(0).
func NewEndpointExchanger(url string, client *http.Client) *EndpointExchanger {
	if client == nil {
		client = github.NewHTTPClient(0)
	}
	return &EndpointExchanger{url: url, client: client}
}

// Exchange posts the code and state to the endpoint and returns the access token.
// Network failures and non-2xx statuses are ErrTransport, a rejected or malformed answer is ErrProvider.
func (e *EndpointExchanger) Exchange(ctx context.Context, code, state string) (string, error) {
	body, err := json.Marshal(&ExchangeRequest{Code: code, State: state})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}
	var data ExchangeResponse
	decodeErr := json.Unmarshal(raw, &data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && data.Error != "" {
			return "", fmt.Errorf("%w: status %d: %s", ErrTransport, resp.StatusCode, data.Error)
		}
		return "", fmt.Errorf("%w: status %d", ErrTransport, resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("%w: malformed response: %v", ErrProvider, decodeErr)
	}
	if data.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrProvider, data.Error)
	}
	if !data.Success || data.AccessToken == "" {
		return "", fmt.Errorf("%w: response has no access token", ErrProvider)
	}
	return data.AccessToken, nil
}
