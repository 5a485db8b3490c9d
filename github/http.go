package github

import (
	"github.com/hashicorp/go-cleanhttp"
	"net/http"
	"time"
)

// DefaultTimeout bounds every call to GitHub and to the token exchange endpoint.
const DefaultTimeout = 10 * time.Second

// NewHTTPClient returns a client on a pooled transport. Zero timeout means DefaultTimeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Transport: cleanhttp.DefaultPooledTransport(),
		Timeout:   timeout,
	}
}

// tokenTransport authenticates requests with "Authorization: token <bearer>".
type tokenTransport struct {
	token string
	base  http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "token "+t.token)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(r)
}
