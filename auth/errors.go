package auth

import "errors"

var (
	// ErrMissingParameters means the callback came without code or state.
	ErrMissingParameters = errors.New("incomplete authorization parameters")
	// ErrStateMismatch means there is no pending state or it differs from the callback one.
	ErrStateMismatch = errors.New("invalid state parameter")
	// ErrTransport covers network errors, timeouts and non-2xx statuses of the exchange endpoint.
	ErrTransport = errors.New("token exchange transport failure")
	// ErrProvider means the exchange endpoint reported an error in the response body.
	ErrProvider = errors.New("token exchange rejected by provider")
	// ErrAuthorizationDenied means the provider redirected back with an error parameter.
	ErrAuthorizationDenied = errors.New("authorization denied")
	// ErrUnauthenticated means neither an OAuth2 token nor a private key is available.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidValue    = errors.New("invalid value")
)
