package auth

import (
	"context"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"time"
)

const (
	appJWTBackdate = time.Minute
	appJWTLifetime = 10 * time.Minute
)

// SignAppJWT signs a GitHub App JWT with an RSA private key in PEM.
// iat is backdated to tolerate clock drift.
func SignAppJWT(material, appID string, now time.Time) (string, error) {
	if appID == "" || appID == "-" {
		return "", fmt.Errorf("%w of app id: it's empty", ErrInvalidValue)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(material))
	if err != nil {
		return "", fmt.Errorf("%w of private key: %v", ErrInvalidValue, err)
	}
	claims := jwt.RegisteredClaims{
		Issuer:    appID,
		IssuedAt:  jwt.NewNumericDate(now.Add(-appJWTBackdate)),
		ExpiresAt: jwt.NewNumericDate(now.Add(appJWTLifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
}

// AppJWT signs an App JWT with the current private key credential.
func (a *Authenticator) AppJWT(ctx context.Context, appID string, now time.Time) (string, error) {
	a.mu.Lock()
	a.syncPrivateKey(ctx)
	material := a.state.PrivateKey
	a.mu.Unlock()

	if material == "" {
		return "", ErrUnauthenticated
	}
	return SignAppJWT(material, appID, now)
}
