package cli

import (
	"context"
	"errors"
	"fmt"
	"github.com/maxsid/siteauth/auth"
	"github.com/maxsid/siteauth/github"
	"io"
	"os"
	"time"
)

const unauthenticatedHint = "Not authenticated. Log in with GitHub OAuth2 via the server or import a private key: siteauth auth key <file>"

type authStateGetter interface {
	State() auth.State
	RefreshAuthState(ctx context.Context) error
	GetAuthToken(ctx context.Context) (string, error)
}

type keySetter interface {
	SetPrivateKey(ctx context.Context, material string) error
}

type authClearer interface {
	ClearAuth(ctx context.Context) error
}

type appJWTSigner interface {
	AppJWT(ctx context.Context, appID string, now time.Time) (string, error)
}

type profileGetter interface {
	CurrentUser(ctx context.Context) *github.Profile
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Status prints credential flags and which credential GetAuthToken resolves to.
func Status(ctx context.Context, w io.Writer, a authStateGetter) error {
	if err := a.RefreshAuthState(ctx); err != nil {
		return err
	}
	st := a.State()
	_, _ = fmt.Fprintf(w, "OAuth2 token: %s\nPrivate key:  %s\n", yesNo(st.HasOAuth2Auth), yesNo(st.HasPrivateKeyAuth))

	_, err := a.GetAuthToken(ctx)
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		_, _ = fmt.Fprintln(w, unauthenticatedHint)
		return nil
	case err != nil:
		return err
	case a.State().HasOAuth2Auth:
		_, _ = fmt.Fprintln(w, "Active credential: OAuth2 token")
	default:
		_, _ = fmt.Fprintln(w, "Active credential: private key")
	}
	return nil
}

// ImportKey reads a private key file and makes it the private key credential.
func ImportKey(ctx context.Context, w io.Writer, a keySetter, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err = a.SetPrivateKey(ctx, string(raw)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Private key imported from %s\n", path)
	return nil
}

// Logout clears both credentials.
func Logout(ctx context.Context, w io.Writer, a authClearer) error {
	if err := a.ClearAuth(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, "Logged out")
	return nil
}

// WhoAmI prints the profile of the OAuth2 token owner.
func WhoAmI(ctx context.Context, w io.Writer, f profileGetter) error {
	p := f.CurrentUser(ctx)
	if p == nil {
		_, _ = fmt.Fprintln(w, "No GitHub profile available")
		return nil
	}
	_, _ = fmt.Fprintf(w, "@%s", p.Login)
	if p.Name != "" {
		_, _ = fmt.Fprintf(w, " (%s)", p.Name)
	}
	_, _ = fmt.Fprintln(w)
	return nil
}

// AppJWT prints a GitHub App JWT signed by the private key credential.
func AppJWT(ctx context.Context, w io.Writer, a appJWTSigner, appID string, now time.Time) error {
	token, err := a.AppJWT(ctx, appID, now)
	if errors.Is(err, auth.ErrUnauthenticated) {
		_, _ = fmt.Fprintln(w, unauthenticatedHint)
		return err
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, token)
	return nil
}
