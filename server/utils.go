package server

import (
	"errors"
	"fmt"
	"github.com/gofiber/fiber/v2"
	"github.com/maxsid/siteauth/auth"
	"golang.org/x/oauth2"
	"io"
)

const (
	oauthGETVariableState            = "state"
	oauthGETVariableCode             = "code"
	oauthGETVariableError            = "error"
	oauthGETVariableErrorDescription = "error_description"

	formKeyFile     = "key"
	formKeyMaterial = "material"
	formKeyCSRF     = "_csrf"

	maxKeySize = 64 << 10
)

// oauthCallbackData contains request variables of the GitHub redirect.
type oauthCallbackData struct {
	State            string
	Code             string
	Error            string
	ErrorDescription string
}

// description returns error_description or error if the former is empty.
func (d *oauthCallbackData) description() string {
	if d.ErrorDescription != "" {
		return d.ErrorDescription
	}
	return d.Error
}

// getOAuthCallbackData returns callback variables from the query of the GitHub redirect.
func getOAuthCallbackData(c queryGetter) *oauthCallbackData {
	return &oauthCallbackData{
		Code:             c.Query(oauthGETVariableCode, ""),
		State:            c.Query(oauthGETVariableState, ""),
		Error:            c.Query(oauthGETVariableError, ""),
		ErrorDescription: c.Query(oauthGETVariableErrorDescription, ""),
	}
}

// callbackMessage returns a user facing message for a failed callback.
func callbackMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingParameters):
		return "Incomplete authorization parameters"
	default:
		return "Login failed, please retry"
	}
}

// exchangeErrorMessage prefers the provider's error description.
func exchangeErrorMessage(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		switch {
		case re.ErrorDescription != "":
			return re.ErrorDescription
		case re.ErrorCode != "":
			return re.ErrorCode
		}
	}
	return err.Error()
}

// readKeyMaterial reads a private key from the uploaded file or from the form field.
// The material is returned verbatim.
func readKeyMaterial(c *fiber.Ctx) (string, error) {
	if fh, err := c.FormFile(formKeyFile); err == nil {
		if fh.Size > maxKeySize {
			return "", fmt.Errorf("%w of key file: it's larger than %d bytes", ErrInvalidValue, maxKeySize)
		}
		f, err := fh.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		raw, err := io.ReadAll(io.LimitReader(f, maxKeySize))
		if err != nil {
			return "", err
		}
		if len(raw) == 0 {
			return "", fmt.Errorf("%w of key file: it's empty", ErrInvalidValue)
		}
		return string(raw), nil
	}
	material := c.FormValue(formKeyMaterial, "")
	if material == "" {
		return "", fmt.Errorf("%w of private key: neither %s file nor %s field is given", ErrInvalidValue, formKeyFile, formKeyMaterial)
	}
	return material, nil
}
