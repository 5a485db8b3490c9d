package server

import (
	"embed"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/maxsid/siteauth/auth"
	"github.com/maxsid/siteauth/github"
	"io/fs"
	"net/http"
)

const (
	templateIndex    = "index"
	templateCallback = "callback"
)

// Seconds before the callback page returns home.
const (
	callbackSuccessDelay = "1.5"
	callbackFailureDelay = "3"
)

//go:embed template/*.html
var templateFS embed.FS

// templatesEngine returns html.Engine for pages rendering.
func templatesEngine() (*html.Engine, error) {
	sfs, err := fs.Sub(templateFS, "template")
	if err != nil {
		return nil, err
	}
	return html.NewFileSystem(http.FS(sfs), ".html"), nil
}

type renderIndexData struct {
	State     auth.State
	Profile   *github.Profile
	CSRFToken string
}

// renderIndex renders index page
func renderIndex(c *fiber.Ctx, data renderIndexData) error {
	return c.Render(templateIndex, fiber.Map{
		"HasOAuth2Auth":     data.State.HasOAuth2Auth,
		"HasPrivateKeyAuth": data.State.HasPrivateKeyAuth,
		"Profile":           data.Profile,
		"LoginLink":         pathLogin,
		"LogoutLink":        pathLogout,
		"KeyLink":           pathKey,
		"CSRFField":         formKeyCSRF,
		"CSRFToken":         data.CSRFToken,
	})
}

// renderCallbackSuccess renders the callback page which returns home after a short delay.
func renderCallbackSuccess(c *fiber.Ctx) error {
	return c.Render(templateCallback, fiber.Map{
		"Success": true,
		"Message": "GitHub OAuth2 login succeeded",
		"Delay":   callbackSuccessDelay,
	})
}

// renderCallbackFailure renders the callback page with message.
func renderCallbackFailure(c *fiber.Ctx, message string) error {
	c.Status(fiber.StatusBadRequest)
	return c.Render(templateCallback, fiber.Map{
		"Success": false,
		"Message": message,
		"Delay":   callbackFailureDelay,
	})
}
