package server

import (
	"errors"
	"fmt"
	"github.com/gofiber/fiber/v2"
	middlewareCompress "github.com/gofiber/fiber/v2/middleware/compress"
	middlewareCSRF "github.com/gofiber/fiber/v2/middleware/csrf"
	middlewareLogger "github.com/gofiber/fiber/v2/middleware/logger"
	middlewareRecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hashicorp/go-hclog"
	"github.com/maxsid/siteauth/auth"
	"github.com/maxsid/siteauth/github"
	ghauth "github.com/maxsid/siteauth/github/auth"
)

const (
	pathLogin    = "/auth/login"
	pathLogout   = "/auth/logout"
	pathKey      = "/auth/key"
	pathAPIState = "/api/auth/state"
	pathAPIUser  = "/api/auth/user"

	csrfCookieName = "siteauth_csrf"
	csrfContextKey = "csrf"
)

// Handlers holds the dependencies of every route.
type Handlers struct {
	Flow     flowController
	Auth     authenticator
	Profiles profileGetter
	// Exchanger serves the token exchange endpoint. The endpoint isn't registered if it's nil.
	Exchanger github.ConfigCodeExchanger
	Logger    hclog.Logger
}

// Run runs a web server.
func Run(addr string, h *Handlers) error {
	app, err := createApp(h)
	if err != nil {
		return err
	}
	return app.Listen(addr)
}

func createApp(h *Handlers) (*fiber.App, error) {
	if h == nil || h.Flow == nil || h.Auth == nil || h.Profiles == nil {
		return nil, fmt.Errorf("%w of handlers: flow, auth and profiles are required", ErrInvalidValue)
	}
	if h.Logger == nil {
		h.Logger = hclog.NewNullLogger()
	}

	engine, err := templatesEngine()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{Views: engine})

	initMiddlewares(app)
	initHandlers(app, h)

	return app, nil
}

func initMiddlewares(app *fiber.App) {
	app.Use(middlewareLogger.New())
	app.Use(middlewareRecover.New())
	app.Use(middlewareCompress.New())
}

// newCSRFProtection returns a double submit cookie check for the forms of the index page.
// The token is issued on GET and required in the form on POST.
func newCSRFProtection() fiber.Handler {
	return middlewareCSRF.New(middlewareCSRF.Config{
		KeyLookup:      "form:" + formKeyCSRF,
		CookieName:     csrfCookieName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		ContextKey:     csrfContextKey,
	})
}

// csrfToken returns the token issued for the current request.
func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals(csrfContextKey).(string)
	return token
}

func initHandlers(app *fiber.App, h *Handlers) {
	protect := newCSRFProtection()

	app.Get("/", protect, h.index)
	app.Get(pathLogin, h.login)
	app.Get(ghauth.CallbackPath, h.callback)
	app.Post(pathLogout, protect, h.logout)
	app.Post(pathKey, protect, h.importKey)
	app.Get(pathAPIState, h.apiState)
	app.Get(pathAPIUser, h.apiUser)
	if h.Exchanger != nil {
		app.Post(auth.ExchangePath, h.exchange)
	}
	app.Get("/static/*", static) // handles static
}

// index handles and renders "/" path.
func (h *Handlers) index(c *fiber.Ctx) error {
	state := h.Auth.State()
	data := renderIndexData{State: state, CSRFToken: csrfToken(c)}
	if state.HasOAuth2Auth {
		data.Profile = h.Profiles.CurrentUser(c.UserContext())
	}
	return renderIndex(c, data)
}

// login handles "/auth/login". Saves a new pending state and redirects to GitHub.
func (h *Handlers) login(c *fiber.Ctx) error {
	link, err := h.Flow.Initiate(c.UserContext())
	if err != nil {
		return err
	}
	return c.Redirect(link)
}

// callback handles the redirect from GitHub with code and state or an error.
func (h *Handlers) callback(c *fiber.Ctx) error {
	ctx := c.UserContext()
	data := getOAuthCallbackData(c)

	if data.Error != "" {
		if err := h.Flow.Abort(ctx); err != nil {
			h.Logger.Error("failed to abort authorization", "error", err)
		}
		h.Logger.Warn("github authorization denied", "error", data.Error)
		return renderCallbackFailure(c, fmt.Sprintf("GitHub authorization failed: %s", data.description()))
	}
	if data.Code == "" || data.State == "" {
		return renderCallbackFailure(c, callbackMessage(auth.ErrMissingParameters))
	}

	if err := h.Flow.HandleCallback(ctx, data.Code, data.State); err != nil {
		h.Logger.Warn("oauth2 login failed", "error", err)
		return renderCallbackFailure(c, callbackMessage(err))
	}
	if err := h.Auth.SetOAuth2Auth(ctx); err != nil {
		h.Logger.Error("failed to refresh oauth2 state", "error", err)
	}
	return renderCallbackSuccess(c)
}

// logout handles POST "/auth/logout". Clears both credentials.
func (h *Handlers) logout(c *fiber.Ctx) error {
	if err := h.Auth.ClearAuth(c.UserContext()); err != nil {
		return err
	}
	return c.Redirect("/")
}

// importKey handles POST "/auth/key" with a key file or a pasted key.
func (h *Handlers) importKey(c *fiber.Ctx) error {
	material, err := readKeyMaterial(c)
	if err != nil {
		if errors.Is(err, ErrInvalidValue) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}
	if err = h.Auth.SetPrivateKey(c.UserContext(), material); err != nil {
		if errors.Is(err, auth.ErrInvalidValue) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}
	return c.Redirect("/")
}

// apiState returns credential flags. Key material is never included.
func (h *Handlers) apiState(c *fiber.Ctx) error {
	return c.JSON(h.Auth.State())
}

// apiUser returns the profile of the OAuth2 token owner.
func (h *Handlers) apiUser(c *fiber.Ctx) error {
	profile := h.Profiles.CurrentUser(c.UserContext())
	if profile == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no profile available"})
	}
	return c.JSON(profile)
}

// exchange is the token exchange endpoint. It swaps the code for a token with the client secret,
// which never leaves the server.
func (h *Handlers) exchange(c *fiber.Ctx) error {
	var req auth.ExchangeRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" || req.State == "" {
		return c.Status(fiber.StatusBadRequest).JSON(&auth.ExchangeResponse{Error: "Missing code or state"})
	}
	tok, err := h.Exchanger.Exchange(c.UserContext(), req.Code)
	if err == nil && (tok == nil || tok.AccessToken == "") {
		err = fmt.Errorf("%w of token: access token is empty", ErrInvalidValue)
	}
	if err != nil {
		h.Logger.Error("oauth2 token exchange error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(&auth.ExchangeResponse{Error: exchangeErrorMessage(err)})
	}
	return c.JSON(&auth.ExchangeResponse{Success: true, AccessToken: tok.AccessToken})
}
