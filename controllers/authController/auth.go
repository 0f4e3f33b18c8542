package authController

import (
	"context"
	"time"

	"fstop/identity"
	"fstop/middleware"
	"fstop/validators/authValidator"

	"github.com/gofiber/fiber/v2"
)

type Authenticator interface {
	SignIn(ctx context.Context, creds identity.Credentials) (*identity.Session, error)
	SignOut(ctx context.Context, token string, id *identity.Identity)
}

type Registrar interface {
	Register(ctx context.Context, creds identity.Credentials, displayName string) (*identity.Identity, error)
}

type Handler struct {
	auth         Authenticator
	registrar    Registrar
	secureCookie bool
}

// NewHandler wires the auth endpoints. registrar may be nil when accounts are
// managed by the upstream provider.
func NewHandler(auth Authenticator, registrar Registrar, secureCookie bool) *Handler {
	return &Handler{auth: auth, registrar: registrar, secureCookie: secureCookie}
}

func (h *Handler) SignIn(c *fiber.Ctx) error {
	creds := c.Locals(authValidator.CredentialsKey).(*identity.Credentials)

	session, err := h.auth.SignIn(c.UserContext(), *creds)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Signed in successfully!", session)
}

// SignOut always succeeds for the caller.
func (h *Handler) SignOut(c *fiber.Ctx) error {
	h.auth.SignOut(c.UserContext(), middleware.CurrentToken(c), middleware.CurrentIdentity(c))

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Signed out successfully!", nil)
}

// Me returns the signed-in identity, or null.
func (h *Handler) Me(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Current user", middleware.CurrentIdentity(c))
}

func (h *Handler) Register(c *fiber.Ctx) error {
	if h.registrar == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Registration is not available!", nil)
	}
	reqData := c.Locals(authValidator.RegisterKey).(*authValidator.RegisterRequest)

	id, err := h.registrar.Register(c.UserContext(), identity.Credentials{Email: reqData.Email, Password: reqData.Password}, reqData.DisplayName)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Account created successfully!", id)
}
