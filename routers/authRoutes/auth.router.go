package authRoutes

import (
	controllers "fstop/controllers/authController"
	"fstop/middleware"
	validators "fstop/validators/authValidator"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes sets up sign-in, sign-out and session lookup routes.
func SetupAuthRoutes(app *fiber.App, h *controllers.Handler, sessions *middleware.Sessions, allowRegister bool) {
	authGroup := app.Group("/api/auth")

	authGroup.Post("/sign-in", validators.SignIn(), h.SignIn)
	authGroup.Post("/sign-out", sessions.Optional(), h.SignOut)
	authGroup.Get("/me", sessions.Optional(), h.Me)

	if allowRegister {
		authGroup.Post("/register", validators.Register(), h.Register)
	}
}
