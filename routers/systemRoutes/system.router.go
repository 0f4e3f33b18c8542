package systemRoutes

import (
	controllers "fstop/controllers/systemController"

	"github.com/gofiber/fiber/v2"
)

func SetupSystemRoutes(app *fiber.App, h *controllers.Handler) {
	app.Get("/api/health", h.Health)
}
