package enrollmentRoutes

import (
	controllers "fstop/controllers/enrollmentController"
	"fstop/middleware"
	validators "fstop/validators/enrollmentValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupEnrollmentRoutes(app *fiber.App, h *controllers.Handler, sessions *middleware.Sessions) {
	enrollmentGroup := app.Group("/api/enrollment", sessions.Required())

	enrollmentGroup.Get("/status", validators.Status(), h.GetStatus)
	enrollmentGroup.Post("/initialize", h.Initialize)
}
