package adminRoutes

import (
	controllers "fstop/controllers/adminController"
	"fstop/middleware"
	validators "fstop/validators/adminValidator"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes sets up enrollment administration. Every route needs a
// session whose record carries the admin capability.
func SetupAdminRoutes(app *fiber.App, h *controllers.Handler, sessions *middleware.Sessions, access middleware.AccessChecker) {
	adminGroup := app.Group("/api/admin", sessions.Required(), middleware.RequireAdmin(access))

	adminGroup.Get("/stats", h.GetStats)
	adminGroup.Get("/enrollments", h.ListEnrollments)
	adminGroup.Get("/enrollments/:userId", validators.TargetUser(), h.GetEnrollment)
	adminGroup.Delete("/enrollments/:userId", validators.TargetUser(), h.DeleteEnrollment)

	adminGroup.Post("/enrollments/:userId/capabilities", validators.TargetUser(), validators.Capability(), h.AddCapability)
	adminGroup.Delete("/enrollments/:userId/capabilities/:capability", validators.TargetUser(), validators.Capability(), h.RemoveCapability)
	adminGroup.Put("/enrollments/:userId/status", validators.TargetUser(), validators.Status(), h.SetStatus)
	adminGroup.Post("/enrollments/:userId/courses", validators.TargetUser(), validators.Course(), h.EnrollInCourse)
}
