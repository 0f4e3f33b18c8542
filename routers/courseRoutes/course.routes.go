package courseRoutes

import (
	controllers "fstop/controllers/courseController"
	"fstop/middleware"
	validators "fstop/validators/progressValidator"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the public course routes and the gated lesson and
// dashboard routes.
func SetupCourseRoutes(app *fiber.App, h *controllers.Handler, sessions *middleware.Sessions, access middleware.AccessChecker) {
	// Public contract endpoints
	app.Get("/api/course", h.GetFeaturedCourse)
	app.Get("/api/user-progress", validators.UserProgress(), h.GetUserProgress)

	courseGroup := app.Group("/api/courses")
	courseGroup.Get("/", h.GetAllCourses)
	courseGroup.Get("/:slug", h.GetCourseDetails)
	courseGroup.Get("/:slug/lessons/:lessonSlug", sessions.Required(), middleware.RequireAccess(access, nil), h.GetLesson)

	app.Get("/api/dashboard/:slug", sessions.Required(), middleware.RequireAccess(access, nil), h.GetDashboard)
}
