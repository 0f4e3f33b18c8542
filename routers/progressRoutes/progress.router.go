package progressRoutes

import (
	controllers "fstop/controllers/progressController"
	"fstop/middleware"
	validators "fstop/validators/progressValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressRoutes(app *fiber.App, h *controllers.Handler, sessions *middleware.Sessions, access middleware.AccessChecker) {
	progressGroup := app.Group("/api/progress", sessions.Required(), middleware.RequireAccess(access, nil))

	progressGroup.Post("/:slug/lessons/:lessonId/complete", validators.CompleteLesson(), h.MarkLessonComplete)
	progressGroup.Put("/:slug/current-module", validators.SetCurrentModule(), h.SetCurrentModule)
}
