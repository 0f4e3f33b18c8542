package progressController

import (
	"context"

	"fstop/enrollment"
	"fstop/middleware"
	"fstop/models"
	"fstop/models/course"
	"fstop/progress"
	"fstop/validators/progressValidator"

	"github.com/gofiber/fiber/v2"
)

type ContentReader interface {
	CourseBySlug(ctx context.Context, slug string) (*course.Course, error)
}

type Engine interface {
	EnsureProgress(ctx context.Context, userID string, crs *course.Course) (*models.ProgressRecord, error)
	MarkLessonComplete(ctx context.Context, progressID, lessonID string, crs *course.Course) (*models.ProgressRecord, error)
	SetCurrentModule(ctx context.Context, progressID, moduleID string) (*models.ProgressRecord, error)
}

type AccessChecker interface {
	CheckAccess(ctx context.Context, userID, courseID string) (*enrollment.Access, error)
}

type Handler struct {
	content ContentReader
	engine  Engine
	access  AccessChecker
}

func NewHandler(content ContentReader, engine Engine, access AccessChecker) *Handler {
	return &Handler{content: content, engine: engine, access: access}
}

func (h *Handler) MarkLessonComplete(c *fiber.Ctx) error {
	reqData := c.Locals(progressValidator.CompleteLessonKey).(*progressValidator.CompleteLessonRequest)

	crs, rec, done := h.prepare(c, reqData.CourseSlug)
	if done != nil {
		return done()
	}

	updated, err := h.engine.MarkLessonComplete(c.UserContext(), rec.ID, reqData.LessonID, crs)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as complete!", fiber.Map{
		"progress": updated,
		"modules":  progress.ModuleStates(crs, updated),
	})
}

func (h *Handler) SetCurrentModule(c *fiber.Ctx) error {
	reqData := c.Locals(progressValidator.CurrentModuleKey).(*progressValidator.CurrentModuleRequest)

	crs, rec, done := h.prepare(c, reqData.CourseSlug)
	if done != nil {
		return done()
	}
	if !crs.HasModule(reqData.ModuleID) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Module does not belong to this course!", nil)
	}

	updated, err := h.engine.SetCurrentModule(c.UserContext(), rec.ID, reqData.ModuleID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Current module updated!", updated)
}

// prepare loads the course, checks course access and ensures a progress
// record. A non-nil done writes the response that ends the request.
func (h *Handler) prepare(c *fiber.Ctx, slug string) (*course.Course, *models.ProgressRecord, func() error) {
	id := middleware.CurrentIdentity(c)
	ctx := c.UserContext()

	crs, err := h.content.CourseBySlug(ctx, slug)
	if err != nil {
		return nil, nil, func() error { return middleware.ErrorResponse(c, err) }
	}
	if crs == nil {
		return nil, nil, func() error {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
	}

	access, err := h.access.CheckAccess(ctx, id.UID, crs.ID)
	if err != nil {
		return nil, nil, func() error { return middleware.ErrorResponse(c, err) }
	}
	if !access.HasAccess {
		return nil, nil, func() error {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Enrollment required to view this content!", access)
		}
	}

	rec, err := h.engine.EnsureProgress(ctx, id.UID, crs)
	if err != nil {
		return nil, nil, func() error { return middleware.ErrorResponse(c, err) }
	}
	return crs, rec, nil
}
