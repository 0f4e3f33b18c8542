package courseController

import (
	"fstop/middleware"
	"fstop/models"
	"fstop/models/course"
	"fstop/progress"
	"fstop/validators/progressValidator"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Handler struct {
	content      ContentReader
	progress     ProgressTracker
	access       AccessChecker
	featuredSlug string
	log          *zap.Logger
}

func NewHandler(content ContentReader, tracker ProgressTracker, access AccessChecker, featuredSlug string, log *zap.Logger) *Handler {
	return &Handler{content: content, progress: tracker, access: access, featuredSlug: featuredSlug, log: log}
}

// GetFeaturedCourse returns the featured course document as-is, or 404 {error}.
func (h *Handler) GetFeaturedCourse(c *fiber.Ctx) error {
	crs, err := h.content.CourseBySlug(c.UserContext(), h.featuredSlug)
	if err != nil {
		h.log.Warn("featured course fetch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch course data"})
	}
	if crs == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "F-Stop to Success course not found"})
	}
	return c.JSON(crs)
}

// GetUserProgress returns the progress document or null with 200.
func (h *Handler) GetUserProgress(c *fiber.Ctx) error {
	reqData := c.Locals(progressValidator.UserProgressKey).(*progressValidator.UserProgressQuery)

	rec, err := h.progress.GetProgress(c.UserContext(), reqData.UserID, reqData.CourseID)
	if err != nil {
		h.log.Warn("user progress fetch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user progress"})
	}
	if rec == nil {
		return c.JSON(nil)
	}
	return c.JSON(rec)
}

func (h *Handler) GetAllCourses(c *fiber.Ctx) error {
	courses, err := h.content.Courses(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

func (h *Handler) GetCourseDetails(c *fiber.Ctx) error {
	crs, err := h.content.CourseBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if crs == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", crs)
}

// GetLesson fetches the course and the lesson page concurrently, then checks
// course access and module gating for the caller.
func (h *Handler) GetLesson(c *fiber.Ctx) error {
	id := middleware.CurrentIdentity(c)
	ctx := c.UserContext()
	courseSlug := utils.CopyString(c.Params("slug"))
	lessonSlug := utils.CopyString(c.Params("lessonSlug"))

	var (
		crs  *course.Course
		page *course.LessonPage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		crs, err = h.content.CourseBySlug(gctx, courseSlug)
		return err
	})
	g.Go(func() error {
		var err error
		page, err = h.content.LessonPage(gctx, lessonSlug)
		return err
	})
	if err := g.Wait(); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if crs == nil || page == nil || !crs.HasLesson(page.Lesson.ID) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	access, err := h.access.CheckAccess(ctx, id.UID, crs.ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if !access.HasAccess {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Enrollment required to view this content!", access)
	}

	rec, err := h.progress.GetProgress(ctx, id.UID, crs.ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	states := progress.ModuleStates(crs, rec)
	moduleAccessible := false
	for i, m := range crs.Modules {
		for _, l := range m.Lessons {
			if l.ID == page.Lesson.ID {
				moduleAccessible = states[i].Accessible
			}
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully!", fiber.Map{
		"lesson":           page.Lesson,
		"previous":         page.Previous,
		"next":             page.Next,
		"completed":        rec != nil && rec.HasCompleted(page.Lesson.ID),
		"moduleAccessible": moduleAccessible,
		"access":           access,
	})
}

// GetDashboard returns the course, the caller's progress (created on first
// visit) and the state of every module.
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	id := middleware.CurrentIdentity(c)
	ctx := c.UserContext()

	crs, err := h.content.CourseBySlug(ctx, c.Params("slug"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if crs == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	access, err := h.access.CheckAccess(ctx, id.UID, crs.ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if !access.HasAccess {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Enrollment required to view this content!", access)
	}

	rec, err := h.progress.EnsureProgress(ctx, id.UID, crs)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if rec.Source == models.SourceLocalFallback {
		h.log.Warn("dashboard served from local progress", zap.String("userId", id.UID), zap.String("source", string(rec.Source)))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", fiber.Map{
		"course":       crs,
		"progress":     rec,
		"modules":      progress.ModuleStates(crs, rec),
		"totalLessons": crs.TotalLessons(),
		"access":       access,
	})
}
