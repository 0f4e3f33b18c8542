package enrollmentController

import (
	"context"

	"fstop/enrollment"
	"fstop/middleware"
	"fstop/validators/enrollmentValidator"

	"github.com/gofiber/fiber/v2"
)

type Service interface {
	CheckAccess(ctx context.Context, userID, courseID string) (*enrollment.Access, error)
	Initialize(ctx context.Context, userID, email string, displayName *string) (*enrollment.Result, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// GetStatus reports the caller's access, optionally for one course.
func (h *Handler) GetStatus(c *fiber.Ctx) error {
	id := middleware.CurrentIdentity(c)
	courseID, _ := c.Locals(enrollmentValidator.CourseIDKey).(string)

	access, err := h.svc.CheckAccess(c.UserContext(), id.UID, courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment status fetched successfully!", access)
}

// Initialize creates the caller's record on first visit to a gated page.
func (h *Handler) Initialize(c *fiber.Ctx) error {
	id := middleware.CurrentIdentity(c)

	res, err := h.svc.Initialize(c.UserContext(), id.UID, id.Email, id.DisplayNamePtr())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment initialized!", res)
}
