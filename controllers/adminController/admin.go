package adminController

import (
	"context"

	"fstop/enrollment"
	"fstop/middleware"
	"fstop/models"
	"fstop/validators/adminValidator"

	"github.com/gofiber/fiber/v2"
)

type Service interface {
	Get(ctx context.Context, userID string) (*enrollment.Result, error)
	List(ctx context.Context) ([]models.EnrollmentRecord, models.Source, error)
	Stats(ctx context.Context) (*enrollment.Stats, error)
	AddCapability(ctx context.Context, userID string, c models.Capability) (*enrollment.Result, error)
	RemoveCapability(ctx context.Context, userID string, c models.Capability) (*enrollment.Result, error)
	SetStatus(ctx context.Context, userID string, status models.EnrollmentStatus) (*enrollment.Result, error)
	EnrollInCourse(ctx context.Context, userID, courseID string) (*enrollment.Result, error)
	Delete(ctx context.Context, userID string) (models.Source, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ListEnrollments(c *fiber.Ctx) error {
	recs, src, err := h.svc.List(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": recs,
		"total":       len(recs),
		"source":      src,
	})
}

func (h *Handler) GetEnrollment(c *fiber.Ctx) error {
	res, err := h.svc.Get(c.UserContext(), userID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if res.Record == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment record not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment fetched successfully!", res)
}

func (h *Handler) GetStats(c *fiber.Ctx) error {
	stats, err := h.svc.Stats(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Stats fetched successfully!", stats)
}

func (h *Handler) AddCapability(c *fiber.Ctx) error {
	capability := c.Locals(adminValidator.CapabilityKey).(models.Capability)
	return respond(c, "Capability added!")(h.svc.AddCapability(c.UserContext(), userID(c), capability))
}

func (h *Handler) RemoveCapability(c *fiber.Ctx) error {
	capability := c.Locals(adminValidator.CapabilityKey).(models.Capability)
	return respond(c, "Capability removed!")(h.svc.RemoveCapability(c.UserContext(), userID(c), capability))
}

// SetStatus is also the unenroll flow: status inactive keeps history intact.
func (h *Handler) SetStatus(c *fiber.Ctx) error {
	status := c.Locals(adminValidator.StatusKey).(models.EnrollmentStatus)
	return respond(c, "Status updated!")(h.svc.SetStatus(c.UserContext(), userID(c), status))
}

func (h *Handler) EnrollInCourse(c *fiber.Ctx) error {
	courseID := c.Locals(adminValidator.CourseIDKey).(string)
	return respond(c, "Enrolled in course successfully!")(h.svc.EnrollInCourse(c.UserContext(), userID(c), courseID))
}

func (h *Handler) DeleteEnrollment(c *fiber.Ctx) error {
	src, err := h.svc.Delete(c.UserContext(), userID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment record deleted!", fiber.Map{"source": src})
}

func userID(c *fiber.Ctx) string {
	return c.Locals(adminValidator.UserIDKey).(string)
}

func respond(c *fiber.Ctx, message string) func(*enrollment.Result, error) error {
	return func(res *enrollment.Result, err error) error {
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, message, res)
	}
}
