package adminValidator

import (
	"strings"

	"fstop/middleware"
	"fstop/models"
	"fstop/validators"

	"github.com/gofiber/fiber/v2"
)

const (
	UserIDKey     = "targetUserID"
	CapabilityKey = "validatedCapability"
	StatusKey     = "validatedStatus"
	CourseIDKey   = "validatedCourseID"
)

type capabilityRequest struct {
	Capability string `json:"capability" validate:"required"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive pending"`
}

type courseRequest struct {
	CourseID string `json:"courseId" validate:"required,max=128"`
}

// TargetUser reads the :userId route parameter.
func TargetUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Params("userId"))
		if userID == "" || len(userID) > 128 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user ID!", nil)
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// Capability accepts the capability from the :capability parameter or the
// request body and rejects unknown tags.
func Capability() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tag := strings.TrimSpace(c.Params("capability"))
		if tag == "" {
			reqData := new(capabilityRequest)
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
			if errors := validators.Struct(reqData); errors != nil {
				return middleware.ValidationErrorResponse(c, errors)
			}
			tag = reqData.Capability
		}

		capability, err := models.ParseCapability(tag)
		if err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"capability": "Unknown capability!"})
		}
		c.Locals(CapabilityKey, capability)
		return c.Next()
	}
}

func Status() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(statusRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Status = strings.ToLower(strings.TrimSpace(reqData.Status))
		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(StatusKey, models.EnrollmentStatus(reqData.Status))
		return c.Next()
	}
}

func Course() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(courseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.CourseID = strings.TrimSpace(reqData.CourseID)
		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(CourseIDKey, reqData.CourseID)
		return c.Next()
	}
}
