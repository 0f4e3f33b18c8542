package enrollmentValidator

import (
	"strings"

	"fstop/middleware"

	"github.com/gofiber/fiber/v2"
)

const CourseIDKey = "courseID"

// Status reads the optional courseId query parameter.
func Status() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID := strings.TrimSpace(c.Query("courseId"))
		if len(courseID) > 128 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		c.Locals(CourseIDKey, courseID)
		return c.Next()
	}
}
