package middleware

import (
	"context"

	"fstop/enrollment"
	"fstop/models"

	"github.com/gofiber/fiber/v2"
)

const localsAccess = "access"

// AccessChecker is the part of the enrollment service the gates need.
type AccessChecker interface {
	CheckAccess(ctx context.Context, userID, courseID string) (*enrollment.Access, error)
}

// RequireAccess rejects identities without access to gated content. It must
// run after Sessions.Required. courseID may be nil for catalog-wide checks.
func RequireAccess(checker AccessChecker, courseID func(*fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := CurrentIdentity(c)
		if id == nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}

		var course string
		if courseID != nil {
			course = courseID(c)
		}
		access, err := checker.CheckAccess(c.UserContext(), id.UID, course)
		if err != nil {
			return ErrorResponse(c, err)
		}
		if !access.HasAccess {
			return JsonResponse(c, fiber.StatusForbidden, false, "Enrollment required to view this content!", access)
		}

		c.Locals(localsAccess, access)
		return c.Next()
	}
}

// RequireAdmin allows only identities whose record carries the admin capability.
func RequireAdmin(checker AccessChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := CurrentIdentity(c)
		if id == nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}

		access, err := checker.CheckAccess(c.UserContext(), id.UID, "")
		if err != nil {
			return ErrorResponse(c, err)
		}
		for _, role := range access.Roles {
			if role == models.CapAdmin.String() {
				return c.Next()
			}
		}
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}
}

// CurrentAccess returns the access decision stored by RequireAccess, or nil.
func CurrentAccess(c *fiber.Ctx) *enrollment.Access {
	access, _ := c.Locals(localsAccess).(*enrollment.Access)
	return access
}
