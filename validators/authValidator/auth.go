package authValidator

import (
	"strings"

	"fstop/identity"
	"fstop/middleware"
	"fstop/validators"

	"github.com/gofiber/fiber/v2"
)

const (
	CredentialsKey = "validatedCredentials"
	RegisterKey    = "validatedRegistration"
)

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"displayName" validate:"max=120"`
}

// SignIn validator middleware
func SignIn() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(identity.Credentials)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Email = strings.TrimSpace(reqData.Email)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals(CredentialsKey, reqData)
		return c.Next()
	}
}

// Register validator middleware
func Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RegisterRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Email = strings.TrimSpace(reqData.Email)
		reqData.DisplayName = strings.TrimSpace(reqData.DisplayName)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals(RegisterKey, reqData)
		return c.Next()
	}
}
