package commerceValidator

import (
	"strings"

	"fstop/middleware"
	"fstop/validators"

	"github.com/gofiber/fiber/v2"
)

const (
	NewsletterKey = "validatedNewsletter"
	CheckoutKey   = "validatedCheckout"
	ProductIDKey  = "productID"
)

type NewsletterRequest struct {
	Email string `json:"email"`
}

type CheckoutRequest struct {
	VariantID string `json:"variantId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1,max=10"`
}

// Newsletter answers with a bare {error} body to keep the public contract.
func Newsletter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(NewsletterRequest)
		if err := c.BodyParser(reqData); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email is required"})
		}
		reqData.Email = strings.TrimSpace(reqData.Email)

		if reqData.Email == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email is required"})
		}
		if !validators.Var(reqData.Email, "email") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email address"})
		}

		c.Locals(NewsletterKey, reqData)
		return c.Next()
	}
}

func Checkout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := &CheckoutRequest{Quantity: 1}
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.VariantID = strings.TrimSpace(reqData.VariantID)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals(CheckoutKey, reqData)
		return c.Next()
	}
}

func Product() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Params("id"))
		if id == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Product ID is required!", nil)
		}
		c.Locals(ProductIDKey, id)
		return c.Next()
	}
}
