package commerceController

import (
	"context"
	"errors"

	"fstop/apperr"
	"fstop/commerce"
	"fstop/middleware"
	"fstop/validators/commerceValidator"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Storefront interface {
	GetProduct(ctx context.Context, id string) (*commerce.Product, error)
	CreateCart(ctx context.Context, variantID string, quantity int) (*commerce.Cart, error)
	SubscribeEmail(ctx context.Context, email string) (*commerce.Customer, error)
}

type Handler struct {
	store Storefront
	log   *zap.Logger
}

func NewHandler(store Storefront, log *zap.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// Subscribe answers 200 {success, message, customer}, 409 for an existing
// subscriber and 500 for anything else.
func (h *Handler) Subscribe(c *fiber.Ctx) error {
	reqData := c.Locals(commerceValidator.NewsletterKey).(*commerceValidator.NewsletterRequest)

	customer, err := h.store.SubscribeEmail(c.UserContext(), reqData.Email)
	if err != nil {
		if errors.Is(err, commerce.ErrDuplicateSubscription) || apperr.Is(err, apperr.Duplicate) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "This email is already subscribed."})
		}
		h.log.Warn("newsletter subscription failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to subscribe. Please try again."})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Successfully subscribed to newsletter!",
		"customer": fiber.Map{
			"id":    customer.ID,
			"email": customer.Email,
		},
	})
}

func (h *Handler) GetProduct(c *fiber.Ctx) error {
	id := c.Locals(commerceValidator.ProductIDKey).(string)

	product, err := h.store.GetProduct(c.UserContext(), id)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if product == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Product not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Product fetched successfully!", product)
}

// Checkout creates a cart and returns the hosted checkout URL to redirect to.
func (h *Handler) Checkout(c *fiber.Ctx) error {
	reqData := c.Locals(commerceValidator.CheckoutKey).(*commerceValidator.CheckoutRequest)

	cart, err := h.store.CreateCart(c.UserContext(), reqData.VariantID, reqData.Quantity)
	if err != nil {
		if apperr.Is(err, apperr.Validation) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unable to add this item to the cart!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Checkout created successfully!", cart)
}
