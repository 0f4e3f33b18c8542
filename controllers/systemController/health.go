package systemController

import (
	"fstop/middleware"
	"fstop/models"

	"github.com/gofiber/fiber/v2"
)

type StoreStatus interface {
	Active() models.Source
}

type Handler struct {
	store StoreStatus
}

func NewHandler(store StoreStatus) *Handler {
	return &Handler{store: store}
}

// Health reports which enrollment store is serving requests.
func (h *Handler) Health(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", fiber.Map{
		"enrollmentStore": h.store.Active(),
	})
}
