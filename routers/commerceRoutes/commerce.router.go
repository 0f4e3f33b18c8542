package commerceRoutes

import (
	controllers "fstop/controllers/commerceController"
	validators "fstop/validators/commerceValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupCommerceRoutes(app *fiber.App, h *controllers.Handler) {
	app.Post("/api/newsletter", validators.Newsletter(), h.Subscribe)
	app.Get("/api/products/:id", validators.Product(), h.GetProduct)
	app.Post("/api/checkout", validators.Checkout(), h.Checkout)
}
