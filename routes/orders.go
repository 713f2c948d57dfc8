package routes

import (
	"autogas-backend/controllers"

	"github.com/gofiber/fiber/v2"
)

// SetupOrderRoutes настраивает маршруты заказов покупателя
func SetupOrderRoutes(app *fiber.App, orderController *controllers.OrderController, auth fiber.Handler) {
	orders := app.Group("/api/orders", auth)

	// POST /api/orders - оформить заказ
	orders.Post("/", orderController.PlaceOrder)

	// GET /api/orders/:id - получить заказ
	orders.Get("/:id", orderController.GetOrder)

	// POST /api/orders/:id/cancel - отменить заказ
	orders.Post("/:id/cancel", orderController.CancelOrder)
}
