package routes

import (
	"autogas-backend/controllers"

	"github.com/gofiber/fiber/v2"
)

// SetupProductRoutes настраивает публичные маршруты каталога и отзывов
func SetupProductRoutes(app *fiber.App, productController *controllers.ProductController, reviewController *controllers.ReviewController, auth fiber.Handler) {
	products := app.Group("/api/products")

	// GET /api/products - каталог с фильтром category и поиском q
	products.Get("/", productController.GetProducts)

	// GET /api/products/:id - карточка товара
	products.Get("/:id", productController.GetProduct)

	// GET /api/products/:id/reviews - отзывы товара
	products.Get("/:id/reviews", reviewController.GetProductReviews)

	// POST /api/products/:id/reviews - оставить отзыв
	products.Post("/:id/reviews", auth, reviewController.CreateReview)

	reviews := app.Group("/api/reviews", auth)

	// PUT /api/reviews/:id - изменить свой отзыв
	reviews.Put("/:id", reviewController.UpdateReview)

	// DELETE /api/reviews/:id - удалить отзыв
	reviews.Delete("/:id", reviewController.DeleteReview)
}
