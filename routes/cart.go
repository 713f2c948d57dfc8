package routes

import (
	"autogas-backend/controllers"

	"github.com/gofiber/fiber/v2"
)

// SetupCartRoutes настраивает маршруты корзины и избранного
func SetupCartRoutes(app *fiber.App, cartController *controllers.CartController, wishlistController *controllers.WishlistController, auth fiber.Handler) {
	cart := app.Group("/api/cart", auth)

	// GET /api/cart - корзина
	cart.Get("/", cartController.GetCart)

	// POST /api/cart - добавить товар
	cart.Post("/", cartController.AddToCart)

	// PUT /api/cart/:product_id - изменить количество
	cart.Put("/:product_id", cartController.UpdateCartItem)

	// DELETE /api/cart/:product_id - убрать товар
	cart.Delete("/:product_id", cartController.RemoveCartItem)

	// DELETE /api/cart - очистить корзину
	cart.Delete("/", cartController.ClearCart)

	wishlist := app.Group("/api/wishlist", auth)

	// GET /api/wishlist - избранное
	wishlist.Get("/", wishlistController.GetWishlist)

	// POST /api/wishlist - добавить товар
	wishlist.Post("/", wishlistController.AddToWishlist)

	// DELETE /api/wishlist/:product_id - убрать товар
	wishlist.Delete("/:product_id", wishlistController.RemoveFromWishlist)

	// DELETE /api/wishlist - очистить
	wishlist.Delete("/", wishlistController.ClearWishlist)
}
