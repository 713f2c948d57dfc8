package routes

import (
	"autogas-backend/controllers"

	"github.com/gofiber/fiber/v2"
)

// SetupUserRoutes настраивает маршруты профиля текущего пользователя
func SetupUserRoutes(app *fiber.App, userController *controllers.UserController, auth fiber.Handler) {
	user := app.Group("/api/user", auth)

	// GET /api/user/profile - профиль со статистикой
	user.Get("/profile", userController.GetProfile)

	// PUT /api/user/profile - обновить профиль
	user.Put("/profile", userController.UpdateProfile)

	// PUT /api/user/password - сменить пароль
	user.Put("/password", userController.UpdatePassword)

	// DELETE /api/user/account - удалить аккаунт
	user.Delete("/account", userController.DeleteAccount)

	// GET /api/user/orders - свои заказы
	user.Get("/orders", userController.MyOrders)
}
