package routes

import (
	"autogas-backend/controllers"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes настраивает маршруты для аутентификации
func SetupAuthRoutes(app *fiber.App, authController *controllers.AuthController, auth fiber.Handler) {
	api := app.Group("/api")

	// POST /api/register - регистрация покупателя
	api.Post("/register", authController.Register)

	// POST /api/login - вход пользователя
	api.Post("/login", authController.Login)

	// POST /api/logout - выход и отзыв токена
	api.Post("/logout", auth, authController.Logout)

	// GET /api/user - текущий пользователь
	api.Get("/user", auth, authController.Me)
}
