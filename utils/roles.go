package utils

import "github.com/gofiber/fiber/v2"

// RequireRoles пропускает только пользователей с одной из ролей
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return unauthorized(c, "Требуется авторизация")
		}

		if !user.HasRole(roles...) {
			return c.Status(403).JSON(fiber.Map{
				"success":        false,
				"message":        "Недостаточно прав",
				"required_roles": roles,
				"your_role":      user.Role,
			})
		}

		return c.Next()
	}
}
