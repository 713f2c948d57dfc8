package controllers

import (
	"errors"

	"autogas-backend/models"
	"autogas-backend/services"
	"autogas-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthController контроллер для аутентификации
type AuthController struct {
	auth *services.AuthService
}

// NewAuthController создает новый экземпляр AuthController
func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// LoginRequest структура запроса входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse структура ответа аутентификации
type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

// Register обрабатывает регистрацию покупателя
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req services.RegisterInput

	// Парсим JSON
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	user, err := ac.auth.Register(c.UserContext(), req, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}

	// Генерируем JWT токен
	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{
			Success: false,
			Message: "Ошибка при создании токена",
		})
	}

	return c.Status(201).JSON(AuthResponse{
		Success: true,
		Message: "Пользователь успешно зарегистрирован",
		Token:   token,
		User:    user,
	})
}

// Login обрабатывает вход пользователя
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return respondError(c, &services.ValidationError{Fields: fields})
	}

	user, err := ac.auth.Authenticate(c.UserContext(), req.Email, req.Password, requestMeta(c))
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(401).JSON(AuthResponse{
			Success: false,
			Message: "Неверный email или пароль",
		})
	case errors.Is(err, services.ErrAccountBlocked):
		return c.Status(403).JSON(AuthResponse{
			Success: false,
			Message: "Аккаунт заблокирован",
		})
	case err != nil:
		return respondError(c, err)
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{
			Success: false,
			Message: "Ошибка при создании токена",
		})
	}

	return c.JSON(AuthResponse{
		Success: true,
		Message: "Успешный вход в систему",
		Token:   token,
		User:    user,
	})
}

// Logout отзывает текущий токен
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	claims := utils.CurrentClaims(c)
	if claims == nil {
		return c.Status(401).JSON(AuthResponse{
			Success: false,
			Message: "Требуется авторизация",
		})
	}

	var expiresAt = claims.ExpiresAt
	if expiresAt != nil {
		if err := ac.auth.Revoke(c.UserContext(), claims.UserID, claims.ID, expiresAt.Time, requestMeta(c)); err != nil {
			return respondError(c, err)
		}
	}

	return c.JSON(MessageResponse{
		Success: true,
		Message: "Вы вышли из системы",
	})
}

// Me возвращает текущего пользователя
func (ac *AuthController) Me(c *fiber.Ctx) error {
	return c.JSON(AuthResponse{
		Success: true,
		Message: "Текущий пользователь",
		User:    utils.CurrentUser(c),
	})
}
