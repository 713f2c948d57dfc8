package controllers

import (
	"autogas-backend/models"
	"autogas-backend/services"

	"github.com/gofiber/fiber/v2"
)

// UserController контроллер профиля пользователя
type UserController struct {
	users  *services.UserService
	orders *services.OrderService
}

// NewUserController создает новый экземпляр UserController
func NewUserController(users *services.UserService, orders *services.OrderService) *UserController {
	return &UserController{users: users, orders: orders}
}

// UserResponse структура ответа с пользователем
type UserResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user,omitempty"`
}

// ProfileResponse структура ответа с профилем
type ProfileResponse struct {
	Success bool `json:"success"`
	*services.ProfileView
}

// OrdersResponse структура ответа со списком заказов
type OrdersResponse struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	Orders     []models.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

// DeleteAccountRequest подтверждение удаления аккаунта
type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// GetProfile возвращает профиль со статистикой и последними действиями
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	view, err := uc.users.Profile(c.UserContext(), actorOf(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ProfileResponse{Success: true, ProfileView: view})
}

// UpdateProfile обновляет имя, email и телефон
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	var req services.ProfileInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	user, err := uc.users.UpdateProfile(c.UserContext(), actorOf(c), req, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(UserResponse{
		Success: true,
		Message: "Профиль успешно обновлен",
		User:    user,
	})
}

// UpdatePassword меняет пароль
func (uc *UserController) UpdatePassword(c *fiber.Ctx) error {
	var req services.PasswordInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	if err := uc.users.ChangePassword(c.UserContext(), actorOf(c), req, requestMeta(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(MessageResponse{
		Success: true,
		Message: "Пароль успешно изменен",
	})
}

// DeleteAccount удаляет аккаунт после подтверждения пароля
func (uc *UserController) DeleteAccount(c *fiber.Ctx) error {
	var req DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	if err := uc.users.DeleteAccount(c.UserContext(), actorOf(c), req.Password, requestMeta(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(MessageResponse{
		Success: true,
		Message: "Аккаунт успешно удален",
	})
}

// MyOrders возвращает заказы текущего пользователя
func (uc *UserController) MyOrders(c *fiber.Ctx) error {
	page, perPage := pageParams(c, 10)
	actor := actorOf(c)

	// Здесь всегда только собственные заказы, независимо от роли
	filter := services.OrderFilter{UserID: &actor.UserID, Page: page, PerPage: perPage}

	orders, total, err := uc.orders.ListOrders(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(OrdersResponse{
		Success:    true,
		Message:    "Заказы пользователя",
		Orders:     orders,
		Pagination: newPagination(total, page, perPage),
	})
}
