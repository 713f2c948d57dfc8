package controllers

import (
	"autogas-backend/models"
	"autogas-backend/services"

	"github.com/gofiber/fiber/v2"
)

// StaffController управление администраторами и контрагентами
type StaffController struct {
	users *services.UserService
}

// NewStaffController создает новый экземпляр StaffController
func NewStaffController(users *services.UserService) *StaffController {
	return &StaffController{users: users}
}

// ToggleResponse структура ответа смены статуса
type ToggleResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	IsActive bool   `json:"is_active"`
}

func (sc *StaffController) create(c *fiber.Ctx, role, message string) error {
	var req services.StaffInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	user, err := sc.users.CreateStaff(c.UserContext(), actorOf(c), role, req, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(UserResponse{Success: true, Message: message, User: user})
}

func (sc *StaffController) update(c *fiber.Ctx, role, message string) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req services.StaffUpdate
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	user, err := sc.users.UpdateStaff(c.UserContext(), actorOf(c), role, id, req, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(UserResponse{Success: true, Message: message, User: user})
}

func (sc *StaffController) toggle(c *fiber.Ctx, role string) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	user, err := sc.users.ToggleStaff(c.UserContext(), actorOf(c), role, id, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(ToggleResponse{Success: true, Message: "Статус изменен", IsActive: user.IsActive})
}

// CreateAdmin создает администратора
func (sc *StaffController) CreateAdmin(c *fiber.Ctx) error {
	return sc.create(c, models.RoleAdmin, "Администратор создан")
}

// UpdateAdmin обновляет администратора
func (sc *StaffController) UpdateAdmin(c *fiber.Ctx) error {
	return sc.update(c, models.RoleAdmin, "Администратор обновлен")
}

// ToggleAdmin включает или отключает администратора
func (sc *StaffController) ToggleAdmin(c *fiber.Ctx) error {
	return sc.toggle(c, models.RoleAdmin)
}

// DeleteAdmin удаляет администратора
func (sc *StaffController) DeleteAdmin(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	if err := sc.users.DeleteAdmin(c.UserContext(), actorOf(c), id, requestMeta(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(MessageResponse{Success: true, Message: "Администратор удален"})
}

// CreateKontragent создает контрагента
func (sc *StaffController) CreateKontragent(c *fiber.Ctx) error {
	return sc.create(c, models.RoleKontragent, "Контрагент создан")
}

// UpdateKontragent обновляет контрагента
func (sc *StaffController) UpdateKontragent(c *fiber.Ctx) error {
	return sc.update(c, models.RoleKontragent, "Контрагент обновлен")
}

// ToggleKontragent включает или отключает контрагента
func (sc *StaffController) ToggleKontragent(c *fiber.Ctx) error {
	return sc.toggle(c, models.RoleKontragent)
}
