package controllers

import (
	"errors"
	"strconv"

	"autogas-backend/config"
	"autogas-backend/services"
	"autogas-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse структура ответа с ошибкой
type ErrorResponse struct {
	Success       bool              `json:"success"`
	Message       string            `json:"message"`
	Errors        map[string]string `json:"errors,omitempty"`
	RequiredRoles []string          `json:"required_roles,omitempty"`
	YourRole      string            `json:"your_role,omitempty"`
}

// MessageResponse ответ без данных
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Pagination параметры страницы в ответах со списками
type Pagination struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	LastPage int   `json:"last_page"`
}

func newPagination(total int64, page, perPage int) Pagination {
	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}
	return Pagination{Total: total, Page: page, PerPage: perPage, LastPage: lastPage}
}

// pageParams читает page и per_page из запроса
func pageParams(c *fiber.Ctx, defPerPage int) (int, int) {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page", strconv.Itoa(defPerPage)))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = defPerPage
	}
	return page, perPage
}

// paramID разбирает числовой параметр пути
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// actorOf строит Actor из пользователя, загруженного AuthMiddleware
func actorOf(c *fiber.Ctx) services.Actor {
	user := utils.CurrentUser(c)
	if user == nil {
		return services.Actor{}
	}
	return services.ActorFromUser(user)
}

// requestMeta данные запроса для журнала действий
func requestMeta(c *fiber.Ctx) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

func badRequest(c *fiber.Ctx) error {
	return c.Status(400).JSON(ErrorResponse{
		Success: false,
		Message: "Неверный формат данных",
	})
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(400).JSON(ErrorResponse{
		Success: false,
		Message: "Неверный ID",
	})
}

// respondError переводит ошибку сервиса в HTTP ответ
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	var authzErr *services.AuthorizationError
	var stateErr *services.InvalidStateError
	var txErr *services.TransactionError

	switch {
	case errors.As(err, &validationErr):
		return c.Status(422).JSON(ErrorResponse{
			Success: false,
			Message: "Ошибка валидации",
			Errors:  validationErr.Fields,
		})
	case errors.As(err, &authzErr):
		message := "Недостаточно прав"
		if authzErr.Reason != "" {
			message = authzErr.Reason
		}
		return c.Status(403).JSON(ErrorResponse{
			Success:       false,
			Message:       message,
			RequiredRoles: authzErr.RequiredRoles,
			YourRole:      authzErr.ActualRole,
		})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(404).JSON(ErrorResponse{
			Success: false,
			Message: "Не найдено",
		})
	case errors.As(err, &stateErr):
		return c.Status(400).JSON(ErrorResponse{
			Success: false,
			Message: stateErr.Reason,
		})
	case errors.As(err, &txErr):
		config.LogError(config.GetLogger(), "controllers", "respondError", txErr.Op, nil, txErr.Err)
		return c.Status(500).JSON(ErrorResponse{
			Success: false,
			Message: "Не удалось выполнить операцию",
		})
	}

	config.LogError(config.GetLogger(), "controllers", "respondError", c.Path(), nil, err)
	return c.Status(500).JSON(ErrorResponse{
		Success: false,
		Message: "Внутренняя ошибка сервера",
	})
}
