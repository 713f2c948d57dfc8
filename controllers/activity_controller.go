package controllers

import (
	"strconv"

	"autogas-backend/models"
	"autogas-backend/services"

	"github.com/gofiber/fiber/v2"
)

// ActivityController просмотр журнала действий
type ActivityController struct {
	activity *services.ActivityService
}

// NewActivityController создает новый экземпляр ActivityController
func NewActivityController(activity *services.ActivityService) *ActivityController {
	return &ActivityController{activity: activity}
}

// ActivitiesResponse структура ответа с журналом
type ActivitiesResponse struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Logs       []models.ActivityLog `json:"logs"`
	Pagination Pagination           `json:"pagination"`
}

// GetActivities возвращает журнал с фильтрами action и user_id
func (ac *ActivityController) GetActivities(c *fiber.Ctx) error {
	page, perPage := pageParams(c, 20)
	filter := services.ActivityFilter{
		Action:  c.Query("action"),
		Page:    page,
		PerPage: perPage,
	}
	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return respondError(c, services.NewValidationError("user_id", "numeric"))
		}
		userID := uint(id)
		filter.UserID = &userID
	}

	logs, total, err := ac.activity.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(ActivitiesResponse{
		Success:    true,
		Message:    "Журнал действий",
		Logs:       logs,
		Pagination: newPagination(total, page, perPage),
	})
}
