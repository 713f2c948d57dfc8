package controllers

import (
	"autogas-backend/services"

	"github.com/gofiber/fiber/v2"
)

// DashboardController контроллер статистики и реестров
type DashboardController struct {
	dashboard *services.DashboardService
}

// NewDashboardController создает новый экземпляр DashboardController
func NewDashboardController(dashboard *services.DashboardService) *DashboardController {
	return &DashboardController{dashboard: dashboard}
}

// DashboardResponse структура ответа со сводкой
type DashboardResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Stats   interface{} `json:"stats"`
}

// GetDashboard возвращает сводку в зависимости от роли
func (dc *DashboardController) GetDashboard(c *fiber.Ctx) error {
	stats, err := dc.dashboard.Dashboard(c.UserContext(), actorOf(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(DashboardResponse{
		Success: true,
		Message: "Статистика",
		Stats:   stats,
	})
}

// GetKontragents возвращает реестр контрагентов
func (dc *DashboardController) GetKontragents(c *fiber.Ctx) error {
	kontragents, err := dc.dashboard.ListKontragents(c.UserContext(), actorOf(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Список контрагентов",
		"kontragents": kontragents,
	})
}

// GetKontragentSales возвращает заказы региона контрагента
func (dc *DashboardController) GetKontragentSales(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	report, err := dc.dashboard.KontragentSales(c.UserContext(), actorOf(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Продажи контрагента",
		"report":  report,
	})
}

// GetAdmins возвращает реестр администраторов
func (dc *DashboardController) GetAdmins(c *fiber.Ctx) error {
	admins, err := dc.dashboard.ListAdmins(c.UserContext(), actorOf(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Список администраторов",
		"admins":  admins,
	})
}

// GetMySales возвращает заказы региона текущего контрагента
func (dc *DashboardController) GetMySales(c *fiber.Ctx) error {
	orders, err := dc.dashboard.RegionSales(c.UserContext(), actorOf(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Заказы региона",
		"orders":  orders,
	})
}

