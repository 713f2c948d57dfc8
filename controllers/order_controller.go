package controllers

import (
	"fmt"
	"time"

	"autogas-backend/models"
	"autogas-backend/services"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// OrderController контроллер заказов
type OrderController struct {
	orders *services.OrderService
	sheets *services.SpreadsheetService
}

// NewOrderController создает новый экземпляр OrderController
func NewOrderController(orders *services.OrderService, sheets *services.SpreadsheetService) *OrderController {
	return &OrderController{orders: orders, sheets: sheets}
}

// OrderResponse структура ответа с заказом
type OrderResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Order   *models.Order `json:"order,omitempty"`
}

// UpdateStatusRequest структура запроса смены статуса
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Force  bool   `json:"force"`
}

// PlaceOrder оформляет заказ из переданных позиций
func (oc *OrderController) PlaceOrder(c *fiber.Ctx) error {
	var req services.PlaceOrderInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	order, err := oc.orders.PlaceOrder(c.UserContext(), actorOf(c), req, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(OrderResponse{
		Success: true,
		Message: "Заказ успешно оформлен",
		Order:   order,
	})
}

// GetOrder возвращает заказ по ID
func (oc *OrderController) GetOrder(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	order, err := oc.orders.GetOrder(c.UserContext(), actorOf(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(OrderResponse{
		Success: true,
		Message: "Заказ получен",
		Order:   order,
	})
}

// CancelOrder отменяет собственный заказ
func (oc *OrderController) CancelOrder(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	order, err := oc.orders.CancelOrder(c.UserContext(), actorOf(c), id, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(OrderResponse{
		Success: true,
		Message: "Заказ отменен",
		Order:   order,
	})
}

// UpdateStatus меняет статус заказа
func (oc *OrderController) UpdateStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	order, err := oc.orders.UpdateStatus(c.UserContext(), actorOf(c), id, req.Status, req.Force, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(OrderResponse{
		Success: true,
		Message: "Статус заказа обновлен",
		Order:   order,
	})
}

// orderFilter разбирает параметры запроса и ограничивает их областью пользователя
func orderFilter(c *fiber.Ctx, defPerPage int) (services.OrderFilter, error) {
	page, perPage := pageParams(c, defPerPage)
	filter := services.OrderFilter{
		Status:  c.Query("status"),
		Page:    page,
		PerPage: perPage,
	}

	if filter.Status != "" && !models.IsValidOrderStatus(filter.Status) {
		return filter, services.NewValidationError("status", "oneof=new processing shipped delivered cancelled")
	}
	if region := c.Query("region"); region != "" {
		filter.Region = &region
	}
	if v := c.Query("start_date"); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			return filter, services.NewValidationError("start_date", "date")
		}
		filter.From = &from
	}
	if v := c.Query("end_date"); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			return filter, services.NewValidationError("end_date", "date")
		}
		// end_date включает весь день
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}

	return services.ScopeOrderFilter(actorOf(c), filter)
}

// ListOrders возвращает заказы для панели управления
func (oc *OrderController) ListOrders(c *fiber.Ctx) error {
	filter, err := orderFilter(c, 20)
	if err != nil {
		return respondError(c, err)
	}

	orders, total, err := oc.orders.ListOrders(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(OrdersResponse{
		Success:    true,
		Message:    "Список заказов",
		Orders:     orders,
		Pagination: newPagination(total, filter.Page, filter.PerPage),
	})
}

// ExportOrders выгружает заказы в xlsx
func (oc *OrderController) ExportOrders(c *fiber.Ctx) error {
	filter, err := orderFilter(c, 20)
	if err != nil {
		return respondError(c, err)
	}

	buf, err := oc.sheets.ExportOrders(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}

	filename := fmt.Sprintf("orders_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+filename)
	return c.Send(buf.Bytes())
}
