package routes

import (
	"autogas-backend/controllers"
	"autogas-backend/models"
	"autogas-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// PanelControllers контроллеры панелей владельца, администратора и контрагента
type PanelControllers struct {
	Dashboard *controllers.DashboardController
	Staff     *controllers.StaffController
	Activity  *controllers.ActivityController
	Products  *controllers.ProductController
	Orders    *controllers.OrderController
}

// SetupOwnerRoutes настраивает маршруты владельца
func SetupOwnerRoutes(app *fiber.App, pc PanelControllers, auth fiber.Handler) {
	owner := app.Group("/api/owner", auth, utils.RequireRoles(models.RoleOwner))

	// Администраторы
	owner.Get("/admins", pc.Dashboard.GetAdmins)
	owner.Post("/admins", pc.Staff.CreateAdmin)
	owner.Put("/admins/:id", pc.Staff.UpdateAdmin)
	owner.Put("/admins/:id/toggle", pc.Staff.ToggleAdmin)
	owner.Delete("/admins/:id", pc.Staff.DeleteAdmin)

	// Контрагенты
	owner.Get("/kontragents", pc.Dashboard.GetKontragents)
	owner.Get("/kontragents/:id/sales", pc.Dashboard.GetKontragentSales)

	// GET /api/owner/dashboard - сводка по всему магазину
	owner.Get("/dashboard", pc.Dashboard.GetDashboard)

	// GET /api/owner/activities - журнал действий
	owner.Get("/activities", pc.Activity.GetActivities)
}

// SetupAdminRoutes настраивает маршруты панели администратора (владелец и администратор)
func SetupAdminRoutes(app *fiber.App, pc PanelControllers, auth fiber.Handler) {
	admin := app.Group("/api/admin", auth, utils.RequireRoles(models.RoleOwner, models.RoleAdmin))

	// Контрагенты
	admin.Get("/kontragents", pc.Dashboard.GetKontragents)
	admin.Post("/kontragents", pc.Staff.CreateKontragent)
	admin.Put("/kontragents/:id", pc.Staff.UpdateKontragent)
	admin.Put("/kontragents/:id/toggle", pc.Staff.ToggleKontragent)
	admin.Get("/kontragents/:id/sales", pc.Dashboard.GetKontragentSales)

	// GET /api/admin/dashboard - сводка с учетом региона
	admin.Get("/dashboard", pc.Dashboard.GetDashboard)

	// Товары
	admin.Post("/products", pc.Products.CreateProduct)
	admin.Post("/products/import", pc.Products.ImportProducts)
	admin.Put("/products/:id", pc.Products.UpdateProduct)
	admin.Delete("/products/:id", pc.Products.DeleteProduct)

	// Заказы
	admin.Get("/orders", pc.Orders.ListOrders)
	admin.Get("/orders/export", pc.Orders.ExportOrders)
	admin.Put("/orders/:id/status", pc.Orders.UpdateStatus)
}

// SetupKontragentRoutes настраивает маршруты кабинета контрагента
func SetupKontragentRoutes(app *fiber.App, pc PanelControllers, auth fiber.Handler) {
	kontragent := app.Group("/api/kontragent", auth, utils.RequireRoles(models.RoleKontragent))

	// GET /api/kontragent/dashboard - сводка по региону
	kontragent.Get("/dashboard", pc.Dashboard.GetDashboard)

	// GET /api/kontragent/sales - заказы региона
	kontragent.Get("/sales", pc.Dashboard.GetMySales)

	// POST /api/kontragent/products - товар на склад
	kontragent.Post("/products", pc.Products.AddToWarehouse)
}
