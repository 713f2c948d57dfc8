package controllers

import (
	"autogas-backend/models"
	"autogas-backend/services"

	"github.com/gofiber/fiber/v2"
)

// ProductController контроллер каталога товаров
type ProductController struct {
	products *services.ProductService
	sheets   *services.SpreadsheetService
}

// NewProductController создает новый экземпляр ProductController
func NewProductController(products *services.ProductService, sheets *services.SpreadsheetService) *ProductController {
	return &ProductController{products: products, sheets: sheets}
}

// ProductResponse структура ответа с товаром
type ProductResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Product *models.Product `json:"product,omitempty"`
}

// ProductsResponse структура ответа со списком товаров
type ProductsResponse struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Products   []models.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

// ImportResponse структура ответа импорта
type ImportResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Result  *services.ImportResult `json:"result,omitempty"`
}

// GetProducts возвращает страницу каталога с фильтром и поиском
func (pc *ProductController) GetProducts(c *fiber.Ctx) error {
	page, perPage := pageParams(c, 15)
	filter := services.ProductFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Page:     page,
		PerPage:  perPage,
	}

	products, total, err := pc.products.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(ProductsResponse{
		Success:    true,
		Message:    "Список товаров",
		Products:   products,
		Pagination: newPagination(total, page, perPage),
	})
}

// GetProduct возвращает товар по ID
func (pc *ProductController) GetProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	product, err := pc.products.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(ProductResponse{
		Success: true,
		Message: "Товар получен",
		Product: product,
	})
}

// CreateProduct создает товар
func (pc *ProductController) CreateProduct(c *fiber.Ctx) error {
	var req services.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	product, err := pc.products.Create(c.UserContext(), actorOf(c), req, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(ProductResponse{
		Success: true,
		Message: "Товар успешно создан",
		Product: product,
	})
}

// AddToWarehouse добавляет товар контрагента на его склад
func (pc *ProductController) AddToWarehouse(c *fiber.Ctx) error {
	var req services.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	product, err := pc.products.AddToWarehouse(c.UserContext(), actorOf(c), req, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(ProductResponse{
		Success: true,
		Message: "Товар успешно добавлен",
		Product: product,
	})
}

// UpdateProduct обновляет товар
func (pc *ProductController) UpdateProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req services.ProductUpdate
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	product, err := pc.products.Update(c.UserContext(), actorOf(c), id, req, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(ProductResponse{
		Success: true,
		Message: "Товар успешно обновлен",
		Product: product,
	})
}

// DeleteProduct удаляет товар
func (pc *ProductController) DeleteProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	if err := pc.products.Delete(c.UserContext(), actorOf(c), id, requestMeta(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(MessageResponse{
		Success: true,
		Message: "Товар успешно удален",
	})
}

// ImportProducts загружает товары из xlsx файла (поле file)
func (pc *ProductController) ImportProducts(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return respondError(c, services.NewValidationError("file", "required"))
	}

	file, err := header.Open()
	if err != nil {
		return badRequest(c)
	}
	defer file.Close()

	result, err := pc.sheets.ImportProducts(c.UserContext(), actorOf(c), file, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(ImportResponse{
		Success: true,
		Message: "Импорт завершен",
		Result:  result,
	})
}
