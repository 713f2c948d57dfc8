package controllers

import (
	"autogas-backend/services"

	"github.com/gofiber/fiber/v2"
)

// CartController контроллер корзины
type CartController struct {
	cart *services.CartService
}

// NewCartController создает новый экземпляр CartController
func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

// CartResponse структура ответа с корзиной
type CartResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	*services.CartView
}

// AddToCartRequest структура запроса добавления в корзину
type AddToCartRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// SetQuantityRequest структура запроса изменения количества
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (cc *CartController) respondCart(c *fiber.Ctx, message string, view *services.CartView) error {
	return c.JSON(CartResponse{Success: true, Message: message, CartView: view})
}

// GetCart возвращает корзину текущего пользователя
func (cc *CartController) GetCart(c *fiber.Ctx) error {
	view, err := cc.cart.View(c.UserContext(), actorOf(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return cc.respondCart(c, "Корзина", view)
}

// AddToCart добавляет товар в корзину
func (cc *CartController) AddToCart(c *fiber.Ctx) error {
	var req AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	view, err := cc.cart.Add(c.UserContext(), actorOf(c).UserID, req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return cc.respondCart(c, "Товар добавлен в корзину", view)
}

// UpdateCartItem задает количество товара
func (cc *CartController) UpdateCartItem(c *fiber.Ctx) error {
	productID, ok := paramID(c, "product_id")
	if !ok {
		return invalidID(c)
	}

	var req SetQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	view, err := cc.cart.SetQuantity(c.UserContext(), actorOf(c).UserID, productID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return cc.respondCart(c, "Корзина обновлена", view)
}

// RemoveCartItem убирает товар из корзины
func (cc *CartController) RemoveCartItem(c *fiber.Ctx) error {
	productID, ok := paramID(c, "product_id")
	if !ok {
		return invalidID(c)
	}

	view, err := cc.cart.Remove(c.UserContext(), actorOf(c).UserID, productID)
	if err != nil {
		return respondError(c, err)
	}
	return cc.respondCart(c, "Товар удален из корзины", view)
}

// ClearCart очищает корзину
func (cc *CartController) ClearCart(c *fiber.Ctx) error {
	if err := cc.cart.Clear(c.UserContext(), actorOf(c).UserID); err != nil {
		return respondError(c, err)
	}
	return cc.respondCart(c, "Корзина очищена", &services.CartView{Items: []services.CartLine{}})
}
