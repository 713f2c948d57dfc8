package controllers

import (
	"autogas-backend/models"
	"autogas-backend/services"

	"github.com/gofiber/fiber/v2"
)

// WishlistController контроллер избранного
type WishlistController struct {
	wishlist *services.WishlistService
}

// NewWishlistController создает новый экземпляр WishlistController
func NewWishlistController(wishlist *services.WishlistService) *WishlistController {
	return &WishlistController{wishlist: wishlist}
}

// WishlistResponse структура ответа со списком избранного
type WishlistResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Products []models.Product `json:"products"`
}

// WishlistRequest структура запроса добавления в избранное
type WishlistRequest struct {
	ProductID uint `json:"product_id"`
}

// GetWishlist возвращает товары из избранного
func (wc *WishlistController) GetWishlist(c *fiber.Ctx) error {
	products, err := wc.wishlist.List(c.UserContext(), actorOf(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(WishlistResponse{Success: true, Message: "Избранное", Products: products})
}

// AddToWishlist добавляет товар в избранное
func (wc *WishlistController) AddToWishlist(c *fiber.Ctx) error {
	var req WishlistRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	if err := wc.wishlist.Add(c.UserContext(), actorOf(c).UserID, req.ProductID); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(MessageResponse{Success: true, Message: "Товар добавлен в избранное"})
}

// RemoveFromWishlist убирает товар из избранного
func (wc *WishlistController) RemoveFromWishlist(c *fiber.Ctx) error {
	productID, ok := paramID(c, "product_id")
	if !ok {
		return invalidID(c)
	}

	if err := wc.wishlist.Remove(c.UserContext(), actorOf(c).UserID, productID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(MessageResponse{Success: true, Message: "Товар удален из избранного"})
}

// ClearWishlist очищает избранное
func (wc *WishlistController) ClearWishlist(c *fiber.Ctx) error {
	if err := wc.wishlist.Clear(c.UserContext(), actorOf(c).UserID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(MessageResponse{Success: true, Message: "Избранное очищено"})
}
