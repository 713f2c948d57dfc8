package controllers

import (
	"autogas-backend/models"
	"autogas-backend/services"

	"github.com/gofiber/fiber/v2"
)

// ReviewController контроллер отзывов
type ReviewController struct {
	reviews *services.ReviewService
}

// NewReviewController создает новый экземпляр ReviewController
func NewReviewController(reviews *services.ReviewService) *ReviewController {
	return &ReviewController{reviews: reviews}
}

// ReviewResponse структура ответа с отзывом
type ReviewResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Review  *models.Review `json:"review,omitempty"`
}

// ReviewsResponse структура ответа со списком отзывов
type ReviewsResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Reviews    []models.Review `json:"reviews"`
	Pagination Pagination      `json:"pagination"`
}

// GetProductReviews возвращает отзывы товара
func (rc *ReviewController) GetProductReviews(c *fiber.Ctx) error {
	productID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	page, perPage := pageParams(c, 10)

	reviews, total, err := rc.reviews.ListForProduct(c.UserContext(), productID, page, perPage)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(ReviewsResponse{
		Success:    true,
		Message:    "Отзывы товара",
		Reviews:    reviews,
		Pagination: newPagination(total, page, perPage),
	})
}

// CreateReview добавляет отзыв о товаре
func (rc *ReviewController) CreateReview(c *fiber.Ctx) error {
	productID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req services.ReviewInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	review, err := rc.reviews.Create(c.UserContext(), actorOf(c), productID, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(ReviewResponse{
		Success: true,
		Message: "Отзыв успешно добавлен",
		Review:  review,
	})
}

// UpdateReview изменяет собственный отзыв
func (rc *ReviewController) UpdateReview(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req services.ReviewUpdate
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	review, err := rc.reviews.Update(c.UserContext(), actorOf(c), id, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(ReviewResponse{
		Success: true,
		Message: "Отзыв обновлен",
		Review:  review,
	})
}

// DeleteReview удаляет отзыв
func (rc *ReviewController) DeleteReview(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	if err := rc.reviews.Delete(c.UserContext(), actorOf(c), id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(MessageResponse{
		Success: true,
		Message: "Отзыв удален",
	})
}
