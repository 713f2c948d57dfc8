package services

import (
	"context"
	"errors"

	"autogas-backend/models"
	"autogas-backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewInput данные отзыва
type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// ReviewUpdate частичное обновление отзыва
type ReviewUpdate struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}

// ReviewService отзывы о товарах
type ReviewService struct {
	db *gorm.DB
}

// NewReviewService создает сервис отзывов
func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

func (s *ReviewService) productExists(ctx context.Context, productID uint) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", productID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return notFound("product")
	}
	return nil
}

// ListForProduct возвращает отзывы товара, новые первыми
func (s *ReviewService) ListForProduct(ctx context.Context, productID uint, page, perPage int) ([]models.Review, int64, error) {
	if err := s.productExists(ctx, productID); err != nil {
		return nil, 0, err
	}
	page, perPage = pageBounds(page, perPage, 10)

	query := s.db.WithContext(ctx).Model(&models.Review{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	err := query.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name")
	}).Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&reviews).Error
	return reviews, total, err
}

// Create добавляет отзыв; один пользователь оставляет не больше одного отзыва на товар
func (s *ReviewService) Create(ctx context.Context, actor Actor, productID uint, input ReviewInput) (*models.Review, error) {
	if err := s.productExists(ctx, productID); err != nil {
		return nil, err
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	review := models.Review{
		UserID:    actor.UserID,
		ProductID: productID,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Omit("User").Create(&review)
	if res.Error != nil {
		return nil, &TransactionError{Op: "create_review", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return nil, &InvalidStateError{Reason: "вы уже оставили отзыв на этот товар"}
	}

	if err := s.db.WithContext(ctx).Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name")
	}).First(&review, review.ID).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *ReviewService) find(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).First(&review, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("review")
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Update изменяет собственный отзыв
func (s *ReviewService) Update(ctx context.Context, actor Actor, id uint, input ReviewUpdate) (*models.Review, error) {
	review, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != actor.UserID {
		return nil, &AuthorizationError{ActualRole: actor.Role, Reason: "можно редактировать только свой отзыв"}
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	if input.Rating != nil {
		review.Rating = *input.Rating
	}
	if input.Comment != nil {
		review.Comment = *input.Comment
	}
	if err := s.db.WithContext(ctx).Save(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// Delete удаляет отзыв автора; владелец и администратор могут удалить любой
func (s *ReviewService) Delete(ctx context.Context, actor Actor, id uint) error {
	review, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if review.UserID != actor.UserID && !actor.IsPrivileged() {
		return &AuthorizationError{
			RequiredRoles: []string{models.RoleOwner, models.RoleAdmin},
			ActualRole:    actor.Role,
			Reason:        "можно удалить только свой отзыв",
		}
	}
	return s.db.WithContext(ctx).Delete(&models.Review{}, id).Error
}
