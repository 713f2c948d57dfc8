package services

import (
	"context"
	"errors"

	"autogas-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WishlistService список избранных товаров
type WishlistService struct {
	db *gorm.DB
}

// NewWishlistService создает сервис избранного
func NewWishlistService(db *gorm.DB) *WishlistService {
	return &WishlistService{db: db}
}

// List возвращает товары из избранного
func (s *WishlistService) List(ctx context.Context, userID uint) ([]models.Product, error) {
	var items []models.WishlistItem
	if err := s.db.WithContext(ctx).Preload("Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(items))
	for _, item := range items {
		products = append(products, item.Product)
	}
	return products, nil
}

// Add добавляет товар; повторное добавление возвращает InvalidStateError
func (s *WishlistService) Add(ctx context.Context, userID, productID uint) error {
	if productID == 0 {
		return NewValidationError("product_id", "required")
	}

	var product models.Product
	err := s.db.WithContext(ctx).Select("id").First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewValidationError("product_id", "exists")
	}
	if err != nil {
		return err
	}

	item := models.WishlistItem{UserID: userID, ProductID: productID}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Omit("Product").Create(&item)
	if res.Error != nil {
		return &TransactionError{Op: "add_to_wishlist", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &InvalidStateError{Reason: "товар уже в избранном"}
	}
	return nil
}

// Remove убирает товар из избранного
func (s *WishlistService) Remove(ctx context.Context, userID, productID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("wishlist item")
	}
	return nil
}

// Clear очищает избранное
func (s *WishlistService) Clear(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.WishlistItem{}).Error
}
