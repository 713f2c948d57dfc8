package services

import (
	"context"
	"errors"

	"autogas-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartLine позиция корзины с суммой
type CartLine struct {
	ID         uint            `json:"id"`
	ProductID  uint            `json:"product_id"`
	Product    models.Product  `json:"product"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// CartView содержимое корзины
type CartView struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// CartService корзина покупателя
type CartService struct {
	db *gorm.DB
}

// NewCartService создает сервис корзины
func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// View возвращает корзину с суммами по позициям и итогом
func (s *CartService) View(ctx context.Context, userID uint) (*CartView, error) {
	var items []models.CartItem
	if err := s.db.WithContext(ctx).Preload("Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	view := &CartView{Items: make([]CartLine, 0, len(items)), Total: decimal.Zero}
	for _, item := range items {
		lineTotal := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		view.Items = append(view.Items, CartLine{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Product:    item.Product,
			Quantity:   item.Quantity,
			TotalPrice: lineTotal,
		})
		view.Total = view.Total.Add(lineTotal)
	}

	return view, nil
}

// Add добавляет товар или увеличивает количество одним атомарным upsert
func (s *CartService) Add(ctx context.Context, userID, productID uint, quantity int) (*CartView, error) {
	if productID == 0 {
		return nil, NewValidationError("product_id", "required")
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, NewValidationError("quantity", "min=1")
	}

	var product models.Product
	err := s.db.WithContext(ctx).Select("id", "quantity", "stock_status").First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewValidationError("product_id", "exists")
	}
	if err != nil {
		return nil, err
	}
	if product.StockStatus == models.StockOutOfStock {
		return nil, &InvalidStateError{Reason: "товара нет в наличии"}
	}

	item := models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Omit("Product").Create(&item).Error
	if err != nil {
		return nil, &TransactionError{Op: "add_to_cart", Err: err}
	}

	return s.View(ctx, userID)
}

// SetQuantity задает количество товара в корзине
func (s *CartService) SetQuantity(ctx context.Context, userID, productID uint, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, NewValidationError("quantity", "min=1")
	}

	res := s.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, notFound("cart item")
	}

	return s.View(ctx, userID)
}

// Remove убирает товар из корзины
func (s *CartService) Remove(ctx context.Context, userID, productID uint) (*CartView, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, notFound("cart item")
	}

	return s.View(ctx, userID)
}

// Clear очищает корзину
func (s *CartService) Clear(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
