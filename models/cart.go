package models

import "time"

// CartItem позиция корзины пользователя (уникальна по паре user_id, product_id)
type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_cart_user_product,priority:1"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_cart_user_product,priority:2"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Связи
	Product Product `json:"product" gorm:"foreignKey:ProductID"`
}

// WishlistItem товар в списке избранного
type WishlistItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_wishlist_user_product,priority:1"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_wishlist_user_product,priority:2"`
	CreatedAt time.Time `json:"created_at"`

	// Связи
	Product Product `json:"product" gorm:"foreignKey:ProductID"`
}
