package models

import "time"

// Review отзыв пользователя о товаре (один на пару user_id, product_id)
type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_review_user_product,priority:1"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_review_user_product,priority:2;index"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Связи
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
