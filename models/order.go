package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы заказа
const (
	OrderStatusNew        = "new"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// OrderStatuses все допустимые статусы в порядке жизненного цикла
var OrderStatuses = []string{
	OrderStatusNew,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// RevenueStatuses статусы, заказы в которых учитываются в выручке.
// Используется во всех агрегатах без исключений.
var RevenueStatuses = []string{
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// TerminalStatuses статусы, из которых заказ нельзя отменить
var TerminalStatuses = []string{
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Order представляет заказ покупателя
type Order struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	UserID        uint            `json:"user_id" gorm:"not null;index"`
	CustomerName  string          `json:"customer_name" gorm:"not null;size:255"`
	CustomerPhone string          `json:"customer_phone" gorm:"not null;size:20"`
	Address       string          `json:"address" gorm:"type:text;not null"`
	Region        string          `json:"region" gorm:"not null;size:100;index"`
	TotalPrice    decimal.Decimal `json:"total_price" gorm:"type:decimal(10,2);not null"`
	Status        string          `json:"status" gorm:"not null;size:20;default:'new';index"`
	Notes         string          `json:"notes" gorm:"type:text"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Связи
	User  *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
}

// OrderItem позиция заказа; цена фиксируется на момент оформления
type OrderItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   uint            `json:"order_id" gorm:"not null;index"`
	ProductID uint            `json:"product_id" gorm:"not null;index"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time       `json:"created_at"`

	// Связи
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// IsValidOrderStatus проверяет, является ли статус допустимым
func IsValidOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminalStatus проверяет, является ли статус конечным
func IsTerminalStatus(status string) bool {
	for _, s := range TerminalStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// StatusRank порядковый номер статуса в прямом направлении жизненного цикла.
// Для cancelled возвращает -1.
func StatusRank(status string) int {
	switch status {
	case OrderStatusNew:
		return 0
	case OrderStatusProcessing:
		return 1
	case OrderStatusShipped:
		return 2
	case OrderStatusDelivered:
		return 3
	}
	return -1
}
