package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Статусы наличия товара
const (
	StockInStock    = "in_stock"
	StockLowStock   = "low_stock"
	StockOutOfStock = "out_of_stock"
)

// LowStockThreshold верхняя граница количества для статуса low_stock
const LowStockThreshold = 10

// Product представляет товар каталога
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"not null;size:255;index"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;default:0"`
	Category    string          `json:"category" gorm:"size:255;index"`
	Description string          `json:"description" gorm:"type:text"`
	ImageURL    string          `json:"image_url" gorm:"size:500"`
	StockStatus string          `json:"stock_status" gorm:"size:20;not null;default:'out_of_stock'"`
	Quantity    int             `json:"quantity" gorm:"not null;default:0"`
	SellerID    *uint           `json:"seller_id" gorm:"index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Связи
	Seller *User `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}

// StockStatusFor вычисляет статус наличия по количеству
func StockStatusFor(quantity int) string {
	switch {
	case quantity <= 0:
		return StockOutOfStock
	case quantity <= LowStockThreshold:
		return StockLowStock
	default:
		return StockInStock
	}
}

// BeforeSave пересчитывает статус наличия при каждой записи товара
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.StockStatus = StockStatusFor(p.Quantity)
	return nil
}
