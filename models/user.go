package models

import (
	"time"

	"autogas-backend/config"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Роли пользователей
const (
	RoleOwner      = "owner"
	RoleAdmin      = "admin"
	RoleKontragent = "kontragent"
	RoleCustomer   = "customer"
)

// User представляет модель пользователя в системе
type User struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	Name              string          `json:"name" gorm:"not null;size:255"`
	Email             string          `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Phone             string          `json:"phone" gorm:"size:20;default:''"`
	PasswordHash      string          `json:"-" gorm:"not null"` // Скрываем хэш пароля в JSON
	Role              string          `json:"role" gorm:"not null;size:20;default:'customer';index"`
	Region            *string         `json:"region" gorm:"size:100;index"`
	ManagedBy         *uint           `json:"managed_by"` // Админ, создавший контрагента
	IsActive          bool            `json:"is_active" gorm:"default:true"`
	Balance           decimal.Decimal `json:"balance" gorm:"type:decimal(12,2);default:0"`
	WarehouseAddress  *string         `json:"warehouse_address" gorm:"size:500"`
	WarehouseCapacity int             `json:"warehouse_capacity" gorm:"default:0"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// Связи
	Manager *User `json:"manager,omitempty" gorm:"foreignKey:ManagedBy"`
}

// IsValidRole проверяет, что роль входит в перечень
func IsValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleKontragent, RoleCustomer:
		return true
	}
	return false
}

// HasRole проверяет, входит ли роль пользователя в список
func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// RegionName возвращает регион или пустую строку
func (u *User) RegionName() string {
	if u.Region == nil {
		return ""
	}
	return *u.Region
}

// InitDB инициализирует подключение к базе данных
func InitDB(cfg config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	if cfg.DatabaseURL != "" {
		// Используем PostgreSQL для продакшена
		return gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
	}

	// Используем SQLite для разработки
	return gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
}

// AutoMigrate создает и обновляет схему всех моделей магазина
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Product{},
		&CartItem{},
		&WishlistItem{},
		&Order{},
		&OrderItem{},
		&Review{},
		&ActivityLog{},
		&RevokedToken{},
	)
}
