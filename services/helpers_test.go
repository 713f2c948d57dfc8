package services

import (
	"context"
	"testing"

	"autogas-backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ctx = context.Background()

// setupServiceDB создает базу в памяти со схемой магазина
func setupServiceDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func newUser(t *testing.T, db *gorm.DB, email, role, region string) models.User {
	user := models.User{Name: email, Email: email, PasswordHash: "hash", Role: role, IsActive: true}
	if region != "" {
		user.Region = &region
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func newProduct(t *testing.T, db *gorm.DB, name, price string, quantity int) models.Product {
	product := models.Product{Name: name, Price: decimal.RequireFromString(price), Quantity: quantity}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func newOrder(t *testing.T, db *gorm.DB, userID uint, region, status, total string) models.Order {
	order := models.Order{
		UserID:        userID,
		CustomerName:  "Покупатель",
		CustomerPhone: "+998901234567",
		Address:       "Адрес",
		Region:        region,
		Status:        status,
		TotalPrice:    decimal.RequireFromString(total),
	}
	require.NoError(t, db.Omit("Items", "User").Create(&order).Error)
	return order
}

func actorOf(u models.User) Actor {
	return ActorFromUser(&u)
}

func countRows(db *gorm.DB, model interface{}) int64 {
	var n int64
	db.Model(model).Count(&n)
	return n
}
