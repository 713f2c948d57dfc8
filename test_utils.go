package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"autogas-backend/cache"
	"autogas-backend/config"
	"autogas-backend/models"
	"autogas-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB создает тестовую базу данных в памяти
func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		panic(err)
	}

	// Одно соединение: у каждого соединения :memory: своя база
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := models.AutoMigrate(db); err != nil {
		panic(err)
	}
	return db
}

// testConfig конфигурация без Redis и Kafka
func testConfig() config.Config {
	return config.Config{
		Port:             "0",
		CORSOrigins:      "http://localhost:3000",
		LogLevel:         "error",
		JWTSecret:        utils.DefaultJWTSecret,
		JWTTTL:           time.Hour,
		ProductCacheTTL:  time.Minute,
		ActivityTopic:    "activity-log",
		OrderPriceSource: config.PriceSourceClient,
		OrdersPerPage:    20,
		PhoneRegion:      "UZ",
	}
}

// setupTestApp собирает приложение поверх тестовой базы
func setupTestApp(db *gorm.DB) *fiber.App {
	return newApp(testConfig(), db, &cache.Store{}, nil)
}

// createTestUser создает пользователя с указанной ролью; пароль password123
func createTestUser(db *gorm.DB, name, email, role, region string) models.User {
	hash, _ := utils.HashPassword("password123")
	user := models.User{
		Name:         name,
		Email:        email,
		Phone:        "+998901234567",
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if region != "" {
		user.Region = &region
	}
	db.Create(&user)
	return user
}

// createTestProduct создает товар в каталоге
func createTestProduct(db *gorm.DB, name, price string, quantity int, sellerID *uint) models.Product {
	product := models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: "Баллоны",
		Quantity: quantity,
		SellerID: sellerID,
	}
	db.Create(&product)
	return product
}

// createTestOrder создает заказ напрямую, минуя сервис
func createTestOrder(db *gorm.DB, userID uint, region, status, total string) models.Order {
	order := models.Order{
		UserID:        userID,
		CustomerName:  "Покупатель",
		CustomerPhone: "+998901234567",
		Address:       "ул. Навои, 1",
		Region:        region,
		Status:        status,
		TotalPrice:    decimal.RequireFromString(total),
	}
	db.Omit("Items", "User").Create(&order)
	return order
}

// generateTestJWT создает тестовый JWT токен для пользователя
func generateTestJWT(user models.User) string {
	token, _ := utils.GenerateJWT(user.ID, user.Email, user.Role)
	return token
}

// newJSONRequest создает запрос с JSON телом и токеном
func newJSONRequest(method, path, token string, body interface{}) *http.Request {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}
