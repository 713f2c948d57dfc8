package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Источник цены позиции при оформлении заказа
const (
	PriceSourceClient  = "client"
	PriceSourceCatalog = "catalog"
)

// Config содержит настройки приложения
type Config struct {
	Port        string
	DatabaseURL string // PostgreSQL, если задан
	SQLitePath  string // используется, когда DATABASE_URL пуст
	CORSOrigins string
	LogLevel    string

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddress    string
	ProductCacheTTL time.Duration

	KafkaBrokers  string
	ActivityTopic string

	OrderPriceSource       string
	StrictOrderTransitions bool
	OrdersPerPage          int
	PhoneRegion            string
}

// Load читает .env (если есть) и переменные окружения
func Load() Config {
	// Ошибку игнорируем: .env есть только при локальной разработке
	_ = godotenv.Load()

	cfg := Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:  getenv("SQLITE_PATH", "autogas.db"),
		CORSOrigins: getenv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5500,http://127.0.0.1:5500"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		JWTSecret: getenv("JWT_SECRET", "autogas-secret-key-change-in-production"),
		JWTTTL:    time.Duration(getenvInt("JWT_TTL_HOURS", 24)) * time.Hour,

		RedisAddress:    strings.TrimSpace(os.Getenv("REDIS_ADDRESS")),
		ProductCacheTTL: time.Duration(getenvInt("PRODUCT_CACHE_TTL_SECONDS", 300)) * time.Second,

		KafkaBrokers:  strings.TrimSpace(os.Getenv("KAFKA_BROKERS")),
		ActivityTopic: getenv("ACTIVITY_TOPIC", "activity-log"),

		OrderPriceSource:       strings.ToLower(getenv("ORDER_PRICE_SOURCE", PriceSourceClient)),
		StrictOrderTransitions: getenvBool("STRICT_ORDER_TRANSITIONS", false),
		OrdersPerPage:          getenvInt("ORDERS_PER_PAGE", 20),
		PhoneRegion:            getenv("PHONE_REGION", "UZ"),
	}

	if cfg.OrderPriceSource != PriceSourceCatalog {
		cfg.OrderPriceSource = PriceSourceClient
	}
	if cfg.OrdersPerPage < 1 || cfg.OrdersPerPage > 100 {
		cfg.OrdersPerPage = 20
	}

	return cfg
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v, err := strconv.Atoi(getenv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getenvBool(key string, def bool) bool {
	switch strings.ToLower(getenv(key, "")) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return def
}
