package main

import (
	"context"
	"log"
	"time"

	"autogas-backend/cache"
	"autogas-backend/config"
	"autogas-backend/controllers"
	"autogas-backend/events"
	"autogas-backend/metrics"
	"autogas-backend/models"
	"autogas-backend/routes"
	"autogas-backend/services"
	"autogas-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	logg := config.SetupLogger(cfg.LogLevel)

	// Инициализация базы данных
	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Автомиграция
	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Redis необязателен: без него кэш и блокировки отключены
	store, err := cache.New(context.Background(), cfg.RedisAddress)
	if err != nil {
		logg.WithError(err).Warn("Redis недоступен, кэш отключен")
		store = &cache.Store{}
	}
	defer store.Close()

	// Kafka необязательна: без брокеров журнал пишется только в базу
	publisher := events.NewPublisher(events.NewClient(cfg.KafkaBrokers), cfg.ActivityTopic)
	defer publisher.Close()

	app := newApp(cfg, db, store, publisher)

	logg.Infof("Server starting on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// newApp собирает сервисы, контроллеры и маршруты
func newApp(cfg config.Config, db *gorm.DB, store *cache.Store, publisher *events.Publisher) *fiber.App {
	utils.SetupJWT(cfg.JWTSecret, cfg.JWTTTL)
	utils.SetPhoneRegion(cfg.PhoneRegion)

	// Создание Fiber приложения
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
				"code":    code,
			})
		},
		BodyLimit: 10 * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(metrics.Middleware)

	// CORS настройки
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Инициализация сервисов
	activityService := services.NewActivityService(db, publisher)
	authService := services.NewAuthService(db, store, activityService)
	userService := services.NewUserService(db, activityService)
	productService := services.NewProductService(db, store, cfg.ProductCacheTTL, activityService)
	orderService := services.NewOrderService(db, activityService, services.OrderOptions{
		PriceSource:       cfg.OrderPriceSource,
		StrictTransitions: cfg.StrictOrderTransitions,
		PerPage:           cfg.OrdersPerPage,
	})
	dashboardService := services.NewDashboardService(db)
	spreadsheetService := services.NewSpreadsheetService(db, store, productService, orderService, activityService)

	auth := utils.AuthMiddleware(db, authService)

	// Инициализация контроллеров
	productController := controllers.NewProductController(productService, spreadsheetService)
	orderController := controllers.NewOrderController(orderService, spreadsheetService)
	panel := routes.PanelControllers{
		Dashboard: controllers.NewDashboardController(dashboardService),
		Staff:     controllers.NewStaffController(userService),
		Activity:  controllers.NewActivityController(activityService),
		Products:  productController,
		Orders:    orderController,
	}

	// Настройка маршрутов
	routes.SetupAuthRoutes(app, controllers.NewAuthController(authService), auth)
	routes.SetupUserRoutes(app, controllers.NewUserController(userService, orderService), auth)
	routes.SetupProductRoutes(app, productController, controllers.NewReviewController(services.NewReviewService(db)), auth)
	routes.SetupCartRoutes(app, controllers.NewCartController(services.NewCartService(db)), controllers.NewWishlistController(services.NewWishlistService(db)), auth)
	routes.SetupOrderRoutes(app, orderController, auth)
	routes.SetupOwnerRoutes(app, panel, auth)
	routes.SetupAdminRoutes(app, panel, auth)
	routes.SetupKontragentRoutes(app, panel, auth)

	// Метрики Prometheus
	app.Get("/metrics", metrics.Handler())

	// Общий health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"message":   "Autogas Backend is running",
			"timestamp": time.Now().Unix(),
		})
	})

	return app
}
