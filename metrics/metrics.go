package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Requests число HTTP запросов по маршруту и статусу
	Requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "autogas",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})

	// LatencyMS время обработки запроса в миллисекундах
	LatencyMS = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "autogas",
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	// OrdersPlaced число успешно оформленных заказов
	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "autogas",
		Name:      "orders_placed_total",
		Help:      "Total number of placed orders.",
	})

	// OrderStatusChanges число смен статуса заказа по новому статусу
	OrderStatusChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "autogas",
		Name:      "order_status_changes_total",
		Help:      "Total number of order status changes.",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(Requests, LatencyMS, OrdersPlaced, OrderStatusChanges)
}

// Middleware учитывает каждый запрос в счетчике и гистограмме
func Middleware(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	handler := c.Route().Path
	status := c.Response().StatusCode()
	if e, ok := err.(*fiber.Error); ok {
		status = e.Code
	}

	Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	return err
}

// Handler отдает метрики в формате Prometheus
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
