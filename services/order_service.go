package services

import (
	"context"
	"errors"
	"fmt"

	"autogas-backend/config"
	"autogas-backend/metrics"
	"autogas-backend/models"
	"autogas-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderOptions настройки движка заказов
type OrderOptions struct {
	PriceSource       string
	StrictTransitions bool
	PerPage           int
}

// OrderItemInput позиция в запросе на оформление заказа
type OrderItemInput struct {
	ProductID uint            `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"min=1"`
	Price     decimal.Decimal `json:"price"`
}

// PlaceOrderInput данные для оформления заказа
type PlaceOrderInput struct {
	CustomerName  string           `json:"customer_name" validate:"required,max=255"`
	CustomerPhone string           `json:"customer_phone" validate:"required,max=20"`
	Address       string           `json:"address" validate:"required"`
	Region        string           `json:"region" validate:"required,max=100"`
	Notes         string           `json:"notes"`
	Items         []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// OrderService движок заказов: оформление, просмотр, смена статуса и отмена
type OrderService struct {
	db       *gorm.DB
	activity *ActivityService
	opts     OrderOptions
}

// NewOrderService создает сервис заказов
func NewOrderService(db *gorm.DB, activity *ActivityService, opts OrderOptions) *OrderService {
	if opts.PriceSource == "" {
		opts.PriceSource = config.PriceSourceClient
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 20
	}
	return &OrderService{db: db, activity: activity, opts: opts}
}

// validatePlaceOrder проверяет заказ целиком и возвращает все ошибки сразу
func (s *OrderService) validatePlaceOrder(ctx context.Context, input PlaceOrderInput) error {
	verr := &ValidationError{}
	for field, reason := range utils.ValidateStruct(input) {
		verr.Add(field, reason)
	}

	ids := make([]uint, 0, len(input.Items))
	for i, item := range input.Items {
		if item.Price.IsNegative() {
			verr.Add(fmt.Sprintf("items[%d].price", i), "min=0")
		}
		ids = append(ids, item.ProductID)
	}

	if len(ids) > 0 {
		var existing []uint
		if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
			return &TransactionError{Op: "place_order", Err: err}
		}
		found := make(map[uint]bool, len(existing))
		for _, id := range existing {
			found[id] = true
		}
		for i, item := range input.Items {
			if item.ProductID != 0 && !found[item.ProductID] {
				verr.Add(fmt.Sprintf("items[%d].product_id", i), "exists")
			}
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// PlaceOrder оформляет заказ: заказ, позиции и очистка корзины в одной транзакции
func (s *OrderService) PlaceOrder(ctx context.Context, actor Actor, input PlaceOrderInput, meta RequestMeta) (*models.Order, error) {
	if err := s.validatePlaceOrder(ctx, input); err != nil {
		return nil, err
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prices := make([]decimal.Decimal, len(input.Items))
		for i, item := range input.Items {
			prices[i] = item.Price
		}

		// В режиме каталога цена берется из товара, а не из запроса
		if s.opts.PriceSource == config.PriceSourceCatalog {
			for i, item := range input.Items {
				var product models.Product
				if err := tx.Select("id", "price").First(&product, item.ProductID).Error; err != nil {
					return err
				}
				prices[i] = product.Price
			}
		}

		total := decimal.Zero
		items := make([]models.OrderItem, len(input.Items))
		for i, item := range input.Items {
			items[i] = models.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     prices[i].Round(2),
			}
			// Сумма считается по исходной цене, округляется один раз в конце
			total = total.Add(prices[i].Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		order = models.Order{
			UserID:        actor.UserID,
			CustomerName:  input.CustomerName,
			CustomerPhone: input.CustomerPhone,
			Address:       input.Address,
			Region:        input.Region,
			Notes:         input.Notes,
			TotalPrice:    total.Round(2),
			Status:        models.OrderStatusNew,
		}
		if err := tx.Omit("Items", "User").Create(&order).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", actor.UserID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		config.LogError(config.GetLogger(), "OrderService", "PlaceOrder", "transaction", input, err)
		return nil, &TransactionError{Op: "place_order", Err: err}
	}

	metrics.OrdersPlaced.Inc()
	s.activity.Log(ctx, ActivityEntry{
		UserID:    actor.UserID,
		Action:    ActionCreatedOrder,
		ModelType: "Order",
		ModelID:   uintPtr(order.ID),
		Changes: map[string]interface{}{
			"total_price": order.TotalPrice.StringFixed(2),
			"items_count": len(input.Items),
		},
		Meta: meta,
	})

	return s.load(ctx, order.ID)
}

func (s *OrderService) load(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items.Product").First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("order")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) filtered(ctx context.Context, filter OrderFilter) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Region != nil {
		query = query.Where("region = ?", *filter.Region)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	return query
}

// ListOrders возвращает заказы по фильтру, новые первыми.
// Фильтр должен быть предварительно ограничен через ScopeOrderFilter.
func (s *OrderService) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	page, perPage := pageBounds(filter.Page, filter.PerPage, s.opts.PerPage)
	query := s.filtered(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.Preload("User").Preload("Items.Product").
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&orders).Error
	return orders, total, err
}

// AllOrders возвращает все заказы по фильтру без пагинации
func (s *OrderService) AllOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	var orders []models.Order
	err := s.filtered(ctx, filter).Preload("Items").
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error
	return orders, err
}

// GetOrder возвращает заказ владельцу, администратору или собственнику
func (s *OrderService) GetOrder(ctx context.Context, actor Actor, id uint) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.UserID != actor.UserID && !actor.IsPrivileged() {
		return nil, &AuthorizationError{
			RequiredRoles: []string{models.RoleOwner, models.RoleAdmin},
			ActualRole:    actor.Role,
			Reason:        "заказ принадлежит другому пользователю",
		}
	}

	return order, nil
}

// UpdateStatus меняет статус заказа. Доступно владельцу и администратору.
func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, id uint, status string, force bool, meta RequestMeta) (*models.Order, error) {
	if err := RequireRole(actor, models.RoleOwner, models.RoleAdmin); err != nil {
		return nil, err
	}
	if !models.IsValidOrderStatus(status) {
		return nil, NewValidationError("status", "oneof=new processing shipped delivered cancelled")
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := order.Status
	if s.opts.StrictTransitions && !force && status != oldStatus {
		if models.IsTerminalStatus(oldStatus) {
			return nil, &InvalidStateError{Reason: fmt.Sprintf("заказ в конечном статусе %s", oldStatus)}
		}
		if status != models.OrderStatusCancelled && models.StatusRank(status) < models.StatusRank(oldStatus) {
			return nil, &InvalidStateError{Reason: fmt.Sprintf("переход %s -> %s назад", oldStatus, status)}
		}
	}

	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return nil, &TransactionError{Op: "update_order_status", Err: err}
	}
	order.Status = status

	metrics.OrderStatusChanges.WithLabelValues(status).Inc()
	s.activity.Log(ctx, ActivityEntry{
		UserID:    actor.UserID,
		Action:    ActionUpdatedOrderStatus,
		ModelType: "Order",
		ModelID:   uintPtr(order.ID),
		Changes: map[string]interface{}{
			"old_status": oldStatus,
			"new_status": status,
		},
		Meta: meta,
	})

	return order, nil
}

// CancelOrder отменяет собственный заказ, если он еще не доставлен и не отменен
func (s *OrderService) CancelOrder(ctx context.Context, actor Actor, id uint, meta RequestMeta) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.UserID != actor.UserID {
		return nil, &AuthorizationError{
			RequiredRoles: []string{models.RoleCustomer},
			ActualRole:    actor.Role,
			Reason:        "можно отменить только свой заказ",
		}
	}
	if models.IsTerminalStatus(order.Status) {
		return nil, &InvalidStateError{Reason: "заказ нельзя отменить"}
	}

	// Условное обновление: из двух одновременных отмен успешна только одна
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status NOT IN ?", id, models.TerminalStatuses).
		Update("status", models.OrderStatusCancelled)
	if res.Error != nil {
		return nil, &TransactionError{Op: "cancel_order", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return nil, &InvalidStateError{Reason: "заказ нельзя отменить"}
	}

	oldStatus := order.Status
	order.Status = models.OrderStatusCancelled

	metrics.OrderStatusChanges.WithLabelValues(models.OrderStatusCancelled).Inc()
	s.activity.Log(ctx, ActivityEntry{
		UserID:    actor.UserID,
		Action:    ActionCancelledOrder,
		ModelType: "Order",
		ModelID:   uintPtr(order.ID),
		Changes:   map[string]interface{}{"old_status": oldStatus},
		Meta:      meta,
	})

	return order, nil
}
