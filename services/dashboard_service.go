package services

import (
	"context"
	"errors"
	"time"

	"autogas-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OverviewStats сводка для владельца и администратора.
// Для администратора с регионом все счетчики пользователей и заказов ограничены регионом.
type OverviewStats struct {
	TotalAdmins       int64           `json:"total_admins"`
	ActiveAdmins      int64           `json:"active_admins"`
	TotalKontragents  int64           `json:"total_kontragents"`
	ActiveKontragents int64           `json:"active_kontragents"`
	TotalCustomers    int64           `json:"total_customers"`
	TotalOrders       int64           `json:"total_orders"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalProducts     int64           `json:"total_products"`
	PendingOrders     int64           `json:"pending_orders"`
	Region            string          `json:"region,omitempty"`
}

// WarehouseInfo данные склада контрагента
type WarehouseInfo struct {
	Address  *string `json:"address"`
	Capacity int     `json:"capacity"`
}

// KontragentUserInfo данные профиля в сводке контрагента
type KontragentUserInfo struct {
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Region        *string         `json:"region"`
	Balance       decimal.Decimal `json:"balance"`
	WarehouseInfo WarehouseInfo   `json:"warehouse_info"`
}

// KontragentStats сводка контрагента по его региону
type KontragentStats struct {
	TotalOrders     int64              `json:"total_orders"`
	TotalSales      decimal.Decimal    `json:"total_sales"`
	TotalProducts   int64              `json:"total_products"`
	MyProducts      int64              `json:"my_products"`
	ThisMonthOrders int64              `json:"this_month_orders"`
	ThisMonthSales  decimal.Decimal    `json:"this_month_sales"`
	UserInfo        KontragentUserInfo `json:"user_info"`
}

// KontragentSummary строка реестра контрагентов
type KontragentSummary struct {
	ID                uint            `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	Region            *string         `json:"region"`
	IsActive          bool            `json:"is_active"`
	Balance           decimal.Decimal `json:"balance"`
	WarehouseAddress  *string         `json:"warehouse_address"`
	WarehouseCapacity int             `json:"warehouse_capacity"`
	ManagedBy         *uint           `json:"managed_by"`
	TotalOrders       int64           `json:"total_orders"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	ProductsCount     int64           `json:"products_count"`
	CreatedAt         time.Time       `json:"created_at"`
}

// AdminSummary строка реестра администраторов
type AdminSummary struct {
	ID               uint            `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	Region           *string         `json:"region"`
	IsActive         bool            `json:"is_active"`
	TotalKontragents int64           `json:"total_kontragents"`
	TotalSales       decimal.Decimal `json:"total_sales"`
	CreatedAt        time.Time       `json:"created_at"`
}

// KontragentSalesReport заказы региона контрагента
type KontragentSalesReport struct {
	Kontragent  models.User     `json:"kontragent"`
	Orders      []models.Order  `json:"orders"`
	TotalOrders int64           `json:"total_orders"`
	TotalSales  decimal.Decimal `json:"total_sales"`
}

// DashboardService агрегаты по заказам, пользователям и товарам.
// Значения пересчитываются при каждом вызове.
type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDashboardService создает сервис статистики
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, now: time.Now}
}

// WithClock подменяет источник текущего времени
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// revenueScope оставляет только заказы, учитываемые в выручке
func revenueScope(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", models.RevenueStatuses)
}

func regionScope(region string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if region == "" {
			return db
		}
		return db.Where("region = ?", region)
	}
}

func (s *DashboardService) countOrders(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Order{}).Scopes(scopes...).Count(&n).Error
	return n, err
}

// sumRevenue сумма total_price по заказам выручки с дополнительными условиями
func (s *DashboardService) sumRevenue(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	row := s.db.WithContext(ctx).Model(&models.Order{}).
		Scopes(revenueScope).Scopes(scopes...).
		Select("SUM(total_price)").Row()
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal.Round(2), nil
}

func (s *DashboardService) countUsers(ctx context.Context, role, region string, onlyActive bool) (int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Scopes(regionScope(region))
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var n int64
	err := query.Count(&n).Error
	return n, err
}

// Dashboard выбирает сводку по роли пользователя
func (s *DashboardService) Dashboard(ctx context.Context, actor Actor) (interface{}, error) {
	switch actor.Role {
	case models.RoleOwner:
		return s.Overview(ctx, "")
	case models.RoleAdmin:
		return s.Overview(ctx, actor.Region)
	case models.RoleKontragent:
		return s.KontragentDashboard(ctx, actor)
	}
	return nil, &AuthorizationError{
		RequiredRoles: []string{models.RoleOwner, models.RoleAdmin, models.RoleKontragent},
		ActualRole:    actor.Role,
	}
}

// Overview считает сводку по всему магазину или по одному региону
func (s *DashboardService) Overview(ctx context.Context, region string) (*OverviewStats, error) {
	stats := &OverviewStats{Region: region}
	var err error

	if stats.TotalAdmins, err = s.countUsers(ctx, models.RoleAdmin, region, false); err != nil {
		return nil, err
	}
	if stats.ActiveAdmins, err = s.countUsers(ctx, models.RoleAdmin, region, true); err != nil {
		return nil, err
	}
	if stats.TotalCustomers, err = s.countUsers(ctx, models.RoleCustomer, region, false); err != nil {
		return nil, err
	}
	if stats.TotalKontragents, err = s.countUsers(ctx, models.RoleKontragent, region, false); err != nil {
		return nil, err
	}
	if stats.ActiveKontragents, err = s.countUsers(ctx, models.RoleKontragent, region, true); err != nil {
		return nil, err
	}
	if stats.TotalOrders, err = s.countOrders(ctx, regionScope(region)); err != nil {
		return nil, err
	}
	if stats.TotalSales, err = s.sumRevenue(ctx, regionScope(region)); err != nil {
		return nil, err
	}
	if stats.PendingOrders, err = s.countOrders(ctx, regionScope(region), func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", models.OrderStatusNew)
	}); err != nil {
		return nil, err
	}

	// Для региона считаем товары продавцов этого региона
	products := s.db.WithContext(ctx).Model(&models.Product{})
	if region != "" {
		products = products.Where("seller_id IN (?)",
			s.db.Model(&models.User{}).Select("id").Where("region = ?", region))
	}
	if err := products.Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// monthBounds возвращает [начало месяца, начало следующего месяца)
func monthBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}

// KontragentDashboard сводка контрагента по его региону
func (s *DashboardService) KontragentDashboard(ctx context.Context, actor Actor) (*KontragentStats, error) {
	if err := RequireRole(actor, models.RoleKontragent); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, actor.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user")
		}
		return nil, err
	}

	region := regionScope(user.RegionName())
	if user.RegionName() == "" {
		// Контрагент без региона не видит чужих заказов
		region = func(db *gorm.DB) *gorm.DB { return db.Where("1 = 0") }
	}

	start, end := monthBounds(s.now())
	thisMonth := func(db *gorm.DB) *gorm.DB {
		return db.Where("created_at >= ? AND created_at < ?", start, end)
	}

	stats := &KontragentStats{
		UserInfo: KontragentUserInfo{
			Name:    user.Name,
			Email:   user.Email,
			Phone:   user.Phone,
			Region:  user.Region,
			Balance: user.Balance,
			WarehouseInfo: WarehouseInfo{
				Address:  user.WarehouseAddress,
				Capacity: user.WarehouseCapacity,
			},
		},
	}

	var err error
	if stats.TotalOrders, err = s.countOrders(ctx, region); err != nil {
		return nil, err
	}
	if stats.TotalSales, err = s.sumRevenue(ctx, region); err != nil {
		return nil, err
	}
	if stats.ThisMonthOrders, err = s.countOrders(ctx, region, thisMonth); err != nil {
		return nil, err
	}
	if stats.ThisMonthSales, err = s.sumRevenue(ctx, region, thisMonth); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("seller_id = ?", user.ID).Count(&stats.MyProducts).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// ListKontragents реестр контрагентов: владельцу все, администратору с регионом только свои
func (s *DashboardService) ListKontragents(ctx context.Context, actor Actor) ([]KontragentSummary, error) {
	if err := RequireRole(actor, models.RoleOwner, models.RoleAdmin); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Where("role = ?", models.RoleKontragent)
	if actor.Role == models.RoleAdmin && actor.Region != "" {
		query = query.Where("region = ?", actor.Region)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}

	result := make([]KontragentSummary, 0, len(users))
	for _, u := range users {
		summary := KontragentSummary{
			ID:                u.ID,
			Name:              u.Name,
			Email:             u.Email,
			Phone:             u.Phone,
			Region:            u.Region,
			IsActive:          u.IsActive,
			Balance:           u.Balance,
			WarehouseAddress:  u.WarehouseAddress,
			WarehouseCapacity: u.WarehouseCapacity,
			ManagedBy:         u.ManagedBy,
			CreatedAt:         u.CreatedAt,
			TotalSales:        decimal.Zero,
		}

		if region := u.RegionName(); region != "" {
			var err error
			if summary.TotalOrders, err = s.countOrders(ctx, regionScope(region)); err != nil {
				return nil, err
			}
			if summary.TotalSales, err = s.sumRevenue(ctx, regionScope(region)); err != nil {
				return nil, err
			}
		}

		if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("seller_id = ?", u.ID).Count(&summary.ProductsCount).Error; err != nil {
			return nil, err
		}

		result = append(result, summary)
	}

	return result, nil
}

// ListAdmins реестр администраторов с показателями их регионов
func (s *DashboardService) ListAdmins(ctx context.Context, actor Actor) ([]AdminSummary, error) {
	if err := RequireRole(actor, models.RoleOwner); err != nil {
		return nil, err
	}

	var admins []models.User
	if err := s.db.WithContext(ctx).Where("role = ?", models.RoleAdmin).Order("created_at DESC").Find(&admins).Error; err != nil {
		return nil, err
	}

	result := make([]AdminSummary, 0, len(admins))
	for _, a := range admins {
		summary := AdminSummary{
			ID:         a.ID,
			Name:       a.Name,
			Email:      a.Email,
			Phone:      a.Phone,
			Region:     a.Region,
			IsActive:   a.IsActive,
			CreatedAt:  a.CreatedAt,
			TotalSales: decimal.Zero,
		}

		if region := a.RegionName(); region != "" {
			var err error
			if summary.TotalKontragents, err = s.countUsers(ctx, models.RoleKontragent, region, false); err != nil {
				return nil, err
			}
			if summary.TotalSales, err = s.sumRevenue(ctx, regionScope(region)); err != nil {
				return nil, err
			}
		}

		result = append(result, summary)
	}

	return result, nil
}

// KontragentSales заказы региона контрагента с итогами
func (s *DashboardService) KontragentSales(ctx context.Context, actor Actor, kontragentID uint) (*KontragentSalesReport, error) {
	if err := RequireRole(actor, models.RoleOwner, models.RoleAdmin); err != nil {
		return nil, err
	}

	var kontragent models.User
	err := s.db.WithContext(ctx).Where("role = ?", models.RoleKontragent).First(&kontragent, kontragentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("kontragent")
	}
	if err != nil {
		return nil, err
	}

	if actor.Role == models.RoleAdmin && actor.Region != "" && kontragent.RegionName() != actor.Region {
		return nil, &AuthorizationError{
			RequiredRoles: []string{models.RoleOwner},
			ActualRole:    actor.Role,
			Reason:        "контрагент из другого региона",
		}
	}

	report := &KontragentSalesReport{Kontragent: kontragent, Orders: []models.Order{}, TotalSales: decimal.Zero}
	region := kontragent.RegionName()
	if region == "" {
		return report, nil
	}

	if err := s.db.WithContext(ctx).Preload("Items.Product").
		Where("region = ?", region).
		Order("created_at DESC").Order("id DESC").
		Find(&report.Orders).Error; err != nil {
		return nil, err
	}

	report.TotalOrders = int64(len(report.Orders))
	if report.TotalSales, err = s.sumRevenue(ctx, regionScope(region)); err != nil {
		return nil, err
	}

	return report, nil
}

// RegionSales заказы региона для кабинета контрагента, новые первыми
func (s *DashboardService) RegionSales(ctx context.Context, actor Actor) ([]models.Order, error) {
	if err := RequireRole(actor, models.RoleKontragent); err != nil {
		return nil, err
	}

	orders := []models.Order{}
	if actor.Region == "" {
		return orders, nil
	}

	err := s.db.WithContext(ctx).Preload("Items.Product").
		Where("region = ?", actor.Region).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error
	return orders, err
}
