package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"autogas-backend/cache"
	"autogas-backend/config"
	"autogas-backend/models"
	"autogas-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductInput данные для создания товара
type ProductInput struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Category    string           `json:"category" validate:"max=255"`
	Description string           `json:"description"`
	ImageURL    string           `json:"image_url" validate:"max=500"`
	Quantity    *int             `json:"quantity" validate:"omitempty,min=0"`
}

// ProductUpdate частичное обновление товара
type ProductUpdate struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category" validate:"omitempty,max=255"`
	Description *string          `json:"description"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,max=500"`
	Quantity    *int             `json:"quantity" validate:"omitempty,min=0"`
}

// ProductFilter параметры каталога
type ProductFilter struct {
	Category string
	Query    string
	SellerID *uint
	Page     int
	PerPage  int
}

// ProductService каталог товаров с кэшем карточек в Redis
type ProductService struct {
	db       *gorm.DB
	cache    *cache.Store
	cacheTTL time.Duration
	activity *ActivityService
}

// NewProductService создает сервис каталога; store может быть отключен
func NewProductService(db *gorm.DB, store *cache.Store, cacheTTL time.Duration, activity *ActivityService) *ProductService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ProductService{db: db, cache: store, cacheTTL: cacheTTL, activity: activity}
}

func productCacheKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func validatePrice(verr *ValidationError, price *decimal.Decimal) {
	if price != nil && price.IsNegative() {
		verr.Add("price", "min=0")
	}
}

// List возвращает страницу каталога, новые товары первыми
func (s *ProductService) List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	page, perPage := pageBounds(filter.Page, filter.PerPage, 15)

	query := s.db.WithContext(ctx).Model(&models.Product{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + q + "%"
		query = query.Where("name LIKE ? OR description LIKE ? OR category LIKE ?", like, like, like)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := query.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&products).Error
	return products, total, err
}

// Get возвращает товар, сначала пробуя кэш
func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product

	found, err := s.cache.GetObject(ctx, productCacheKey(id), &product)
	if err != nil {
		config.LogError(config.GetLogger(), "ProductService", "Get", "cache read", id, err)
	}
	if found {
		return &product, nil
	}

	err = s.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("product")
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetObject(ctx, productCacheKey(id), product, s.cacheTTL); err != nil {
		config.LogError(config.GetLogger(), "ProductService", "Get", "cache write", id, err)
	}
	return &product, nil
}

func (s *ProductService) invalidate(ctx context.Context, ids ...uint) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, productCacheKey(id))
	}
	if err := s.cache.Remove(ctx, keys...); err != nil {
		config.LogError(config.GetLogger(), "ProductService", "invalidate", "cache remove", ids, err)
	}
}

func (s *ProductService) create(ctx context.Context, actor Actor, input ProductInput, sellerID *uint, meta RequestMeta) (*models.Product, error) {
	verr := &ValidationError{}
	for field, reason := range utils.ValidateStruct(input) {
		verr.Add(field, reason)
	}
	validatePrice(verr, input.Price)
	if verr.HasErrors() {
		return nil, verr
	}

	product := models.Product{
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price.Round(2),
		Category:    input.Category,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		SellerID:    sellerID,
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, &TransactionError{Op: "create_product", Err: err}
	}

	s.activity.Log(ctx, ActivityEntry{
		UserID:    actor.UserID,
		Action:    ActionCreatedProduct,
		ModelType: "Product",
		ModelID:   uintPtr(product.ID),
		Changes: map[string]interface{}{
			"name":     product.Name,
			"price":    product.Price.StringFixed(2),
			"quantity": product.Quantity,
		},
		Meta: meta,
	})

	return &product, nil
}

// Create добавляет товар в каталог (владелец, администратор)
func (s *ProductService) Create(ctx context.Context, actor Actor, input ProductInput, meta RequestMeta) (*models.Product, error) {
	if err := RequireRole(actor, models.RoleOwner, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.create(ctx, actor, input, nil, meta)
}

// AddToWarehouse добавляет товар контрагента; продавцом становится сам контрагент
func (s *ProductService) AddToWarehouse(ctx context.Context, actor Actor, input ProductInput, meta RequestMeta) (*models.Product, error) {
	if err := RequireRole(actor, models.RoleKontragent); err != nil {
		return nil, err
	}
	if input.Quantity == nil || *input.Quantity < 1 {
		return nil, NewValidationError("quantity", "min=1")
	}
	return s.create(ctx, actor, input, uintPtr(actor.UserID), meta)
}

// Update частично обновляет товар; статус наличия пересчитывается из количества
func (s *ProductService) Update(ctx context.Context, actor Actor, id uint, input ProductUpdate, meta RequestMeta) (*models.Product, error) {
	if err := RequireRole(actor, models.RoleOwner, models.RoleAdmin); err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	for field, reason := range utils.ValidateStruct(input) {
		verr.Add(field, reason)
	}
	validatePrice(verr, input.Price)
	if verr.HasErrors() {
		return nil, verr
	}

	var product models.Product
	err := s.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("product")
	}
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
		changes["name"] = product.Name
	}
	if input.Price != nil {
		product.Price = input.Price.Round(2)
		changes["price"] = product.Price.StringFixed(2)
	}
	if input.Category != nil {
		product.Category = *input.Category
		changes["category"] = product.Category
	}
	if input.Description != nil {
		product.Description = *input.Description
		changes["description"] = product.Description
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
		changes["image_url"] = product.ImageURL
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
		changes["quantity"] = product.Quantity
	}

	if err := s.db.WithContext(ctx).Save(&product).Error; err != nil {
		return nil, &TransactionError{Op: "update_product", Err: err}
	}
	s.invalidate(ctx, product.ID)

	s.activity.Log(ctx, ActivityEntry{
		UserID:    actor.UserID,
		Action:    ActionUpdatedProduct,
		ModelType: "Product",
		ModelID:   uintPtr(product.ID),
		Changes:   changes,
		Meta:      meta,
	})

	return &product, nil
}

// Delete удаляет товар из каталога
func (s *ProductService) Delete(ctx context.Context, actor Actor, id uint, meta RequestMeta) error {
	if err := RequireRole(actor, models.RoleOwner, models.RoleAdmin); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("product")
		}

		// Удаленный товар не должен оставаться в корзинах и избранном
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Where("product_id = ?", id).Delete(&models.WishlistItem{}).Error
	})
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return &TransactionError{Op: "delete_product", Err: err}
	}
	s.invalidate(ctx, id)

	s.activity.Log(ctx, ActivityEntry{
		UserID:    actor.UserID,
		Action:    ActionDeletedProduct,
		ModelType: "Product",
		ModelID:   uintPtr(id),
		Meta:      meta,
	})
	return nil
}
