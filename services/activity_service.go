package services

import (
	"context"
	"fmt"

	"autogas-backend/config"
	"autogas-backend/events"
	"autogas-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Действия журнала
const (
	ActionRegistered         = "registered"
	ActionLoggedIn           = "logged_in"
	ActionLoggedOut          = "logged_out"
	ActionUpdatedProfile     = "updated_profile"
	ActionChangedPassword    = "changed_password"
	ActionDeletedAccount     = "deleted_account"
	ActionCreatedOrder       = "created_order"
	ActionUpdatedOrderStatus = "updated_order_status"
	ActionCancelledOrder     = "cancelled_order"
	ActionCreatedProduct     = "created_product"
	ActionUpdatedProduct     = "updated_product"
	ActionDeletedProduct     = "deleted_product"
	ActionImportedProducts   = "imported_products"
	ActionCreatedUser        = "created_user"
	ActionUpdatedUser        = "updated_user"
	ActionToggledUser        = "toggled_user"
	ActionDeletedUser        = "deleted_user"
)

// ActivityEntry данные одной записи журнала
type ActivityEntry struct {
	UserID    uint
	Action    string
	ModelType string
	ModelID   *uint
	Changes   map[string]interface{}
	Meta      RequestMeta
}

// ActivityFilter параметры выборки журнала
type ActivityFilter struct {
	Action  string
	UserID  *uint
	Page    int
	PerPage int
}

// ActivityService журнал действий пользователей
type ActivityService struct {
	db        *gorm.DB
	publisher *events.Publisher
}

// NewActivityService создает сервис журнала; publisher может быть nil
func NewActivityService(db *gorm.DB, publisher *events.Publisher) *ActivityService {
	return &ActivityService{db: db, publisher: publisher}
}

// Log записывает действие. Ошибки логируются и не возвращаются.
func (s *ActivityService) Log(ctx context.Context, entry ActivityEntry) {
	if s == nil {
		return
	}

	record := models.ActivityLog{
		UserID:    entry.UserID,
		Action:    entry.Action,
		ModelType: entry.ModelType,
		ModelID:   entry.ModelID,
		IPAddress: entry.Meta.IPAddress,
		UserAgent: entry.Meta.UserAgent,
	}
	if entry.Changes != nil {
		record.Changes = datatypes.JSONMap(entry.Changes)
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		config.LogError(config.GetLogger(), "ActivityService", "Log", entry.Action, entry.Changes, err)
		return
	}

	if s.publisher.Enabled() {
		// Публикация не блокирует запрос и не зависит от его контекста
		go func(rec models.ActivityLog) {
			if err := s.publisher.Publish(context.Background(), fmt.Sprint(rec.UserID), rec); err != nil {
				config.LogError(config.GetLogger(), "ActivityService", "Publish", rec.Action, nil, err)
			}
		}(record)
	}
}

// List возвращает журнал с фильтрами, новые записи первыми
func (s *ActivityService) List(ctx context.Context, filter ActivityFilter) ([]models.ActivityLog, int64, error) {
	page, perPage := pageBounds(filter.Page, filter.PerPage, 20)

	query := s.db.WithContext(ctx).Model(&models.ActivityLog{})
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.ActivityLog
	err := query.Preload("User").
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&logs).Error
	return logs, total, err
}

// Recent возвращает последние действия пользователя
func (s *ActivityService) Recent(ctx context.Context, userID uint, limit int) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func uintPtr(v uint) *uint {
	return &v
}
