package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog запись журнала действий. Только добавление, без изменений и удалений.
type ActivityLog struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	UserID    uint              `json:"user_id" gorm:"not null;index:idx_activity_user_created,priority:1"`
	Action    string            `json:"action" gorm:"not null;size:100;index:idx_activity_action_created,priority:1"`
	ModelType string            `json:"model_type" gorm:"size:50"`
	ModelID   *uint             `json:"model_id"`
	Changes   datatypes.JSONMap `json:"changes"`
	IPAddress string            `json:"ip_address" gorm:"size:45"`
	UserAgent string            `json:"user_agent" gorm:"type:text"`
	CreatedAt time.Time         `json:"created_at" gorm:"index:idx_activity_user_created,priority:2;index:idx_activity_action_created,priority:2"`

	// Связи
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// RevokedToken отозванный JWT (используется, когда Redis не настроен)
type RevokedToken struct {
	JTI       string    `json:"jti" gorm:"primaryKey;size:64"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}
