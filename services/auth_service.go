package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"autogas-backend/cache"
	"autogas-backend/models"
	"autogas-backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInvalidCredentials неверный email или пароль
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountBlocked учетная запись отключена
	ErrAccountBlocked = errors.New("account is blocked")
)

// RegisterInput данные регистрации покупателя
type RegisterInput struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Phone                string `json:"phone" validate:"required,max=20,phone"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// AuthService регистрация, вход и отзыв токенов
type AuthService struct {
	db       *gorm.DB
	store    *cache.Store
	activity *ActivityService
}

// NewAuthService создает сервис аутентификации; store может быть отключен
func NewAuthService(db *gorm.DB, store *cache.Store, activity *ActivityService) *AuthService {
	return &AuthService{db: db, store: store, activity: activity}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) emailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	return emailTaken(s.db.WithContext(ctx), email, exceptID)
}

func emailTaken(db *gorm.DB, email string, exceptID uint) (bool, error) {
	var n int64
	query := db.Model(&models.User{}).Where("email = ?", normalizeEmail(email))
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Register создает учетную запись покупателя
func (s *AuthService) Register(ctx context.Context, input RegisterInput, meta RequestMeta) (*models.User, error) {
	if fields := utils.ValidateStruct(input); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	taken, err := s.emailTaken(ctx, input.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, NewValidationError("email", "unique")
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        normalizeEmail(input.Email),
		Phone:        input.Phone,
		PasswordHash: hash,
		Role:         models.RoleCustomer,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, &TransactionError{Op: "register", Err: err}
	}

	s.activity.Log(ctx, ActivityEntry{
		UserID:    user.ID,
		Action:    ActionRegistered,
		ModelType: "User",
		ModelID:   uintPtr(user.ID),
		Meta:      meta,
	})

	return &user, nil
}

// Authenticate проверяет email и пароль
func (s *AuthService) Authenticate(ctx context.Context, email, password string, meta RequestMeta) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountBlocked
	}

	s.activity.Log(ctx, ActivityEntry{
		UserID:    user.ID,
		Action:    ActionLoggedIn,
		ModelType: "User",
		ModelID:   uintPtr(user.ID),
		Meta:      meta,
	})

	return &user, nil
}

func revokedKey(jti string) string {
	return "revoked:" + jti
}

// Revoke отзывает токен до истечения его срока
func (s *AuthService) Revoke(ctx context.Context, userID uint, jti string, expiresAt time.Time, meta RequestMeta) error {
	ttl := time.Until(expiresAt)
	if jti == "" || ttl <= 0 {
		return nil
	}

	if s.store.Enabled() {
		if err := s.store.SetValue(ctx, revokedKey(jti), "1", ttl); err != nil {
			return err
		}
	} else {
		token := models.RevokedToken{JTI: jti, ExpiresAt: expiresAt}
		if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&token).Error; err != nil {
			return err
		}
	}

	s.activity.Log(ctx, ActivityEntry{
		UserID:    userID,
		Action:    ActionLoggedOut,
		ModelType: "User",
		ModelID:   uintPtr(userID),
		Meta:      meta,
	})
	return nil
}

// IsRevoked проверяет, отозван ли токен
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.store.Enabled() {
		return s.store.Exists(ctx, revokedKey(jti))
	}

	var n int64
	err := s.db.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("jti = ? AND expires_at > ?", jti, time.Now()).
		Count(&n).Error
	return n > 0, err
}

// PurgeRevoked удаляет из таблицы истекшие отозванные токены
func (s *AuthService) PurgeRevoked(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&models.RevokedToken{})
	return res.RowsAffected, res.Error
}
