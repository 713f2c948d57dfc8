package services

import (
	"context"
	"errors"
	"strings"

	"autogas-backend/models"
	"autogas-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProfileInput изменение профиля
type ProfileInput struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
	Phone string `json:"phone" validate:"required,max=20,phone"`
}

// PasswordInput смена пароля
type PasswordInput struct {
	CurrentPassword      string `json:"current_password" validate:"required"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// StaffInput создание администратора или контрагента
type StaffInput struct {
	Name              string `json:"name" validate:"required,max=255"`
	Email             string `json:"email" validate:"required,email,max=255"`
	Phone             string `json:"phone" validate:"required,max=20,phone"`
	Password          string `json:"password" validate:"required,min=6"`
	Region            string `json:"region" validate:"required,max=255"`
	WarehouseAddress  string `json:"warehouse_address" validate:"max=500"`
	WarehouseCapacity int    `json:"warehouse_capacity" validate:"min=0"`
}

// StaffUpdate частичное изменение администратора или контрагента
type StaffUpdate struct {
	Name              *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Email             *string          `json:"email" validate:"omitempty,email,max=255"`
	Phone             *string          `json:"phone" validate:"omitempty,max=20,phone"`
	Password          *string          `json:"password" validate:"omitempty,min=6"`
	Region            *string          `json:"region" validate:"omitempty,min=1,max=255"`
	Balance           *decimal.Decimal `json:"balance"`
	WarehouseAddress  *string          `json:"warehouse_address" validate:"omitempty,max=500"`
	WarehouseCapacity *int             `json:"warehouse_capacity" validate:"omitempty,min=0"`
}

// ProfileStats статистика заказов пользователя
type ProfileStats struct {
	TotalOrders     int64           `json:"total_orders"`
	CompletedOrders int64           `json:"completed_orders"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
}

// ProfileView профиль со статистикой и последними действиями
type ProfileView struct {
	User             models.User          `json:"user"`
	Stats            ProfileStats         `json:"stats"`
	RecentActivities []models.ActivityLog `json:"recent_activities"`
}

// UserService профиль пользователя и управление персоналом
type UserService struct {
	db       *gorm.DB
	activity *ActivityService
}

// NewUserService создает сервис пользователей
func NewUserService(db *gorm.DB, activity *ActivityService) *UserService {
	return &UserService{db: db, activity: activity}
}

func (s *UserService) findUser(ctx context.Context, id uint, role string) (*models.User, error) {
	var user models.User
	query := s.db.WithContext(ctx)
	if role != "" {
		query = query.Where("role = ?", role)
	}
	err := query.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile возвращает профиль со статистикой по доставленным заказам
func (s *UserService) Profile(ctx context.Context, actor Actor) (*ProfileView, error) {
	user, err := s.findUser(ctx, actor.UserID, "")
	if err != nil {
		return nil, err
	}

	view := &ProfileView{User: *user, Stats: ProfileStats{TotalSpent: decimal.Zero}}
	orders := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", user.ID)

	if err := orders.Session(&gorm.Session{}).Count(&view.Stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	delivered := orders.Session(&gorm.Session{}).Where("status = ?", models.OrderStatusDelivered)
	if err := delivered.Session(&gorm.Session{}).Count(&view.Stats.CompletedOrders).Error; err != nil {
		return nil, err
	}

	var spent decimal.NullDecimal
	if err := delivered.Session(&gorm.Session{}).Select("SUM(total_price)").Row().Scan(&spent); err != nil {
		return nil, err
	}
	if spent.Valid {
		view.Stats.TotalSpent = spent.Decimal.Round(2)
	}

	if view.RecentActivities, err = s.activity.Recent(ctx, user.ID, 10); err != nil {
		return nil, err
	}
	return view, nil
}

// UpdateProfile меняет имя, email и телефон
func (s *UserService) UpdateProfile(ctx context.Context, actor Actor, input ProfileInput, meta RequestMeta) (*models.User, error) {
	if fields := utils.ValidateStruct(input); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	user, err := s.findUser(ctx, actor.UserID, "")
	if err != nil {
		return nil, err
	}

	taken, err := emailTaken(s.db.WithContext(ctx), input.Email, user.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, NewValidationError("email", "unique")
	}

	user.Name = strings.TrimSpace(input.Name)
	user.Email = normalizeEmail(input.Email)
	user.Phone = input.Phone
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}

	s.activity.Log(ctx, ActivityEntry{
		UserID:    user.ID,
		Action:    ActionUpdatedProfile,
		ModelType: "User",
		ModelID:   uintPtr(user.ID),
		Changes: map[string]interface{}{
			"name":  user.Name,
			"email": user.Email,
			"phone": user.Phone,
		},
		Meta: meta,
	})
	return user, nil
}

// ChangePassword меняет пароль после проверки текущего
func (s *UserService) ChangePassword(ctx context.Context, actor Actor, input PasswordInput, meta RequestMeta) error {
	if fields := utils.ValidateStruct(input); fields != nil {
		return &ValidationError{Fields: fields}
	}

	user, err := s.findUser(ctx, actor.UserID, "")
	if err != nil {
		return err
	}
	if !utils.CheckPasswordHash(input.CurrentPassword, user.PasswordHash) {
		return NewValidationError("current_password", "Текущий пароль неверен")
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return err
	}

	s.activity.Log(ctx, ActivityEntry{
		UserID:    user.ID,
		Action:    ActionChangedPassword,
		ModelType: "User",
		ModelID:   uintPtr(user.ID),
		Meta:      meta,
	})
	return nil
}

// DeleteAccount удаляет учетную запись после подтверждения пароля.
// Заказы сохраняются для истории продаж.
func (s *UserService) DeleteAccount(ctx context.Context, actor Actor, password string, meta RequestMeta) error {
	user, err := s.findUser(ctx, actor.UserID, "")
	if err != nil {
		return err
	}
	if password == "" {
		return NewValidationError("password", "required")
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return NewValidationError("password", "Пароль неверен")
	}

	// Запись журнала делаем до удаления
	s.activity.Log(ctx, ActivityEntry{
		UserID:    user.ID,
		Action:    ActionDeletedAccount,
		ModelType: "User",
		ModelID:   uintPtr(user.ID),
		Meta:      meta,
	})

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.WishlistItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, user.ID).Error
	})
	if err != nil {
		return &TransactionError{Op: "delete_account", Err: err}
	}
	return nil
}

// ListUsers возвращает пользователей роли, с фильтром по региону
func (s *UserService) ListUsers(ctx context.Context, role, region string) ([]models.User, error) {
	var users []models.User
	query := s.db.WithContext(ctx).Where("role = ?", role)
	if region != "" {
		query = query.Where("region = ?", region)
	}
	err := query.Order("created_at DESC").Find(&users).Error
	return users, err
}

// canManage проверяет, может ли actor управлять пользователем роли role в регионе region
func canManage(actor Actor, role, region string) error {
	switch role {
	case models.RoleAdmin:
		return RequireRole(actor, models.RoleOwner)
	case models.RoleKontragent:
		if err := RequireRole(actor, models.RoleOwner, models.RoleAdmin); err != nil {
			return err
		}
		if actor.Role == models.RoleAdmin && actor.Region != "" && region != actor.Region {
			return &AuthorizationError{
				RequiredRoles: []string{models.RoleOwner},
				ActualRole:    actor.Role,
				Reason:        "контрагент из другого региона",
			}
		}
		return nil
	}
	return &AuthorizationError{RequiredRoles: []string{models.RoleOwner}, ActualRole: actor.Role}
}

// CreateStaff создает администратора или контрагента
func (s *UserService) CreateStaff(ctx context.Context, actor Actor, role string, input StaffInput, meta RequestMeta) (*models.User, error) {
	if err := canManage(actor, role, input.Region); err != nil {
		return nil, err
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	taken, err := emailTaken(s.db.WithContext(ctx), input.Email, 0)
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

	region := input.Region
	user := models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        normalizeEmail(input.Email),
		Phone:        input.Phone,
		PasswordHash: hash,
		Role:         role,
		Region:       &region,
		IsActive:     true,
		Balance:      decimal.Zero,
	}
	if role == models.RoleKontragent {
		user.ManagedBy = uintPtr(actor.UserID)
		user.WarehouseCapacity = input.WarehouseCapacity
		if input.WarehouseAddress != "" {
			address := input.WarehouseAddress
			user.WarehouseAddress = &address
		}
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, &TransactionError{Op: "create_" + role, Err: err}
	}

	s.activity.Log(ctx, ActivityEntry{
		UserID:    actor.UserID,
		Action:    ActionCreatedUser,
		ModelType: "User",
		ModelID:   uintPtr(user.ID),
		Changes:   map[string]interface{}{"role": role, "region": region},
		Meta:      meta,
	})
	return &user, nil
}

// UpdateStaff частично изменяет администратора или контрагента
func (s *UserService) UpdateStaff(ctx context.Context, actor Actor, role string, id uint, input StaffUpdate, meta RequestMeta) (*models.User, error) {
	user, err := s.findUser(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if err := canManage(actor, role, user.RegionName()); err != nil {
		return nil, err
	}
	if input.Region != nil {
		if err := canManage(actor, role, *input.Region); err != nil {
			return nil, err
		}
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	changes := map[string]interface{}{}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
		changes["name"] = user.Name
	}
	if input.Email != nil {
		taken, err := emailTaken(s.db.WithContext(ctx), *input.Email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, NewValidationError("email", "unique")
		}
		user.Email = normalizeEmail(*input.Email)
		changes["email"] = user.Email
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
		changes["phone"] = user.Phone
	}
	if input.Password != nil {
		hash, err := utils.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		changes["password"] = "changed"
	}
	if input.Region != nil {
		region := *input.Region
		user.Region = &region
		changes["region"] = region
	}
	if role == models.RoleKontragent {
		if input.Balance != nil {
			user.Balance = input.Balance.Round(2)
			changes["balance"] = user.Balance.StringFixed(2)
		}
		if input.WarehouseAddress != nil {
			address := *input.WarehouseAddress
			user.WarehouseAddress = &address
			changes["warehouse_address"] = address
		}
		if input.WarehouseCapacity != nil {
			user.WarehouseCapacity = *input.WarehouseCapacity
			changes["warehouse_capacity"] = user.WarehouseCapacity
		}
	}

	if err := s.db.WithContext(ctx).Omit("Manager").Save(user).Error; err != nil {
		return nil, err
	}

	s.activity.Log(ctx, ActivityEntry{
		UserID:    actor.UserID,
		Action:    ActionUpdatedUser,
		ModelType: "User",
		ModelID:   uintPtr(user.ID),
		Changes:   changes,
		Meta:      meta,
	})
	return user, nil
}

// ToggleStaff включает или отключает учетную запись
func (s *UserService) ToggleStaff(ctx context.Context, actor Actor, role string, id uint, meta RequestMeta) (*models.User, error) {
	user, err := s.findUser(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if err := canManage(actor, role, user.RegionName()); err != nil {
		return nil, err
	}

	user.IsActive = !user.IsActive
	if err := s.db.WithContext(ctx).Model(user).Update("is_active", user.IsActive).Error; err != nil {
		return nil, err
	}

	s.activity.Log(ctx, ActivityEntry{
		UserID:    actor.UserID,
		Action:    ActionToggledUser,
		ModelType: "User",
		ModelID:   uintPtr(user.ID),
		Changes:   map[string]interface{}{"is_active": user.IsActive},
		Meta:      meta,
	})
	return user, nil
}

// DeleteAdmin удаляет администратора (только владелец)
func (s *UserService) DeleteAdmin(ctx context.Context, actor Actor, id uint, meta RequestMeta) error {
	if err := RequireRole(actor, models.RoleOwner); err != nil {
		return err
	}
	user, err := s.findUser(ctx, id, models.RoleAdmin)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&models.User{}, user.ID).Error; err != nil {
		return err
	}

	s.activity.Log(ctx, ActivityEntry{
		UserID:    actor.UserID,
		Action:    ActionDeletedUser,
		ModelType: "User",
		ModelID:   uintPtr(user.ID),
		Changes:   map[string]interface{}{"role": models.RoleAdmin, "email": user.Email},
		Meta:      meta,
	})
	return nil
}
