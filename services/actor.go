package services

import (
	"time"

	"autogas-backend/models"
)

// Actor пользователь, от имени которого выполняется операция
type Actor struct {
	UserID uint
	Role   string
	Region string
}

// ActorFromUser строит Actor из модели пользователя
func ActorFromUser(u *models.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role, Region: u.RegionName()}
}

// Is проверяет роль
func (a Actor) Is(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// IsPrivileged владелец или администратор
func (a Actor) IsPrivileged() bool {
	return a.Is(models.RoleOwner, models.RoleAdmin)
}

// RequireRole возвращает AuthorizationError, если роль не входит в список
func RequireRole(a Actor, roles ...string) error {
	if a.Is(roles...) {
		return nil
	}
	return &AuthorizationError{RequiredRoles: roles, ActualRole: a.Role}
}

// RequestMeta данные запроса для журнала действий
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// OrderFilter параметры выборки заказов. Region == nil означает отсутствие фильтра.
type OrderFilter struct {
	UserID  *uint
	Region  *string
	Status  string
	From    *time.Time
	To      *time.Time
	Page    int
	PerPage int
}

// ScopeOrderFilter ограничивает фильтр областью видимости пользователя
func ScopeOrderFilter(a Actor, f OrderFilter) (OrderFilter, error) {
	switch a.Role {
	case models.RoleOwner:
		return f, nil
	case models.RoleAdmin:
		if a.Region != "" {
			region := a.Region
			f.Region = &region
		}
		return f, nil
	case models.RoleKontragent:
		region := a.Region
		f.Region = &region
		f.UserID = nil
		return f, nil
	case models.RoleCustomer:
		userID := a.UserID
		f.UserID = &userID
		return f, nil
	}
	return f, &AuthorizationError{
		RequiredRoles: []string{models.RoleOwner, models.RoleAdmin, models.RoleKontragent, models.RoleCustomer},
		ActualRole:    a.Role,
	}
}

func pageBounds(page, perPage, defPerPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defPerPage
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
