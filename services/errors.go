package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound запись не найдена
var ErrNotFound = errors.New("not found")

// ValidationError ошибка входных данных с детализацией по полям
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError создает ошибку с одним полем
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// Add добавляет причину для поля
func (e *ValidationError) Add(field, reason string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = reason
}

// HasErrors сообщает, есть ли хотя бы одно поле с ошибкой
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AuthorizationError у пользователя нет прав на операцию
type AuthorizationError struct {
	RequiredRoles []string
	ActualRole    string
	Reason        string
}

func (e *AuthorizationError) Error() string {
	if e.Reason != "" {
		return "forbidden: " + e.Reason
	}
	return fmt.Sprintf("forbidden: role %q is not one of %v", e.ActualRole, e.RequiredRoles)
}

// InvalidStateError операция недопустима в текущем состоянии записи
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return "invalid state: " + e.Reason
}

// TransactionError ошибка хранилища внутри транзакции
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// notFound оборачивает ErrNotFound с названием сущности
func notFound(entity string) error {
	return fmt.Errorf("%s: %w", entity, ErrNotFound)
}
