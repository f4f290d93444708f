package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("неверные учетные данные")
	ErrNoRefreshToken     = errors.New("refresh токен не найден в запросе")
	ErrInvalidToken       = errors.New("невалидный токен")
	ErrLogout             = errors.New("ошибка при выходе")
	ErrPersistence        = errors.New("ошибка хранилища")
)

// ValidationError : ошибки по полям, клиент получает 400 с детализацией
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return "ошибка валидации: " + strings.Join(parts, "; ")
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}
