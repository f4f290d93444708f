package security

import (
	"errors"
	"fmt"
)

// Ошибки уровня токена. Детали пишутся в лог, клиенту всегда отдается 401
var (
	ErrMalformedToken = errors.New("токен поврежден")
	ErrExpiredToken   = errors.New("срок действия токена истек")
	ErrBadSignature   = errors.New("неверная подпись токена")
	ErrWrongType      = errors.New("неверный тип токена")
	ErrRevoked        = errors.New("токен отозван")

	ErrCSRFMismatch = errors.New("CSRF токен отсутствует или не совпадает")
	ErrAnonymous    = errors.New("пользователь не авторизован")
)

// AuthenticationError : общая категория для всех отказов резолвера
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err == nil {
		return "ошибка аутентификации: " + e.Reason
	}
	return fmt.Sprintf("ошибка аутентификации: %s: %v", e.Reason, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// IsTokenError : true для ошибок, вызванных самим токеном, а не хранилищем
func IsTokenError(err error) bool {
	return errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrBadSignature) ||
		errors.Is(err, ErrWrongType) ||
		errors.Is(err, ErrRevoked)
}
