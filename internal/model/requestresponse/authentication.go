package requestresponse

import "cookie-auth-server/internal/model"

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	Email    string `json:"email" validate:"required" example:"a@b.com"`
	Password string `json:"password" validate:"required" example:"P@ssw0rd123"`
}

// LoginResponse : ответ на успешную аутентификацию. Токены передаются только в cookie
type LoginResponse struct {
	User model.Profile `json:"user"`
}

// MessageResponse : ответ на refresh и logout
type MessageResponse struct {
	Message string `json:"message" example:"access токен успешно обновлен"`
}
