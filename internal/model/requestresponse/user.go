package requestresponse

// RegisterRequest : тело запроса регистрации
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email" example:"a@b.com"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72,notnumeric,nefieldfold=Email" example:"P@ssw0rd!"`
}

// UpdateProfileRequest : тело PATCH /me/. Поля, которые не переданы, не меняются
type UpdateProfileRequest struct {
	Email *string `json:"email,omitempty" validate:"omitnil,required,email" example:"new@b.com"`
}

// ErrorDetail : детальная информация об ошибке
type ErrorDetail struct {
	Code   int               `json:"code" example:"400"`
	Text   string            `json:"text" example:"неверные учетные данные"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ErrorResponse : стандартная структура ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
