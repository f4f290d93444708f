package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cookie-auth-server/internal/model"
	"cookie-auth-server/internal/model/requestresponse"
	"cookie-auth-server/internal/ports"
	"cookie-auth-server/internal/security"
	"cookie-auth-server/internal/service"
	"cookie-auth-server/internal/util"
)

type UserHandler struct {
	ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService}
}

// RegisterUser godoc
// @Summary Регистрация пользователя
// @Description Создает пользователя. Вход не выполняется, cookie не выставляются
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.RegisterRequest true "Данные пользователя"
// @Success 201 {object} model.Profile
// @Failure 400 {object} requestresponse.ErrorResponse "Ошибки валидации по полям"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /register/ [post]
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, user.Profile())
}

// GetMe godoc
// @Summary Профиль текущего пользователя
// @Tags Users
// @Produce json
// @Success 200 {object} model.Profile
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /me/ [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity, err := security.GetIdentityFromContext(r.Context())
	if err != nil {
		util.HandleError(w, "не авторизован", http.StatusUnauthorized)
		return
	}

	util.WriteJSON(w, http.StatusOK, identity.User.Profile())
}

// UpdateMe godoc
// @Summary Изменение профиля текущего пользователя
// @Description Меняет email. Требует заголовок X-CSRFToken
// @Tags Users
// @Accept json
// @Produce json
// @Param X-CSRFToken header string true "Значение cookie csrftoken"
// @Param body body requestresponse.UpdateProfileRequest true "Изменяемые поля"
// @Success 200 {object} model.Profile
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /me/ [patch]
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	identity, err := security.GetIdentityFromContext(r.Context())
	if err != nil {
		util.HandleError(w, "не авторизован", http.StatusUnauthorized)
		return
	}

	var req requestresponse.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.UpdateProfile(r.Context(), identity.User.UUID, req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, user.Profile())
}

func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		util.HandleValidationError(w, "ошибка валидации", validationErr.Fields)
	case errors.Is(err, model.ErrNotFound):
		util.HandleError(w, "не авторизован", http.StatusUnauthorized)
	default:
		log.Println(err)
		util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
	}
}
