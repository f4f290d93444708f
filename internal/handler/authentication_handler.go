package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cookie-auth-server/internal/model/requestresponse"
	"cookie-auth-server/internal/ports"
	"cookie-auth-server/internal/security"
	"cookie-auth-server/internal/service"
	"cookie-auth-server/internal/util"
)

type AuthenticationHandler struct {
	ports.AuthenticationService
	jar  *security.CookieJar
	csrf *security.CSRFGuard
}

func NewAuthenticationHandler(
	authenticationService ports.AuthenticationService,
	jar *security.CookieJar,
	csrf *security.CSRFGuard,
) *AuthenticationHandler {
	return &AuthenticationHandler{
		authenticationService,
		jar,
		csrf,
	}
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Проверяет email и пароль, выставляет cookie access_token, refresh_token и csrftoken
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.LoginResponse "Профиль пользователя, токены в cookie"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или неверные учетные данные"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login/ [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return
	}

	if fields := util.ValidateStruct(req); fields != nil {
		util.HandleValidationError(w, "email и password обязательны", fields)
		return
	}

	user, tokens, err := h.AuthenticationService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			util.HandleError(w, service.ErrInvalidCredentials.Error(), http.StatusBadRequest)
			return
		}
		log.Println(err)
		util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	// новая сессия получает новый CSRF токен
	if _, err := h.csrf.Rotate(w); err != nil {
		log.Println(err)
		util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}
	h.jar.WriteAuthCookies(w, tokens.AccessToken, tokens.RefreshToken)

	util.WriteJSON(w, http.StatusOK, requestresponse.LoginResponse{User: user.Profile()})
}

// RefreshToken godoc
// @Summary Обновление access токена
// @Description Выпускает новый access токен по cookie refresh_token. Refresh токен не меняется
// @Tags Authentication
// @Produce json
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Нет refresh токена или он невалиден"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /token/refresh/ [post]
func (h *AuthenticationHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	refreshToken, _ := h.jar.Read(r, security.RefreshTokenCookie)

	accessToken, err := h.AuthenticationService.Refresh(r.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoRefreshToken):
			util.HandleError(w, service.ErrNoRefreshToken.Error(), http.StatusUnauthorized)
		case errors.Is(err, service.ErrInvalidToken):
			util.HandleError(w, service.ErrInvalidToken.Error(), http.StatusUnauthorized)
		default:
			log.Println(err)
			util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	h.jar.WriteAccessCookie(w, accessToken)
	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: "access токен успешно обновлен"})
}

// Logout godoc
// @Summary Завершение сессии
// @Description Добавляет refresh токен из cookie в черный список и удаляет auth cookie. Требует заголовок X-CSRFToken
// @Tags Authentication
// @Produce json
// @Param X-CSRFToken header string true "Значение cookie csrftoken"
// @Success 205 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Не удалось отозвать токен"
// @Failure 401 {object} requestresponse.ErrorResponse "Нет refresh токена"
// @Failure 403 {object} requestresponse.ErrorResponse "CSRF проверка не пройдена"
// @Router /logout/ [post]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken, _ := h.jar.Read(r, security.RefreshTokenCookie)

	if err := h.AuthenticationService.Logout(r.Context(), refreshToken); err != nil {
		if errors.Is(err, service.ErrNoRefreshToken) {
			util.HandleError(w, service.ErrNoRefreshToken.Error(), http.StatusUnauthorized)
			return
		}
		log.Println(err)
		util.HandleError(w, service.ErrLogout.Error(), http.StatusBadRequest)
		return
	}

	h.jar.ClearAuthCookies(w)
	util.WriteJSON(w, http.StatusResetContent, requestresponse.MessageResponse{Message: "вы успешно вышли из системы"})
}
