package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cookie-auth-server/config"
	"cookie-auth-server/internal/handler"
	"cookie-auth-server/internal/model"
	"cookie-auth-server/internal/model/requestresponse"
	"cookie-auth-server/internal/repository"
	"cookie-auth-server/internal/security"
	"cookie-auth-server/internal/service"
	"cookie-auth-server/internal/transport"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryUsers : пользователи в памяти вместо Postgres
type memoryUsers struct {
	byUUID map[string]*model.User
}

func (m *memoryUsers) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	for _, existing := range m.byUUID {
		if existing.Email == user.Email {
			return nil, model.ErrDuplicateEmail
		}
	}
	created := *user
	created.CreatedAt = time.Now()
	m.byUUID[user.UUID] = &created
	copied := created
	return &copied, nil
}

func (m *memoryUsers) FindByUUID(_ context.Context, uuid string) (*model.User, error) {
	user, ok := m.byUUID[uuid]
	if !ok {
		return nil, model.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range m.byUUID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *memoryUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *memoryUsers) UpdateEmail(_ context.Context, uuid, email string) error {
	user, ok := m.byUUID[uuid]
	if !ok {
		return model.ErrNotFound
	}
	user.Email = email
	return nil
}

// browser хранит cookie между запросами так же, как это делает браузер
type browser struct {
	t       *testing.T
	router  http.Handler
	cookies map[string]string
}

func (b *browser) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	b.t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(b.t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	for name, value := range headers {
		req.Header.Set(name, value)
	}
	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(b.cookies, cookie.Name)
			continue
		}
		b.cookies[cookie.Name] = cookie.Value
	}
	return rec
}

func (b *browser) csrfHeader() map[string]string {
	return map[string]string{"X-CSRFToken": b.cookies["csrftoken"]}
}

func setCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	result := map[string]*http.Cookie{}
	for _, cookie := range rec.Result().Cookies() {
		result[cookie.Name] = cookie
	}
	return result
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg, err := config.ParseConfig([]byte(`
jwt:
  secret_key: "handler-test-secret"
  issuer: "test"
  access_token_ttl: 5m
  refresh_token_ttl: 24h
  allow_bearer: true
`))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := &memoryUsers{byUUID: map[string]*model.User{}}
	revocations := repository.NewCacheRepository(&config.RedisClient{Client: client}, time.Now)

	jwtService := security.NewJWTService(&cfg.JWT, revocations)
	jar := security.NewCookieJar(cfg.Cookies, cfg.JWT, cfg.CSRF)
	csrfGuard := security.NewCSRFGuard(cfg.CSRF, jar)
	authenticators := security.ChainAuthenticator{
		security.NewCookieAuthenticator(jwtService, users, jar, time.Now),
		security.NewBearerAuthenticator(jwtService, users, time.Now),
	}

	userService := service.NewUserService(users)
	authService := service.NewAuthenticationService(userService, jwtService, revocations, time.Now)

	return handler.NewRouter(
		handler.NewAuthenticationHandler(authService, jar, csrfGuard),
		handler.NewUserHandler(userService),
		transport.NewPipeline(authenticators, csrfGuard),
		handler.RouterOptions{AllowedOrigins: cfg.AllowedOrigins(), CSRFHeader: cfg.CSRF.HeaderName},
	)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var result T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func TestSessionLifecycle(t *testing.T) {
	b := &browser{t: t, router: newTestRouter(t), cookies: map[string]string{}}
	credentials := map[string]string{"email": "a@b.com", "password": "P@ssw0rd!"}

	// регистрация не выполняет вход
	rec := b.do(http.MethodPost, "/register/", credentials, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	profile := decode[model.Profile](t, rec)
	assert.Equal(t, "a@b.com", profile.Email)
	assert.NotEmpty(t, profile.UUID)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, setCookies(rec), security.AccessTokenCookie)
	assert.Contains(t, b.cookies, "csrftoken")

	rec = b.do(http.MethodGet, "/me/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// вход
	rec = b.do(http.MethodPost, "/login/", credentials, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), b.cookies[security.AccessTokenCookie])
	assert.Equal(t, profile, decode[requestresponse.LoginResponse](t, rec).User)

	cookies := setCookies(rec)
	require.Contains(t, cookies, security.AccessTokenCookie)
	require.Contains(t, cookies, security.RefreshTokenCookie)
	require.Contains(t, cookies, "csrftoken")
	assert.True(t, cookies[security.AccessTokenCookie].HttpOnly)
	assert.True(t, cookies[security.RefreshTokenCookie].HttpOnly)
	assert.False(t, cookies["csrftoken"].HttpOnly)

	rec = b.do(http.MethodGet, "/me/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, profile, decode[model.Profile](t, rec))

	// изменение профиля требует CSRF
	update := map[string]string{"email": "new@b.com"}
	rec = b.do(http.MethodPatch, "/me/", update, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = b.do(http.MethodPatch, "/me/", update, b.csrfHeader())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "new@b.com", decode[model.Profile](t, rec).Email)

	// refresh выдает новый access, refresh cookie не меняется
	refreshBefore := b.cookies[security.RefreshTokenCookie]
	rec = b.do(http.MethodPost, "/token/refresh/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, setCookies(rec), security.AccessTokenCookie)
	assert.NotContains(t, setCookies(rec), security.RefreshTokenCookie)
	assert.Equal(t, refreshBefore, b.cookies[security.RefreshTokenCookie])

	// выход
	rec = b.do(http.MethodPost, "/logout/", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = b.do(http.MethodPost, "/logout/", nil, b.csrfHeader())
	require.Equal(t, http.StatusResetContent, rec.Code, rec.Body.String())
	cleared := setCookies(rec)
	assert.Negative(t, cleared[security.AccessTokenCookie].MaxAge)
	assert.Negative(t, cleared[security.RefreshTokenCookie].MaxAge)
	assert.NotContains(t, b.cookies, security.AccessTokenCookie)

	rec = b.do(http.MethodGet, "/me/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// отозванный refresh больше не работает
	b.cookies[security.RefreshTokenCookie] = refreshBefore
	rec = b.do(http.MethodPost, "/token/refresh/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = b.do(http.MethodPost, "/logout/", nil, b.csrfHeader())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_Failures(t *testing.T) {
	b := &browser{t: t, router: newTestRouter(t), cookies: map[string]string{}}
	rec := b.do(http.MethodPost, "/register/", map[string]string{"email": "a@b.com", "password": "P@ssw0rd!"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name     string
		body     any
		raw      string
		expected int
	}{
		{name: "wrong password", body: map[string]string{"email": "a@b.com", "password": "wrong-password"}, expected: http.StatusBadRequest},
		{name: "unknown email", body: map[string]string{"email": "x@b.com", "password": "P@ssw0rd!"}, expected: http.StatusBadRequest},
		{name: "missing password", body: map[string]string{"email": "a@b.com"}, expected: http.StatusBadRequest},
		{name: "broken json", raw: "{", expected: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.raw != "" {
				req = httptest.NewRequest(http.MethodPost, "/login/", strings.NewReader(tt.raw))
			} else {
				payload, err := json.Marshal(tt.body)
				require.NoError(t, err)
				req = httptest.NewRequest(http.MethodPost, "/login/", bytes.NewReader(payload))
			}
			rec := httptest.NewRecorder()
			b.router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expected, rec.Code)
			assert.NotContains(t, setCookies(rec), security.AccessTokenCookie)
			assert.NotContains(t, setCookies(rec), security.RefreshTokenCookie)
		})
	}
}

func TestRegister_Validation(t *testing.T) {
	b := &browser{t: t, router: newTestRouter(t), cookies: map[string]string{}}

	rec := b.do(http.MethodPost, "/register/", map[string]string{"email": "broken", "password": "123"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	response := decode[requestresponse.ErrorResponse](t, rec)
	assert.Contains(t, response.Error.Fields, "email")
	assert.Contains(t, response.Error.Fields, "password")

	rec = b.do(http.MethodPost, "/register/", map[string]string{"email": "a@b.com", "password": "P@ssw0rd!"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = b.do(http.MethodPost, "/register/", map[string]string{"email": "a@b.com", "password": "P@ssw0rd!"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[requestresponse.ErrorResponse](t, rec).Error.Fields, "email")
}

func TestRefresh_WithoutCookie(t *testing.T) {
	b := &browser{t: t, router: newTestRouter(t), cookies: map[string]string{}}

	rec := b.do(http.MethodPost, "/token/refresh/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	b.cookies[security.RefreshTokenCookie] = "garbage"
	rec = b.do(http.MethodPost, "/token/refresh/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_WithExpiredAccessCookie(t *testing.T) {
	b := &browser{t: t, router: newTestRouter(t), cookies: map[string]string{}}
	credentials := map[string]string{"email": "a@b.com", "password": "P@ssw0rd!"}
	require.Equal(t, http.StatusCreated, b.do(http.MethodPost, "/register/", credentials, nil).Code)
	require.Equal(t, http.StatusOK, b.do(http.MethodPost, "/login/", credentials, nil).Code)

	// поврежденный access cookie не мешает публичному refresh
	b.cookies[security.AccessTokenCookie] = "stale"
	rec := b.do(http.MethodPost, "/token/refresh/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = b.do(http.MethodGet, "/me/", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerClientSkipsCSRF(t *testing.T) {
	b := &browser{t: t, router: newTestRouter(t), cookies: map[string]string{}}
	credentials := map[string]string{"email": "a@b.com", "password": "P@ssw0rd!"}
	require.Equal(t, http.StatusCreated, b.do(http.MethodPost, "/register/", credentials, nil).Code)
	require.Equal(t, http.StatusOK, b.do(http.MethodPost, "/login/", credentials, nil).Code)

	access := b.cookies[security.AccessTokenCookie]
	bearer := &browser{t: t, router: b.router, cookies: map[string]string{}}

	rec := bearer.do(http.MethodPatch, "/me/", map[string]string{"email": "bearer@b.com"},
		map[string]string{"Authorization": "Bearer " + access})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "bearer@b.com", decode[model.Profile](t, rec).Email)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
