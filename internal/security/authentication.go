package security

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cookie-auth-server/internal/model"
)

type contextKey string

const (
	identityContextKey contextKey = "identity"
	authErrContextKey  contextKey = "auth_error"
)

// IdentitySource : откуда получен access токен
type IdentitySource string

const (
	SourceCookie IdentitySource = "cookie"
	SourceBearer IdentitySource = "bearer"
)

type Identity struct {
	User   *model.User
	Claims *Claims
	Source IdentitySource
}

// Authenticator возвращает (nil, nil) для анонимного запроса
type Authenticator interface {
	Resolve(r *http.Request) (*Identity, error)
}

type AccessVerifier interface {
	Verify(ctx context.Context, tokenStr string, now time.Time, expected TokenKind) (*Claims, error)
}

type UserFinder interface {
	FindByUUID(ctx context.Context, uuid string) (*model.User, error)
}

// tokenResolver : общая часть cookie и bearer аутентификации
type tokenResolver struct {
	verifier AccessVerifier
	users    UserFinder
	now      func() time.Time
}

func (t tokenResolver) resolve(ctx context.Context, token string, source IdentitySource) (*Identity, error) {
	claims, err := t.verifier.Verify(ctx, token, t.now(), AccessToken)
	if err != nil {
		return nil, &AuthenticationError{Reason: "access токен не прошел проверку", Err: err}
	}

	user, err := t.users.FindByUUID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, &AuthenticationError{Reason: "пользователь не найден", Err: err}
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	if !user.IsActive {
		return nil, &AuthenticationError{Reason: "пользователь деактивирован"}
	}

	return &Identity{User: user, Claims: claims, Source: source}, nil
}

// CookieAuthenticator читает access токен из cookie access_token
type CookieAuthenticator struct {
	tokenResolver
	jar *CookieJar
}

func NewCookieAuthenticator(verifier AccessVerifier, users UserFinder, jar *CookieJar, now func() time.Time) *CookieAuthenticator {
	return &CookieAuthenticator{
		tokenResolver: tokenResolver{verifier: verifier, users: users, now: now},
		jar:           jar,
	}
}

func (a *CookieAuthenticator) Resolve(r *http.Request) (*Identity, error) {
	token, ok := a.jar.Read(r, AccessTokenCookie)
	if !ok {
		return nil, nil
	}
	return a.resolve(r.Context(), token, SourceCookie)
}

// BearerAuthenticator читает access токен из заголовка Authorization для клиентов без cookie
type BearerAuthenticator struct {
	tokenResolver
}

func NewBearerAuthenticator(verifier AccessVerifier, users UserFinder, now func() time.Time) *BearerAuthenticator {
	return &BearerAuthenticator{tokenResolver{verifier: verifier, users: users, now: now}}
}

func (a *BearerAuthenticator) Resolve(r *http.Request) (*Identity, error) {
	authorizationHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authorizationHeader, "Bearer ") {
		return nil, nil
	}

	token := strings.TrimSpace(strings.TrimPrefix(authorizationHeader, "Bearer "))
	if token == "" {
		return nil, &AuthenticationError{Reason: "пустой Bearer токен", Err: ErrMalformedToken}
	}
	return a.resolve(r.Context(), token, SourceBearer)
}

// ChainAuthenticator опрашивает аутентификаторы в фиксированном порядке
// Первая найденная личность или первая ошибка завершают перебор
type ChainAuthenticator []Authenticator

func (c ChainAuthenticator) Resolve(r *http.Request) (*Identity, error) {
	for _, authenticator := range c {
		identity, err := authenticator.Resolve(r)
		if err != nil {
			return nil, err
		}
		if identity != nil {
			return identity, nil
		}
	}
	return nil, nil
}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func WithAuthError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, authErrContextKey, err)
}

func GetIdentityFromContext(ctx context.Context) (*Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok || identity == nil {
		if err, ok := ctx.Value(authErrContextKey).(error); ok && err != nil {
			return nil, err
		}
		return nil, ErrAnonymous
	}
	return identity, nil
}
