package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cookie-auth-server/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// Claims : access токен содержит sub, iat, exp и token_type, refresh дополнительно jti
type Claims struct {
	TokenType TokenKind `json:"token_type"`
	jwt.RegisteredClaims
}

// RevocationChecker : проверка черного списка при валидации refresh токенов
type RevocationChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

type JWTService struct {
	cfg         config.JWTConfig
	revocations RevocationChecker
}

func NewJWTService(cfg *config.JWTConfig, revocations RevocationChecker) *JWTService {
	return &JWTService{cfg: *cfg, revocations: revocations}
}

func (service *JWTService) ttl(kind TokenKind) (time.Duration, error) {
	switch kind {
	case AccessToken:
		return service.cfg.AccessTokenTTL, nil
	case RefreshToken:
		return service.cfg.RefreshTokenTTL, nil
	default:
		return 0, fmt.Errorf("неизвестный тип токена: %q", kind)
	}
}

// Issue подписывает токен заданного типа для subject
// Время выпуска передается явно, чтобы срок действия можно было проверять в тестах
func (service *JWTService) Issue(kind TokenKind, subject string, now time.Time) (string, *Claims, error) {
	ttl, err := service.ttl(kind)
	if err != nil {
		return "", nil, err
	}

	claims := &Claims{
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    service.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if kind == RefreshToken {
		claims.ID = uuid.New().String()
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := jwtToken.SignedString([]byte(service.cfg.SecretKey))
	if err != nil {
		return "", nil, fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return signed, claims, nil
}

// Verify проверяет подпись, срок действия и тип токена
// Для refresh токенов дополнительно проверяется черный список
//
// Возвращает:
//   - Claims, если токен валиден
//   - ErrMalformedToken, ErrBadSignature, ErrExpiredToken, ErrWrongType, ErrRevoked
//   - обернутую ошибку хранилища, если черный список недоступен
func (service *JWTService) Verify(ctx context.Context, tokenStr string, now time.Time, expected TokenKind) (*Claims, error) {
	claims := &Claims{}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		// jwt/v5 считает токен истекшим уже при now == exp, истекшим он должен быть только после exp
		jwt.WithLeeway(time.Nanosecond),
	}
	if service.cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(service.cfg.Issuer))
	}

	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(service.cfg.SecretKey), nil
	}, options...)
	if err != nil {
		return nil, classifyJWTError(err)
	}

	if claims.Subject == "" || claims.TokenType == "" {
		return nil, fmt.Errorf("%w: отсутствует sub или token_type", ErrMalformedToken)
	}
	if claims.TokenType != expected {
		return nil, fmt.Errorf("%w: ожидался %s, получен %s", ErrWrongType, expected, claims.TokenType)
	}

	if expected == RefreshToken {
		if claims.ID == "" {
			return nil, fmt.Errorf("%w: refresh токен без jti", ErrMalformedToken)
		}
		blacklisted, err := service.revocations.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("ошибка проверки черного списка: %w", err)
		}
		if blacklisted {
			return nil, fmt.Errorf("%w: jti %s", ErrRevoked, claims.ID)
		}
	}

	return claims, nil
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}
