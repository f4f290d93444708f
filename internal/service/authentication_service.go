package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"cookie-auth-server/internal/model"
	"cookie-auth-server/internal/ports"
	"cookie-auth-server/internal/security"
)

// AuthenticationService : Anonymous -> Authenticated -> (Refreshed)* -> LoggedOut
type AuthenticationService struct {
	users       ports.UserService
	codec       ports.TokenCodec
	revocations ports.RevocationStore
	now         func() time.Time
}

func NewAuthenticationService(
	users ports.UserService,
	codec ports.TokenCodec,
	revocations ports.RevocationStore,
	now func() time.Time,
) *AuthenticationService {
	if now == nil {
		now = time.Now
	}
	return &AuthenticationService{
		users:       users,
		codec:       codec,
		revocations: revocations,
		now:         now,
	}
}

// Login проверяет учетные данные и выпускает access и refresh токены
// refresh получает новый jti при каждом входе
func (s *AuthenticationService) Login(ctx context.Context, email, password string) (*model.User, *model.TokensPair, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	accessToken, _, err := s.codec.Issue(security.AccessToken, user.UUID, now)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка генерации access токена: %w", err)
	}
	refreshToken, _, err := s.codec.Issue(security.RefreshToken, user.UUID, now)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка генерации refresh токена: %w", err)
	}

	return user, &model.TokensPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh выпускает новый access токен по refresh токену
// Refresh токен не ротируется: он остается действительным до exp или до logout
//
// Возвращает:
//   - ErrNoRefreshToken, если токен не передан
//   - ErrInvalidToken вместе с причиной (истек, отозван, подпись), если токен не прошел проверку
//   - ErrPersistence, если черный список недоступен
func (s *AuthenticationService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	now := s.now()
	claims, err := s.codec.Verify(ctx, refreshToken, now, security.RefreshToken)
	if err != nil {
		if security.IsTokenError(err) {
			log.Printf("refresh отклонен: %v", err)
			return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
		return "", fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	accessToken, _, err := s.codec.Issue(security.AccessToken, claims.Subject, now)
	if err != nil {
		return "", fmt.Errorf("ошибка генерации access токена: %w", err)
	}

	return accessToken, nil
}

// Logout добавляет jti refresh токена в черный список
// Любой отказ, включая уже отозванный или истекший токен, возвращается как ErrLogout
func (s *AuthenticationService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrNoRefreshToken
	}

	now := s.now()
	claims, err := s.codec.Verify(ctx, refreshToken, now, security.RefreshToken)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLogout, err)
	}

	entry := &model.RevocationEntry{
		JTI:           claims.ID,
		UserUUID:      claims.Subject,
		ExpiresAt:     claims.ExpiresAt.Time,
		BlacklistedAt: now,
	}
	if err := s.revocations.Blacklist(ctx, entry); err != nil {
		return fmt.Errorf("%w: %w", ErrLogout, err)
	}

	return nil
}
