package security_test

import (
	"context"
	"testing"
	"time"

	"cookie-auth-server/config"
	"cookie-auth-server/internal/model"
	"cookie-auth-server/internal/security"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:       "test-secret",
		Issuer:          "test",
		AccessTokenTTL:  5 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func testCSRFConfig() config.CSRFConfig {
	return config.CSRFConfig{
		SecretKey:  "csrf-secret",
		CookieName: "csrftoken",
		HeaderName: "X-CSRFToken",
	}
}

// stubRevocations : черный список в памяти
type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s *stubRevocations) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[jti], nil
}

// stubUsers : пользователи в памяти
type stubUsers struct {
	users map[string]*model.User
	err   error
}

func (s *stubUsers) FindByUUID(_ context.Context, uuid string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[uuid]
	if !ok {
		return nil, model.ErrNotFound
	}
	return user, nil
}

func newTestJWTService(revocations security.RevocationChecker) *security.JWTService {
	cfg := testJWTConfig()
	return security.NewJWTService(&cfg, revocations)
}

func issue(t *testing.T, service *security.JWTService, kind security.TokenKind, subject string, at time.Time) string {
	t.Helper()
	token, _, err := service.Issue(kind, subject, at)
	require.NoError(t, err)
	return token
}
