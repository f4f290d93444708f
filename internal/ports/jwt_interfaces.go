package ports

import (
	"context"
	"time"

	"cookie-auth-server/internal/model"
	"cookie-auth-server/internal/security"
)

type TokenCodec interface {
	Issue(kind security.TokenKind, subject string, now time.Time) (string, *security.Claims, error)
	Verify(ctx context.Context, tokenStr string, now time.Time, expected security.TokenKind) (*security.Claims, error)
}

// RevocationStore : черный список refresh токенов
// Blacklist идемпотентен и безопасен при конкурентных вызовах
type RevocationStore interface {
	Blacklist(ctx context.Context, entry *model.RevocationEntry) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}
