package ports

import (
	"context"

	"cookie-auth-server/internal/model"
)

// AuthenticationService : протокол сессии поверх cookie
type AuthenticationService interface {
	Login(ctx context.Context, email, password string) (*model.User, *model.TokensPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
}
