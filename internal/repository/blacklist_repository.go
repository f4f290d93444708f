package repository

import (
	"context"
	"time"

	"cookie-auth-server/config"
	"cookie-auth-server/internal/model"
	"cookie-auth-server/internal/util"

	"github.com/jmoiron/sqlx"
)

// BlacklistRepository : таблица token_blacklist, основное хранилище отозванных refresh токенов
type BlacklistRepository struct {
	*config.Database
}

func NewBlacklistRepository(database *config.Database) *BlacklistRepository {
	return &BlacklistRepository{database}
}

// Blacklist добавляет jti в черный список
// Повторный вызов с тем же jti ничего не меняет и не возвращает ошибку
func (r *BlacklistRepository) Blacklist(ctx context.Context, entry *model.RevocationEntry) error {
	query := `INSERT INTO token_blacklist (jti, user_uuid, expires_at, blacklisted_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (jti) DO NOTHING
	`

	_, err := r.DB.ExecContext(ctx, query,
		entry.JTI,
		entry.UserUUID,
		entry.ExpiresAt,
		entry.BlacklistedAt,
	)
	if err != nil {
		return util.LogError("ошибка вставки в черный список", err)
	}

	return nil
}

// IsBlacklisted проверяет наличие jti в черном списке
func (r *BlacklistRepository) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE jti = $1)`
	if err := sqlx.GetContext(ctx, r.DB, &exists, query, jti); err != nil {
		return false, util.LogError("ошибка проверки черного списка", err)
	}
	return exists, nil
}

// DeleteExpired удаляет записи о токенах, срок которых уже истек
// Такие токены отклоняются по exp и без черного списка
func (r *BlacklistRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM token_blacklist WHERE expires_at < $1`

	result, err := r.DB.ExecContext(ctx, query, now)
	if err != nil {
		return 0, util.LogError("не удалось очистить черный список", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, util.LogError("не удалось получить число удаленных записей", err)
	}
	return deleted, nil
}
