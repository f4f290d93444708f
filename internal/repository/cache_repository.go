package repository

import (
	"context"
	"fmt"
	"time"

	"cookie-auth-server/config"
	"cookie-auth-server/internal/model"
	"cookie-auth-server/internal/util"
)

// CacheRepository : черный список в Redis. Ключ живет до истечения самого токена
type CacheRepository struct {
	client *config.RedisClient
	now    func() time.Time
}

func NewCacheRepository(rdb *config.RedisClient, now func() time.Time) *CacheRepository {
	return &CacheRepository{rdb, now}
}

func (r *CacheRepository) Blacklist(ctx context.Context, entry *model.RevocationEntry) error {
	ttl := entry.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		// токен уже истек, exp отклонит его и без записи
		return nil
	}

	// SETNX: повторный вызов не продлевает и не перезаписывает ключ
	err := r.client.Client.SetNX(ctx, r.key(entry.JTI), entry.BlacklistedAt.Unix(), ttl).Err()
	if err != nil {
		return util.LogError("ошибка сохранения в Redis", err)
	}

	return nil
}

func (r *CacheRepository) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	count, err := r.client.Client.Exists(ctx, r.key(jti)).Result()
	if err != nil {
		return false, util.LogError("ошибка чтения черного списка из Redis", err)
	}
	return count > 0, nil
}

func (r *CacheRepository) key(jti string) string {
	return fmt.Sprintf("token:blacklist:%s", jti)
}
