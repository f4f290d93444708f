package service

import (
	"context"
	"log"

	"cookie-auth-server/internal/model"
	"cookie-auth-server/internal/ports"
)

// RevocationService : Postgres как источник истины и Redis как кэш положительных ответов
// Отсутствие ключа в кэше ничего не доказывает, поэтому промах всегда проверяется в БД
type RevocationService struct {
	primary ports.RevocationStore
	cache   ports.RevocationStore
}

func NewRevocationService(primary ports.RevocationStore, cache ports.RevocationStore) *RevocationService {
	return &RevocationService{primary: primary, cache: cache}
}

// Blacklist фиксирует отзыв в БД. Запись в кэш выполняется после и не влияет на результат
func (s *RevocationService) Blacklist(ctx context.Context, entry *model.RevocationEntry) error {
	if err := s.primary.Blacklist(ctx, entry); err != nil {
		return err
	}

	if err := s.cache.Blacklist(ctx, entry); err != nil {
		log.Printf("не удалось записать jti %s в кэш черного списка: %v", entry.JTI, err)
	}
	return nil
}

func (s *RevocationService) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	cached, err := s.cache.IsBlacklisted(ctx, jti)
	if err != nil {
		log.Printf("кэш черного списка недоступен, проверка в БД: %v", err)
	} else if cached {
		return true, nil
	}

	return s.primary.IsBlacklisted(ctx, jti)
}
