// flushexpired удаляет из token_blacklist записи об уже истекших токенах.
// Запускается по расписанию (cron, k8s CronJob)
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"cookie-auth-server/config"
	"cookie-auth-server/internal/repository"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	timeout := flag.Duration("timeout", 30*time.Second, "таймаут операции")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	deleted, err := repository.NewBlacklistRepository(db).DeleteExpired(ctx, time.Now())
	if err != nil {
		log.Fatalf("Очистка черного списка не выполнена: %v", err)
	}
	log.Printf("удалено истекших записей из черного списка: %d", deleted)
}
