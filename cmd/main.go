package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cookie-auth-server/config"
	"cookie-auth-server/internal/handler"
	"cookie-auth-server/internal/ports"
	"cookie-auth-server/internal/repository"
	"cookie-auth-server/internal/security"
	"cookie-auth-server/internal/service"
	"cookie-auth-server/internal/transport"

	"github.com/joho/godotenv"
)

// @title Cookie-auth-server
// @version 1.0
// @description JWT аутентификация через HttpOnly cookie с CSRF защитой

// @host localhost:8080

// @securityDefinitions.apikey CSRFToken
// @in header
// @name X-CSRFToken
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// .env необязателен, секреты могут прийти из окружения
	if err := godotenv.Load(); err != nil {
		log.Println(".env не найден, используются переменные окружения")
	}

	cfg, err := config.LoadConfig("config.yaml")
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

	if cfg.DatabaseConfig.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("Не удалось применить миграции: %v", err)
		}
	}

	var redisClient *config.RedisClient
	if cfg.RedisConfig.Enabled {
		redisClient, err = config.SetupRedis(&cfg.RedisConfig)
		if err != nil {
			log.Fatalf("Ошибка подключения к Redis: %v", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("Ошибка при закрытии Redis: %v", err)
			}
		}()
	}

	userRepo := repository.NewUserRepository(db)
	revocations := setupRevocationStore(cfg, db, redisClient)

	jwtService := security.NewJWTService(&cfg.JWT, revocations)
	jar := security.NewCookieJar(cfg.Cookies, cfg.JWT, cfg.CSRF)
	csrfGuard := security.NewCSRFGuard(cfg.CSRF, jar)

	authenticators := security.ChainAuthenticator{
		security.NewCookieAuthenticator(jwtService, userRepo, jar, time.Now),
	}
	if cfg.JWT.AllowBearer {
		authenticators = append(authenticators, security.NewBearerAuthenticator(jwtService, userRepo, time.Now))
	}

	userService := service.NewUserService(userRepo)
	authService := service.NewAuthenticationService(userService, jwtService, revocations, time.Now)

	authHandler := handler.NewAuthenticationHandler(authService, jar, csrfGuard)
	userHandler := handler.NewUserHandler(userService)
	pipeline := transport.NewPipeline(authenticators, csrfGuard)

	router := handler.NewRouter(authHandler, userHandler, pipeline, handler.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins(),
		CSRFHeader:     cfg.CSRF.HeaderName,
	})
	srv := config.SetupServer(cfg.ServerAddr, router)

	runServer(ctx, srv)
}

// setupRevocationStore : postgres, redis или postgres с кэшем в redis
func setupRevocationStore(cfg *config.AppConfig, db *config.Database, redisClient *config.RedisClient) ports.RevocationStore {
	blacklistRepo := repository.NewBlacklistRepository(db)

	switch cfg.Revocation.Backend {
	case "redis":
		log.Println("черный список токенов: redis")
		return repository.NewCacheRepository(redisClient, time.Now)
	case "cached":
		log.Println("черный список токенов: postgres + кэш redis")
		return service.NewRevocationService(blacklistRepo, repository.NewCacheRepository(redisClient, time.Now))
	default:
		log.Println("черный список токенов: postgres")
		return blacklistRepo
	}
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
