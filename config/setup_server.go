package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAccessTokenTTL  = 5 * time.Minute
	defaultRefreshTokenTTL = 24 * time.Hour
)

type AppConfig struct {
	DatabaseConfig DatabaseConfig   `yaml:"databaseConfig"`
	RedisConfig    RedisConfig      `yaml:"redisConfig"`
	ServerAddr     string           `yaml:"serverAddr"`
	JWT            JWTConfig        `yaml:"jwt"`
	Cookies        CookieConfig     `yaml:"cookies"`
	CSRF           CSRFConfig       `yaml:"csrf"`
	CORS           CORSConfig       `yaml:"cors"`
	Revocation     RevocationConfig `yaml:"revocation"`
}

func LoadConfig(path string) (*AppConfig, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseConfig(file)
}

// ParseConfig : разбирает yaml, применяет переменные окружения и значения по умолчанию
func ParseConfig(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *AppConfig) applyEnv() {
	overrides := map[string]*string{
		"AUTH_JWT_SECRET":   &cfg.JWT.SecretKey,
		"AUTH_CSRF_SECRET":  &cfg.CSRF.SecretKey,
		"AUTH_DATABASE_DSN": &cfg.DatabaseConfig.DSN,
		"AUTH_REDIS_ADDR":   &cfg.RedisConfig.Addr,
		"AUTH_SERVER_ADDR":  &cfg.ServerAddr,
	}
	for key, target := range overrides {
		if value := os.Getenv(key); value != "" {
			*target = value
		}
	}

	if origins := os.Getenv("AUTH_CORS_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = nil
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, origin)
			}
		}
	}
}

// Validate : заполняет значения по умолчанию и проверяет обязательные поля
func (cfg *AppConfig) Validate() error {
	if cfg.JWT.SecretKey == "" {
		return errors.New("jwt.secret_key обязателен")
	}
	if cfg.JWT.AccessTokenTTL == 0 {
		cfg.JWT.AccessTokenTTL = defaultAccessTokenTTL
	}
	if cfg.JWT.RefreshTokenTTL == 0 {
		cfg.JWT.RefreshTokenTTL = defaultRefreshTokenTTL
	}
	if cfg.JWT.AccessTokenTTL < 0 || cfg.JWT.RefreshTokenTTL < 0 {
		return errors.New("время жизни токенов должно быть положительным")
	}
	if cfg.JWT.AccessTokenTTL >= cfg.JWT.RefreshTokenTTL {
		return errors.New("access_token_ttl должен быть меньше refresh_token_ttl")
	}

	if cfg.CSRF.SecretKey == "" {
		cfg.CSRF.SecretKey = cfg.JWT.SecretKey
	}
	if cfg.CSRF.CookieName == "" {
		cfg.CSRF.CookieName = "csrftoken"
	}
	if cfg.CSRF.HeaderName == "" {
		cfg.CSRF.HeaderName = "X-CSRFToken"
	}

	if cfg.Cookies.Path == "" {
		cfg.Cookies.Path = "/"
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":8080"
	}

	switch cfg.Revocation.Backend {
	case "":
		cfg.Revocation.Backend = "postgres"
	case "postgres":
	case "redis", "cached":
		if !cfg.RedisConfig.Enabled {
			return fmt.Errorf("revocation.backend=%s требует redisConfig.enabled", cfg.Revocation.Backend)
		}
	default:
		return fmt.Errorf("неизвестный revocation.backend: %s", cfg.Revocation.Backend)
	}

	return nil
}

// AllowedOrigins : в debug режиме разрешены все источники
func (cfg *AppConfig) AllowedOrigins() []string {
	if !cfg.Cookies.Production && len(cfg.CORS.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORS.AllowedOrigins
}

func SetupServer(serverAddress string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              serverAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func SetupDatabase(dsn string) (*Database, error) {
	return NewDatabaseConnection("postgres", dsn)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
