package config

import (
	"net/http"
	"time"
)

type DatabaseConfig struct {
	DSN         string `yaml:"dsn"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
}

type JWTConfig struct {
	SecretKey       string        `yaml:"secret_key"`
	Issuer          string        `yaml:"issuer"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
	AllowBearer     bool          `yaml:"allow_bearer"`
}

// CookieConfig : политика cookie. Production и CrossSite определяют Secure и SameSite
type CookieConfig struct {
	Production bool   `yaml:"production"`
	CrossSite  bool   `yaml:"cross_site"`
	Domain     string `yaml:"domain"`
	Path       string `yaml:"path"`
}

// Secure : cross-site cookie (SameSite=None) браузер принимает только с Secure
func (c CookieConfig) Secure() bool {
	return c.Production || c.CrossSite
}

func (c CookieConfig) SameSite() http.SameSite {
	if c.CrossSite {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

type CSRFConfig struct {
	SecretKey  string `yaml:"secret_key"`
	CookieName string `yaml:"cookie_name"`
	HeaderName string `yaml:"header_name"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RevocationConfig struct {
	// Backend : postgres, redis или cached (postgres + redis кэш)
	Backend string `yaml:"backend"`
}
