package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is empty because every field carries its full variable name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

type Config struct {
	App      AppConfig
	Platform PlatformConfig
	Redis    RedisConfig
	Cookie   CookieConfig
	Session  SessionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CAC_APP_ENV" default:"dev"`
	Port         string `envconfig:"CAC_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CAC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CAC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// PlatformConfig locates the upstream ConnectedAutoCare API.
type PlatformConfig struct {
	BaseURL string        `envconfig:"CAC_PLATFORM_BASE_URL" default:"http://localhost:5000"`
	Timeout time.Duration `envconfig:"CAC_PLATFORM_TIMEOUT" default:"15s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CAC_REDIS_URL"`
	Address      string        `envconfig:"CAC_REDIS_ADDR"`
	Password     string        `envconfig:"CAC_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Configured reports whether a Redis endpoint was provided at all. When it
// is absent the gateway falls back to the in-memory token store.
func (r RedisConfig) Configured() bool {
	return r.URL != "" || r.Address != ""
}

// CookieConfig governs the signed session cookie handed to the browser.
type CookieConfig struct {
	Secret     string `envconfig:"CAC_COOKIE_SECRET" required:"true"`
	Issuer     string `envconfig:"CAC_COOKIE_ISSUER" default:"connectedautocare"`
	Name       string `envconfig:"CAC_COOKIE_NAME" default:"cac_session"`
	TTLMinutes int    `envconfig:"CAC_COOKIE_TTL_MINUTES" default:"10080"`
	Secure     bool   `envconfig:"CAC_COOKIE_SECURE" default:"false"`
}

// TTL returns the cookie lifetime configured in minutes.
func (c CookieConfig) TTL() time.Duration {
	if c.TTLMinutes <= 0 {
		return 0
	}
	return time.Duration(c.TTLMinutes) * time.Minute
}

// SessionConfig governs the server-side token slots.
type SessionConfig struct {
	TokenTTLMinutes int `envconfig:"CAC_SESSION_TOKEN_TTL_MINUTES" default:"10080"`
}

// TokenTTL returns the idle lifetime of a persisted token slot.
func (s SessionConfig) TokenTTL() time.Duration {
	if s.TokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.TokenTTLMinutes) * time.Minute
}
