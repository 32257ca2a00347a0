package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds runtime configuration. It is built once at startup and shared read-only.
type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"dev"`
	ServerPort string `env:"SERVER_PORT" envDefault:"8000"`

	SecretKey                string `env:"SECRET_KEY" envDefault:"change_me"`
	Algorithm                string `env:"ALGORITHM" envDefault:"HS256"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`

	DatabaseURL       string        `env:"DATABASE_URL" envDefault:"sqlite://./solar_sizing.db"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	ResetDB           bool          `env:"RESET_DB" envDefault:"false"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	StripeSecretKey     string          `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string          `env:"STRIPE_WEBHOOK_SECRET"`
	FrontendDomain      string          `env:"FRONTEND_DOMAIN" envDefault:"http://localhost:3000"`
	ActivationFee       decimal.Decimal `env:"ACTIVATION_FEE" envDefault:"49.00"`
	ActivationCurrency  string          `env:"ACTIVATION_CURRENCY" envDefault:"usd"`

	RedisAddr string `env:"REDIS_ADDR"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	SwaggerHost string `env:"SWAGGER_HOST"`
}

var supportedAlgorithms = map[string]bool{"HS256": true, "HS384": true, "HS512": true}

// Load reads configuration from the environment, after applying a local .env file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	origins := make([]string, 0, len(c.AllowedOrigins))
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c.AllowedOrigins = origins
	c.FrontendDomain = strings.TrimRight(c.FrontendDomain, "/")

	c.Algorithm = strings.ToUpper(c.Algorithm)
	if !supportedAlgorithms[c.Algorithm] {
		return fmt.Errorf("unsupported token algorithm %q", c.Algorithm)
	}
	if c.AccessTokenExpireMinutes <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.ActivationFee.IsNegative() {
		return errors.New("ACTIVATION_FEE must not be negative")
	}
	return nil
}

// AccessTokenTTL is the lifetime of issued bearer tokens.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// StripeConfigured reports whether checkout sessions can be created.
func (c *Config) StripeConfigured() bool {
	return c.StripeSecretKey != ""
}

// IsDev reports whether the process runs in a development environment.
func (c *Config) IsDev() bool {
	return c.AppEnv == "dev" || c.AppEnv == "development"
}
