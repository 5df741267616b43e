package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=3000"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	PublicURL string `env:"PUBLIC_URL, default=http://localhost:3000"`

	JWTSecret            string        `env:"JWT_SECRET"`
	JWTExpiresIn         time.Duration `env:"JWT_EXPIRES_IN,          default=2160h"`
	JWTCookieExpiresDays int           `env:"JWT_COOKIE_EXPIRES_DAYS, default=90"`

	RateLimitMax    int64         `env:"RATE_LIMIT_MAX,    default=100"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW, default=1h"`

	Mongo    MongoConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
	Checkout CheckoutConfig
}

type MongoConfig struct {
	// URI may contain a <PASSWORD> placeholder substituted with Password.
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Password string `env:"MONGO_PASSWORD"`
	Database string `env:"MONGO_DB,  default=natours"`
}

// DSN returns the connection string with the password substituted in.
func (m MongoConfig) DSN() string {
	return strings.ReplaceAll(m.URI, "<PASSWORD>", m.Password)
}

type RedisConfig struct {
	Enabled bool   `env:"REDIS_ENABLED, default=false"`
	Addr    string `env:"REDIS_ADDR,    default=localhost:6379"`
	DB      int    `env:"REDIS_DB,      default=0"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST, default=localhost"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"EMAIL_FROM, default=Natours <hello@natours.io>"`
}

type CheckoutConfig struct {
	BaseURL string `env:"CHECKOUT_BASE_URL, default=https://checkout.example.com"`
}

// IsProduction reports whether the runtime mode is production. Everything
// else behaves as development.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	return &cfg, nil
}
