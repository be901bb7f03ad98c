package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the registry.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// SuperAdmin is the address of the initializing identity. It holds the
	// immutable SuperAdmin role plus the initial Admin grant.
	SuperAdmin string `envconfig:"SUPER_ADMIN_ACCOUNT" required:"true"`

	// AllowInsecureAuth trusts the bare account header instead of requiring
	// signed requests. Never enable in production.
	AllowInsecureAuth bool `envconfig:"ALLOW_INSECURE_AUTH" default:"false"`

	// PGDSN enables the Postgres audit trail when set.
	PGDSN string `envconfig:"PG_DSN" default:""`

	RedisAddr    string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	EventChannel string `envconfig:"EVENT_CHANNEL" default:"scriptorium.events"`

	// WebhookURLs receive asynchronous event deliveries via the worker.
	WebhookURLs []string `envconfig:"WEBHOOK_URLS"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SuperAdmin == "" {
		return nil, errors.New("super admin account must be provided")
	}
	if cfg.IsProduction() && cfg.AllowInsecureAuth {
		return nil, errors.New("insecure auth cannot be enabled in production")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
