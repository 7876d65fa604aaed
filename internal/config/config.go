// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// SMTP holds outbound mail relay settings.
type SMTP struct {
	Host     string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"MAIL_FROM"`
}

// Config is the full server configuration.
type Config struct {
	ListenAddr    string `env:"LISTEN_ADDR" envDefault:":8080"`
	// FrontendURL is a comma-separated list of browser origins allowed by CORS.
	FrontendURL   string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
	StaticDir     string `env:"STATIC_DIR"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`
	DatabaseURL string `env:"DATABASE_URL"`

	SMTP             SMTP
	OwnerEmail       string        `env:"OWNER_EMAIL,notEmpty"`
	OwnerName        string        `env:"OWNER_NAME" envDefault:"Vedant"`
	MailMaxAttempts  int           `env:"MAIL_MAX_ATTEMPTS" envDefault:"3"`
	MailRetryBackoff time.Duration `env:"MAIL_RETRY_BACKOFF" envDefault:"500ms"`

	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	RateLimitWindow     time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	RateLimitPerIP      int           `env:"RATE_LIMIT_PER_IP" envDefault:"3"`
	RateLimitPerEmail   int           `env:"RATE_LIMIT_PER_EMAIL" envDefault:"2"`
	VerifyRatePerMinute int           `env:"VERIFY_RATE_PER_MINUTE" envDefault:"30"`

	FilterRulesPath string `env:"FILTER_RULES_PATH"`
	AdminToken      string `env:"ADMIN_TOKEN"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"INFO"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SMTP.From == "" {
		return fmt.Errorf("config: MAIL_FROM or SMTP_USERNAME must be set")
	}
	if c.MailMaxAttempts < 1 {
		return fmt.Errorf("config: MAIL_MAX_ATTEMPTS must be at least 1, got %d", c.MailMaxAttempts)
	}
	if c.RateLimitPerIP < 1 || c.RateLimitPerEmail < 1 {
		return fmt.Errorf("config: rate limits must be positive")
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("config: RATE_LIMIT_WINDOW must be positive")
	}
	if c.TokenTTL < 0 {
		return fmt.Errorf("config: TOKEN_TTL must not be negative")
	}
	return nil
}
