package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress        string        `env:"RUN_ADDRESS" envDefault:":8080"`
	DatabaseURI       string        `env:"DATABASE_URI"`
	RedisURL          string        `env:"REDIS_URL"`
	ContentBackendURL string        `env:"CONTENT_BACKEND_URL"`
	InternalToken     string        `env:"INTERNAL_API_TOKEN"`
	Currency          string        `env:"PAYMENT_CURRENCY" envDefault:"INR"`
	RefundsEnabled    bool          `env:"REFUNDS_ENABLED" envDefault:"false"`
	UpstreamTimeout   time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"12s"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	WebhookReplayTTL  time.Duration `env:"WEBHOOK_REPLAY_TTL" envDefault:"48h"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`

	Razorpay Razorpay `envPrefix:"RAZORPAY_"`
	Mail     Mail
}

// Razorpay holds payment gateway credentials.
type Razorpay struct {
	BaseURL       string `env:"BASE_URL" envDefault:"https://api.razorpay.com"`
	KeyID         string `env:"KEY_ID"`
	KeySecret     string `env:"KEY_SECRET"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

// Configured reports whether order and refund calls can be authenticated.
func (r Razorpay) Configured() bool {
	return r.KeyID != "" && r.KeySecret != ""
}

// Mail holds receipt delivery settings. Every transport is optional.
type Mail struct {
	BrevoAPIKey  string `env:"BREVO_API_KEY"`
	BrevoBaseURL string `env:"BREVO_BASE_URL" envDefault:"https://api.brevo.com"`
	From         string `env:"MAIL_FROM"`
	FromName     string `env:"MAIL_FROM_NAME" envDefault:"Travel Desk"`
	AdminEmail   string `env:"ADMIN_EMAIL"`
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
}

const (
	defaultUpstreamTimeout  = 12 * time.Second
	defaultRequestTimeout   = 15 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultWebhookReplayTTL = 48 * time.Hour
)

// Load parses configuration from an optional .env file, environment variables and flags.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(os.Args[1:], nil)
}

// load reads environment from environ, or from the process when environ is nil.
func load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("travelpay", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.ContentBackendURL, "b", cfg.ContentBackendURL, "Content backend base URL")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL for webhook replay protection")
	fs.BoolVar(&cfg.RefundsEnabled, "refunds-enabled", cfg.RefundsEnabled, "Allow admin refunds")
	fs.DurationVar(&cfg.UpstreamTimeout, "upstream-timeout", cfg.UpstreamTimeout, "Timeout of gateway and backend calls")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	lookup := func(key string) string {
		if environ != nil {
			return environ[key]
		}
		return os.Getenv(key)
	}

	if err := readSecretFile(lookup("RAZORPAY_KEY_SECRET_FILE"), &cfg.Razorpay.KeySecret); err != nil {
		return nil, fmt.Errorf("read razorpay key secret file: %w", err)
	}
	if err := readSecretFile(lookup("RAZORPAY_WEBHOOK_SECRET_FILE"), &cfg.Razorpay.WebhookSecret); err != nil {
		return nil, fmt.Errorf("read razorpay webhook secret file: %w", err)
	}

	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = defaultUpstreamTimeout
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.WebhookReplayTTL <= 0 {
		cfg.WebhookReplayTTL = defaultWebhookReplayTTL
	}

	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.ContentBackendURL == "" {
		return nil, fmt.Errorf("content backend URL must be provided")
	}

	return cfg, nil
}

func readSecretFile(path string, dst *string) error {
	if path == "" {
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	*dst = strings.TrimSpace(string(content))
	return nil
}
