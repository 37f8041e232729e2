package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// StatusGuardMode selects how admin status updates are checked. "manual"
// allows any transition (the admin override); "strict" enforces the
// pending -> shipped -> delivered lifecycle.
type StatusGuardMode string

const (
	StatusGuardManual StatusGuardMode = "manual"
	StatusGuardStrict StatusGuardMode = "strict"
)

type Config struct {
	Port        string
	PostgresURL string

	JWTSecret []byte
	TokenTTL  time.Duration

	KafkaBrokers []string

	MediaDir string

	OrderStatusGuard StatusGuardMode

	SendGridAPIKey string
	EmailFrom      string
}

// Load reads configuration from the environment, with a best-effort .env
// file for local development. Missing required values fail fast.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             envOr("PORT", "8080"),
		PostgresURL:      os.Getenv("POSTGRES_URL"),
		TokenTTL:         24 * time.Hour,
		MediaDir:         envOr("MEDIA_DIR", "media"),
		OrderStatusGuard: StatusGuardManual,
		SendGridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		EmailFrom:        envOr("EMAIL_FROM", "orders@voltmart.example"),
	}

	if cfg.PostgresURL == "" {
		return nil, fmt.Errorf("POSTGRES_URL environment variable is required")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	cfg.JWTSecret = []byte(secret)

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = d
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	switch mode := os.Getenv("ORDER_STATUS_GUARD"); mode {
	case "", string(StatusGuardManual):
	case string(StatusGuardStrict):
		cfg.OrderStatusGuard = StatusGuardStrict
	default:
		return nil, fmt.Errorf("invalid ORDER_STATUS_GUARD %q, want manual or strict", mode)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
