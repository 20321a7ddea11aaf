package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Stage       string
	DatabaseURL string
	JWTSecret   string
	FrontendURL string
	Origins     []string

	Stripe struct {
		SecretKey     string
		WebhookSecret string
		Currency      string
	}
	SendGrid struct {
		APIKey    string
		FromEmail string
		FromName  string
	}
	Twilio struct {
		AccountSID string
		AuthToken  string
		FromNumber string
	}
	Booking struct {
		PendingTTL           time.Duration
		CancellationWindow   time.Duration
		OnsiteDepositPercent int
	}
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	cfg.Port = envOrDefault("PORT", "8080")
	cfg.Stage = envOrDefault("STAGE", "dev")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL not set")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET not set")
	}
	cfg.FrontendURL = envOrDefault("FRONTEND_URL", "http://localhost:3000")
	cfg.Origins = splitList(envOrDefault("ALLOWED_ORIGINS", cfg.FrontendURL))

	cfg.Stripe.SecretKey = os.Getenv("STRIPE_SECRET_KEY")
	cfg.Stripe.WebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	cfg.Stripe.Currency = envOrDefault("CURRENCY", "eur")

	cfg.SendGrid.APIKey = os.Getenv("SENDGRID_API_KEY")
	cfg.SendGrid.FromEmail = os.Getenv("SENDGRID_FROM_EMAIL")
	cfg.SendGrid.FromName = envOrDefault("SENDGRID_FROM_NAME", "NovaDrive")

	cfg.Twilio.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.Twilio.FromNumber = os.Getenv("TWILIO_FROM_NUMBER")

	cfg.Booking.PendingTTL = time.Duration(envOrDefaultInt("PENDING_BOOKING_TTL_MINUTES", 30)) * time.Minute
	cfg.Booking.CancellationWindow = time.Duration(envOrDefaultInt("CANCELLATION_WINDOW_HOURS", 24)) * time.Hour
	cfg.Booking.OnsiteDepositPercent = envOrDefaultInt("ONSITE_DEPOSIT_PERCENT", 30)
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
