package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Session  SessionConfig
	WhatsApp WhatsAppConfig
	QR       QRConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

// UpstreamConfig points at the ticketing platform's REST backend.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	Secret string
}

// WhatsAppConfig controls how ticket messages are addressed.
// FallbackNumber is used when a booking carries no contact number.
type WhatsAppConfig struct {
	CountryCode    string
	FallbackNumber string
	TicketBaseURL  string
	SupportURL     string
}

// QRConfig points at the third-party QR image generator.
type QRConfig struct {
	Endpoint string
	Size     string
}

// Load reads configuration from the environment, with .env support
// for local development.
func Load() (*Config, error) {
	// Ignore error - .env file is optional
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Upstream: UpstreamConfig{
			BaseURL: getEnv("UPSTREAM_BASE_URL", "https://srs-backend-7ch1.onrender.com"),
			Timeout: getDurationEnv("UPSTREAM_TIMEOUT", 30*time.Second),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", ""),
		},
		WhatsApp: WhatsAppConfig{
			CountryCode:    getEnv("WHATSAPP_COUNTRY_CODE", "91"),
			FallbackNumber: getEnv("WHATSAPP_FALLBACK_NUMBER", "9606729320"),
			TicketBaseURL:  getEnv("TICKET_BASE_URL", "https://thesrsevents.com/ticket"),
			SupportURL:     getEnv("SUPPORT_URL", "http://www.goldeneventz.co.in"),
		},
		QR: QRConfig{
			Endpoint: getEnv("QR_ENDPOINT", "https://api.qrserver.com/v1/create-qr-code/"),
			Size:     getEnv("QR_SIZE", "400x400"),
		},
	}

	if cfg.Session.Secret == "" {
		if cfg.Server.Env == "production" {
			return nil, fmt.Errorf("SESSION_SECRET is required in production")
		}
		cfg.Session.Secret = "dev-session-secret-change-me"
	}

	if cfg.Upstream.BaseURL == "" {
		return nil, fmt.Errorf("UPSTREAM_BASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return defaultValue
}
