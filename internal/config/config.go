package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process settings. Values come from the environment,
// optionally seeded from a .env file in development.
type Config struct {
	Port string

	AdminEmail string

	MailRegion   string
	MailFrom     string
	MailFromName string

	PushSubscriber string
	PushTTL        int
	PushLinkURL    string

	AMQPURL      string
	AMQPExchange string
	Environment  string

	PurgeInterval time.Duration
}

// Load reads the process configuration. A missing .env file is not an
// error; containers provide the environment directly.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:           getEnv("PORT", "8086"),
		AdminEmail:     getEnv("ADMIN_EMAIL", ""),
		MailRegion:     getEnv("SES_REGION", "us-east-1"),
		MailFrom:       getEnv("MAIL_FROM", ""),
		MailFromName:   getEnv("MAIL_FROM_NAME", "Condo Portal"),
		PushSubscriber: getEnv("VAPID_SUBSCRIBER", "mailto:admin@condo-portal.local"),
		PushTTL:        getEnvInt("PUSH_TTL_SECONDS", 3600),
		PushLinkURL:    getEnv("PUSH_LINK_URL", "/"),
		AMQPURL:        getEnv("RABBITMQ_URL", ""),
		AMQPExchange:   getEnv("RABBITMQ_EXCHANGE", "condo.events"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		PurgeInterval:  getEnvDuration("PURGE_INTERVAL", 6*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
