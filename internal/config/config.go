package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type StoreBackend string

const (
	BackendPostgres  StoreBackend = "postgres"
	BackendFirestore StoreBackend = "firestore"
)

type Config struct {
	Port                string
	StoreBackend        StoreBackend
	DatabaseURL         string
	ProjectID           string
	LogLevel            string
	FxAPIURL            string
	FxAPIKey            string
	WebhookSecret       string
	AllowedUserIDs      []string
	DefaultBaseCurrency string
}

func New() *Config {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		StoreBackend:        getStoreBackend(os.Getenv("STORE_BACKEND")),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		ProjectID:           os.Getenv("PROJECT_ID"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		FxAPIURL:            getEnv("FX_API_URL", "https://v6.exchangerate-api.com/v6"),
		FxAPIKey:            os.Getenv("FX_API_KEY"),
		WebhookSecret:       os.Getenv("WEBHOOK_SECRET"),
		AllowedUserIDs:      splitList(os.Getenv("ALLOWED_USER_IDS")),
		DefaultBaseCurrency: getEnv("DEFAULT_BASE_CURRENCY", "USD"),
	}

	if cfg.FxAPIKey == "" {
		log.Fatal("FX_API_KEY is required")
	}
	switch cfg.StoreBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			log.Fatal("DATABASE_URL is required for the postgres backend")
		}
	case BackendFirestore:
		if cfg.ProjectID == "" {
			log.Fatal("PROJECT_ID is required for the firestore backend")
		}
	}

	return cfg
}

func getStoreBackend(value string) StoreBackend {
	switch value {
	case "firestore":
		return BackendFirestore
	default: // "postgres"
		return BackendPostgres
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
