package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	ServiceName string
	LoggerLevel string

	HTTPPort      int
	StorageDriver string
	Timezone      string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	MigrationsPath   string

	TelegramBotToken string
	JWTSecret        string

	UberClientID     string
	UberClientSecret string
	UberRedirectURI  string
	UberAuthURL      string
	UberTokenURL     string
	UberAPIURL       string
	UberSyncTimeout  time.Duration

	// TokenEncryptionKey seals platform tokens at rest. Must be 32 bytes.
	TokenEncryptionKey string
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "ridetracker"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))
	cfg.HTTPPort = cast.ToInt(getOrReturnDefault("HTTP_PORT", 8080))
	cfg.StorageDriver = cast.ToString(getOrReturnDefault("STORAGE_DRIVER", StoragePostgres))
	cfg.Timezone = cast.ToString(getOrReturnDefault("TIMEZONE", "America/Sao_Paulo"))

	cfg.PostgresHost = cast.ToString(getOrReturnDefault("POSTGRES_HOST", "localhost"))
	cfg.PostgresPort = cast.ToString(getOrReturnDefault("POSTGRES_PORT", "5432"))
	cfg.PostgresUser = cast.ToString(getOrReturnDefault("POSTGRES_USER", "postgres"))
	cfg.PostgresPassword = cast.ToString(getOrReturnDefault("POSTGRES_PASSWORD", "1234"))
	cfg.PostgresDB = cast.ToString(getOrReturnDefault("POSTGRES_DB", "ridetracker"))
	cfg.MigrationsPath = cast.ToString(getOrReturnDefault("MIGRATIONS_PATH", "migrations"))

	cfg.TelegramBotToken = cast.ToString(getOrReturnDefault("TG_BOT_TOKEN", ""))
	cfg.JWTSecret = cast.ToString(getOrReturnDefault("JWT_SECRET", ""))

	cfg.UberClientID = cast.ToString(getOrReturnDefault("UBER_CLIENT_ID", ""))
	cfg.UberClientSecret = cast.ToString(getOrReturnDefault("UBER_CLIENT_SECRET", ""))
	cfg.UberRedirectURI = cast.ToString(getOrReturnDefault("UBER_REDIRECT_URI", ""))
	cfg.UberAuthURL = cast.ToString(getOrReturnDefault("UBER_AUTH_URL", "https://login.uber.com/oauth/v2/authorize"))
	cfg.UberTokenURL = cast.ToString(getOrReturnDefault("UBER_TOKEN_URL", "https://api.uber.com/oauth/v2/token"))
	cfg.UberAPIURL = cast.ToString(getOrReturnDefault("UBER_API_URL", "https://api.uber.com"))
	cfg.UberSyncTimeout = cast.ToDuration(getOrReturnDefault("UBER_SYNC_TIMEOUT", "30s"))

	cfg.TokenEncryptionKey = cast.ToString(getOrReturnDefault("TOKEN_ENCRYPTION_KEY", ""))

	return cfg
}

// Location resolves Timezone, falling back to the process local zone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// UberEnabled reports whether the OAuth client credentials are present.
func (c Config) UberEnabled() bool {
	return c.UberClientID != "" && c.UberClientSecret != "" && c.UberRedirectURI != ""
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
