package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// OIDCConfig describes the external identity provider. The service never
// issues credentials itself; it only verifies tokens minted by this issuer
// and proxies the resource-owner-password grant for /users/login.
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
}

// StorageConfig describes the S3-compatible object store holding avatars.
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
}

type Config struct {
	Environment string
	Port        string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	OIDC    OIDCConfig
	Storage StorageConfig

	// KafkaBrokers enables the Kafka event publisher when non-empty;
	// otherwise events go to an in-process channel publisher.
	KafkaBrokers []string
}

// LoadConfig reads configuration from the environment, loading a local .env
// file first if present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		OIDC: OIDCConfig{
			IssuerURL:    os.Getenv("OIDC_ISSUER_URL"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
		},
		Storage: StorageConfig{
			Endpoint:        os.Getenv("STORAGE_ENDPOINT"),
			AccessKeyID:     os.Getenv("STORAGE_ACCESS_KEY"),
			SecretAccessKey: os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:          getEnv("STORAGE_BUCKET", "tarpaulin-avatars"),
			UseSSL:          parseBool(getEnv("STORAGE_USE_SSL", "true")),
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.OIDC.IssuerURL == "" || cfg.OIDC.ClientID == "" {
		return nil, fmt.Errorf("OIDC_ISSUER_URL and OIDC_CLIENT_ID are required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

func parseLogLevel(v string) slog.Level {
	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
