package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Env         string
	LogLevel    string
	Port        uint16
	DatabaseUrl string // Empty keeps orders in memory
	CORSOrigins []string
	Catalog     CatalogConfig
	Storage     StorageConfig
	Pricing     PricingConfig
	Events      EventsConfig
	Redis       RedisConfig
	Sentry      SentryConfig
	Metrics     MetricsConfig
}

// CatalogConfig controls the JSON catalog source and background refresh.
type CatalogConfig struct {
	Path            string
	TotalPages      int
	PageSize        int
	Latency         time.Duration // Simulated fetch delay
	RefreshInterval time.Duration // Zero disables the background refresher
}

// StorageConfig selects where the catalog document is read from.
// Catalog.Path is the key within the selected backend.
type StorageConfig struct {
	Provider      string // "local" or "r2"
	LocalPath     string
	R2AccountID   string
	R2AccessKeyID string
	R2SecretKey   string
	R2BucketName  string
}

// PricingConfig holds the tax and shipping policy applied to the cart.
type PricingConfig struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingFlatFee       decimal.Decimal
}

// EventsConfig selects where domain events are published.
// NATS wins when both NATSURL and KafkaBrokers are set.
type EventsConfig struct {
	NATSURL      string
	KafkaBrokers []string
}

// RedisConfig enables cart persistence when URL is set.
type RedisConfig struct {
	URL     string
	CartKey string
	CartTTL time.Duration
}

// SentryConfig holds configuration for Sentry error tracking
type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
	SampleRate  float64
	Debug       bool
}

type MetricsConfig struct {
	Namespace string
}

func NewConfig() (*Config, error) {
	// Try to load .env from current directory, then walk up to find it (max 2 levels)
	err := godotenv.Load()
	if err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
		}
	}

	cfg := &Config{
		Env:         getEnv("ENV", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Port:        getEnvInt("PORT", 3000),
		DatabaseUrl: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		Catalog: CatalogConfig{
			Path:            getEnv("CATALOG_PATH", "data/catalog.json"),
			TotalPages:      int(getEnvInt("CATALOG_TOTAL_PAGES", 3)),
			PageSize:        int(getEnvInt("CATALOG_PAGE_SIZE", 20)),
			Latency:         getEnvDuration("CATALOG_LATENCY", 0),
			RefreshInterval: getEnvDuration("CATALOG_REFRESH_INTERVAL", 0),
		},
		Storage: StorageConfig{
			Provider:      getEnv("STORAGE_PROVIDER", "local"),
			LocalPath:     getEnv("LOCAL_STORAGE_PATH", "."),
			R2AccountID:   getEnv("R2_ACCOUNT_ID", ""),
			R2AccessKeyID: getEnv("R2_ACCESS_KEY_ID", ""),
			R2SecretKey:   getEnv("R2_SECRET_ACCESS_KEY", ""),
			R2BucketName:  getEnv("R2_BUCKET_NAME", ""),
		},
		Events: EventsConfig{
			NATSURL:      getEnv("NATS_URL", ""),
			KafkaBrokers: getEnvList("KAFKA_BROKERS"),
		},
		Redis: RedisConfig{
			URL:     getEnv("REDIS_URL", ""),
			CartKey: getEnv("REDIS_CART_KEY", "shopcore:cart"),
			CartTTL: getEnvDuration("REDIS_CART_TTL", 30*24*time.Hour),
		},
		Sentry: SentryConfig{
			DSN:         getEnv("SENTRY_DSN", ""), // Empty disables Sentry
			Environment: getEnv("SENTRY_ENVIRONMENT", "development"),
			Release:     getEnv("SENTRY_RELEASE", ""),
			SampleRate:  getEnvFloat("SENTRY_SAMPLE_RATE", 1.0),
			Debug:       getEnvBool("SENTRY_DEBUG", false),
		},
		Metrics: MetricsConfig{
			Namespace: getEnv("METRICS_NAMESPACE", "shopcore"),
		},
	}

	// Validate env
	validEnv := cfg.Env == "dev" || cfg.Env == "prod"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	// Validate log level
	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	if cfg.Catalog.TotalPages < 1 {
		return nil, fmt.Errorf("CATALOG_TOTAL_PAGES must be at least 1")
	}
	if cfg.Catalog.PageSize < 1 {
		return nil, fmt.Errorf("CATALOG_PAGE_SIZE must be at least 1")
	}

	if cfg.Storage.Provider == "r2" {
		if cfg.Storage.R2AccountID == "" {
			return nil, fmt.Errorf("R2_ACCOUNT_ID required when using R2 storage")
		}
		if cfg.Storage.R2BucketName == "" {
			return nil, fmt.Errorf("R2_BUCKET_NAME required when using R2 storage")
		}
	}

	if cfg.Pricing.TaxRate, err = getEnvDecimal("TAX_RATE", "0.08"); err != nil {
		return nil, err
	}
	if cfg.Pricing.FreeShippingThreshold, err = getEnvDecimal("FREE_SHIPPING_THRESHOLD", "100.00"); err != nil {
		return nil, err
	}
	if cfg.Pricing.ShippingFlatFee, err = getEnvDecimal("SHIPPING_FLAT_FEE", "9.99"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(key); value != "" {
		var intValue uint16
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var floatValue float64
		if _, err := fmt.Sscanf(value, "%f", &floatValue); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Default().Warn("Invalid duration. Using default", slog.String("key", key), slog.String("value", value))
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvDecimal parses a non-negative money or rate value.
func getEnvDecimal(key, defaultValue string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, defaultValue))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a decimal number: %w", key, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
