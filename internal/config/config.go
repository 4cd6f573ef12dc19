package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DBConnStr        string
	LocalCachePath   string
	OwnerID          *uuid.UUID // Nil selects local-cache mode
	BaseCurrency     string
	FXRates          string // USD=0.92,GBP=1.17
	StalenessWindow  time.Duration
	RefreshSchedule  string
	SnapshotSchedule string
	StockQuoteURL    string
	CryptoQuoteURL   string
	APIToken         string
	GRPCPort         int
	LogLevel         string
	DevMode          bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	owner, err := getEnvAsUUID("OWNER_ID")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBConnStr:        dbConnStr(),
		LocalCachePath:   getEnv("LOCAL_CACHE_PATH", "./data/wealthtrack.db"),
		OwnerID:          owner,
		BaseCurrency:     strings.ToUpper(getEnv("BASE_CURRENCY", "EUR")),
		FXRates:          getEnv("FX_RATES", "USD=0.92,GBP=1.17"),
		StalenessWindow:  getEnvAsDuration("PRICE_STALENESS_WINDOW", 15*time.Minute),
		RefreshSchedule:  getEnv("REFRESH_SCHEDULE", "@every 5m"),
		SnapshotSchedule: getEnv("SNAPSHOT_SCHEDULE", "0 0 0 * * *"), // Midnight daily
		StockQuoteURL:    getEnv("STOCK_QUOTE_URL", "https://query1.finance.yahoo.com"),
		CryptoQuoteURL:   getEnv("CRYPTO_QUOTE_URL", "https://api.coingecko.com"),
		APIToken:         getEnv("API_TOKEN", "dev-token"),
		GRPCPort:         getEnvAsInt("GRPC_PORT", 8080),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DevMode:          getEnvAsBool("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.OwnerID != nil && c.DBConnStr == "" {
		return errors.New("DB_CONN_STR is required when OWNER_ID is set")
	}
	if c.OwnerID == nil && c.LocalCachePath == "" {
		return errors.New("LOCAL_CACHE_PATH is required without OWNER_ID")
	}
	if len(c.BaseCurrency) != 3 {
		return fmt.Errorf("BASE_CURRENCY must be a 3-letter code, got %q", c.BaseCurrency)
	}
	if c.StalenessWindow <= 0 {
		return errors.New("PRICE_STALENESS_WINDOW must be positive")
	}
	if c.GRPCPort <= 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("GRPC_PORT out of range: %d", c.GRPCPort)
	}
	if !c.DevMode && c.APIToken == "" {
		return errors.New("API_TOKEN is required outside dev mode")
	}
	return nil
}

// UsesRecordStore reports whether records are kept in the record store rather than the local cache
func (c *Config) UsesRecordStore() bool {
	return c.OwnerID != nil
}

// GRPCAddr returns the listen address of the gRPC server
func (c *Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

// dbConnStr returns DB_CONN_STR, or builds it from the individual DB_* variables
func dbConnStr() string {
	if conn := os.Getenv("DB_CONN_STR"); conn != "" {
		return conn
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "wealthtrack"),
	)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsUUID(key string) (*uuid.UUID, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid UUID: %w", key, err)
	}
	return &id, nil
}
