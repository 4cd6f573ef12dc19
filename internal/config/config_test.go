package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DB_CONN_STR", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"LOCAL_CACHE_PATH", "OWNER_ID", "BASE_CURRENCY", "FX_RATES", "PRICE_STALENESS_WINDOW",
		"REFRESH_SCHEDULE", "SNAPSHOT_SCHEDULE", "STOCK_QUOTE_URL", "CRYPTO_QUOTE_URL",
		"API_TOKEN", "GRPC_PORT", "LOG_LEVEL", "DEV_MODE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Nil(t, cfg.OwnerID)
	assert.False(t, cfg.UsesRecordStore())
	assert.Equal(t, "./data/wealthtrack.db", cfg.LocalCachePath)
	assert.Equal(t, "EUR", cfg.BaseCurrency)
	assert.Equal(t, 15*time.Minute, cfg.StalenessWindow)
	assert.Equal(t, "@every 5m", cfg.RefreshSchedule)
	assert.Equal(t, ":8080", cfg.GRPCAddr())
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=wealthtrack sslmode=disable", cfg.DBConnStr)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("OWNER_ID", "7b0f6b2c-5d7e-4a43-9a1b-1c2d3e4f5a6b")
	t.Setenv("DB_CONN_STR", "postgres://u:p@db/wealth")
	t.Setenv("BASE_CURRENCY", "usd")
	t.Setenv("PRICE_STALENESS_WINDOW", "30m")
	t.Setenv("GRPC_PORT", "9090")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.OwnerID)
	assert.Equal(t, "7b0f6b2c-5d7e-4a43-9a1b-1c2d3e4f5a6b", cfg.OwnerID.String())
	assert.True(t, cfg.UsesRecordStore())
	assert.Equal(t, "postgres://u:p@db/wealth", cfg.DBConnStr)
	assert.Equal(t, "USD", cfg.BaseCurrency)
	assert.Equal(t, 30*time.Minute, cfg.StalenessWindow)
	assert.Equal(t, 9090, cfg.GRPCPort)
	assert.True(t, cfg.DevMode)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("GRPC_PORT", "not-a-port")
	t.Setenv("PRICE_STALENESS_WINDOW", "soon")
	t.Setenv("DEV_MODE", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.GRPCPort)
	assert.Equal(t, 15*time.Minute, cfg.StalenessWindow)
	assert.False(t, cfg.DevMode)
}

func TestLoad_InvalidOwner(t *testing.T) {
	clearEnv(t)
	t.Setenv("OWNER_ID", "user-42")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			LocalCachePath:  "cache.db",
			BaseCurrency:    "EUR",
			StalenessWindow: time.Minute,
			GRPCPort:        8080,
			APIToken:        "secret",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad currency", mutate: func(c *Config) { c.BaseCurrency = "EURO" }, wantErr: true},
		{name: "zero window", mutate: func(c *Config) { c.StalenessWindow = 0 }, wantErr: true},
		{name: "port out of range", mutate: func(c *Config) { c.GRPCPort = 70000 }, wantErr: true},
		{name: "no cache path", mutate: func(c *Config) { c.LocalCachePath = "" }, wantErr: true},
		{name: "no token", mutate: func(c *Config) { c.APIToken = "" }, wantErr: true},
		{name: "no token in dev mode", mutate: func(c *Config) { c.APIToken = ""; c.DevMode = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
