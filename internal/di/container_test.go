package di

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthtrack-backend/internal/config"
	"github.com/simaogato/wealthtrack-backend/internal/scheduler"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/datastore"
)

func localConfig(t *testing.T) *config.Config {
	return &config.Config{
		LocalCachePath:   filepath.Join(t.TempDir(), "cache.db"),
		BaseCurrency:     "EUR",
		FXRates:          "USD=0.92",
		StalenessWindow:  15 * time.Minute,
		RefreshSchedule:  "0 */15 * * * *",
		SnapshotSchedule: "0 0 0 * * *",
		StockQuoteURL:    "http://127.0.0.1:0",
		CryptoQuoteURL:   "http://127.0.0.1:0",
	}
}

func TestWire_LocalMode(t *testing.T) {
	ctx := context.Background()
	cfg := localConfig(t)

	c, err := Wire(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.DB)
	require.NotNil(t, c.Cache)
	assert.True(t, c.Store.Loaded())
	assert.Equal(t, "EUR", c.Converter.Base())
	assert.True(t, c.Converter.HasRate("USD"))

	_, hasOwner := c.Store.Owner()
	assert.False(t, hasOwner)
}

func TestWire_PersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := localConfig(t)

	first, err := Wire(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	_, err = first.Store.AddTransaction(ctx, datastore.TransactionInput{
		Kind:     "income",
		Category: "Salary",
		Amount:   decimal.NewFromInt(2500),
		Date:     "2026-10-01",
	})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Wire(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer second.Close()

	txs := second.Store.Snapshot().Transactions
	require.Len(t, txs, 1)
	assert.Equal(t, "Salary", txs[0].Category)
}

func TestWire_BadRates(t *testing.T) {
	cfg := localConfig(t)
	cfg.FXRates = "USD"

	_, err := Wire(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "FX_RATES")
}

func TestRegisterJobs(t *testing.T) {
	cfg := localConfig(t)
	c, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	sched := scheduler.New(zerolog.Nop())
	require.NoError(t, RegisterJobs(c, cfg, sched, zerolog.Nop()))
	assert.Equal(t, 2, sched.Entries())

	cfg.SnapshotSchedule = "daily"
	assert.ErrorContains(t, RegisterJobs(c, cfg, scheduler.New(zerolog.Nop()), zerolog.Nop()), "snapshot")
}
