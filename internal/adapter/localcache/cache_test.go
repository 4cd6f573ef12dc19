package localcache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) (*Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	cache, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, path
}

func sampleData() *domain.FinancialData {
	priced := time.Date(2026, 10, 15, 11, 50, 0, 0, time.UTC)
	created := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	data := domain.NewFinancialData()
	data.Transactions = append(data.Transactions, domain.Transaction{
		ID:          uuid.New(),
		Kind:        domain.TransactionKindExpense,
		Category:    "Groceries",
		Amount:      decimal.RequireFromString("42.17"),
		Date:        time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC),
		Description: "Weekly shop",
		CreatedAt:   created,
	})
	data.Investments = append(data.Investments, domain.InvestmentHolding{
		ID:              uuid.New(),
		InstrumentType:  domain.InstrumentTypeETF,
		Symbol:          "VWCE.DE",
		Quantity:        decimal.RequireFromString("12.5"),
		CostBasis:       decimal.RequireFromString("1300"),
		CurrentPrice:    decimal.RequireFromString("131.42"),
		Currency:        "EUR",
		LastPriceUpdate: &priced,
		Fees:            decimal.RequireFromString("1.5"),
		CreatedAt:       created,
		UpdatedAt:       priced,
	})
	data.Crypto = append(data.Crypto, domain.CryptoHolding{
		ID:          uuid.New(),
		Symbol:      "BTC",
		Quantity:    decimal.NewFromInt(2),
		AvgBuyPrice: decimal.NewFromInt(300),
		Currency:    domain.CryptoCurrency,
		CoinID:      "bitcoin",
		CreatedAt:   created,
		UpdatedAt:   created,
	})
	data.Liabilities = append(data.Liabilities, domain.Liability{
		ID:             uuid.New(),
		Name:           "Mortgage",
		Type:           "mortgage",
		CurrentBalance: decimal.NewFromInt(150000),
		Principal:      decimal.NewFromInt(200000),
		InterestRate:   decimal.RequireFromString("3.1"),
		Currency:       "EUR",
		MonthlyPayment: decimal.NewFromInt(900),
		CreatedAt:      created,
		UpdatedAt:      created,
	})
	data.Snapshots = append(data.Snapshots, *domain.NewSnapshot(domain.Totals{
		NetWorth:         decimal.NewFromInt(-140000),
		TotalAssets:      decimal.NewFromInt(10000),
		TotalLiabilities: decimal.NewFromInt(150000),
	}, created))
	return data
}

func TestCache_LoadEmpty(t *testing.T) {
	cache, _ := openTestCache(t)

	data, err := cache.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestCache_SaveAndLoad(t *testing.T) {
	cache, _ := openTestCache(t)
	ctx := context.Background()
	want := sampleData()

	require.NoError(t, cache.Save(ctx, want))

	got, err := cache.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.Len(t, got.Transactions, 1)
	assert.Equal(t, want.Transactions[0].ID, got.Transactions[0].ID)
	assert.True(t, want.Transactions[0].Amount.Equal(got.Transactions[0].Amount))
	assert.Equal(t, "2026-10-10", got.Transactions[0].DayKey())
	assert.True(t, want.Transactions[0].CreatedAt.Equal(got.Transactions[0].CreatedAt))

	require.Len(t, got.Investments, 1)
	inv := got.Investments[0]
	assert.Equal(t, domain.InstrumentTypeETF, inv.InstrumentType)
	assert.True(t, inv.CurrentValue().Equal(decimal.RequireFromString("1642.75")))
	require.NotNil(t, inv.LastPriceUpdate)
	assert.True(t, want.Investments[0].LastPriceUpdate.Equal(*inv.LastPriceUpdate))
	assert.Equal(t, time.UTC, inv.LastPriceUpdate.Location())

	require.Len(t, got.Crypto, 1)
	assert.Nil(t, got.Crypto[0].LastPriceUpdate, "never priced stays nil")
	assert.True(t, got.Crypto[0].CurrentPrice.IsZero())
	assert.Equal(t, "bitcoin", got.Crypto[0].CoinID)

	require.Len(t, got.Liabilities, 1)
	assert.True(t, got.Liabilities[0].InterestRate.Equal(decimal.RequireFromString("3.1")))

	require.Len(t, got.Snapshots, 1)
	assert.True(t, got.Snapshots[0].NetWorth.Equal(decimal.NewFromInt(-140000)))
}

func TestCache_SaveReplaces(t *testing.T) {
	cache, _ := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Save(ctx, sampleData()))
	require.NoError(t, cache.Save(ctx, domain.NewFinancialData()))

	got, err := cache.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsEmpty())
}

func TestCache_Clear(t *testing.T) {
	cache, _ := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Save(ctx, sampleData()))
	require.NoError(t, cache.Clear(ctx))

	got, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Clearing an empty cache is a no-op
	assert.NoError(t, cache.Clear(ctx))
}

func TestCache_PersistsAcrossOpen(t *testing.T) {
	cache, path := openTestCache(t)
	ctx := context.Background()
	want := sampleData()

	require.NoError(t, cache.Save(ctx, want))
	require.NoError(t, cache.Close())

	reopened, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Investments[0].ID, got.Investments[0].ID)
}

func TestCache_CorruptBlobLoadsAsEmpty(t *testing.T) {
	cache, _ := openTestCache(t)
	ctx := context.Background()

	_, err := cache.db.ExecContext(ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, 0)`, StorageKey, []byte{0xc1, 0x00})
	require.NoError(t, err)

	got, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_SatisfiesLocalCache(t *testing.T) {
	var _ domain.LocalCache = (*Cache)(nil)
}
