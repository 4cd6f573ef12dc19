package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetRecord_ToInvestment(t *testing.T) {
	price := decimal.NewFromInt(110)
	updated := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	record := &AssetRecord{
		ID:              uuid.New(),
		Category:        AssetCategoryInvestment,
		Type:            "ETF",
		Symbol:          "VWCE",
		Quantity:        decimal.NewFromInt(4),
		AvgBuyPrice:     decimal.NewFromInt(100),
		CurrentPrice:    &price,
		LastPriceUpdate: &updated,
		TradingCurrency: "eur",
	}

	h := record.ToInvestment()
	assert.Equal(t, InstrumentTypeETF, h.InstrumentType)
	assert.Equal(t, "EUR", h.Currency)
	assert.True(t, h.CostBasis.Equal(decimal.NewFromInt(400)))
	assert.True(t, h.CurrentValue().Equal(decimal.NewFromInt(440)))
	require.NotNil(t, h.LastPriceUpdate)
	assert.Equal(t, updated, *h.LastPriceUpdate)
}

func TestAssetRecord_ToInvestment_NeverPriced(t *testing.T) {
	record := &AssetRecord{
		ID:          uuid.New(),
		Category:    AssetCategoryInvestment,
		Type:        "real-estate",
		Name:        "Flat",
		Quantity:    decimal.NewFromInt(1),
		AvgBuyPrice: decimal.NewFromInt(150000),
	}

	h := record.ToInvestment()
	assert.Equal(t, InstrumentTypeOther, h.InstrumentType)
	assert.False(t, h.HasPrice())
	assert.Nil(t, h.LastPriceUpdate)
	assert.True(t, h.Valuation().Equal(decimal.NewFromInt(150000)))
}

func TestAssetRecord_ToCrypto(t *testing.T) {
	record := &AssetRecord{
		ID:              uuid.New(),
		Category:        AssetCategoryCrypto,
		Symbol:          "BTC",
		Name:            "Bitcoin",
		Quantity:        decimal.NewFromFloat(0.5),
		AvgBuyPrice:     decimal.NewFromInt(30000),
		TradingCurrency: "EUR",
		CoinID:          "bitcoin",
	}

	c := record.ToCrypto()
	assert.Equal(t, CryptoCurrency, c.Currency, "crypto is always quoted in the reference unit")
	assert.True(t, c.CurrentPrice.IsZero())
	assert.Equal(t, "bitcoin", c.LookupID())
}

func TestAssetRecordFromInvestment_RoundTrip(t *testing.T) {
	owner := uuid.New()
	h := InvestmentHolding{
		ID:             uuid.New(),
		InstrumentType: InstrumentTypeStock,
		Symbol:         "AAPL",
		Quantity:       decimal.NewFromInt(10),
		CostBasis:      decimal.NewFromInt(1500),
		CurrentPrice:   decimal.NewFromInt(180),
		Currency:       "USD",
		Sector:         "Technology",
	}

	record := AssetRecordFromInvestment(owner, &h)
	assert.Equal(t, owner, record.OwnerID)
	assert.Equal(t, AssetCategoryInvestment, record.Category)
	assert.True(t, record.AvgBuyPrice.Equal(decimal.NewFromInt(150)))
	require.NotNil(t, record.CurrentPrice)

	back := record.ToInvestment()
	assert.True(t, back.CostBasis.Equal(h.CostBasis))
	assert.True(t, back.CurrentValue().Equal(h.CurrentValue()))
	assert.Equal(t, h.Sector, back.Sector)
}

func TestSplitAssets(t *testing.T) {
	records := []*AssetRecord{
		{ID: uuid.New(), Category: AssetCategoryInvestment, Type: "stock", Symbol: "AAPL"},
		{ID: uuid.New(), Category: AssetCategoryCrypto, Symbol: "BTC"},
		{ID: uuid.New(), Category: AssetCategory("cash"), Symbol: "EUR"},
	}

	investments, crypto := SplitAssets(records)
	assert.Len(t, investments, 1)
	assert.Len(t, crypto, 1)
}
