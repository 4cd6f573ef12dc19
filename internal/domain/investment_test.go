package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvestmentHolding_Validate(t *testing.T) {
	tests := []struct {
		name    string
		holding InvestmentHolding
		wantErr bool
		errMsg  string
	}{
		{
			name: "Stock with symbol should pass",
			holding: InvestmentHolding{
				ID:             uuid.New(),
				InstrumentType: InstrumentTypeStock,
				Symbol:         "AAPL",
				Quantity:       decimal.NewFromInt(10),
				CostBasis:      decimal.NewFromInt(1500),
			},
			wantErr: false,
		},
		{
			name: "Manual asset with only a name should pass",
			holding: InvestmentHolding{
				ID:             uuid.New(),
				InstrumentType: InstrumentTypeOther,
				Name:           "Pension fund",
				Quantity:       decimal.NewFromInt(1),
				CostBasis:      decimal.NewFromInt(20000),
			},
			wantErr: false,
		},
		{
			name: "Missing symbol and name should fail",
			holding: InvestmentHolding{
				ID:             uuid.New(),
				InstrumentType: InstrumentTypeETF,
			},
			wantErr: true,
			errMsg:  "investment must have a symbol or a name",
		},
		{
			name: "Unknown instrument type should fail",
			holding: InvestmentHolding{
				ID:             uuid.New(),
				InstrumentType: InstrumentType("bond"),
				Symbol:         "BND",
			},
			wantErr: true,
			errMsg:  "instrument type must be stock, etf, or other",
		},
		{
			name: "Negative quantity should fail",
			holding: InvestmentHolding{
				ID:             uuid.New(),
				InstrumentType: InstrumentTypeStock,
				Symbol:         "MSFT",
				Quantity:       decimal.NewFromInt(-1),
			},
			wantErr: true,
			errMsg:  "quantity must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.holding.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInvestmentHolding_Valuation(t *testing.T) {
	priced := InvestmentHolding{
		Quantity:     decimal.NewFromInt(10),
		CostBasis:    decimal.NewFromInt(1000),
		CurrentPrice: decimal.NewFromInt(120),
	}
	assert.True(t, priced.CurrentValue().Equal(decimal.NewFromInt(1200)))
	assert.True(t, priced.Valuation().Equal(decimal.NewFromInt(1200)))
	assert.True(t, priced.AvgBuyPrice().Equal(decimal.NewFromInt(100)))

	// Never priced: degrade to cost basis
	unpriced := InvestmentHolding{
		Quantity:  decimal.NewFromInt(10),
		CostBasis: decimal.NewFromInt(1000),
	}
	assert.False(t, unpriced.HasPrice())
	assert.True(t, unpriced.Valuation().Equal(decimal.NewFromInt(1000)))

	empty := InvestmentHolding{}
	assert.True(t, empty.AvgBuyPrice().IsZero())
}

func TestInvestmentHolding_IsAutoPriced(t *testing.T) {
	assert.True(t, (&InvestmentHolding{InstrumentType: InstrumentTypeStock}).IsAutoPriced())
	assert.True(t, (&InvestmentHolding{InstrumentType: InstrumentTypeETF}).IsAutoPriced())
	assert.False(t, (&InvestmentHolding{InstrumentType: InstrumentTypeOther}).IsAutoPriced())
}

func TestCryptoHolding_LookupID(t *testing.T) {
	assert.Equal(t, "bitcoin", (&CryptoHolding{Symbol: "BTC", Name: "Bitcoin", CoinID: "bitcoin"}).LookupID())
	assert.Equal(t, "ethereum", (&CryptoHolding{Symbol: "ETH", Name: "Ethereum"}).LookupID())
	assert.Equal(t, "sol", (&CryptoHolding{Symbol: "SOL"}).LookupID())
}

func TestCryptoHolding_Values(t *testing.T) {
	c := CryptoHolding{
		Symbol:       "ETH",
		Quantity:     decimal.NewFromInt(2),
		AvgBuyPrice:  decimal.NewFromInt(250),
		CurrentPrice: decimal.NewFromInt(300),
	}
	assert.True(t, c.CurrentValue().Equal(decimal.NewFromInt(600)))
	assert.True(t, c.CostBasis().Equal(decimal.NewFromInt(500)))
}

func TestIsStale(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	window := 15 * time.Minute

	recent := now.Add(-5 * time.Minute)
	old := now.Add(-16 * time.Minute)
	edge := now.Add(-15 * time.Minute)

	assert.True(t, IsStale(nil, now, window), "never priced is stale")
	assert.False(t, IsStale(&recent, now, window))
	assert.True(t, IsStale(&old, now, window))
	assert.False(t, IsStale(&edge, now, window), "exactly the window is still fresh")
}

func TestCheckHoldingInvariants(t *testing.T) {
	assert.NoError(t, CheckHoldingInvariants(decimal.NewFromInt(1), decimal.NewFromInt(1)))
	assert.True(t, errors.Is(CheckHoldingInvariants(decimal.NewFromInt(-1), decimal.Zero), ErrInvariantViolation))
	assert.True(t, errors.Is(CheckHoldingInvariants(decimal.Zero, decimal.NewFromInt(-3)), ErrInvariantViolation))
}
