package valuation

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/currency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()
	converter, err := currency.NewConverter("EUR", map[string]decimal.Decimal{
		"USD": decimal.NewFromFloat(0.5),
	})
	require.NoError(t, err)
	return NewAggregator(converter)
}

func tx(kind domain.TransactionKind, amount int64) domain.Transaction {
	return domain.Transaction{
		ID:       uuid.New(),
		Kind:     kind,
		Category: "General",
		Amount:   decimal.NewFromInt(amount),
		Date:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCalculateTotals_EmptyRecordSet(t *testing.T) {
	agg := newTestAggregator(t)

	for _, data := range []*domain.FinancialData{nil, domain.NewFinancialData()} {
		totals := agg.CalculateTotals(data)
		assert.True(t, totals.TotalAssets.IsZero())
		assert.True(t, totals.NetWorth.IsZero())
		assert.True(t, totals.TotalLiquidity.IsZero())
		assert.True(t, totals.TotalLiabilities.IsZero())
	}
}

func TestCalculateTotals_LiquidityFromLedger(t *testing.T) {
	agg := newTestAggregator(t)

	data := domain.NewFinancialData()
	data.Transactions = []domain.Transaction{
		tx(domain.TransactionKindIncome, 1000),
		tx(domain.TransactionKindExpense, 400),
	}

	totals := agg.CalculateTotals(data)
	assert.True(t, totals.TotalLiquidity.Equal(decimal.NewFromInt(600)))
	assert.True(t, totals.NetWorth.Equal(decimal.NewFromInt(600)))
}

func TestCalculateTotals_LiquidityIgnoresOrdering(t *testing.T) {
	agg := newTestAggregator(t)

	transactions := make([]domain.Transaction, 0, 50)
	income, expense := int64(0), int64(0)
	for i := 1; i <= 50; i++ {
		if i%3 == 0 {
			transactions = append(transactions, tx(domain.TransactionKindExpense, int64(i)))
			expense += int64(i)
		} else {
			transactions = append(transactions, tx(domain.TransactionKindIncome, int64(i*2)))
			income += int64(i * 2)
		}
	}
	want := decimal.NewFromInt(income - expense)

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 5; round++ {
		rng.Shuffle(len(transactions), func(i, j int) {
			transactions[i], transactions[j] = transactions[j], transactions[i]
		})
		got := agg.Liquidity(transactions)
		assert.True(t, want.Equal(got), "round %d: want %s got %s", round, want, got)
	}
}

func TestCalculateTotals_FullPortfolio(t *testing.T) {
	agg := newTestAggregator(t)
	updated := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	data := domain.NewFinancialData()
	data.Transactions = []domain.Transaction{tx(domain.TransactionKindIncome, 500)}
	data.Investments = []domain.InvestmentHolding{
		{
			ID:              uuid.New(),
			InstrumentType:  domain.InstrumentTypeStock,
			Symbol:          "AAPL",
			Quantity:        decimal.NewFromInt(10),
			CostBasis:       decimal.NewFromInt(1000),
			CurrentPrice:    decimal.NewFromInt(200),
			Currency:        "USD",
			LastPriceUpdate: &updated,
		},
	}
	data.Crypto = []domain.CryptoHolding{
		{ID: uuid.New(), Symbol: "BTC", Quantity: decimal.NewFromInt(2), CurrentPrice: decimal.NewFromInt(300), Currency: "USD"},
	}
	data.Liabilities = []domain.Liability{
		{ID: uuid.New(), Name: "Car loan", CurrentBalance: decimal.NewFromInt(250), Currency: "EUR"},
	}

	totals := agg.CalculateTotals(data)

	assert.True(t, totals.TotalLiquidity.Equal(decimal.NewFromInt(500)))
	assert.True(t, totals.TotalInvestments.Equal(decimal.NewFromInt(1000)), "2000 USD at 0.5")
	assert.True(t, totals.TotalCrypto.Equal(decimal.NewFromInt(300)), "600 USD at 0.5")
	assert.True(t, totals.TotalAssets.Equal(decimal.NewFromInt(1800)))
	assert.True(t, totals.TotalLiabilities.Equal(decimal.NewFromInt(250)))
	assert.True(t, totals.NetWorth.Equal(decimal.NewFromInt(1550)))
}

func TestCalculateTotals_CostBasisFallback(t *testing.T) {
	agg := newTestAggregator(t)

	data := domain.NewFinancialData()
	data.Investments = []domain.InvestmentHolding{
		{
			ID:             uuid.New(),
			InstrumentType: domain.InstrumentTypeStock,
			Symbol:         "NEW",
			Quantity:       decimal.NewFromInt(10),
			CostBasis:      decimal.NewFromInt(1000),
			Currency:       "EUR",
		},
	}

	totals := agg.CalculateTotals(data)
	assert.True(t, totals.TotalInvestments.Equal(decimal.NewFromInt(1000)))

	degraded := agg.DegradedHoldings(data)
	require.Len(t, degraded, 1)
	assert.Equal(t, "NEW", degraded[0].Symbol)
}

func TestCalculateTotals_ConcurrentReads(t *testing.T) {
	agg := newTestAggregator(t)

	data := domain.NewFinancialData()
	data.Transactions = []domain.Transaction{tx(domain.TransactionKindIncome, 10)}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			totals := agg.CalculateTotals(data)
			assert.True(t, totals.NetWorth.Equal(decimal.NewFromInt(10)))
		}()
	}
	wg.Wait()

	assert.Len(t, data.Transactions, 1, "aggregation never mutates its input")
}
