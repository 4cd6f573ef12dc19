package valuation

import (
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// Converter turns an amount in a source currency into the base currency
type Converter interface {
	Convert(amount decimal.Decimal, source string) decimal.Decimal
	Base() string
}

// Aggregator combines raw records into currency-normalized totals
// It never mutates the record set it is given and is safe for concurrent use
type Aggregator struct {
	Converter Converter
}

// NewAggregator creates a new Aggregator instance
func NewAggregator(converter Converter) *Aggregator {
	return &Aggregator{
		Converter: converter,
	}
}

// CalculateTotals computes the category totals and net worth of a record set
// Logic:
//   - Liquidity: Sum(income) - Sum(expense) over all transactions, all-time
//   - Investments: Sum of current value (cost basis when never priced), converted
//   - Crypto: Sum of quantity x price, converted from the crypto reference unit
//   - Assets: Liquidity + Investments + Crypto
//   - Liabilities: Sum of current balances, converted
//   - Net worth: Assets - Liabilities
func (a *Aggregator) CalculateTotals(data *domain.FinancialData) domain.Totals {
	if data == nil {
		return zeroTotals()
	}

	// 1. Liquidity is derived from the ledger only, never from a running balance
	liquidity := a.Liquidity(data.Transactions)

	// 2. Investments
	investments := decimal.Zero
	for i := range data.Investments {
		h := &data.Investments[i]
		investments = investments.Add(a.Converter.Convert(h.Valuation(), h.Currency))
	}

	// 3. Crypto
	crypto := decimal.Zero
	for i := range data.Crypto {
		c := &data.Crypto[i]
		crypto = crypto.Add(a.Converter.Convert(c.CurrentValue(), domain.CryptoCurrency))
	}

	// 4. Liabilities
	liabilities := decimal.Zero
	for i := range data.Liabilities {
		l := &data.Liabilities[i]
		liabilities = liabilities.Add(a.Converter.Convert(l.CurrentBalance, l.Currency))
	}

	assets := liquidity.Add(investments).Add(crypto)

	return domain.Totals{
		TotalLiquidity:   liquidity,
		TotalInvestments: investments,
		TotalCrypto:      crypto,
		TotalAssets:      assets,
		TotalLiabilities: liabilities,
		NetWorth:         assets.Sub(liabilities),
	}
}

// Liquidity returns Sum(income) - Sum(expense) in the base currency
// Transactions carry no currency of their own and are recorded in the base currency
func (a *Aggregator) Liquidity(transactions []domain.Transaction) decimal.Decimal {
	income := decimal.Zero
	expense := decimal.Zero

	for i := range transactions {
		tx := &transactions[i]
		amount := a.Converter.Convert(tx.Amount, a.Converter.Base())
		switch tx.Kind {
		case domain.TransactionKindIncome:
			income = income.Add(amount)
		case domain.TransactionKindExpense:
			expense = expense.Add(amount)
		}
	}

	return income.Sub(expense)
}

// DegradedHoldings returns the investment holdings currently valued at cost basis
// because no price has ever been obtained for them
func (a *Aggregator) DegradedHoldings(data *domain.FinancialData) []domain.InvestmentHolding {
	degraded := make([]domain.InvestmentHolding, 0)
	if data == nil {
		return degraded
	}

	for _, h := range data.Investments {
		if h.LastPriceUpdate == nil || h.CurrentValue().IsZero() {
			degraded = append(degraded, h)
		}
	}

	return degraded
}

func zeroTotals() domain.Totals {
	return domain.Totals{
		TotalLiquidity:   decimal.Zero,
		TotalInvestments: decimal.Zero,
		TotalCrypto:      decimal.Zero,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		NetWorth:         decimal.Zero,
	}
}
