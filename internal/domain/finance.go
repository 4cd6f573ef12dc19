package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// FinancialData is the complete record set of one session
// It is also the shape persisted in the local fallback cache
type FinancialData struct {
	Transactions []Transaction
	Investments  []InvestmentHolding
	Crypto       []CryptoHolding
	Liabilities  []Liability
	Snapshots    []Snapshot
}

// NewFinancialData returns an empty record set
func NewFinancialData() *FinancialData {
	return &FinancialData{
		Transactions: []Transaction{},
		Investments:  []InvestmentHolding{},
		Crypto:       []CryptoHolding{},
		Liabilities:  []Liability{},
		Snapshots:    []Snapshot{},
	}
}

// Clone returns a copy whose slices can be read while the original is mutated
// Records are replaced wholesale on mutation, so copying the slices is sufficient
func (d *FinancialData) Clone() *FinancialData {
	if d == nil {
		return NewFinancialData()
	}
	return &FinancialData{
		Transactions: slices.Clone(d.Transactions),
		Investments:  slices.Clone(d.Investments),
		Crypto:       slices.Clone(d.Crypto),
		Liabilities:  slices.Clone(d.Liabilities),
		Snapshots:    slices.Clone(d.Snapshots),
	}
}

// IsEmpty reports whether the record set holds no records at all
func (d *FinancialData) IsEmpty() bool {
	return d == nil || (len(d.Transactions) == 0 &&
		len(d.Investments) == 0 &&
		len(d.Crypto) == 0 &&
		len(d.Liabilities) == 0 &&
		len(d.Snapshots) == 0)
}

// Totals represents the currency-normalized valuation of a record set
type Totals struct {
	TotalLiquidity   decimal.Decimal
	TotalInvestments decimal.Decimal
	TotalCrypto      decimal.Decimal
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	NetWorth         decimal.Decimal
}
