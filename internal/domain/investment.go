package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstrumentType represents the kind of instrument an investment holding tracks
type InstrumentType string

const (
	InstrumentTypeStock InstrumentType = "stock"
	InstrumentTypeETF   InstrumentType = "etf"
	InstrumentTypeOther InstrumentType = "other"
)

// CryptoCurrency is the reference unit all crypto prices are quoted in
const CryptoCurrency = "USD"

// HoldingKind distinguishes the two priced holding families
type HoldingKind string

const (
	HoldingKindInvestment HoldingKind = "investment"
	HoldingKindCrypto     HoldingKind = "crypto"
)

// InvestmentHolding represents an equity, ETF or manually valued position
// CurrentValue is never stored: it is always Quantity x CurrentPrice
type InvestmentHolding struct {
	ID              uuid.UUID
	InstrumentType  InstrumentType
	Symbol          string
	Name            string
	Quantity        decimal.Decimal
	CostBasis       decimal.Decimal // Cumulative amount paid
	CurrentPrice    decimal.Decimal // Zero when never priced
	Currency        string
	LastPriceUpdate *time.Time // NULL until the first successful refresh
	Sector          string
	Geography       string
	ISIN            string
	Fees            decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate ensures the investment holding adheres to domain rules
func (h *InvestmentHolding) Validate() error {
	if h.Symbol == "" && h.Name == "" {
		return errors.New("investment must have a symbol or a name")
	}

	switch h.InstrumentType {
	case InstrumentTypeStock, InstrumentTypeETF, InstrumentTypeOther:
	default:
		return errors.New("instrument type must be stock, etf, or other")
	}

	if h.Quantity.IsNegative() {
		return errors.New("quantity must not be negative")
	}

	if h.CostBasis.IsNegative() {
		return errors.New("cost basis must not be negative")
	}

	if h.Fees.IsNegative() {
		return errors.New("fees must not be negative")
	}

	return nil
}

// CurrentValue returns Quantity x CurrentPrice
func (h *InvestmentHolding) CurrentValue() decimal.Decimal {
	return h.Quantity.Mul(h.CurrentPrice)
}

// HasPrice reports whether a market price is known for the holding
func (h *InvestmentHolding) HasPrice() bool {
	return h.CurrentPrice.IsPositive()
}

// Valuation returns the current value, degrading to cost basis for never-priced holdings
func (h *InvestmentHolding) Valuation() decimal.Decimal {
	if value := h.CurrentValue(); !value.IsZero() {
		return value
	}
	return h.CostBasis
}

// AvgBuyPrice returns CostBasis / Quantity, or zero for an empty position
func (h *InvestmentHolding) AvgBuyPrice() decimal.Decimal {
	if h.Quantity.IsZero() {
		return decimal.Zero
	}
	return h.CostBasis.Div(h.Quantity)
}

// IsAutoPriced reports whether the holding is eligible for automatic price refresh
// Other instrument types are manual-value assets and are never refreshed
func (h *InvestmentHolding) IsAutoPriced() bool {
	return h.InstrumentType == InstrumentTypeStock || h.InstrumentType == InstrumentTypeETF
}

// CryptoHolding represents a crypto position, always quoted in CryptoCurrency
type CryptoHolding struct {
	ID              uuid.UUID
	Symbol          string
	Name            string
	Quantity        decimal.Decimal
	AvgBuyPrice     decimal.Decimal
	CurrentPrice    decimal.Decimal
	Currency        string
	LastPriceUpdate *time.Time
	Fees            decimal.Decimal
	CoinID          string // Optional external identifier
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate ensures the crypto holding adheres to domain rules
func (c *CryptoHolding) Validate() error {
	if c.Symbol == "" {
		return errors.New("crypto symbol cannot be empty")
	}

	if c.Quantity.IsNegative() {
		return errors.New("quantity must not be negative")
	}

	if c.AvgBuyPrice.IsNegative() {
		return errors.New("average buy price must not be negative")
	}

	if c.Fees.IsNegative() {
		return errors.New("fees must not be negative")
	}

	return nil
}

// CurrentValue returns Quantity x CurrentPrice in CryptoCurrency
func (c *CryptoHolding) CurrentValue() decimal.Decimal {
	return c.Quantity.Mul(c.CurrentPrice)
}

// CostBasis returns Quantity x AvgBuyPrice in CryptoCurrency
func (c *CryptoHolding) CostBasis() decimal.Decimal {
	return c.Quantity.Mul(c.AvgBuyPrice)
}

// LookupID returns the identifier used to key batched price lookups
func (c *CryptoHolding) LookupID() string {
	if c.CoinID != "" {
		return c.CoinID
	}
	if c.Name != "" {
		return strings.ToLower(c.Name)
	}
	return strings.ToLower(c.Symbol)
}

// PriceState represents where a holding sits in the refresh lifecycle
type PriceState string

const (
	PriceStateFresh      PriceState = "FRESH"
	PriceStateStale      PriceState = "STALE"
	PriceStateRefreshing PriceState = "REFRESHING"
)

// IsStale reports whether a price last updated at lastUpdate must be refreshed at now
// A nil lastUpdate (never priced) is always stale
func IsStale(lastUpdate *time.Time, now time.Time, window time.Duration) bool {
	if lastUpdate == nil {
		return true
	}
	return now.Sub(*lastUpdate) > window
}

// CheckHoldingInvariants returns ErrInvariantViolation when a holding is in a state
// that no code path may produce
func CheckHoldingInvariants(quantity, price decimal.Decimal) error {
	if quantity.IsNegative() {
		return errors.Join(ErrInvariantViolation, errors.New("negative quantity"))
	}
	if price.IsNegative() {
		return errors.Join(ErrInvariantViolation, errors.New("negative price"))
	}
	return nil
}
