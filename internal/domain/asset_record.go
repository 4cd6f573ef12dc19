package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetCategory tags a row of the unified assets table
type AssetCategory string

const (
	AssetCategoryInvestment AssetCategory = "investment"
	AssetCategoryCrypto     AssetCategory = "crypto"
)

// AssetRecord is the store-boundary shape of a holding
// Investments and crypto share one table and are told apart by Category.
// Conversion to and from the domain holdings happens only through the
// functions in this file, so schema drift stays out of the engine.
type AssetRecord struct {
	ID              uuid.UUID
	OwnerID         uuid.UUID
	Category        AssetCategory
	Type            string
	Symbol          string
	Name            string
	Quantity        decimal.Decimal
	AvgBuyPrice     decimal.Decimal
	CurrentPrice    *decimal.Decimal // NULL when never priced
	LastPriceUpdate *time.Time
	TradingCurrency string
	Sector          string
	Geography       string
	ISIN            string
	Fees            decimal.Decimal
	CoinID          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ToInvestment normalizes an investment row into a domain holding
// Cost basis is stored as an average buy price and rebuilt here
func (r *AssetRecord) ToInvestment() InvestmentHolding {
	price := decimal.Zero
	if r.CurrentPrice != nil {
		price = *r.CurrentPrice
	}

	instrument := InstrumentType(strings.ToLower(r.Type))
	switch instrument {
	case InstrumentTypeStock, InstrumentTypeETF:
	default:
		instrument = InstrumentTypeOther
	}

	currency := strings.ToUpper(r.TradingCurrency)
	if currency == "" {
		currency = CryptoCurrency
	}

	return InvestmentHolding{
		ID:              r.ID,
		InstrumentType:  instrument,
		Symbol:          r.Symbol,
		Name:            r.Name,
		Quantity:        r.Quantity,
		CostBasis:       r.AvgBuyPrice.Mul(r.Quantity),
		CurrentPrice:    price,
		Currency:        currency,
		LastPriceUpdate: r.LastPriceUpdate,
		Sector:          r.Sector,
		Geography:       r.Geography,
		ISIN:            r.ISIN,
		Fees:            r.Fees,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// ToCrypto normalizes a crypto row into a domain holding
func (r *AssetRecord) ToCrypto() CryptoHolding {
	price := decimal.Zero
	if r.CurrentPrice != nil {
		price = *r.CurrentPrice
	}

	return CryptoHolding{
		ID:              r.ID,
		Symbol:          r.Symbol,
		Name:            r.Name,
		Quantity:        r.Quantity,
		AvgBuyPrice:     r.AvgBuyPrice,
		CurrentPrice:    price,
		Currency:        CryptoCurrency,
		LastPriceUpdate: r.LastPriceUpdate,
		Fees:            r.Fees,
		CoinID:          r.CoinID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// AssetRecordFromInvestment builds the row persisted for an investment holding
func AssetRecordFromInvestment(ownerID uuid.UUID, h *InvestmentHolding) *AssetRecord {
	record := &AssetRecord{
		ID:              h.ID,
		OwnerID:         ownerID,
		Category:        AssetCategoryInvestment,
		Type:            string(h.InstrumentType),
		Symbol:          h.Symbol,
		Name:            h.Name,
		Quantity:        h.Quantity,
		AvgBuyPrice:     h.AvgBuyPrice(),
		LastPriceUpdate: h.LastPriceUpdate,
		TradingCurrency: h.Currency,
		Sector:          h.Sector,
		Geography:       h.Geography,
		ISIN:            h.ISIN,
		Fees:            h.Fees,
		CreatedAt:       h.CreatedAt,
		UpdatedAt:       h.UpdatedAt,
	}
	if h.HasPrice() {
		price := h.CurrentPrice
		record.CurrentPrice = &price
	}
	return record
}

// AssetRecordFromCrypto builds the row persisted for a crypto holding
func AssetRecordFromCrypto(ownerID uuid.UUID, c *CryptoHolding) *AssetRecord {
	record := &AssetRecord{
		ID:              c.ID,
		OwnerID:         ownerID,
		Category:        AssetCategoryCrypto,
		Type:            string(AssetCategoryCrypto),
		Symbol:          c.Symbol,
		Name:            c.Name,
		Quantity:        c.Quantity,
		AvgBuyPrice:     c.AvgBuyPrice,
		LastPriceUpdate: c.LastPriceUpdate,
		TradingCurrency: CryptoCurrency,
		Fees:            c.Fees,
		CoinID:          c.CoinID,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.CurrentPrice.IsPositive() {
		price := c.CurrentPrice
		record.CurrentPrice = &price
	}
	return record
}

// SplitAssets normalizes a mixed list of rows into investment and crypto holdings
// Rows with an unknown category are skipped
func SplitAssets(records []*AssetRecord) ([]InvestmentHolding, []CryptoHolding) {
	investments := make([]InvestmentHolding, 0)
	crypto := make([]CryptoHolding, 0)

	for _, r := range records {
		switch r.Category {
		case AssetCategoryInvestment:
			investments = append(investments, r.ToInvestment())
		case AssetCategoryCrypto:
			crypto = append(crypto, r.ToCrypto())
		}
	}

	return investments, crypto
}
