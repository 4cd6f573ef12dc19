package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Snapshot represents an immutable point-in-time valuation
// Snapshots are only ever appended or bulk-deleted, never edited
type Snapshot struct {
	ID               uuid.UUID
	Date             time.Time
	NetWorth         decimal.Decimal
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	Liquidity        decimal.Decimal
	Investments      decimal.Decimal
	Crypto           decimal.Decimal
	CreatedAt        time.Time
}

// NewSnapshot builds a snapshot from aggregated totals taken at the given instant
func NewSnapshot(totals Totals, at time.Time) *Snapshot {
	return &Snapshot{
		ID:               uuid.New(),
		Date:             at,
		NetWorth:         totals.NetWorth,
		TotalAssets:      totals.TotalAssets,
		TotalLiabilities: totals.TotalLiabilities,
		Liquidity:        totals.TotalLiquidity,
		Investments:      totals.TotalInvestments,
		Crypto:           totals.TotalCrypto,
		CreatedAt:        at,
	}
}

// ChartPoint is one point of a historical series
type ChartPoint struct {
	Date  time.Time
	Label string
	Value decimal.Decimal
}
