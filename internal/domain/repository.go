package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRepository defines the interface for transaction persistence operations
type TransactionRepository interface {
	// List retrieves every transaction of the owner
	List(ctx context.Context, ownerID uuid.UUID) ([]*Transaction, error)

	// Create inserts a new transaction
	Create(ctx context.Context, ownerID uuid.UUID, tx *Transaction) error

	// Delete removes a transaction by its ID
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// DeleteAll removes every transaction of the owner
	DeleteAll(ctx context.Context, ownerID uuid.UUID) error
}

// AssetRepository defines the interface for the unified assets table
// Investment and crypto holdings are both stored here, tagged by category
type AssetRepository interface {
	// List retrieves every asset row of the owner
	List(ctx context.Context, ownerID uuid.UUID) ([]*AssetRecord, error)

	// Create inserts a new asset row
	Create(ctx context.Context, record *AssetRecord) error

	// Update replaces the descriptive fields of an asset row
	Update(ctx context.Context, record *AssetRecord) error

	// UpdatePrice writes back a refreshed price and its timestamp in one statement
	UpdatePrice(ctx context.Context, ownerID, id uuid.UUID, price decimal.Decimal, at time.Time) error

	// Delete removes an asset row by its ID
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// DeleteAll removes every asset row of the owner
	DeleteAll(ctx context.Context, ownerID uuid.UUID) error
}

// LiabilityRepository defines the interface for liability persistence operations
type LiabilityRepository interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]*Liability, error)
	Create(ctx context.Context, ownerID uuid.UUID, liability *Liability) error
	Update(ctx context.Context, ownerID uuid.UUID, liability *Liability) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	DeleteAll(ctx context.Context, ownerID uuid.UUID) error
}

// SnapshotRepository defines the interface for net-worth history persistence
// Snapshots are append-only: there is no update operation
type SnapshotRepository interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]*Snapshot, error)
	Add(ctx context.Context, ownerID uuid.UUID, snapshot *Snapshot) error
	DeleteAll(ctx context.Context, ownerID uuid.UUID) error
}

// LocalCache persists the whole record set as one blob when no owner is known
type LocalCache interface {
	// Load returns the cached record set, or (nil, nil) when nothing is cached
	Load(ctx context.Context) (*FinancialData, error)

	// Save replaces the cached record set
	Save(ctx context.Context, data *FinancialData) error

	// Clear removes the cached record set
	Clear(ctx context.Context) error
}

// CryptoQuoteRequest identifies one coin in a batched price lookup
type CryptoQuoteRequest struct {
	Symbol string
	CoinID string
}

// StockPriceSource returns the latest price of a single instrument
// ok is false when the source has no price for the symbol; that is not an error
type StockPriceSource interface {
	GetPrice(ctx context.Context, symbol string) (price decimal.Decimal, ok bool, err error)
}

// CryptoPriceSource returns the latest prices of several coins at once
// The result is keyed by CoinID; coins without a price are simply absent
type CryptoPriceSource interface {
	GetBatchPrices(ctx context.Context, items []CryptoQuoteRequest) (map[string]decimal.Decimal, error)
}
