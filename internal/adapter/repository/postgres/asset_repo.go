package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// assetRepository implements domain.AssetRepository
type assetRepository struct {
	db *DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB) domain.AssetRepository {
	return &assetRepository{db: db}
}

// List retrieves every asset row of the owner
func (r *assetRepository) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.AssetRecord, error) {
	query := `
		SELECT id, user_id, category, type, symbol, name, quantity, avg_buy_price,
		       current_price, last_price_update, trading_currency, sector, geography,
		       isin, fees, coin_id, created_at, updated_at
		FROM assets
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.AssetRecord, 0)
	for rows.Next() {
		var rec domain.AssetRecord
		var category, quantityStr, avgStr, feesStr string
		var priceStr sql.NullString
		var lastUpdate sql.NullTime

		if err := rows.Scan(
			&rec.ID,
			&rec.OwnerID,
			&category,
			&rec.Type,
			&rec.Symbol,
			&rec.Name,
			&quantityStr,
			&avgStr,
			&priceStr,
			&lastUpdate,
			&rec.TradingCurrency,
			&rec.Sector,
			&rec.Geography,
			&rec.ISIN,
			&feesStr,
			&rec.CoinID,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}

		rec.Category = domain.AssetCategory(category)

		if rec.Quantity, err = parseDecimal("quantity", quantityStr); err != nil {
			return nil, err
		}
		if rec.AvgBuyPrice, err = parseDecimal("avg_buy_price", avgStr); err != nil {
			return nil, err
		}
		if rec.Fees, err = parseDecimal("fees", feesStr); err != nil {
			return nil, err
		}

		// Parse current_price (nullable until the first refresh)
		if priceStr.Valid {
			price, err := parseDecimal("current_price", priceStr.String)
			if err != nil {
				return nil, err
			}
			rec.CurrentPrice = &price
		}
		if lastUpdate.Valid {
			t := lastUpdate.Time.UTC()
			rec.LastPriceUpdate = &t
		}

		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}

	return records, nil
}

// Create inserts a new asset row
func (r *assetRepository) Create(ctx context.Context, record *domain.AssetRecord) error {
	if record == nil {
		return errNilRecord
	}

	query := `
		INSERT INTO assets (id, user_id, category, type, symbol, name, quantity, avg_buy_price,
		                    current_price, last_price_update, trading_currency, sector, geography,
		                    isin, fees, coin_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.OwnerID,
		string(record.Category),
		record.Type,
		record.Symbol,
		record.Name,
		record.Quantity.String(),
		record.AvgBuyPrice.String(),
		nullableDecimal(record.CurrentPrice),
		nullableTime(record.LastPriceUpdate),
		record.TradingCurrency,
		record.Sector,
		record.Geography,
		record.ISIN,
		record.Fees.String(),
		record.CoinID,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}

	return nil
}

// Update replaces the descriptive fields of an asset row
// Prices are left alone: they only change through UpdatePrice
func (r *assetRepository) Update(ctx context.Context, record *domain.AssetRecord) error {
	if record == nil {
		return errNilRecord
	}

	query := `
		UPDATE assets
		SET symbol = $3, name = $4, quantity = $5, avg_buy_price = $6, trading_currency = $7,
		    sector = $8, geography = $9, isin = $10, fees = $11, coin_id = $12, updated_at = $13
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.OwnerID,
		record.Symbol,
		record.Name,
		record.Quantity.String(),
		record.AvgBuyPrice.String(),
		record.TradingCurrency,
		record.Sector,
		record.Geography,
		record.ISIN,
		record.Fees.String(),
		record.CoinID,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}

	return expectRow(result, "asset", record.ID)
}

// UpdatePrice writes back a refreshed price and its timestamp in one statement
func (r *assetRepository) UpdatePrice(ctx context.Context, ownerID, id uuid.UUID, price decimal.Decimal, at time.Time) error {
	query := `
		UPDATE assets
		SET current_price = $3, last_price_update = $4, updated_at = $4
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, id, ownerID, price.String(), at)
	if err != nil {
		return fmt.Errorf("failed to update asset price: %w", err)
	}

	return expectRow(result, "asset", id)
}

// Delete removes an asset row by its ID
func (r *assetRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return expectRow(result, "asset", id)
}

// DeleteAll removes every asset row of the owner
func (r *assetRepository) DeleteAll(ctx context.Context, ownerID uuid.UUID) error {
	return r.db.deleteAll(ctx, "assets", ownerID)
}

func nullableDecimal(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
