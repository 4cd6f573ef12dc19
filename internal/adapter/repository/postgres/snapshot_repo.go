package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

var snapshotColumns = [6]string{"net_worth", "total_assets", "total_liabilities", "liquidity", "investments", "crypto"}

// snapshotRepository implements domain.SnapshotRepository
type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *DB) domain.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// List retrieves the owner's net-worth history in date order
func (r *snapshotRepository) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Snapshot, error) {
	query := `
		SELECT id, date, net_worth, total_assets, total_liabilities, liquidity, investments, crypto, created_at
		FROM portfolio_snapshots
		WHERE user_id = $1
		ORDER BY date
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]*domain.Snapshot, 0)
	for rows.Next() {
		var s domain.Snapshot
		var values [6]string

		if err := rows.Scan(
			&s.ID,
			&s.Date,
			&values[0],
			&values[1],
			&values[2],
			&values[3],
			&values[4],
			&values[5],
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		targets := []*decimal.Decimal{&s.NetWorth, &s.TotalAssets, &s.TotalLiabilities, &s.Liquidity, &s.Investments, &s.Crypto}
		for i, dst := range targets {
			if *dst, err = parseDecimal(snapshotColumns[i], values[i]); err != nil {
				return nil, err
			}
		}

		s.Date = s.Date.UTC()
		snapshots = append(snapshots, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, nil
}

// Add appends a snapshot; existing rows are never rewritten
func (r *snapshotRepository) Add(ctx context.Context, ownerID uuid.UUID, s *domain.Snapshot) error {
	if s == nil {
		return errNilRecord
	}

	query := `
		INSERT INTO portfolio_snapshots (id, user_id, date, net_worth, total_assets, total_liabilities,
		                                 liquidity, investments, crypto, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		ownerID,
		s.Date,
		s.NetWorth.String(),
		s.TotalAssets.String(),
		s.TotalLiabilities.String(),
		s.Liquidity.String(),
		s.Investments.String(),
		s.Crypto.String(),
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// DeleteAll removes the owner's whole history
func (r *snapshotRepository) DeleteAll(ctx context.Context, ownerID uuid.UUID) error {
	return r.db.deleteAll(ctx, "portfolio_snapshots", ownerID)
}
