package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// liabilityRepository implements domain.LiabilityRepository
type liabilityRepository struct {
	db *DB
}

// NewLiabilityRepository creates a new liability repository
func NewLiabilityRepository(db *DB) domain.LiabilityRepository {
	return &liabilityRepository{db: db}
}

// List retrieves every liability of the owner
func (r *liabilityRepository) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Liability, error) {
	query := `
		SELECT id, name, type, current_balance, principal, interest_rate, currency,
		       monthly_payment, created_at, updated_at
		FROM liabilities
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list liabilities: %w", err)
	}
	defer rows.Close()

	liabilities := make([]*domain.Liability, 0)
	for rows.Next() {
		var l domain.Liability
		var balanceStr, principalStr, rateStr, paymentStr string

		if err := rows.Scan(
			&l.ID,
			&l.Name,
			&l.Type,
			&balanceStr,
			&principalStr,
			&rateStr,
			&l.Currency,
			&paymentStr,
			&l.CreatedAt,
			&l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan liability: %w", err)
		}

		if l.CurrentBalance, err = parseDecimal("current_balance", balanceStr); err != nil {
			return nil, err
		}
		if l.Principal, err = parseDecimal("principal", principalStr); err != nil {
			return nil, err
		}
		if l.InterestRate, err = parseDecimal("interest_rate", rateStr); err != nil {
			return nil, err
		}
		if l.MonthlyPayment, err = parseDecimal("monthly_payment", paymentStr); err != nil {
			return nil, err
		}

		liabilities = append(liabilities, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate liabilities: %w", err)
	}

	return liabilities, nil
}

// Create inserts a new liability
func (r *liabilityRepository) Create(ctx context.Context, ownerID uuid.UUID, l *domain.Liability) error {
	if l == nil {
		return errNilRecord
	}

	query := `
		INSERT INTO liabilities (id, user_id, name, type, current_balance, principal, interest_rate,
		                         currency, monthly_payment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		l.ID,
		ownerID,
		l.Name,
		l.Type,
		l.CurrentBalance.String(),
		l.Principal.String(),
		l.InterestRate.String(),
		l.Currency,
		l.MonthlyPayment.String(),
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert liability: %w", err)
	}

	return nil
}

// Update replaces every editable field of a liability
func (r *liabilityRepository) Update(ctx context.Context, ownerID uuid.UUID, l *domain.Liability) error {
	if l == nil {
		return errNilRecord
	}

	query := `
		UPDATE liabilities
		SET name = $3, type = $4, current_balance = $5, principal = $6, interest_rate = $7,
		    currency = $8, monthly_payment = $9, updated_at = $10
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		l.ID,
		ownerID,
		l.Name,
		l.Type,
		l.CurrentBalance.String(),
		l.Principal.String(),
		l.InterestRate.String(),
		l.Currency,
		l.MonthlyPayment.String(),
		l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update liability: %w", err)
	}

	return expectRow(result, "liability", l.ID)
}

// Delete removes a liability by its ID
func (r *liabilityRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM liabilities WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete liability: %w", err)
	}
	return expectRow(result, "liability", id)
}

// DeleteAll removes every liability of the owner
func (r *liabilityRepository) DeleteAll(ctx context.Context, ownerID uuid.UUID) error {
	return r.db.deleteAll(ctx, "liabilities", ownerID)
}
