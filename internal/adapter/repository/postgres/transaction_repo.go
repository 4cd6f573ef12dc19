package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

// List retrieves every transaction of the owner, newest first
func (r *transactionRepository) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Transaction, error) {
	query := `
		SELECT id, type, category, amount, description, date, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*domain.Transaction, 0)
	for rows.Next() {
		var tx domain.Transaction
		var kind, amountStr string

		if err := rows.Scan(
			&tx.ID,
			&kind,
			&tx.Category,
			&amountStr,
			&tx.Description,
			&tx.Date,
			&tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		tx.Kind = domain.TransactionKind(kind)
		tx.Date = domain.CalendarDay(tx.Date)

		// Parse amount (NUMERIC)
		if tx.Amount, err = parseDecimal("amount", amountStr); err != nil {
			return nil, err
		}

		transactions = append(transactions, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

// Create inserts a new transaction
func (r *transactionRepository) Create(ctx context.Context, ownerID uuid.UUID, tx *domain.Transaction) error {
	if tx == nil {
		return errNilRecord
	}

	query := `
		INSERT INTO transactions (id, user_id, type, category, amount, description, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		ownerID,
		string(tx.Kind),
		tx.Category,
		tx.Amount.String(),
		tx.Description,
		tx.DayKey(),
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// Delete removes a transaction by its ID
func (r *transactionRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return expectRow(result, "transaction", id)
}

// DeleteAll removes every transaction of the owner
func (r *transactionRepository) DeleteAll(ctx context.Context, ownerID uuid.UUID) error {
	return r.db.deleteAll(ctx, "transactions", ownerID)
}
