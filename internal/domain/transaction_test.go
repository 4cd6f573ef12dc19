package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_Validate(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		tx      Transaction
		wantErr bool
		errMsg  string
	}{
		{
			name: "Income transaction should pass",
			tx: Transaction{
				ID:       uuid.New(),
				Kind:     TransactionKindIncome,
				Category: "Salary",
				Amount:   decimal.NewFromInt(1000),
				Date:     day,
			},
			wantErr: false,
		},
		{
			name: "Expense transaction should pass",
			tx: Transaction{
				ID:       uuid.New(),
				Kind:     TransactionKindExpense,
				Category: "Groceries",
				Amount:   decimal.NewFromFloat(42.5),
				Date:     day,
			},
			wantErr: false,
		},
		{
			name: "Unknown kind should fail",
			tx: Transaction{
				ID:       uuid.New(),
				Kind:     TransactionKind("transfer"),
				Category: "Misc",
				Amount:   decimal.NewFromInt(10),
				Date:     day,
			},
			wantErr: true,
			errMsg:  "transaction kind must be income or expense",
		},
		{
			name: "Empty category should fail",
			tx: Transaction{
				ID:     uuid.New(),
				Kind:   TransactionKindExpense,
				Amount: decimal.NewFromInt(10),
				Date:   day,
			},
			wantErr: true,
			errMsg:  "transaction category cannot be empty",
		},
		{
			name: "Zero amount should fail",
			tx: Transaction{
				ID:       uuid.New(),
				Kind:     TransactionKindExpense,
				Category: "Rent",
				Amount:   decimal.Zero,
				Date:     day,
			},
			wantErr: true,
			errMsg:  "transaction amount must be positive (absolute value)",
		},
		{
			name: "Negative amount should fail",
			tx: Transaction{
				ID:       uuid.New(),
				Kind:     TransactionKindIncome,
				Category: "Refund",
				Amount:   decimal.NewFromInt(-5),
				Date:     day,
			},
			wantErr: true,
			errMsg:  "transaction amount must be positive (absolute value)",
		},
		{
			name: "Missing date should fail",
			tx: Transaction{
				ID:       uuid.New(),
				Kind:     TransactionKindIncome,
				Category: "Salary",
				Amount:   decimal.NewFromInt(5),
			},
			wantErr: true,
			errMsg:  "transaction date is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2026-02-03")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDay("2026-02-03T17:45:00Z")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDay("03/02/2026")
	assert.Error(t, err)
}
