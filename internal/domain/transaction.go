package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind represents the direction of a cash transaction
type TransactionKind string

const (
	TransactionKindIncome  TransactionKind = "income"
	TransactionKindExpense TransactionKind = "expense"
)

// DateLayout is the calendar-day wire format used for transaction dates
const DateLayout = "2006-01-02"

// FeeCategory is the category used for automatically logged trading fees
const FeeCategory = "Trading Fees"

// Transaction represents a cash transaction entity in the domain layer
// Transactions are immutable once created; they are only ever deleted
type Transaction struct {
	ID          uuid.UUID
	Kind        TransactionKind
	Category    string
	Amount      decimal.Decimal // ABSOLUTE VALUE (Always Positive)
	Date        time.Time       // Calendar day, UTC midnight
	Description string
	CreatedAt   time.Time
}

// Validate ensures the transaction adheres to domain rules
// Returns an error if validation fails
func (t *Transaction) Validate() error {
	if t.Kind != TransactionKindIncome && t.Kind != TransactionKindExpense {
		return errors.New("transaction kind must be income or expense")
	}

	if t.Category == "" {
		return errors.New("transaction category cannot be empty")
	}

	// Amount is a magnitude; the kind carries the sign
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("transaction amount must be positive (absolute value)")
	}

	if t.Date.IsZero() {
		return errors.New("transaction date is required")
	}

	return nil
}

// IsIncome reports whether the transaction adds to liquidity
func (t *Transaction) IsIncome() bool {
	return t.Kind == TransactionKindIncome
}

// IsExpense reports whether the transaction subtracts from liquidity
func (t *Transaction) IsExpense() bool {
	return t.Kind == TransactionKindExpense
}

// DayKey returns the transaction date in DateLayout
func (t *Transaction) DayKey() string {
	return t.Date.Format(DateLayout)
}

// CalendarDay truncates a timestamp to midnight UTC of its calendar day
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a DateLayout string (or a full RFC3339 timestamp) into a calendar day
func ParseDay(value string) (time.Time, error) {
	if d, err := time.Parse(DateLayout, value); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.New("invalid date format, expected YYYY-MM-DD")
	}
	return CalendarDay(ts), nil
}
