package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Liability represents a debt owed by the user (mortgage, loan, credit card...)
type Liability struct {
	ID             uuid.UUID
	Name           string
	Type           string
	CurrentBalance decimal.Decimal
	Principal      decimal.Decimal
	InterestRate   decimal.Decimal // Annual percentage
	Currency       string
	MonthlyPayment decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate ensures the liability adheres to domain rules
func (l *Liability) Validate() error {
	if l.Name == "" {
		return errors.New("liability name cannot be empty")
	}

	if l.CurrentBalance.IsNegative() {
		return errors.New("liability balance must not be negative")
	}

	if l.InterestRate.IsNegative() {
		return errors.New("interest rate must not be negative")
	}

	return nil
}

// NormalizePrincipal falls back to the current balance when no principal was recorded
func (l *Liability) NormalizePrincipal() {
	if l.Principal.IsZero() {
		l.Principal = l.CurrentBalance
	}
}
