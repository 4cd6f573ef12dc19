package datastore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// TransactionInput is the payload of AddTransaction
type TransactionInput struct {
	Kind        string `validate:"required,oneof=income expense"`
	Category    string `validate:"required,max=64"`
	Amount      decimal.Decimal
	Date        string `validate:"required"` // YYYY-MM-DD
	Description string `validate:"max=512"`
}

// InvestmentInput is the payload of AddInvestment
type InvestmentInput struct {
	Type      string `validate:"required,oneof=stock etf other"`
	Symbol    string `validate:"required_without=Name,max=32"`
	Name      string `validate:"max=128"`
	Quantity  decimal.Decimal
	CostBasis decimal.Decimal // Total amount paid
	Currency  string          `validate:"omitempty,len=3,alpha"`
	Sector    string          `validate:"max=64"`
	Geography string          `validate:"max=64"`
	ISIN      string          `validate:"omitempty,len=12,alphanum"`
	Fees      decimal.Decimal
}

// InvestmentUpdate is a partial update; nil fields are left unchanged
type InvestmentUpdate struct {
	Quantity  *decimal.Decimal
	CostBasis *decimal.Decimal
	Currency  *string `validate:"omitempty,len=3,alpha"`
	Name      *string `validate:"omitempty,max=128"`
	Symbol    *string `validate:"omitempty,max=32"`
	Sector    *string `validate:"omitempty,max=64"`
	Geography *string `validate:"omitempty,max=64"`
}

// CryptoInput is the payload of AddCrypto
type CryptoInput struct {
	Symbol      string `validate:"required,max=16"`
	Name        string `validate:"max=64"`
	Quantity    decimal.Decimal
	AvgBuyPrice decimal.Decimal
	Fees        decimal.Decimal
	CoinID      string `validate:"omitempty,max=64"`
}

// CryptoUpdate is a partial update; nil fields are left unchanged
type CryptoUpdate struct {
	Quantity    *decimal.Decimal
	AvgBuyPrice *decimal.Decimal
	Name        *string `validate:"omitempty,max=64"`
	CoinID      *string `validate:"omitempty,max=64"`
}

// LiabilityInput is the payload of AddLiability
type LiabilityInput struct {
	Name           string `validate:"required,max=128"`
	Type           string `validate:"max=32"`
	CurrentBalance decimal.Decimal
	Principal      decimal.Decimal
	InterestRate   decimal.Decimal
	Currency       string `validate:"omitempty,len=3,alpha"`
	MonthlyPayment decimal.Decimal
}

// LiabilityUpdate is a partial update; nil fields are left unchanged
type LiabilityUpdate struct {
	CurrentBalance *decimal.Decimal
	InterestRate   *decimal.Decimal
	MonthlyPayment *decimal.Decimal
	Name           *string `validate:"omitempty,max=128"`
}

// checkInput runs the struct tags of an input through the validator
func (s *Store) checkInput(input any) error {
	if err := s.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return invalid(errors.New(strings.Join(msgs, "; ")))
		}
		return invalid(err)
	}
	return nil
}

// invalid marks err as a validation failure
func invalid(err error) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
}

func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
