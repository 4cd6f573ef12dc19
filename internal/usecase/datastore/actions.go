package datastore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// defaultTradingCurrency applies to investments added without a currency
const defaultTradingCurrency = "USD"

// AddTransaction records an income or expense
func (s *Store) AddTransaction(ctx context.Context, in TransactionInput) (*domain.Transaction, error) {
	// 1. Validate input
	if err := s.checkInput(in); err != nil {
		return nil, err
	}
	date, err := domain.ParseDay(in.Date)
	if err != nil {
		return nil, invalid(err)
	}

	// 2. Build the transaction
	tx := domain.Transaction{
		ID:          uuid.New(),
		Kind:        domain.TransactionKind(in.Kind),
		Category:    in.Category,
		Amount:      in.Amount,
		Date:        date,
		Description: in.Description,
		CreatedAt:   s.Clock().UTC(),
	}
	if err := tx.Validate(); err != nil {
		return nil, invalid(err)
	}

	// 3. Persist, then apply
	err = s.commit(ctx, "add transaction", func(next *domain.FinancialData) (func(context.Context, uuid.UUID) error, error) {
		next.Transactions = append(next.Transactions, tx)
		sortTransactions(next.Transactions)

		record := tx
		return func(ctx context.Context, ownerID uuid.UUID) error {
			return s.backends.Transactions.Create(ctx, ownerID, &record)
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &tx, nil
}

// DeleteTransaction removes a transaction
func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return s.commit(ctx, "delete transaction", func(next *domain.FinancialData) (func(context.Context, uuid.UUID) error, error) {
		i := indexOf(next.Transactions, func(tx *domain.Transaction) bool { return tx.ID == id })
		if i < 0 {
			return nil, notFound("transaction", id)
		}
		next.Transactions = append(next.Transactions[:i], next.Transactions[i+1:]...)

		return func(ctx context.Context, ownerID uuid.UUID) error {
			return s.backends.Transactions.Delete(ctx, ownerID, id)
		}, nil
	})
}

// AddInvestment records a new investment holding
// When fees are paid a "Trading Fees" expense dated today is logged alongside it.
// A fee that fails to log is reported in the logs but does not undo the holding.
func (s *Store) AddInvestment(ctx context.Context, in InvestmentInput) (*domain.InvestmentHolding, error) {
	// 1. Validate input
	if err := s.checkInput(in); err != nil {
		return nil, err
	}

	now := s.Clock().UTC()
	currency := normalizeCurrency(in.Currency)
	if currency == "" {
		currency = defaultTradingCurrency
	}

	// 2. Build the holding; it has no price until the first refresh
	holding := domain.InvestmentHolding{
		ID:             uuid.New(),
		InstrumentType: domain.InstrumentType(in.Type),
		Symbol:         in.Symbol,
		Name:           in.Name,
		Quantity:       in.Quantity,
		CostBasis:      in.CostBasis,
		CurrentPrice:   decimal.Zero,
		Currency:       currency,
		Sector:         in.Sector,
		Geography:      in.Geography,
		ISIN:           in.ISIN,
		Fees:           in.Fees,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := holding.Validate(); err != nil {
		return nil, invalid(err)
	}

	fee := s.feeTransaction(in.Fees, holding.Symbol, now)

	// 3. Persist, then apply
	err := s.commit(ctx, "add investment", func(next *domain.FinancialData) (func(context.Context, uuid.UUID) error, error) {
		next.Investments = append(next.Investments, holding)
		if fee != nil {
			next.Transactions = append(next.Transactions, *fee)
			sortTransactions(next.Transactions)
		}

		return func(ctx context.Context, ownerID uuid.UUID) error {
			if err := s.backends.Assets.Create(ctx, domain.AssetRecordFromInvestment(ownerID, &holding)); err != nil {
				return err
			}
			s.logFee(ctx, ownerID, next, fee)
			return nil
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &holding, nil
}

// UpdateInvestment applies a partial update to an investment holding
func (s *Store) UpdateInvestment(ctx context.Context, id uuid.UUID, upd InvestmentUpdate) (*domain.InvestmentHolding, error) {
	if err := s.checkInput(upd); err != nil {
		return nil, err
	}

	var updated domain.InvestmentHolding
	err := s.commit(ctx, "update investment", func(next *domain.FinancialData) (func(context.Context, uuid.UUID) error, error) {
		i := indexOf(next.Investments, func(h *domain.InvestmentHolding) bool { return h.ID == id })
		if i < 0 {
			return nil, notFound("investment", id)
		}

		h := next.Investments[i]
		if upd.Quantity != nil {
			h.Quantity = *upd.Quantity
		}
		if upd.CostBasis != nil {
			h.CostBasis = *upd.CostBasis
		}
		if upd.Currency != nil {
			h.Currency = normalizeCurrency(*upd.Currency)
		}
		if upd.Name != nil {
			h.Name = *upd.Name
		}
		if upd.Symbol != nil {
			h.Symbol = *upd.Symbol
		}
		if upd.Sector != nil {
			h.Sector = *upd.Sector
		}
		if upd.Geography != nil {
			h.Geography = *upd.Geography
		}
		h.UpdatedAt = s.Clock().UTC()

		if err := h.Validate(); err != nil {
			return nil, invalid(err)
		}

		next.Investments[i] = h
		updated = h

		return func(ctx context.Context, ownerID uuid.UUID) error {
			return s.backends.Assets.Update(ctx, domain.AssetRecordFromInvestment(ownerID, &h))
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// DeleteInvestment removes an investment holding
func (s *Store) DeleteInvestment(ctx context.Context, id uuid.UUID) error {
	return s.commit(ctx, "delete investment", func(next *domain.FinancialData) (func(context.Context, uuid.UUID) error, error) {
		i := indexOf(next.Investments, func(h *domain.InvestmentHolding) bool { return h.ID == id })
		if i < 0 {
			return nil, notFound("investment", id)
		}
		next.Investments = append(next.Investments[:i], next.Investments[i+1:]...)

		return func(ctx context.Context, ownerID uuid.UUID) error {
			return s.backends.Assets.Delete(ctx, ownerID, id)
		}, nil
	})
}

// AddCrypto records a new crypto holding, logging its fees like AddInvestment
func (s *Store) AddCrypto(ctx context.Context, in CryptoInput) (*domain.CryptoHolding, error) {
	if err := s.checkInput(in); err != nil {
		return nil, err
	}

	now := s.Clock().UTC()
	coin := domain.CryptoHolding{
		ID:           uuid.New(),
		Symbol:       in.Symbol,
		Name:         in.Name,
		Quantity:     in.Quantity,
		AvgBuyPrice:  in.AvgBuyPrice,
		CurrentPrice: decimal.Zero,
		Currency:     domain.CryptoCurrency,
		Fees:         in.Fees,
		CoinID:       in.CoinID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := coin.Validate(); err != nil {
		return nil, invalid(err)
	}

	fee := s.feeTransaction(in.Fees, coin.Symbol, now)

	err := s.commit(ctx, "add crypto", func(next *domain.FinancialData) (func(context.Context, uuid.UUID) error, error) {
		next.Crypto = append(next.Crypto, coin)
		if fee != nil {
			next.Transactions = append(next.Transactions, *fee)
			sortTransactions(next.Transactions)
		}

		return func(ctx context.Context, ownerID uuid.UUID) error {
			if err := s.backends.Assets.Create(ctx, domain.AssetRecordFromCrypto(ownerID, &coin)); err != nil {
				return err
			}
			s.logFee(ctx, ownerID, next, fee)
			return nil
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &coin, nil
}

// UpdateCrypto applies a partial update to a crypto holding
func (s *Store) UpdateCrypto(ctx context.Context, id uuid.UUID, upd CryptoUpdate) (*domain.CryptoHolding, error) {
	if err := s.checkInput(upd); err != nil {
		return nil, err
	}

	var updated domain.CryptoHolding
	err := s.commit(ctx, "update crypto", func(next *domain.FinancialData) (func(context.Context, uuid.UUID) error, error) {
		i := indexOf(next.Crypto, func(c *domain.CryptoHolding) bool { return c.ID == id })
		if i < 0 {
			return nil, notFound("crypto holding", id)
		}

		c := next.Crypto[i]
		if upd.Quantity != nil {
			c.Quantity = *upd.Quantity
		}
		if upd.AvgBuyPrice != nil {
			c.AvgBuyPrice = *upd.AvgBuyPrice
		}
		if upd.Name != nil {
			c.Name = *upd.Name
		}
		if upd.CoinID != nil {
			c.CoinID = *upd.CoinID
		}
		c.UpdatedAt = s.Clock().UTC()

		if err := c.Validate(); err != nil {
			return nil, invalid(err)
		}

		next.Crypto[i] = c
		updated = c

		return func(ctx context.Context, ownerID uuid.UUID) error {
			return s.backends.Assets.Update(ctx, domain.AssetRecordFromCrypto(ownerID, &c))
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// DeleteCrypto removes a crypto holding
func (s *Store) DeleteCrypto(ctx context.Context, id uuid.UUID) error {
	return s.commit(ctx, "delete crypto", func(next *domain.FinancialData) (func(context.Context, uuid.UUID) error, error) {
		i := indexOf(next.Crypto, func(c *domain.CryptoHolding) bool { return c.ID == id })
		if i < 0 {
			return nil, notFound("crypto holding", id)
		}
		next.Crypto = append(next.Crypto[:i], next.Crypto[i+1:]...)

		return func(ctx context.Context, ownerID uuid.UUID) error {
			return s.backends.Assets.Delete(ctx, ownerID, id)
		}, nil
	})
}

// AddLiability records a new debt
func (s *Store) AddLiability(ctx context.Context, in LiabilityInput) (*domain.Liability, error) {
	if err := s.checkInput(in); err != nil {
		return nil, err
	}

	now := s.Clock().UTC()
	liability := domain.Liability{
		ID:             uuid.New(),
		Name:           in.Name,
		Type:           in.Type,
		CurrentBalance: in.CurrentBalance,
		Principal:      in.Principal,
		InterestRate:   in.InterestRate,
		Currency:       normalizeCurrency(in.Currency),
		MonthlyPayment: in.MonthlyPayment,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := liability.Validate(); err != nil {
		return nil, invalid(err)
	}
	liability.NormalizePrincipal()

	err := s.commit(ctx, "add liability", func(next *domain.FinancialData) (func(context.Context, uuid.UUID) error, error) {
		next.Liabilities = append(next.Liabilities, liability)

		record := liability
		return func(ctx context.Context, ownerID uuid.UUID) error {
			return s.backends.Liabilities.Create(ctx, ownerID, &record)
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &liability, nil
}

// UpdateLiability applies a partial update to a liability
func (s *Store) UpdateLiability(ctx context.Context, id uuid.UUID, upd LiabilityUpdate) (*domain.Liability, error) {
	if err := s.checkInput(upd); err != nil {
		return nil, err
	}

	var updated domain.Liability
	err := s.commit(ctx, "update liability", func(next *domain.FinancialData) (func(context.Context, uuid.UUID) error, error) {
		i := indexOf(next.Liabilities, func(l *domain.Liability) bool { return l.ID == id })
		if i < 0 {
			return nil, notFound("liability", id)
		}

		l := next.Liabilities[i]
		if upd.CurrentBalance != nil {
			l.CurrentBalance = *upd.CurrentBalance
		}
		if upd.InterestRate != nil {
			l.InterestRate = *upd.InterestRate
		}
		if upd.MonthlyPayment != nil {
			l.MonthlyPayment = *upd.MonthlyPayment
		}
		if upd.Name != nil {
			l.Name = *upd.Name
		}
		l.UpdatedAt = s.Clock().UTC()

		if err := l.Validate(); err != nil {
			return nil, invalid(err)
		}

		next.Liabilities[i] = l
		updated = l

		return func(ctx context.Context, ownerID uuid.UUID) error {
			return s.backends.Liabilities.Update(ctx, ownerID, &l)
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// DeleteLiability removes a liability
func (s *Store) DeleteLiability(ctx context.Context, id uuid.UUID) error {
	return s.commit(ctx, "delete liability", func(next *domain.FinancialData) (func(context.Context, uuid.UUID) error, error) {
		i := indexOf(next.Liabilities, func(l *domain.Liability) bool { return l.ID == id })
		if i < 0 {
			return nil, notFound("liability", id)
		}
		next.Liabilities = append(next.Liabilities[:i], next.Liabilities[i+1:]...)

		return func(ctx context.Context, ownerID uuid.UUID) error {
			return s.backends.Liabilities.Delete(ctx, ownerID, id)
		}, nil
	})
}

// AppendSnapshot adds a snapshot to history; snapshots are never edited afterwards
func (s *Store) AppendSnapshot(ctx context.Context, snapshot *domain.Snapshot) error {
	if snapshot == nil {
		return invalid(fmt.Errorf("snapshot is required"))
	}
	snap := *snapshot

	return s.commit(ctx, "append snapshot", func(next *domain.FinancialData) (func(context.Context, uuid.UUID) error, error) {
		next.Snapshots = append(next.Snapshots, snap)
		sortSnapshots(next.Snapshots)

		return func(ctx context.Context, ownerID uuid.UUID) error {
			return s.backends.Snapshots.Add(ctx, ownerID, &snap)
		}, nil
	})
}

// UpdatePrice replaces the price and price timestamp of one holding
// The holding is swapped in as a whole, so readers see either the old or the new price.
func (s *Store) UpdatePrice(ctx context.Context, kind domain.HoldingKind, id uuid.UUID, price decimal.Decimal, at time.Time) error {
	stamp := at.UTC()

	return s.commit(ctx, "update price", func(next *domain.FinancialData) (func(context.Context, uuid.UUID) error, error) {
		switch kind {
		case domain.HoldingKindInvestment:
			i := indexOf(next.Investments, func(h *domain.InvestmentHolding) bool { return h.ID == id })
			if i < 0 {
				return nil, notFound("investment", id)
			}
			if err := domain.CheckHoldingInvariants(next.Investments[i].Quantity, price); err != nil {
				return nil, err
			}
			h := next.Investments[i]
			h.CurrentPrice = price
			h.LastPriceUpdate = &stamp
			next.Investments[i] = h

		case domain.HoldingKindCrypto:
			i := indexOf(next.Crypto, func(c *domain.CryptoHolding) bool { return c.ID == id })
			if i < 0 {
				return nil, notFound("crypto holding", id)
			}
			if err := domain.CheckHoldingInvariants(next.Crypto[i].Quantity, price); err != nil {
				return nil, err
			}
			c := next.Crypto[i]
			c.CurrentPrice = price
			c.LastPriceUpdate = &stamp
			next.Crypto[i] = c

		default:
			return nil, invalid(fmt.Errorf("unknown holding kind %q", kind))
		}

		return func(ctx context.Context, ownerID uuid.UUID) error {
			return s.backends.Assets.UpdatePrice(ctx, ownerID, id, price, stamp)
		}, nil
	})
}

// feeTransaction builds the expense logged for the fees of a buy order, or nil when there are none
func (s *Store) feeTransaction(fees decimal.Decimal, symbol string, now time.Time) *domain.Transaction {
	if !fees.IsPositive() {
		return nil
	}
	return &domain.Transaction{
		ID:          uuid.New(),
		Kind:        domain.TransactionKindExpense,
		Category:    domain.FeeCategory,
		Amount:      fees,
		Date:        domain.CalendarDay(now),
		Description: "Fee for buy order: " + symbol,
		CreatedAt:   now,
	}
}

// logFee persists the fee expense of a buy order
// On failure the fee is dropped from next so memory matches the record store.
func (s *Store) logFee(ctx context.Context, ownerID uuid.UUID, next *domain.FinancialData, fee *domain.Transaction) {
	if fee == nil {
		return
	}
	if err := s.backends.Transactions.Create(ctx, ownerID, fee); err != nil {
		s.log.Warn().Err(err).Str("description", fee.Description).Msg("Failed to log trading fee")
		if i := indexOf(next.Transactions, func(tx *domain.Transaction) bool { return tx.ID == fee.ID }); i >= 0 {
			next.Transactions = append(next.Transactions[:i], next.Transactions[i+1:]...)
		}
		return
	}
	s.log.Info().Str("amount", fee.Amount.String()).Msg("Trading fee logged to cash flow")
}

func indexOf[T any](items []T, match func(*T) bool) int {
	for i := range items {
		if match(&items[i]) {
			return i
		}
	}
	return -1
}

func notFound(what string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", what, id, domain.ErrNotFound)
}
