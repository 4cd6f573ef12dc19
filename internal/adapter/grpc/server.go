package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/analytics"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/datastore"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/pricing"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/snapshot"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/valuation"
)

// Server implements the WealthTrackService gRPC server
type Server struct {
	Store       *datastore.Store
	Aggregator  *valuation.Aggregator
	Analytics   *analytics.Service
	Snapshots   *snapshot.Service
	Coordinator *pricing.Coordinator
	Clock       func() time.Time

	log zerolog.Logger
}

var _ WealthTrackServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(
	store *datastore.Store,
	aggregator *valuation.Aggregator,
	analyticsService *analytics.Service,
	snapshotService *snapshot.Service,
	coordinator *pricing.Coordinator,
	log zerolog.Logger,
) *Server {
	return &Server{
		Store:       store,
		Aggregator:  aggregator,
		Analytics:   analyticsService,
		Snapshots:   snapshotService,
		Coordinator: coordinator,
		Clock:       time.Now,
		log:         log.With().Str("component", "grpc_server").Logger(),
	}
}

// GetTotals handles the GetTotals RPC
func (s *Server) GetTotals(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	data := s.Store.Snapshot()
	body := totalsBody(s.Aggregator.CalculateTotals(data))
	body["currency"] = s.Aggregator.Converter.Base()

	// Holdings valued at cost basis because they have never been priced
	degraded := s.Aggregator.DegradedHoldings(data)
	symbols := make([]interface{}, 0, len(degraded))
	for _, h := range degraded {
		symbols = append(symbols, h.Symbol)
	}
	body["degraded_holdings"] = symbols

	return respond(body)
}

// GetRecords handles the GetRecords RPC
func (s *Server) GetRecords(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	data := s.Store.Snapshot()
	now := s.Clock()

	return respond(map[string]interface{}{
		"transactions": list(data.Transactions, transactionBody),
		"investments": list(data.Investments, func(h domain.InvestmentHolding) map[string]interface{} {
			return investmentBody(h, s.Coordinator.State(h.ID, h.LastPriceUpdate, now))
		}),
		"crypto": list(data.Crypto, func(c domain.CryptoHolding) map[string]interface{} {
			return cryptoBody(c, s.Coordinator.State(c.ID, c.LastPriceUpdate, now))
		}),
		"liabilities": list(data.Liabilities, liabilityBody),
		"snapshots":   list(data.Snapshots, snapshotBody),
	})
}

// GetAllocation handles the GetAllocation RPC
func (s *Server) GetAllocation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	segments := s.Analytics.AssetAllocation(s.Store.Snapshot())

	return respond(map[string]interface{}{
		"segments": list(segments, func(seg analytics.Segment) map[string]interface{} {
			return map[string]interface{}{
				"name":       seg.Name,
				"value":      seg.Value.String(),
				"percentage": seg.Percentage.StringFixed(2),
			}
		}),
	})
}

// GetCashFlowTrend handles the GetCashFlowTrend RPC
func (s *Server) GetCashFlowTrend(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	months := f.integer("months", analytics.DefaultTrendMonths)
	if err := f.Err(); err != nil {
		return nil, err
	}
	if months <= 0 || months > 120 {
		return nil, status.Errorf(codes.InvalidArgument, "months must be between 1 and 120")
	}

	trend := s.Analytics.CashFlowTrend(s.Store.Snapshot(), months)

	return respond(map[string]interface{}{
		"months": list(trend, func(m analytics.MonthlyFlow) map[string]interface{} {
			return map[string]interface{}{
				"month":   m.Month,
				"label":   m.Label,
				"income":  m.Income.String(),
				"expense": m.Expense.String(),
			}
		}),
	})
}

// GetMonthlyCashFlow handles the GetMonthlyCashFlow RPC
func (s *Server) GetMonthlyCashFlow(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	month := domain.CalendarDay(s.Clock())
	if raw := f.str("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid month format: %v", err)
		}
		month = parsed
	}
	if err := f.Err(); err != nil {
		return nil, err
	}

	summary := s.Analytics.MonthlyCashFlow(s.Store.Snapshot(), month)

	return respond(map[string]interface{}{
		"month":        month.Format("2006-01"),
		"income":       summary.Income.String(),
		"expenses":     summary.Expenses.String(),
		"savings_rate": summary.SavingsRate.StringFixed(2),
	})
}

// GetExpensesByCategory handles the GetExpensesByCategory RPC
func (s *Server) GetExpensesByCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	period, err := s.period(req)
	if err != nil {
		return nil, err
	}

	breakdown := s.Analytics.ExpensesByCategory(s.Store.Snapshot(), period)

	return respond(map[string]interface{}{
		"period": string(period),
		"total":  breakdown.Total.String(),
		"items": list(breakdown.Items, func(c analytics.CategoryShare) map[string]interface{} {
			return map[string]interface{}{
				"name":       c.Name,
				"value":      c.Value.String(),
				"percentage": c.Percentage.StringFixed(2),
			}
		}),
	})
}

// GetSpendingTimeline handles the GetSpendingTimeline RPC
func (s *Server) GetSpendingTimeline(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	period, err := s.period(req)
	if err != nil {
		return nil, err
	}

	timeline := s.Analytics.SpendingTimeline(s.Store.Snapshot(), period)

	return respond(map[string]interface{}{
		"period": string(period),
		"days": list(timeline, func(d analytics.DailySpend) map[string]interface{} {
			return map[string]interface{}{
				"date":   d.Date,
				"label":  d.Label,
				"amount": d.Amount.String(),
			}
		}),
	})
}

// GetHoldingsBreakdown handles the GetHoldingsBreakdown RPC
func (s *Server) GetHoldingsBreakdown(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	raw := f.str("group_by")
	if err := f.Err(); err != nil {
		return nil, err
	}
	if raw == "" {
		raw = string(valuation.GroupBySector)
	}
	groupBy, err := valuation.ParseGroupBy(raw)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	shares := s.Aggregator.HoldingsBreakdown(s.Store.Snapshot(), groupBy)

	return respond(map[string]interface{}{
		"group_by": string(groupBy),
		"groups": list(shares, func(sh valuation.Share) map[string]interface{} {
			return map[string]interface{}{
				"name":       sh.Name,
				"value":      sh.Value.String(),
				"percentage": sh.Percentage.StringFixed(2),
			}
		}),
	})
}

// GetCryptoBreakdown handles the GetCryptoBreakdown RPC
func (s *Server) GetCryptoBreakdown(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	data := s.Store.Snapshot()

	return respond(map[string]interface{}{
		"allocation": list(s.Aggregator.CryptoAllocation(data), func(c valuation.CoinAllocation) map[string]interface{} {
			return map[string]interface{}{
				"symbol":     c.Symbol,
				"value":      c.Value.String(),
				"quantity":   c.Quantity.String(),
				"price":      c.Price.String(),
				"percentage": c.Percentage.StringFixed(2),
			}
		}),
		"performance": list(s.Aggregator.CryptoPerformance(data), func(c valuation.CoinPerformance) map[string]interface{} {
			return map[string]interface{}{
				"symbol":     c.Symbol,
				"invested":   c.Invested.String(),
				"current":    c.Current.String(),
				"net_profit": c.NetProfit.String(),
				"roi":        c.ROI.StringFixed(2),
			}
		}),
	})
}

// GetSnapshots handles the GetSnapshots RPC
func (s *Server) GetSnapshots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	raw := f.str("range")
	if err := f.Err(); err != nil {
		return nil, err
	}
	timeRange, err := domain.ParseTimeRange(raw)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	points := s.Snapshots.GetSnapshotsByRange(s.Store.Snapshot(), timeRange)

	return respond(map[string]interface{}{
		"range": string(timeRange),
		"points": list(points, func(p domain.ChartPoint) map[string]interface{} {
			return map[string]interface{}{
				"date":  timestamp(p.Date),
				"label": p.Label,
				"value": p.Value.String(),
			}
		}),
	})
}

// RefreshPrices handles the RefreshPrices RPC
func (s *Server) RefreshPrices(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	force := f.boolean("force")
	if err := f.Err(); err != nil {
		return nil, err
	}

	result, err := s.Coordinator.Refresh(ctx, force)
	if err != nil {
		return nil, mapError(err)
	}

	return respond(map[string]interface{}{
		"updated":   result.Updated,
		"attempted": result.Attempted,
		"skipped":   idList(result.Skipped),
		"missing":   idList(result.Missing),
	})
}

// TakeSnapshot handles the TakeSnapshot RPC
func (s *Server) TakeSnapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	snap, err := s.Snapshots.TakeSnapshot(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return respond(snapshotBody(*snap))
}

// AddTransaction handles the AddTransaction RPC
func (s *Server) AddTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	input := datastore.TransactionInput{
		Kind:        f.str("type"),
		Category:    f.str("category"),
		Amount:      f.dec("amount"),
		Date:        f.str("date"),
		Description: f.str("description"),
	}
	if err := f.Err(); err != nil {
		return nil, err
	}

	tx, err := s.Store.AddTransaction(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return respond(transactionBody(*tx))
}

// DeleteTransaction handles the DeleteTransaction RPC
func (s *Server) DeleteTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.deleteByID(ctx, req, s.Store.DeleteTransaction)
}

// AddInvestment handles the AddInvestment RPC
func (s *Server) AddInvestment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	input := datastore.InvestmentInput{
		Type:      f.str("type"),
		Symbol:    f.str("symbol"),
		Name:      f.str("name"),
		Quantity:  f.dec("quantity"),
		CostBasis: f.dec("cost_basis"),
		Currency:  f.str("currency"),
		Sector:    f.str("sector"),
		Geography: f.str("geography"),
		ISIN:      f.str("isin"),
		Fees:      f.dec("fees"),
	}
	if err := f.Err(); err != nil {
		return nil, err
	}

	h, err := s.Store.AddInvestment(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return respond(investmentBody(*h, s.Coordinator.State(h.ID, h.LastPriceUpdate, s.Clock())))
}

// UpdateInvestment handles the UpdateInvestment RPC
// Only the fields present in the request are changed
func (s *Server) UpdateInvestment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	id := f.id("id")
	update := datastore.InvestmentUpdate{
		Quantity:  f.optDec("quantity"),
		CostBasis: f.optDec("cost_basis"),
		Currency:  f.optStr("currency"),
		Name:      f.optStr("name"),
		Symbol:    f.optStr("symbol"),
		Sector:    f.optStr("sector"),
		Geography: f.optStr("geography"),
	}
	if err := f.Err(); err != nil {
		return nil, err
	}

	h, err := s.Store.UpdateInvestment(ctx, id, update)
	if err != nil {
		return nil, mapError(err)
	}
	return respond(investmentBody(*h, s.Coordinator.State(h.ID, h.LastPriceUpdate, s.Clock())))
}

// DeleteInvestment handles the DeleteInvestment RPC
func (s *Server) DeleteInvestment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.deleteByID(ctx, req, s.Store.DeleteInvestment)
}

// AddCrypto handles the AddCrypto RPC
func (s *Server) AddCrypto(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	input := datastore.CryptoInput{
		Symbol:      f.str("symbol"),
		Name:        f.str("name"),
		Quantity:    f.dec("quantity"),
		AvgBuyPrice: f.dec("avg_buy_price"),
		Fees:        f.dec("fees"),
		CoinID:      f.str("coin_id"),
	}
	if err := f.Err(); err != nil {
		return nil, err
	}

	c, err := s.Store.AddCrypto(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return respond(cryptoBody(*c, s.Coordinator.State(c.ID, c.LastPriceUpdate, s.Clock())))
}

// UpdateCrypto handles the UpdateCrypto RPC
func (s *Server) UpdateCrypto(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	id := f.id("id")
	update := datastore.CryptoUpdate{
		Quantity:    f.optDec("quantity"),
		AvgBuyPrice: f.optDec("avg_buy_price"),
		Name:        f.optStr("name"),
		CoinID:      f.optStr("coin_id"),
	}
	if err := f.Err(); err != nil {
		return nil, err
	}

	c, err := s.Store.UpdateCrypto(ctx, id, update)
	if err != nil {
		return nil, mapError(err)
	}
	return respond(cryptoBody(*c, s.Coordinator.State(c.ID, c.LastPriceUpdate, s.Clock())))
}

// DeleteCrypto handles the DeleteCrypto RPC
func (s *Server) DeleteCrypto(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.deleteByID(ctx, req, s.Store.DeleteCrypto)
}

// AddLiability handles the AddLiability RPC
func (s *Server) AddLiability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	input := datastore.LiabilityInput{
		Name:           f.str("name"),
		Type:           f.str("type"),
		CurrentBalance: f.dec("current_balance"),
		Principal:      f.dec("principal"),
		InterestRate:   f.dec("interest_rate"),
		Currency:       f.str("currency"),
		MonthlyPayment: f.dec("monthly_payment"),
	}
	if err := f.Err(); err != nil {
		return nil, err
	}

	l, err := s.Store.AddLiability(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return respond(liabilityBody(*l))
}

// UpdateLiability handles the UpdateLiability RPC
func (s *Server) UpdateLiability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	id := f.id("id")
	update := datastore.LiabilityUpdate{
		CurrentBalance: f.optDec("current_balance"),
		InterestRate:   f.optDec("interest_rate"),
		MonthlyPayment: f.optDec("monthly_payment"),
		Name:           f.optStr("name"),
	}
	if err := f.Err(); err != nil {
		return nil, err
	}

	l, err := s.Store.UpdateLiability(ctx, id, update)
	if err != nil {
		return nil, mapError(err)
	}
	return respond(liabilityBody(*l))
}

// DeleteLiability handles the DeleteLiability RPC
func (s *Server) DeleteLiability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.deleteByID(ctx, req, s.Store.DeleteLiability)
}

// ClearAllData handles the ClearAllData RPC
// The request must carry confirm=true
func (s *Server) ClearAllData(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	confirmed := f.boolean("confirm")
	if err := f.Err(); err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, status.Error(codes.FailedPrecondition, "clearing all data requires confirm=true")
	}

	if err := s.Store.ClearAll(ctx); err != nil {
		return nil, mapError(err)
	}

	s.log.Warn().Msg("All records cleared")
	return respond(map[string]interface{}{"cleared": true})
}

func (s *Server) deleteByID(ctx context.Context, req *structpb.Struct, del func(context.Context, uuid.UUID) error) (*structpb.Struct, error) {
	f := newFields(req)
	id := f.id("id")
	if err := f.Err(); err != nil {
		return nil, err
	}

	if err := del(ctx, id); err != nil {
		return nil, mapError(err)
	}
	return respond(map[string]interface{}{"id": id.String(), "deleted": true})
}

// period reads the optional "period" field, defaulting to all time
func (s *Server) period(req *structpb.Struct) (domain.Period, error) {
	f := newFields(req)
	raw := f.str("period")
	if err := f.Err(); err != nil {
		return "", err
	}
	period, err := domain.ParsePeriod(raw)
	if err != nil {
		return "", status.Errorf(codes.InvalidArgument, "%v", err)
	}
	return period, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Errorf(codes.InvalidArgument, "%s", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s", err.Error())
	case errors.Is(err, domain.ErrTransientIO):
		return status.Errorf(codes.Unavailable, "%s", err.Error())
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", err.Error())
	default:
		// Invariant violations and unexpected failures
		return status.Errorf(codes.Internal, "%s", err.Error())
	}
}
