package grpc

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// fields reads typed values out of a request Struct
// The first malformed field is remembered and reported by Err
type fields struct {
	values map[string]*structpb.Value
	err    error
}

func newFields(req *structpb.Struct) *fields {
	return &fields{values: req.GetFields()}
}

func (f *fields) fail(key string, err error) {
	if f.err == nil {
		f.err = status.Errorf(codes.InvalidArgument, "invalid %s format: %v", key, err)
	}
}

// Err returns the first parse failure as an InvalidArgument status
func (f *fields) Err() error {
	return f.err
}

func (f *fields) has(key string) bool {
	v, ok := f.values[key]
	if !ok {
		return false
	}
	_, isNull := v.GetKind().(*structpb.Value_NullValue)
	return !isNull
}

func (f *fields) str(key string) string {
	if !f.has(key) {
		return ""
	}
	switch kind := f.values[key].GetKind().(type) {
	case *structpb.Value_StringValue:
		return strings.TrimSpace(kind.StringValue)
	case *structpb.Value_NumberValue:
		return decimal.NewFromFloat(kind.NumberValue).String()
	default:
		f.fail(key, fmt.Errorf("expected a string"))
		return ""
	}
}

func (f *fields) optStr(key string) *string {
	if !f.has(key) {
		return nil
	}
	v := f.str(key)
	return &v
}

// dec accepts decimals as strings ("12.50") or JSON numbers
func (f *fields) dec(key string) decimal.Decimal {
	if !f.has(key) {
		return decimal.Zero
	}
	switch kind := f.values[key].GetKind().(type) {
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(strings.TrimSpace(kind.StringValue))
		if err != nil {
			f.fail(key, err)
		}
		return d
	case *structpb.Value_NumberValue:
		if math.IsNaN(kind.NumberValue) || math.IsInf(kind.NumberValue, 0) {
			f.fail(key, fmt.Errorf("not a finite number"))
			return decimal.Zero
		}
		return decimal.NewFromFloat(kind.NumberValue)
	default:
		f.fail(key, fmt.Errorf("expected a number"))
		return decimal.Zero
	}
}

func (f *fields) optDec(key string) *decimal.Decimal {
	if !f.has(key) {
		return nil
	}
	d := f.dec(key)
	return &d
}

func (f *fields) id(key string) uuid.UUID {
	id, err := uuid.Parse(f.str(key))
	if err != nil {
		f.fail(key, err)
	}
	return id
}

func (f *fields) boolean(key string) bool {
	if !f.has(key) {
		return false
	}
	b, ok := f.values[key].GetKind().(*structpb.Value_BoolValue)
	if !ok {
		f.fail(key, fmt.Errorf("expected a boolean"))
		return false
	}
	return b.BoolValue
}

func (f *fields) integer(key string, defaultValue int) int {
	if !f.has(key) {
		return defaultValue
	}
	n, ok := f.values[key].GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) {
		f.fail(key, fmt.Errorf("expected an integer"))
		return defaultValue
	}
	return int(n.NumberValue)
}

// respond encodes a response body
func respond(body map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(body)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// list converts a typed slice into the []interface{} form structpb accepts
func list[T any](items []T, encode func(T) map[string]interface{}) []interface{} {
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		out = append(out, encode(item))
	}
	return out
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func optTimestamp(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return timestamp(*t)
}

func transactionBody(t domain.Transaction) map[string]interface{} {
	return map[string]interface{}{
		"id":          t.ID.String(),
		"type":        string(t.Kind),
		"category":    t.Category,
		"amount":      t.Amount.String(),
		"date":        t.DayKey(),
		"description": t.Description,
		"created_at":  timestamp(t.CreatedAt),
	}
}

func investmentBody(h domain.InvestmentHolding, state domain.PriceState) map[string]interface{} {
	return map[string]interface{}{
		"id":                h.ID.String(),
		"type":              string(h.InstrumentType),
		"symbol":            h.Symbol,
		"name":              h.Name,
		"quantity":          h.Quantity.String(),
		"cost_basis":        h.CostBasis.String(),
		"current_price":     h.CurrentPrice.String(),
		"current_value":     h.CurrentValue().String(),
		"currency":          h.Currency,
		"last_price_update": optTimestamp(h.LastPriceUpdate),
		"price_state":       string(state),
		"sector":            h.Sector,
		"geography":         h.Geography,
		"isin":              h.ISIN,
		"fees":              h.Fees.String(),
	}
}

func cryptoBody(c domain.CryptoHolding, state domain.PriceState) map[string]interface{} {
	return map[string]interface{}{
		"id":                c.ID.String(),
		"symbol":            c.Symbol,
		"name":              c.Name,
		"quantity":          c.Quantity.String(),
		"avg_buy_price":     c.AvgBuyPrice.String(),
		"current_price":     c.CurrentPrice.String(),
		"current_value":     c.CurrentValue().String(),
		"currency":          c.Currency,
		"last_price_update": optTimestamp(c.LastPriceUpdate),
		"price_state":       string(state),
		"fees":              c.Fees.String(),
		"coin_id":           c.CoinID,
	}
}

func liabilityBody(l domain.Liability) map[string]interface{} {
	return map[string]interface{}{
		"id":              l.ID.String(),
		"name":            l.Name,
		"type":            l.Type,
		"current_balance": l.CurrentBalance.String(),
		"principal":       l.Principal.String(),
		"interest_rate":   l.InterestRate.String(),
		"currency":        l.Currency,
		"monthly_payment": l.MonthlyPayment.String(),
	}
}

func snapshotBody(s domain.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"id":                s.ID.String(),
		"date":              timestamp(s.Date),
		"net_worth":         s.NetWorth.String(),
		"total_assets":      s.TotalAssets.String(),
		"total_liabilities": s.TotalLiabilities.String(),
		"liquidity":         s.Liquidity.String(),
		"investments":       s.Investments.String(),
		"crypto":            s.Crypto.String(),
	}
}

func totalsBody(t domain.Totals) map[string]interface{} {
	return map[string]interface{}{
		"total_liquidity":   t.TotalLiquidity.String(),
		"total_investments": t.TotalInvestments.String(),
		"total_crypto":      t.TotalCrypto.String(),
		"total_assets":      t.TotalAssets.String(),
		"total_liabilities": t.TotalLiabilities.String(),
		"net_worth":         t.NetWorth.String(),
	}
}

func idList(ids []uuid.UUID) []interface{} {
	out := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
