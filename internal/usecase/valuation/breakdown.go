package valuation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// GroupBy selects the attribute investment holdings are grouped on
type GroupBy string

const (
	GroupBySector    GroupBy = "sector"
	GroupByGeography GroupBy = "geography"
	GroupByType      GroupBy = "type"
)

// ParseGroupBy parses a grouping attribute name
func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(strings.ToLower(strings.TrimSpace(s))) {
	case GroupBySector:
		return GroupBySector, nil
	case GroupByGeography:
		return GroupByGeography, nil
	case GroupByType:
		return GroupByType, nil
	default:
		return "", fmt.Errorf("unknown grouping %q, expected sector, geography or type", s)
	}
}

// otherLabel collects holdings with no value for the grouping attribute
const otherLabel = "Other"

var hundred = decimal.NewFromInt(100)

// Share is one group of a breakdown with its share of the breakdown total
type Share struct {
	Name       string
	Value      decimal.Decimal
	Percentage decimal.Decimal
}

// HoldingsBreakdown groups investment holdings by sector, geography or type
// Values are converted to the base currency; groups are sorted by value, biggest first
func (a *Aggregator) HoldingsBreakdown(data *domain.FinancialData, groupBy GroupBy) []Share {
	if data == nil {
		return []Share{}
	}

	grouped := make(map[string]decimal.Decimal)
	for i := range data.Investments {
		h := &data.Investments[i]

		var key string
		switch groupBy {
		case GroupBySector:
			key = h.Sector
		case GroupByGeography:
			key = h.Geography
		default:
			key = string(h.InstrumentType)
		}
		if key == "" {
			key = otherLabel
		}

		grouped[key] = grouped[key].Add(a.Converter.Convert(h.Valuation(), h.Currency))
	}

	return toShares(grouped)
}

// CoinAllocation is one coin of the crypto allocation, in the crypto reference unit
type CoinAllocation struct {
	Symbol     string
	Value      decimal.Decimal
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Percentage decimal.Decimal
}

// CryptoAllocation returns the share of each coin in the crypto portfolio
// Coins worth nothing are dropped
func (a *Aggregator) CryptoAllocation(data *domain.FinancialData) []CoinAllocation {
	result := make([]CoinAllocation, 0)
	if data == nil {
		return result
	}

	total := decimal.Zero
	for i := range data.Crypto {
		total = total.Add(data.Crypto[i].CurrentValue())
	}

	for i := range data.Crypto {
		c := &data.Crypto[i]
		value := c.CurrentValue()
		if !value.IsPositive() {
			continue
		}
		result = append(result, CoinAllocation{
			Symbol:     c.Symbol,
			Value:      value,
			Quantity:   c.Quantity,
			Price:      c.CurrentPrice,
			Percentage: percentage(value, total),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Value.GreaterThan(result[j].Value)
	})

	return result
}

// CoinPerformance compares what was paid for a coin with what it is worth, in base currency
type CoinPerformance struct {
	Symbol    string
	Invested  decimal.Decimal
	Current   decimal.Decimal
	NetProfit decimal.Decimal
	ROI       decimal.Decimal // Percent of invested
}

// CryptoPerformance returns profit and loss per coin, sorted by profit, biggest first
func (a *Aggregator) CryptoPerformance(data *domain.FinancialData) []CoinPerformance {
	result := make([]CoinPerformance, 0)
	if data == nil {
		return result
	}

	for i := range data.Crypto {
		c := &data.Crypto[i]
		invested := a.Converter.Convert(c.CostBasis(), domain.CryptoCurrency)
		current := a.Converter.Convert(c.CurrentValue(), domain.CryptoCurrency)
		profit := current.Sub(invested)

		result = append(result, CoinPerformance{
			Symbol:    c.Symbol,
			Invested:  invested,
			Current:   current,
			NetProfit: profit,
			ROI:       percentage(profit, invested),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].NetProfit.GreaterThan(result[j].NetProfit)
	})

	return result
}

func toShares(grouped map[string]decimal.Decimal) []Share {
	total := decimal.Zero
	for _, v := range grouped {
		total = total.Add(v)
	}

	shares := make([]Share, 0, len(grouped))
	for name, value := range grouped {
		shares = append(shares, Share{
			Name:       name,
			Value:      value,
			Percentage: percentage(value, total),
		})
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Value.Equal(shares[j].Value) {
			return shares[i].Name < shares[j].Name
		}
		return shares[i].Value.GreaterThan(shares[j].Value)
	})

	return shares
}

// percentage returns part / total x 100, or zero for an empty total
func percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred)
}
