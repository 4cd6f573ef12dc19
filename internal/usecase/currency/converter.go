package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Converter converts amounts into a single base currency using a fixed rate table
// It holds no state beyond the table and performs no I/O
type Converter struct {
	base  string
	rates map[string]decimal.Decimal // code -> rate to base
}

// NewConverter creates a new Converter instance
// rates maps a currency code to the multiplier turning one unit of it into base units
func NewConverter(base string, rates map[string]decimal.Decimal) (*Converter, error) {
	base = normalize(base)
	if money.GetCurrency(base) == nil {
		return nil, fmt.Errorf("unknown base currency %q", base)
	}

	table := make(map[string]decimal.Decimal, len(rates))
	for code, rate := range rates {
		code = normalize(code)
		if money.GetCurrency(code) == nil {
			return nil, fmt.Errorf("unknown currency %q in rate table", code)
		}
		if rate.LessThanOrEqual(decimal.Zero) {
			return nil, errors.New("exchange rate must be positive for " + code)
		}
		table[code] = rate
	}

	return &Converter{base: base, rates: table}, nil
}

// Base returns the display currency all conversions target
func (c *Converter) Base() string {
	return c.base
}

// HasRate reports whether a conversion rate is known for code
func (c *Converter) HasRate(code string) bool {
	code = normalize(code)
	if code == c.base {
		return true
	}
	_, ok := c.rates[code]
	return ok
}

// Convert returns amount expressed in the base currency
// An empty source, the base itself, or a currency without a known rate
// leaves the amount unchanged: missing rates are not treated as errors
func (c *Converter) Convert(amount decimal.Decimal, source string) decimal.Decimal {
	source = normalize(source)
	if source == "" || source == c.base {
		return amount
	}

	rate, ok := c.rates[source]
	if !ok {
		return amount
	}

	return amount.Mul(rate)
}

// Format renders an amount with the symbol and separators of its currency
func Format(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(normalize(code))
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// ParseRates parses a "USD=0.92,GBP=1.17" style rate table
func ParseRates(table string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal)
	if strings.TrimSpace(table) == "" {
		return rates, nil
	}

	for _, pair := range strings.Split(table, ",") {
		code, value, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found {
			return nil, fmt.Errorf("invalid rate entry %q, expected CODE=RATE", pair)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", code, err)
		}
		rates[normalize(code)] = rate
	}

	return rates, nil
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
