package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConverter(t *testing.T) *Converter {
	t.Helper()
	c, err := NewConverter("EUR", map[string]decimal.Decimal{
		"USD": decimal.NewFromFloat(0.9),
		"gbp": decimal.NewFromFloat(1.2),
	})
	require.NoError(t, err)
	return c
}

func TestConvert(t *testing.T) {
	c := newTestConverter(t)

	tests := []struct {
		name   string
		amount decimal.Decimal
		source string
		want   decimal.Decimal
	}{
		{"base currency is unchanged", decimal.NewFromInt(100), "EUR", decimal.NewFromInt(100)},
		{"empty source is unchanged", decimal.NewFromInt(100), "", decimal.NewFromInt(100)},
		{"known rate converts", decimal.NewFromInt(100), "USD", decimal.NewFromInt(90)},
		{"codes are case-insensitive", decimal.NewFromInt(10), "gbp", decimal.NewFromInt(12)},
		{"unknown rate is unchanged", decimal.NewFromInt(100), "JPY", decimal.NewFromInt(100)},
		{"negative amounts convert", decimal.NewFromInt(-50), "USD", decimal.NewFromInt(-45)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Convert(tt.amount, tt.source)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestHasRate(t *testing.T) {
	c := newTestConverter(t)
	assert.True(t, c.HasRate("EUR"))
	assert.True(t, c.HasRate("usd"))
	assert.False(t, c.HasRate("CHF"))
	assert.Equal(t, "EUR", c.Base())
}

func TestNewConverter_Errors(t *testing.T) {
	_, err := NewConverter("XXQ", nil)
	assert.Error(t, err)

	_, err = NewConverter("EUR", map[string]decimal.Decimal{"NOPE": decimal.NewFromInt(1)})
	assert.Error(t, err)

	_, err = NewConverter("EUR", map[string]decimal.Decimal{"USD": decimal.Zero})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exchange rate must be positive")
}

func TestParseRates(t *testing.T) {
	rates, err := ParseRates("USD=0.92, gbp=1.17")
	require.NoError(t, err)
	assert.True(t, rates["USD"].Equal(decimal.NewFromFloat(0.92)))
	assert.True(t, rates["GBP"].Equal(decimal.NewFromFloat(1.17)))

	rates, err = ParseRates("")
	require.NoError(t, err)
	assert.Empty(t, rates)

	_, err = ParseRates("USD:0.9")
	assert.Error(t, err)

	_, err = ParseRates("USD=abc")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$1,234.50", Format(decimal.NewFromFloat(1234.5), "USD"))
	assert.Equal(t, "12.00 ZZZ", Format(decimal.NewFromInt(12), "ZZZ"))
}
