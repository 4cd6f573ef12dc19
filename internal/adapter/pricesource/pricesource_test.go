package pricesource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockClient_GetPrice(t *testing.T) {
	var capturedPath, capturedRange string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedRange = r.URL.Query().Get("range")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"VWCE.DE","currency":"EUR","regularMarketPrice":131.42}}],"error":null}}`))
	}))
	defer server.Close()

	client := NewStockClient(server.URL+"/", zerolog.Nop())

	price, ok, err := client.GetPrice(context.Background(), "VWCE.DE")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, price.Equal(decimal.RequireFromString("131.42")))
	assert.Equal(t, "/v8/finance/chart/VWCE.DE", capturedPath)
	assert.Equal(t, "1d", capturedRange)
}

func TestStockClient_NoPriceIsNotAnError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "unknown symbol", status: http.StatusNotFound, body: `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`},
		{name: "api error body", status: http.StatusOK, body: `{"chart":{"result":null,"error":{"code":"Not Found","description":"delisted"}}}`},
		{name: "empty result", status: http.StatusOK, body: `{"chart":{"result":[],"error":null}}`},
		{name: "null price", status: http.StatusOK, body: `{"chart":{"result":[{"meta":{"regularMarketPrice":null}}],"error":null}}`},
		{name: "zero price", status: http.StatusOK, body: `{"chart":{"result":[{"meta":{"regularMarketPrice":0}}],"error":null}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewStockClient(server.URL, zerolog.Nop())
			_, ok, err := client.GetPrice(context.Background(), "ZZZZ")
			assert.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStockClient_ServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewStockClient(server.URL, zerolog.Nop())
	_, ok, err := client.GetPrice(context.Background(), "AAPL")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, domain.ErrTransientIO))
}

func TestStockClient_EmptySymbol(t *testing.T) {
	client := NewStockClient("http://127.0.0.1:0", zerolog.Nop())
	_, ok, err := client.GetPrice(context.Background(), "  ")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestCryptoClient_GetBatchPrices(t *testing.T) {
	var capturedIDs, capturedVs string
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/v3/simple/price", r.URL.Path)
		capturedIDs = r.URL.Query().Get("ids")
		capturedVs = r.URL.Query().Get("vs_currencies")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":350},"ethereum":{"usd":2450.5},"dead-coin":{}}`))
	}))
	defer server.Close()

	client := NewCryptoClient(server.URL, zerolog.Nop())

	prices, err := client.GetBatchPrices(context.Background(), []domain.CryptoQuoteRequest{
		{Symbol: "BTC", CoinID: "bitcoin"},
		{Symbol: "ETH", CoinID: "Ethereum"},
		{Symbol: "BTC", CoinID: "bitcoin"},
		{Symbol: "DEAD", CoinID: "dead-coin"},
		{Symbol: "UNK", CoinID: "unknown"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "one batched request")
	assert.Equal(t, "bitcoin,ethereum,dead-coin,unknown", capturedIDs)
	assert.Equal(t, "usd", capturedVs)

	require.Len(t, prices, 2)
	assert.True(t, prices["bitcoin"].Equal(decimal.NewFromInt(350)))
	assert.True(t, prices["Ethereum"].Equal(decimal.RequireFromString("2450.5")), "keyed by the id the caller sent")
}

func TestCryptoClient_NothingToFetch(t *testing.T) {
	client := NewCryptoClient("http://127.0.0.1:0", zerolog.Nop())

	prices, err := client.GetBatchPrices(context.Background(), []domain.CryptoQuoteRequest{{Symbol: "BTC"}})
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestCryptoClient_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewCryptoClient(server.URL, zerolog.Nop())
	_, err := client.GetBatchPrices(context.Background(), []domain.CryptoQuoteRequest{{CoinID: "bitcoin"}})
	assert.True(t, errors.Is(err, domain.ErrTransientIO))
}

func TestClients_SatisfyPriceSources(t *testing.T) {
	var _ domain.StockPriceSource = NewStockClient("http://localhost", zerolog.Nop())
	var _ domain.CryptoPriceSource = NewCryptoClient("http://localhost", zerolog.Nop())
}
