package pricesource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// StockClient fetches stock and ETF prices from the Yahoo Finance chart API
type StockClient struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewStockClient creates a new StockClient instance
func NewStockClient(baseURL string, log zerolog.Logger) *StockClient {
	return &StockClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		log: log.With().Str("client", "stock_quotes").Logger(),
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string              `json:"symbol"`
				Currency           string              `json:"currency"`
				RegularMarketPrice decimal.NullDecimal `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetPrice returns the latest market price of symbol
// An unknown symbol or a quote without a price is reported as ok=false, not as an error
func (c *StockClient) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return decimal.Zero, false, nil
	}

	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("range", "1d")
	reqURL := c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to fetch quote: %w: %w", domain.ErrTransientIO, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.log.Debug().Str("symbol", symbol).Msg("Unknown symbol")
		return decimal.Zero, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, false, fmt.Errorf("quote API returned status %d: %s: %w", resp.StatusCode, string(body), domain.ErrTransientIO)
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Chart.Error != nil {
		c.log.Debug().Str("symbol", symbol).Str("code", result.Chart.Error.Code).Msg("Quote API reported an error")
		return decimal.Zero, false, nil
	}
	if len(result.Chart.Result) == 0 {
		return decimal.Zero, false, nil
	}

	price := result.Chart.Result[0].Meta.RegularMarketPrice
	if !price.Valid || !price.Decimal.IsPositive() {
		return decimal.Zero, false, nil
	}

	return price.Decimal, true, nil
}
