package pricesource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// quoteCurrency is the vs_currency all coins are priced in
var quoteCurrency = strings.ToLower(domain.CryptoCurrency)

// CryptoClient fetches coin prices in one batched CoinGecko request
type CryptoClient struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewCryptoClient creates a new CryptoClient instance
func NewCryptoClient(baseURL string, log zerolog.Logger) *CryptoClient {
	return &CryptoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		log: log.With().Str("client", "crypto_quotes").Logger(),
	}
}

// GetBatchPrices returns the latest price of each requested coin, keyed by CoinID
// Coins the API has no price for are absent from the result
func (c *CryptoClient) GetBatchPrices(ctx context.Context, items []domain.CryptoQuoteRequest) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal)

	// The API lower-cases ids; results are keyed back by the CoinID the caller sent
	ids := make([]string, 0, len(items))
	requested := make(map[string][]string, len(items))
	for _, item := range items {
		id := strings.ToLower(strings.TrimSpace(item.CoinID))
		if id == "" {
			continue
		}
		if _, dup := requested[id]; !dup {
			ids = append(ids, id)
		}
		requested[id] = append(requested[id], item.CoinID)
	}
	if len(ids) == 0 {
		return prices, nil
	}

	params := url.Values{}
	params.Add("ids", strings.Join(ids, ","))
	params.Add("vs_currencies", quoteCurrency)
	reqURL := c.baseURL + "/api/v3/simple/price?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w: %w", domain.ErrTransientIO, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("price API returned status %d: %s: %w", resp.StatusCode, string(body), domain.ErrTransientIO)
	}

	var result map[string]map[string]decimal.NullDecimal
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	for id, quotes := range result {
		price, ok := quotes[quoteCurrency]
		if !ok || !price.Valid || !price.Decimal.IsPositive() {
			continue
		}
		for _, key := range requested[id] {
			prices[key] = price.Decimal
		}
	}

	c.log.Debug().Int("requested", len(ids)).Int("priced", len(prices)).Msg("Fetched crypto prices")
	return prices, nil
}
