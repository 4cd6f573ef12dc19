package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultStalenessWindow is the maximum age of a price before it is refreshed
	DefaultStalenessWindow = 15 * time.Minute

	// DefaultMaxConcurrency bounds the number of quotes requested at once
	DefaultMaxConcurrency = 8
)

// HoldingStore is the slice of the data store the coordinator reads and writes
type HoldingStore interface {
	// Holdings returns a point-in-time copy of the priced holdings
	Holdings() ([]domain.InvestmentHolding, []domain.CryptoHolding)

	// UpdatePrice atomically replaces the price and price timestamp of one holding
	UpdatePrice(ctx context.Context, kind domain.HoldingKind, id uuid.UUID, price decimal.Decimal, at time.Time) error
}

// StaleSet is the set of holdings due for a price refresh
type StaleSet struct {
	Crypto []domain.CryptoHolding
	Stocks []domain.InvestmentHolding
}

// Len returns the number of holdings in the set
func (s StaleSet) Len() int {
	return len(s.Crypto) + len(s.Stocks)
}

// RefreshResult details the outcome of one refresh cycle
type RefreshResult struct {
	Updated   int
	Attempted int
	Skipped   []uuid.UUID // Already being refreshed by an overlapping call
	Missing   []uuid.UUID // No price obtained; the holding stays stale
}

// Coordinator decides which holdings need a fresh price, fetches them and writes them back
// Overlapping refreshes are coalesced: a holding already in flight is skipped, never fetched twice
type Coordinator struct {
	Store          HoldingStore
	Stocks         domain.StockPriceSource
	Crypto         domain.CryptoPriceSource
	Window         time.Duration
	MaxConcurrency int
	Clock          func() time.Time

	log      zerolog.Logger
	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

// NewCoordinator creates a new Coordinator instance
func NewCoordinator(
	store HoldingStore,
	stocks domain.StockPriceSource,
	crypto domain.CryptoPriceSource,
	window time.Duration,
	log zerolog.Logger,
) *Coordinator {
	if window <= 0 {
		window = DefaultStalenessWindow
	}
	return &Coordinator{
		Store:          store,
		Stocks:         stocks,
		Crypto:         crypto,
		Window:         window,
		MaxConcurrency: DefaultMaxConcurrency,
		Clock:          time.Now,
		log:            log.With().Str("component", "price_coordinator").Logger(),
		inFlight:       make(map[uuid.UUID]struct{}),
	}
}

// State returns the lifecycle state of a holding's price at now
func (c *Coordinator) State(id uuid.UUID, lastUpdate *time.Time, now time.Time) domain.PriceState {
	c.mu.Lock()
	_, refreshing := c.inFlight[id]
	c.mu.Unlock()

	if refreshing {
		return domain.PriceStateRefreshing
	}
	if domain.IsStale(lastUpdate, now, c.Window) {
		return domain.PriceStateStale
	}
	return domain.PriceStateFresh
}

// StaleSet returns the eligible holdings whose price is stale at the current time
// Crypto holdings are always eligible; investments only when they are stocks or ETFs.
// With force every eligible holding is returned regardless of age.
// Holdings already being refreshed are left out.
func (c *Coordinator) StaleSet(force bool) StaleSet {
	return c.selectStale(force, false)
}

// selectStale builds the stale set, keeping in-flight holdings when includeBusy is set
func (c *Coordinator) selectStale(force, includeBusy bool) StaleSet {
	now := c.Clock()
	investments, crypto := c.Store.Holdings()

	c.mu.Lock()
	defer c.mu.Unlock()

	set := StaleSet{
		Crypto: make([]domain.CryptoHolding, 0),
		Stocks: make([]domain.InvestmentHolding, 0),
	}
	keep := func(id uuid.UUID, lastUpdate *time.Time) bool {
		if _, busy := c.inFlight[id]; busy && !includeBusy {
			return false
		}
		return force || domain.IsStale(lastUpdate, now, c.Window)
	}

	for _, h := range crypto {
		if keep(h.ID, h.LastPriceUpdate) {
			set.Crypto = append(set.Crypto, h)
		}
	}

	for _, h := range investments {
		if h.IsAutoPriced() && keep(h.ID, h.LastPriceUpdate) {
			set.Stocks = append(set.Stocks, h)
		}
	}

	return set
}

// RefreshPrices refreshes stale prices and returns how many holdings were updated
func (c *Coordinator) RefreshPrices(ctx context.Context, force bool) (int, error) {
	result, err := c.Refresh(ctx, force)
	return result.Updated, err
}

// Refresh runs one refresh cycle
// Logic:
//  1. Select the stale set and claim it, skipping holdings another cycle already claimed
//  2. Fetch crypto in one batch and stocks one by one, concurrently
//  3. Write back every price obtained; a missing or failed quote leaves that holding stale
//  4. Release the claims
//
// A failure of one quote never fails the cycle. The cycle is detached from ctx
// cancellation and always runs to completion once started.
func (c *Coordinator) Refresh(ctx context.Context, force bool) (RefreshResult, error) {
	result := RefreshResult{
		Skipped: make([]uuid.UUID, 0),
		Missing: make([]uuid.UUID, 0),
	}

	if c.Store == nil {
		return result, errors.New("price coordinator has no holding store")
	}

	// 1. Select and claim; holdings in flight elsewhere come back as skipped
	set := c.selectStale(force, true)
	if set.Len() == 0 {
		c.log.Debug().Bool("force", force).Msg("Prices are up to date")
		return result, nil
	}

	claimed, skipped := c.claim(set)
	defer c.release(claimed)
	result.Skipped = skipped

	if claimed.Len() == 0 {
		return result, nil
	}
	result.Attempted = claimed.Len()

	now := c.Clock()
	ctx = context.WithoutCancel(ctx)

	c.log.Info().
		Bool("force", force).
		Int("crypto", len(claimed.Crypto)).
		Int("stocks", len(claimed.Stocks)).
		Msg("Refreshing prices")

	// 2 & 3. Fetch and write back
	var (
		mu      sync.Mutex
		updated int
		missing []uuid.UUID
	)
	record := func(id uuid.UUID, ok bool) {
		mu.Lock()
		defer mu.Unlock()
		if ok {
			updated++
		} else {
			missing = append(missing, id)
		}
	}

	g := new(errgroup.Group)
	limit := c.MaxConcurrency
	if limit <= 0 {
		limit = DefaultMaxConcurrency
	}
	g.SetLimit(limit)

	if len(claimed.Crypto) > 0 {
		g.Go(func() error {
			c.refreshCrypto(ctx, claimed.Crypto, now, record)
			return nil
		})
	}

	for _, stock := range claimed.Stocks {
		stock := stock
		g.Go(func() error {
			record(stock.ID, c.refreshStock(ctx, stock, now))
			return nil
		})
	}

	_ = g.Wait()

	result.Updated = updated
	result.Missing = append(result.Missing, missing...)

	c.log.Info().
		Int("updated", result.Updated).
		Int("missing", len(result.Missing)).
		Int("skipped", len(result.Skipped)).
		Msg("Price refresh complete")

	return result, nil
}

// refreshCrypto fetches all claimed coins in one batched request
func (c *Coordinator) refreshCrypto(ctx context.Context, coins []domain.CryptoHolding, now time.Time, record func(uuid.UUID, bool)) {
	if c.Crypto == nil {
		for _, coin := range coins {
			record(coin.ID, false)
		}
		return
	}

	items := make([]domain.CryptoQuoteRequest, 0, len(coins))
	for _, coin := range coins {
		items = append(items, domain.CryptoQuoteRequest{
			Symbol: coin.Symbol,
			CoinID: coin.LookupID(),
		})
	}

	prices, err := c.Crypto.GetBatchPrices(ctx, items)
	if err != nil {
		c.log.Warn().Err(err).Int("coins", len(coins)).Msg("Batch crypto quote failed")
		for _, coin := range coins {
			record(coin.ID, false)
		}
		return
	}

	for _, coin := range coins {
		price, ok := prices[coin.LookupID()]
		if !ok {
			c.log.Debug().Str("symbol", coin.Symbol).Msg("No crypto price available")
			record(coin.ID, false)
			continue
		}
		record(coin.ID, c.writeBack(ctx, domain.HoldingKindCrypto, coin.ID, coin.Symbol, coin.Quantity, price, now))
	}
}

// refreshStock fetches one stock or ETF quote
func (c *Coordinator) refreshStock(ctx context.Context, stock domain.InvestmentHolding, now time.Time) bool {
	if c.Stocks == nil {
		return false
	}

	price, ok, err := c.Stocks.GetPrice(ctx, stock.Symbol)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", stock.Symbol).Msg("Stock quote failed")
		return false
	}
	if !ok {
		c.log.Debug().Str("symbol", stock.Symbol).Msg("No stock price available")
		return false
	}

	return c.writeBack(ctx, domain.HoldingKindInvestment, stock.ID, stock.Symbol, stock.Quantity, price, now)
}

func (c *Coordinator) writeBack(ctx context.Context, kind domain.HoldingKind, id uuid.UUID, symbol string, quantity, price decimal.Decimal, now time.Time) bool {
	if !price.IsPositive() {
		c.log.Warn().Str("symbol", symbol).Str("price", price.String()).Msg("Ignoring non-positive price")
		return false
	}
	if err := domain.CheckHoldingInvariants(quantity, price); err != nil {
		c.log.Error().Err(err).Str("symbol", symbol).Msg("Refusing price write-back")
		return false
	}

	if err := c.Store.UpdatePrice(ctx, kind, id, price, now); err != nil {
		c.log.Warn().Err(fmt.Errorf("failed to write back price: %w", err)).Str("symbol", symbol).Msg("Price write-back failed")
		return false
	}

	return true
}

// claim marks the holdings of set as in flight
// Holdings already claimed by an overlapping cycle are returned as skipped
func (c *Coordinator) claim(set StaleSet) (StaleSet, []uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	claimed := StaleSet{
		Crypto: make([]domain.CryptoHolding, 0, len(set.Crypto)),
		Stocks: make([]domain.InvestmentHolding, 0, len(set.Stocks)),
	}
	skipped := make([]uuid.UUID, 0)

	for _, h := range set.Crypto {
		if _, busy := c.inFlight[h.ID]; busy {
			skipped = append(skipped, h.ID)
			continue
		}
		c.inFlight[h.ID] = struct{}{}
		claimed.Crypto = append(claimed.Crypto, h)
	}

	for _, h := range set.Stocks {
		if _, busy := c.inFlight[h.ID]; busy {
			skipped = append(skipped, h.ID)
			continue
		}
		c.inFlight[h.ID] = struct{}{}
		claimed.Stocks = append(claimed.Stocks, h)
	}

	return claimed, skipped
}

func (c *Coordinator) release(set StaleSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, h := range set.Crypto {
		delete(c.inFlight, h.ID)
	}
	for _, h := range set.Stocks {
		delete(c.inFlight, h.ID)
	}
}
