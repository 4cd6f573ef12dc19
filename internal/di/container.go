// Package di wires the engine from configuration.
package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/simaogato/wealthtrack-backend/internal/adapter/localcache"
	"github.com/simaogato/wealthtrack-backend/internal/adapter/pricesource"
	"github.com/simaogato/wealthtrack-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/wealthtrack-backend/internal/config"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/scheduler"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/analytics"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/currency"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/datastore"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/pricing"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/snapshot"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/valuation"
)

// Container holds every wired component of the engine
// Exactly one of DB and Cache is set, depending on whether an owner is configured
type Container struct {
	DB    *postgres.DB
	Cache *localcache.Cache

	Converter   *currency.Converter
	Aggregator  *valuation.Aggregator
	Store       *datastore.Store
	Coordinator *pricing.Coordinator
	Analytics   *analytics.Service
	Snapshots   *snapshot.Service
}

// Wire builds the container and loads the record set
func Wire(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	c := &Container{}

	// 1. Currency normalization
	rates, err := currency.ParseRates(cfg.FXRates)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FX_RATES: %w", err)
	}
	c.Converter, err = currency.NewConverter(cfg.BaseCurrency, rates)
	if err != nil {
		return nil, fmt.Errorf("failed to build currency converter: %w", err)
	}
	c.Aggregator = valuation.NewAggregator(c.Converter)

	// 2. Storage: record store when an owner is known, local cache otherwise
	var backends datastore.Backends
	var cache domain.LocalCache
	if cfg.UsesRecordStore() {
		c.DB, err = postgres.NewDB(ctx, cfg.DBConnStr)
		if err != nil {
			return nil, err
		}
		if err := c.DB.Migrate(ctx); err != nil {
			_ = c.DB.Close()
			return nil, err
		}
		backends = datastore.Backends{
			Transactions: postgres.NewTransactionRepository(c.DB),
			Assets:       postgres.NewAssetRepository(c.DB),
			Liabilities:  postgres.NewLiabilityRepository(c.DB),
			Snapshots:    postgres.NewSnapshotRepository(c.DB),
		}
		log.Info().Str("owner", cfg.OwnerID.String()).Msg("Using record store")
	} else {
		c.Cache, err = localcache.Open(cfg.LocalCachePath, log)
		if err != nil {
			return nil, err
		}
		cache = c.Cache
		log.Info().Str("path", cfg.LocalCachePath).Msg("Using local cache")
	}

	c.Store = datastore.NewStore(backends, cache, cfg.OwnerID, log)

	if err := c.Store.Load(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	// 3. Services
	c.Coordinator = pricing.NewCoordinator(
		c.Store,
		pricesource.NewStockClient(cfg.StockQuoteURL, log),
		pricesource.NewCryptoClient(cfg.CryptoQuoteURL, log),
		cfg.StalenessWindow,
		log,
	)
	c.Analytics = analytics.NewService(c.Aggregator)
	c.Snapshots = snapshot.NewService(c.Store, c.Aggregator, log)

	return c, nil
}

// RegisterJobs schedules the periodic price refresh and the daily snapshot
func RegisterJobs(c *Container, cfg *config.Config, sched *scheduler.Scheduler, log zerolog.Logger) error {
	if err := sched.AddJob(cfg.RefreshSchedule, scheduler.NewPriceRefreshJob(c.Coordinator, log)); err != nil {
		return fmt.Errorf("failed to register price refresh job: %w", err)
	}
	if err := sched.AddJob(cfg.SnapshotSchedule, scheduler.NewSnapshotJob(c.Snapshots, log)); err != nil {
		return fmt.Errorf("failed to register snapshot job: %w", err)
	}
	return nil
}

// Close releases the storage handles
func (c *Container) Close() error {
	var errs []error
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	return errors.Join(errs...)
}
