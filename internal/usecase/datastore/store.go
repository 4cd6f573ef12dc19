package datastore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Backends groups the owner-scoped record store repositories
type Backends struct {
	Transactions domain.TransactionRepository
	Assets       domain.AssetRepository
	Liabilities  domain.LiabilityRepository
	Snapshots    domain.SnapshotRepository
}

// Store holds the record set of one session and is the only place it is mutated
//
// With an owner the records live in the record store, one table per entity.
// Without one the whole record set is kept in the local cache as a single blob.
// Mutations are serialized; each builds the next record set from a copy,
// persists it, and only then swaps it in, so a failed write never partially applies.
// Readers always get a consistent copy and are never blocked by I/O.
type Store struct {
	Clock func() time.Time

	backends Backends
	cache    domain.LocalCache
	owner    *uuid.UUID
	validate *validator.Validate
	log      zerolog.Logger

	writeMu sync.Mutex   // Serializes mutations, held across I/O
	mu      sync.RWMutex // Guards data
	data    *domain.FinancialData
	loaded  bool
}

// NewStore creates a new Store instance
// A nil owner selects local-cache mode
func NewStore(backends Backends, cache domain.LocalCache, owner *uuid.UUID, log zerolog.Logger) *Store {
	mode := "local"
	if owner != nil {
		mode = "record_store"
	}

	return &Store{
		Clock:    time.Now,
		backends: backends,
		cache:    cache,
		owner:    owner,
		validate: validator.New(),
		log:      log.With().Str("component", "datastore").Str("mode", mode).Logger(),
		data:     domain.NewFinancialData(),
	}
}

// Owner returns the owner the records are scoped to, if any
func (s *Store) Owner() (uuid.UUID, bool) {
	if s.owner == nil {
		return uuid.Nil, false
	}
	return *s.owner, true
}

// Loaded reports whether a Load has completed successfully
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Snapshot returns a copy of the current record set that is safe to read while the store mutates
func (s *Store) Snapshot() *domain.FinancialData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Holdings returns a copy of the priced holdings
func (s *Store) Holdings() ([]domain.InvestmentHolding, []domain.CryptoHolding) {
	data := s.Snapshot()
	return data.Investments, data.Crypto
}

// Load replaces the in-memory record set with the persisted one
// On failure the in-memory state is left unchanged
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) error {
	var (
		data *domain.FinancialData
		err  error
	)

	if s.owner != nil {
		data, err = s.loadRecords(ctx, *s.owner)
	} else {
		data, err = s.loadLocal(ctx)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load financial data")
		return transient("load financial data", err)
	}

	s.mu.Lock()
	s.data = data
	s.loaded = true
	s.mu.Unlock()

	s.log.Info().
		Int("transactions", len(data.Transactions)).
		Int("investments", len(data.Investments)).
		Int("crypto", len(data.Crypto)).
		Int("liabilities", len(data.Liabilities)).
		Int("snapshots", len(data.Snapshots)).
		Msg("Financial data loaded")

	return nil
}

// loadRecords lists every table of the owner concurrently and normalizes the rows
func (s *Store) loadRecords(ctx context.Context, ownerID uuid.UUID) (*domain.FinancialData, error) {
	var (
		transactions []*domain.Transaction
		assets       []*domain.AssetRecord
		liabilities  []*domain.Liability
		snapshots    []*domain.Snapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		transactions, err = s.backends.Transactions.List(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("failed to list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assets, err = s.backends.Assets.List(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("failed to list assets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		liabilities, err = s.backends.Liabilities.List(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("failed to list liabilities: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		snapshots, err = s.backends.Snapshots.List(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("failed to list snapshots: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := domain.NewFinancialData()

	for _, tx := range transactions {
		data.Transactions = append(data.Transactions, *tx)
	}
	sortTransactions(data.Transactions)

	data.Investments, data.Crypto = domain.SplitAssets(assets)

	for _, l := range liabilities {
		liability := *l
		liability.NormalizePrincipal()
		data.Liabilities = append(data.Liabilities, liability)
	}

	for _, snap := range snapshots {
		data.Snapshots = append(data.Snapshots, *snap)
	}
	sortSnapshots(data.Snapshots)

	return data, nil
}

func (s *Store) loadLocal(ctx context.Context) (*domain.FinancialData, error) {
	if s.cache == nil {
		return domain.NewFinancialData(), nil
	}

	data, err := s.cache.Load(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return domain.NewFinancialData(), nil
	}

	// Decoded slices may be nil
	normalized := domain.NewFinancialData()
	normalized.Transactions = append(normalized.Transactions, data.Transactions...)
	normalized.Investments = append(normalized.Investments, data.Investments...)
	normalized.Crypto = append(normalized.Crypto, data.Crypto...)
	normalized.Liabilities = append(normalized.Liabilities, data.Liabilities...)
	normalized.Snapshots = append(normalized.Snapshots, data.Snapshots...)

	for i := range normalized.Liabilities {
		normalized.Liabilities[i].NormalizePrincipal()
	}
	sortTransactions(normalized.Transactions)
	sortSnapshots(normalized.Snapshots)

	return normalized, nil
}

// mutation builds the next record set in place and returns the backend write that makes it durable
// persist is nil when the change only needs the local cache.
type mutation func(next *domain.FinancialData) (persist func(ctx context.Context, ownerID uuid.UUID) error, err error)

// commit applies a mutation: copy, mutate, persist, swap
func (s *Store) commit(ctx context.Context, action string, mutate mutation) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.Snapshot()

	persist, err := mutate(next)
	if err != nil {
		return err
	}

	if s.owner != nil {
		if persist != nil {
			if err := persist(ctx, *s.owner); err != nil {
				s.log.Error().Err(err).Str("action", action).Msg("Record store write failed")
				return transient(action, err)
			}
		}
	} else if s.cache != nil {
		if err := s.cache.Save(ctx, next); err != nil {
			s.log.Error().Err(err).Str("action", action).Msg("Local cache write failed")
			return transient(action, err)
		}
	}

	s.mu.Lock()
	s.data = next
	s.mu.Unlock()

	s.log.Debug().Str("action", action).Msg("Mutation applied")
	return nil
}

// ClearAll deletes every record of the session
// In record store mode every table is attempted; the tables that failed are named
// in the returned error and the in-memory state is reloaded to match what is left.
func (s *Store) ClearAll(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.owner == nil {
		if s.cache != nil {
			if err := s.cache.Clear(ctx); err != nil {
				return transient("clear local data", err)
			}
		}
		s.mu.Lock()
		s.data = domain.NewFinancialData()
		s.mu.Unlock()

		s.log.Info().Msg("Local data wiped")
		return nil
	}

	ownerID := *s.owner
	tables := []struct {
		name  string
		clear func(context.Context, uuid.UUID) error
	}{
		{"transactions", s.backends.Transactions.DeleteAll},
		{"assets", s.backends.Assets.DeleteAll},
		{"liabilities", s.backends.Liabilities.DeleteAll},
		{"portfolio_snapshots", s.backends.Snapshots.DeleteAll},
	}

	var (
		failed []string
		errs   []error
	)
	for _, table := range tables {
		if err := table.clear(ctx, ownerID); err != nil {
			s.log.Error().Err(err).Str("table", table.name).Msg("Failed to wipe table")
			failed = append(failed, table.name)
			errs = append(errs, err)
		}
	}

	if len(failed) == 0 {
		s.mu.Lock()
		s.data = domain.NewFinancialData()
		s.mu.Unlock()

		s.log.Info().Msg("All record store data wiped")
		return nil
	}

	clearErr := fmt.Errorf("failed to clear %s: %w", strings.Join(failed, ", "),
		errors.Join(append([]error{domain.ErrTransientIO}, errs...)...))

	if err := s.load(ctx); err != nil {
		return errors.Join(clearErr, err)
	}
	return clearErr
}

// transient wraps a backend failure so callers can tell it is safe to retry
// Not-found and validation failures keep their own meaning.
func transient(action string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	return fmt.Errorf("failed to %s: %w: %w", action, domain.ErrTransientIO, err)
}

// sortTransactions orders transactions newest first
func sortTransactions(txs []domain.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Date.Equal(txs[j].Date) {
			return txs[i].CreatedAt.After(txs[j].CreatedAt)
		}
		return txs[i].Date.After(txs[j].Date)
	})
}

// sortSnapshots orders snapshots oldest first
func sortSnapshots(snaps []domain.Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].Date.Before(snaps[j].Date)
	})
}
