package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/pricing"
)

// DefaultJobTimeout bounds a single run of a scheduled job
const DefaultJobTimeout = 2 * time.Minute

// PriceRefresher refreshes the stale holding prices
type PriceRefresher interface {
	Refresh(ctx context.Context, force bool) (pricing.RefreshResult, error)
}

// SnapshotTaker records a net-worth snapshot
type SnapshotTaker interface {
	TakeSnapshot(ctx context.Context) (*domain.Snapshot, error)
}

// PriceRefreshJob refreshes stale prices on a schedule
type PriceRefreshJob struct {
	refresher PriceRefresher
	timeout   time.Duration
	log       zerolog.Logger
}

// NewPriceRefreshJob creates a new price refresh job
func NewPriceRefreshJob(refresher PriceRefresher, log zerolog.Logger) *PriceRefreshJob {
	return &PriceRefreshJob{
		refresher: refresher,
		timeout:   DefaultJobTimeout,
		log:       log.With().Str("job", "price_refresh").Logger(),
	}
}

// Name returns the job name
func (j *PriceRefreshJob) Name() string {
	return "price_refresh"
}

// Run refreshes only the holdings whose price is older than the staleness window
func (j *PriceRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	result, err := j.refresher.Refresh(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to refresh prices: %w", err)
	}

	if result.Attempted > 0 {
		j.log.Info().
			Int("attempted", result.Attempted).
			Int("updated", result.Updated).
			Int("missing", len(result.Missing)).
			Msg("Scheduled price refresh finished")
	}
	return nil
}

// SnapshotJob records the daily net-worth snapshot
type SnapshotJob struct {
	taker   SnapshotTaker
	timeout time.Duration
	log     zerolog.Logger
}

// NewSnapshotJob creates a new snapshot job
func NewSnapshotJob(taker SnapshotTaker, log zerolog.Logger) *SnapshotJob {
	return &SnapshotJob{
		taker:   taker,
		timeout: DefaultJobTimeout,
		log:     log.With().Str("job", "snapshot").Logger(),
	}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "snapshot"
}

// Run takes one snapshot of the current valuation
func (j *SnapshotJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	snap, err := j.taker.TakeSnapshot(ctx)
	if err != nil {
		return err
	}

	j.log.Info().
		Str("net_worth", snap.NetWorth.String()).
		Time("date", snap.Date).
		Msg("Snapshot recorded")
	return nil
}
