package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/valuation"
)

const labelLayout = "Jan 02"

// Store is the part of the data store the snapshot manager needs
type Store interface {
	// Snapshot returns a read-only copy of the current record set
	Snapshot() *domain.FinancialData

	// AppendSnapshot persists a snapshot and adds it to the in-memory history
	AppendSnapshot(ctx context.Context, snapshot *domain.Snapshot) error
}

// Service records net-worth snapshots and serves range-filtered history
type Service struct {
	Store      Store
	Aggregator *valuation.Aggregator
	Clock      func() time.Time

	log zerolog.Logger
}

// NewService creates a new snapshot Service instance
func NewService(store Store, aggregator *valuation.Aggregator, log zerolog.Logger) *Service {
	return &Service{
		Store:      store,
		Aggregator: aggregator,
		Clock:      time.Now,
		log:        log.With().Str("component", "snapshot").Logger(),
	}
}

// TakeSnapshot values the current record set and appends the result to history
// Logic:
//  1. Compute totals over a point-in-time copy of the record set
//  2. Build an immutable snapshot dated now
//  3. Append it; on failure nothing is added to history
func (s *Service) TakeSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	if s.Store == nil {
		return nil, errors.New("snapshot service has no store")
	}

	// 1. Totals
	totals := s.Aggregator.CalculateTotals(s.Store.Snapshot())

	// 2. Build
	snap := domain.NewSnapshot(totals, s.Clock().UTC())

	// 3. Append
	if err := s.Store.AppendSnapshot(ctx, snap); err != nil {
		s.log.Error().Err(err).Msg("Failed to append snapshot")
		return nil, fmt.Errorf("failed to take snapshot: %w", err)
	}

	s.log.Info().
		Str("net_worth", snap.NetWorth.StringFixed(2)).
		Time("date", snap.Date).
		Msg("Snapshot taken")

	return snap, nil
}

// SnapshotsInRange returns the snapshots dated strictly after the range cutoff and not after now,
// oldest first
func (s *Service) SnapshotsInRange(data *domain.FinancialData, r domain.TimeRange) []domain.Snapshot {
	result := make([]domain.Snapshot, 0)
	if data == nil {
		return result
	}

	now := s.Clock()
	cutoff := r.Cutoff(now)

	for _, snap := range data.Snapshots {
		if !snap.Date.After(cutoff) || snap.Date.After(now) {
			continue
		}
		result = append(result, snap)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result
}

// GetSnapshotsByRange returns the net-worth series of the range, ready for charting
func (s *Service) GetSnapshotsByRange(data *domain.FinancialData, r domain.TimeRange) []domain.ChartPoint {
	snapshots := s.SnapshotsInRange(data, r)

	points := make([]domain.ChartPoint, 0, len(snapshots))
	for _, snap := range snapshots {
		points = append(points, domain.ChartPoint{
			Date:  snap.Date,
			Label: snap.Date.Format(labelLayout),
			Value: snap.NetWorth,
		})
	}

	return points
}
