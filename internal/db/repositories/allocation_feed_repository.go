package repositories

import (
	"context"
	"time"

	"winterops/stationboard/internal/constants"
	"winterops/stationboard/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// AllocationFeedRepository serves the read-heavy listing paths (range
// feed and per-tail history for export tooling) over raw SQL via sqlx.
// Writes never go through here.
type AllocationFeedRepository struct {
	db *sqlx.DB
}

func NewAllocationFeedRepository(db *sqlx.DB) *AllocationFeedRepository {
	return &AllocationFeedRepository{db}
}

// RangeFeed returns all allocations touching [start, end), newest
// first. With a station code the feed narrows to that station.
func (r *AllocationFeedRepository) RangeFeed(ctx context.Context, start, end time.Time, stationID string) ([]entities.AllocationRow, error) {
	var rows []entities.AllocationRow

	if stationID != "" {
		query := r.db.Rebind(constants.AllocationsOverlappingRangeByStation)
		err := r.db.SelectContext(ctx, &rows, query, stationID, end, start)
		return rows, err
	}

	query := r.db.Rebind(constants.AllocationsOverlappingRange)
	err := r.db.SelectContext(ctx, &rows, query, end, start)
	return rows, err
}

// HistoryFeed returns every allocation for one aircraft, newest first
func (r *AllocationFeedRepository) HistoryFeed(ctx context.Context, tail string) ([]entities.AllocationRow, error) {
	var rows []entities.AllocationRow

	query := r.db.Rebind(constants.AllocationHistoryByTail)
	err := r.db.SelectContext(ctx, &rows, query, tail)
	return rows, err
}
