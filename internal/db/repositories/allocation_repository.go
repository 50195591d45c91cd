package repositories

import (
	"context"
	"fmt"
	"time"

	gormModels "winterops/stationboard/internal/models/gorm"

	"gorm.io/gorm"
)

// ActiveFilters narrows point-in-time and range queries. Empty fields
// match everything.
type ActiveFilters struct {
	StationID  string
	TailNumber string
	Carrier    string
}

// AllocationRepository handles allocation table operations using GORM
type AllocationRepository struct {
	db *gorm.DB
}

// NewAllocationRepository creates a new GORM-based allocation repository
func NewAllocationRepository(db *gorm.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// Transaction runs fn against a repository bound to a single
// transaction. The overlap check and the write for one aircraft must
// happen inside the same transaction.
func (r *AllocationRepository) Transaction(ctx context.Context, fn func(txRepo *AllocationRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AllocationRepository{db: tx})
	})
}

// GetByID retrieves an allocation by its ID, nil when absent
func (r *AllocationRepository) GetByID(ctx context.Context, id string) (*gormModels.Allocation, error) {
	var alloc gormModels.Allocation

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&alloc).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch allocation: %w", err)
	}

	return &alloc, nil
}

// FindConflict returns the first allocation for tail whose interval
// intersects [start, end), excluding excludeID so a record being moved
// does not collide with its own prior self. Returns nil when the
// candidate interval is clear.
func (r *AllocationRepository) FindConflict(ctx context.Context, tail string, start time.Time, end *time.Time, excludeID string) (*gormModels.Allocation, error) {
	var conflict gormModels.Allocation

	q := r.db.WithContext(ctx).
		Where("tail_number = ?", tail).
		Scopes(gormModels.ScopeOverlapping(start, end))

	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	err := q.Order("period_start ASC").First(&conflict).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to search for conflicts: %w", err)
	}

	return &conflict, nil
}

// Insert persists a new allocation
func (r *AllocationRepository) Insert(ctx context.Context, alloc *gormModels.Allocation) error {
	if err := r.db.WithContext(ctx).Create(alloc).Error; err != nil {
		return fmt.Errorf("failed to insert allocation: %w", err)
	}
	return nil
}

// Save persists every field of an existing allocation
func (r *AllocationRepository) Save(ctx context.Context, alloc *gormModels.Allocation) error {
	if err := r.db.WithContext(ctx).Save(alloc).Error; err != nil {
		return fmt.Errorf("failed to update allocation: %w", err)
	}
	return nil
}

// Delete removes an allocation, reporting how many rows matched
func (r *AllocationRepository) Delete(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&gormModels.Allocation{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete allocation: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// ActiveAt retrieves the allocations active at instant t, optionally
// filtered by station, tail number, or carrier
func (r *AllocationRepository) ActiveAt(ctx context.Context, t time.Time, filters ActiveFilters) ([]gormModels.Allocation, error) {
	var allocs []gormModels.Allocation

	q := r.db.WithContext(ctx).Scopes(gormModels.ScopeActiveAt(t))
	if filters.StationID != "" {
		q = q.Where("station_id = ?", filters.StationID)
	}
	if filters.TailNumber != "" {
		q = q.Where("tail_number = ?", filters.TailNumber)
	}
	if filters.Carrier != "" {
		q = q.Where("carrier = ?", filters.Carrier)
	}

	if err := q.Order("period_start ASC").Find(&allocs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch active allocations: %w", err)
	}

	return allocs, nil
}

// OverlappingRange retrieves every allocation whose interval intersects
// the window [start, end). This is "touches the window", not "active
// right now".
func (r *AllocationRepository) OverlappingRange(ctx context.Context, start, end time.Time, filters ActiveFilters) ([]gormModels.Allocation, error) {
	var allocs []gormModels.Allocation

	q := r.db.WithContext(ctx).Scopes(gormModels.ScopeOverlapping(start, &end))
	if filters.StationID != "" {
		q = q.Where("station_id = ?", filters.StationID)
	}
	if filters.TailNumber != "" {
		q = q.Where("tail_number = ?", filters.TailNumber)
	}

	if err := q.Order("period_start DESC").Find(&allocs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch range allocations: %w", err)
	}

	return allocs, nil
}

// HistoryByTail retrieves all allocations for one aircraft, newest first
func (r *AllocationRepository) HistoryByTail(ctx context.Context, tail string) ([]gormModels.Allocation, error) {
	var allocs []gormModels.Allocation

	err := r.db.WithContext(ctx).
		Where("tail_number = ?", tail).
		Order("period_start DESC").
		Find(&allocs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}

	return allocs, nil
}
