package repositories

import (
	"context"
	"fmt"
	"time"

	gormModels "winterops/stationboard/internal/models/gorm"

	"gorm.io/gorm"
)

// AdvisoryRepository handles weather advisory operations using GORM
type AdvisoryRepository struct {
	db *gorm.DB
}

// NewAdvisoryRepository creates a new GORM-based advisory repository
func NewAdvisoryRepository(db *gorm.DB) *AdvisoryRepository {
	return &AdvisoryRepository{db: db}
}

// Insert persists a new advisory
func (r *AdvisoryRepository) Insert(ctx context.Context, adv *gormModels.WeatherAdvisory) error {
	if err := r.db.WithContext(ctx).Create(adv).Error; err != nil {
		return fmt.Errorf("failed to insert advisory: %w", err)
	}
	return nil
}

// ActiveForStation retrieves the advisories whose validity window
// covers t for one station, most severe windows first by start time
func (r *AdvisoryRepository) ActiveForStation(ctx context.Context, stationID string, t time.Time) ([]gormModels.WeatherAdvisory, error) {
	var advisories []gormModels.WeatherAdvisory

	err := r.db.WithContext(ctx).
		Where("station_id = ?", stationID).
		Where("valid_from <= ? AND (valid_until IS NULL OR valid_until > ?)", t, t).
		Order("valid_from DESC").
		Find(&advisories).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch advisories: %w", err)
	}

	return advisories, nil
}

// DeleteExpiredBefore removes advisories that closed before cutoff,
// reporting how many rows were swept
func (r *AdvisoryRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("valid_until IS NOT NULL AND valid_until < ?", cutoff).
		Delete(&gormModels.WeatherAdvisory{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to sweep advisories: %w", result.Error)
	}

	return result.RowsAffected, nil
}
