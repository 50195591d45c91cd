package repositories

import (
	"context"
	"fmt"

	gormModels "winterops/stationboard/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StationRepository handles station table operations using GORM
type StationRepository struct {
	db *gorm.DB
}

// NewStationRepository creates a new GORM-based station repository
func NewStationRepository(db *gorm.DB) *StationRepository {
	return &StationRepository{db: db}
}

// GetByID retrieves a station by its code
func (r *StationRepository) GetByID(ctx context.Context, stationID string) (*gormModels.Station, error) {
	var station gormModels.Station

	err := r.db.WithContext(ctx).
		Where("id = ?", stationID).
		First(&station).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch station: %w", err)
	}

	return &station, nil
}

// GetAll retrieves all stations ordered by code
func (r *StationRepository) GetAll(ctx context.Context) ([]gormModels.Station, error) {
	var stations []gormModels.Station

	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&stations).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch stations: %w", err)
	}

	return stations, nil
}

// Upsert inserts or updates a station keyed by its code
func (r *StationRepository) Upsert(ctx context.Context, station *gormModels.Station) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "city", "spot_count", "timezone", "updated_at"}),
		}).
		Create(station).Error

	if err != nil {
		return fmt.Errorf("failed to upsert station: %w", err)
	}

	return nil
}
