package services

import (
	"context"
	"time"

	"winterops/stationboard/internal/constants"
	"winterops/stationboard/internal/db/repositories"
	"winterops/stationboard/internal/models/dtos/responses"
	gormModels "winterops/stationboard/internal/models/gorm"
)

// StationService exposes the station registry and the derived capacity
// view. Capacity reuses the summary service's station count so the
// occupancy figure can never drift from the map summary.
type StationService struct {
	stations *repositories.StationRepository
	summary  *SummaryService
}

func NewStationService(stations *repositories.StationRepository, summary *SummaryService) *StationService {
	return &StationService{stations: stations, summary: summary}
}

// GetAll lists every registered station
func (svc *StationService) GetAll(ctx context.Context) ([]gormModels.Station, error) {
	return svc.stations.GetAll(ctx)
}

// Upsert registers or updates a station
func (svc *StationService) Upsert(ctx context.Context, station *gormModels.Station) error {
	if station.ID == "" {
		return &ValidationError{Field: "id", Reason: "station code is required"}
	}
	if station.Name == "" {
		return &ValidationError{Field: "name", Reason: "station name is required"}
	}
	return svc.stations.Upsert(ctx, station)
}

// CapacityAt reports spot occupancy at a station at instant t
func (svc *StationService) CapacityAt(ctx context.Context, stationID string, t time.Time) (*responses.CapacityResponse, error) {
	station, err := svc.stations.GetByID(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if station == nil {
		return nil, &ValidationError{Field: "station_id", Reason: constants.MsgStationNotFound}
	}

	occupied, err := svc.summary.CountAtStation(ctx, stationID, t)
	if err != nil {
		return nil, err
	}

	return &responses.CapacityResponse{
		StationID: stationID,
		At:        t,
		SpotCount: station.SpotCount,
		Occupied:  occupied,
		Free:      station.SpotCount - occupied,
	}, nil
}
