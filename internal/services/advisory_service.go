package services

import (
	"context"
	"time"

	"winterops/stationboard/internal/constants"
	"winterops/stationboard/internal/db/repositories"
	"winterops/stationboard/internal/models/dtos/requests"
	gormModels "winterops/stationboard/internal/models/gorm"

	"github.com/google/uuid"
)

// AdvisoryService ingests weather advisories and answers "advisories
// in effect at T" per station. Advisories share the allocation store's
// half-open window semantics but carry no overlap invariant; several
// advisories may cover one station at once.
type AdvisoryService struct {
	repo     *repositories.AdvisoryRepository
	stations *repositories.StationRepository
}

func NewAdvisoryService(repo *repositories.AdvisoryRepository, stations *repositories.StationRepository) *AdvisoryService {
	return &AdvisoryService{repo: repo, stations: stations}
}

// Create validates and stores a new advisory
func (svc *AdvisoryService) Create(ctx context.Context, req requests.CreateAdvisoryRequest) (*gormModels.WeatherAdvisory, error) {
	if req.Summary == "" {
		return nil, &ValidationError{Field: "summary", Reason: "summary is required"}
	}
	if req.Severity == "" {
		return nil, &ValidationError{Field: "severity", Reason: "severity is required"}
	}

	if svc.stations != nil {
		station, err := svc.stations.GetByID(ctx, req.StationID)
		if err != nil {
			return nil, err
		}
		if station == nil {
			return nil, &ValidationError{Field: "station_id", Reason: constants.MsgStationNotFound}
		}
	}

	from, until, err := parsePeriod(req.ValidFrom, req.ValidUntil)
	if err != nil {
		// advisory windows reuse the allocation period rules
		if verr, ok := err.(*ValidationError); ok {
			switch verr.Field {
			case "period_start":
				verr.Field = "valid_from"
			case "period_end":
				verr.Field = "valid_until"
			}
		}
		return nil, err
	}

	adv := &gormModels.WeatherAdvisory{
		ID:         uuid.NewString(),
		StationID:  req.StationID,
		Severity:   req.Severity,
		Summary:    req.Summary,
		ValidFrom:  from,
		ValidUntil: until,
	}

	if err := svc.repo.Insert(ctx, adv); err != nil {
		return nil, err
	}

	return adv, nil
}

// ActiveForStation lists the advisories in effect at t for one station
func (svc *AdvisoryService) ActiveForStation(ctx context.Context, stationID string, t time.Time) ([]gormModels.WeatherAdvisory, error) {
	if stationID == "" {
		return nil, &ValidationError{Field: "station_id", Reason: "station_id is required"}
	}
	return svc.repo.ActiveForStation(ctx, stationID, t)
}
