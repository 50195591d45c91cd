package api

import (
	"winterops/stationboard/internal/common"
	"winterops/stationboard/internal/db"
	"winterops/stationboard/internal/db/repositories"
	"winterops/stationboard/internal/events"
	"winterops/stationboard/internal/metrics"
	"winterops/stationboard/internal/services"
)

type Repositories struct {
	Allocation *repositories.AllocationRepository
	Station    *repositories.StationRepository
	Advisory   *repositories.AdvisoryRepository
	Feed       *repositories.AllocationFeedRepository
}

type Services struct {
	Allocation *services.AllocationService
	Summary    *services.SummaryService
	Station    *services.StationService
	Advisory   *services.AdvisoryService
	Cache      *common.CacheService
}

type Dependencies struct {
	Repo       *Repositories
	Services   *Services
	Dispatcher *events.Dispatcher
}

func InitDependencies(metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {

	repos := &Repositories{
		Allocation: repositories.NewAllocationRepository(db.PgDB),
		Station:    repositories.NewStationRepository(db.PgDB),
		Advisory:   repositories.NewAdvisoryRepository(db.PgDB),
		Feed:       repositories.NewAllocationFeedRepository(db.DB),
	}

	dispatcher := events.NewDispatcher()
	cacheSvc := common.NewCacheService(60, 600)

	allocationSvc := services.NewAllocationService(repos.Allocation, repos.Station, dispatcher, metricsReg)
	summarySvc := services.NewSummaryService(allocationSvc, cacheSvc, metricsReg)

	svcs := &Services{
		Allocation: allocationSvc,
		Summary:    summarySvc,
		Station:    services.NewStationService(repos.Station, summarySvc),
		Advisory:   services.NewAdvisoryService(repos.Advisory, repos.Station),
		Cache:      cacheSvc,
	}

	return &Dependencies{
		Repo:       repos,
		Services:   svcs,
		Dispatcher: dispatcher,
	}, nil

}
