package routes

import (
	"winterops/stationboard/internal/api"
	"winterops/stationboard/internal/metrics"
	"winterops/stationboard/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(r chi.Router, metricsReg *metrics.MetricsRegistry, deps *api.Dependencies) {

	allocationSvc := deps.Services.Allocation
	summarySvc := deps.Services.Summary
	stationSvc := deps.Services.Station
	advisorySvc := deps.Services.Advisory

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.MetricsMiddleware(metricsReg))

		// Allocation interval store
		v1.Route("/allocations", func(alloc chi.Router) {
			alloc.Post("/", api.CreateAllocationHandler(allocationSvc))
			alloc.Get("/active", api.ActiveAllocationsHandler(allocationSvc))
			alloc.Get("/range", api.RangeAllocationsHandler(allocationSvc))
			alloc.Get("/{id}", api.GetAllocationHandler(allocationSvc))
			alloc.Patch("/{id}", api.UpdateAllocationHandler(allocationSvc))
			alloc.Delete("/{id}", api.DeleteAllocationHandler(allocationSvc))
		})

		v1.Get("/aircraft/{tail}/history", api.HistoryHandler(allocationSvc))

		// Point-in-time aggregation
		v1.Get("/summary", api.SummaryHandler(summarySvc))

		// Stations and derived capacity
		v1.Route("/stations", func(st chi.Router) {
			st.Get("/", api.ListStationsHandler(stationSvc))
			st.Put("/", api.UpsertStationHandler(stationSvc))
			st.Get("/{code}/capacity", api.StationCapacityHandler(stationSvc))
			st.Get("/{code}/advisories", api.StationAdvisoriesHandler(advisorySvc))
		})

		// Weather advisories (raw text in, no parsing)
		v1.Post("/advisories", api.CreateAdvisoryHandler(advisorySvc))

		// Raw-SQL feeds for export tooling
		v1.Get("/export/allocations", api.ExportAllocationsHandler(deps.Repo.Feed))
		v1.Get("/export/aircraft/{tail}", api.ExportHistoryHandler(deps.Repo.Feed))
	})
}
