package api

import (
	"encoding/json"
	"net/http"
	"time"

	"winterops/stationboard/internal/db/repositories"
	"winterops/stationboard/internal/models/dtos/requests"
	gormModels "winterops/stationboard/internal/models/gorm"
	"winterops/stationboard/internal/services"

	"github.com/go-chi/chi/v5"
)

// parseAtParam reads the ?at= query parameter, defaulting to now
func parseAtParam(r *http.Request) (time.Time, bool) {
	atStr := r.URL.Query().Get("at")
	if atStr == "" {
		return time.Now().UTC(), true
	}
	at, err := time.Parse(time.RFC3339, atStr)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// CreateAllocationHandler handles POST /api/v1/allocations
func CreateAllocationHandler(svc *services.AllocationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req requests.CreateAllocationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		alloc, err := svc.Create(r.Context(), req)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusCreated, alloc)
	}
}

// UpdateAllocationHandler handles PATCH /api/v1/allocations/{id}
func UpdateAllocationHandler(svc *services.AllocationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req requests.UpdateAllocationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		alloc, err := svc.Update(r.Context(), id, req)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, alloc)
	}
}

// DeleteAllocationHandler handles DELETE /api/v1/allocations/{id}
func DeleteAllocationHandler(svc *services.AllocationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := svc.Delete(r.Context(), id); err != nil {
			respondWithServiceError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &map[string]string{"deleted": id})
	}
}

// GetAllocationHandler handles GET /api/v1/allocations/{id}
func GetAllocationHandler(svc *services.AllocationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		alloc, err := svc.GetByID(r.Context(), id)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, alloc)
	}
}

// ActiveAllocationsHandler handles GET /api/v1/allocations/active
// Filters: at (RFC3339, default now), station, aircraft, carrier
func ActiveAllocationsHandler(svc *services.AllocationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		at, ok := parseAtParam(r)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "Invalid 'at' timestamp, expected RFC3339")
			return
		}

		filters := repositories.ActiveFilters{
			StationID:  r.URL.Query().Get("station"),
			TailNumber: r.URL.Query().Get("aircraft"),
			Carrier:    r.URL.Query().Get("carrier"),
		}

		allocs, err := svc.ActiveAt(r.Context(), at, filters)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &allocs)
	}
}

// RangeAllocationsHandler handles GET /api/v1/allocations/range
// Returns allocations touching the window [start, end) — any overlap
// counts, not just "active right now"
func RangeAllocationsHandler(svc *services.AllocationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'start' timestamp, expected RFC3339")
			return
		}
		end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'end' timestamp, expected RFC3339")
			return
		}

		filters := repositories.ActiveFilters{
			StationID:  r.URL.Query().Get("station"),
			TailNumber: r.URL.Query().Get("aircraft"),
		}

		allocs, err := svc.OverlappingRange(r.Context(), start, end, filters)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &allocs)
	}
}

// HistoryHandler handles GET /api/v1/aircraft/{tail}/history
func HistoryHandler(svc *services.AllocationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tail := chi.URLParam(r, "tail")

		allocs, err := svc.History(r.Context(), tail)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		if allocs == nil {
			allocs = []gormModels.Allocation{}
		}

		respondWithSuccess(w, http.StatusOK, &allocs)
	}
}
