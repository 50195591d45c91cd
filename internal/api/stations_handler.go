package api

import (
	"encoding/json"
	"net/http"

	gormModels "winterops/stationboard/internal/models/gorm"
	"winterops/stationboard/internal/services"

	"github.com/go-chi/chi/v5"
)

// ListStationsHandler handles GET /api/v1/stations
func ListStationsHandler(svc *services.StationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stations, err := svc.GetAll(r.Context())
		if err != nil {
			respondWithServiceError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &stations)
	}
}

// UpsertStationHandler handles PUT /api/v1/stations
func UpsertStationHandler(svc *services.StationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var station gormModels.Station
		if err := json.NewDecoder(r.Body).Decode(&station); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := svc.Upsert(r.Context(), &station); err != nil {
			respondWithServiceError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, &station)
	}
}

// StationCapacityHandler handles GET /api/v1/stations/{code}/capacity?at=
func StationCapacityHandler(svc *services.StationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		at, ok := parseAtParam(r)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "Invalid 'at' timestamp, expected RFC3339")
			return
		}

		capacity, err := svc.CapacityAt(r.Context(), code, at)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, capacity)
	}
}
