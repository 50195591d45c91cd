package api

import (
	"encoding/json"
	"net/http"

	"winterops/stationboard/internal/models/dtos/requests"
	gormModels "winterops/stationboard/internal/models/gorm"
	"winterops/stationboard/internal/services"

	"github.com/go-chi/chi/v5"
)

// CreateAdvisoryHandler handles POST /api/v1/advisories
func CreateAdvisoryHandler(svc *services.AdvisoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req requests.CreateAdvisoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		adv, err := svc.Create(r.Context(), req)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusCreated, adv)
	}
}

// StationAdvisoriesHandler handles GET /api/v1/stations/{code}/advisories?at=
func StationAdvisoriesHandler(svc *services.AdvisoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		at, ok := parseAtParam(r)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "Invalid 'at' timestamp, expected RFC3339")
			return
		}

		advisories, err := svc.ActiveForStation(r.Context(), code, at)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		if advisories == nil {
			advisories = []gormModels.WeatherAdvisory{}
		}

		respondWithSuccess(w, http.StatusOK, &advisories)
	}
}
