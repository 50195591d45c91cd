package api

import (
	"net/http"

	"winterops/stationboard/internal/services"
)

// SummaryHandler handles GET /api/v1/summary?at=
// Returns counts by station and carrier for the instant, from the
// shared active-at predicate
func SummaryHandler(svc *services.SummaryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		at, ok := parseAtParam(r)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "Invalid 'at' timestamp, expected RFC3339")
			return
		}

		summary, err := svc.SummaryAt(r.Context(), at)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, summary)
	}
}
