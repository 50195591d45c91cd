package api

import (
	"net/http"
	"time"

	"winterops/stationboard/internal/db/repositories"
	"winterops/stationboard/internal/models/entities"

	"github.com/go-chi/chi/v5"
)

// ExportAllocationsHandler handles GET /api/v1/export/allocations
// Serves the flat range feed that export tooling consumes, over the
// raw-SQL read path rather than the ORM
func ExportAllocationsHandler(feed *repositories.AllocationFeedRepository) http.HandlerFunc {
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
		if !end.After(start) {
			respondWithError(w, http.StatusBadRequest, "'end' must be after 'start'")
			return
		}

		rows, err := feed.RangeFeed(r.Context(), start, end, r.URL.Query().Get("station"))
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to fetch feed: "+err.Error())
			return
		}
		if rows == nil {
			rows = []entities.AllocationRow{}
		}

		respondWithSuccess(w, http.StatusOK, &rows)
	}
}

// ExportHistoryHandler handles GET /api/v1/export/aircraft/{tail}
// Flat per-tail history over the same raw-SQL path as the range feed
func ExportHistoryHandler(feed *repositories.AllocationFeedRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tail := chi.URLParam(r, "tail")
		if tail == "" {
			respondWithError(w, http.StatusBadRequest, "tail number is required")
			return
		}

		rows, err := feed.HistoryFeed(r.Context(), tail)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to fetch history: "+err.Error())
			return
		}
		if rows == nil {
			rows = []entities.AllocationRow{}
		}

		respondWithSuccess(w, http.StatusOK, &rows)
	}
}
