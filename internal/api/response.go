package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"winterops/stationboard/internal/constants"
	"winterops/stationboard/internal/models/dtos/responses"
	"winterops/stationboard/internal/services"
)

func respondWithSuccess[T any](w http.ResponseWriter, statusCode int, data *T) {
	resp := responses.APIResponse[T]{
		Status:    "success",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	resp := responses.APIResponse[any]{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	_ = json.NewEncoder(w).Encode(resp)
}

// respondWithServiceError maps the store's typed errors onto HTTP
// status codes. Overlap conflicts are an expected outcome and carry
// the conflicting record's station and interval in the message.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	var overlapErr *services.OverlapConflictError

	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &overlapErr):
		respondWithError(w, http.StatusConflict, overlapErr.Error())
	case errors.Is(err, services.ErrNotFound):
		respondWithError(w, http.StatusNotFound, constants.MsgAllocationNotFound)
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
