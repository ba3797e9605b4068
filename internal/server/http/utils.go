package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rzbill/pagelog/internal/ingest"
	"github.com/rzbill/pagelog/internal/pagewriter"
)

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	_ = json.NewEncoder(w).Encode(data)
}

// statusFor maps ingest errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ingest.ErrEmpty):
		return http.StatusBadRequest
	case errors.Is(err, ingest.ErrFiltered):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pagewriter.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
