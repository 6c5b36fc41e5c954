// Package handler contains the HTTP layer: request parsing, input validation,
// and translation of domain errors into status codes. Handlers hold no
// business logic; they call services and format the results.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/deck-hub/internal/apperror"
)

// ErrorResponse is the error shape every endpoint returns:
// {"error": "not_found", "message": "...", "fields": {...}}.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeJSON sends data as a JSON response. Headers and status must go out
// before the body, so encoding failures can only be logged.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error onto an HTTP status. Unknown errors become a
// generic 500 so internal details (SQL, file paths) never reach the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		slog.Error("unhandled internal error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "an internal error occurred",
		})
		return
	}

	status := http.StatusInternalServerError
	errorType := "internal_error"

	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
		errorType = "validation_error"
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
		errorType = "not_found"
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
		errorType = "forbidden"
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
		errorType = "conflict"
	case errors.Is(err, apperror.ErrUpstream):
		status = http.StatusBadGateway
		errorType = "bad_gateway"
	}

	resp := ErrorResponse{
		Error:   errorType,
		Message: appErr.Message,
	}
	if appErr.Field != "" {
		resp.Fields = map[string]string{appErr.Field: appErr.Message}
	}

	writeJSON(w, status, resp)
}
