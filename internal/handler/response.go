package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/birthday-board/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
// Every error body has the same shape, whatever the status code, so clients
// always know what fields to expect.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable type (e.g. "not_found")
	Message string `json:"message"` // human-readable description
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be written before the body — once Encode starts
// writing, any header change is silently ignored.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent — all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends it.
//
// This is the only place the error taxonomy meets HTTP. The service layer
// returns apperror sentinels; errors.Is walks the wrap chain (AppError
// unwraps to both its sentinel and its cause) and picks the status:
//
//	validation      → 400    unauthenticated → 401
//	not found       → 404    upstream timeout → 504
//	everything else → 500
//
// Upstream auth failures deliberately map to a generic message — the
// provider's error payload can leak internals and never reaches the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError

	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"
		message := appErr.Message

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthenticated):
			status = http.StatusUnauthorized
			errorType = "unauthenticated"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrUpstreamTimeout):
			status = http.StatusGatewayTimeout
			errorType = "upstream_timeout"
			message = "upstream service timed out"
		case errors.Is(err, apperror.ErrUpstreamAuth):
			errorType = "authentication_failed"
			message = "authentication failed"
		case errors.Is(err, apperror.ErrSyncFailed):
			errorType = "sync_failed"
			message = "failed to sync contacts"
		case errors.Is(err, apperror.ErrPersistence):
			errorType = "storage_error"
			message = "storage operation failed"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: message,
		})
		return
	}

	// Unknown error — generic 500. The raw message might contain SQL or
	// upstream payloads; it stays in the logs.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
