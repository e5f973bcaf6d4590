package errors

import (
	"encoding/json"
	"net/http"

	"adminconsole/internal/platform/models"
)

// Codes used as the errorSources source when the console itself rejects a
// request (the backend's own errors are passed through untouched).
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeBackend      = "BACKEND_UNAVAILABLE"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeDegraded     = "SYSTEM_DEGRADED"
	ErrCodeRateLimited  = "RATE_LIMITED"
)

// ErrorResponse mirrors the backend error shape {status, data}.
type ErrorResponse struct {
	Status int              `json:"status"`
	Data   models.ErrorBody `json:"data"`
}

func WriteError(w http.ResponseWriter, status int, code, message string, sources []models.ErrorSource) {
	if len(sources) == 0 && code != "" {
		sources = []models.ErrorSource{{Source: code, Message: message}}
	}
	WriteBody(w, status, models.ErrorBody{
		Success:      false,
		Message:      message,
		ErrorSources: sources,
	})
}

// WriteBody writes an error body received from elsewhere (usually the backend).
func WriteBody(w http.ResponseWriter, status int, body models.ErrorBody) {
	if status == 0 {
		status = http.StatusBadGateway
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(ErrorResponse{Status: status, Data: body})
}
