// Package httputil centralizes JSON response writing so every handler emits
// the same envelopes.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "finrisk/pkg/domain-errors"
)

// ErrorResponse is the failure envelope returned to callers. Details is
// populated only for validation failures.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId"`
	Details       any    `json:"details,omitempty"`
}

// detailer is implemented by errors that carry caller-visible detail entries
// (field violations). Kept as an interface so this package does not import the
// validation layer.
type detailer interface {
	ErrorDetails() any
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a coded error into the failure envelope. Unclassified
// errors become INTERNAL_ERROR with a generic message; internals never leak.
func WriteError(w http.ResponseWriter, correlationID string, err error) {
	code := dErrors.CodeOf(err)

	message := "An unexpected error occurred"
	var de *dErrors.Error
	if errors.As(err, &de) && de.Code != dErrors.CodeInternal {
		message = de.Message
	}

	resp := ErrorResponse{
		Error:         string(code),
		Message:       message,
		CorrelationID: correlationID,
	}
	var d detailer
	if errors.As(err, &d) {
		resp.Details = d.ErrorDetails()
	}

	WriteJSON(w, StatusFor(code), resp)
}

// StatusFor maps an error code to the HTTP status returned to callers.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeAuthentication:
		return http.StatusBadGateway
	case dErrors.CodeRateLimit:
		return http.StatusServiceUnavailable
	case dErrors.CodeUpstream:
		return http.StatusServiceUnavailable
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
