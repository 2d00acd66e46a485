package api

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/outreach-engine/internal/errors"
	"github.com/outreach-engine/internal/types"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error types.ServiceError `json:"error"`
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: types.ServiceError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// parseJSONBody parses JSON request body.
func parseJSONBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// Common error codes
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// respondServiceError categorizes a service-layer error and writes the
// matching HTTP response. Internal details are never leaked to the client.
func respondServiceError(w http.ResponseWriter, err error) {
	categorized := apperrors.Categorize(err)

	message := categorized.Message
	if categorized.StatusCode >= http.StatusInternalServerError {
		message = "An internal error occurred"
	}

	respondError(w, categorized.StatusCode, categorized.Code, message, categorized.Details)
}
