package common

import (
	"encoding/json"
	"net/http"
)

// ErrorBody represents a consistent error payload returned by the API.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Rejection is the body returned when a pricing request is understood but
// cannot be honoured, such as an unknown discount code.
type Rejection struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError renders an error response using the canonical error shape.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Reject renders {"ok":false,"message":...} with 422.
func Reject(w http.ResponseWriter, message string) {
	JSON(w, http.StatusUnprocessableEntity, Rejection{OK: false, Message: message})
}

// WriteAppError renders an AppError, falling back to a generic 500.
func WriteAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if !asAppError(err, &appErr) {
		JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
}
