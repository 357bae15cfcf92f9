// Package httpx provides JSON request and response helpers in the wire
// shape the Meridian backend speaks.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the error envelope returned on every non-2xx response.
// Errors maps field names to messages when the failure is field-scoped.
type ErrorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends the standard error envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Message: message})
}

// FieldError sends the error envelope with a single field-scoped message.
func FieldError(w http.ResponseWriter, status int, message, field, fieldMessage string) {
	JSON(w, status, ErrorBody{Message: message, Errors: map[string]string{field: fieldMessage}})
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
