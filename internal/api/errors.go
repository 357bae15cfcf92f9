// Package api is the single chokepoint for calls to the Meridian backend.
package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries the backend's view of a failed request. Message holds the
// response body text (or the status line when the body was empty); Fields
// holds per-field validation messages when the backend returned them.
type Error struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// UserMessage implements shared.UserSafeMessage support.
func (e *Error) UserMessage() string {
	switch e.Status {
	case http.StatusUnauthorized:
		return "Your session has expired. Please sign in again."
	case http.StatusForbidden:
		return "You do not have permission to perform this action."
	case http.StatusNotFound:
		return "The requested record no longer exists."
	}
	if e.Status >= 500 {
		return "The service is temporarily unavailable. Please try again later."
	}
	return e.Message
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	return isStatus(err, http.StatusUnauthorized)
}

// IsConflict reports whether err is a 409 from the backend.
func IsConflict(err error) bool {
	return isStatus(err, http.StatusConflict)
}

func isStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// FieldErrors extracts per-field validation messages from err, nil when the
// error carries none.
func FieldErrors(err error) map[string]string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}
