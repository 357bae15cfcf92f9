package shared

import "errors"

// userMessenger is implemented by errors that carry a message safe to show
// to the operator.
type userMessenger interface {
	UserMessage() string
}

// UserSafeMessage converts an error into a string suitable for rendering.
// Unknown errors collapse to a generic message so internals never leak into
// the page.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	var um userMessenger
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrReasonRequired):
		return "A rejection reason is required"
	}
	return "Something went wrong. Please try again."
}
