package shared

import "errors"

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrReasonRequired indicates a rejection was attempted without a reason.
	ErrReasonRequired = errors.New("rejection reason required")
	// ErrMalformedResponse indicates the backend returned an unusable payload.
	ErrMalformedResponse = errors.New("malformed backend response")
)
