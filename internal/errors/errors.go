package errors

import "net/http"

// Error is a service-level failure with a stable wire code.
// The code is what clients switch on; Status is the HTTP status it maps to.
type Error struct {
	Status int
	Code   string
}

func (e *Error) Error() string { return e.Code }

func New(status int, code string) *Error {
	return &Error{Status: status, Code: code}
}

// Validation failures. Rejected before any store access.
var (
	ErrMissingFields    = New(http.StatusBadRequest, "missing_fields")
	ErrInvalidDirection = New(http.StatusBadRequest, "invalid_direction")
	ErrInvalidTarget    = New(http.StatusBadRequest, "invalid_target")
	ErrNameRequired     = New(http.StatusBadRequest, "name_required")
	ErrInvalidPayload   = New(http.StatusBadRequest, "invalid_payload")
	ErrUserIDRequired   = New(http.StatusBadRequest, "userId_required")
	ErrBodyRequired     = New(http.StatusBadRequest, "body_required")
)

// Lookup failures. Rejected after a cheap existence check, no partial writes.
var (
	ErrUserNotFound = New(http.StatusNotFound, "user_not_found")
	ErrChatNotFound = New(http.StatusNotFound, "chat_not_found")
)

// Transactional failure. The whole swipe rolled back; safe to retry wholesale.
var ErrSwipeFailed = New(http.StatusInternalServerError, "swipe_failed")
