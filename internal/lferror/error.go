package lferror

import (
	"errors"
	"net/http"
)

// Error kinds.
const (
	KindNotFound         = "not-found"
	KindInvalidState     = "invalid-state"
	KindUnauthorized     = "unauthorized"
	KindInvalid          = "invalid"
	KindStoreReadFailed  = "store-read-failed"
	KindStoreWriteFailed = "store-write-failed"
)

type (
	// An LFError represents the error format that can be rendered by the server.
	LFError struct {
		HTTPCode   int    `json:"-"`
		Kind       string `json:"-"`
		FieldError err    `json:"error"`
		cause      error
	}

	err struct {
		Tag     string `json:"tag,omitempty"`
		Message string `json:"message"`
	}
)

// Workflow errors.
var (
	ErrItemNotFound          = NewWithKind(KindNotFound, http.StatusNotFound, "item-not-found", "No such item.")
	ErrClaimNotFound         = NewWithKind(KindNotFound, http.StatusNotFound, "claim-not-found", "No such claim.")
	ErrNotificationNotFound  = NewWithKind(KindNotFound, http.StatusNotFound, "notification-not-found", "No such notification.")
	ErrAlreadyClaimed        = NewWithKind(KindInvalidState, http.StatusConflict, "already-claimed", "This item has already been claimed.")
	ErrClaimInProgress       = NewWithKind(KindInvalidState, http.StatusConflict, "claim-in-progress", "Another user already has a claim in process for this item.")
	ErrClaimAlreadyProcessed = NewWithKind(KindInvalidState, http.StatusConflict, "claim-already-processed", "This claim has already been processed.")
	ErrItemAlreadyFound      = NewWithKind(KindInvalidState, http.StatusConflict, "item-already-found", "This item can not be marked as found.")
	ErrUnauthorized          = NewWithKind(KindUnauthorized, http.StatusUnauthorized, "invalid-auth", "Invalid login credentials.")
	ErrAdminRequired         = NewWithKind(KindUnauthorized, http.StatusForbidden, "admin-required", "This action is restricted to administrators.")
	ErrStoreReadFailed       = NewWithKind(KindStoreReadFailed, http.StatusServiceUnavailable, "store-read-failed", "The store could not be read, please try again.")
	ErrStoreWriteFailed      = NewWithKind(KindStoreWriteFailed, http.StatusServiceUnavailable, "store-write-failed", "The store could not be updated, please try again.")
)

// StatusCode returns the HTTP status code.
func StatusCode(err error) int {
	var lferr *LFError
	if errors.As(err, &lferr) {
		return lferr.HTTPCode
	}
	return http.StatusInternalServerError
}

// New returns a new LFError with the given message.
func New(message string) *LFError {
	return &LFError{Kind: KindInvalid, HTTPCode: http.StatusBadRequest, FieldError: err{Message: message}}
}

// NewWithTagCode returns a new LFError with the given code, tag and message.
func NewWithTagCode(code int, tag, message string) *LFError {
	return &LFError{Kind: KindInvalid, HTTPCode: code, FieldError: err{Tag: tag, Message: message}}
}

// NewWithKind returns a new LFError of the given kind.
func NewWithKind(kind string, code int, tag, message string) *LFError {
	return &LFError{Kind: kind, HTTPCode: code, FieldError: err{Tag: tag, Message: message}}
}

// Invalid returns an invalid-params error with the given message.
func Invalid(message string) *LFError {
	return NewWithTagCode(http.StatusUnprocessableEntity, "invalid-params", message)
}

// StoreRead wraps a storage read failure.
func StoreRead(cause error) error {
	return ErrStoreReadFailed.Wrap(cause)
}

// StoreWrite wraps a storage write failure.
func StoreWrite(cause error) error {
	return ErrStoreWriteFailed.Wrap(cause)
}

// Wrap returns a copy of the error carrying the given cause.
func (e *LFError) Wrap(cause error) *LFError {
	c := *e
	c.cause = cause
	return &c
}

// Tag returns the machine readable tag of the error.
func (e *LFError) Tag() string {
	return e.FieldError.Tag
}

// Error implements error interface.
func (e *LFError) Error() string {
	if e.cause != nil {
		return e.FieldError.Message + ": " + e.cause.Error()
	}
	return e.FieldError.Message
}

// Unwrap returns the underlying cause.
func (e *LFError) Unwrap() error {
	return e.cause
}

// Is reports whether target is an LFError with the same tag.
func (e *LFError) Is(target error) bool {
	t, ok := target.(*LFError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.FieldError.Tag == e.FieldError.Tag
}

// IsKind returns true if err is an LFError of the given kind.
func IsKind(err error, kind string) bool {
	var lferr *LFError
	return errors.As(err, &lferr) && lferr.Kind == kind
}

// TagOf returns the tag of err, or an empty string if err is not an LFError.
func TagOf(err error) string {
	var lferr *LFError
	if errors.As(err, &lferr) {
		return lferr.Tag()
	}
	return ""
}
