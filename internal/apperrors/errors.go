package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientBalance indicates that an expense or transfer would drive a
// cash account below zero.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrInsufficientStock indicates that a stock-out would drive a stock entry
// quantity below zero.
var ErrInsufficientStock = errors.New("insufficient stock quantity")

// ErrConcurrencyConflict indicates that a balance or stock update ran against a
// stale version token. Callers should reload and retry.
var ErrConcurrencyConflict = errors.New("concurrent modification detected")

// ErrInvalidStateTransition indicates an invoice lifecycle violation, such as
// posting an already-posted invoice or voiding a draft.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// ErrAmbiguousReversal indicates that a transfer leg carries no recognizable
// direction marker, so its balance effect cannot be safely undone.
var ErrAmbiguousReversal = errors.New("transfer leg direction is ambiguous, reversal refused")

// ErrPersistence indicates an underlying commit or query failure.
var ErrPersistence = errors.New("persistence failure")

// AppError carries a status code alongside a message and wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
