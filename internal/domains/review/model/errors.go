package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeReviewNotFound     = "REV001"
	ErrCodeBookNotFound       = "REV002"
	ErrCodeValidation         = "REV003"
	ErrCodePermissionDenied   = "REV004"
	ErrCodeConflict           = "REV005"
	ErrCodeTransactionFailure = "REV006"
	ErrCodeRetryExhausted     = "REV007"
)

// Errors
var (
	ErrReviewNotFound        = errors.New("review not found")
	ErrBookNotFound          = errors.New("book not found")
	ErrValidation            = errors.New("invalid review input")
	ErrPermissionDenied      = errors.New("not allowed to modify this review")
	ErrConflict              = errors.New("review already exists")
	ErrTransactionFailure    = errors.New("review transaction failed")
	ErrRetryExhausted        = errors.New("review transaction retries exhausted")
	ErrInconsistentAggregate = errors.New("book aggregate does not match its reviews")
)

// ReviewError custom error type
type ReviewError struct {
	Code    string
	Message string
	Err     error
}

func (e *ReviewError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ReviewError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind, so errors.Is works whatever
// cause is wrapped in Err.
func (e *ReviewError) Is(target error) bool {
	return target == e.kind()
}

func (e *ReviewError) kind() error {
	switch e.Code {
	case ErrCodeReviewNotFound:
		return ErrReviewNotFound
	case ErrCodeBookNotFound:
		return ErrBookNotFound
	case ErrCodeValidation:
		return ErrValidation
	case ErrCodePermissionDenied:
		return ErrPermissionDenied
	case ErrCodeConflict:
		return ErrConflict
	case ErrCodeRetryExhausted:
		return ErrRetryExhausted
	default:
		return ErrTransactionFailure
	}
}

// Error constructors
func NewReviewNotFoundError() *ReviewError {
	return &ReviewError{
		Code:    ErrCodeReviewNotFound,
		Message: "Review not found",
		Err:     ErrReviewNotFound,
	}
}

func NewBookNotFoundError(bookID string) *ReviewError {
	return &ReviewError{
		Code:    ErrCodeBookNotFound,
		Message: fmt.Sprintf("Book %s not found", bookID),
		Err:     ErrBookNotFound,
	}
}

func NewValidationError(err error) *ReviewError {
	return &ReviewError{
		Code:    ErrCodeValidation,
		Message: "Invalid review input",
		Err:     err,
	}
}

func NewPermissionDeniedError(message string) *ReviewError {
	return &ReviewError{
		Code:    ErrCodePermissionDenied,
		Message: message,
		Err:     ErrPermissionDenied,
	}
}

func NewConflictError() *ReviewError {
	return &ReviewError{
		Code:    ErrCodeConflict,
		Message: "Review already exists",
		Err:     ErrConflict,
	}
}

func NewTransactionFailureError(err error) *ReviewError {
	return &ReviewError{
		Code:    ErrCodeTransactionFailure,
		Message: "Review transaction failed",
		Err:     err,
	}
}

func NewRetryExhaustedError(err error) *ReviewError {
	return &ReviewError{
		Code:    ErrCodeRetryExhausted,
		Message: "Review transaction retries exhausted",
		Err:     err,
	}
}
