package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeBookNotFound      = "BOOK001"
	ErrCodeValidation        = "BOOK002"
	ErrCodeBookAlreadyExists = "BOOK003"
	ErrCodeInternal          = "BOOK004"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrValidation        = errors.New("invalid book input")
	ErrBookAlreadyExists = errors.New("book already exists")
	ErrInternal          = errors.New("book operation failed")
)

type BookError struct {
	Code    string
	Message string
	Err     error
}

func (e *BookError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BookError) Unwrap() error {
	return e.Err
}

func (e *BookError) Is(target error) bool {
	switch e.Code {
	case ErrCodeBookNotFound:
		return target == ErrBookNotFound
	case ErrCodeValidation:
		return target == ErrValidation
	case ErrCodeBookAlreadyExists:
		return target == ErrBookAlreadyExists
	default:
		return target == ErrInternal
	}
}

func NewBookNotFoundError(id string) *BookError {
	return &BookError{
		Code:    ErrCodeBookNotFound,
		Message: fmt.Sprintf("Book %s not found", id),
		Err:     ErrBookNotFound,
	}
}

func NewValidationError(err error) *BookError {
	return &BookError{
		Code:    ErrCodeValidation,
		Message: "Invalid book input",
		Err:     err,
	}
}

func NewBookAlreadyExistsError(id string) *BookError {
	return &BookError{
		Code:    ErrCodeBookAlreadyExists,
		Message: fmt.Sprintf("Book %s already exists", id),
		Err:     ErrBookAlreadyExists,
	}
}

func NewInternalError(err error) *BookError {
	return &BookError{
		Code:    ErrCodeInternal,
		Message: "Book operation failed",
		Err:     err,
	}
}
