package user

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrValidation   = errors.New("invalid profile input")
	ErrInvalidRole  = errors.New("invalid user role")
)
