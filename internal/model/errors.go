package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token related errors
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidToken    = errors.New("invalid or expired token")

	// Todo related errors
	ErrTodoNotFound  = errors.New("todo not found")
	ErrUserReference = errors.New("todo references a missing user")

	// Permission/Access related errors
	ErrForbidden = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
