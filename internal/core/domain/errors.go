package domain

import "errors"

var (
	// ErrInvalidCredentials is returned when an email/password pair does not
	// match a directory entry. It never says which half was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrNotAuthenticated   = errors.New("user not authenticated")
	ErrStorageUnavailable = errors.New("session storage unavailable")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidInput       = errors.New("invalid input")
	// ErrBusy is returned when a mutating session operation is started while
	// another one is still in flight.
	ErrBusy = errors.New("session operation already in progress")
	// ErrUserNotFound is internal to directory implementations; the validator
	// folds it into ErrInvalidCredentials before it reaches a caller.
	ErrUserNotFound = errors.New("user not found")
)
