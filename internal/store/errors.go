package store

import "errors"

var (
	// validation errors
	ErrInvalidEmail = errors.New("invalid email format")
	ErrWeakPassword = errors.New("password must be at least 6 characters")
	ErrInvalidName  = errors.New("name must be at least 2 characters")
	ErrInvalidDate  = errors.New("date must be formatted as YYYY-MM-DD")

	// conflict errors
	ErrDuplicateEmail = errors.New("email already in use")

	// authentication errors
	ErrNoSuchUser    = errors.New("no account with that email")
	ErrBadCredential = errors.New("password does not match")

	// not-found errors
	ErrUserNotFound = errors.New("user not found")

	// storage medium failure, wraps the underlying cause
	ErrStorageUnavailable = errors.New("storage unavailable")
)
