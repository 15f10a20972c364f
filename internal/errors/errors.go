package errors

import (
	"errors"
	"fmt"
)

// Common error types for the auth core
var (
	// Validation errors (local, never reach the network)
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Provider exchange errors
	ErrTokenExchange        = errors.New("token exchange failed")
	ErrProfileFetch         = errors.New("profile fetch failed")
	ErrUnknownProviderState = errors.New("unknown provider state")

	// Storage errors
	// ErrStorageCorrupted is internal only: the store clears the
	// affected record and callers proceed as if no session existed.
	ErrStorageCorrupted = errors.New("stored session corrupted")

	// Configuration errors
	ErrMissingConfiguration = errors.New("missing configuration")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
