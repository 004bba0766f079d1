package errors

import (
	"errors"
	"fmt"
)

// Common error types for the lakehouse client
var (
	// Session errors
	ErrNotAuthenticated = errors.New("session is not authenticated")
	ErrEmptyValue       = errors.New("value must not be empty")

	// Token errors
	ErrMalformedToken = errors.New("malformed token")
	ErrMissingExpiry  = errors.New("token has no expiry claim")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRenewalRejected    = errors.New("session renewal rejected")
	ErrMalformedResponse  = errors.New("malformed response body")
	ErrUnexpectedStatus   = errors.New("unexpected response status")

	// Configuration errors
	ErrMissingBaseURL = errors.New("api base url is required")
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
