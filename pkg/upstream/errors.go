package upstream

import (
	"errors"
	"fmt"
)

// Common errors returned by the fetcher.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// FetchError reports that the upstream could not be reached or its response
// could not be read. Non-success HTTP statuses are not FetchErrors.
type FetchError struct {
	URL string
	Op  string // "request", "read"
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("upstream %s %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsUnreachable reports whether err is a transport-level upstream failure.
func IsUnreachable(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}
