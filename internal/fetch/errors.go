package fetch

import (
	"errors"
	"fmt"
)

// NetworkError reports a transient fetch failure: a connection problem,
// a timeout, or a non-2xx HTTP status. The check executor retries these
// up to its attempt bound; everything downstream of a successful fetch
// is permanent for the cycle.
type NetworkError struct {
	// URL is the request that failed.
	URL string

	// StatusCode is the HTTP status when the server answered, 0 when the
	// failure happened before a response arrived.
	StatusCode int

	// Err is the underlying transport error, nil for status failures.
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is (or wraps) a *NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
