package config

import "errors"

// Configuration validation errors.
// Returned by Config.Validate() and the watch list loader.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to
// use errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrInvalidInterval is returned when the check interval is not
	// positive. A zero interval would poll in a tight loop.
	ErrInvalidInterval = errors.New("invalid check interval: must be positive")

	// ErrInvalidMaxAttempts is returned when the attempt bound is not
	// positive. At least one fetch attempt is required per check.
	ErrInvalidMaxAttempts = errors.New("invalid max attempts: must be positive")

	// ErrInvalidRetryDelay is returned when the retry delay is
	// negative. Use 0 for immediate retries.
	ErrInvalidRetryDelay = errors.New("invalid retry delay: must be non-negative")

	// ErrInvalidTimeout is returned when the fetch timeout is not
	// positive. A zero timeout would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidRequestDelay is returned when the request delay is
	// negative. Use 0 for no spacing between requests.
	ErrInvalidRequestDelay = errors.New("invalid request delay: must be non-negative")

	// ErrInvalidConcurrency is returned when the concurrency bound is
	// not positive. A bound of zero would mean no checks run.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is
	// negative. Use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at
	// a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoProducts is returned when the watch list contains no
	// products.
	ErrNoProducts = errors.New("watch list contains no products")
)
