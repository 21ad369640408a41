package extract

import "errors"

// Extraction errors.
// Both are permanent for the fetch cycle: re-fetching an unchanged page
// will not change the markup shape, so the check executor must not retry
// them. Callers use errors.Is to map them onto model.ErrorKind.
var (
	// ErrNoLocatorMatched is returned when no structural locator matched
	// and the heuristic fallback found nothing either.
	ErrNoLocatorMatched = errors.New("no locator matched the page")

	// ErrUnparsableText is returned when located price text contains no
	// parsable numeric token.
	ErrUnparsableText = errors.New("text contains no parsable price")
)
