package guest

import "errors"

var (
	// ErrMissingID is returned when a check-in request carries no code.
	ErrMissingID = errors.New("missing ID")

	// ErrNotFound is returned when no guest matches a scanned code. An
	// expected, user-facing outcome (mistyped or forged code), not a fault.
	ErrNotFound = errors.New("guest not found")

	// ErrDuplicateCode is returned by stores when an insert collides with
	// an existing unique code after retries.
	ErrDuplicateCode = errors.New("duplicate guest code")
)
