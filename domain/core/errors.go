package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Fatal to the individual call
	ErrInvalidDirection = errors.New("direction must be \"up\" or \"down\"")

	// Expected "no result" outcomes. Callers treat these as absence,
	// not as faults: one location failing to produce a result must not
	// stop analysis of the others.
	ErrInsufficientData   = errors.New("insufficient data for analysis")
	ErrNoCommonTimestamps = errors.New("no common timestamps between series")
	ErrNoShipData         = errors.New("no ship schedule data")
	ErrNoPresenceOverlap  = errors.New("ship visits do not overlap temperature range")

	// Lookup errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: analysis run", ErrNotFound)
)

// NewValidationError reports an invalid argument with context.
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// IsAbsent reports whether err represents an expected empty outcome rather
// than a fault. Reporting layers surface these as "no result" to the user.
func IsAbsent(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrNoCommonTimestamps) ||
		errors.Is(err, ErrNoShipData) ||
		errors.Is(err, ErrNoPresenceOverlap)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
