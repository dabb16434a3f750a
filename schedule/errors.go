package schedule

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrHoursOutOfRange is returned when hours fall outside [0, 8].
	// Rejected before any write; the caches stay untouched.
	ErrHoursOutOfRange = errors.New("hours must be between 0 and 8")

	// ErrInvalidIncrement is returned when hours are not a multiple of 0.5.
	ErrInvalidIncrement = errors.New("hours must be in increments of 0.5")

	// ErrInvalidMonth is returned when a month is outside 1-12 or a year
	// is not a 4-digit Gregorian year.
	ErrInvalidMonth = errors.New("invalid month or year")

	// ErrInvalidDay is returned when a day is not a YYYY-MM-DD date.
	ErrInvalidDay = errors.New("invalid date")

	// ErrPersonNotFound is returned when a referenced person doesn't exist.
	ErrPersonNotFound = errors.New("person not found")

	// ErrProjectNotFound is returned when a referenced project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
)

// IsValidationError reports whether the error is a client-input violation
// rather than a backing-store failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrHoursOutOfRange) ||
		errors.Is(err, ErrInvalidIncrement) ||
		errors.Is(err, ErrInvalidMonth) ||
		errors.Is(err, ErrInvalidDay)
}
