package domain

import (
	"errors"
	"fmt"
)

var (
	ErrIntake            = errors.New("booking intake failed")
	ErrDuplicateEvent    = errors.New("event of this type already exists on this date")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrDoctorNotFound    = errors.New("doctor not found")
)

// ValidationError names the first input field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
