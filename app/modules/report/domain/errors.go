package reportdomain

import (
	"errors"
	"fmt"
)

// Parse failure reasons. These are user input errors: the participant is
// expected to resend a corrected message.
var (
	ErrMissingIdentity = errors.New("missing identity tag")
	ErrMissingSteps    = errors.New("missing step count")
)

// ParseError reports why a marked message could not become a Report.
type ParseError struct {
	Reason error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse report: %v", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Reason }

// ReasonLabel is a short metric label for the failure.
func (e *ParseError) ReasonLabel() string {
	switch {
	case errors.Is(e.Reason, ErrMissingIdentity):
		return "missing_identity"
	case errors.Is(e.Reason, ErrMissingSteps):
		return "missing_steps"
	default:
		return "unknown"
	}
}
