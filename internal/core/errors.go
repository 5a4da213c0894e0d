package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the settlement and escrow paths. Callers match
// with errors.Is; structured variants below carry context and Unwrap
// to these.
var (
	// ErrTimesheetNotFound is returned when the referenced timesheet
	// does not exist. No state is mutated.
	ErrTimesheetNotFound = errors.New("timesheet not found")

	// ErrShiftNotFound is returned when the timesheet's owning shift
	// does not exist. No state is mutated.
	ErrShiftNotFound = errors.New("shift not found")

	// ErrTimesheetIncomplete is returned when settlement is attempted
	// before the worker clocked out.
	ErrTimesheetIncomplete = errors.New("timesheet has no clock-out time")

	// ErrMissingHourlyRate is returned when the shift carries no
	// positive hourly rate, making amounts underivable.
	ErrMissingHourlyRate = errors.New("shift has no hourly rate")

	// ErrTimesheetExists is returned on clock-in when an open
	// timesheet already exists for the same shift and worker.
	ErrTimesheetExists = errors.New("open timesheet already exists for shift and worker")

	// ErrShiftNotOpen is returned on clock-in against a shift that is
	// not accepting workers (draft, completed or cancelled).
	ErrShiftNotOpen = errors.New("shift is not open for clock-in")

	// ErrUnauthenticated is returned when no caller identity could be
	// resolved for the request.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError rejects bad input before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a pre-write input rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsClientError reports whether the error is the caller's fault and
// should map to a 4xx response rather than a retry.
func IsClientError(err error) bool {
	return IsValidation(err) ||
		errors.Is(err, ErrTimesheetNotFound) ||
		errors.Is(err, ErrShiftNotFound) ||
		errors.Is(err, ErrTimesheetIncomplete) ||
		errors.Is(err, ErrMissingHourlyRate) ||
		errors.Is(err, ErrTimesheetExists) ||
		errors.Is(err, ErrShiftNotOpen)
}
