package repository

import (
	"context"
	"errors"
	"time"

	"shiftpay.service/internal/core/model"
)

// Store-level failures, kept distinct so the engine can choose
// between idempotent-skip and propagate-error.
var (
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict means a uniqueness constraint rejected the write,
	// e.g. a second open timesheet or a second active payment for the
	// same shift.
	ErrConflict = errors.New("constraint violation")
)

// PaymentRelease carries the settlement-time values written onto the
// held payment when it is released.
type PaymentRelease struct {
	TimesheetID string
	WorkerID    string
	Payment     model.EscrowPayment
	CapturedAt  time.Time
	ReleasedAt  time.Time
}

// Repository is the persistence contract of the settlement core.
type Repository interface {
	GetShift(ctx context.Context, id string) (*model.Shift, error)
	// TransitionShift moves the shift between two statuses as a single
	// conditional write. It reports false with no error when the shift
	// exists but is no longer in the from status.
	TransitionShift(ctx context.Context, id string, from, to model.ShiftStatus) (bool, error)
	// CompleteShift marks the shift completed unless it already is, or
	// was cancelled. Reports whether this call performed the update.
	CompleteShift(ctx context.Context, id string) (bool, error)

	GetTimesheet(ctx context.Context, id string) (*model.Timesheet, error)
	CreateTimesheet(ctx context.Context, ts *model.Timesheet) error
	SetClockOut(ctx context.Context, id string, clockOut time.Time, breakMinutes *int) error

	CreatePayment(ctx context.Context, p *model.EscrowPayment) error
	GetPaymentByShift(ctx context.Context, shiftID string) (*model.EscrowPayment, error)
	// ReleaseHold conditionally rewrites the held payment for the
	// shift with the settled amounts. It reports false with no error
	// when no held payment remains, which the engine treats as an
	// already-released settlement.
	ReleaseHold(ctx context.Context, shiftID string, rel PaymentRelease) (bool, error)
	// PromotePayment moves a payment between escrow statuses as a
	// conditional write, used by the reconciler to finish the
	// released_pending_shift to released transition.
	PromotePayment(ctx context.Context, shiftID string, from, to model.PaymentStatus) (bool, error)
}
