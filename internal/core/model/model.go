package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShiftStatus defines the lifecycle of a posted shift.
// Transitions move forward only; cancelled is terminal from any
// non-completed state.
type ShiftStatus string

const (
	ShiftDraft      ShiftStatus = "draft"
	ShiftOpen       ShiftStatus = "open"
	ShiftInProgress ShiftStatus = "in_progress"
	ShiftCompleted  ShiftStatus = "completed"
	ShiftCancelled  ShiftStatus = "cancelled"
)

// PaymentStatus defines the escrow lifecycle of a shift's payment.
// released_pending_shift is the explicit in-between state of the
// two-step settlement write: funds released, shift completion still
// outstanding. The reconciliation worker promotes it to released.
type PaymentStatus string

const (
	PaymentHeld                 PaymentStatus = "held"
	PaymentReleasedPendingShift PaymentStatus = "released_pending_shift"
	PaymentReleased             PaymentStatus = "released"
	PaymentRefunded             PaymentStatus = "refunded"
)

// Terminal reports whether the payment left the held state for good.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentReleased || s == PaymentReleasedPendingShift || s == PaymentRefunded
}

// Shift is one posted unit of work, owned by an employer.
type Shift struct {
	ID                 string          `json:"id"`
	EmployerID         string          `json:"employerId"`
	Title              string          `json:"title"`
	Location           string          `json:"location"`
	ScheduledDate      time.Time       `json:"scheduledDate"`
	StartTime          time.Time       `json:"startTime"`
	EndTime            time.Time       `json:"endTime"`
	HourlyRate         decimal.Decimal `json:"hourlyRate"`
	WorkerCount        int             `json:"workerCount"`
	OvertimeMultiplier float64         `json:"overtimeMultiplier"`
	Status             ShiftStatus     `json:"status"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// Timesheet records one worker's actual attendance for one shift.
// ClockOutTime stays nil until the worker clocks out; BreakMinutes
// stays nil when no break was recorded, which triggers the auto-break
// policy at settlement. Exactly one open timesheet may exist per
// (shift, worker), enforced by the store.
type Timesheet struct {
	ID                string     `json:"id"`
	ShiftID           string     `json:"shiftId"`
	WorkerID          string     `json:"workerId"`
	ClockInTime       time.Time  `json:"clockInTime"`
	ClockOutTime      *time.Time `json:"clockOutTime,omitempty"`
	BreakMinutes      *int       `json:"breakMinutes,omitempty"`
	EmployerConfirmed bool       `json:"employerConfirmed"`
	WorkerConfirmed   bool       `json:"workerConfirmed"`
	Disputed          bool       `json:"disputed"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// EscrowPayment is a financial hold against a shift. Created once at
// posting time from the estimate (worker unassigned, payout unknown);
// settlement rewrites the amounts from actual clock data and releases
// it. The platform fee is billed on top of the worker's pay, never
// deducted from it, so WorkerPayout equals Subtotal.
type EscrowPayment struct {
	ID                string           `json:"id"`
	ShiftID           string           `json:"shiftId"`
	EmployerID        string           `json:"employerId"`
	WorkerID          *string          `json:"workerId,omitempty"`
	TimesheetID       *string          `json:"timesheetId,omitempty"`
	RegularHours      float64          `json:"regularHours"`
	OvertimeHours     float64          `json:"overtimeHours"`
	RegularAmount     decimal.Decimal  `json:"regularAmount"`
	OvertimeAmount    decimal.Decimal  `json:"overtimeAmount"`
	Subtotal          decimal.Decimal  `json:"subtotal"`
	FeePercentage     float64          `json:"feePercentage"`
	PlatformFee       decimal.Decimal  `json:"platformFee"`
	TotalCharged      decimal.Decimal  `json:"totalCharged"`
	WorkerPayout      *decimal.Decimal `json:"workerPayout,omitempty"`
	GatewayRef        string           `json:"gatewayRef,omitempty"`
	Status            PaymentStatus    `json:"status"`
	PaymentCapturedAt *time.Time       `json:"paymentCapturedAt,omitempty"`
	ReleasedAt        *time.Time       `json:"releasedAt,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
}
