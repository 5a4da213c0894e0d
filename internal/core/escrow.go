package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"shiftpay.service/internal/core/model"
	"shiftpay.service/internal/ports/repository"
)

// EscrowLedger opens the provisional hold when a shift is posted,
// sized from the estimate. The real amounts are not known until the
// worker's clock data exists; settlement rewrites them.
type EscrowLedger struct {
	repo       repository.Repository
	defaultFee float64
	now        func() time.Time
}

// NewEscrowLedger wires the ledger to the data store.
func NewEscrowLedger(repo repository.Repository) *EscrowLedger {
	return &EscrowLedger{
		repo:       repo,
		defaultFee: DefaultFeePercentage,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithDefaultFee overrides the platform fee applied when the input
// names none. Out-of-range values keep the package default.
func (l *EscrowLedger) WithDefaultFee(fee float64) *EscrowLedger {
	if fee > 0 && fee <= 1 {
		l.defaultFee = fee
	}
	return l
}

// OpenHoldInput is the estimate the hold is sized from. EstimatedHours
// is the planned shift duration times the worker count. FeePercentage
// is optional; nil takes the platform default.
type OpenHoldInput struct {
	ShiftID        string
	EmployerID     string
	EstimatedHours float64
	HourlyRate     decimal.Decimal
	FeePercentage  *float64
}

// OpenHold validates the estimate and creates exactly one held payment
// record. Overtime is never estimated at open time. No retries; the
// caller decides what to do on failure.
func (l *EscrowLedger) OpenHold(ctx context.Context, in OpenHoldInput) (*model.EscrowPayment, error) {
	if in.ShiftID == "" {
		return nil, &ValidationError{Field: "shiftId", Reason: "must not be empty"}
	}
	if in.EmployerID == "" {
		return nil, &ValidationError{Field: "employerId", Reason: "must not be empty"}
	}
	if in.EstimatedHours <= 0 {
		return nil, &ValidationError{Field: "estimatedHours", Reason: "must be positive"}
	}
	if !in.HourlyRate.IsPositive() {
		return nil, &ValidationError{Field: "hourlyRate", Reason: "must be positive"}
	}
	feePct := l.defaultFee
	if in.FeePercentage != nil {
		feePct = *in.FeePercentage
	}
	if feePct < 0 || feePct > 1 {
		return nil, &ValidationError{Field: "feePercentage", Reason: "must be between 0 and 1"}
	}

	regularAmount := hoursTimesRate(in.EstimatedHours, in.HourlyRate)
	subtotal := regularAmount
	platformFee := round2(subtotal.Mul(decimal.NewFromFloat(feePct)))
	totalCharged := round2(subtotal.Add(platformFee))

	payment := &model.EscrowPayment{
		ID:             uuid.NewString(),
		ShiftID:        in.ShiftID,
		EmployerID:     in.EmployerID,
		RegularHours:   in.EstimatedHours,
		RegularAmount:  regularAmount,
		OvertimeAmount: decimal.Zero,
		Subtotal:       subtotal,
		FeePercentage:  feePct,
		PlatformFee:    platformFee,
		TotalCharged:   totalCharged,
		Status:         model.PaymentHeld,
		CreatedAt:      l.now(),
	}

	if err := l.repo.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("shift_id", in.ShiftID).
		Str("payment_id", payment.ID).
		Str("total_charged", totalCharged.String()).
		Msg("Escrow hold opened")

	return payment, nil
}
