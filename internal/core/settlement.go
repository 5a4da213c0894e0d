package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"shiftpay.service/internal/core/model"
	"shiftpay.service/internal/gateway"
	"shiftpay.service/internal/ports/messaging"
	"shiftpay.service/internal/ports/repository"
)

// SettlementEngine converts a hold into a final, amount-accurate,
// released payment once real clock data exists, and reconciles the
// shift's status with the payment lifecycle.
type SettlementEngine struct {
	repo       repository.Repository
	gw         gateway.PaymentGateway
	producer   messaging.Producer
	defaultFee float64
	now        func() time.Time
}

// NewSettlementEngine wires the engine to the store, the payment
// gateway strategy and the event producer.
func NewSettlementEngine(repo repository.Repository, gw gateway.PaymentGateway, p messaging.Producer) *SettlementEngine {
	return &SettlementEngine{
		repo:       repo,
		gw:         gw,
		producer:   p,
		defaultFee: DefaultFeePercentage,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithDefaultFee overrides the platform fee applied when no hold
// carries one. Out-of-range values keep the package default.
func (e *SettlementEngine) WithDefaultFee(fee float64) *SettlementEngine {
	if fee > 0 && fee <= 1 {
		e.defaultFee = fee
	}
	return e
}

// SettleResult reports the settled payment and whether the shift's
// status write landed. ShiftUpdated false means the payment succeeded
// but the shift completion did not; the reconciliation worker will
// finish it.
type SettleResult struct {
	Payment      *model.EscrowPayment `json:"payment"`
	ShiftUpdated bool                 `json:"shiftUpdated"`
}

// Settle re-derives the actual worked time, computes the real amounts,
// releases the matching escrow record and completes the owning shift.
//
// Settling an already-settled timesheet is a no-op success returning
// the prior result; the guard is checked against server-held state
// immediately before the mutating writes, and the store's uniqueness
// constraint backs it up under concurrent callers. All computations
// are side-effect-free until the release write, so any rejection
// guarantees zero state mutation.
func (e *SettlementEngine) Settle(ctx context.Context, timesheetID string) (*SettleResult, error) {
	ts, err := e.repo.GetTimesheet(ctx, timesheetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTimesheetNotFound
		}
		return nil, fmt.Errorf("failed to load timesheet: %w", err)
	}
	if ts.ClockOutTime == nil {
		return nil, ErrTimesheetIncomplete
	}

	shift, err := e.repo.GetShift(ctx, ts.ShiftID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to load shift: %w", err)
	}
	if !shift.HourlyRate.IsPositive() {
		return nil, ErrMissingHourlyRate
	}

	// Idempotency guard, read against server state. A terminal payment
	// or a completed shift means a prior settlement won; return its
	// result instead of paying twice.
	hold, err := e.repo.GetPaymentByShift(ctx, shift.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to load escrow payment: %w", err)
	}
	if hold != nil && hold.Status == model.PaymentReleased {
		return &SettleResult{Payment: hold, ShiftUpdated: true}, nil
	}
	if hold != nil && hold.Status == model.PaymentReleasedPendingShift {
		// A prior settlement released the funds but never finished the
		// shift update; this retry completes it without paying again.
		return e.finishSettlement(ctx, ts, hold, false)
	}
	if shift.Status == model.ShiftCompleted {
		if hold == nil {
			return nil, fmt.Errorf("shift %s completed but has no payment record", shift.ID)
		}
		return &SettleResult{Payment: hold, ShiftUpdated: true}, nil
	}

	feePct := e.defaultFee
	if hold != nil {
		feePct = hold.FeePercentage
	}

	hours := CalculateHours(ts.ClockInTime, *ts.ClockOutTime, ts.BreakMinutes, HoursOptions{})

	multiplier := shift.OvertimeMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	regularAmount := hoursTimesRate(hours.RegularHours, shift.HourlyRate)
	overtimeAmount := hoursTimesRate(hours.OvertimeHours*multiplier, shift.HourlyRate)
	subtotal := round2(regularAmount.Add(overtimeAmount))
	platformFee := round2(subtotal.Mul(decimal.NewFromFloat(feePct)))
	totalCharged := round2(subtotal.Add(platformFee))
	// The fee is billed on top of the worker's pay, never deducted
	// from it.
	workerPayout := subtotal

	gatewayRef, err := e.gw.Release(ctx, gateway.ReleaseRequest{
		ShiftID:      shift.ID,
		EmployerID:   shift.EmployerID,
		WorkerID:     ts.WorkerID,
		TotalCharged: totalCharged,
		WorkerPayout: workerPayout,
	})
	if err != nil {
		return nil, fmt.Errorf("payment gateway release failed: %w", err)
	}

	now := e.now()
	settled := model.EscrowPayment{
		ShiftID:           shift.ID,
		EmployerID:        shift.EmployerID,
		WorkerID:          &ts.WorkerID,
		TimesheetID:       &ts.ID,
		RegularHours:      hours.RegularHours,
		OvertimeHours:     hours.OvertimeHours,
		RegularAmount:     regularAmount,
		OvertimeAmount:    overtimeAmount,
		Subtotal:          subtotal,
		FeePercentage:     feePct,
		PlatformFee:       platformFee,
		TotalCharged:      totalCharged,
		WorkerPayout:      &workerPayout,
		GatewayRef:        gatewayRef,
		Status:            model.PaymentReleasedPendingShift,
		PaymentCapturedAt: &now,
		ReleasedAt:        &now,
	}

	if hold == nil {
		settled.ID = uuid.NewString()
		settled.CreatedAt = now
		if err := e.repo.CreatePayment(ctx, &settled); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				// A concurrent settlement inserted first; its result
				// stands.
				return e.reloadSettled(ctx, ts, shift.ID)
			}
			return nil, fmt.Errorf("failed to create released payment: %w", err)
		}
	} else {
		settled.ID = hold.ID
		settled.CreatedAt = hold.CreatedAt
		released, err := e.repo.ReleaseHold(ctx, shift.ID, repository.PaymentRelease{
			TimesheetID: ts.ID,
			WorkerID:    ts.WorkerID,
			Payment:     settled,
			CapturedAt:  now,
			ReleasedAt:  now,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to release escrow hold: %w", err)
		}
		if !released {
			// The hold left the held state between the guard read and
			// the write; a concurrent settlement won.
			return e.reloadSettled(ctx, ts, shift.ID)
		}
	}

	log.Ctx(ctx).Info().
		Str("shift_id", shift.ID).
		Str("timesheet_id", ts.ID).
		Str("worker_payout", workerPayout.String()).
		Str("total_charged", totalCharged.String()).
		Msg("Escrow payment released")

	return e.finishSettlement(ctx, ts, &settled, true)
}

// finishSettlement runs the second half of the two-step write:
// complete the shift, then promote the payment out of the in-between
// state. The payment release is never rolled back; failures here are
// reported through ShiftUpdated and handed to the reconciliation queue.
func (e *SettlementEngine) finishSettlement(ctx context.Context, ts *model.Timesheet, payment *model.EscrowPayment, notify bool) (*SettleResult, error) {
	shiftUpdated := true
	if _, err := e.repo.CompleteShift(ctx, payment.ShiftID); err != nil {
		// Money moved but the shift record did not. Operational
		// follow-up, not a rollback.
		log.Ctx(ctx).Error().Err(err).
			Str("shift_id", payment.ShiftID).
			Msg("Payment released but shift completion failed; queued for reconciliation")
		shiftUpdated = false
	}

	if shiftUpdated && payment.Status == model.PaymentReleasedPendingShift {
		promoted, err := e.repo.PromotePayment(ctx, payment.ShiftID, model.PaymentReleasedPendingShift, model.PaymentReleased)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).
				Str("shift_id", payment.ShiftID).
				Msg("Failed to promote payment to released; queued for reconciliation")
			shiftUpdated = false
		} else if promoted {
			payment.Status = model.PaymentReleased
		}
	}

	if !shiftUpdated {
		if err := e.producer.PublishSettlement(ctx, messaging.SettlementEvent{
			ShiftID:     payment.ShiftID,
			TimesheetID: ts.ID,
			WorkerID:    ts.WorkerID,
			OccurredAt:  e.now(),
		}); err != nil {
			log.Ctx(ctx).Error().Err(err).
				Str("shift_id", payment.ShiftID).
				Msg("Failed to queue settlement reconciliation event")
		}
	}

	if notify {
		e.notifyParties(ctx, payment)
	}

	return &SettleResult{Payment: payment, ShiftUpdated: shiftUpdated}, nil
}

// reloadSettled returns the payment written by a concurrent settlement
// as this call's own success.
func (e *SettlementEngine) reloadSettled(ctx context.Context, ts *model.Timesheet, shiftID string) (*SettleResult, error) {
	payment, err := e.repo.GetPaymentByShift(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload settled payment: %w", err)
	}
	return e.finishSettlement(ctx, ts, payment, false)
}

// notifyParties appends the settlement notifications to the outbox
// queue. Best effort: failures are logged and swallowed, never rolled
// into the settlement outcome.
func (e *SettlementEngine) notifyParties(ctx context.Context, payment *model.EscrowPayment) {
	now := e.now()

	events := []messaging.NotificationEvent{
		{
			RecipientID: payment.EmployerID,
			Category:    messaging.CategoryPaymentReleased,
			Title:       "Payment released",
			Body:        fmt.Sprintf("Your escrow payment of $%s has been released.", payment.TotalCharged.StringFixed(2)),
			Link:        "/shifts/" + payment.ShiftID + "/payment",
			OccurredAt:  now,
		},
	}
	if payment.WorkerID != nil && payment.WorkerPayout != nil {
		events = append(events, messaging.NotificationEvent{
			RecipientID: *payment.WorkerID,
			Category:    messaging.CategoryWorkerPaid,
			Title:       "You got paid",
			Body:        fmt.Sprintf("You were paid $%s for your shift.", payment.WorkerPayout.StringFixed(2)),
			Link:        "/shifts/" + payment.ShiftID + "/payment",
			OccurredAt:  now,
		})
	}

	for _, ev := range events {
		if err := e.producer.PublishNotification(ctx, ev); err != nil {
			log.Ctx(ctx).Warn().Err(err).
				Str("recipient_id", ev.RecipientID).
				Str("category", ev.Category).
				Msg("Failed to queue settlement notification")
		}
	}
}
