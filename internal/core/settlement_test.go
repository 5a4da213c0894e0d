package core_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftpay.service/internal/core"
	"shiftpay.service/internal/core/model"
	"shiftpay.service/internal/ports/messaging"
)

// deq asserts decimal equality against a literal amount.
func deq(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

type settleFixture struct {
	repo     *fakeRepo
	gw       *fakeGateway
	producer *fakeProducer
	engine   *core.SettlementEngine
}

// newSettleFixture seeds a shift in progress with a confirmed-worthy
// timesheet: $15/h, 1.5x overtime, 08:00 to 17:30 with an explicit
// zero break (9.5 billable hours).
func newSettleFixture(t *testing.T) *settleFixture {
	repo := newFakeRepo()

	repo.shifts["shift-1"] = &model.Shift{
		ID:                 "shift-1",
		EmployerID:         "emp-1",
		Title:              "Warehouse pick shift",
		HourlyRate:         decimal.RequireFromString("15"),
		WorkerCount:        1,
		OvertimeMultiplier: 1.5,
		Status:             model.ShiftInProgress,
	}

	clockIn := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	clockOut := clockIn.Add(9*time.Hour + 30*time.Minute)
	zeroBreak := 0
	repo.timesheets["ts-1"] = &model.Timesheet{
		ID:           "ts-1",
		ShiftID:      "shift-1",
		WorkerID:     "wrk-1",
		ClockInTime:  clockIn,
		ClockOutTime: &clockOut,
		BreakMinutes: &zeroBreak,
	}

	gw := &fakeGateway{}
	producer := &fakeProducer{}
	return &settleFixture{
		repo:     repo,
		gw:       gw,
		producer: producer,
		engine:   core.NewSettlementEngine(repo, gw, producer),
	}
}

func (f *settleFixture) withHold(t *testing.T) *settleFixture {
	ledger := core.NewEscrowLedger(f.repo)
	_, err := ledger.OpenHold(t.Context(), core.OpenHoldInput{
		ShiftID:        "shift-1",
		EmployerID:     "emp-1",
		EstimatedHours: 8,
		HourlyRate:     decimal.RequireFromString("15"),
	})
	require.NoError(t, err)
	return f
}

func TestSettle_EndToEnd(t *testing.T) {
	f := newSettleFixture(t).withHold(t)

	result, err := f.engine.Settle(t.Context(), "ts-1")
	require.NoError(t, err)
	require.NotNil(t, result.Payment)
	assert.True(t, result.ShiftUpdated)

	p := result.Payment
	assert.InDelta(t, 8.0, p.RegularHours, 0.0001)
	assert.InDelta(t, 1.5, p.OvertimeHours, 0.0001)
	deq(t, "120.00", p.RegularAmount)
	deq(t, "33.75", p.OvertimeAmount)
	deq(t, "153.75", p.Subtotal)
	deq(t, "23.06", p.PlatformFee)
	deq(t, "176.81", p.TotalCharged)
	require.NotNil(t, p.WorkerPayout)
	deq(t, "153.75", *p.WorkerPayout)

	assert.Equal(t, model.PaymentReleased, p.Status)
	require.NotNil(t, p.WorkerID)
	assert.Equal(t, "wrk-1", *p.WorkerID)
	require.NotNil(t, p.TimesheetID)
	assert.Equal(t, "ts-1", *p.TimesheetID)
	assert.NotNil(t, p.PaymentCapturedAt)
	assert.NotNil(t, p.ReleasedAt)
	assert.Equal(t, "gw-test-ref", p.GatewayRef)

	assert.Equal(t, model.ShiftCompleted, f.repo.shifts["shift-1"].Status)
	assert.Equal(t, 1, f.repo.releaseCalls)
	assert.Equal(t, 1, f.gw.calls)

	// Both parties were notified through the outbox
	require.Len(t, f.producer.notifications, 2)
	assert.Equal(t, "emp-1", f.producer.notifications[0].RecipientID)
	assert.Equal(t, messaging.CategoryPaymentReleased, f.producer.notifications[0].Category)
	assert.Equal(t, "wrk-1", f.producer.notifications[1].RecipientID)
	assert.Equal(t, messaging.CategoryWorkerPaid, f.producer.notifications[1].Category)
}

func TestSettle_WorkerPayoutEqualsSubtotal(t *testing.T) {
	// The platform fee is billed on top of the worker's pay
	f := newSettleFixture(t).withHold(t)

	result, err := f.engine.Settle(t.Context(), "ts-1")
	require.NoError(t, err)

	p := result.Payment
	assert.True(t, p.WorkerPayout.Equal(p.Subtotal))
	assert.True(t, p.TotalCharged.Equal(p.Subtotal.Add(p.PlatformFee)))
}

func TestSettle_Idempotent(t *testing.T) {
	// GIVEN: a settled timesheet
	// WHEN: settle is invoked again (double-tap, network retry)
	// THEN: the prior result comes back, with no second payout
	f := newSettleFixture(t).withHold(t)

	first, err := f.engine.Settle(t.Context(), "ts-1")
	require.NoError(t, err)

	second, err := f.engine.Settle(t.Context(), "ts-1")
	require.NoError(t, err)
	assert.True(t, second.ShiftUpdated)

	assert.True(t, first.Payment.TotalCharged.Equal(second.Payment.TotalCharged))
	assert.True(t, first.Payment.WorkerPayout.Equal(*second.Payment.WorkerPayout))
	assert.Equal(t, model.ShiftCompleted, f.repo.shifts["shift-1"].Status)

	assert.Equal(t, 1, f.repo.releaseCalls, "no second release")
	assert.Equal(t, 1, f.gw.calls, "no second fund movement")
	assert.Len(t, f.producer.notifications, 2, "no duplicate notifications")
}

func TestSettle_NoHoldCreatesReleasedPayment(t *testing.T) {
	// A shift posted before escrow existed has no hold; settlement
	// creates the payment directly with the default fee.
	f := newSettleFixture(t)

	result, err := f.engine.Settle(t.Context(), "ts-1")
	require.NoError(t, err)

	p := result.Payment
	assert.Equal(t, core.DefaultFeePercentage, p.FeePercentage)
	deq(t, "23.06", p.PlatformFee)
	assert.Equal(t, model.PaymentReleased, p.Status)
	assert.Equal(t, 1, f.repo.createPaymentCalls)
}

func TestSettle_FeeCarriedFromHold(t *testing.T) {
	f := newSettleFixture(t)
	ledger := core.NewEscrowLedger(f.repo)
	fee := 0.10
	_, err := ledger.OpenHold(t.Context(), core.OpenHoldInput{
		ShiftID:        "shift-1",
		EmployerID:     "emp-1",
		EstimatedHours: 8,
		HourlyRate:     decimal.RequireFromString("15"),
		FeePercentage:  &fee,
	})
	require.NoError(t, err)

	result, err := f.engine.Settle(t.Context(), "ts-1")
	require.NoError(t, err)

	assert.Equal(t, 0.10, result.Payment.FeePercentage)
	deq(t, "15.38", result.Payment.PlatformFee) // 153.75 * 0.10 rounded
	deq(t, "169.13", result.Payment.TotalCharged)
}

func TestSettle_TimesheetNotFound(t *testing.T) {
	f := newSettleFixture(t)

	_, err := f.engine.Settle(t.Context(), "missing")
	assert.ErrorIs(t, err, core.ErrTimesheetNotFound)
	assert.Equal(t, 0, f.gw.calls)
}

func TestSettle_TimesheetWithoutClockOut(t *testing.T) {
	f := newSettleFixture(t)
	f.repo.timesheets["ts-1"].ClockOutTime = nil

	_, err := f.engine.Settle(t.Context(), "ts-1")
	assert.ErrorIs(t, err, core.ErrTimesheetIncomplete)
	assert.Equal(t, 0, f.repo.releaseCalls)
	assert.Equal(t, 0, f.repo.createPaymentCalls)
}

func TestSettle_ShiftMissing(t *testing.T) {
	f := newSettleFixture(t)
	delete(f.repo.shifts, "shift-1")

	_, err := f.engine.Settle(t.Context(), "ts-1")
	assert.ErrorIs(t, err, core.ErrShiftNotFound)
}

func TestSettle_MissingHourlyRate(t *testing.T) {
	f := newSettleFixture(t)
	f.repo.shifts["shift-1"].HourlyRate = decimal.Zero

	_, err := f.engine.Settle(t.Context(), "ts-1")
	assert.ErrorIs(t, err, core.ErrMissingHourlyRate)
}

func TestSettle_GatewayFailureWritesNothing(t *testing.T) {
	f := newSettleFixture(t).withHold(t)
	f.gw.err = errors.New("gateway unavailable")

	_, err := f.engine.Settle(t.Context(), "ts-1")
	require.Error(t, err)

	assert.Equal(t, 0, f.repo.releaseCalls)
	assert.Equal(t, model.PaymentHeld, f.repo.payments["shift-1"].Status)
	assert.Equal(t, model.ShiftInProgress, f.repo.shifts["shift-1"].Status)
	assert.Empty(t, f.producer.notifications)
}

func TestSettle_ShiftUpdateFailureIsPartialSuccess(t *testing.T) {
	// GIVEN: the payment release lands but the shift write fails
	// THEN: settlement reports success with ShiftUpdated false, keeps
	// the in-between payment state and queues a reconciliation event
	f := newSettleFixture(t).withHold(t)
	f.repo.completeShiftErr = errors.New("db connection reset")

	result, err := f.engine.Settle(t.Context(), "ts-1")
	require.NoError(t, err)
	assert.False(t, result.ShiftUpdated)

	assert.Equal(t, model.PaymentReleasedPendingShift, f.repo.payments["shift-1"].Status)
	assert.Equal(t, model.ShiftInProgress, f.repo.shifts["shift-1"].Status)

	require.Len(t, f.producer.settlements, 1)
	assert.Equal(t, "shift-1", f.producer.settlements[0].ShiftID)
	assert.Equal(t, "ts-1", f.producer.settlements[0].TimesheetID)

	// Notifications still go out; the money did move
	assert.Len(t, f.producer.notifications, 2)
}

func TestSettle_RetryCompletesHalfFinishedSettlement(t *testing.T) {
	f := newSettleFixture(t).withHold(t)
	f.repo.completeShiftErr = errors.New("db connection reset")

	_, err := f.engine.Settle(t.Context(), "ts-1")
	require.NoError(t, err)

	// The store recovers; the employer retries
	f.repo.completeShiftErr = nil
	result, err := f.engine.Settle(t.Context(), "ts-1")
	require.NoError(t, err)

	assert.True(t, result.ShiftUpdated)
	assert.Equal(t, model.PaymentReleased, f.repo.payments["shift-1"].Status)
	assert.Equal(t, model.ShiftCompleted, f.repo.shifts["shift-1"].Status)

	assert.Equal(t, 1, f.repo.releaseCalls, "funds released exactly once")
	assert.Len(t, f.producer.notifications, 2, "retry does not re-notify")
}

func TestSettle_NotificationFailureNeverFailsSettlement(t *testing.T) {
	f := newSettleFixture(t).withHold(t)
	f.producer.notificationErr = errors.New("queue unavailable")

	result, err := f.engine.Settle(t.Context(), "ts-1")
	require.NoError(t, err)
	assert.True(t, result.ShiftUpdated)
	assert.Equal(t, model.PaymentReleased, result.Payment.Status)
}
