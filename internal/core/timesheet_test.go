package core_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftpay.service/internal/core"
	"shiftpay.service/internal/core/model"
)

func newTimesheetFixture() (*fakeRepo, *core.TimesheetService) {
	repo := newFakeRepo()
	repo.shifts["shift-1"] = &model.Shift{
		ID:         "shift-1",
		EmployerID: "emp-1",
		HourlyRate: decimal.RequireFromString("15"),
		Status:     model.ShiftOpen,
	}
	return repo, core.NewTimesheetService(repo)
}

func TestClockIn_CreatesTimesheetAndStartsShift(t *testing.T) {
	repo, svc := newTimesheetFixture()

	ts, err := svc.ClockIn(t.Context(), "shift-1", "wrk-1")
	require.NoError(t, err)

	assert.Equal(t, "shift-1", ts.ShiftID)
	assert.Equal(t, "wrk-1", ts.WorkerID)
	assert.Nil(t, ts.ClockOutTime)
	assert.False(t, ts.ClockInTime.IsZero())

	assert.Equal(t, model.ShiftInProgress, repo.shifts["shift-1"].Status)
}

func TestClockIn_SecondWorkerJoinsInProgressShift(t *testing.T) {
	_, svc := newTimesheetFixture()

	_, err := svc.ClockIn(t.Context(), "shift-1", "wrk-1")
	require.NoError(t, err)

	_, err = svc.ClockIn(t.Context(), "shift-1", "wrk-2")
	assert.NoError(t, err)
}

func TestClockIn_DuplicateOpenTimesheetRejected(t *testing.T) {
	// GIVEN: the worker is already clocked in on this shift
	// WHEN: they clock in again without clocking out
	// THEN: the uniqueness invariant rejects a second row
	_, svc := newTimesheetFixture()

	_, err := svc.ClockIn(t.Context(), "shift-1", "wrk-1")
	require.NoError(t, err)

	_, err = svc.ClockIn(t.Context(), "shift-1", "wrk-1")
	assert.ErrorIs(t, err, core.ErrTimesheetExists)
}

func TestClockIn_RejectedStates(t *testing.T) {
	repo, svc := newTimesheetFixture()

	for _, status := range []model.ShiftStatus{model.ShiftDraft, model.ShiftCompleted, model.ShiftCancelled} {
		repo.shifts["shift-1"].Status = status
		_, err := svc.ClockIn(t.Context(), "shift-1", "wrk-1")
		assert.ErrorIs(t, err, core.ErrShiftNotOpen, "status %s", status)
	}

	_, err := svc.ClockIn(t.Context(), "missing", "wrk-1")
	assert.ErrorIs(t, err, core.ErrShiftNotFound)
}

func TestClockOut_StampsTimeAndBreak(t *testing.T) {
	repo, svc := newTimesheetFixture()

	ts, err := svc.ClockIn(t.Context(), "shift-1", "wrk-1")
	require.NoError(t, err)

	thirty := 30
	out, err := svc.ClockOut(t.Context(), ts.ID, &thirty)
	require.NoError(t, err)

	require.NotNil(t, out.ClockOutTime)
	require.NotNil(t, out.BreakMinutes)
	assert.Equal(t, 30, *out.BreakMinutes)

	stored := repo.timesheets[ts.ID]
	assert.NotNil(t, stored.ClockOutTime)
}

func TestClockOut_Rejections(t *testing.T) {
	_, svc := newTimesheetFixture()

	ts, err := svc.ClockIn(t.Context(), "shift-1", "wrk-1")
	require.NoError(t, err)

	_, err = svc.ClockOut(t.Context(), "missing", nil)
	assert.ErrorIs(t, err, core.ErrTimesheetNotFound)

	negative := -10
	_, err = svc.ClockOut(t.Context(), ts.ID, &negative)
	assert.True(t, core.IsValidation(err))

	_, err = svc.ClockOut(t.Context(), ts.ID, nil)
	require.NoError(t, err)

	_, err = svc.ClockOut(t.Context(), ts.ID, nil)
	assert.True(t, core.IsValidation(err), "double clock-out rejected")
}
