package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"shiftpay.service/internal/core/model"
	"shiftpay.service/internal/ports/repository"
)

// TimesheetService handles the clock-in/clock-out workflow producing
// the attendance records the settlement engine reads.
type TimesheetService struct {
	repo repository.Repository
	now  func() time.Time
}

// NewTimesheetService wires the service to the data store.
func NewTimesheetService(repo repository.Repository) *TimesheetService {
	return &TimesheetService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// ClockIn creates the worker's timesheet for the shift and moves an
// open shift to in_progress. The store's uniqueness constraint rejects
// a second open timesheet for the same (shift, worker) pair.
func (s *TimesheetService) ClockIn(ctx context.Context, shiftID, workerID string) (*model.Timesheet, error) {
	if workerID == "" {
		return nil, &ValidationError{Field: "workerId", Reason: "must not be empty"}
	}

	shift, err := s.repo.GetShift(ctx, shiftID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to load shift: %w", err)
	}
	if shift.Status != model.ShiftOpen && shift.Status != model.ShiftInProgress {
		return nil, ErrShiftNotOpen
	}

	ts := &model.Timesheet{
		ID:          uuid.NewString(),
		ShiftID:     shiftID,
		WorkerID:    workerID,
		ClockInTime: s.now(),
		CreatedAt:   s.now(),
	}

	if err := s.repo.CreateTimesheet(ctx, ts); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrTimesheetExists
		}
		return nil, fmt.Errorf("failed to create timesheet: %w", err)
	}

	// First clock-in flips the shift; later workers find it already
	// in progress, which is fine.
	if _, err := s.repo.TransitionShift(ctx, shiftID, model.ShiftOpen, model.ShiftInProgress); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("shift_id", shiftID).Msg("Failed to move shift to in_progress")
	}

	return ts, nil
}

// ClockOut stamps the clock-out time and the recorded break, if any.
// A nil break leaves the auto-break policy to decide at settlement.
func (s *TimesheetService) ClockOut(ctx context.Context, timesheetID string, breakMinutes *int) (*model.Timesheet, error) {
	if breakMinutes != nil && *breakMinutes < 0 {
		return nil, &ValidationError{Field: "breakMinutes", Reason: "must not be negative"}
	}

	ts, err := s.repo.GetTimesheet(ctx, timesheetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTimesheetNotFound
		}
		return nil, fmt.Errorf("failed to load timesheet: %w", err)
	}
	if ts.ClockOutTime != nil {
		return nil, &ValidationError{Field: "timesheet", Reason: "already clocked out"}
	}

	clockOut := s.now()
	if err := s.repo.SetClockOut(ctx, timesheetID, clockOut, breakMinutes); err != nil {
		return nil, fmt.Errorf("failed to record clock-out: %w", err)
	}

	ts.ClockOutTime = &clockOut
	ts.BreakMinutes = breakMinutes
	return ts, nil
}
