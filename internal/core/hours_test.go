package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shiftpay.service/internal/core"
)

func clock(hour, min int) time.Time {
	return time.Date(2025, time.March, 10, hour, min, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func TestCalculateHours_BreakPolicy(t *testing.T) {
	tests := []struct {
		name          string
		clockIn       time.Time
		clockOut      time.Time
		recordedBreak *int
		wantBreak     int
	}{
		{
			name:      "Short shift without recorded break gets none",
			clockIn:   clock(9, 0),
			clockOut:  clock(14, 0),
			wantBreak: 0,
		},
		{
			name:      "Exactly six hours is not over the auto-break line",
			clockIn:   clock(9, 0),
			clockOut:  clock(15, 0),
			wantBreak: 0,
		},
		{
			name:      "Over six hours without recorded break gets 45 minutes",
			clockIn:   clock(9, 0),
			clockOut:  clock(16, 30),
			wantBreak: 45,
		},
		{
			name:          "Explicit zero break is honored on a long shift",
			clockIn:       clock(8, 0),
			clockOut:      clock(17, 30),
			recordedBreak: intPtr(0),
			wantBreak:     0,
		},
		{
			name:          "Explicit break is used as-is",
			clockIn:       clock(9, 0),
			clockOut:      clock(17, 0),
			recordedBreak: intPtr(30),
			wantBreak:     30,
		},
		{
			name:          "Break longer than the shift is discarded",
			clockIn:       clock(9, 0),
			clockOut:      clock(10, 0),
			recordedBreak: intPtr(90),
			wantBreak:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.CalculateHours(tt.clockIn, tt.clockOut, tt.recordedBreak, core.HoursOptions{})
			assert.Equal(t, tt.wantBreak, got.BreakMinutes)
		})
	}
}

func TestCalculateHours_MinimumFloor(t *testing.T) {
	// GIVEN: a worker clocked only two hours
	// THEN: they are still billed the four hour minimum
	got := core.CalculateHours(clock(9, 0), clock(11, 0), nil, core.HoursOptions{})

	assert.Equal(t, 120, got.BillableMinutes)
	assert.InDelta(t, 2.0, got.TotalHours, 0.0001)
	assert.InDelta(t, 4.0, got.BillableHours, 0.0001)
	assert.InDelta(t, 4.0, got.RegularHours, 0.0001)
	assert.InDelta(t, 0.0, got.OvertimeHours, 0.0001)
}

func TestCalculateHours_OvertimeSplit(t *testing.T) {
	// 08:00 to 17:30 with an explicit zero break is 9.5 billable hours
	got := core.CalculateHours(clock(8, 0), clock(17, 30), intPtr(0), core.HoursOptions{})

	assert.InDelta(t, 9.5, got.BillableHours, 0.0001)
	assert.InDelta(t, 8.0, got.RegularHours, 0.0001)
	assert.InDelta(t, 1.5, got.OvertimeHours, 0.0001)
}

func TestCalculateHours_RegularPlusOvertimeEqualsBillable(t *testing.T) {
	durations := []time.Duration{
		30 * time.Minute,
		4 * time.Hour,
		6*time.Hour + 1*time.Minute,
		8 * time.Hour,
		11*time.Hour + 45*time.Minute,
	}

	for _, d := range durations {
		got := core.CalculateHours(clock(6, 0), clock(6, 0).Add(d), nil, core.HoursOptions{})
		assert.InDelta(t, got.BillableHours, got.RegularHours+got.OvertimeHours, 0.0001, "duration %v", d)
		assert.GreaterOrEqual(t, got.OvertimeHours, 0.0)
	}
}

func TestCalculateHours_OvernightShift(t *testing.T) {
	// GIVEN: clock-in 23:30, clock-out 00:15 the next day stored on
	// the same calendar date
	// THEN: the raw duration wraps to 45 minutes, not negative
	got := core.CalculateHours(clock(23, 30), clock(0, 15), nil, core.HoursOptions{})

	assert.Equal(t, 45, got.TotalMinutes)
	assert.Equal(t, 45, got.BillableMinutes)
	assert.InDelta(t, 4.0, got.BillableHours, 0.0001)
}

func TestCalculateHours_CustomThresholds(t *testing.T) {
	got := core.CalculateHours(clock(8, 0), clock(18, 0), intPtr(0), core.HoursOptions{
		MinimumHours:      2,
		OvertimeThreshold: 9,
	})

	assert.InDelta(t, 10.0, got.BillableHours, 0.0001)
	assert.InDelta(t, 9.0, got.RegularHours, 0.0001)
	assert.InDelta(t, 1.0, got.OvertimeHours, 0.0001)
}
