package core

import "time"

// Defaults for the hours policy. A worker is always paid for at least
// MinimumBillableHours; hours above OvertimeThresholdHours are paid at
// the shift's overtime multiplier; shifts longer than six raw hours
// get a 45 minute break deducted unless one was recorded explicitly.
const (
	MinimumBillableHours   = 4.0
	OvertimeThresholdHours = 8.0
	AutoBreakMinutes       = 45
	autoBreakAfterHours    = 6.0
)

// HoursBreakdown is the structured result of CalculateHours.
// RegularHours + OvertimeHours always equals BillableHours.
type HoursBreakdown struct {
	TotalMinutes    int     `json:"totalMinutes"`
	BreakMinutes    int     `json:"breakMinutes"`
	BillableMinutes int     `json:"billableMinutes"`
	TotalHours      float64 `json:"totalHours"`
	BillableHours   float64 `json:"billableHours"`
	RegularHours    float64 `json:"regularHours"`
	OvertimeHours   float64 `json:"overtimeHours"`
}

// HoursOptions overrides the policy defaults. Zero values fall back
// to the package defaults.
type HoursOptions struct {
	MinimumHours      float64
	OvertimeThreshold float64
}

// CalculateHours turns a pair of clock events and an optionally
// recorded break into the billable breakdown used for pay.
//
// A clock-out at or before the clock-in is treated as an overnight
// shift and wrapped forward by 24 hours. This cannot distinguish a
// data-entry error from a genuine night shift; callers that need to
// reject bad input must validate the ordering upstream.
//
// A recorded break is honored as-is, including zero. With no recorded
// break, shifts over six raw hours get the statutory 45 minutes. A
// break longer than the shift itself is discarded.
func CalculateHours(clockIn, clockOut time.Time, recordedBreak *int, opts HoursOptions) HoursBreakdown {
	minimum := opts.MinimumHours
	if minimum == 0 {
		minimum = MinimumBillableHours
	}
	threshold := opts.OvertimeThreshold
	if threshold == 0 {
		threshold = OvertimeThresholdHours
	}

	rawMinutes := int(clockOut.Sub(clockIn).Minutes())
	if rawMinutes <= 0 {
		rawMinutes += 24 * 60
	}

	breakMinutes := 0
	if recordedBreak != nil {
		breakMinutes = *recordedBreak
	} else if float64(rawMinutes)/60 > autoBreakAfterHours {
		breakMinutes = AutoBreakMinutes
	}
	if breakMinutes > rawMinutes {
		breakMinutes = 0
	}

	billableMinutes := rawMinutes - breakMinutes
	if billableMinutes < 0 {
		billableMinutes = 0
	}

	totalHours := float64(billableMinutes) / 60

	billableHours := totalHours
	if billableHours < minimum {
		billableHours = minimum
	}

	regular := billableHours
	overtime := 0.0
	if billableHours > threshold {
		regular = threshold
		overtime = billableHours - threshold
	}

	return HoursBreakdown{
		TotalMinutes:    rawMinutes,
		BreakMinutes:    breakMinutes,
		BillableMinutes: billableMinutes,
		TotalHours:      totalHours,
		BillableHours:   billableHours,
		RegularHours:    regular,
		OvertimeHours:   overtime,
	}
}
