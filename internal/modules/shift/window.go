// README: Shift window checks against an injected clock.
package shift

import (
	"time"

	"carwash/internal/clock"
	"carwash/internal/types"
)

// SummaryFormLeadMinutes is how long before the end of a shift the
// settlement form is offered.
const SummaryFormLeadMinutes = 30

// Window describes where the clock sits relative to one shift.
type Window struct {
	Shift           types.Shift `json:"shift"`
	Current         types.Shift `json:"current_shift"`
	BusinessDate    string      `json:"business_date"`
	Within          bool        `json:"within_shift"`
	MinutesUntilEnd int         `json:"minutes_until_end"`
	ShowSummaryForm bool        `json:"show_summary_form"`
	Ended           bool        `json:"has_ended"`
}

// WithinShift reports whether the clock is inside s.
func WithinShift(c clock.Clock, s types.Shift) bool {
	return types.ShiftAt(c.Now()) == s
}

// MinutesUntilEnd counts whole minutes, rounding the current minute up,
// until s ends. It is 0 when the clock is outside s.
func MinutesUntilEnd(c clock.Clock, s types.Shift) int {
	now := c.Now()
	h, m := now.Hour(), now.Minute()
	switch s {
	case types.ShiftAM:
		if h >= types.AMStartHour && h < types.PMStartHour {
			return (types.PMStartHour-h-1)*60 + (60 - m)
		}
	case types.ShiftPM:
		if h >= types.PMStartHour {
			return (24-h-1)*60 + (60 - m) + types.AMStartHour*60
		}
		if h < types.AMStartHour {
			return (types.AMStartHour-h-1)*60 + (60 - m)
		}
	}
	return 0
}

// ShouldShowSummaryForm is true during the last half hour of s.
func ShouldShowSummaryForm(c clock.Clock, s types.Shift) bool {
	left := MinutesUntilEnd(c, s)
	return left > 0 && left <= SummaryFormLeadMinutes
}

// HasEnded is true whenever the clock is outside s.
func HasEnded(c clock.Clock, s types.Shift) bool {
	return MinutesUntilEnd(c, s) <= 0
}

func CurrentShift(c clock.Clock) types.Shift {
	return types.ShiftAt(c.Now())
}

func BusinessDate(c clock.Clock) time.Time {
	return types.BusinessDate(c.Now())
}

// WindowFor snapshots every window check for s at a single instant.
func WindowFor(c clock.Clock, s types.Shift) Window {
	at := clock.NewFixed(c.Now())
	return Window{
		Shift:           s,
		Current:         CurrentShift(at),
		BusinessDate:    BusinessDate(at).Format(types.DateLayout),
		Within:          WithinShift(at, s),
		MinutesUntilEnd: MinutesUntilEnd(at, s),
		ShowSummaryForm: ShouldShowSummaryForm(at, s),
		Ended:           HasEnded(at, s),
	}
}
