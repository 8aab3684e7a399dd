// README: Shift and business-date value objects.
package types

import (
	"errors"
	"strings"
	"time"
)

type Shift string

const (
	ShiftAM Shift = "AM"
	ShiftPM Shift = "PM"
)

// DateLayout is the wire and storage format of a business date.
const DateLayout = "2006-01-02"

var (
	ErrInvalidShift = errors.New("shift must be AM or PM")
	ErrInvalidDate  = errors.New("date must be YYYY-MM-DD")
)

func ParseShift(v string) (Shift, error) {
	switch Shift(strings.ToUpper(strings.TrimSpace(v))) {
	case ShiftAM:
		return ShiftAM, nil
	case ShiftPM:
		return ShiftPM, nil
	}
	return "", ErrInvalidShift
}

func (s Shift) Valid() bool {
	return s == ShiftAM || s == ShiftPM
}

// ParseDate parses a business date into midnight UTC.
func ParseDate(v string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// DateOf truncates t to its calendar date in t's own location, expressed as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Shift boundaries in local hours: AM runs 05:00-17:00, PM 17:00-05:00.
const (
	AMStartHour = 5
	PMStartHour = 17
)

// ShiftAt returns the shift covering local time t.
func ShiftAt(t time.Time) Shift {
	if h := t.Hour(); h >= AMStartHour && h < PMStartHour {
		return ShiftAM
	}
	return ShiftPM
}

// BusinessDate returns the date a shift at t is booked under. The small
// hours before 05:00 belong to the previous day's PM shift.
func BusinessDate(t time.Time) time.Time {
	if t.Hour() < AMStartHour {
		t = t.AddDate(0, 0, -1)
	}
	return DateOf(t)
}
