// Package timeslot defines the 30-minute grid all time entries live on
// and the date arithmetic for day and week boundaries. Everything here is
// pure: no clocks are read and no state is touched.
package timeslot

import "time"

const (
	// DateLayout is the wire format for calendar dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire format for slot times.
	TimeLayout = "15:04"
	// SlotMinutes is the fixed length of every slot.
	SlotMinutes = 30
)

// IsValidSlotBoundary reports whether s parses as HH:MM with a minute
// component of 0 or 30. Malformed input returns false, never an error.
func IsValidSlotBoundary(s string) bool {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return false
	}
	return t.Minute() == 0 || t.Minute() == 30
}

// CanonicalTime re-renders an HH:MM string in zero-padded form.
// time.Parse accepts a single-digit hour, but slot times are compared
// and ordered as strings, so "9:00" must become "09:00" before it is
// stored or matched against stored values.
func CanonicalTime(s string) (string, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return "", err
	}
	return t.Format(TimeLayout), nil
}

// DeriveEndTime returns start + 30 minutes rendered as HH:MM. A start of
// "23:30" yields "00:00": the entry stays on its own calendar date and
// never wraps into the next day.
func DeriveEndTime(start string) (string, error) {
	t, err := time.Parse(TimeLayout, start)
	if err != nil {
		return "", err
	}
	return t.Add(SlotMinutes * time.Minute).Format(TimeLayout), nil
}

// MinutesSinceMidnight converts an HH:MM string to minutes since
// midnight. Malformed input maps to 0.
func MinutesSinceMidnight(s string) int {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

// WeekStart returns the Monday of t's week, truncated to midnight.
func WeekStart(t time.Time) time.Time {
	// time.Weekday puts Sunday at 0; shift so Monday is the anchor.
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

// WeekRange returns the inclusive [Monday, Sunday] window containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	start := WeekStart(t)
	return start, start.AddDate(0, 0, 6)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
