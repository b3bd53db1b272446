package services

import "time"

// MinutesBetween returns whole elapsed minutes from start to end, or to
// now for a still-open interval (nil end). Clock skew can make the delta
// negative; clamp to zero rather than report negative usage.
func MinutesBetween(start time.Time, end *time.Time) int {
	return minutesBetweenAt(start, end, time.Now())
}

func minutesBetweenAt(start time.Time, end *time.Time, now time.Time) int {
	until := now
	if end != nil {
		until = *end
	}
	minutes := int(until.Sub(start).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}

// dayBounds returns the [start, end) of the calendar day containing t,
// in t's location. Breaks are charged to the day they started.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
