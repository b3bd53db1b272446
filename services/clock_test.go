package services

import (
	"testing"
	"time"
)

func TestMinutesBetweenAt(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	end := now.Add(-30 * time.Minute)
	skewedEnd := now.Add(-90 * time.Minute)

	tests := []struct {
		name  string
		start time.Time
		end   *time.Time
		want  int
	}{
		{
			name:  "Closed interval",
			start: now.Add(-75 * time.Minute),
			end:   &end,
			want:  45,
		},
		{
			name:  "Open interval runs to now",
			start: now.Add(-90 * time.Minute),
			end:   nil,
			want:  90,
		},
		{
			name:  "Sub-minute remainder truncated",
			start: now.Add(-(10*time.Minute + 59*time.Second)),
			end:   nil,
			want:  10,
		},
		{
			name:  "Clock skew clamps to zero",
			start: now.Add(-60 * time.Minute),
			end:   &skewedEnd,
			want:  0,
		},
		{
			name:  "Start in the future clamps to zero",
			start: now.Add(5 * time.Minute),
			end:   nil,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := minutesBetweenAt(tt.start, tt.end, now)
			if got != tt.want {
				t.Errorf("minutesBetweenAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDayBounds(t *testing.T) {
	at := time.Date(2026, 9, 1, 17, 42, 13, 0, time.UTC)
	start, end := dayBounds(at)

	if !start.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("dayBounds() start = %v", start)
	}
	if !end.Equal(time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("dayBounds() end = %v", end)
	}
}
