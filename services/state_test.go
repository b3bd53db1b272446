package services

import (
	"testing"
	"time"

	"breakdesk/models"
)

func TestDeriveState(t *testing.T) {
	now := time.Now()
	open := &models.AttendanceInterval{ClockInAt: now.Add(-2 * time.Hour)}
	closed := &models.AttendanceInterval{ClockInAt: now.Add(-10 * time.Hour), ClockOutAt: &now}

	tests := []struct {
		name      string
		interval  *models.AttendanceInterval
		liveBreak *models.BreakRequest
		want      AttendanceState
	}{
		{
			name: "No interval",
			want: StateCheckedOut,
		},
		{
			name:     "Closed interval",
			interval: closed,
			want:     StateCheckedOut,
		},
		{
			name:     "Open interval without break",
			interval: open,
			want:     StateWorking,
		},
		{
			name:      "Pending break",
			interval:  open,
			liveBreak: &models.BreakRequest{Status: models.BreakPending},
			want:      StateBreakPending,
		},
		{
			name:      "Approved break not yet started",
			interval:  open,
			liveBreak: &models.BreakRequest{Status: models.BreakApproved},
			want:      StateBreakPending,
		},
		{
			name:      "Active break",
			interval:  open,
			liveBreak: &models.BreakRequest{Status: models.BreakActive},
			want:      StateOnBreak,
		},
		{
			name:      "Completed break no longer counts",
			interval:  open,
			liveBreak: &models.BreakRequest{Status: models.BreakCompleted},
			want:      StateWorking,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveState(tt.interval, tt.liveBreak)
			if got != tt.want {
				t.Errorf("DeriveState() = %v, want %v", got, tt.want)
			}
		})
	}
}
