package services

import "breakdesk/models"

type AttendanceState string

const (
	StateCheckedOut   AttendanceState = "checked_out"
	StateWorking      AttendanceState = "working"
	StateBreakPending AttendanceState = "break_pending"
	StateOnBreak      AttendanceState = "on_break"
)

// DeriveState projects a user's current presence from their open interval
// and live break, if any. Pure; recomputed on every read instead of cached.
func DeriveState(interval *models.AttendanceInterval, liveBreak *models.BreakRequest) AttendanceState {
	if interval == nil || !interval.IsOpen() {
		return StateCheckedOut
	}
	if liveBreak == nil {
		return StateWorking
	}
	switch liveBreak.Status {
	case models.BreakActive:
		return StateOnBreak
	case models.BreakPending, models.BreakApproved:
		return StateBreakPending
	default:
		return StateWorking
	}
}
