package services

import (
	"context"
	"fmt"
	"time"

	"breakdesk/models"

	"gorm.io/gorm"
)

const (
	ReasonNotClockedIn   = "not clocked in"
	ReasonBreakInFlight  = "a break is already pending or active"
	ReasonMicroExhausted = "daily micro break allowance exhausted"
	ReasonLunchExhausted = "daily lunch allowance exhausted"
)

type EligibilityResult struct {
	CanRequest          bool   `json:"can_request"`
	Reason              string `json:"reason,omitempty"`
	WorkDurationMinutes int    `json:"work_duration_minutes"`
	MicroRemaining      int    `json:"micro_remaining"`
	LunchRemaining      int    `json:"lunch_remaining"`
}

// eligibilityInput is everything the rule chain needs, gathered up front
// so the decision itself stays pure and unit-testable.
type eligibilityInput struct {
	IntervalOpen       bool
	HasLiveBreak       bool
	TookBreakThisShift bool
	WorkDuration       time.Duration
	MinWorkDuration    time.Duration
	Type               models.BreakType
	Entitlement        DailyEntitlement
}

// CanRequestBreak gathers the interval, live-break and ledger state and
// runs the eligibility rules. On pass the result carries the current
// balances so the caller can render "X minutes remaining" without a
// second round trip.
func (s *BreakService) CanRequestBreak(ctx context.Context, userID, attendanceID uint, breakType models.BreakType, date time.Time) (EligibilityResult, error) {
	var interval models.AttendanceInterval
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", attendanceID, userID).
		First(&interval).Error
	if err == gorm.ErrRecordNotFound {
		return EligibilityResult{}, ErrNotFound("attendance interval %d not found", attendanceID)
	}
	if err != nil {
		return EligibilityResult{}, fmt.Errorf("loading attendance interval: %w", err)
	}

	var liveCount int64
	err = s.db.WithContext(ctx).Model(&models.BreakRequest{}).
		Where("user_id = ? AND attendance_id = ? AND status IN ?", userID, attendanceID, models.LiveStatuses).
		Count(&liveCount).Error
	if err != nil {
		return EligibilityResult{}, fmt.Errorf("checking live breaks: %w", err)
	}

	var shiftBreaks int64
	err = s.db.WithContext(ctx).Model(&models.BreakRequest{}).
		Where("attendance_id = ? AND status <> ?", attendanceID, models.BreakDenied).
		Count(&shiftBreaks).Error
	if err != nil {
		return EligibilityResult{}, fmt.Errorf("counting shift breaks: %w", err)
	}

	ent, err := s.GetDailyEntitlements(ctx, userID, date)
	if err != nil {
		return EligibilityResult{}, err
	}

	in := eligibilityInput{
		IntervalOpen:       interval.IsOpen(),
		HasLiveBreak:       liveCount > 0,
		TookBreakThisShift: shiftBreaks > 0,
		WorkDuration:       time.Duration(MinutesBetween(interval.ClockInAt, interval.ClockOutAt)) * time.Minute,
		MinWorkDuration:    s.cfg.MinWorkBeforeBreak,
		Type:               breakType,
		Entitlement:        ent,
	}
	return evaluateEligibility(in), nil
}

// evaluateEligibility runs the rules in order; the first failing rule
// wins and supplies the reason.
func evaluateEligibility(in eligibilityInput) EligibilityResult {
	res := EligibilityResult{
		WorkDurationMinutes: int(in.WorkDuration.Minutes()),
		MicroRemaining:      in.Entitlement.MicroRemaining,
		LunchRemaining:      in.Entitlement.LunchRemaining,
	}

	if !in.IntervalOpen {
		res.Reason = ReasonNotClockedIn
		return res
	}
	if in.HasLiveBreak {
		res.Reason = ReasonBreakInFlight
		return res
	}
	// The work floor guards against break-stacking right after clock-in.
	// It applies to the first break of the shift only; later breaks are
	// bounded by the pools.
	if !in.TookBreakThisShift && in.WorkDuration < in.MinWorkDuration {
		res.Reason = fmt.Sprintf("at least %d minutes of work required before the first break",
			int(in.MinWorkDuration.Minutes()))
		return res
	}
	// Duration is unknown until the break ends, so at request time the
	// gate is "pool not yet exhausted", not "fits in the pool".
	if in.Type.IsMicro() {
		if in.Entitlement.MicroUsed >= in.Entitlement.MicroLimit {
			res.Reason = ReasonMicroExhausted
			return res
		}
	} else {
		if in.Entitlement.LunchUsed >= in.Entitlement.LunchLimit {
			res.Reason = ReasonLunchExhausted
			return res
		}
	}

	res.CanRequest = true
	return res
}
