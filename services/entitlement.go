package services

import (
	"context"
	"fmt"
	"time"

	"breakdesk/models"
)

// DailyEntitlement is the derived per-user-per-day ledger: consumed
// minutes against both break pools. Never stored; always recomputed from
// the day's break requests.
type DailyEntitlement struct {
	UserID         uint   `json:"user_id"`
	Date           string `json:"date"`
	MicroUsed      int    `json:"micro_used"`
	LunchUsed      int    `json:"lunch_used"`
	MicroLimit     int    `json:"micro_limit"`
	LunchLimit     int    `json:"lunch_limit"`
	MicroRemaining int    `json:"micro_remaining"`
	LunchRemaining int    `json:"lunch_remaining"`
	// OverLimit flags instant-approval overage: a pool that ran past its
	// limit because an auto-started break was still open when it filled.
	OverLimit bool `json:"over_limit"`
}

// GetDailyEntitlements sums the day's non-denied break durations by pool.
// A read failure propagates; it is never reported as zero usage.
func (s *BreakService) GetDailyEntitlements(ctx context.Context, userID uint, date time.Time) (DailyEntitlement, error) {
	dayStart, dayEnd := dayBounds(date)

	var requests []models.BreakRequest
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status <> ?", userID, models.BreakDenied).
		Where("started_at >= ? AND started_at < ?", dayStart, dayEnd).
		Find(&requests).Error
	if err != nil {
		return DailyEntitlement{}, fmt.Errorf("loading break usage: %w", err)
	}

	ent := summarizeEntitlements(requests, s.cfg.MicroLimitMinutes, s.cfg.LunchLimitMinutes, time.Now())
	ent.UserID = userID
	ent.Date = dayStart.Format("2006-01-02")
	return ent, nil
}

func summarizeEntitlements(requests []models.BreakRequest, microLimit, lunchLimit int, now time.Time) DailyEntitlement {
	ent := DailyEntitlement{
		MicroLimit: microLimit,
		LunchLimit: lunchLimit,
	}
	for _, r := range requests {
		if r.Status == models.BreakDenied || r.StartedAt == nil {
			continue
		}
		// Open breaks consume up to "now".
		minutes := minutesBetweenAt(*r.StartedAt, r.EndedAt, now)
		if r.Type.IsMicro() {
			ent.MicroUsed += minutes
		} else {
			ent.LunchUsed += minutes
		}
	}
	ent.MicroRemaining = clampRemaining(ent.MicroLimit - ent.MicroUsed)
	ent.LunchRemaining = clampRemaining(ent.LunchLimit - ent.LunchUsed)
	ent.OverLimit = ent.MicroUsed > ent.MicroLimit || ent.LunchUsed > ent.LunchLimit
	return ent
}

func clampRemaining(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
