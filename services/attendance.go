package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"breakdesk/models"

	"gorm.io/gorm"
)

type AttendanceService struct {
	db       *gorm.DB
	notifier ChangeNotifier
}

func NewAttendanceService(db *gorm.DB, notifier ChangeNotifier) *AttendanceService {
	return &AttendanceService{db: db, notifier: notifier}
}

// CheckIn opens a new attendance interval. The partial unique index on
// open intervals rejects a second concurrent shift for the same user.
func (s *AttendanceService) CheckIn(ctx context.Context, userID uint) (*models.AttendanceInterval, error) {
	interval := models.AttendanceInterval{
		UserID:    userID,
		ClockInAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&interval).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(err.Error(), "idx_attendance_one_open_per_user") {
			return nil, ErrConflict("user %d already has an open shift", userID)
		}
		return nil, fmt.Errorf("creating attendance interval: %w", err)
	}

	s.notifier.NotifyChange("attendance_intervals", "insert", userID, nil)
	return &interval, nil
}

// CheckOut closes the interval and, in the same transaction,
// force-completes any break still active on it. The checkout is not
// considered successful while a break is left active.
func (s *AttendanceService) CheckOut(ctx context.Context, attendanceID, userID uint) (*models.AttendanceInterval, error) {
	var interval models.AttendanceInterval
	now := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND user_id = ?", attendanceID, userID).First(&interval).Error
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound("attendance interval %d not found", attendanceID)
		}
		if err != nil {
			return fmt.Errorf("loading attendance interval: %w", err)
		}
		if !interval.IsOpen() {
			return ErrConflict("attendance interval %d is already closed", attendanceID)
		}

		closed := tx.Model(&models.BreakRequest{}).
			Where("attendance_id = ? AND status = ?", attendanceID, models.BreakActive).
			Updates(map[string]any{
				"status":   models.BreakCompleted,
				"ended_at": now,
				"reason":   "Ended by checkout",
			})
		if closed.Error != nil {
			return fmt.Errorf("closing active breaks: %w", closed.Error)
		}
		if closed.RowsAffected > 0 {
			log.Printf("checkout closed %d active break(s) on interval %d", closed.RowsAffected, attendanceID)
		}

		result := tx.Model(&models.AttendanceInterval{}).
			Where("id = ? AND clock_out_at IS NULL", attendanceID).
			Update("clock_out_at", now)
		if result.Error != nil {
			return fmt.Errorf("closing attendance interval: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrConflict("attendance interval %d is already closed", attendanceID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	interval.ClockOutAt = &now
	s.notifier.NotifyChange("attendance_intervals", "update", userID, nil)
	s.notifier.NotifyChange("break_requests", "update", userID, nil)
	return &interval, nil
}

// OpenInterval returns the user's open shift, or nil if checked out.
func (s *AttendanceService) OpenInterval(ctx context.Context, userID uint) (*models.AttendanceInterval, error) {
	var interval models.AttendanceInterval
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND clock_out_at IS NULL", userID).
		First(&interval).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading open interval: %w", err)
	}
	return &interval, nil
}

type PresenceEntry struct {
	UserID   uint            `json:"user_id"`
	FullName string          `json:"full_name"`
	TeamID   *uint           `json:"team_id"`
	State    AttendanceState `json:"state"`
}

// CurrentState derives a single user's presence.
func (s *AttendanceService) CurrentState(ctx context.Context, userID uint) (AttendanceState, error) {
	interval, err := s.OpenInterval(ctx, userID)
	if err != nil {
		return "", err
	}
	if interval == nil {
		return StateCheckedOut, nil
	}

	var liveBreak models.BreakRequest
	err = s.db.WithContext(ctx).
		Where("attendance_id = ? AND status IN ?", interval.ID, models.LiveStatuses).
		First(&liveBreak).Error
	if err == gorm.ErrRecordNotFound {
		return DeriveState(interval, nil), nil
	}
	if err != nil {
		return "", fmt.Errorf("loading live break: %w", err)
	}
	return DeriveState(interval, &liveBreak), nil
}

// Roster derives presence for every member of the given teams.
func (s *AttendanceService) Roster(ctx context.Context, teamIDs []uint) ([]PresenceEntry, error) {
	if len(teamIDs) == 0 {
		return []PresenceEntry{}, nil
	}

	var users []models.User
	err := s.db.WithContext(ctx).Where("team_id IN ?", teamIDs).Order("full_name asc").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("loading team members: %w", err)
	}

	entries := make([]PresenceEntry, 0, len(users))
	for _, u := range users {
		state, err := s.CurrentState(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, PresenceEntry{
			UserID:   u.ID,
			FullName: u.DisplayName(),
			TeamID:   u.TeamID,
			State:    state,
		})
	}
	return entries, nil
}

type HistoryEntry struct {
	Interval     models.AttendanceInterval `json:"interval"`
	WorkMinutes  int                       `json:"work_minutes"`
	BreakMinutes int                       `json:"break_minutes"`
}

// History lists a user's intervals for one month with worked and break
// minutes, oldest first.
func (s *AttendanceService) History(ctx context.Context, userID uint, year int, month time.Month) ([]HistoryEntry, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)

	var intervals []models.AttendanceInterval
	err := s.db.WithContext(ctx).Preload("User").
		Where("user_id = ? AND clock_in_at >= ? AND clock_in_at < ?", userID, start, end).
		Order("clock_in_at asc").
		Find(&intervals).Error
	if err != nil {
		return nil, fmt.Errorf("loading attendance history: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(intervals))
	for _, interval := range intervals {
		var breaks []models.BreakRequest
		err := s.db.WithContext(ctx).
			Where("attendance_id = ? AND status <> ?", interval.ID, models.BreakDenied).
			Find(&breaks).Error
		if err != nil {
			return nil, fmt.Errorf("loading interval breaks: %w", err)
		}

		breakMinutes := 0
		for _, b := range breaks {
			if b.StartedAt != nil {
				breakMinutes += MinutesBetween(*b.StartedAt, b.EndedAt)
			}
		}
		workMinutes := MinutesBetween(interval.ClockInAt, interval.ClockOutAt) - breakMinutes
		if workMinutes < 0 {
			workMinutes = 0
		}
		entries = append(entries, HistoryEntry{
			Interval:     interval,
			WorkMinutes:  workMinutes,
			BreakMinutes: breakMinutes,
		})
	}
	return entries, nil
}
