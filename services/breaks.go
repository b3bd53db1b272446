package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"breakdesk/config"
	"breakdesk/models"

	"gorm.io/gorm"
)

// ChangeNotifier receives committed state changes so subscribed
// dashboards can invalidate and re-fetch. Payloads carry identifiers
// only; consumers must not trust them beyond "something changed".
type ChangeNotifier interface {
	NotifyChange(table, action string, userID uint, teamID *uint)
}

type BreakService struct {
	db       *gorm.DB
	cfg      *config.Config
	notifier ChangeNotifier
}

func NewBreakService(db *gorm.DB, cfg *config.Config, notifier ChangeNotifier) *BreakService {
	return &BreakService{db: db, cfg: cfg, notifier: notifier}
}

type RequestBreakResult struct {
	Status          models.BreakStatus `json:"status"`
	BreakID         uint               `json:"break_id"`
	InstantApproval bool               `json:"instant_approval"`
	Balances        DailyEntitlement   `json:"balances"`
}

// RequestBreak runs the eligibility rules, decides instant approval from
// the team's current on-break headcount, and creates the request. The
// "one live break per interval" invariant is enforced twice: the
// eligibility pre-check gives a readable reason, the partial unique
// index closes the race window between two simultaneous requests.
func (s *BreakService) RequestBreak(ctx context.Context, userID, attendanceID uint, breakType models.BreakType, teamID *uint, reason string) (RequestBreakResult, error) {
	eligibility, err := s.CanRequestBreak(ctx, userID, attendanceID, breakType, time.Now())
	if err != nil {
		return RequestBreakResult{}, err
	}
	if !eligibility.CanRequest {
		return RequestBreakResult{}, ErrEligibility(eligibility.Reason)
	}

	instant, err := s.instantApprovalAllowed(ctx, teamID)
	if err != nil {
		return RequestBreakResult{}, err
	}

	request := models.BreakRequest{
		UserID:       userID,
		AttendanceID: attendanceID,
		TeamID:       teamID,
		Type:         breakType,
		Status:       models.BreakPending,
		Reason:       reason,
	}
	if instant {
		now := time.Now()
		request.Status = models.BreakActive
		request.StartedAt = &now
	}

	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		if isLiveBreakConflict(err) {
			return RequestBreakResult{}, ErrConflict("a break is already pending or active for this shift")
		}
		return RequestBreakResult{}, fmt.Errorf("creating break request: %w", err)
	}

	s.notifier.NotifyChange("break_requests", "insert", userID, teamID)

	balances, err := s.GetDailyEntitlements(ctx, userID, time.Now())
	if err != nil {
		return RequestBreakResult{}, err
	}
	return RequestBreakResult{
		Status:          request.Status,
		BreakID:         request.ID,
		InstantApproval: instant,
		Balances:        balances,
	}, nil
}

// instantApprovalAllowed lets a break auto-start while fewer than the
// configured number of teammates are already on one. Requests without a
// team always queue for approval.
func (s *BreakService) instantApprovalAllowed(ctx context.Context, teamID *uint) (bool, error) {
	if teamID == nil {
		return false, nil
	}
	var onBreak int64
	err := s.db.WithContext(ctx).Model(&models.BreakRequest{}).
		Where("team_id = ? AND status = ?", *teamID, models.BreakActive).
		Count(&onBreak).Error
	if err != nil {
		return false, fmt.Errorf("counting on-break teammates: %w", err)
	}
	return onBreak < int64(s.cfg.InstantApprovalMax), nil
}

// ApproveBreak moves pending -> approved. The status guard makes racing
// moderations safe: whichever lands first wins, the loser sees a
// conflict instead of double-applying approved_by.
func (s *BreakService) ApproveBreak(ctx context.Context, breakID uint, actor *models.User) error {
	request, err := s.loadBreak(ctx, breakID)
	if err != nil {
		return err
	}
	if err := s.requireModerationScope(ctx, actor, request.TeamID); err != nil {
		return err
	}

	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.BreakRequest{}).
		Where("id = ? AND status = ?", breakID, models.BreakPending).
		Updates(map[string]any{
			"status":      models.BreakApproved,
			"approved_by": actor.ID,
			"approved_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("approving break %d: %w", breakID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConflict("break %d is no longer pending", breakID)
	}

	s.notifier.NotifyChange("break_requests", "update", request.UserID, request.TeamID)
	return nil
}

// DenyBreak moves pending -> denied. Terminal.
func (s *BreakService) DenyBreak(ctx context.Context, breakID uint, actor *models.User, reason string) error {
	request, err := s.loadBreak(ctx, breakID)
	if err != nil {
		return err
	}
	if err := s.requireModerationScope(ctx, actor, request.TeamID); err != nil {
		return err
	}

	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.BreakRequest{}).
		Where("id = ? AND status = ?", breakID, models.BreakPending).
		Updates(map[string]any{
			"status":        models.BreakDenied,
			"denied_by":     actor.ID,
			"denied_at":     now,
			"denial_reason": reason,
		})
	if result.Error != nil {
		return fmt.Errorf("denying break %d: %w", breakID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConflict("break %d is no longer pending", breakID)
	}

	s.notifier.NotifyChange("break_requests", "update", request.UserID, request.TeamID)
	return nil
}

// StartApprovedBreak moves approved -> active for the requesting worker.
func (s *BreakService) StartApprovedBreak(ctx context.Context, breakID, userID uint) (time.Time, error) {
	request, err := s.loadBreak(ctx, breakID)
	if err != nil {
		return time.Time{}, err
	}
	if request.UserID != userID {
		return time.Time{}, ErrAuthorization("break %d belongs to another user", breakID)
	}

	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.BreakRequest{}).
		Where("id = ? AND user_id = ? AND status = ?", breakID, userID, models.BreakApproved).
		Updates(map[string]any{
			"status":     models.BreakActive,
			"started_at": now,
		})
	if result.Error != nil {
		return time.Time{}, fmt.Errorf("starting break %d: %w", breakID, result.Error)
	}
	if result.RowsAffected == 0 {
		return time.Time{}, ErrConflict("break %d is not approved (status %s)", breakID, request.Status)
	}

	s.notifier.NotifyChange("break_requests", "update", userID, request.TeamID)
	return now, nil
}

// EndBreak moves active -> completed for the requesting worker; admin
// termination goes through ForceEndBreak. Rows written before the type
// enum settled can fail the status update on a type check; normalize
// once and retry, surfacing the original error if the retry fails too.
func (s *BreakService) EndBreak(ctx context.Context, breakID, userID uint) (*models.BreakRequest, error) {
	request, err := s.loadBreak(ctx, breakID)
	if err != nil {
		return nil, err
	}
	if request.UserID != userID {
		return nil, ErrAuthorization("break %d belongs to another user", breakID)
	}

	now := time.Now()
	updates := map[string]any{
		"status":   models.BreakCompleted,
		"ended_at": now,
	}
	result := s.db.WithContext(ctx).Model(&models.BreakRequest{}).
		Where("id = ? AND user_id = ? AND status = ?", breakID, userID, models.BreakActive).
		Updates(updates)
	if result.Error != nil && isLegacyTypeError(result.Error) {
		log.Printf("break %d carries a legacy type, normalizing and retrying end", breakID)
		updates["type"] = models.NormalizeBreakType(string(request.Type))
		retry := s.db.WithContext(ctx).Model(&models.BreakRequest{}).
			Where("id = ? AND user_id = ? AND status = ?", breakID, userID, models.BreakActive).
			Updates(updates)
		if retry.Error != nil {
			return nil, fmt.Errorf("ending break %d: %w", breakID, result.Error)
		}
		result = retry
	} else if result.Error != nil {
		return nil, fmt.Errorf("ending break %d: %w", breakID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrConflict("break %d is not active (status %s)", breakID, request.Status)
	}

	s.notifier.NotifyChange("break_requests", "update", request.UserID, request.TeamID)
	return s.loadBreak(ctx, breakID)
}

// ForceEndBreak is the admin variant of EndBreak. A force-end that
// matches no active row is an explicit error, never a silent no-op.
func (s *BreakService) ForceEndBreak(ctx context.Context, breakID uint, actor *models.User, reason string) (*models.BreakRequest, error) {
	request, err := s.loadBreak(ctx, breakID)
	if err != nil {
		return nil, err
	}
	if err := s.requireModerationScope(ctx, actor, request.TeamID); err != nil {
		return nil, err
	}

	if reason == "" {
		reason = "Force ended by admin"
	}
	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.BreakRequest{}).
		Where("id = ? AND status = ?", breakID, models.BreakActive).
		Updates(map[string]any{
			"status":   models.BreakCompleted,
			"ended_at": now,
			"reason":   reason,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("force-ending break %d: %w", breakID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrConflict("break %d is not active (status %s)", breakID, request.Status)
	}

	log.Printf("break %d force-ended by %s", breakID, actor.Username)
	s.notifier.NotifyChange("break_requests", "update", request.UserID, request.TeamID)
	return s.loadBreak(ctx, breakID)
}

// GetPendingBreakRequests returns pending requests inside the actor's
// moderation scope. Super admins may pass no team filter to see all.
func (s *BreakService) GetPendingBreakRequests(ctx context.Context, actor *models.User, teamID *uint) ([]models.BreakRequest, error) {
	if !actor.CanModerate() {
		return nil, ErrAuthorization("user %s cannot moderate break requests", actor.Username)
	}

	query := s.db.WithContext(ctx).Preload("User").
		Where("status = ?", models.BreakPending).
		Order("created_at asc")

	if actor.IsSuperAdmin() {
		if teamID != nil {
			query = query.Where("team_id = ?", *teamID)
		}
	} else {
		scoped, err := s.moderatedTeamIDs(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if teamID != nil {
			if !containsTeam(scoped, *teamID) {
				return nil, ErrAuthorization("user %s does not moderate team %d", actor.Username, *teamID)
			}
			query = query.Where("team_id = ?", *teamID)
		} else {
			if len(scoped) == 0 {
				return []models.BreakRequest{}, nil
			}
			query = query.Where("team_id IN ?", scoped)
		}
	}

	var requests []models.BreakRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("loading pending break requests: %w", err)
	}
	return requests, nil
}

func (s *BreakService) loadBreak(ctx context.Context, breakID uint) (*models.BreakRequest, error) {
	var request models.BreakRequest
	err := s.db.WithContext(ctx).First(&request, breakID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound("break request %d not found", breakID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading break request %d: %w", breakID, err)
	}
	return &request, nil
}

// requireModerationScope verifies role and team scope before any
// moderation mutation. A mismatch is a denied operation, not "not found".
func (s *BreakService) requireModerationScope(ctx context.Context, actor *models.User, teamID *uint) error {
	if actor.IsSuperAdmin() {
		return nil
	}
	if !actor.CanModerate() {
		return ErrAuthorization("user %s cannot moderate break requests", actor.Username)
	}
	if teamID == nil {
		return ErrAuthorization("request has no team scope; only a super admin may moderate it")
	}
	scoped, err := s.moderatedTeamIDs(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !containsTeam(scoped, *teamID) {
		return ErrAuthorization("user %s does not moderate team %d", actor.Username, *teamID)
	}
	return nil
}

func (s *BreakService) moderatedTeamIDs(ctx context.Context, userID uint) ([]uint, error) {
	var assignments []models.TeamModerator
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("loading moderation assignments: %w", err)
	}
	teamIDs := make([]uint, 0, len(assignments))
	for _, a := range assignments {
		teamIDs = append(teamIDs, a.TeamID)
	}
	return teamIDs, nil
}

func containsTeam(teamIDs []uint, teamID uint) bool {
	for _, id := range teamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

// isLiveBreakConflict recognizes the partial unique index guarding "one
// live break per attendance interval". It is the only unique index on
// break_requests, so a translated duplicate-key error is unambiguous.
func isLiveBreakConflict(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "idx_break_one_live_per_attendance")
}

// isLegacyTypeError recognizes a write rejected because the row carries
// a pre-migration type value.
func isLegacyTypeError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "break_requests_type") ||
		strings.Contains(msg, "invalid input value for enum")
}
