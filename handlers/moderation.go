package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"breakdesk/config"
	"breakdesk/database"
	"breakdesk/middleware"
	"breakdesk/models"
	"breakdesk/services"
)

type ModerationHandler struct {
	config     *config.Config
	breaks     *services.BreakService
	attendance *services.AttendanceService
}

func NewModerationHandler(cfg *config.Config, breaks *services.BreakService, attendance *services.AttendanceService) *ModerationHandler {
	return &ModerationHandler{config: cfg, breaks: breaks, attendance: attendance}
}

// getAuthorizedTeamIDs returns the team IDs the admin moderates; super
// admins get every team.
func (h *ModerationHandler) getAuthorizedTeamIDs(user *models.User) []uint {
	db := database.GetDB()

	if user.IsSuperAdmin() {
		var teams []models.Team
		db.Find(&teams)
		teamIDs := make([]uint, 0, len(teams))
		for _, t := range teams {
			teamIDs = append(teamIDs, t.ID)
		}
		return teamIDs
	}

	var assignments []models.TeamModerator
	db.Where("user_id = ?", user.ID).Find(&assignments)

	teamIDs := make([]uint, 0, len(assignments))
	for _, a := range assignments {
		teamIDs = append(teamIDs, a.TeamID)
	}
	return teamIDs
}

func (h *ModerationHandler) PendingRequests(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var teamID *uint
	if raw := r.URL.Query().Get("team_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			writeBadRequest(w, "invalid team_id")
			return
		}
		tid := uint(id)
		teamID = &tid
	}

	requests, err := h.breaks.GetPendingBreakRequests(r.Context(), user, teamID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *ModerationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	breakID, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid break ID")
		return
	}

	if err := h.breaks.ApproveBreak(r.Context(), breakID, user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type moderationBody struct {
	Reason string `json:"reason"`
}

func (h *ModerationHandler) Deny(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	breakID, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid break ID")
		return
	}

	var body moderationBody
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&body)
	}

	if err := h.breaks.DenyBreak(r.Context(), breakID, user, body.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *ModerationHandler) ForceEnd(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	breakID, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid break ID")
		return
	}

	var body moderationBody
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&body)
	}

	request, err := h.breaks.ForceEndBreak(r.Context(), breakID, user, body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

// Roster shows current presence for every member of the moderated teams.
func (h *ModerationHandler) Roster(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	teamIDs := h.getAuthorizedTeamIDs(user)
	entries, err := h.attendance.Roster(r.Context(), teamIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// ExportCSV streams one month of attendance for a moderated user.
func (h *ModerationHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	targetID, err := strconv.ParseUint(r.URL.Query().Get("user_id"), 10, 32)
	if err != nil {
		writeBadRequest(w, "user_id is required")
		return
	}

	var target models.User
	if err := database.GetDB().First(&target, targetID).Error; err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "user not found"})
		return
	}
	if !user.IsSuperAdmin() {
		authorized := false
		for _, id := range h.getAuthorizedTeamIDs(user) {
			if target.TeamID != nil && *target.TeamID == id {
				authorized = true
				break
			}
		}
		if !authorized {
			writeJSON(w, http.StatusForbidden, ErrorResponse{Message: "user is outside your moderation scope"})
			return
		}
	}

	year, month := parseYearMonth(r)
	entries, err := h.attendance.History(r.Context(), uint(targetID), year, month)
	if err != nil {
		writeError(w, err)
		return
	}

	filename := fmt.Sprintf("attendance_%s_%d_%02d.csv", target.Username, year, int(month))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"Employee", "Clock In", "Clock Out", "Work Minutes", "Break Minutes"})

	// Write data
	for _, entry := range entries {
		clockOut := ""
		if entry.Interval.ClockOutAt != nil {
			clockOut = entry.Interval.ClockOutAt.Format(time.RFC3339)
		}
		writer.Write([]string{
			target.DisplayName(),
			entry.Interval.ClockInAt.Format(time.RFC3339),
			clockOut,
			strconv.Itoa(entry.WorkMinutes),
			strconv.Itoa(entry.BreakMinutes),
		})
	}
}
