package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"breakdesk/config"
	"breakdesk/middleware"
	"breakdesk/models"
	"breakdesk/services"
)

type BreakHandler struct {
	config *config.Config
	breaks *services.BreakService
}

func NewBreakHandler(cfg *config.Config, breaks *services.BreakService) *BreakHandler {
	return &BreakHandler{config: cfg, breaks: breaks}
}

type requestBreakBody struct {
	AttendanceID uint   `json:"attendance_id"`
	Type         string `json:"type"`
	TeamID       *uint  `json:"team_id"`
	Reason       string `json:"reason"`
}

func (h *BreakHandler) RequestBreak(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var body requestBreakBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if body.AttendanceID == 0 {
		writeBadRequest(w, "attendance_id is required")
		return
	}
	breakType, ok := parseBreakType(body.Type)
	if !ok {
		writeBadRequest(w, "type must be one of coffee, wc, lunch")
		return
	}

	// Requests scope to the caller's team unless one is given explicitly.
	teamID := body.TeamID
	if teamID == nil {
		teamID = user.TeamID
	}

	result, err := h.breaks.RequestBreak(r.Context(), user.ID, body.AttendanceID,
		breakType, teamID, body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *BreakHandler) StartBreak(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	breakID, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid break ID")
		return
	}

	startedAt, err := h.breaks.StartApprovedBreak(r.Context(), breakID, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]time.Time{"started_at": startedAt})
}

func (h *BreakHandler) EndBreak(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	breakID, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid break ID")
		return
	}

	request, err := h.breaks.EndBreak(r.Context(), breakID, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

// Eligibility is the read-only preview of RequestBreak's rule chain.
func (h *BreakHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	attendanceID, err := strconv.ParseUint(r.URL.Query().Get("attendance_id"), 10, 32)
	if err != nil {
		writeBadRequest(w, "attendance_id is required")
		return
	}
	breakType := models.NormalizeBreakType(r.URL.Query().Get("type"))

	result, err := h.breaks.CanRequestBreak(r.Context(), user.ID, uint(attendanceID), breakType, parseDate(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *BreakHandler) Entitlements(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	targetID := user.ID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			writeBadRequest(w, "invalid user_id")
			return
		}
		if uint(id) != user.ID && !user.CanModerate() {
			writeJSON(w, http.StatusForbidden, ErrorResponse{Message: "cannot read another user's entitlements"})
			return
		}
		targetID = uint(id)
	}

	ent, err := h.breaks.GetDailyEntitlements(r.Context(), targetID, parseDate(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ent)
}

// parseBreakType accepts the current break types only. Legacy spellings
// stored before the vocabulary settled are normalized on read, never
// accepted on new requests.
func parseBreakType(raw string) (models.BreakType, bool) {
	switch t := models.BreakType(raw); t {
	case models.BreakCoffee, models.BreakWC, models.BreakLunch:
		return t, true
	default:
		return "", false
	}
}

func parseDate(r *http.Request) time.Time {
	if raw := r.URL.Query().Get("date"); raw != "" {
		if d, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
			return d
		}
	}
	return time.Now()
}
