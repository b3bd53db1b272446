package handlers

import (
	"net/http"
	"strconv"
	"time"

	"breakdesk/config"
	"breakdesk/middleware"
	"breakdesk/models"
	"breakdesk/services"

	"github.com/go-chi/chi/v5"
)

type AttendanceHandler struct {
	config     *config.Config
	attendance *services.AttendanceService
	breaks     *services.BreakService
}

func NewAttendanceHandler(cfg *config.Config, attendance *services.AttendanceService, breaks *services.BreakService) *AttendanceHandler {
	return &AttendanceHandler{config: cfg, attendance: attendance, breaks: breaks}
}

func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	interval, err := h.attendance.CheckIn(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, interval)
}

func (h *AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	attendanceID, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid attendance ID")
		return
	}

	interval, err := h.attendance.CheckOut(r.Context(), attendanceID, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, interval)
}

type meResponse struct {
	State        services.AttendanceState   `json:"state"`
	OpenInterval *models.AttendanceInterval `json:"open_interval,omitempty"`
	Entitlements *services.DailyEntitlement `json:"entitlements,omitempty"`
}

// Me returns the caller's derived presence plus today's balances.
func (h *AttendanceHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	state, err := h.attendance.CurrentState(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	ent, err := h.breaks.GetDailyEntitlements(r.Context(), user.ID, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	interval, err := h.attendance.OpenInterval(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		State:        state,
		OpenInterval: interval,
		Entitlements: &ent,
	})
}

func (h *AttendanceHandler) History(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	year, month := parseYearMonth(r)
	entries, err := h.attendance.History(r.Context(), user.ID, year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func parseIDParam(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	return uint(id), err
}

func parseYearMonth(r *http.Request) (int, time.Month) {
	now := time.Now()
	year, month := now.Year(), now.Month()

	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil && y >= 2000 && y <= 2100 {
		year = y
	}
	if m, err := strconv.Atoi(r.URL.Query().Get("month")); err == nil && m >= 1 && m <= 12 {
		month = time.Month(m)
	}
	return year, month
}
