package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"breakdesk/database"
	"breakdesk/middleware"
	"breakdesk/models"
	"breakdesk/realtime"
)

type EventsHandler struct {
	broker *realtime.Broker
}

func NewEventsHandler(broker *realtime.Broker) *EventsHandler {
	return &EventsHandler{broker: broker}
}

// moderatesTeam mirrors the moderation handlers' scoping: super admins
// see every team, admins only the teams they are assigned to.
func moderatesTeam(user *models.User, teamID uint) bool {
	if user.IsSuperAdmin() {
		return true
	}
	var count int64
	database.GetDB().Model(&models.TeamModerator{}).
		Where("user_id = ? AND team_id = ?", user.ID, teamID).
		Count(&count)
	return count > 0
}

// Stream serves a server-sent-events feed of change notifications.
// Employees get their own events; moderators may subscribe to a team
// they moderate; super admins may subscribe unscoped.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "streaming unsupported"})
		return
	}

	scope := realtime.Scope{UserID: user.ID}
	if raw := r.URL.Query().Get("team_id"); raw != "" {
		teamID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			writeBadRequest(w, "invalid team_id")
			return
		}
		if !user.CanModerate() {
			writeJSON(w, http.StatusForbidden, ErrorResponse{Message: "team feeds require moderation rights"})
			return
		}
		if !moderatesTeam(user, uint(teamID)) {
			writeJSON(w, http.StatusForbidden, ErrorResponse{Message: "team is outside your moderation scope"})
			return
		}
		scope = realtime.Scope{TeamID: uint(teamID)}
	} else if user.IsSuperAdmin() && r.URL.Query().Get("all") == "true" {
		scope = realtime.Scope{}
	}

	id, events := h.broker.Subscribe(scope)
	defer h.broker.Unsubscribe(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
