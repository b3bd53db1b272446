package handlers

import (
	"encoding/json"
	"net/http"

	"breakdesk/database"
	"breakdesk/models"
)

// TeamHandler carries the minimal team administration the moderation
// scope depends on: list/create teams and assign moderators.
type TeamHandler struct{}

func NewTeamHandler() *TeamHandler {
	return &TeamHandler{}
}

func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	var teams []models.Team
	if err := database.GetDB().Order("name asc").Find(&teams).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "failed to load teams"})
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

type createTeamBody struct {
	Name string `json:"name"`
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createTeamBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	team := models.Team{Name: body.Name}
	if err := database.GetDB().Create(&team).Error; err != nil {
		writeJSON(w, http.StatusConflict, ErrorResponse{Message: "team already exists"})
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

type assignModeratorBody struct {
	UserID uint `json:"user_id"`
	TeamID uint `json:"team_id"`
}

func (h *TeamHandler) AssignModerator(w http.ResponseWriter, r *http.Request) {
	var body assignModeratorBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == 0 || body.TeamID == 0 {
		writeBadRequest(w, "user_id and team_id are required")
		return
	}

	db := database.GetDB()

	var moderator models.User
	if err := db.First(&moderator, body.UserID).Error; err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "user not found"})
		return
	}
	if !moderator.CanModerate() {
		writeBadRequest(w, "user is not an admin")
		return
	}

	var existing int64
	db.Model(&models.TeamModerator{}).
		Where("user_id = ? AND team_id = ?", body.UserID, body.TeamID).
		Count(&existing)
	if existing > 0 {
		writeJSON(w, http.StatusConflict, ErrorResponse{Message: "assignment already exists"})
		return
	}

	assignment := models.TeamModerator{UserID: body.UserID, TeamID: body.TeamID}
	if err := db.Create(&assignment).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "failed to create assignment"})
		return
	}
	writeJSON(w, http.StatusCreated, assignment)
}
