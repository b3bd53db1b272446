package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"breakdesk/database"
	"breakdesk/middleware"
	"breakdesk/models"
	"breakdesk/realtime"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Team{}, &models.TeamModerator{}))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return db
}

// streamRequest carries the user and an already-canceled context so an
// accepted subscription returns instead of blocking on the feed.
func streamRequest(target string, user *models.User) *http.Request {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return req.WithContext(context.WithValue(ctx, middleware.UserContextKey, user))
}

func TestStreamTeamScopeRequiresAssignment(t *testing.T) {
	db := newHandlerDB(t)
	admin := &models.User{Username: "admin", FullName: "Admin", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(admin).Error)
	require.NoError(t, db.Create(&models.TeamModerator{UserID: admin.ID, TeamID: 1}).Error)

	h := NewEventsHandler(realtime.NewBroker())

	rec := httptest.NewRecorder()
	h.Stream(rec, streamRequest("/events?team_id=1", admin))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	h.Stream(rec, streamRequest("/events?team_id=2", admin))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "moderation scope")
}

func TestStreamTeamScopeEmployeeForbidden(t *testing.T) {
	h := NewEventsHandler(realtime.NewBroker())
	worker := &models.User{ID: 3, Username: "worker", Role: models.RoleEmployee}

	rec := httptest.NewRecorder()
	h.Stream(rec, streamRequest("/events?team_id=1", worker))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "moderation rights")
}

func TestStreamTeamScopeSuperAdminAnyTeam(t *testing.T) {
	h := NewEventsHandler(realtime.NewBroker())
	root := &models.User{ID: 1, Username: "root", Role: models.RoleSuperAdmin}

	rec := httptest.NewRecorder()
	h.Stream(rec, streamRequest("/events?team_id=9", root))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
}
