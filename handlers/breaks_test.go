package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"breakdesk/middleware"
	"breakdesk/models"

	"github.com/stretchr/testify/assert"
)

func requestWithUser(method, target, body string, user *models.User) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, user)
	return req.WithContext(ctx)
}

func TestParseBreakType(t *testing.T) {
	tests := []struct {
		raw  string
		want models.BreakType
		ok   bool
	}{
		{"coffee", models.BreakCoffee, true},
		{"wc", models.BreakWC, true},
		{"lunch", models.BreakLunch, true},
		{"smoke", "", false},
		{"", "", false},
		// Legacy spellings are normalized on read, never accepted on
		// new requests.
		{"coffee_break", "", false},
		{"toilet", "", false},
	}

	for _, tt := range tests {
		got, ok := parseBreakType(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
	}
}

func TestRequestBreakRejectsUnknownType(t *testing.T) {
	h := NewBreakHandler(nil, nil)
	user := &models.User{ID: 7, Username: "worker", Role: models.RoleEmployee}

	req := requestWithUser(http.MethodPost, "/breaks",
		`{"attendance_id": 3, "type": "smoke"}`, user)
	rec := httptest.NewRecorder()
	h.RequestBreak(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "coffee, wc, lunch")
}

func TestRequestBreakRequiresAttendanceID(t *testing.T) {
	h := NewBreakHandler(nil, nil)
	user := &models.User{ID: 7, Username: "worker", Role: models.RoleEmployee}

	req := requestWithUser(http.MethodPost, "/breaks", `{"type": "coffee"}`, user)
	rec := httptest.NewRecorder()
	h.RequestBreak(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "attendance_id")
}
