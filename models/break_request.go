package models

import (
	"time"

	"gorm.io/gorm"
)

type BreakType string

const (
	BreakCoffee BreakType = "coffee"
	BreakWC     BreakType = "wc"
	BreakLunch  BreakType = "lunch"
)

type BreakStatus string

const (
	BreakPending   BreakStatus = "pending"
	BreakApproved  BreakStatus = "approved"
	BreakDenied    BreakStatus = "denied"
	BreakActive    BreakStatus = "active"
	BreakCompleted BreakStatus = "completed"
)

// LiveStatuses are the states in which a break request blocks a new one
// for the same attendance interval.
var LiveStatuses = []BreakStatus{BreakPending, BreakApproved, BreakActive}

type BreakRequest struct {
	ID           uint                `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	DeletedAt    gorm.DeletedAt      `gorm:"index" json:"-"`
	UserID       uint                `gorm:"not null;index" json:"user_id"`
	User         *User               `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AttendanceID uint                `gorm:"not null;index" json:"attendance_id"`
	Attendance   *AttendanceInterval `gorm:"foreignKey:AttendanceID" json:"attendance,omitempty"`
	TeamID       *uint               `gorm:"index" json:"team_id"`
	Type         BreakType           `gorm:"not null;size:20" json:"type"`
	Status       BreakStatus         `gorm:"not null;size:20;index" json:"status"`
	StartedAt    *time.Time          `json:"started_at"`
	EndedAt      *time.Time          `json:"ended_at"`
	ApprovedBy   *uint               `json:"approved_by"`
	ApprovedAt   *time.Time          `json:"approved_at"`
	DeniedBy     *uint               `json:"denied_by"`
	DeniedAt     *time.Time          `json:"denied_at"`
	DenialReason string              `gorm:"size:500" json:"denial_reason,omitempty"`
	Reason       string              `gorm:"size:500" json:"reason,omitempty"`
}

// IsMicro reports whether the break draws from the shared micro pool
// (coffee + wc) rather than the lunch pool.
func (t BreakType) IsMicro() bool {
	return t == BreakCoffee || t == BreakWC
}

func (s BreakStatus) IsTerminal() bool {
	return s == BreakDenied || s == BreakCompleted
}

// NormalizeBreakType maps legacy type values onto the current three-way
// enum. Every read path and the end-break retry shim funnel through here;
// normalized values are never written back outside that shim.
func NormalizeBreakType(raw string) BreakType {
	switch BreakType(raw) {
	case BreakCoffee, BreakWC, BreakLunch:
		return BreakType(raw)
	}
	switch raw {
	case "coffee_break", "tea":
		return BreakCoffee
	case "toilet", "restroom", "bathroom":
		return BreakWC
	case "lunch_break", "meal", "dinner":
		return BreakLunch
	}
	// Unknown legacy values land in the micro pool rather than the
	// larger lunch allowance.
	return BreakCoffee
}

// AfterFind keeps legacy rows presentable without rewriting them.
func (b *BreakRequest) AfterFind(tx *gorm.DB) error {
	b.Type = NormalizeBreakType(string(b.Type))
	return nil
}
