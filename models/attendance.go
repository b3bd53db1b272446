package models

import (
	"time"

	"gorm.io/gorm"
)

// AttendanceInterval is a single clock-in to clock-out span.
// A partial unique index (see database.Init) guarantees at most one
// open interval (clock_out_at IS NULL) per user.
type AttendanceInterval struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	User       *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ClockInAt  time.Time      `gorm:"not null" json:"clock_in_at"`
	ClockOutAt *time.Time     `json:"clock_out_at"`
}

func (a *AttendanceInterval) IsOpen() bool {
	return a.ClockOutAt == nil
}
