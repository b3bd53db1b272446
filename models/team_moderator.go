package models

import (
	"time"

	"gorm.io/gorm"
)

// TeamModerator grants an admin moderation authority over a team.
// An admin may moderate several teams; super admins moderate everything
// and do not need rows here.
type TeamModerator struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TeamID    uint           `gorm:"not null;index" json:"team_id"`
	Team      *Team          `gorm:"foreignKey:TeamID" json:"team,omitempty"`
}
