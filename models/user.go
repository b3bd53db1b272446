package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleEmployee   Role = "employee"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

type User struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
	Username           string         `gorm:"uniqueIndex;not null;size:100" json:"username"`
	FullName           string         `gorm:"not null;size:200" json:"full_name"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	Role               Role           `gorm:"not null;size:20" json:"role"`
	MustChangePassword bool           `gorm:"default:true" json:"must_change_password"`
	TeamID             *uint          `gorm:"index" json:"team_id"`
	Team               *Team          `gorm:"foreignKey:TeamID" json:"team,omitempty"`
}

func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

func (u *User) IsEmployee() bool {
	return u.Role == RoleEmployee
}

// CanModerate reports whether the user's role allows moderation at all.
// Team scope is checked separately against TeamModerator assignments.
func (u *User) CanModerate() bool {
	return u.IsAdmin() || u.IsSuperAdmin()
}

func (u *User) CanExport() bool {
	return u.IsAdmin() || u.IsSuperAdmin()
}

func (u *User) CanManageTeams() bool {
	return u.IsSuperAdmin()
}
