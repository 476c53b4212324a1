package models

import (
	"strings"
	"time"
)

// Role names stored in User.Role.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	// Role is a comma separated list, e.g. "USER,ADMIN".
	Role string `gorm:"size:100;not null;default:'USER'" json:"role"`

	Recipes []Recipe `gorm:"foreignKey:UserID" json:"-"`
	Images  []Image  `gorm:"foreignKey:UserID" json:"-"`
}

// Roles splits Role into its trimmed, non-empty parts.
func (u User) Roles() []string {
	var roles []string
	for _, r := range strings.Split(u.Role, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u User) IsAdmin() bool {
	for _, r := range u.Roles() {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}
