package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleUser        UserRole = "user"
	UserRoleManager     UserRole = "manager"
	UserRoleDeveloper   UserRole = "developer"
	UserRoleSystemAdmin UserRole = "system_admin"
)

// User is the local projection of the identity directory. Email is the
// handle used for mentions.
type User struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName string         `gorm:"type:varchar(150)" json:"first_name"`
	LastName  string         `gorm:"type:varchar(150)" json:"last_name"`
	Role      UserRole       `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Assignments     []TaskAssignment `gorm:"foreignKey:UserID" json:"-"`
	TeamMemberships []TeamMembership `gorm:"foreignKey:UserID" json:"-"`
}

// FullName joins first and last name, falling back to the email.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
