package models

import (
	"time"

	"gorm.io/gorm"
)

type TeamRole string

const (
	TeamRoleOwner     TeamRole = "owner"
	TeamRoleAdmin     TeamRole = "admin"
	TeamRoleMember    TeamRole = "member"
	TeamRoleDeveloper TeamRole = "developer"
	TeamRoleInvited   TeamRole = "invited"
)

// Valid reports whether r is one of the known roles.
func (r TeamRole) Valid() bool {
	switch r {
	case TeamRoleOwner, TeamRoleAdmin, TeamRoleMember, TeamRoleDeveloper, TeamRoleInvited:
		return true
	}
	return false
}

type MembershipStatus string

const (
	MembershipActive  MembershipStatus = "active"
	MembershipPending MembershipStatus = "pending"
	MembershipLeft    MembershipStatus = "left"
	MembershipRemoved MembershipStatus = "removed"
)

type TeamMembership struct {
	ID          uint64           `gorm:"primarykey" json:"id"`
	TeamID      uint64           `gorm:"not null;uniqueIndex:idx_team_memberships_team_user" json:"team_id"`
	UserID      uint64           `gorm:"not null;uniqueIndex:idx_team_memberships_team_user;index" json:"user_id"`
	Role        TeamRole         `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	Status      MembershipStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	InvitedByID *uint64          `json:"invited_by_id"`
	JoinedAt    *time.Time       `json:"joined_at"`
	Note        string           `gorm:"type:text" json:"note"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// BeforeSave stamps JoinedAt the first time a membership becomes active.
func (m *TeamMembership) BeforeSave(tx *gorm.DB) error {
	if m.Status == MembershipActive && m.JoinedAt == nil {
		now := time.Now()
		m.JoinedAt = &now
	}
	return nil
}

// CanManage reports whether the role may administer the team.
func (m TeamMembership) CanManage() bool {
	return m.Status == MembershipActive && (m.Role == TeamRoleOwner || m.Role == TeamRoleAdmin)
}
