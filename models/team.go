package models

import "gorm.io/gorm"

// Team groups users that share ownership of stores and cabins.
type Team struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`

	// Relations
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	Cabins  []Cabin      `gorm:"foreignKey:TeamID" json:"cabins,omitempty"`
	Tasks   []Task       `gorm:"foreignKey:TeamID" json:"tasks,omitempty"`
}

// Team member roles
const (
	TeamRoleAdmin  = "ADMIN"
	TeamRoleMember = "MEMBER"
)

// TeamMember links a user to a team with a role. The team creator is
// inserted as ADMIN automatically.
type TeamMember struct {
	gorm.Model
	TeamID uint   `gorm:"not null;index;uniqueIndex:idx_team_user" json:"team_id"`
	UserID uint   `gorm:"not null;index;uniqueIndex:idx_team_user" json:"user_id"`
	Role   string `gorm:"default:'MEMBER'" json:"role"` // ADMIN, MEMBER

	// Relations
	Team Team `json:"-"`
	User User `json:"-"`
}

// Invitation statuses
const (
	InvitationPending  = "PENDING"
	InvitationAccepted = "ACCEPTED"
	InvitationRejected = "REJECTED"
)

// Invitation is a pending request to join a team, addressed by email or
// phone. Accepting one creates the TeamMember record.
type Invitation struct {
	gorm.Model
	TeamID      uint    `gorm:"not null;index" json:"team_id"`
	Email       *string `gorm:"index" json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Token       string  `gorm:"uniqueIndex;not null" json:"token"`
	CreatedByID uint    `gorm:"not null;index" json:"created_by_id"`
	Status      string  `gorm:"default:'PENDING'" json:"status"` // PENDING, ACCEPTED, REJECTED

	// Relations
	Team      Team `json:"team,omitempty"`
	CreatedBy User `gorm:"foreignKey:CreatedByID" json:"-"`
}
