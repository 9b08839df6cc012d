package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account in the marketplace. Platform staff are
// flagged with IsAdmin; everyone else is either a client booking cabins
// or a landlord (arrendador) listing them.
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	TokenVersion int    `gorm:"default:0" json:"-"`

	// Profile information
	Name     *string `json:"name,omitempty"`
	LastName *string `json:"last_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Timezone string  `gorm:"default:'UTC'" json:"timezone"`
	Language string  `gorm:"default:'es'" json:"language"`

	// Account status
	Role     string `gorm:"default:'cliente'" json:"role"` // cliente, arrendador
	IsActive bool   `gorm:"default:true" json:"is_active"`
	IsAdmin  bool   `gorm:"default:false" json:"is_admin"`

	// Relations
	Memberships  []TeamMember  `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
	Stores       []Store       `gorm:"foreignKey:OwnerID" json:"stores,omitempty"`
	Reservations []Reservation `gorm:"foreignKey:ClientID" json:"reservations,omitempty"`
	Reviews      []Review      `gorm:"foreignKey:UserID" json:"reviews,omitempty"`
	Nodes        []Node        `gorm:"foreignKey:OwnerID" json:"nodes,omitempty"`
}

// IsLandlord reports whether the account lists cabins outside the team model.
func (u *User) IsLandlord() bool {
	return u.Role == RoleLandlord
}

const (
	RoleClient   = "cliente"
	RoleLandlord = "arrendador"
)

// RefreshToken stores issued refresh tokens so they can be revoked
// independently of the access token lifetime.
type RefreshToken struct {
	gorm.Model
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Token     string     `gorm:"uniqueIndex;not null" json:"-"`
	UserAgent string     `json:"user_agent"`
	IPAddress string     `json:"ip_address"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`

	// Relations
	User User `json:"-"`
}
