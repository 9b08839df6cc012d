package models

import "gorm.io/gorm"

// Store templates
const (
	TemplateClassic    = "plantilla1"
	TemplateModern     = "plantilla2"
	TemplateMinimalist = "plantilla3"
)

// Store (tienda) is a storefront owned by a user. Teams associated with
// the store get management access to it and its catalog.
type Store struct {
	gorm.Model
	OwnerID uint `gorm:"not null;index" json:"owner_id"`

	// Basic information
	Name         string  `gorm:"not null" json:"name"`
	Slug         string  `gorm:"uniqueIndex;not null" json:"slug"` // subdomain, lowercase letters/digits/hyphens
	Template     string  `gorm:"default:'plantilla1'" json:"template"`
	CustomDomain *string `gorm:"uniqueIndex" json:"custom_domain,omitempty"`

	// Visual configuration
	LogoURL        string `json:"logo_url"`
	PrimaryColor   string `gorm:"default:'#3498db'" json:"primary_color"`
	SecondaryColor string `gorm:"default:'#2ecc71'" json:"secondary_color"`
	Font           string `gorm:"default:'Inter'" json:"font"`
	ExtraConfig    string `gorm:"type:text" json:"extra_config"` // JSON blob: banners, layout, etc.

	// Status
	IsActive bool `gorm:"default:true" json:"is_active"`

	// Relations
	Owner      User        `gorm:"foreignKey:OwnerID" json:"-"`
	StoreTeams []StoreTeam `gorm:"foreignKey:StoreID" json:"teams,omitempty"`
	Products   []Product   `gorm:"foreignKey:StoreID" json:"products,omitempty"`
	Cabins     []Cabin     `gorm:"foreignKey:StoreID" json:"cabins,omitempty"`
}

// StoreTeam joins stores to the teams that manage them.
type StoreTeam struct {
	gorm.Model
	StoreID uint `gorm:"not null;index;uniqueIndex:idx_store_team" json:"store_id"`
	TeamID  uint `gorm:"not null;index;uniqueIndex:idx_store_team" json:"team_id"`

	// Relations
	Store Store `json:"-"`
	Team  Team  `json:"-"`
}
