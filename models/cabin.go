package models

import "gorm.io/gorm"

// Cabin states
const (
	CabinAvailable = "disponible"
	CabinInactive  = "inactiva"
)

// Cabin (cabaña) is a rentable unit. It belongs to exactly one team and
// optionally hangs off a storefront. Rating fields are denormalized from
// reviews and recomputed inside the same transaction as the review write.
type Cabin struct {
	gorm.Model
	TeamID  uint  `gorm:"not null;index" json:"team_id"`
	StoreID *uint `gorm:"index" json:"store_id,omitempty"`

	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`

	// Capacity and pricing
	Capacity           int   `gorm:"not null" json:"capacity"`              // >= 1
	PricePerNightCents int64 `gorm:"not null" json:"price_per_night_cents"` // > 0

	// Characteristics
	State        string   `gorm:"default:'disponible';index" json:"state"` // disponible, inactiva
	SurfaceM2    *float64 `json:"surface_m2,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Bathrooms    *int     `json:"bathrooms,omitempty"`
	PetsAllowed  bool     `gorm:"default:false" json:"pets_allowed"`
	HouseRules   string   `gorm:"type:text" json:"house_rules"`
	CheckInHour  string   `json:"check_in_hour"`
	CheckOutHour string   `json:"check_out_hour"`

	// Statistics (denormalized for listing pages)
	RatingAvg   float64 `gorm:"default:0" json:"rating_avg"` // mean of ratings, 1 decimal, 0 when no reviews
	ReviewCount int     `gorm:"default:0" json:"review_count"`

	// Relations
	Team    Team         `json:"-"`
	Images  []CabinImage `gorm:"foreignKey:CabinID" json:"images,omitempty"`
	Reviews []Review     `gorm:"foreignKey:CabinID" json:"reviews,omitempty"`
}

// CabinImage stores a hosted image URL for a cabin. Exactly one image
// per cabin is primary.
type CabinImage struct {
	gorm.Model
	CabinID     uint   `gorm:"not null;index" json:"cabin_id"`
	URL         string `gorm:"not null" json:"url"`
	IsPrimary   bool   `gorm:"default:false" json:"is_primary"`
	Description string `json:"description"`
	Order       int    `gorm:"default:0" json:"order"`

	// Relations
	Cabin Cabin `json:"-"`
}

// Review is a client rating for a cabin, one per (cabin, user) pair.
type Review struct {
	gorm.Model
	CabinID uint   `gorm:"not null;index;uniqueIndex:idx_cabin_user" json:"cabin_id"`
	UserID  uint   `gorm:"not null;index;uniqueIndex:idx_cabin_user" json:"user_id"`
	Rating  int    `gorm:"not null" json:"rating"` // 1..5
	Comment string `gorm:"type:text" json:"comment"`

	// Relations
	Cabin Cabin `json:"-"`
	User  User  `json:"-"`
}
