package models

import "gorm.io/gorm"

// Activity is an excursion or amenity a landlord offers alongside cabins.
type Activity struct {
	gorm.Model
	LandlordID uint `gorm:"not null;index" json:"landlord_id"`

	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	CostCents   int64  `gorm:"not null" json:"cost_cents"`

	// Relations
	Landlord User `gorm:"foreignKey:LandlordID" json:"-"`
}

// Package bundles cabins and activities under a single nightly offer.
// Updating a package replaces its cabin and activity joins wholesale.
type Package struct {
	gorm.Model
	LandlordID uint `gorm:"not null;index" json:"landlord_id"`

	Name           string `gorm:"not null" json:"name"`
	Nights         int    `gorm:"not null" json:"nights"`
	BasePriceCents int64  `gorm:"not null" json:"base_price_cents"`

	// Relations
	Landlord          User              `gorm:"foreignKey:LandlordID" json:"-"`
	PackageCabins     []PackageCabin    `gorm:"foreignKey:PackageID" json:"cabins,omitempty"`
	PackageActivities []PackageActivity `gorm:"foreignKey:PackageID" json:"activities,omitempty"`
}

// PackageCabin joins packages to cabins.
type PackageCabin struct {
	gorm.Model
	PackageID uint `gorm:"not null;index;uniqueIndex:idx_package_cabin" json:"package_id"`
	CabinID   uint `gorm:"not null;index;uniqueIndex:idx_package_cabin" json:"cabin_id"`

	// Relations
	Package Package `json:"-"`
	Cabin   Cabin   `json:"cabin,omitempty"`
}

// PackageActivity joins packages to activities.
type PackageActivity struct {
	gorm.Model
	PackageID  uint `gorm:"not null;index;uniqueIndex:idx_package_activity" json:"package_id"`
	ActivityID uint `gorm:"not null;index;uniqueIndex:idx_package_activity" json:"activity_id"`

	// Relations
	Package  Package  `json:"-"`
	Activity Activity `json:"activity,omitempty"`
}
