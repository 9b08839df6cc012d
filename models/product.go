package models

import "gorm.io/gorm"

// Product kinds
const (
	ProductClothing    = "ropa"
	ProductElectronics = "electronica"
	ProductFood        = "comida"
	ProductService     = "servicio"
	ProductBooks       = "libros"
	ProductHome        = "hogar"
	ProductOther       = "otros"
)

// Product is a catalog item sold through a storefront.
type Product struct {
	gorm.Model
	StoreID uint `gorm:"not null;index" json:"store_id"`

	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	PriceCents  int64  `gorm:"not null" json:"price_cents"`
	Kind        string `gorm:"not null;index" json:"kind"`

	// Relations
	Store Store `json:"-"`
}
