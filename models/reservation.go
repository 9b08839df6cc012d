package models

import (
	"time"

	"gorm.io/gorm"
)

// Reservation statuses
const (
	ReservationPending   = "pendiente"
	ReservationConfirmed = "confirmada"
	ReservationCancelled = "cancelada"
)

// Reservation books one or more cabins for a [start, end) date range.
// Only pendiente and confirmada reservations block a cabin's calendar;
// cancelada frees the dates immediately and is terminal.
type Reservation struct {
	gorm.Model
	ClientID uint `gorm:"not null;index" json:"client_id"`

	StartDate time.Time `gorm:"not null;index" json:"fecha_inicio"`
	EndDate   time.Time `gorm:"not null;index" json:"fecha_fin"` // exclusive checkout day

	FinalPriceCents int64  `gorm:"not null" json:"final_price_cents"`          // nights * sum of nightly prices
	Status          string `gorm:"default:'pendiente';index" json:"estado"`    // pendiente, confirmada, cancelada
	StripeSessionID string `gorm:"index" json:"stripe_session_id,omitempty"`   // checkout session, set once payment starts

	// Relations
	Client            User               `gorm:"foreignKey:ClientID" json:"-"`
	ReservationCabins []ReservationCabin `gorm:"foreignKey:ReservationID" json:"cabins,omitempty"`
}

// Nights returns the length of the stay in nights.
func (r *Reservation) Nights() int {
	return int(r.EndDate.Sub(r.StartDate).Hours() / 24)
}

// IsBlocking reports whether the reservation occupies its cabins' calendars.
func (r *Reservation) IsBlocking() bool {
	return r.Status == ReservationPending || r.Status == ReservationConfirmed
}

// ReservationCabin joins reservations to cabins.
type ReservationCabin struct {
	gorm.Model
	ReservationID uint `gorm:"not null;index;uniqueIndex:idx_reservation_cabin" json:"reservation_id"`
	CabinID       uint `gorm:"not null;index;uniqueIndex:idx_reservation_cabin" json:"cabin_id"`

	// Relations
	Reservation Reservation `json:"-"`
	Cabin       Cabin       `json:"cabin,omitempty"`
}
