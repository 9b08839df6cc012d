package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cabanas/models"
)

var (
	ErrInvalidDateRange  = errors.New("fecha_fin must be after fecha_inicio")
	ErrCabinNotFound     = errors.New("cabin not found")
	ErrCabinInactive     = errors.New("cabin is not available for booking")
	ErrDatesUnavailable  = errors.New("cabin is already reserved for those dates")
	ErrInvalidTransition = errors.New("invalid reservation status transition")
)

// blockingStatuses are the reservation states that occupy a cabin's
// calendar. Cancelled reservations free their dates immediately.
var blockingStatuses = []string{models.ReservationPending, models.ReservationConfirmed}

// CheckAvailability reports whether the cabin is free for the half-open
// range [start, end). Two bookings may share a boundary day: one guest's
// checkout morning is the next guest's checkin.
func CheckAvailability(db *gorm.DB, cabinID uint, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, ErrInvalidDateRange
	}

	var cabin models.Cabin
	if err := db.First(&cabin, cabinID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrCabinNotFound
		}
		return false, err
	}

	overlap, err := hasOverlap(db, cabinID, start, end)
	if err != nil {
		return false, err
	}
	return !overlap, nil
}

// hasOverlap runs the half-open interval test against every blocking
// reservation of the cabin: existing.start < end AND existing.end > start.
func hasOverlap(db *gorm.DB, cabinID uint, start, end time.Time) (bool, error) {
	var count int64
	err := db.Model(&models.Reservation{}).
		Joins("JOIN reservation_cabins ON reservation_cabins.reservation_id = reservations.id").
		Where("reservation_cabins.cabin_id = ?", cabinID).
		Where("reservation_cabins.deleted_at IS NULL").
		Where("reservations.status IN ?", blockingStatuses).
		Where("reservations.start_date < ? AND reservations.end_date > ?", end, start).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateReservation books the given cabins for a client. The overlap
// check and the insert run in one transaction with the cabin rows locked,
// so two competing requests for the same dates cannot both pass the check.
func CreateReservation(db *gorm.DB, clientID uint, cabinIDs []uint, start, end time.Time) (*models.Reservation, error) {
	if !end.After(start) {
		return nil, ErrInvalidDateRange
	}
	if len(cabinIDs) == 0 {
		return nil, ErrCabinNotFound
	}

	var reservation models.Reservation
	err := db.Transaction(func(tx *gorm.DB) error {
		query := tx
		// SQLite (tests) has no row locks; serialized writes cover it there
		if tx.Dialector.Name() == "postgres" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var cabins []models.Cabin
		if err := query.Where("id IN ?", cabinIDs).Find(&cabins).Error; err != nil {
			return err
		}
		if len(cabins) != len(cabinIDs) {
			return ErrCabinNotFound
		}

		var totalNightlyCents int64
		for _, cabin := range cabins {
			if cabin.State != models.CabinAvailable {
				return fmt.Errorf("%w: %s", ErrCabinInactive, cabin.Name)
			}
			overlap, err := hasOverlap(tx, cabin.ID, start, end)
			if err != nil {
				return err
			}
			if overlap {
				return fmt.Errorf("%w: %s", ErrDatesUnavailable, cabin.Name)
			}
			totalNightlyCents += cabin.PricePerNightCents
		}

		nights := int64(end.Sub(start).Hours() / 24)
		reservation = models.Reservation{
			ClientID:        clientID,
			StartDate:       start,
			EndDate:         end,
			FinalPriceCents: nights * totalNightlyCents,
			Status:          models.ReservationPending,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return err
		}

		for _, cabin := range cabins {
			join := models.ReservationCabin{
				ReservationID: reservation.ID,
				CabinID:       cabin.ID,
			}
			if err := tx.Create(&join).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ConfirmReservation moves a reservation to confirmada. Confirming an
// already confirmed reservation is a no-op so the payment webhook can be
// replayed safely. Cancelled is terminal.
func ConfirmReservation(db *gorm.DB, reservationID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reservation, reservationID).Error; err != nil {
			return err
		}

		switch reservation.Status {
		case models.ReservationConfirmed:
			return nil // idempotent replay
		case models.ReservationPending:
			reservation.Status = models.ReservationConfirmed
			return tx.Save(&reservation).Error
		default:
			return ErrInvalidTransition
		}
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// CancelReservation moves a pendiente or confirmada reservation to
// cancelada, freeing its dates.
func CancelReservation(db *gorm.DB, reservationID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reservation, reservationID).Error; err != nil {
			return err
		}

		if reservation.Status == models.ReservationCancelled {
			return ErrInvalidTransition
		}
		reservation.Status = models.ReservationCancelled
		return tx.Save(&reservation).Error
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ExpireStaleReservations cancels pendiente reservations older than the
// hold window whose checkout never completed. Returns the cancelled
// reservations so callers can fan out status notifications. Used by the
// expiry worker.
func ExpireStaleReservations(db *gorm.DB, holdFor time.Duration) ([]models.Reservation, error) {
	cutoff := time.Now().Add(-holdFor)

	var expired []models.Reservation
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("status = ? AND created_at < ?", models.ReservationPending, cutoff).
			Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		ids := make([]uint, len(expired))
		for i := range expired {
			ids[i] = expired[i].ID
		}
		if err := tx.Model(&models.Reservation{}).
			Where("id IN ?", ids).
			Update("status", models.ReservationCancelled).Error; err != nil {
			return err
		}
		for i := range expired {
			expired[i].Status = models.ReservationCancelled
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}
