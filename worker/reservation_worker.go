package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"cabanas/config"
	controller "cabanas/controllers"
	"cabanas/services"
)

// ReservationWorker sweeps pendiente reservations whose payment hold
// expired and cancels them so the dates go back on the market.
type ReservationWorker struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewReservationWorker(db *gorm.DB, logger *log.Logger) *ReservationWorker {
	return &ReservationWorker{
		DB:     db,
		Logger: logger,
	}
}

func (rw *ReservationWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	rw.Logger.Println("Reservation expiry worker started")

	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	// Run one sweep on startup to clear anything that expired while the
	// server was down
	rw.expireStale()

	for {
		select {
		case <-ctx.Done():
			rw.Logger.Println("Reservation expiry worker shutting down...")
			return
		case <-ticker.C:
			rw.expireStale()
		}
	}
}

func (rw *ReservationWorker) expireStale() {
	holdFor := time.Duration(config.AppConfig.ReservationHoldHours) * time.Hour
	if holdFor <= 0 {
		holdFor = 24 * time.Hour
	}

	expired, err := services.ExpireStaleReservations(rw.DB, holdFor)
	if err != nil {
		rw.Logger.Printf("Error expiring stale reservations: %v", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	// Subscribers watching a pendiente reservation hear the expiry the
	// same way they hear a manual cancellation
	for i := range expired {
		controller.NotifyReservationUpdate(&expired[i])
	}
	rw.Logger.Printf("Expired %d stale reservations past the %s hold", len(expired), holdFor)
}
