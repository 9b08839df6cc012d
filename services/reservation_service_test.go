package services

import (
	"errors"
	"testing"
	"time"

	"cabanas/models"
)

func TestCheckAvailabilityOverlap(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	team := createTestTeamWithAdmin(t, db, admin)
	cabin := createTestCabin(t, db, team.ID, "Cabaña del Lago", 150000)
	client := createTestUser(t, db, "cliente@example.com")

	// Existing pendiente booking for [Jan 1, Jan 5)
	if _, err := CreateReservation(db, client.ID, []uint{cabin.ID}, date(t, "2024-01-01"), date(t, "2024-01-05")); err != nil {
		t.Fatalf("failed to create reservation: %v", err)
	}

	cases := []struct {
		name      string
		start     string
		end       string
		available bool
	}{
		{"overlapping range", "2024-01-04", "2024-01-06", false},
		{"contained range", "2024-01-02", "2024-01-03", false},
		{"identical range", "2024-01-01", "2024-01-05", false},
		{"adjacent after checkout", "2024-01-05", "2024-01-07", true},
		{"adjacent before checkin", "2023-12-28", "2024-01-01", true},
		{"far away", "2024-02-01", "2024-02-05", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			available, err := CheckAvailability(db, cabin.ID, date(t, tc.start), date(t, tc.end))
			if err != nil {
				t.Fatalf("CheckAvailability failed: %v", err)
			}
			if available != tc.available {
				t.Errorf("availability for [%s, %s) = %v, want %v", tc.start, tc.end, available, tc.available)
			}
		})
	}
}

func TestCheckAvailabilityInvalidRange(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	team := createTestTeamWithAdmin(t, db, admin)
	cabin := createTestCabin(t, db, team.ID, "Cabaña del Lago", 150000)

	if _, err := CheckAvailability(db, cabin.ID, date(t, "2024-01-05"), date(t, "2024-01-05")); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("zero-night range: got %v, want ErrInvalidDateRange", err)
	}
	if _, err := CheckAvailability(db, cabin.ID, date(t, "2024-01-05"), date(t, "2024-01-01")); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("inverted range: got %v, want ErrInvalidDateRange", err)
	}
	if _, err := CheckAvailability(db, 9999, date(t, "2024-01-01"), date(t, "2024-01-05")); !errors.Is(err, ErrCabinNotFound) {
		t.Errorf("unknown cabin: got %v, want ErrCabinNotFound", err)
	}
}

func TestCreateReservationPricing(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	team := createTestTeamWithAdmin(t, db, admin)
	lago := createTestCabin(t, db, team.ID, "Cabaña del Lago", 150000)
	monte := createTestCabin(t, db, team.ID, "Cabaña del Monte", 100000)
	client := createTestUser(t, db, "cliente@example.com")

	// 4 nights across two cabins
	reservation, err := CreateReservation(db, client.ID, []uint{lago.ID, monte.ID}, date(t, "2024-01-01"), date(t, "2024-01-05"))
	if err != nil {
		t.Fatalf("failed to create reservation: %v", err)
	}

	if reservation.Status != models.ReservationPending {
		t.Errorf("new reservation status = %q, want %q", reservation.Status, models.ReservationPending)
	}
	if want := int64(4 * (150000 + 100000)); reservation.FinalPriceCents != want {
		t.Errorf("final price = %d, want %d", reservation.FinalPriceCents, want)
	}
	if nights := reservation.Nights(); nights != 4 {
		t.Errorf("nights = %d, want 4", nights)
	}

	var joins int64
	db.Model(&models.ReservationCabin{}).Where("reservation_id = ?", reservation.ID).Count(&joins)
	if joins != 2 {
		t.Errorf("reservation has %d cabin joins, want 2", joins)
	}
}

func TestCreateReservationRejectsOverlap(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	team := createTestTeamWithAdmin(t, db, admin)
	cabin := createTestCabin(t, db, team.ID, "Cabaña del Lago", 150000)
	client := createTestUser(t, db, "cliente@example.com")

	if _, err := CreateReservation(db, client.ID, []uint{cabin.ID}, date(t, "2024-01-01"), date(t, "2024-01-05")); err != nil {
		t.Fatalf("failed to create first reservation: %v", err)
	}

	_, err := CreateReservation(db, client.ID, []uint{cabin.ID}, date(t, "2024-01-04"), date(t, "2024-01-06"))
	if !errors.Is(err, ErrDatesUnavailable) {
		t.Fatalf("overlapping reservation: got %v, want ErrDatesUnavailable", err)
	}

	// Boundary day is shared: checkout morning is the next checkin
	if _, err := CreateReservation(db, client.ID, []uint{cabin.ID}, date(t, "2024-01-05"), date(t, "2024-01-07")); err != nil {
		t.Fatalf("adjacent reservation should succeed: %v", err)
	}
}

func TestCreateReservationInactiveCabin(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	team := createTestTeamWithAdmin(t, db, admin)
	cabin := createTestCabin(t, db, team.ID, "Cabaña Cerrada", 150000)
	client := createTestUser(t, db, "cliente@example.com")

	if err := db.Model(cabin).Update("state", models.CabinInactive).Error; err != nil {
		t.Fatalf("failed to deactivate cabin: %v", err)
	}

	_, err := CreateReservation(db, client.ID, []uint{cabin.ID}, date(t, "2024-01-01"), date(t, "2024-01-05"))
	if !errors.Is(err, ErrCabinInactive) {
		t.Fatalf("inactive cabin: got %v, want ErrCabinInactive", err)
	}
}

func TestCancelledReservationFreesDates(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	team := createTestTeamWithAdmin(t, db, admin)
	cabin := createTestCabin(t, db, team.ID, "Cabaña del Lago", 150000)
	client := createTestUser(t, db, "cliente@example.com")

	reservation, err := CreateReservation(db, client.ID, []uint{cabin.ID}, date(t, "2024-01-01"), date(t, "2024-01-05"))
	if err != nil {
		t.Fatalf("failed to create reservation: %v", err)
	}

	if available, _ := CheckAvailability(db, cabin.ID, date(t, "2024-01-02"), date(t, "2024-01-04")); available {
		t.Fatal("dates should be blocked while the reservation is pending")
	}

	if _, err := CancelReservation(db, reservation.ID); err != nil {
		t.Fatalf("failed to cancel reservation: %v", err)
	}

	if available, _ := CheckAvailability(db, cabin.ID, date(t, "2024-01-02"), date(t, "2024-01-04")); !available {
		t.Fatal("cancelling should free the dates immediately")
	}
}

func TestReservationStateMachine(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	team := createTestTeamWithAdmin(t, db, admin)
	cabin := createTestCabin(t, db, team.ID, "Cabaña del Lago", 150000)
	client := createTestUser(t, db, "cliente@example.com")

	reservation, err := CreateReservation(db, client.ID, []uint{cabin.ID}, date(t, "2024-01-01"), date(t, "2024-01-05"))
	if err != nil {
		t.Fatalf("failed to create reservation: %v", err)
	}

	confirmed, err := ConfirmReservation(db, reservation.ID)
	if err != nil {
		t.Fatalf("failed to confirm reservation: %v", err)
	}
	if confirmed.Status != models.ReservationConfirmed {
		t.Errorf("status = %q, want %q", confirmed.Status, models.ReservationConfirmed)
	}

	// Webhook replay: confirming again is a no-op
	again, err := ConfirmReservation(db, reservation.ID)
	if err != nil {
		t.Fatalf("idempotent confirm failed: %v", err)
	}
	if again.Status != models.ReservationConfirmed {
		t.Errorf("replayed confirm status = %q, want %q", again.Status, models.ReservationConfirmed)
	}

	// Confirmed can still be cancelled
	cancelled, err := CancelReservation(db, reservation.ID)
	if err != nil {
		t.Fatalf("failed to cancel confirmed reservation: %v", err)
	}
	if cancelled.Status != models.ReservationCancelled {
		t.Errorf("status = %q, want %q", cancelled.Status, models.ReservationCancelled)
	}

	// Cancelled is terminal
	if _, err := ConfirmReservation(db, reservation.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("confirm after cancel: got %v, want ErrInvalidTransition", err)
	}
	if _, err := CancelReservation(db, reservation.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cancel after cancel: got %v, want ErrInvalidTransition", err)
	}
}

func TestExpireStaleReservations(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	team := createTestTeamWithAdmin(t, db, admin)
	cabin := createTestCabin(t, db, team.ID, "Cabaña del Lago", 150000)
	client := createTestUser(t, db, "cliente@example.com")

	stale, err := CreateReservation(db, client.ID, []uint{cabin.ID}, date(t, "2024-01-01"), date(t, "2024-01-05"))
	if err != nil {
		t.Fatalf("failed to create reservation: %v", err)
	}
	fresh, err := CreateReservation(db, client.ID, []uint{cabin.ID}, date(t, "2024-02-01"), date(t, "2024-02-05"))
	if err != nil {
		t.Fatalf("failed to create reservation: %v", err)
	}

	// Age the first reservation past the hold window
	old := time.Now().Add(-48 * time.Hour)
	if err := db.Model(&models.Reservation{}).Where("id = ?", stale.ID).Update("created_at", old).Error; err != nil {
		t.Fatalf("failed to age reservation: %v", err)
	}

	expired, err := ExpireStaleReservations(db, 24*time.Hour)
	if err != nil {
		t.Fatalf("expiry sweep failed: %v", err)
	}
	if len(expired) != 1 {
		t.Fatalf("expired %d reservations, want 1", len(expired))
	}
	if expired[0].ID != stale.ID {
		t.Errorf("expired reservation id = %d, want %d", expired[0].ID, stale.ID)
	}
	if expired[0].Status != models.ReservationCancelled {
		t.Errorf("expired reservation status = %q, want %q", expired[0].Status, models.ReservationCancelled)
	}

	var gotStale models.Reservation
	if err := db.First(&gotStale, stale.ID).Error; err != nil {
		t.Fatalf("failed to reload stale reservation: %v", err)
	}
	if gotStale.Status != models.ReservationCancelled {
		t.Errorf("stale reservation status = %q, want %q", gotStale.Status, models.ReservationCancelled)
	}

	var gotFresh models.Reservation
	if err := db.First(&gotFresh, fresh.ID).Error; err != nil {
		t.Fatalf("failed to reload fresh reservation: %v", err)
	}
	if gotFresh.Status != models.ReservationPending {
		t.Errorf("fresh reservation status = %q, want %q", gotFresh.Status, models.ReservationPending)
	}
}
