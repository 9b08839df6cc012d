package services

import (
	"errors"
	"testing"

	"cabanas/models"
)

func TestReviewAggregates(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	team := createTestTeamWithAdmin(t, db, admin)
	cabin := createTestCabin(t, db, team.ID, "Cabaña del Lago", 150000)

	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	carol := createTestUser(t, db, "carol@example.com")

	if _, err := CreateReview(db, alice.ID, cabin.ID, 5, "Excelente"); err != nil {
		t.Fatalf("failed to create review: %v", err)
	}
	if _, err := CreateReview(db, bob.ID, cabin.ID, 4, ""); err != nil {
		t.Fatalf("failed to create review: %v", err)
	}
	if _, err := CreateReview(db, carol.ID, cabin.ID, 4, ""); err != nil {
		t.Fatalf("failed to create review: %v", err)
	}

	var got models.Cabin
	db.First(&got, cabin.ID)
	// (5+4+4)/3 = 4.333... rounds to 4.3
	if got.RatingAvg != 4.3 {
		t.Errorf("rating_avg = %v, want 4.3", got.RatingAvg)
	}
	if got.ReviewCount != 3 {
		t.Errorf("review_count = %d, want 3", got.ReviewCount)
	}
}

func TestDuplicateReviewRejected(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	team := createTestTeamWithAdmin(t, db, admin)
	cabin := createTestCabin(t, db, team.ID, "Cabaña del Lago", 150000)
	alice := createTestUser(t, db, "alice@example.com")

	if _, err := CreateReview(db, alice.ID, cabin.ID, 5, ""); err != nil {
		t.Fatalf("failed to create review: %v", err)
	}
	if _, err := CreateReview(db, alice.ID, cabin.ID, 3, ""); !errors.Is(err, ErrDuplicateReview) {
		t.Errorf("second review by same user: got %v, want ErrDuplicateReview", err)
	}
}

func TestUpdateReviewRefreshesAggregate(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	team := createTestTeamWithAdmin(t, db, admin)
	cabin := createTestCabin(t, db, team.ID, "Cabaña del Lago", 150000)
	alice := createTestUser(t, db, "alice@example.com")

	review, err := CreateReview(db, alice.ID, cabin.ID, 2, "")
	if err != nil {
		t.Fatalf("failed to create review: %v", err)
	}

	if _, err := UpdateReview(db, review.ID, 5, "Mejoró mucho"); err != nil {
		t.Fatalf("failed to update review: %v", err)
	}

	var got models.Cabin
	db.First(&got, cabin.ID)
	if got.RatingAvg != 5.0 {
		t.Errorf("rating_avg after update = %v, want 5.0", got.RatingAvg)
	}
}

func TestDeleteLastReviewZeroesAggregate(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	team := createTestTeamWithAdmin(t, db, admin)
	cabin := createTestCabin(t, db, team.ID, "Cabaña del Lago", 150000)
	alice := createTestUser(t, db, "alice@example.com")

	review, err := CreateReview(db, alice.ID, cabin.ID, 4, "")
	if err != nil {
		t.Fatalf("failed to create review: %v", err)
	}

	if err := DeleteReview(db, review.ID); err != nil {
		t.Fatalf("failed to delete review: %v", err)
	}

	var got models.Cabin
	db.First(&got, cabin.ID)
	if got.RatingAvg != 0 {
		t.Errorf("rating_avg with no reviews = %v, want 0", got.RatingAvg)
	}
	if got.ReviewCount != 0 {
		t.Errorf("review_count with no reviews = %d, want 0", got.ReviewCount)
	}

	if err := DeleteReview(db, review.ID); !errors.Is(err, ErrReviewNotFound) {
		t.Errorf("double delete: got %v, want ErrReviewNotFound", err)
	}
}
