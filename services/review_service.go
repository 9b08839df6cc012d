package services

import (
	"errors"
	"math"

	"gorm.io/gorm"

	"cabanas/models"
)

var (
	ErrDuplicateReview = errors.New("user already reviewed this cabin")
	ErrReviewNotFound  = errors.New("review not found")
)

// CreateReview inserts a review and recomputes the cabin's denormalized
// rating in the same transaction.
func CreateReview(db *gorm.DB, userID, cabinID uint, rating int, comment string) (*models.Review, error) {
	var review models.Review
	err := db.Transaction(func(tx *gorm.DB) error {
		var cabin models.Cabin
		if err := tx.First(&cabin, cabinID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCabinNotFound
			}
			return err
		}

		var existing models.Review
		if err := tx.Where("cabin_id = ? AND user_id = ?", cabinID, userID).First(&existing).Error; err == nil {
			return ErrDuplicateReview
		}

		review = models.Review{
			CabinID: cabinID,
			UserID:  userID,
			Rating:  rating,
			Comment: comment,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return RecalcCabinRating(tx, cabinID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// UpdateReview changes a review's rating/comment and refreshes the
// cabin aggregate in the same transaction.
func UpdateReview(db *gorm.DB, reviewID uint, rating int, comment string) (*models.Review, error) {
	var review models.Review
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return err
		}

		review.Rating = rating
		review.Comment = comment
		if err := tx.Save(&review).Error; err != nil {
			return err
		}
		return RecalcCabinRating(tx, review.CabinID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// DeleteReview removes a review and refreshes the cabin aggregate in
// the same transaction.
func DeleteReview(db *gorm.DB, reviewID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return err
		}

		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return RecalcCabinRating(tx, review.CabinID)
	})
}

// RecalcCabinRating recomputes a cabin's average rating (rounded to one
// decimal, 0 when there are no reviews) and review count.
func RecalcCabinRating(tx *gorm.DB, cabinID uint) error {
	type aggregate struct {
		Avg   *float64
		Count int64
	}
	var agg aggregate
	err := tx.Model(&models.Review{}).
		Select("AVG(rating) AS avg, COUNT(*) AS count").
		Where("cabin_id = ?", cabinID).
		Scan(&agg).Error
	if err != nil {
		return err
	}

	avg := 0.0
	if agg.Avg != nil {
		avg = math.Round(*agg.Avg*10) / 10
	}

	return tx.Model(&models.Cabin{}).
		Where("id = ?", cabinID).
		Updates(map[string]interface{}{
			"rating_avg":   avg,
			"review_count": agg.Count,
		}).Error
}
