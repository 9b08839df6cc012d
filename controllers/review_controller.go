package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cabanas/models"
	"cabanas/services"
	"cabanas/utils"
)

type ReviewController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewReviewController(db *gorm.DB, logger *log.Logger) *ReviewController {
	return &ReviewController{DB: db, Logger: logger}
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

// ListCabinReviews lists a cabin's reviews, newest first. Public.
func (rc *ReviewController) ListCabinReviews(c *fiber.Ctx) error {
	cabinID := utils.ParseUint(c.Params("id"))

	var cabin models.Cabin
	if err := rc.DB.First(&cabin, cabinID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Cabin not found", nil)
	}

	var reviews []models.Review
	if err := rc.DB.Where("cabin_id = ?", cabinID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch reviews", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"rating_avg":   cabin.RatingAvg,
		"review_count": cabin.ReviewCount,
		"reviews":      reviews,
	}))
}

// CreateReview posts a review for the cabin in :id. One review per user
// per cabin; the cabin aggregate is refreshed in the same transaction.
func (rc *ReviewController) CreateReview(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	cabinID := utils.ParseUint(c.Params("id"))

	var req CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	review, err := services.CreateReview(rc.DB, user.ID, cabinID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCabinNotFound):
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Cabin not found", nil)
		case errors.Is(err, services.ErrDuplicateReview):
			return utils.ErrorResponse(c, fiber.StatusConflict, "You already reviewed this cabin", nil)
		default:
			rc.Logger.Printf("Failed to create review: %v", err)
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create review", err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(review))
}

// UpdateReview edits the caller's own review.
func (rc *ReviewController) UpdateReview(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	reviewID := utils.ParseUint(c.Params("id"))

	var review models.Review
	if err := rc.DB.First(&review, reviewID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Review not found", nil)
	}
	if !services.SelfOrAdmin(user, review.UserID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You can only edit your own reviews", nil)
	}

	var req UpdateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updated, err := services.UpdateReview(rc.DB, reviewID, req.Rating, req.Comment)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update review", err)
	}

	return c.JSON(utils.SuccessResponse(updated))
}

// DeleteReview removes the caller's own review (staff may remove any).
func (rc *ReviewController) DeleteReview(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	reviewID := utils.ParseUint(c.Params("id"))

	var review models.Review
	if err := rc.DB.First(&review, reviewID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Review not found", nil)
	}
	if !services.SelfOrAdmin(user, review.UserID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You can only delete your own reviews", nil)
	}

	if err := services.DeleteReview(rc.DB, reviewID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete review", err)
	}

	return c.JSON(fiber.Map{"message": "Review deleted"})
}
