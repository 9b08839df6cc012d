package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cabanas/models"
	"cabanas/utils"
)

type ActivityController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewActivityController(db *gorm.DB, logger *log.Logger) *ActivityController {
	return &ActivityController{DB: db, Logger: logger}
}

type CreateActivityRequest struct {
	Name        string `json:"name" validate:"required,max=150"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	CostCents   int64  `json:"cost_cents" validate:"required,gt=0"`
}

type UpdateActivityRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=150"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	CostCents   *int64  `json:"cost_cents" validate:"omitempty,gt=0"`
}

type CreatePackageRequest struct {
	Name           string `json:"name" validate:"required,max=150"`
	Nights         int    `json:"nights" validate:"required,gte=1"`
	BasePriceCents int64  `json:"base_price_cents" validate:"required,gt=0"`
	CabinIDs       []uint `json:"cabana_ids" validate:"required,min=1"`
	ActivityIDs    []uint `json:"activity_ids"`
}

type UpdatePackageRequest struct {
	Name           *string `json:"name" validate:"omitempty,max=150"`
	Nights         *int    `json:"nights" validate:"omitempty,gte=1"`
	BasePriceCents *int64  `json:"base_price_cents" validate:"omitempty,gt=0"`
	CabinIDs       []uint  `json:"cabana_ids"`
	ActivityIDs    []uint  `json:"activity_ids"`
}

// CreateActivity registers an activity offered by the caller.
func (ac *ActivityController) CreateActivity(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if !user.IsLandlord() && !user.IsAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only landlords can offer activities", nil)
	}

	var req CreateActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	activity := models.Activity{
		LandlordID:  user.ID,
		Name:        req.Name,
		Description: req.Description,
		CostCents:   req.CostCents,
	}
	if err := ac.DB.Create(&activity).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create activity", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(activity))
}

// GetMyActivities lists the caller's activities.
func (ac *ActivityController) GetMyActivities(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var activities []models.Activity
	if err := ac.DB.Where("landlord_id = ?", user.ID).Order("name").Find(&activities).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch activities", err)
	}

	return c.JSON(utils.SuccessResponse(activities))
}

func (ac *ActivityController) UpdateActivity(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var activity models.Activity
	if err := ac.DB.First(&activity, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Activity not found", nil)
	}
	if activity.LandlordID != user.ID && !user.IsAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You can only edit your own activities", nil)
	}

	var req UpdateActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if req.Name != nil {
		activity.Name = *req.Name
	}
	if req.Description != nil {
		activity.Description = *req.Description
	}
	if req.CostCents != nil {
		activity.CostCents = *req.CostCents
	}

	if err := ac.DB.Save(&activity).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update activity", err)
	}

	return c.JSON(utils.SuccessResponse(activity))
}

func (ac *ActivityController) DeleteActivity(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var activity models.Activity
	if err := ac.DB.First(&activity, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Activity not found", nil)
	}
	if activity.LandlordID != user.ID && !user.IsAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You can only delete your own activities", nil)
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", activity.ID).Delete(&models.PackageActivity{}).Error; err != nil {
			return err
		}
		return tx.Delete(&activity).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete activity", err)
	}

	return c.JSON(fiber.Map{"message": "Activity deleted"})
}

// CreatePackage bundles cabins and activities under a single offer. The
// cabins and activities must exist; activities must belong to the caller.
func (ac *ActivityController) CreatePackage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if !user.IsLandlord() && !user.IsAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only landlords can create packages", nil)
	}

	var req CreatePackageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	pkg := models.Package{
		LandlordID:     user.ID,
		Name:           req.Name,
		Nights:         req.Nights,
		BasePriceCents: req.BasePriceCents,
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&pkg).Error; err != nil {
			return err
		}
		return ac.replacePackageJoins(tx, user, &pkg, req.CabinIDs, req.ActivityIDs)
	})
	if err != nil {
		ac.Logger.Printf("Failed to create package: %v", err)
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to create package", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(pkg))
}

// GetMyPackages lists the caller's packages with their joins.
func (ac *ActivityController) GetMyPackages(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var packages []models.Package
	err := ac.DB.
		Preload("PackageCabins").
		Preload("PackageCabins.Cabin").
		Preload("PackageActivities").
		Preload("PackageActivities.Activity").
		Where("landlord_id = ?", user.ID).
		Find(&packages).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch packages", err)
	}

	return c.JSON(utils.SuccessResponse(packages))
}

// UpdatePackage edits the offer. When cabin or activity lists are given
// the existing joins are replaced wholesale.
func (ac *ActivityController) UpdatePackage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var pkg models.Package
	if err := ac.DB.First(&pkg, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Package not found", nil)
	}
	if pkg.LandlordID != user.ID && !user.IsAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You can only edit your own packages", nil)
	}

	var req UpdatePackageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if req.Name != nil {
		pkg.Name = *req.Name
	}
	if req.Nights != nil {
		pkg.Nights = *req.Nights
	}
	if req.BasePriceCents != nil {
		pkg.BasePriceCents = *req.BasePriceCents
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&pkg).Error; err != nil {
			return err
		}
		if req.CabinIDs != nil {
			if err := tx.Where("package_id = ?", pkg.ID).Delete(&models.PackageCabin{}).Error; err != nil {
				return err
			}
		}
		if req.ActivityIDs != nil {
			if err := tx.Where("package_id = ?", pkg.ID).Delete(&models.PackageActivity{}).Error; err != nil {
				return err
			}
		}
		return ac.replacePackageJoins(tx, user, &pkg, req.CabinIDs, req.ActivityIDs)
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to update package", err)
	}

	return c.JSON(utils.SuccessResponse(pkg))
}

func (ac *ActivityController) DeletePackage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var pkg models.Package
	if err := ac.DB.First(&pkg, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Package not found", nil)
	}
	if pkg.LandlordID != user.ID && !user.IsAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You can only delete your own packages", nil)
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("package_id = ?", pkg.ID).Delete(&models.PackageCabin{}).Error; err != nil {
			return err
		}
		if err := tx.Where("package_id = ?", pkg.ID).Delete(&models.PackageActivity{}).Error; err != nil {
			return err
		}
		return tx.Delete(&pkg).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete package", err)
	}

	return c.JSON(fiber.Map{"message": "Package deleted"})
}

// replacePackageJoins creates the package's cabin and activity joins.
// Activities must belong to the landlord; cabins just have to exist.
func (ac *ActivityController) replacePackageJoins(tx *gorm.DB, user *models.User, pkg *models.Package, cabinIDs, activityIDs []uint) error {
	for _, cabinID := range cabinIDs {
		var cabin models.Cabin
		if err := tx.First(&cabin, cabinID).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.PackageCabin{PackageID: pkg.ID, CabinID: cabinID}).Error; err != nil {
			return err
		}
	}
	for _, activityID := range activityIDs {
		var activity models.Activity
		if err := tx.First(&activity, activityID).Error; err != nil {
			return err
		}
		if activity.LandlordID != pkg.LandlordID && !user.IsAdmin {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Create(&models.PackageActivity{PackageID: pkg.ID, ActivityID: activityID}).Error; err != nil {
			return err
		}
	}
	return nil
}
