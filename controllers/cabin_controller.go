package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cabanas/models"
	"cabanas/services"
	"cabanas/utils"
)

type CabinController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCabinController(db *gorm.DB, logger *log.Logger) *CabinController {
	return &CabinController{DB: db, Logger: logger}
}

type CreateCabinRequest struct {
	TeamID             uint     `json:"team_id" validate:"required"`
	StoreID            *uint    `json:"store_id"`
	Name               string   `json:"name" validate:"required,max=150"`
	Description        string   `json:"description" validate:"omitempty,max=5000"`
	Capacity           int      `json:"capacity" validate:"required,gte=1"`
	PricePerNightCents int64    `json:"price_per_night_cents" validate:"required,gt=0"`
	SurfaceM2          *float64 `json:"surface_m2" validate:"omitempty,gt=0"`
	Bedrooms           *int     `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms          *int     `json:"bathrooms" validate:"omitempty,gte=0"`
	PetsAllowed        bool     `json:"pets_allowed"`
	HouseRules         string   `json:"house_rules" validate:"omitempty,max=5000"`
	CheckInHour        string   `json:"check_in_hour" validate:"omitempty,max=10"`
	CheckOutHour       string   `json:"check_out_hour" validate:"omitempty,max=10"`
}

type UpdateCabinRequest struct {
	StoreID            *uint    `json:"store_id"`
	Name               *string  `json:"name" validate:"omitempty,max=150"`
	Description        *string  `json:"description" validate:"omitempty,max=5000"`
	Capacity           *int     `json:"capacity" validate:"omitempty,gte=1"`
	PricePerNightCents *int64   `json:"price_per_night_cents" validate:"omitempty,gt=0"`
	State              *string  `json:"state" validate:"omitempty,oneof=disponible inactiva"`
	SurfaceM2          *float64 `json:"surface_m2" validate:"omitempty,gt=0"`
	Bedrooms           *int     `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms          *int     `json:"bathrooms" validate:"omitempty,gte=0"`
	PetsAllowed        *bool    `json:"pets_allowed"`
	HouseRules         *string  `json:"house_rules" validate:"omitempty,max=5000"`
	CheckInHour        *string  `json:"check_in_hour" validate:"omitempty,max=10"`
	CheckOutHour       *string  `json:"check_out_hour" validate:"omitempty,max=10"`
}

type AddCabinImageRequest struct {
	URL         string `json:"url" validate:"required,url"`
	IsPrimary   bool   `json:"is_primary"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Order       int    `json:"order" validate:"omitempty,gte=0"`
}

// ListPublicCabins lists available cabins for the public catalog, with
// optional capacity and price filters.
func (cc *CabinController) ListPublicCabins(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := cc.DB.Model(&models.Cabin{}).Where("state = ?", models.CabinAvailable)
	if capacity := c.QueryInt("capacidad", 0); capacity > 0 {
		query = query.Where("capacity >= ?", capacity)
	}
	if maxPrice := c.QueryInt("precio_max", 0); maxPrice > 0 {
		query = query.Where("price_per_night_cents <= ?", maxPrice)
	}
	if storeID := c.QueryInt("tienda_id", 0); storeID > 0 {
		query = query.Where("store_id = ?", storeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count cabins", err)
	}

	var cabins []models.Cabin
	if err := query.Preload("Images").
		Order("rating_avg DESC, id ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&cabins).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch cabins", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  cabins,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetPublicCabin resolves a cabin by slug, including images and reviews.
func (cc *CabinController) GetPublicCabin(c *fiber.Ctx) error {
	var cabin models.Cabin
	err := cc.DB.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"order\"")
		}).
		Preload("Reviews").
		Where("slug = ?", c.Params("slug")).
		First(&cabin).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Cabin not found", nil)
	}

	return c.JSON(utils.SuccessResponse(cabin))
}

// CreateCabin registers a cabin under one of the caller's teams.
func (cc *CabinController) CreateCabin(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CreateCabinRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	ok, err := services.IsTeamMember(cc.DB, user.ID, req.TeamID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check membership", err)
	}
	if !ok && !user.IsAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You are not a member of this team", nil)
	}

	if req.StoreID != nil {
		var store models.Store
		if err := cc.DB.First(&store, *req.StoreID).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Store not found", nil)
		}
		canEdit, err := services.CanEditStoreContent(cc.DB, user, &store)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check permissions", err)
		}
		if !canEdit {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "You cannot add cabins to this store", nil)
		}
	}

	slug, err := utils.UniqueSlug(cc.DB, &models.Cabin{}, req.Name)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to derive slug", err)
	}

	cabin := models.Cabin{
		TeamID:             req.TeamID,
		StoreID:            req.StoreID,
		Name:               req.Name,
		Description:        req.Description,
		Slug:               slug,
		Capacity:           req.Capacity,
		PricePerNightCents: req.PricePerNightCents,
		State:              models.CabinAvailable,
		SurfaceM2:          req.SurfaceM2,
		Bedrooms:           req.Bedrooms,
		Bathrooms:          req.Bathrooms,
		PetsAllowed:        req.PetsAllowed,
		HouseRules:         req.HouseRules,
		CheckInHour:        req.CheckInHour,
		CheckOutHour:       req.CheckOutHour,
	}

	if err := cc.DB.Create(&cabin).Error; err != nil {
		cc.Logger.Printf("Failed to create cabin: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create cabin", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(cabin))
}

// ListTeamCabins lists the cabins of a team the caller belongs to,
// regardless of state.
func (cc *CabinController) ListTeamCabins(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("teamId"))

	ok, err := services.IsTeamMember(cc.DB, user.ID, teamID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check membership", err)
	}
	if !ok && !user.IsAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You are not a member of this team", nil)
	}

	var cabins []models.Cabin
	if err := cc.DB.Preload("Images").Where("team_id = ?", teamID).Find(&cabins).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch cabins", err)
	}

	return c.JSON(utils.SuccessResponse(cabins))
}

// UpdateCabin edits cabin attributes. Team members only. The slug never
// changes after creation so published links stay stable.
func (cc *CabinController) UpdateCabin(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	cabin, err := cc.loadManagedCabin(c, user)
	if cabin == nil {
		return err
	}

	var req UpdateCabinRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if req.StoreID != nil {
		cabin.StoreID = req.StoreID
	}
	if req.Name != nil {
		cabin.Name = *req.Name
	}
	if req.Description != nil {
		cabin.Description = *req.Description
	}
	if req.Capacity != nil {
		cabin.Capacity = *req.Capacity
	}
	if req.PricePerNightCents != nil {
		cabin.PricePerNightCents = *req.PricePerNightCents
	}
	if req.State != nil {
		cabin.State = *req.State
	}
	if req.SurfaceM2 != nil {
		cabin.SurfaceM2 = req.SurfaceM2
	}
	if req.Bedrooms != nil {
		cabin.Bedrooms = req.Bedrooms
	}
	if req.Bathrooms != nil {
		cabin.Bathrooms = req.Bathrooms
	}
	if req.PetsAllowed != nil {
		cabin.PetsAllowed = *req.PetsAllowed
	}
	if req.HouseRules != nil {
		cabin.HouseRules = *req.HouseRules
	}
	if req.CheckInHour != nil {
		cabin.CheckInHour = *req.CheckInHour
	}
	if req.CheckOutHour != nil {
		cabin.CheckOutHour = *req.CheckOutHour
	}

	if err := cc.DB.Save(cabin).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update cabin", err)
	}

	return c.JSON(utils.SuccessResponse(cabin))
}

// DeleteCabin soft-deletes a cabin. Team members only.
func (cc *CabinController) DeleteCabin(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	cabin, err := cc.loadManagedCabin(c, user)
	if cabin == nil {
		return err
	}

	if err := cc.DB.Delete(cabin).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete cabin", err)
	}

	return c.JSON(fiber.Map{"message": "Cabin deleted"})
}

// AddImage attaches an image URL to the cabin. Marking it primary
// demotes the previous primary in the same transaction.
func (cc *CabinController) AddImage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	cabin, err := cc.loadManagedCabin(c, user)
	if cabin == nil {
		return err
	}

	var req AddCabinImageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	image := models.CabinImage{
		CabinID:     cabin.ID,
		URL:         req.URL,
		IsPrimary:   req.IsPrimary,
		Description: req.Description,
		Order:       req.Order,
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.CabinImage{}).Where("cabin_id = ?", cabin.ID).Count(&count).Error; err != nil {
			return err
		}
		// First image is always the primary one
		if count == 0 {
			image.IsPrimary = true
		} else if req.IsPrimary {
			if err := tx.Model(&models.CabinImage{}).
				Where("cabin_id = ? AND is_primary = ?", cabin.ID, true).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&image).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add image", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(image))
}

// SetPrimaryImage promotes one image and demotes the rest atomically.
func (cc *CabinController) SetPrimaryImage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	cabin, err := cc.loadManagedCabin(c, user)
	if cabin == nil {
		return err
	}

	imageID := utils.ParseUint(c.Params("imageId"))
	var image models.CabinImage
	if err := cc.DB.Where("id = ? AND cabin_id = ?", imageID, cabin.ID).First(&image).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Image not found", nil)
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.CabinImage{}).
			Where("cabin_id = ? AND id <> ?", cabin.ID, image.ID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		return tx.Model(&image).Update("is_primary", true).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update image", err)
	}

	return c.JSON(utils.SuccessResponse(image))
}

// DeleteImage removes an image. If it was primary, the lowest-order
// remaining image takes over.
func (cc *CabinController) DeleteImage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	cabin, err := cc.loadManagedCabin(c, user)
	if cabin == nil {
		return err
	}

	imageID := utils.ParseUint(c.Params("imageId"))
	var image models.CabinImage
	if err := cc.DB.Where("id = ? AND cabin_id = ?", imageID, cabin.ID).First(&image).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Image not found", nil)
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&image).Error; err != nil {
			return err
		}
		if !image.IsPrimary {
			return nil
		}
		var next models.CabinImage
		err := tx.Where("cabin_id = ?", cabin.ID).Order("\"order\"").First(&next).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		return tx.Model(&next).Update("is_primary", true).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete image", err)
	}

	return c.JSON(fiber.Map{"message": "Image deleted"})
}

// loadManagedCabin fetches the cabin in :id and checks the caller
// belongs to its team. On failure it writes the response and returns a
// non-nil error for the caller to propagate.
func (cc *CabinController) loadManagedCabin(c *fiber.Ctx, user *models.User) (*models.Cabin, error) {
	var cabin models.Cabin
	if err := cc.DB.First(&cabin, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Cabin not found", nil)
	}

	ok, err := services.IsTeamMember(cc.DB, user.ID, cabin.TeamID)
	if err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check membership", err)
	}
	if !ok && !user.IsAdmin {
		return nil, utils.ErrorResponse(c, fiber.StatusForbidden, "You are not a member of this cabin's team", nil)
	}
	return &cabin, nil
}
