package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cabanas/models"
	"cabanas/services"
	"cabanas/utils"
)

type StoreController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewStoreController(db *gorm.DB, logger *log.Logger) *StoreController {
	return &StoreController{DB: db, Logger: logger}
}

type CreateStoreRequest struct {
	Name           string  `json:"name" validate:"required,max=100"`
	Slug           string  `json:"slug" validate:"omitempty,storeslug,max=63"`
	Template       string  `json:"template" validate:"omitempty,oneof=plantilla1 plantilla2 plantilla3"`
	PrimaryColor   string  `json:"primary_color" validate:"omitempty,max=20"`
	SecondaryColor string  `json:"secondary_color" validate:"omitempty,max=20"`
	Font           string  `json:"font" validate:"omitempty,max=50"`
	LogoURL        string  `json:"logo_url" validate:"omitempty,url"`
	CustomDomain   *string `json:"custom_domain" validate:"omitempty,fqdn"`
	ExtraConfig    string  `json:"extra_config"`
}

type UpdateStoreRequest struct {
	Name           *string `json:"name" validate:"omitempty,max=100"`
	Template       *string `json:"template" validate:"omitempty,oneof=plantilla1 plantilla2 plantilla3"`
	PrimaryColor   *string `json:"primary_color" validate:"omitempty,max=20"`
	SecondaryColor *string `json:"secondary_color" validate:"omitempty,max=20"`
	Font           *string `json:"font" validate:"omitempty,max=50"`
	LogoURL        *string `json:"logo_url" validate:"omitempty,url"`
	CustomDomain   *string `json:"custom_domain" validate:"omitempty,fqdn"`
	ExtraConfig    *string `json:"extra_config"`
	IsActive       *bool   `json:"is_active"`
}

type AssignTeamRequest struct {
	TeamID uint `json:"team_id" validate:"required"`
}

// CreateStore creates a storefront owned by the caller. The slug is
// derived from the name unless an explicit one is given; either way a
// numeric suffix resolves collisions.
func (sc *StoreController) CreateStore(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if !user.IsLandlord() && !user.IsAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only landlords can create stores", nil)
	}

	var req CreateStoreRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	slugSource := req.Name
	if req.Slug != "" {
		slugSource = req.Slug
	}
	slug, err := utils.UniqueSlug(sc.DB, &models.Store{}, slugSource)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to derive slug", err)
	}

	store := models.Store{
		OwnerID:        user.ID,
		Name:           req.Name,
		Slug:           slug,
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		LogoURL:        req.LogoURL,
		CustomDomain:   req.CustomDomain,
		ExtraConfig:    req.ExtraConfig,
		IsActive:       true,
	}
	if req.Template != "" {
		store.Template = req.Template
	}
	if req.Font != "" {
		store.Font = req.Font
	}

	if err := sc.DB.Create(&store).Error; err != nil {
		sc.Logger.Printf("Failed to create store: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create store", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(store))
}

// GetMyStores lists stores the caller owns or manages through a team.
func (sc *StoreController) GetMyStores(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var stores []models.Store
	err := sc.DB.
		Distinct("stores.*").
		Joins("LEFT JOIN store_teams ON store_teams.store_id = stores.id AND store_teams.deleted_at IS NULL").
		Joins("LEFT JOIN team_members ON team_members.team_id = store_teams.team_id AND team_members.deleted_at IS NULL").
		Where("stores.owner_id = ? OR team_members.user_id = ?", user.ID, user.ID).
		Find(&stores).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch stores", err)
	}

	return c.JSON(utils.SuccessResponse(stores))
}

func (sc *StoreController) GetStore(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var store models.Store
	if err := sc.DB.Preload("StoreTeams").First(&store, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Store not found", nil)
	}

	ok, err := services.CanEditStoreContent(sc.DB, user, &store)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check permissions", err)
	}
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You do not have access to this store", nil)
	}

	return c.JSON(utils.SuccessResponse(store))
}

// UpdateStore edits store settings. Owner, staff, or team ADMIN.
func (sc *StoreController) UpdateStore(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var store models.Store
	if err := sc.DB.First(&store, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Store not found", nil)
	}

	ok, err := services.CanManageStore(sc.DB, user, &store)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check permissions", err)
	}
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You cannot manage this store", nil)
	}

	var req UpdateStoreRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if req.Name != nil {
		store.Name = *req.Name
	}
	if req.Template != nil {
		store.Template = *req.Template
	}
	if req.PrimaryColor != nil {
		store.PrimaryColor = *req.PrimaryColor
	}
	if req.SecondaryColor != nil {
		store.SecondaryColor = *req.SecondaryColor
	}
	if req.Font != nil {
		store.Font = *req.Font
	}
	if req.LogoURL != nil {
		store.LogoURL = *req.LogoURL
	}
	if req.CustomDomain != nil {
		store.CustomDomain = req.CustomDomain
	}
	if req.ExtraConfig != nil {
		store.ExtraConfig = *req.ExtraConfig
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}

	if err := sc.DB.Save(&store).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update store", err)
	}

	return c.JSON(utils.SuccessResponse(store))
}

// DeleteStore soft-deletes the store. Owner or staff only; team admins
// manage settings but cannot delete the storefront itself.
func (sc *StoreController) DeleteStore(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var store models.Store
	if err := sc.DB.First(&store, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Store not found", nil)
	}

	if store.OwnerID != user.ID && !user.IsAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only the owner can delete a store", nil)
	}

	if err := sc.DB.Delete(&store).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete store", err)
	}

	return c.JSON(fiber.Map{"message": "Store deleted"})
}

// AssignTeam associates a team with the store so its members gain
// management access.
func (sc *StoreController) AssignTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var store models.Store
	if err := sc.DB.First(&store, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Store not found", nil)
	}

	ok, err := services.CanManageStore(sc.DB, user, &store)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check permissions", err)
	}
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You cannot manage this store", nil)
	}

	var req AssignTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var team models.Team
	if err := sc.DB.First(&team, req.TeamID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	var existing int64
	sc.DB.Model(&models.StoreTeam{}).
		Where("store_id = ? AND team_id = ?", store.ID, team.ID).
		Count(&existing)
	if existing > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Team is already assigned to this store", nil)
	}

	link := models.StoreTeam{StoreID: store.ID, TeamID: team.ID}
	if err := sc.DB.Create(&link).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to assign team", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(link))
}

// UnassignTeam removes a team's association with the store.
func (sc *StoreController) UnassignTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var store models.Store
	if err := sc.DB.First(&store, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Store not found", nil)
	}

	ok, err := services.CanManageStore(sc.DB, user, &store)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check permissions", err)
	}
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You cannot manage this store", nil)
	}

	teamID := utils.ParseUint(c.Params("teamId"))
	result := sc.DB.Where("store_id = ? AND team_id = ?", store.ID, teamID).Delete(&models.StoreTeam{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to unassign team", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team is not assigned to this store", nil)
	}

	return c.JSON(fiber.Map{"message": "Team unassigned"})
}

// GetPublicStore resolves a storefront by slug for the public site,
// including its active catalog. No authentication.
func (sc *StoreController) GetPublicStore(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var store models.Store
	err := sc.DB.
		Preload("Products").
		Preload("Cabins", "state = ?", models.CabinAvailable).
		Preload("Cabins.Images").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&store).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Store not found", nil)
	}

	return c.JSON(utils.SuccessResponse(store))
}
