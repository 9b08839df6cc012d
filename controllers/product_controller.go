package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cabanas/models"
	"cabanas/services"
	"cabanas/utils"
)

type ProductController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewProductController(db *gorm.DB, logger *log.Logger) *ProductController {
	return &ProductController{DB: db, Logger: logger}
}

type CreateProductRequest struct {
	StoreID     uint   `json:"store_id" validate:"required"`
	Name        string `json:"name" validate:"required,max=150"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	PriceCents  int64  `json:"price_cents" validate:"required,gt=0"`
	Kind        string `json:"kind" validate:"required,oneof=ropa electronica comida servicio libros hogar otros"`
}

type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=150"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	PriceCents  *int64  `json:"price_cents" validate:"omitempty,gt=0"`
	Kind        *string `json:"kind" validate:"omitempty,oneof=ropa electronica comida servicio libros hogar otros"`
}

// ListStoreProducts lists a store's catalog, optionally filtered by
// kind. Public.
func (pc *ProductController) ListStoreProducts(c *fiber.Ctx) error {
	storeID := utils.ParseUint(c.Params("id"))

	var store models.Store
	if err := pc.DB.First(&store, storeID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Store not found", nil)
	}

	query := pc.DB.Where("store_id = ?", storeID)
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var products []models.Product
	if err := query.Order("name").Find(&products).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch products", err)
	}

	return c.JSON(utils.SuccessResponse(products))
}

// CreateProduct adds an item to a store catalog. Needs content access
// to the store.
func (pc *ProductController) CreateProduct(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var store models.Store
	if err := pc.DB.First(&store, req.StoreID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Store not found", nil)
	}

	ok, err := services.CanEditStoreContent(pc.DB, user, &store)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check permissions", err)
	}
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You cannot edit this store's catalog", nil)
	}

	product := models.Product{
		StoreID:     req.StoreID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Kind:        req.Kind,
	}
	if err := pc.DB.Create(&product).Error; err != nil {
		pc.Logger.Printf("Failed to create product: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create product", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(product))
}

func (pc *ProductController) UpdateProduct(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	product, resp := pc.loadEditableProduct(c, user)
	if product == nil {
		return resp
	}

	var req UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.PriceCents != nil {
		product.PriceCents = *req.PriceCents
	}
	if req.Kind != nil {
		product.Kind = *req.Kind
	}

	if err := pc.DB.Save(product).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update product", err)
	}

	return c.JSON(utils.SuccessResponse(product))
}

func (pc *ProductController) DeleteProduct(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	product, resp := pc.loadEditableProduct(c, user)
	if product == nil {
		return resp
	}

	if err := pc.DB.Delete(product).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete product", err)
	}

	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// loadEditableProduct fetches the product in :id and checks store
// content access. On failure it writes the response and returns nil.
func (pc *ProductController) loadEditableProduct(c *fiber.Ctx, user *models.User) (*models.Product, error) {
	var product models.Product
	if err := pc.DB.First(&product, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Product not found", nil)
	}

	var store models.Store
	if err := pc.DB.First(&store, product.StoreID).Error; err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Store not found", nil)
	}

	ok, err := services.CanEditStoreContent(pc.DB, user, &store)
	if err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check permissions", err)
	}
	if !ok {
		return nil, utils.ErrorResponse(c, fiber.StatusForbidden, "You cannot edit this store's catalog", nil)
	}
	return &product, nil
}
