package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"cabanas/models"
	"cabanas/services"
	"cabanas/utils"
)

type ReservationController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewReservationController(db *gorm.DB, logger *log.Logger) *ReservationController {
	return &ReservationController{DB: db, Logger: logger}
}

type CreateReservationRequest struct {
	CabinIDs    []uint `json:"cabana_ids" validate:"required,min=1"`
	FechaInicio string `json:"fecha_inicio" validate:"required"`
	FechaFin    string `json:"fecha_fin" validate:"required"`
}

// CheckAvailability answers whether a cabin is free for the half-open
// range [fecha_inicio, fecha_fin). The query parameters are echoed back
// so clients can correlate concurrent checks.
func (rc *ReservationController) CheckAvailability(c *fiber.Ctx) error {
	cabinID := utils.ParseUint(c.Query("cabana_id"))
	if cabinID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "cabana_id is required", nil)
	}

	start, err := utils.ParseDate(c.Query("fecha_inicio"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "fecha_inicio must be YYYY-MM-DD", err)
	}
	end, err := utils.ParseDate(c.Query("fecha_fin"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "fecha_fin must be YYYY-MM-DD", err)
	}

	available, err := services.CheckAvailability(rc.DB, cabinID, start, end)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDateRange):
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "fecha_fin must be after fecha_inicio", nil)
		case errors.Is(err, services.ErrCabinNotFound):
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Cabin not found", nil)
		default:
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check availability", err)
		}
	}

	return c.JSON(fiber.Map{
		"cabana_id":    cabinID,
		"fecha_inicio": start.Format(utils.DateLayout),
		"fecha_fin":    end.Format(utils.DateLayout),
		"disponible":   available,
	})
}

// CreateReservation books one or more cabins for the caller. The
// reservation starts pendiente; payment confirms it.
func (rc *ReservationController) CreateReservation(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CreateReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	start, err := utils.ParseDate(req.FechaInicio)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "fecha_inicio must be YYYY-MM-DD", err)
	}
	end, err := utils.ParseDate(req.FechaFin)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "fecha_fin must be YYYY-MM-DD", err)
	}

	reservation, err := services.CreateReservation(rc.DB, user.ID, req.CabinIDs, start, end)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDateRange):
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "fecha_fin must be after fecha_inicio", nil)
		case errors.Is(err, services.ErrCabinNotFound):
			return utils.ErrorResponse(c, fiber.StatusNotFound, "One or more cabins were not found", nil)
		case errors.Is(err, services.ErrCabinInactive):
			return utils.ErrorResponse(c, fiber.StatusConflict, "Cabin is not available for booking", err)
		case errors.Is(err, services.ErrDatesUnavailable):
			return utils.ErrorResponse(c, fiber.StatusConflict, "Cabin is already reserved for those dates", err)
		default:
			logrus.WithFields(logrus.Fields{
				"client_id": user.ID,
				"cabins":    req.CabinIDs,
			}).Errorf("Failed to create reservation: %v", err)
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create reservation", err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(reservation))
}

// GetMyReservations lists the caller's own reservations, optionally
// filtered by estado.
func (rc *ReservationController) GetMyReservations(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	query := rc.DB.
		Preload("ReservationCabins").
		Preload("ReservationCabins.Cabin").
		Where("client_id = ?", user.ID)
	if estado := c.Query("estado"); estado != "" {
		query = query.Where("status = ?", estado)
	}

	var reservations []models.Reservation
	if err := query.Order("start_date DESC").Find(&reservations).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch reservations", err)
	}

	return c.JSON(utils.SuccessResponse(reservations))
}

// GetTeamReservations lists reservations touching any cabin of a team
// the caller belongs to. This is the landlord-side calendar.
func (rc *ReservationController) GetTeamReservations(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("teamId"))

	ok, err := services.IsTeamMember(rc.DB, user.ID, teamID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check membership", err)
	}
	if !ok && !user.IsAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You are not a member of this team", nil)
	}

	query := rc.DB.
		Distinct("reservations.*").
		Joins("JOIN reservation_cabins ON reservation_cabins.reservation_id = reservations.id AND reservation_cabins.deleted_at IS NULL").
		Joins("JOIN cabins ON cabins.id = reservation_cabins.cabin_id").
		Where("cabins.team_id = ?", teamID).
		Preload("ReservationCabins").
		Preload("ReservationCabins.Cabin")
	if estado := c.Query("estado"); estado != "" {
		query = query.Where("reservations.status = ?", estado)
	}

	var reservations []models.Reservation
	if err := query.Order("reservations.start_date DESC").Find(&reservations).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch reservations", err)
	}

	return c.JSON(utils.SuccessResponse(reservations))
}

// GetReservation fetches one reservation. Visible to its client, to
// members of any team owning a booked cabin, and to staff.
func (rc *ReservationController) GetReservation(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	reservation, err := rc.loadVisibleReservation(c, user)
	if reservation == nil {
		return err
	}

	return c.JSON(utils.SuccessResponse(reservation))
}

// CancelReservation moves the reservation to cancelada, freeing its
// dates. Allowed for the client who booked it, the cabin's team, or staff.
func (rc *ReservationController) CancelReservation(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	reservation, err := rc.loadVisibleReservation(c, user)
	if reservation == nil {
		return err
	}

	cancelled, err := services.CancelReservation(rc.DB, reservation.ID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransition) {
			return utils.ErrorResponse(c, fiber.StatusConflict, "Reservation is already cancelled", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to cancel reservation", err)
	}

	NotifyReservationUpdate(cancelled)

	return c.JSON(utils.SuccessResponse(cancelled))
}

// loadVisibleReservation fetches the reservation in :id and enforces
// visibility. On failure it writes the response and returns nil.
func (rc *ReservationController) loadVisibleReservation(c *fiber.Ctx, user *models.User) (*models.Reservation, error) {
	var reservation models.Reservation
	err := rc.DB.
		Preload("ReservationCabins").
		Preload("ReservationCabins.Cabin").
		First(&reservation, utils.ParseUint(c.Params("id"))).Error
	if err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Reservation not found", nil)
	}

	if reservation.ClientID == user.ID || user.IsAdmin {
		return &reservation, nil
	}

	for _, rcab := range reservation.ReservationCabins {
		ok, err := services.IsTeamMember(rc.DB, user.ID, rcab.Cabin.TeamID)
		if err != nil {
			return nil, utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check membership", err)
		}
		if ok {
			return &reservation, nil
		}
	}

	return nil, utils.ErrorResponse(c, fiber.StatusForbidden, "You do not have access to this reservation", nil)
}
