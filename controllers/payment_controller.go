package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"gorm.io/gorm"

	"cabanas/config"
	"cabanas/models"
	"cabanas/services"
	"cabanas/utils"
)

func InitStripe() {
	stripe.Key = config.AppConfig.StripeSecretKey
}

// CreateCheckoutSession starts Stripe Checkout for a pendiente
// reservation owned by the caller. The reservation id travels in the
// session metadata so the webhook can find it back.
func CreateCheckoutSession(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	reservationID := utils.ParseUint(c.Params("id"))

	var reservation models.Reservation
	err := config.DB.
		Preload("ReservationCabins").
		Preload("ReservationCabins.Cabin").
		First(&reservation, reservationID).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Reservation not found",
		})
	}

	if reservation.ClientID != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only pay for your own reservations",
		})
	}
	if reservation.Status != models.ReservationPending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Only pending reservations can be paid",
		})
	}

	description := fmt.Sprintf("Reserva del %s al %s",
		reservation.StartDate.Format(utils.DateLayout),
		reservation.EndDate.Format(utils.DateLayout))

	name := "Reserva de cabaña"
	if len(reservation.ReservationCabins) == 1 {
		name = "Reserva: " + reservation.ReservationCabins[0].Cabin.Name
	} else if len(reservation.ReservationCabins) > 1 {
		name = fmt.Sprintf("Reserva de %d cabañas", len(reservation.ReservationCabins))
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(config.AppConfig.StripeCurrency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(name),
						Description: stripe.String(description),
					},
					UnitAmount: stripe.Int64(reservation.FinalPriceCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:    stripe.String(config.AppConfig.FrontendURL + "/reservas/" + strconv.Itoa(int(reservation.ID)) + "?pago=ok"),
		CancelURL:     stripe.String(config.AppConfig.FrontendURL + "/reservas/" + strconv.Itoa(int(reservation.ID)) + "?pago=cancelado"),
		CustomerEmail: stripe.String(user.Email),
		Metadata: map[string]string{
			"reservation_id": strconv.Itoa(int(reservation.ID)),
			"client_id":      strconv.Itoa(int(user.ID)),
		},
	}

	sess, err := session.New(params)
	if err != nil {
		logrus.WithField("reservation_id", reservation.ID).Errorf("Failed to create checkout session: %v", err)
		sentry.CaptureException(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start payment",
		})
	}

	if err := config.DB.Model(&reservation).Update("stripe_session_id", sess.ID).Error; err != nil {
		logrus.WithField("reservation_id", reservation.ID).Errorf("Failed to store session id: %v", err)
	}

	return c.JSON(fiber.Map{
		"checkout_url": sess.URL,
		"session_id":   sess.ID,
	})
}

// HandleStripeWebhook processes Stripe webhook events. Signature
// verification happens before anything else; the only event acted on is
// checkout.session.completed, which confirms the reservation named in
// the session metadata. Unknown or already-confirmed reservations still
// get a 200 so Stripe stops retrying.
func HandleStripeWebhook(c *fiber.Ctx) error {
	event, err := utils.ConstructStripeEvent(c)
	if err != nil {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid webhook"})
	}

	switch event.Type {
	case "checkout.session.completed":
		return handleCheckoutCompleted(c, event)
	default:
		// Not an event we act on
		return c.SendStatus(fiber.StatusOK)
	}
}

func handleCheckoutCompleted(c *fiber.Ctx, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		logrus.Errorf("Failed to parse checkout session payload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid event payload"})
	}

	idStr, ok := sess.Metadata["reservation_id"]
	if !ok {
		logrus.WithField("session_id", sess.ID).Warn("Checkout session without reservation_id metadata")
		return c.SendStatus(fiber.StatusOK)
	}
	reservationID := utils.ParseUint(idStr)
	if reservationID == 0 {
		logrus.WithField("session_id", sess.ID).Warnf("Malformed reservation_id metadata: %q", idStr)
		return c.SendStatus(fiber.StatusOK)
	}

	reservation, err := services.ConfirmReservation(config.DB, reservationID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTransition):
			// Cancelled before payment completed; acknowledge and let
			// support reconcile the charge
			logrus.WithFields(logrus.Fields{
				"reservation_id": reservationID,
				"session_id":     sess.ID,
			}).Warn("Payment completed for a cancelled reservation")
			return c.SendStatus(fiber.StatusOK)
		case errors.Is(err, gorm.ErrRecordNotFound):
			logrus.WithField("reservation_id", reservationID).Warn("Payment for unknown reservation")
			return c.SendStatus(fiber.StatusOK)
		default:
			logrus.WithField("reservation_id", reservationID).Errorf("Failed to confirm reservation: %v", err)
			sentry.CaptureException(err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to confirm reservation",
			})
		}
	}

	NotifyReservationUpdate(reservation)
	return c.SendStatus(fiber.StatusOK)
}
