package controller

import (
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"

	"cabanas/models"
)

// ReservationStatusEvent is pushed to subscribed clients whenever a
// reservation changes state (payment confirmation, cancellation, expiry).
type ReservationStatusEvent struct {
	ReservationID uint   `json:"reservation_id"`
	Estado        string `json:"estado"`
	FechaInicio   string `json:"fecha_inicio"`
	FechaFin      string `json:"fecha_fin"`
}

var (
	wsMu          sync.RWMutex
	wsSubscribers = make(map[uint]map[*websocket.Conn]bool) // reservation id -> conns
)

// HandleReservationStatusWS subscribes a websocket client to status
// updates for one reservation. The client sends a single JSON message
// naming the reservation; events flow until either side disconnects.
func HandleReservationStatusWS(c *websocket.Conn) {
	defer c.Close()

	var input struct {
		ReservationID uint `json:"reservation_id"`
	}
	if err := c.ReadJSON(&input); err != nil {
		log.Printf("Error reading subscribe message: %v", err)
		return
	}
	if input.ReservationID == 0 {
		return
	}

	subscribe(input.ReservationID, c)
	defer unsubscribe(input.ReservationID, c)

	// Block until the client goes away; events are written from
	// NotifyReservationUpdate
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

// NotifyReservationUpdate pushes the reservation's current state to its
// subscribers. Dead connections are dropped on write failure.
func NotifyReservationUpdate(reservation *models.Reservation) {
	if reservation == nil {
		return
	}

	event := ReservationStatusEvent{
		ReservationID: reservation.ID,
		Estado:        reservation.Status,
		FechaInicio:   reservation.StartDate.Format("2006-01-02"),
		FechaFin:      reservation.EndDate.Format("2006-01-02"),
	}

	wsMu.RLock()
	conns := make([]*websocket.Conn, 0, len(wsSubscribers[reservation.ID]))
	for conn := range wsSubscribers[reservation.ID] {
		conns = append(conns, conn)
	}
	wsMu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(event); err != nil {
			log.Printf("Error writing reservation event: %v", err)
			unsubscribe(reservation.ID, conn)
		}
	}
}

func subscribe(reservationID uint, c *websocket.Conn) {
	wsMu.Lock()
	defer wsMu.Unlock()
	if wsSubscribers[reservationID] == nil {
		wsSubscribers[reservationID] = make(map[*websocket.Conn]bool)
	}
	wsSubscribers[reservationID][c] = true
}

func unsubscribe(reservationID uint, c *websocket.Conn) {
	wsMu.Lock()
	defer wsMu.Unlock()
	delete(wsSubscribers[reservationID], c)
	if len(wsSubscribers[reservationID]) == 0 {
		delete(wsSubscribers, reservationID)
	}
}
