// Package queue carries reservation audit events over RabbitMQ.
package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// ReservationQueue is the durable queue audit events are routed to.
const ReservationQueue = "reservation.events"

// Event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ReservationEvent is published after a reservation write succeeds.  It
// holds enough to reconstruct the audit trail without reading the
// primary database.
type ReservationEvent struct {
	Action        string   `json:"action"`
	ReservationID uint64   `json:"reservation_id"`
	UserID        *uint64  `json:"user_id,omitempty"`
	Date          string   `json:"date"`
	Service       string   `json:"service"`
	PartySize     int      `json:"party_size"`
	Status        string   `json:"status"`
	TableIDs      []uint64 `json:"table_ids"`
	OccurredAt    string   `json:"occurred_at"`
}

// NewReservationEvent snapshots res for the given action.
func NewReservationEvent(action string, res *model.Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		Action:        action,
		ReservationID: res.ID,
		UserID:        res.OwnerID,
		Date:          res.Date.UTC().Format(model.DateLayout),
		Service:       res.Service,
		PartySize:     res.PartySize,
		Status:        res.Status,
		TableIDs:      res.TableIDs(),
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
}

// Line renders the event as a single human-friendly log line.
func (ev ReservationEvent) Line() string {
	user := "anonymous"
	if ev.UserID != nil {
		user = fmt.Sprintf("%d", *ev.UserID)
	}
	ids := make([]string, 0, len(ev.TableIDs))
	for _, id := range ev.TableIDs {
		ids = append(ids, fmt.Sprintf("%d", id))
	}
	return fmt.Sprintf("[%s] Reservation %s | reservation_id=%d | user_id=%s | date=%s | service=%q | party_size=%d | status=%s | tables=[%s]\n",
		ev.OccurredAt, ev.Action, ev.ReservationID, user, ev.Date, ev.Service, ev.PartySize, ev.Status, strings.Join(ids, ","))
}
