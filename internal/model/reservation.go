package model

import "time"

// Reservation statuses.  Only StatusPending is ever assigned by the
// allocation engine.
const (
    StatusPending = "pending"
)

// Well known sittings.  Any other non-empty string is accepted as an
// opaque sitting name.
const (
    ServiceLunch  = "lunch"
    ServiceDinner = "dinner"
)

// DateLayout is the calendar-day format used for reservation dates in
// storage and in API payloads.
const DateLayout = "2006-01-02"

// Reservation records a party's booking of one or more tables for a
// single sitting on a single day.
//
// Fields:
//  ID        – primary key identifier.
//  Date      – calendar day of the booking (time of day is ignored by storage).
//  Service   – sitting name, e.g. lunch or dinner.
//  PartySize – number of guests.
//  Status    – free text, "pending" on creation.
//  OwnerID   – requesting user, nil for anonymous bookings.
//  Tables    – tables held by this reservation, no duplicates.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Reservation struct {
    ID        uint64    `json:"id"`                 // reservations.id
    Date      time.Time `json:"date"`               // reservations.date
    Service   string    `json:"service"`            // reservations.service
    PartySize int       `json:"party_size"`         // reservations.party_size
    Status    string    `json:"status"`             // reservations.status
    OwnerID   *uint64   `json:"user_id,omitempty"`  // reservations.user_id (nullable)
    Tables    []Table   `json:"tables"`             // reservation_tables
    CreatedAt time.Time `json:"created_at"`         // reservations.created_at
    UpdatedAt time.Time `json:"updated_at"`         // reservations.updated_at
}

// HasTable reports whether a table with the given ID is attached.
func (r Reservation) HasTable(id uint64) bool {
    for _, t := range r.Tables {
        if t.ID == id {
            return true
        }
    }
    return false
}

// AddTable attaches t unless a table with the same ID is already attached.
// It reports whether the table was added.
func (r *Reservation) AddTable(t Table) bool {
    if r.HasTable(t.ID) {
        return false
    }
    r.Tables = append(r.Tables, t)
    return true
}

// ClearTables detaches every table.
func (r *Reservation) ClearTables() { r.Tables = []Table{} }

// TableIDs returns the IDs of the attached tables in attachment order.
func (r Reservation) TableIDs() []uint64 {
    ids := make([]uint64, 0, len(r.Tables))
    for _, t := range r.Tables {
        ids = append(ids, t.ID)
    }
    return ids
}

// ReservationPatch carries the optional fields of a reservation edit.  A
// nil pointer means the field was not supplied.  TableIDs is considered
// supplied whenever it is non-nil, including an empty slice.
type ReservationPatch struct {
    Date      *time.Time
    Service   *string
    PartySize *int
    TableIDs  []uint64
}

// SameDay reports whether a and b fall on the same calendar day in UTC.
func SameDay(a, b time.Time) bool {
    return a.UTC().Format(DateLayout) == b.UTC().Format(DateLayout)
}
