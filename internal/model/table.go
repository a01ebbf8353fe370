package model

// SeatsPerTable is the number of guests seated at one table when computing
// how many tables a party needs.  The stored Capacity column is not
// consulted by allocation.
const SeatsPerTable = 2

// Table describes a physical table in the restaurant dining room.  Tables
// are created by catalog administration and are immutable as far as the
// reservation engine is concerned.
//
// Fields:
//  ID          – primary key identifier.
//  TableNumber – display label shown to staff (unique).
//  Capacity    – stored seating capacity, informational only.
type Table struct {
    ID          uint64 `json:"id"`           // restaurant_tables.id
    TableNumber uint32 `json:"table_number"` // restaurant_tables.table_number
    Capacity    uint32 `json:"capacity"`     // restaurant_tables.capacity
}

// RequiredTables returns how many tables a party of the given size needs
// at SeatsPerTable guests per table, rounded up.  Non-positive sizes need
// no tables.
func RequiredTables(partySize int) int {
    if partySize <= 0 {
        return 0
    }
    return (partySize + SeatsPerTable - 1) / SeatsPerTable
}
