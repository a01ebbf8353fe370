package service

import (
	"context"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// TableCatalog is read-only access to the physical tables.  FindAll must
// enumerate in a stable order (ascending ID): allocation takes the first
// free tables in that order.  FindByID returns repository.ErrTableNotFound
// for unknown IDs.
type TableCatalog interface {
	FindAll(ctx context.Context) ([]model.Table, error)
	FindByID(ctx context.Context, id uint64) (*model.Table, error)
}

// ReservationStore persists reservations and their table associations.
// Date arguments are matched by calendar day and service by exact string
// equality.  FindOne returns nil, nil when no reservation matches.  Delete
// is a plain removal; freed tables are not re-allocated.
type ReservationStore interface {
	FindOne(ctx context.Context, ownerID uint64, date time.Time, service string) (*model.Reservation, error)
	ReservedTableIDs(ctx context.Context, date time.Time, service string) ([]uint64, error)
	ReservedTableCount(ctx context.Context, date time.Time, service string) (int, error)
	Save(ctx context.Context, r *model.Reservation) error
	Delete(ctx context.Context, id uint64) error
}
