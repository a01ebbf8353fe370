package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/table-reservation/internal/logger"
	"github.com/iliyamo/table-reservation/internal/model"
)

// Availability answers which tables are free for a date and sitting.
//
// totalTables is the configured dining room size.  It is intentionally not
// derived from the catalog: FreeSeatCount reports against the configured
// figure while FreeTables reports against the catalog rows.
type Availability struct {
	tables       TableCatalog
	reservations ReservationStore
	totalTables  int
	log          *logger.Logger
}

func NewAvailability(tables TableCatalog, reservations ReservationStore, totalTables int, log *logger.Logger) *Availability {
	if log == nil {
		log = logger.Nop()
	}
	return &Availability{tables: tables, reservations: reservations, totalTables: totalTables, log: log}
}

// FreeTables returns the catalog minus every table reserved for date and
// service, preserving catalog order.
func (a *Availability) FreeTables(ctx context.Context, date time.Time, service string) ([]model.Table, error) {
	all, err := a.tables.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	reservedIDs, err := a.reservations.ReservedTableIDs(ctx, date, service)
	if err != nil {
		return nil, fmt.Errorf("reserved tables: %w", err)
	}
	reserved := make(map[uint64]struct{}, len(reservedIDs))
	for _, id := range reservedIDs {
		reserved[id] = struct{}{}
	}

	free := make([]model.Table, 0, len(all))
	for _, t := range all {
		if _, taken := reserved[t.ID]; !taken {
			free = append(free, t)
		}
	}
	a.log.Debug(ctx).
		Str("date", date.Format(model.DateLayout)).
		Str("service", service).
		Int("all", len(all)).
		Uints64("reserved", reservedIDs).
		Int("free", len(free)).
		Msg("computed free tables")
	return free, nil
}

// ReservedCount returns the number of distinct tables reserved for date
// and service.
func (a *Availability) ReservedCount(ctx context.Context, date time.Time, service string) (int, error) {
	n, err := a.reservations.ReservedTableCount(ctx, date, service)
	if err != nil {
		return 0, fmt.Errorf("count reserved tables: %w", err)
	}
	return n, nil
}

// FreeSeatCount is the configured total minus the reserved count, never
// below zero.
func (a *Availability) FreeSeatCount(ctx context.Context, date time.Time, service string) (int, error) {
	reserved, err := a.ReservedCount(ctx, date, service)
	if err != nil {
		return 0, err
	}
	free := a.totalTables - reserved
	if free < 0 {
		free = 0
	}
	return free, nil
}
