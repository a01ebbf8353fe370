package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/table-reservation/internal/logger"
	"github.com/iliyamo/table-reservation/internal/metrics"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
)

// CreateRequest is the input of Allocator.Create.  OwnerID is optional;
// when set, the owner may hold at most one reservation per date and sitting.
type CreateRequest struct {
	Date      time.Time
	Service   string
	PartySize int
	OwnerID   *uint64
}

// Allocator creates and edits reservations, choosing which tables they hold.
type Allocator struct {
	tables       TableCatalog
	reservations ReservationStore
	availability *Availability
	locker       Locker
	metrics      *metrics.Metrics
	log          *logger.Logger
	now          func() time.Time
}

// Option customises an Allocator.
type Option func(*Allocator)

// WithClock replaces time.Now, which Create compares dates against.
func WithClock(now func() time.Time) Option { return func(a *Allocator) { a.now = now } }

// WithLocker replaces the default in-process allocation lock.
func WithLocker(l Locker) Option { return func(a *Allocator) { a.locker = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(a *Allocator) { a.metrics = m } }

func NewAllocator(tables TableCatalog, reservations ReservationStore, availability *Availability, log *logger.Logger, opts ...Option) *Allocator {
	if log == nil {
		log = logger.Nop()
	}
	a := &Allocator{
		tables:       tables,
		reservations: reservations,
		availability: availability,
		locker:       NewLocalLocker(),
		log:          log,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Create books the first RequiredTables(PartySize) free tables, in catalog
// order, for the requested date and sitting.  It returns
// ErrCapacityExhausted, persisting nothing, when fewer tables are free.
//
// The past-date check compares against the current instant, not the
// current calendar day: a reservation dated today at midnight is rejected.
func (a *Allocator) Create(ctx context.Context, req CreateRequest) (*model.Reservation, error) {
	if req.Service == "" {
		a.metrics.ObserveCreate(metrics.OutcomeInvalid)
		return nil, fmt.Errorf("%w: service is required", ErrInvalidRequest)
	}
	if req.Date.Before(a.now()) {
		a.metrics.ObserveCreate(metrics.OutcomeInvalid)
		return nil, fmt.Errorf("%w: reservation date is in the past", ErrInvalidRequest)
	}
	if req.PartySize < 1 {
		a.metrics.ObserveCreate(metrics.OutcomeInvalid)
		return nil, fmt.Errorf("%w: party size must be positive", ErrInvalidRequest)
	}

	unlock, err := a.locker.Lock(ctx, LockKey(req.Date, req.Service))
	if err != nil {
		a.metrics.ObserveCreate(metrics.OutcomeError)
		return nil, err
	}
	defer unlock()

	if req.OwnerID != nil {
		existing, err := a.CheckExisting(ctx, *req.OwnerID, req.Date, req.Service)
		if err != nil {
			a.metrics.ObserveCreate(metrics.OutcomeError)
			return nil, err
		}
		if existing != nil {
			a.metrics.ObserveCreate(metrics.OutcomeDuplicate)
			return nil, ErrDuplicateReservation
		}
	}

	required := model.RequiredTables(req.PartySize)
	available, err := a.availability.FreeTables(ctx, req.Date, req.Service)
	if err != nil {
		a.metrics.ObserveCreate(metrics.OutcomeError)
		a.log.Error(ctx, err).Msg("error creating reservation")
		return nil, err
	}
	a.log.Debug(ctx).Int("required", required).Int("available", len(available)).Msg("allocating tables")

	if len(available) < required {
		a.metrics.ObserveCreate(metrics.OutcomeExhausted)
		a.log.Warn(ctx).
			Str("date", req.Date.Format(model.DateLayout)).
			Str("service", req.Service).
			Int("required", required).
			Int("available", len(available)).
			Msg("not enough tables available for reservation")
		return nil, ErrCapacityExhausted
	}

	res := &model.Reservation{
		Date:      req.Date,
		Service:   req.Service,
		PartySize: req.PartySize,
		Status:    model.StatusPending,
		OwnerID:   req.OwnerID,
		Tables:    make([]model.Table, 0, required),
	}
	for _, t := range available[:required] {
		res.AddTable(t)
	}

	if err := a.reservations.Save(ctx, res); err != nil {
		a.metrics.ObserveCreate(metrics.OutcomeError)
		a.log.Error(ctx, err).Msg("error creating reservation")
		return nil, fmt.Errorf("save reservation: %w", err)
	}
	a.metrics.ObserveCreate(metrics.OutcomeCreated)
	a.metrics.ObserveTables(len(res.Tables))
	return res, nil
}

// Update applies patch to res and persists it.
//
// Date, service and party size are taken as given, without the past-date
// and duplicate checks of Create.  When patch.TableIDs is present the table
// set is rebuilt: listed tables are attached in order until the required
// count is reached (unknown IDs are skipped, IDs already attached still
// count) without checking other reservations, then the remainder is topped
// up from the free tables of the updated date and sitting.  A shortfall is
// persisted as is.
func (a *Allocator) Update(ctx context.Context, res *model.Reservation, patch model.ReservationPatch) (*model.Reservation, error) {
	a.log.Info(ctx).Uint64("id", res.ID).Msg("updating reservation")

	if patch.Date != nil {
		res.Date = *patch.Date
	}
	if patch.Service != nil {
		res.Service = *patch.Service
	}
	if patch.PartySize != nil {
		res.PartySize = *patch.PartySize
	}

	if patch.TableIDs != nil {
		unlock, err := a.locker.Lock(ctx, LockKey(res.Date, res.Service))
		if err != nil {
			a.metrics.ObserveUpdate(metrics.OutcomeError)
			return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
		}
		defer unlock()

		if err := a.reassignTables(ctx, res, patch.TableIDs); err != nil {
			a.metrics.ObserveUpdate(metrics.OutcomeError)
			a.log.Error(ctx, err).Uint64("id", res.ID).Msg("error updating reservation")
			return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
		}
	}

	if err := a.reservations.Save(ctx, res); err != nil {
		a.metrics.ObserveUpdate(metrics.OutcomeError)
		a.log.Error(ctx, err).Uint64("id", res.ID).Msg("error updating reservation")
		return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	if len(res.Tables) < model.RequiredTables(res.PartySize) {
		a.metrics.ObserveUpdate(metrics.OutcomeShort)
	} else {
		a.metrics.ObserveUpdate(metrics.OutcomeUpdated)
	}
	a.log.Info(ctx).
		Uint64("id", res.ID).
		Int("party_size", res.PartySize).
		Uints64("tables", res.TableIDs()).
		Msg("reservation updated successfully")
	return res, nil
}

func (a *Allocator) reassignTables(ctx context.Context, res *model.Reservation, tableIDs []uint64) error {
	required := model.RequiredTables(res.PartySize)
	res.ClearTables()

	added := 0
	for _, id := range tableIDs {
		if added >= required {
			break
		}
		t, err := a.tables.FindByID(ctx, id)
		if errors.Is(err, repository.ErrTableNotFound) {
			a.log.Warn(ctx).Uint64("table_id", id).Msg("table not found")
			continue
		}
		if err != nil {
			return fmt.Errorf("find table %d: %w", id, err)
		}
		res.AddTable(*t)
		added++
	}
	if added >= required {
		return nil
	}

	free, err := a.availability.FreeTables(ctx, res.Date, res.Service)
	if err != nil {
		return err
	}
	for _, t := range free {
		if added >= required {
			break
		}
		if res.AddTable(t) {
			added++
		}
	}
	return nil
}

// CheckExisting returns the owner's reservation for exactly this date and
// sitting, or nil when there is none.
func (a *Allocator) CheckExisting(ctx context.Context, ownerID uint64, date time.Time, service string) (*model.Reservation, error) {
	res, err := a.reservations.FindOne(ctx, ownerID, date, service)
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return res, nil
}
