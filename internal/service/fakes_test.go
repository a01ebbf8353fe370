package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
)

type fakeCatalog struct {
	tables []model.Table
	err    error
}

func newCatalog(ids ...uint64) *fakeCatalog {
	c := &fakeCatalog{}
	for _, id := range ids {
		c.tables = append(c.tables, model.Table{ID: id, TableNumber: uint32(id), Capacity: 2})
	}
	return c
}

func (c *fakeCatalog) FindAll(ctx context.Context) ([]model.Table, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := make([]model.Table, len(c.tables))
	copy(out, c.tables)
	return out, nil
}

func (c *fakeCatalog) FindByID(ctx context.Context, id uint64) (*model.Table, error) {
	if c.err != nil {
		return nil, c.err
	}
	for _, t := range c.tables {
		if t.ID == id {
			t := t
			return &t, nil
		}
	}
	return nil, repository.ErrTableNotFound
}

type fakeStore struct {
	mu      sync.Mutex
	nextID  uint64
	rows    map[uint64]model.Reservation
	saves   int
	saveErr error
}

func newStore() *fakeStore {
	return &fakeStore{rows: make(map[uint64]model.Reservation)}
}

func clone(r model.Reservation) model.Reservation {
	r.Tables = append([]model.Table(nil), r.Tables...)
	return r
}

// put persists r directly, bypassing the engine.
func (s *fakeStore) put(r model.Reservation) model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r.ID = s.nextID
	s.rows[r.ID] = clone(r)
	return r
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *fakeStore) get(id uint64) model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.rows[id])
}

func (s *fakeStore) matching(date time.Time, service string) []model.Reservation {
	var out []model.Reservation
	for id := uint64(1); id <= s.nextID; id++ {
		r, ok := s.rows[id]
		if ok && model.SameDay(r.Date, date) && r.Service == service {
			out = append(out, r)
		}
	}
	return out
}

func (s *fakeStore) FindOne(ctx context.Context, ownerID uint64, date time.Time, service string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.matching(date, service) {
		if r.OwnerID != nil && *r.OwnerID == ownerID {
			r := clone(r)
			return &r, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ReservedTableIDs(ctx context.Context, date time.Time, service string) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[uint64]bool{}
	var ids []uint64
	for _, r := range s.matching(date, service) {
		for _, t := range r.Tables {
			if !seen[t.ID] {
				seen[t.ID] = true
				ids = append(ids, t.ID)
			}
		}
	}
	return ids, nil
}

func (s *fakeStore) ReservedTableCount(ctx context.Context, date time.Time, service string) (int, error) {
	ids, err := s.ReservedTableIDs(ctx, date, service)
	return len(ids), err
}

func (s *fakeStore) Save(ctx context.Context, r *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	if r.ID == 0 {
		s.nextID++
		r.ID = s.nextID
	}
	s.rows[r.ID] = clone(*r)
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return repository.ErrReservationNotFound
	}
	delete(s.rows, id)
	return nil
}

var errCountFailed = errors.New("count failed")

type failingCountStore struct {
	*fakeStore
}

func (s *failingCountStore) ReservedTableCount(ctx context.Context, date time.Time, service string) (int, error) {
	return 0, errCountFailed
}

// slowStore widens the window between reading free tables and saving.
type slowStore struct {
	*fakeStore
	delay time.Duration
}

func (s *slowStore) ReservedTableIDs(ctx context.Context, date time.Time, service string) ([]uint64, error) {
	time.Sleep(s.delay)
	return s.fakeStore.ReservedTableIDs(ctx, date, service)
}

type recordingLocker struct {
	keys []string
}

func (l *recordingLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.keys = append(l.keys, key)
	return func() {}, nil
}

func ptr[T any](v T) *T { return &v }

// size reports how many lock keys are currently tracked.
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
