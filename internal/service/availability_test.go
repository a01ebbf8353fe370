package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/model"
)

var day = time.Date(2030, 3, 14, 0, 0, 0, 0, time.UTC)

func tableIDs(tables []model.Table) []uint64 {
	ids := make([]uint64, 0, len(tables))
	for _, t := range tables {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestFreeTablesExcludesReservedForSameDayAndService(t *testing.T) {
	store := newStore()
	store.put(model.Reservation{Date: day, Service: "dinner", Tables: []model.Table{{ID: 2}}})
	store.put(model.Reservation{Date: day, Service: "lunch", Tables: []model.Table{{ID: 3}}})
	store.put(model.Reservation{Date: day.AddDate(0, 0, 1), Service: "dinner", Tables: []model.Table{{ID: 4}}})
	store.put(model.Reservation{Date: day, Service: "Dinner", Tables: []model.Table{{ID: 1}}})
	a := NewAvailability(newCatalog(1, 2, 3, 4), store, 4, nil)

	free, err := a.FreeTables(context.Background(), day, "dinner")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3, 4}, tableIDs(free))
}

func TestFreeAndReservedPartitionTheCatalog(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	store.put(model.Reservation{Date: day, Service: "lunch", Tables: []model.Table{{ID: 1}, {ID: 4}}})
	store.put(model.Reservation{Date: day, Service: "lunch", Tables: []model.Table{{ID: 4}, {ID: 5}}})
	catalog := newCatalog(1, 2, 3, 4, 5, 6)
	a := NewAvailability(catalog, store, 6, nil)

	free, err := a.FreeTables(ctx, day, "lunch")
	require.NoError(t, err)
	reserved, err := store.ReservedTableIDs(ctx, day, "lunch")
	require.NoError(t, err)

	union := map[uint64]int{}
	for _, id := range tableIDs(free) {
		union[id]++
	}
	for _, id := range reserved {
		union[id]++
	}
	assert.Len(t, union, len(catalog.tables))
	for id, n := range union {
		assert.Equal(t, 1, n, "table %d appears in both sets", id)
	}
}

func TestFreeTablesEmptyCatalog(t *testing.T) {
	a := NewAvailability(newCatalog(), newStore(), 5, nil)

	free, err := a.FreeTables(context.Background(), day, "dinner")
	require.NoError(t, err)
	assert.Empty(t, free)
}

func TestFreeTablesPropagatesCatalogError(t *testing.T) {
	catalog := newCatalog(1)
	catalog.err = errors.New("db down")
	a := NewAvailability(catalog, newStore(), 1, nil)

	_, err := a.FreeTables(context.Background(), day, "dinner")
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.err)
}

func TestReservedCountIsDistinct(t *testing.T) {
	store := newStore()
	store.put(model.Reservation{Date: day, Service: "dinner", Tables: []model.Table{{ID: 1}, {ID: 2}}})
	store.put(model.Reservation{Date: day, Service: "dinner", Tables: []model.Table{{ID: 2}}})
	a := NewAvailability(newCatalog(1, 2, 3), store, 3, nil)

	n, err := a.ReservedCount(context.Background(), day, "dinner")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestFreeSeatCountUsesConfiguredTotal(t *testing.T) {
	store := newStore()
	store.put(model.Reservation{Date: day, Service: "dinner", Tables: []model.Table{{ID: 1}}})
	// catalog of three, configured total of ten
	a := NewAvailability(newCatalog(1, 2, 3), store, 10, nil)

	n, err := a.FreeSeatCount(context.Background(), day, "dinner")
	require.NoError(t, err)
	assert.Equal(t, 9, n)
}

func TestFreeSeatCountNeverNegative(t *testing.T) {
	store := newStore()
	store.put(model.Reservation{Date: day, Service: "dinner", Tables: []model.Table{{ID: 1}, {ID: 2}, {ID: 3}}})
	a := NewAvailability(newCatalog(1, 2, 3), store, 1, nil)

	n, err := a.FreeSeatCount(context.Background(), day, "dinner")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDeleteFreesTablesWithoutReallocation(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	held := store.put(model.Reservation{Date: day, Service: "dinner", Tables: []model.Table{{ID: 1}, {ID: 2}}})
	waiting := store.put(model.Reservation{Date: day, Service: "dinner", PartySize: 4, Tables: []model.Table{{ID: 3}}})
	avail := NewAvailability(newCatalog(1, 2, 3), store, 3, nil)

	require.NoError(t, store.Delete(ctx, held.ID))

	free, err := avail.FreeTables(ctx, day, "dinner")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, tableIDs(free))
	assert.Equal(t, []uint64{3}, store.get(waiting.ID).TableIDs(), "other reservations are left alone")
}
