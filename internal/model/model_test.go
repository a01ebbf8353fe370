package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRequiredTables(t *testing.T) {
	cases := map[int]int{-1: 0, 0: 0, 1: 1, 2: 1, 3: 2, 4: 2, 5: 3, 11: 6}
	for party, want := range cases {
		assert.Equal(t, want, RequiredTables(party), "party of %d", party)
	}
}

func TestReservationAddTableSkipsDuplicates(t *testing.T) {
	var r Reservation
	assert.True(t, r.AddTable(Table{ID: 4}))
	assert.True(t, r.AddTable(Table{ID: 1}))
	assert.False(t, r.AddTable(Table{ID: 4}))
	assert.Equal(t, []uint64{4, 1}, r.TableIDs())

	r.ClearTables()
	assert.NotNil(t, r.Tables)
	assert.Empty(t, r.TableIDs())
}

func TestSameDay(t *testing.T) {
	a := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameDay(a, a.Add(23*time.Hour)))
	assert.False(t, SameDay(a, a.Add(24*time.Hour)))
}

func TestValidPrice(t *testing.T) {
	assert.True(t, ValidPrice(decimal.RequireFromString("6.50")))
	assert.True(t, ValidPrice(MaxMealPrice))
	assert.False(t, ValidPrice(decimal.Zero))
	assert.False(t, ValidPrice(decimal.RequireFromString("-1")))
	assert.False(t, ValidPrice(decimal.RequireFromString("1000")))
	assert.False(t, ValidPrice(decimal.RequireFromString("3.333")))
}

func TestMealCategoryIDs(t *testing.T) {
	m := Meal{Categories: []Category{{ID: 3}, {ID: 1}}}
	assert.Equal(t, []uint64{3, 1}, m.CategoryIDs())
}
