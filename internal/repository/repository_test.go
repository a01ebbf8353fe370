package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var testDay = time.Date(2030, 3, 14, 18, 0, 0, 0, time.UTC)

func TestTableRepoFindAllOrdersByID(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM restaurant_tables ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "table_number", "capacity"}).
			AddRow(1, 101, 2).
			AddRow(2, 102, 4))

	tables, err := NewTableRepo(db).FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Table{{ID: 1, TableNumber: 101, Capacity: 2}, {ID: 2, TableNumber: 102, Capacity: 4}}, tables)
}

func TestTableRepoFindByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM restaurant_tables WHERE id = ?")).
		WithArgs(uint64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := NewTableRepo(db).FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestReservationRepoReservedTableIDsUsesCalendarDay(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT rt.table_id")).
		WithArgs("2030-03-14", "dinner").
		WillReturnRows(sqlmock.NewRows([]string{"table_id"}).AddRow(2).AddRow(5))

	ids, err := NewReservationRepo(db).ReservedTableIDs(context.Background(), testDay, "dinner")
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 5}, ids)
}

func TestReservationRepoFindOneNone(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = ? AND date = ? AND service = ?")).
		WithArgs(uint64(7), "2030-03-14", "lunch").
		WillReturnError(sql.ErrNoRows)

	res, err := NewReservationRepo(db).FindOne(context.Background(), 7, testDay, "lunch")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestReservationRepoSaveInsertsReservationAndTables(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
		WithArgs(nil, "2030-03-14", "dinner", 4, model.StatusPending).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservation_tables (reservation_id, table_id) VALUES (?, ?),(?, ?)")).
		WithArgs(uint64(9), uint64(1), uint64(9), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at, updated_at FROM reservations")).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	res := &model.Reservation{
		Date: testDay, Service: "dinner", PartySize: 4, Status: model.StatusPending,
		Tables: []model.Table{{ID: 1}, {ID: 2}},
	}
	require.NoError(t, NewReservationRepo(db).Save(context.Background(), res))
	assert.Equal(t, uint64(9), res.ID)
	assert.Equal(t, now, res.CreatedAt)
}

func TestReservationRepoSaveUpdateReplacesTables(t *testing.T) {
	db, mock := newMock(t)
	owner := uint64(3)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET")).
		WithArgs(owner, "2030-03-14", "lunch", 2, model.StatusPending, uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reservation_tables WHERE reservation_id = ?")).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at, updated_at")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(testDay, testDay))
	mock.ExpectCommit()

	res := &model.Reservation{ID: 4, OwnerID: &owner, Date: testDay, Service: "lunch", PartySize: 2, Status: model.StatusPending}
	require.NoError(t, NewReservationRepo(db).Save(context.Background(), res))
}

func TestReservationRepoSaveRollsBackOnError(t *testing.T) {
	db, mock := newMock(t)
	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).WillReturnError(boom)
	mock.ExpectRollback()

	res := &model.Reservation{Date: testDay, Service: "dinner", PartySize: 1, Status: model.StatusPending}
	err := NewReservationRepo(db).Save(context.Background(), res)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, res.ID)
}

func TestReservationRepoGetByIDLoadsTables(t *testing.T) {
	db, mock := newMock(t)
	cols := []string{"id", "user_id", "date", "service", "party_size", "status", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE id = ?")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(5, nil, testDay, "dinner", 3, "pending", testDay, testDay))
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservation_tables rt")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id", "id", "table_number", "capacity"}).
			AddRow(5, 1, 1, 2).
			AddRow(5, 3, 3, 2))

	res, err := NewReservationRepo(db).GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, res.OwnerID)
	assert.Equal(t, []uint64{1, 3}, res.TableIDs())
}

func TestReservationRepoDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reservations WHERE id = ?")).
		WithArgs(uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewReservationRepo(db).Delete(context.Background(), 8)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestUserRepoGetByEmailNormalises(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("ana@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := NewUserRepo(db).GetByEmail(context.Background(), "  Ana@Example.com ")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMealRepoListFiltersByCategory(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT m.id")).
		WithArgs(uint64(1), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price", "picture"}).
			AddRow(2, "Soup", "Leek and potato", "6.50", ""))
	mock.ExpectQuery(regexp.QuoteMeta("FROM meal_categories mc")).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"meal_id", "id", "name"}).
			AddRow(2, 1, "Starters").
			AddRow(2, 3, "Desserts"))

	meals, err := NewMealRepo(db).List(context.Background(), []uint64{1, 3})
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, "Soup", meals[0].Name)
	assert.Equal(t, "6.5", meals[0].Price.String())
	assert.Equal(t, []uint64{1, 3}, meals[0].CategoryIDs())
}

func TestMealRepoListEmptyMenu(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM meals ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price", "picture"}))

	meals, err := NewMealRepo(db).List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, meals)
}

func TestMealRepoSaveUnknownCategory(t *testing.T) {
	db, mock := newMock(t)
	price := decimal.RequireFromString("12.50")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO meals")).
		WithArgs("Tart", "Apple tart", price, "").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO meal_categories (meal_id, category_id) VALUES (?, ?)")).
		WithArgs(uint64(4), uint64(99)).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "foreign key"})
	mock.ExpectRollback()

	m := &model.Meal{Name: "Tart", Description: "Apple tart", Price: price, Categories: []model.Category{{ID: 99}}}
	err := NewMealRepo(db).Save(context.Background(), m)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestMealRepoDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM meals WHERE id = ?")).
		WithArgs(uint64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, NewMealRepo(db).Delete(context.Background(), 6), ErrMealNotFound)
}
