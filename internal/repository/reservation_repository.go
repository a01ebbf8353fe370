package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// ReservationRepo persists reservations and the tables they hold.  The
// reservation_tables join table carries one row per (reservation, table)
// pair.  Dates are stored as DATE columns; the time of day is dropped and
// all comparisons are made on the UTC calendar day.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, user_id, date, service, party_size, status, created_at, updated_at`

func day(t time.Time) string { return t.UTC().Format(model.DateLayout) }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(s rowScanner) (*model.Reservation, error) {
	var (
		res   model.Reservation
		owner sql.NullInt64
	)
	if err := s.Scan(&res.ID, &owner, &res.Date, &res.Service, &res.PartySize,
		&res.Status, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}
	if owner.Valid {
		id := uint64(owner.Int64)
		res.OwnerID = &id
	}
	res.Tables = []model.Table{}
	return &res, nil
}

// FindOne returns the owner's reservation for the date and service, or
// nil, nil when there is none.
func (r *ReservationRepo) FindOne(ctx context.Context, ownerID uint64, date time.Time, service string) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
               WHERE user_id = ? AND date = ? AND service = ?
               ORDER BY id LIMIT 1`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, ownerID, day(date), service))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachTables(ctx, []*model.Reservation{res}); err != nil {
		return nil, err
	}
	return res, nil
}

// ReservedTableIDs lists the distinct tables held by any reservation for
// the date and service.  The service column is binary collated, so the match
// is case-sensitive.
func (r *ReservationRepo) ReservedTableIDs(ctx context.Context, date time.Time, service string) ([]uint64, error) {
	const q = `SELECT DISTINCT rt.table_id
               FROM reservation_tables rt
               JOIN reservations r ON r.id = rt.reservation_id
               WHERE r.date = ? AND r.service = ?
               ORDER BY rt.table_id`
	rows, err := r.db.QueryContext(ctx, q, day(date), service)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReservedTableCount counts the distinct tables held for the date and service.
func (r *ReservationRepo) ReservedTableCount(ctx context.Context, date time.Time, service string) (int, error) {
	const q = `SELECT COUNT(DISTINCT rt.table_id)
               FROM reservation_tables rt
               JOIN reservations r ON r.id = rt.reservation_id
               WHERE r.date = ? AND r.service = ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, day(date), service).Scan(&n)
	return n, err
}

// Save inserts res when its ID is zero and updates it otherwise.  The
// table set is replaced in the same transaction.
func (r *ReservationRepo) Save(ctx context.Context, res *model.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var owner any
	if res.OwnerID != nil {
		owner = *res.OwnerID
	}
	if res.ID == 0 {
		const ins = `INSERT INTO reservations (user_id, date, service, party_size, status) VALUES (?, ?, ?, ?, ?)`
		result, err := tx.ExecContext(ctx, ins, owner, day(res.Date), res.Service, res.PartySize, res.Status)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		res.ID = uint64(id)
	} else {
		const upd = `UPDATE reservations SET user_id = ?, date = ?, service = ?, party_size = ?, status = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, upd, owner, day(res.Date), res.Service, res.PartySize, res.Status, res.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM reservation_tables WHERE reservation_id = ?`, res.ID); err != nil {
			return err
		}
	}

	if err := r.createTablesBulkTx(ctx, tx, res.ID, res.TableIDs()); err != nil {
		return err
	}
	// Query back timestamps and defaults
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// createTablesBulkTx inserts one reservation_tables row per table in a
// single statement.  An empty slice is a no-op.
func (r *ReservationRepo) createTablesBulkTx(ctx context.Context, tx *sql.Tx, reservationID uint64, tableIDs []uint64) error {
	if len(tableIDs) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_tables (reservation_id, table_id) VALUES `
	args := make([]interface{}, 0, len(tableIDs)*2)
	for i, id := range tableIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, reservationID, id)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByID returns ErrReservationNotFound when no reservation has the id.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachTables(ctx, []*model.Reservation{res}); err != nil {
		return nil, err
	}
	return res, nil
}

// ReservationFilter narrows List.  Zero values are ignored.
type ReservationFilter struct {
	Date    *time.Time
	Service string
	Limit   int
	Offset  int
}

// List returns reservations ordered by date then id.
func (r *ReservationRepo) List(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
	var (
		where []string
		args  []any
	)
	if f.Date != nil {
		where = append(where, "date = ?")
		args = append(args, day(*f.Date))
	}
	if f.Service != "" {
		where = append(where, "service = ?")
		args = append(args, f.Service)
	}
	q := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY date, id"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachTables(ctx, list); err != nil {
		return nil, err
	}
	out := make([]model.Reservation, 0, len(list))
	for _, res := range list {
		out = append(out, *res)
	}
	return out, nil
}

// Delete removes the reservation; its reservation_tables rows go with it
// through ON DELETE CASCADE.  Freed tables are not offered to anyone.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// attachTables loads the tables of every reservation in one query.
func (r *ReservationRepo) attachTables(ctx context.Context, list []*model.Reservation) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[uint64]*model.Reservation, len(list))
	placeholders := make([]string, 0, len(list))
	args := make([]any, 0, len(list))
	for _, res := range list {
		byID[res.ID] = res
		placeholders = append(placeholders, "?")
		args = append(args, res.ID)
	}
	q := `SELECT rt.reservation_id, t.id, t.table_number, t.capacity
          FROM reservation_tables rt
          JOIN restaurant_tables t ON t.id = rt.table_id
          WHERE rt.reservation_id IN (` + strings.Join(placeholders, ",") + `)
          ORDER BY rt.reservation_id, t.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			resID uint64
			t     model.Table
		)
		if err := rows.Scan(&resID, &t.ID, &t.TableNumber, &t.Capacity); err != nil {
			return err
		}
		if res, ok := byID[resID]; ok {
			res.Tables = append(res.Tables, t)
		}
	}
	return rows.Err()
}
