package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/table-reservation/internal/model"
)

// TableRepo reads the restaurant_tables catalog.  The catalog is managed by
// migrations; the API never writes to it.
type TableRepo struct{ db *sql.DB }

func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// FindAll lists every table ordered by id.  The allocation engine relies on
// this order being stable.
func (r *TableRepo) FindAll(ctx context.Context) ([]model.Table, error) {
	const q = `SELECT id, table_number, capacity FROM restaurant_tables ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := []model.Table{}
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.TableNumber, &t.Capacity); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// FindByID returns ErrTableNotFound when no table has the given id.
func (r *TableRepo) FindByID(ctx context.Context, id uint64) (*model.Table, error) {
	const q = `SELECT id, table_number, capacity FROM restaurant_tables WHERE id = ? LIMIT 1`
	var t model.Table
	err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.TableNumber, &t.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
