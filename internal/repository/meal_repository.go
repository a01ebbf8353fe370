package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/table-reservation/internal/model"
)

// MealRepo persists the menu.  meal_categories links meals to categories
// with one row per pair.
type MealRepo struct {
	db *sql.DB
}

func NewMealRepo(db *sql.DB) *MealRepo { return &MealRepo{db: db} }

const mealColumns = `id, name, description, price, picture`

// mysqlErrNoReferencedRow is raised when a foreign key points nowhere.
const mysqlErrNoReferencedRow = 1452

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func scanMeal(s rowScanner) (*model.Meal, error) {
	var m model.Meal
	if err := s.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.Picture); err != nil {
		return nil, err
	}
	m.Categories = []model.Category{}
	return &m, nil
}

// ListCategories returns every category ordered by id.
func (r *MealRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// List returns the menu ordered by id.  With categoryIDs set, only meals in
// at least one of those categories are returned, each once.
func (r *MealRepo) List(ctx context.Context, categoryIDs []uint64) ([]model.Meal, error) {
	q := `SELECT ` + mealColumns + ` FROM meals ORDER BY id`
	var args []any
	if len(categoryIDs) > 0 {
		q = `SELECT DISTINCT m.id, m.name, m.description, m.price, m.picture
             FROM meals m
             JOIN meal_categories mc ON mc.meal_id = m.id
             WHERE mc.category_id IN (` + placeholders(len(categoryIDs)) + `)
             ORDER BY m.id`
		for _, id := range categoryIDs {
			args = append(args, id)
		}
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.Meal
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachCategories(ctx, list); err != nil {
		return nil, err
	}
	out := make([]model.Meal, 0, len(list))
	for _, m := range list {
		out = append(out, *m)
	}
	return out, nil
}

// GetByID returns ErrMealNotFound when no meal has the id.
func (r *MealRepo) GetByID(ctx context.Context, id uint64) (*model.Meal, error) {
	m, err := scanMeal(r.db.QueryRowContext(ctx, `SELECT `+mealColumns+` FROM meals WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMealNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachCategories(ctx, []*model.Meal{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// Save inserts m when its ID is zero and updates it otherwise, replacing
// its categories in the same transaction.  An unknown category yields
// ErrCategoryNotFound.  On success m.Categories is reloaded with names.
func (r *MealRepo) Save(ctx context.Context, m *model.Meal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if m.ID == 0 {
		const ins = `INSERT INTO meals (name, description, price, picture) VALUES (?, ?, ?, ?)`
		result, err := tx.ExecContext(ctx, ins, m.Name, m.Description, m.Price, m.Picture)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		m.ID = uint64(id)
	} else {
		const upd = `UPDATE meals SET name = ?, description = ?, price = ?, picture = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, upd, m.Name, m.Description, m.Price, m.Picture, m.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM meal_categories WHERE meal_id = ?`, m.ID); err != nil {
			return err
		}
	}

	if ids := m.CategoryIDs(); len(ids) > 0 {
		query := `INSERT INTO meal_categories (meal_id, category_id) VALUES `
		args := make([]any, 0, len(ids)*2)
		for i, id := range ids {
			if i > 0 {
				query += ","
			}
			query += "(?, ?)"
			args = append(args, m.ID, id)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			var me *mysql.MySQLError
			if errors.As(err, &me) && me.Number == mysqlErrNoReferencedRow {
				return ErrCategoryNotFound
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	m.Categories = []model.Category{}
	return r.attachCategories(ctx, []*model.Meal{m})
}

// Delete removes the meal; its category links go with it.
func (r *MealRepo) Delete(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM meals WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMealNotFound
	}
	return nil
}

func (r *MealRepo) attachCategories(ctx context.Context, list []*model.Meal) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[uint64]*model.Meal, len(list))
	args := make([]any, 0, len(list))
	for _, m := range list {
		byID[m.ID] = m
		args = append(args, m.ID)
	}
	q := `SELECT mc.meal_id, c.id, c.name
          FROM meal_categories mc
          JOIN categories c ON c.id = mc.category_id
          WHERE mc.meal_id IN (` + placeholders(len(list)) + `)
          ORDER BY mc.meal_id, c.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			mealID uint64
			c      model.Category
		)
		if err := rows.Scan(&mealID, &c.ID, &c.Name); err != nil {
			return err
		}
		if m, ok := byID[mealID]; ok {
			m.Categories = append(m.Categories, c)
		}
	}
	return rows.Err()
}
