package storage

import (
	"context"
	"errors"
	"fmt"

	"finbot/internal/core"
)

const createCategory = `INSERT INTO expense_category (name) VALUES (?)`

func (q *Queries) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	res, err := q.db.ExecContext(ctx, createCategory, name)
	if err != nil {
		return core.Category{}, translate("create category", core.EntityCategory, 0, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: last insert id: %w", err)
	}
	return core.Category{ID: id, Name: name}, nil
}

const getCategory = `SELECT id, name FROM expense_category WHERE id = ?`

func (q *Queries) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	if err := q.db.QueryRowContext(ctx, getCategory, id).Scan(&c.ID, &c.Name); err != nil {
		return core.Category{}, translate("get category", core.EntityCategory, id, err)
	}
	return c, nil
}

const getCategoryByName = `SELECT id, name FROM expense_category WHERE name = ?`

// GetCategoryByName returns ErrNotFound, with id 0 in the message, when no
// category has that name.
func (q *Queries) GetCategoryByName(ctx context.Context, name string) (core.Category, error) {
	var c core.Category
	if err := q.db.QueryRowContext(ctx, getCategoryByName, name).Scan(&c.ID, &c.Name); err != nil {
		return core.Category{}, translate("get category by name", core.EntityCategory, 0, err)
	}
	return c, nil
}

const listCategories = `SELECT id, name FROM expense_category ORDER BY id`

func (q *Queries) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

const categoryExists = `SELECT EXISTS(SELECT 1 FROM expense_category WHERE id = ?)`

func (q *Queries) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := q.db.QueryRowContext(ctx, categoryExists, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check category exists: %w", err)
	}
	return exists, nil
}

const renameCategory = `UPDATE expense_category SET name = ? WHERE id = ?`

func (q *Queries) RenameCategory(ctx context.Context, id int64, name string) (core.Category, error) {
	res, err := q.db.ExecContext(ctx, renameCategory, name, id)
	if err != nil {
		return core.Category{}, translate("rename category", core.EntityCategory, id, err)
	}
	if err := expectOneRow(res, core.EntityCategory, id); err != nil {
		return core.Category{}, err
	}
	return core.Category{ID: id, Name: name}, nil
}

const deleteCategory = `DELETE FROM expense_category WHERE id = ?`

// DeleteCategory removes the category. A category still referenced by
// expenses is reported as a conflict.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, deleteCategory, id)
	if err != nil {
		err = translate("delete category", core.EntityCategory, id, err)
		if errors.Is(err, core.ErrForeignKey) {
			return &core.Error{
				Kind:    core.ErrConflict,
				Entity:  core.EntityCategory,
				Message: fmt.Sprintf("category %d is still used by expenses", id),
			}
		}
		return err
	}
	return expectOneRow(res, core.EntityCategory, id)
}
