// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"folio/internal/database"
	"folio/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, sort_order, created_at`

// categoryOrder is the total order over categories: rank first, then newest.
const categoryOrder = `sort_order ASC, created_at DESC, id DESC`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	if err := scanner.Scan(&c.ID, &c.Name, &c.SortOrder, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories in rank order.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY `+categoryOrder)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Stats returns every category in rank order with its project count.
func (s *CategoryStore) Stats(ctx context.Context) ([]models.CategoryStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.sort_order, COUNT(p.id)
		FROM categories c
		LEFT JOIN projects p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.sort_order ASC, c.created_at DESC, c.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	defer rows.Close()

	stats := []models.CategoryStat{}
	for rows.Next() {
		var st models.CategoryStat
		if err := rows.Scan(&st.ID, &st.Name, &st.SortOrder, &st.ProjectCount); err != nil {
			return nil, fmt.Errorf("scan category stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindByName retrieves a category by its exact name. Returns nil if not found.
func (s *CategoryStore) FindByName(ctx context.Context, name string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = $1`, name)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return c, nil
}

// Create appends a new category after the current last one. The rank is
// one past the highest existing rank, or 1 for the first category.
func (s *CategoryStore) Create(ctx context.Context, name string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, sort_order)
		SELECT $1::text, COALESCE(MAX(sort_order), 0) + 1 FROM categories
		RETURNING `+categoryColumns,
		name,
	)
	c, err := scanCategory(row)
	if pgCode(err) == pgUniqueViolation {
		return nil, fmt.Errorf("create category %q: %w", name, ErrDuplicateName)
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// Rename changes a category's name. The rank is left untouched.
func (s *CategoryStore) Rename(ctx context.Context, id int64, name string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE categories SET name = $1 WHERE id = $2 RETURNING `+categoryColumns,
		name, id,
	)
	c, err := scanCategory(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("rename category %d: %w", id, ErrNotFound)
	case pgCode(err) == pgUniqueViolation:
		return nil, fmt.Errorf("rename category %q: %w", name, ErrDuplicateName)
	case err != nil:
		return nil, fmt.Errorf("rename category: %w", err)
	}
	return c, nil
}

// Delete removes a category. It fails with ErrCategoryInUse, removing
// nothing, while any project references the category.
func (s *CategoryStore) Delete(ctx context.Context, id int64) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var refs int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM projects WHERE category_id = $1`, id,
		).Scan(&refs); err != nil {
			return fmt.Errorf("count category projects: %w", err)
		}
		if refs > 0 {
			return fmt.Errorf("delete category %d (%d projects): %w", id, refs, ErrCategoryInUse)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if pgCode(err) == pgForeignKeyViolation {
			return fmt.Errorf("delete category %d: %w", id, ErrCategoryInUse)
		}
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("delete category %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// Reorder sets each category's rank to its index in ids. See reorder.
func (s *CategoryStore) Reorder(ctx context.Context, ids []int64) error {
	return reorder(ctx, s.db, "categories", ids)
}
