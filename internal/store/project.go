// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"folio/internal/models"
)

// ProjectStore manages projects in the database.
type ProjectStore struct {
	db *sql.DB
}

// NewProjectStore returns a new ProjectStore.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// projectSelect reads projects with the joined category name. Every query
// that returns projects starts from it so scanProject can be shared.
const projectSelect = `
	SELECT p.id, p.title, p.description, p.thumbnail, p.category_id,
	       p.sort_order, p.created_at, p.updated_at, c.name
	FROM projects p
	LEFT JOIN categories c ON c.id = p.category_id`

// archiveOrder is the public display order: rank, then newest, then id.
const archiveOrder = `p.sort_order ASC, p.created_at DESC, p.id DESC`

func scanProject(scanner interface{ Scan(...any) error }) (*models.Project, error) {
	var p models.Project
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Description, &p.Thumbnail, &p.CategoryID,
		&p.SortOrder, &p.CreatedAt, &p.UpdatedAt, &p.CategoryName,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProjectStore) queryProjects(ctx context.Context, query string, args ...any) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a project by ID. Returns nil if not found.
func (s *ProjectStore) FindByID(ctx context.Context, id int64) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, projectSelect+` WHERE p.id = $1`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project by id: %w", err)
	}
	return p, nil
}

// Create inserts a project ahead of every existing one: its rank is one
// below the lowest existing rank, or -1 for the first project.
func (s *ProjectStore) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		WITH p AS (
			INSERT INTO projects (title, description, thumbnail, category_id, sort_order)
			SELECT $1::text, $2::text, $3::text, $4::bigint, COALESCE(MIN(sort_order), 0) - 1 FROM projects
			RETURNING *
		)
		SELECT p.id, p.title, p.description, p.thumbnail, p.category_id,
		       p.sort_order, p.created_at, p.updated_at, c.name
		FROM p
		LEFT JOIN categories c ON c.id = p.category_id`,
		p.Title, p.Description, p.Thumbnail, p.CategoryID,
	)
	result, err := scanProject(row)
	if pgCode(err) == pgForeignKeyViolation {
		return nil, fmt.Errorf("create project: category: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return result, nil
}

// Update overwrites a project's editable fields. The rank and creation
// time are left untouched.
func (s *ProjectStore) Update(ctx context.Context, p *models.Project) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET
			title = $1, description = $2, thumbnail = $3, category_id = $4,
			updated_at = NOW()
		WHERE id = $5
	`, p.Title, p.Description, p.Thumbnail, p.CategoryID, p.ID)
	if pgCode(err) == pgForeignKeyViolation {
		return fmt.Errorf("update project %d: category: %w", p.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update project %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a project and, by cascade, its comments.
func (s *ProjectStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete project %d: %w", id, ErrNotFound)
	}
	return nil
}

// Reorder sets each project's rank to its index in ids. See reorder.
func (s *ProjectStore) Reorder(ctx context.Context, ids []int64) error {
	return reorder(ctx, s.db, "projects", ids)
}

// All returns every project in archive order, the full scope a reorder
// must submit.
func (s *ProjectStore) All(ctx context.Context) ([]models.Project, error) {
	items, err := s.queryProjects(ctx, projectSelect+` ORDER BY `+archiveOrder)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return items, nil
}

// Count returns the number of projects.
func (s *ProjectStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

// Recent returns the n most recently created projects.
func (s *ProjectStore) Recent(ctx context.Context, n int) ([]models.Project, error) {
	items, err := s.queryProjects(ctx,
		projectSelect+` ORDER BY p.created_at DESC, p.id DESC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("recent projects: %w", err)
	}
	return items, nil
}

// Related returns up to n random projects from the same category as p,
// excluding p. When p has no category or its category has no other
// projects, the n most recent other projects are returned instead.
func (s *ProjectStore) Related(ctx context.Context, p *models.Project, n int) ([]models.Project, error) {
	if p.CategoryID != nil {
		items, err := s.queryProjects(ctx,
			projectSelect+` WHERE p.category_id = $1 AND p.id <> $2 ORDER BY random() LIMIT $3`,
			*p.CategoryID, p.ID, n)
		if err != nil {
			return nil, fmt.Errorf("related projects: %w", err)
		}
		if len(items) > 0 {
			return items, nil
		}
	}

	items, err := s.queryProjects(ctx,
		projectSelect+` WHERE p.id <> $1 ORDER BY p.created_at DESC, p.id DESC LIMIT $2`,
		p.ID, n)
	if err != nil {
		return nil, fmt.Errorf("latest projects: %w", err)
	}
	return items, nil
}

// Neighbors returns the projects immediately before (newer) and after
// (older) the given one in archive order. Either may be nil at the ends.
func (s *ProjectStore) Neighbors(ctx context.Context, id int64) (newer, older *models.Project, err error) {
	const cur = `(SELECT sort_order, created_at, id FROM projects WHERE id = $1)`

	// Rows sorting before the current one, nearest first.
	newer, err = s.neighbor(ctx, projectSelect+`, `+cur+` AS cur
		WHERE p.sort_order < cur.sort_order
		   OR (p.sort_order = cur.sort_order AND (p.created_at, p.id) > (cur.created_at, cur.id))
		ORDER BY p.sort_order DESC, p.created_at ASC, p.id ASC
		LIMIT 1`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("newer project: %w", err)
	}

	older, err = s.neighbor(ctx, projectSelect+`, `+cur+` AS cur
		WHERE p.sort_order > cur.sort_order
		   OR (p.sort_order = cur.sort_order AND (p.created_at, p.id) < (cur.created_at, cur.id))
		ORDER BY `+archiveOrder+`
		LIMIT 1`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("older project: %w", err)
	}
	return newer, older, nil
}

func (s *ProjectStore) neighbor(ctx context.Context, query string, id int64) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}
