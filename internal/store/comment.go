package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"folio/internal/database"
	"folio/internal/models"
)

// CommentStore manages project comments in the database.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore returns a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `id, project_id, author, secret, content, is_admin, parent_id, created_at`

// threadOrder groups each root with its replies, newest thread first, root
// ahead of its replies, replies oldest first.
const threadOrder = `COALESCE(parent_id, id) DESC, (parent_id IS NOT NULL) ASC, created_at ASC, id ASC`

func scanComment(scanner interface{ Scan(...any) error }) (*models.Comment, error) {
	var c models.Comment
	err := scanner.Scan(
		&c.ID, &c.ProjectID, &c.Author, &c.Secret, &c.Content,
		&c.IsAdmin, &c.ParentID, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByProject returns every comment on a project in thread order,
// including orphaned replies whose root was deleted.
func (s *CommentStore) ListByProject(ctx context.Context, projectID int64) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE project_id = $1 ORDER BY `+threadOrder,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	items := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a comment on the given project. Returns nil if not found.
func (s *CommentStore) FindByID(ctx context.Context, projectID, id int64) (*models.Comment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1 AND project_id = $2`,
		id, projectID,
	)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}

// Create inserts a comment. A reply's parent must be a root comment on the
// same project, otherwise ErrInvalidParent is returned. A missing project
// yields ErrNotFound.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	var created *models.Comment
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if c.ParentID != nil {
			var grandparent sql.NullInt64
			err := tx.QueryRowContext(ctx,
				`SELECT parent_id FROM comments WHERE id = $1 AND project_id = $2`,
				*c.ParentID, c.ProjectID,
			).Scan(&grandparent)
			if errors.Is(err, sql.ErrNoRows) || grandparent.Valid {
				return fmt.Errorf("create comment: parent %d: %w", *c.ParentID, ErrInvalidParent)
			}
			if err != nil {
				return fmt.Errorf("check comment parent: %w", err)
			}
		}

		row := tx.QueryRowContext(ctx, `
			INSERT INTO comments (project_id, author, secret, content, is_admin, parent_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+commentColumns,
			c.ProjectID, c.Author, c.Secret, c.Content, c.IsAdmin, c.ParentID,
		)
		var err error
		created, err = scanComment(row)
		if pgCode(err) == pgForeignKeyViolation {
			return fmt.Errorf("create comment: project %d: %w", c.ProjectID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Delete removes a single comment. Replies to it are kept as orphans.
func (s *CommentStore) Delete(ctx context.Context, projectID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM comments WHERE id = $1 AND project_id = $2`, id, projectID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete comment %d: %w", id, ErrNotFound)
	}
	return nil
}

// Count returns the number of comments across all projects.
func (s *CommentStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return n, nil
}
