package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors returned by stores. Callers match them with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrCategoryInUse = errors.New("category is referenced by projects")
	ErrDuplicateName = errors.New("name already exists")
	ErrDuplicateID   = errors.New("duplicate id in ordering")
	ErrInvalidParent = errors.New("parent must be a root comment on the same project")
)

// PostgreSQL error codes mapped onto sentinels.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// pgCode returns the SQLSTATE of a PostgreSQL error, or "" for any other error.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
