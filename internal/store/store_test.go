// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"folio/internal/database"
	"folio/internal/models"
)

// containerDSN is set by the integration build, which runs the suite
// against a disposable PostgreSQL container instead of the local database.
var containerDSN string

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	if containerDSN != "" {
		return containerDSN
	}
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "folio")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_TEST_DB", "folio_test")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database, runs migrations and
// empties every table. If the database is unavailable, the test is
// skipped. A cleanup function is registered to close the connection when
// the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	if _, err := db.Exec(`TRUNCATE comments, projects, categories, visitor_logs RESTART IDENTITY CASCADE`); err != nil {
		db.Close()
		t.Fatalf("failed to reset tables: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// mustCategory creates a category or fails the test.
func mustCategory(t *testing.T, s *CategoryStore, name string) *models.Category {
	t.Helper()
	c, err := s.Create(context.Background(), name)
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	return c
}

// mustProject creates a project or fails the test.
func mustProject(t *testing.T, s *ProjectStore, title string, categoryID *int64) *models.Project {
	t.Helper()
	p, err := s.Create(context.Background(), &models.Project{
		Title:       title,
		Description: "<p>" + title + "</p>",
		CategoryID:  categoryID,
	})
	if err != nil {
		t.Fatalf("create project %q: %v", title, err)
	}
	return p
}

func projectIDs(items []models.Project) []int64 {
	out := make([]int64, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

func categoryIDs(items []models.Category) []int64 {
	out := make([]int64, 0, len(items))
	for _, c := range items {
		out = append(out, c.ID)
	}
	return out
}
