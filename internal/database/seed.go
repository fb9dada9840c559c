package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

var seedCategories = []string{"Branding", "Web", "Illustration"}

var seedProjects = []struct {
	title, description, category string
}{
	{"Harbor Coffee identity", "<h2>Brief</h2><p>Logo and packaging for a small roaster.</p><h2>Outcome</h2><p>A warm, hand-drawn mark.</p>", "Branding"},
	{"Atlas landing page", "<p>A one-page site for a travel planner.</p>", "Web"},
	{"Night market posters", "<p>A series of six risograph posters.</p>", "Illustration"},
	{"Mono type specimen", "<h2>Concept</h2><p>Specimen site for a monospaced family.</p><h3>Details</h3><p>Variable axes demo.</p>", "Web"},
	{"Fieldnotes", "<p>Sketchbook pages from a summer residency.</p>", "Illustration"},
	{"Untitled study", "<p>Work in progress.</p>", ""},
}

// Seed populates the database with sample categories, projects and one
// comment thread for local development. It does nothing when any category
// already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	ids := make(map[string]int64, len(seedCategories))
	for i, name := range seedCategories {
		var id int64
		err := tx.QueryRow(
			`INSERT INTO categories (name, sort_order) VALUES ($1, $2) RETURNING id`,
			name, i+1,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed insert category %q: %w", name, err)
		}
		ids[name] = id
	}

	var firstProject int64
	for i, p := range seedProjects {
		var categoryID *int64
		if id, ok := ids[p.category]; ok {
			categoryID = &id
		}

		// Later projects get lower ranks, the way new projects are prepended.
		var id int64
		err := tx.QueryRow(`
			INSERT INTO projects (title, description, category_id, sort_order, created_at)
			VALUES ($1, $2, $3, $4, NOW() - make_interval(days => $5))
			RETURNING id`,
			p.title, p.description, categoryID, -i, len(seedProjects)-i,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed insert project %q: %w", p.title, err)
		}
		if i == 0 {
			firstProject = id
		}
	}

	secret, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var rootID int64
	err = tx.QueryRow(`
		INSERT INTO comments (project_id, author, secret, content)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		firstProject, "visitor", string(secret), "Love the colour palette!",
	).Scan(&rootID)
	if err != nil {
		return fmt.Errorf("seed insert comment: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO comments (project_id, author, content, is_admin, parent_id)
		VALUES ($1, $2, $3, TRUE, $4)`,
		firstProject, "Admin", "Thank you!", rootID,
	)
	if err != nil {
		return fmt.Errorf("seed insert reply: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with sample portfolio",
		"categories", len(seedCategories),
		"projects", len(seedProjects),
		"comment_secret", "1234",
	)
	return nil
}
