package store

import (
	"context"
	"fmt"
	"strings"

	"folio/internal/models"
)

// Listing limits.
const (
	DefaultArchiveLimit = 6
	MaxArchiveLimit     = 100
	AdminPageSize       = 10
)

// AllCategories is the archive category filter value that disables filtering.
const AllCategories = "all"

// ArchiveQuery filters the public archive. Page is 1-based.
type ArchiveQuery struct {
	Page     int
	Limit    int
	Category string // category name; "" or "all" for every category
	Search   string // case-insensitive substring of title or description
}

// Normalize clamps paging values into range and trims the filters.
func (q ArchiveQuery) Normalize() ArchiveQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultArchiveLimit
	}
	if q.Limit > MaxArchiveLimit {
		q.Limit = MaxArchiveLimit
	}
	q.Category = strings.TrimSpace(q.Category)
	if q.Category == AllCategories {
		q.Category = ""
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// ArchivePage is one page of the public archive.
type ArchivePage struct {
	Projects []models.Project `json:"projects"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	HasMore  bool             `json:"hasMore"`
}

// Archive returns one page of projects in archive order. An unknown
// category or a page past the end yields an empty page, not an error.
func (s *ProjectStore) Archive(ctx context.Context, q ArchiveQuery) (*ArchivePage, error) {
	q = q.Normalize()

	var (
		where []string
		args  []any
	)
	if q.Category != "" {
		args = append(args, q.Category)
		where = append(where, fmt.Sprintf("c.name = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, likePattern(q.Search))
		n := len(args)
		where = append(where, fmt.Sprintf(`(p.title ILIKE $%d ESCAPE '\' OR p.description ILIKE $%d ESCAPE '\')`, n, n))
	}

	query := projectSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	// One extra row tells whether another page exists.
	args = append(args, q.Limit+1, (q.Page-1)*q.Limit)
	query += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", archiveOrder, len(args)-1, len(args))

	items, err := s.queryProjects(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("archive projects: %w", err)
	}

	page := &ArchivePage{Page: q.Page, Limit: q.Limit, Projects: items}
	if len(items) > q.Limit {
		page.Projects = items[:q.Limit]
		page.HasMore = true
	}
	return page, nil
}

// AdminQuery filters the admin project table. Page is 1-based.
type AdminQuery struct {
	Page       int
	Title      string // case-insensitive substring of the title
	CategoryID *int64
}

// AdminSummary describes the whole project table regardless of filters.
type AdminSummary struct {
	AbsoluteTotal int                   `json:"absoluteTotal"`
	Categories    []models.CategoryStat `json:"categoryStats"`
	Uncategorized int                   `json:"uncategorizedCount"`
}

// AdminPage is one page of the admin project table.
type AdminPage struct {
	Projects   []models.Project `json:"projects"`
	Page       int              `json:"page"`
	Total      int              `json:"total"`
	TotalPages int              `json:"totalPages"`
	Summary    AdminSummary     `json:"summary"`
}

// AdminList returns a page of projects newest first, the filtered total
// and a summary of the unfiltered table.
func (s *ProjectStore) AdminList(ctx context.Context, q AdminQuery) (*AdminPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	q.Title = strings.TrimSpace(q.Title)

	var (
		where []string
		args  []any
	)
	if q.Title != "" {
		args = append(args, likePattern(q.Title))
		where = append(where, fmt.Sprintf(`p.title ILIKE $%d ESCAPE '\'`, len(args)))
	}
	if q.CategoryID != nil {
		args = append(args, *q.CategoryID)
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
	}

	filter := ""
	if len(where) > 0 {
		filter = " WHERE " + strings.Join(where, " AND ")
	}

	page := &AdminPage{Page: q.Page}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects p`+filter, args...,
	).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("count admin projects: %w", err)
	}
	page.TotalPages = (page.Total + AdminPageSize - 1) / AdminPageSize

	pageArgs := append(args, AdminPageSize, (q.Page-1)*AdminPageSize)
	items, err := s.queryProjects(ctx, projectSelect+filter+fmt.Sprintf(
		" ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d",
		len(pageArgs)-1, len(pageArgs),
	), pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("list admin projects: %w", err)
	}
	page.Projects = items

	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE category_id IS NULL) FROM projects
	`).Scan(&page.Summary.AbsoluteTotal, &page.Summary.Uncategorized); err != nil {
		return nil, fmt.Errorf("summarize projects: %w", err)
	}

	stats, err := NewCategoryStore(s.db).Stats(ctx)
	if err != nil {
		return nil, err
	}
	page.Summary.Categories = stats

	return page, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps term for a substring match, treating LIKE wildcards in
// term as literal characters.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
