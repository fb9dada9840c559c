// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"folio/internal/models"
	"folio/internal/store"
)

const recentCount = 3

// AdminProjectStore is the persistence behind the dashboard and the admin table.
type AdminProjectStore interface {
	AdminList(ctx context.Context, q store.AdminQuery) (*store.AdminPage, error)
	Count(ctx context.Context) (int, error)
	Recent(ctx context.Context, n int) ([]models.Project, error)
}

// Counter counts rows of one kind.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// VisitorCounter reports today's distinct visitors.
type VisitorCounter interface {
	CountToday(ctx context.Context) (int, error)
}

// Admin groups the admin-only read endpoints.
type Admin struct {
	projects AdminProjectStore
	comments Counter
	visitors VisitorCounter
}

// NewAdmin creates the admin handler group.
func NewAdmin(projects AdminProjectStore, comments Counter, visitors VisitorCounter) *Admin {
	return &Admin{projects: projects, comments: comments, visitors: visitors}
}

// recentProject is the trimmed project shape shown on the dashboard.
type recentProject struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
}

// Stats returns the dashboard counters.
func (h *Admin) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := h.projects.Count(ctx)
	if err != nil {
		storeError(w, r, "count projects", err)
		return
	}
	recent, err := h.projects.Recent(ctx, recentCount)
	if err != nil {
		storeError(w, r, "recent projects", err)
		return
	}
	visitors, err := h.visitors.CountToday(ctx)
	if err != nil {
		storeError(w, r, "count visitors", err)
		return
	}
	comments, err := h.comments.Count(ctx)
	if err != nil {
		storeError(w, r, "count comments", err)
		return
	}

	items := make([]recentProject, len(recent))
	for i, p := range recent {
		items[i] = recentProject{ID: p.ID, Title: p.Title, CreatedAt: p.CreatedAt.Format(time.RFC3339)}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"totalProjects":  total,
		"recentProjects": items,
		"todayVisitors":  visitors,
		"totalMessages":  comments,
	})
}

// Projects serves the admin project table.
// Query: page (1-based), q (title substring), category (category id).
func (h *Admin) Projects(w http.ResponseWriter, r *http.Request) {
	q := store.AdminQuery{
		Page:  queryInt(r, "page", 1),
		Title: r.URL.Query().Get("q"),
	}
	if raw := r.URL.Query().Get("category"); raw != "" && raw != store.AllCategories {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid category.")
			return
		}
		q.CategoryID = &id
	}

	page, err := h.projects.AdminList(r.Context(), q)
	if err != nil {
		storeError(w, r, "admin projects", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
