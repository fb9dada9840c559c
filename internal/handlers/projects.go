// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"folio/internal/models"
	"folio/internal/richtext"
	"folio/internal/storage"
	"folio/internal/store"
)

const (
	relatedCount = 3
	previewRunes = 160
)

// ProjectStore is the persistence the project handlers need.
type ProjectStore interface {
	Archive(ctx context.Context, q store.ArchiveQuery) (*store.ArchivePage, error)
	FindByID(ctx context.Context, id int64) (*models.Project, error)
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id int64) error
	Reorder(ctx context.Context, ids []int64) error
	Related(ctx context.Context, p *models.Project, n int) ([]models.Project, error)
	Neighbors(ctx context.Context, id int64) (newer, older *models.Project, err error)
}

// CategoryFinder resolves the category name a project form submits.
type CategoryFinder interface {
	FindByName(ctx context.Context, name string) (*models.Category, error)
}

// ThumbnailStore moves inline thumbnails to object storage.
// *storage.Client satisfies it, including as a nil pointer.
type ThumbnailStore interface {
	OffloadThumbnail(ctx context.Context, thumb string) (string, error)
	ReleaseThumbnail(ctx context.Context, thumbURL string)
}

// Projects groups the public archive, project detail and project
// management endpoints.
type Projects struct {
	projects   ProjectStore
	categories CategoryFinder
	thumbs     ThumbnailStore
}

// NewProjects creates the project handler group.
func NewProjects(projects ProjectStore, categories CategoryFinder, thumbs ThumbnailStore) *Projects {
	if thumbs == nil {
		thumbs = (*storage.Client)(nil)
	}
	return &Projects{projects: projects, categories: categories, thumbs: thumbs}
}

// projectRequest is the admin form body. Content is the editor's HTML.
type projectRequest struct {
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	CategoryName string  `json:"categoryName"`
	Thumbnail    *string `json:"thumbnail"`
}

// projectDetail is the payload of the single-project view.
type projectDetail struct {
	Project *models.Project    `json:"project"`
	Preview string             `json:"preview"`
	Outline []richtext.Heading `json:"outline"`
	Related []models.Project   `json:"related"`
	Newer   *models.Project    `json:"newer"`
	Older   *models.Project    `json:"older"`
}

// Archive serves one page of the public archive.
// Query: page (1-based), limit (default 6), category (name or "all"), search.
func (h *Projects) Archive(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.projects.Archive(r.Context(), store.ArchiveQuery{
		Page:     queryInt(r, "page", 1),
		Limit:    queryInt(r, "limit", store.DefaultArchiveLimit),
		Category: q.Get("category"),
		Search:   q.Get("search"),
	})
	if err != nil {
		storeError(w, r, "archive", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Detail returns a project with its preview, outline, related projects
// and archive neighbours.
func (h *Projects) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.projects.FindByID(r.Context(), id)
	if err != nil {
		storeError(w, r, "find project", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Project not found.")
		return
	}

	related, err := h.projects.Related(r.Context(), p, relatedCount)
	if err != nil {
		storeError(w, r, "related projects", err)
		return
	}
	newer, older, err := h.projects.Neighbors(r.Context(), id)
	if err != nil {
		storeError(w, r, "project neighbours", err)
		return
	}

	writeJSON(w, http.StatusOK, projectDetail{
		Project: p,
		Preview: richtext.Excerpt(p.Description, previewRunes),
		Outline: richtext.Outline(p.Description),
		Related: related,
		Newer:   newer,
		Older:   older,
	})
}

// Create stores a new project ahead of all existing ones.
func (h *Projects) Create(w http.ResponseWriter, r *http.Request) {
	p, uploaded, ok := h.readProject(w, r)
	if !ok {
		return
	}

	created, err := h.projects.Create(r.Context(), p)
	if err != nil {
		if uploaded {
			h.thumbs.ReleaseThumbnail(r.Context(), deref(p.Thumbnail))
		}
		storeError(w, r, "create project", err)
		return
	}

	slog.Info("project created", "id", created.ID, "title", created.Title)
	writeSuccess(w, http.StatusCreated, map[string]any{"id": created.ID})
}

// Update overwrites a project's editable fields.
func (h *Projects) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	existing, err := h.projects.FindByID(r.Context(), id)
	if err != nil {
		storeError(w, r, "find project", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Project not found.")
		return
	}

	p, uploaded, ok := h.readProject(w, r)
	if !ok {
		return
	}
	p.ID = id

	if err := h.projects.Update(r.Context(), p); err != nil {
		if uploaded {
			h.thumbs.ReleaseThumbnail(r.Context(), deref(p.Thumbnail))
		}
		storeError(w, r, "update project", err)
		return
	}

	if deref(p.Thumbnail) != deref(existing.Thumbnail) {
		h.thumbs.ReleaseThumbnail(r.Context(), deref(existing.Thumbnail))
	}
	writeSuccess(w, http.StatusOK, nil)
}

// Delete removes a project together with its comments.
func (h *Projects) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	existing, err := h.projects.FindByID(r.Context(), id)
	if err != nil {
		storeError(w, r, "find project", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Project not found.")
		return
	}

	if err := h.projects.Delete(r.Context(), id); err != nil {
		storeError(w, r, "delete project", err)
		return
	}
	h.thumbs.ReleaseThumbnail(r.Context(), deref(existing.Thumbnail))

	slog.Info("project deleted", "id", id)
	writeSuccess(w, http.StatusOK, nil)
}

// Reorder assigns archive ranks from the submitted id order.
func (h *Projects) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decodeJSON(w, r, maxJSONBody, &req) {
		return
	}

	if err := h.projects.Reorder(r.Context(), req.IDs); err != nil {
		storeError(w, r, "reorder projects", err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}

// readProject decodes and validates the form body, resolves the category
// and offloads an inline thumbnail. uploaded reports whether this request
// created the stored thumbnail. It answers the request itself on failure.
func (h *Projects) readProject(w http.ResponseWriter, r *http.Request) (_ *models.Project, uploaded, ok bool) {
	var req projectRequest
	if !decodeJSON(w, r, maxProjectBody, &req) {
		return nil, false, false
	}
	req.Title = strings.TrimSpace(req.Title)
	req.CategoryName = strings.TrimSpace(req.CategoryName)

	if msg := validateProject(req.Title, req.CategoryName, req.Content); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return nil, false, false
	}

	category, err := h.categories.FindByName(r.Context(), req.CategoryName)
	if err != nil {
		storeError(w, r, "find category", err)
		return nil, false, false
	}
	if category == nil {
		writeError(w, http.StatusBadRequest, "Category not found.")
		return nil, false, false
	}

	var thumb *string
	if t := strings.TrimSpace(deref(req.Thumbnail)); t != "" {
		stored, err := h.thumbs.OffloadThumbnail(r.Context(), t)
		switch {
		case errors.Is(err, storage.ErrUnsupportedImage), errors.Is(err, storage.ErrImageTooLarge),
			errors.Is(err, storage.ErrMalformedDataURL):
			writeError(w, http.StatusBadRequest, "Thumbnail must be a PNG, JPEG, GIF or WebP image under 5 MB.")
			return nil, false, false
		case err != nil:
			storeError(w, r, "store thumbnail", err)
			return nil, false, false
		}
		uploaded = stored != t
		thumb = &stored
	}

	return &models.Project{
		Title:       req.Title,
		Description: req.Content,
		Thumbnail:   thumb,
		CategoryID:  &category.ID,
	}, uploaded, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
