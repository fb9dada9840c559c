package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"folio/internal/cache"
	"folio/internal/models"
)

// CategoryStore is the persistence the category handlers need.
type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, name string) (*models.Category, error)
	Rename(ctx context.Context, id int64, name string) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
	Reorder(ctx context.Context, ids []int64) error
}

// ResponseCache stores encoded bodies of hot public reads.
// *cache.Responses satisfies it, including as a nil pointer.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
	Invalidate(ctx context.Context, keys ...string)
}

// Categories groups the category endpoints.
type Categories struct {
	store CategoryStore
	cache ResponseCache
}

// NewCategories creates the category handler group.
func NewCategories(store CategoryStore, rc ResponseCache) *Categories {
	if rc == nil {
		rc = (*cache.Responses)(nil)
	}
	return &Categories{store: store, cache: rc}
}

type categoryRequest struct {
	Name string `json:"name"`
}

// List returns every category by rank.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	if body, ok := h.cache.Get(r.Context(), cache.CategoriesKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
		return
	}

	categories, err := h.store.List(r.Context())
	if err != nil {
		storeError(w, r, "list categories", err)
		return
	}

	body, err := json.Marshal(categories)
	if err != nil {
		storeError(w, r, "encode categories", err)
		return
	}
	h.cache.Set(r.Context(), cache.CategoriesKey, body)

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// Create appends a category after the current last one.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, maxJSONBody, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if msg := validateCategoryName(name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	c, err := h.store.Create(r.Context(), name)
	if err != nil {
		storeError(w, r, "create category", err)
		return
	}
	h.changed(r)

	slog.Info("category created", "id", c.ID, "name", c.Name)
	writeSuccess(w, http.StatusCreated, map[string]any{"category": c})
}

// Rename changes a category's name. Its rank is unaffected.
func (h *Categories) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, maxJSONBody, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if msg := validateCategoryName(name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	c, err := h.store.Rename(r.Context(), id, name)
	if err != nil {
		storeError(w, r, "rename category", err)
		return
	}
	h.changed(r)

	writeSuccess(w, http.StatusOK, map[string]any{"category": c})
}

// Delete removes an unreferenced category; referenced ones answer 409.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		storeError(w, r, "delete category", err)
		return
	}
	h.changed(r)

	slog.Info("category deleted", "id", id)
	writeSuccess(w, http.StatusOK, nil)
}

// Reorder assigns ranks from the submitted id order.
func (h *Categories) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decodeJSON(w, r, maxJSONBody, &req) {
		return
	}

	if err := h.store.Reorder(r.Context(), req.IDs); err != nil {
		storeError(w, r, "reorder categories", err)
		return
	}
	h.changed(r)

	writeSuccess(w, http.StatusOK, nil)
}

func (h *Categories) changed(r *http.Request) {
	h.cache.Invalidate(r.Context(), cache.CategoriesKey)
}
