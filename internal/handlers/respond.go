// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the folio JSON API. Each handler group
// depends on small interfaces over the stores so it can be exercised with
// in-memory fakes.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"folio/internal/store"
)

// Request body limits.
const (
	maxJSONBody    = 1 << 20
	maxProjectBody = 8 << 20 // room for an inline data-URL thumbnail
)

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}

// writeError writes the {"error": msg} body used by every failure.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeSuccess writes {"success": true} merged with extra fields.
func writeSuccess(w http.ResponseWriter, status int, extra map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a size-limited JSON body into dst, answering 400 itself
// when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large.")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "Request body is required.")
		default:
			writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		}
		return false
	}
	return true
}

// pathID parses a positive numeric URL parameter, answering 400 itself
// when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s.", name))
		return 0, false
	}
	return id, true
}

// queryInt reads an integer query parameter, falling back on absence or
// garbage the way the archive's page and limit parameters always have.
func queryInt(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return fallback
	}
	return v
}

// storeError maps store sentinels onto HTTP statuses. Anything unknown is
// an infrastructure failure: logged in full, reported generically.
func storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, store.ErrCategoryInUse):
		writeError(w, http.StatusConflict, "This category is used by projects and cannot be deleted.")
	case errors.Is(err, store.ErrDuplicateName):
		writeError(w, http.StatusConflict, "A category with this name already exists.")
	case errors.Is(err, store.ErrDuplicateID):
		writeError(w, http.StatusBadRequest, "The ordering lists an id more than once.")
	case errors.Is(err, store.ErrInvalidParent):
		writeError(w, http.StatusBadRequest, "Replies must answer a top-level comment on the same project.")
	default:
		slog.Error(op+" failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

// reorderRequest is the body of both reorder endpoints.
type reorderRequest struct {
	IDs []int64 `json:"ids"`
}
