package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"folio/internal/markdown"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/moderation"
	"folio/internal/secret"
	"folio/internal/thread"
)

// CommentStore is the persistence the comment handlers need.
type CommentStore interface {
	ListByProject(ctx context.Context, projectID int64) ([]models.Comment, error)
	FindByID(ctx context.Context, projectID, id int64) (*models.Comment, error)
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	Delete(ctx context.Context, projectID, id int64) error
}

// ProjectFinder checks that a project exists.
type ProjectFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Project, error)
}

// Moderator screens visitor comment text before it is stored.
type Moderator interface {
	Check(ctx context.Context, text string) (*moderation.Verdict, error)
}

// Comments groups the comment thread endpoints under a project.
type Comments struct {
	comments  CommentStore
	projects  ProjectFinder
	hasher    secret.Hasher
	adminName string
	moderator Moderator
}

// NewComments creates the comment handler group. Admin comments are
// signed with adminName.
func NewComments(comments CommentStore, projects ProjectFinder, hasher secret.Hasher, adminName string) *Comments {
	return &Comments{comments: comments, projects: projects, hasher: hasher, adminName: adminName}
}

// SetModerator enables screening of visitor comments. A moderation outage
// lets comments through.
func (h *Comments) SetModerator(m Moderator) {
	h.moderator = m
}

// commentNode is a thread node as sent to the browser.
type commentNode struct {
	models.Comment
	ContentHTML string        `json:"contentHtml"`
	Replies     []commentNode `json:"replies"`
}

type commentRequest struct {
	Author   string `json:"author"`
	Password string `json:"password"`
	Content  string `json:"content"`
	ParentID *int64 `json:"parentId"`
}

type deleteCommentRequest struct {
	Password string `json:"password"`
}

// List returns the project's comments as a two-level tree, newest thread
// first. Orphaned replies are not included and not counted.
func (h *Comments) List(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.project(w, r)
	if !ok {
		return
	}

	flat, err := h.comments.ListByProject(r.Context(), projectID)
	if err != nil {
		storeError(w, r, "list comments", err)
		return
	}

	roots := thread.Build(flat)
	writeJSON(w, http.StatusOK, map[string]any{
		"comments": renderNodes(roots),
		"count":    thread.Count(roots),
	})
}

// Create adds a comment or a reply. Visitors supply author and a deletion
// password; the admin posts under the configured name without one.
func (h *Comments) Create(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.project(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if !decodeJSON(w, r, maxJSONBody, &req) {
		return
	}
	req.Author = strings.TrimSpace(req.Author)
	isAdmin := middleware.IsAdmin(r.Context())

	if msg := validateComment(req.Author, req.Password, req.Content, isAdmin); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if !isAdmin && !h.allowed(r, req.Content) {
		writeError(w, http.StatusBadRequest, "Comment was rejected by moderation.")
		return
	}

	c := &models.Comment{
		ProjectID: projectID,
		Author:    req.Author,
		Content:   strings.TrimSpace(req.Content),
		IsAdmin:   isAdmin,
		ParentID:  req.ParentID,
	}
	if isAdmin {
		c.Author = h.adminName
	} else {
		hashed, err := h.hasher.Hash(req.Password)
		if err != nil {
			storeError(w, r, "hash comment secret", err)
			return
		}
		c.Secret = hashed
	}

	created, err := h.comments.Create(r.Context(), c)
	if err != nil {
		storeError(w, r, "create comment", err)
		return
	}

	slog.Info("comment created", "id", created.ID, "project_id", projectID, "admin", isAdmin)
	writeSuccess(w, http.StatusCreated, map[string]any{"id": created.ID})
}

// Delete removes a comment. The admin may delete any comment; visitors must
// present the comment's password. A wrong password is 403, an unknown
// comment 404. Replies to a deleted comment stay stored but hidden.
func (h *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentId")
	if !ok {
		return
	}

	if !middleware.IsAdmin(r.Context()) {
		var req deleteCommentRequest
		if !decodeJSON(w, r, maxJSONBody, &req) {
			return
		}

		c, err := h.comments.FindByID(r.Context(), projectID, commentID)
		if err != nil {
			storeError(w, r, "find comment", err)
			return
		}
		if c == nil {
			writeError(w, http.StatusNotFound, "Comment not found.")
			return
		}
		if !h.hasher.Verify(c.Secret, req.Password) {
			writeError(w, http.StatusForbidden, "Wrong password.")
			return
		}
	}

	if err := h.comments.Delete(r.Context(), projectID, commentID); err != nil {
		storeError(w, r, "delete comment", err)
		return
	}

	slog.Info("comment deleted", "id", commentID, "project_id", projectID)
	writeSuccess(w, http.StatusOK, nil)
}

// allowed reports whether the moderator accepts text. Without a moderator,
// or when it fails, everything is allowed.
func (h *Comments) allowed(r *http.Request, text string) bool {
	if h.moderator == nil {
		return true
	}
	v, err := h.moderator.Check(r.Context(), text)
	if err != nil {
		slog.Warn("moderation check failed, allowing comment", "error", err)
		return true
	}
	if !v.Safe {
		slog.Warn("comment flagged by moderation", "categories", v.Categories, "remote", middleware.ClientIP(r))
		return false
	}
	return true
}

// project resolves the {id} path parameter to an existing project.
func (h *Comments) project(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return 0, false
	}
	p, err := h.projects.FindByID(r.Context(), id)
	if err != nil {
		storeError(w, r, "find project", err)
		return 0, false
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Project not found.")
		return 0, false
	}
	return id, true
}

func renderNodes(nodes []*thread.Node) []commentNode {
	out := make([]commentNode, 0, len(nodes))
	for _, n := range nodes {
		html, err := markdown.ToHTML(n.Content)
		if err != nil {
			slog.Warn("render comment failed", "id", n.ID, "error", err)
		}
		out = append(out, commentNode{
			Comment:     n.Comment,
			ContentHTML: html,
			Replies:     renderNodes(n.Replies),
		})
	}
	return out
}
