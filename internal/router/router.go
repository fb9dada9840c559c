// Package router sets up all HTTP routes and middleware chains for folio.
// Routes are split into the intro page, static assets and the JSON API, whose
// mutating admin endpoints sit behind the session guard.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"folio/internal/handlers"
	"folio/internal/middleware"
	"folio/internal/session"
	"folio/web"
)

// Handlers bundles the handler groups and collaborators the routes dispatch to.
type Handlers struct {
	Sessions   session.Store
	Visits     middleware.VisitRecorder
	Auth       *handlers.Auth
	Categories *handlers.Categories
	Projects   *handlers.Projects
	Comments   *handlers.Comments
	Admin      *handlers.Admin
	Public     *handlers.Public
}

// Limits configures the rate limiters on login and comment posting.
type Limits struct {
	Login   *middleware.RateLimiter
	Comment *middleware.RateLimiter
}

// DefaultLimits returns the limiters used in production: 5 logins per
// client and 10 comments per client on each project, per minute. Callers
// must Stop them on shutdown.
func DefaultLimits() Limits {
	return Limits{
		Login:   middleware.NewRateLimiter("login", 5, time.Minute, middleware.ByClient),
		Comment: middleware.NewRateLimiter("comment", 10, time.Minute, CommentKey),
	}
}

// CommentKey buckets comment posts by client and project, so a busy thread
// does not use up a visitor's budget elsewhere. It needs the {id} route
// param and so must run inside the comment route.
func CommentKey(r *http.Request) string {
	return middleware.ClientIP(r) + " project:" + chi.URLParam(r, "id")
}

// Stop releases the limiters' cleanup goroutines.
func (l Limits) Stop() {
	for _, rl := range []*middleware.RateLimiter{l.Login, l.Comment} {
		if rl != nil {
			rl.Stop()
		}
	}
}

// New creates the configured chi router. secure marks the CSRF cookie Secure.
func New(h Handlers, limits Limits, secure bool) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(h.Sessions))

	r.Get("/health", healthHandler)

	r.With(middleware.RecordVisit(h.Visits)).Get("/", h.Public.Intro)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.StaticFS())))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.NewCSRF(secure))

		// Session
		r.With(limit(limits.Login)).Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)
		r.Get("/session", h.Auth.Session)
		r.Get("/session/events", h.Auth.Events)

		// Categories
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Categories.List)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", h.Categories.Create)
				r.Post("/reorder", h.Categories.Reorder)
				r.Put("/{id}", h.Categories.Rename)
				r.Delete("/{id}", h.Categories.Delete)
			})
		})

		// Projects and their comment threads
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.Projects.Archive)
			r.Get("/{id}", h.Projects.Detail)

			r.Get("/{id}/comments", h.Comments.List)
			r.With(limit(limits.Comment)).Post("/{id}/comments", h.Comments.Create)
			r.Delete("/{id}/comments/{commentId}", h.Comments.Delete)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", h.Projects.Create)
				r.Post("/reorder", h.Projects.Reorder)
				r.Put("/{id}", h.Projects.Update)
				r.Delete("/{id}", h.Projects.Delete)
			})
		})

		// Admin dashboard
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/stats", h.Admin.Stats)
			r.Get("/projects", h.Admin.Projects)
		})
	})

	return r
}

// limit applies rl when set.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
