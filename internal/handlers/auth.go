package handlers

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"

	"folio/internal/middleware"
	"folio/internal/secret"
	"folio/internal/session"
)

// DefaultSessionRecheck bounds how stale the admin status pushed over the
// session event stream can get.
const DefaultSessionRecheck = 30 * time.Second

// Credentials is the single configured admin identity.
type Credentials struct {
	Email      string
	Password   string // plaintext or bcrypt hash
	Name       string
	TOTPSecret string // empty disables the second factor
}

// Auth groups the admin login endpoints.
type Auth struct {
	sessions session.Store
	creds    Credentials
	recheck  time.Duration
}

// NewAuth creates the auth handler group.
func NewAuth(sessions session.Store, creds Credentials) *Auth {
	return &Auth{sessions: sessions, creds: creds, recheck: DefaultSessionRecheck}
}

// SetRecheck changes the session event stream's re-check interval.
func (a *Auth) SetRecheck(d time.Duration) {
	if d > 0 {
		a.recheck = d
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

// Login checks the admin credentials (and TOTP code when configured) and
// starts a session.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, maxJSONBody, &req) {
		return
	}

	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(req.Email))),
		[]byte(strings.ToLower(a.creds.Email)),
	) == 1
	passwordOK := secret.MatchConfigured(a.creds.Password, req.Password)
	if !emailOK || !passwordOK {
		slog.Warn("admin login rejected", "remote", middleware.ClientIP(r))
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	if a.creds.TOTPSecret != "" {
		if req.Code == "" {
			writeError(w, http.StatusUnauthorized, "Authentication code required.")
			return
		}
		if !totp.Validate(strings.TrimSpace(req.Code), a.creds.TOTPSecret) {
			slog.Warn("admin totp rejected", "remote", middleware.ClientIP(r))
			writeError(w, http.StatusUnauthorized, "Invalid authentication code.")
			return
		}
	}

	if err := a.sessions.Create(r.Context(), w, &session.Data{
		Email: a.creds.Email,
		Name:  a.creds.Name,
	}); err != nil {
		storeError(w, r, "create session", err)
		return
	}

	slog.Info("admin logged in", "remote", middleware.ClientIP(r))
	writeSuccess(w, http.StatusOK, nil)
}

// Logout ends the session and clears both cookies.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		storeError(w, r, "destroy session", err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}

type sessionStatus struct {
	Admin     bool       `json:"admin"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func statusOf(data *session.Data) sessionStatus {
	if data == nil {
		return sessionStatus{}
	}
	exp := data.ExpiresAt
	return sessionStatus{Admin: true, ExpiresAt: &exp}
}

// Session reports whether the request carries a valid admin session.
func (a *Auth) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusOf(middleware.AdminFromCtx(r.Context())))
}

// Events streams the admin status as server-sent events. The first event
// is sent immediately. While the session is valid it is re-checked every
// recheck interval (or at expiry, if sooner), with a keep-alive comment in
// between; once it is gone a final event is sent and the stream ends. The
// stream also ends with the request context.
func (a *Auth) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported.")
		return
	}
	// Long-lived: lift the server's write deadline where supported.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	data := middleware.AdminFromCtx(ctx)
	if err := writeEvent(w, statusOf(data)); err != nil {
		return
	}
	flusher.Flush()

	for data != nil {
		wait := a.recheck
		if until := time.Until(data.ExpiresAt); until < wait {
			wait = max(until, 0)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		current, err := a.sessions.Get(ctx, r)
		if err != nil {
			slog.Warn("session recheck failed", "error", err)
			current = data // keep the last known status
		}
		if current != nil && !current.ExpiresAt.After(time.Now()) {
			current = nil
		}

		if current == nil {
			writeEvent(w, statusOf(nil))
			flusher.Flush()
			return
		}
		data = current

		if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
			return
		}
		flusher.Flush()
	}
}

func writeEvent(w http.ResponseWriter, status sessionStatus) error {
	_, err := fmt.Fprintf(w, "event: session\ndata: {\"admin\":%t}\n\n", status.Admin)
	return err
}
