// Package session tracks the admin login. Two backends implement Store:
// a Valkey-backed one with server-side state, and a stateless signed-token
// one. Both keep the credential in an HttpOnly cookie and mirror the login
// state into a script-readable marker cookie for the front end.
package session

import (
	"context"
	"net/http"
	"time"
)

const (
	// CookieName carries the session credential. Never readable by scripts.
	CookieName = "admin_session"

	// MarkerCookieName is the script-readable "is_admin=true" marker.
	MarkerCookieName = "is_admin"

	// DefaultTTL is how long an admin session stays valid.
	DefaultTTL = 30 * 24 * time.Hour
)

// Data is the admin identity attached to a session.
type Data struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store creates, resolves and destroys admin sessions.
//
// Get returns (nil, nil) when the request carries no valid session.
type Store interface {
	Create(ctx context.Context, w http.ResponseWriter, data *Data) error
	Get(ctx context.Context, r *http.Request) (*Data, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// cookies writes and clears the credential and marker pair.
type cookies struct {
	ttl    time.Duration
	secure bool
}

func (c cookies) set(w http.ResponseWriter, value string) {
	maxAge := int(c.ttl.Seconds())

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     MarkerCookieName,
		Value:    "true",
		Path:     "/",
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (c cookies) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     MarkerCookieName,
		Value:    "",
		Path:     "/",
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
