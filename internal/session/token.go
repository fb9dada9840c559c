package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the signed payload of a stateless admin session.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// TokenStore issues HS256-signed session tokens. Nothing is kept server
// side, so Destroy only expires the cookies.
type TokenStore struct {
	key     []byte
	ttl     time.Duration
	cookies cookies
	now     func() time.Time
}

// NewTokenStore creates a stateless store signing with key.
func NewTokenStore(key []byte, ttl time.Duration, secure bool) *TokenStore {
	ttl = ttlOrDefault(ttl)
	return &TokenStore{
		key:     key,
		ttl:     ttl,
		cookies: cookies{ttl: ttl, secure: secure},
		now:     time.Now,
	}
}

// Issue signs a token for data, filling in its timestamps.
func (s *TokenStore) Issue(data *Data) (string, error) {
	now := s.now()
	data.CreatedAt = now
	data.ExpiresAt = now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   data.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(data.ExpiresAt),
		},
		Name: data.Name,
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("session sign: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns the identity it carries.
func (s *TokenStore) Parse(raw string) (*Data, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}

	data := &Data{Email: claims.Subject, Name: claims.Name}
	if claims.IssuedAt != nil {
		data.CreatedAt = claims.IssuedAt.Time
	}
	data.ExpiresAt = claims.ExpiresAt.Time
	return data, nil
}

func (s *TokenStore) Create(_ context.Context, w http.ResponseWriter, data *Data) error {
	signed, err := s.Issue(data)
	if err != nil {
		return err
	}
	s.cookies.set(w, signed)
	return nil
}

// Get treats a tampered or expired token the same as no session.
func (s *TokenStore) Get(_ context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	data, err := s.Parse(cookie.Value)
	if err != nil {
		if !errors.Is(err, jwt.ErrTokenExpired) {
			slog.Warn("rejected session token", "error", err)
		}
		return nil, nil
	}
	return data, nil
}

func (s *TokenStore) Destroy(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
	s.cookies.clear(w)
	return nil
}
