// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces session keys in Valkey.
	keyPrefix = "session:"

	// idLength is the byte length of the random session ID (64 hex chars).
	idLength = 32
)

// ValkeyStore keeps session payloads in Valkey as JSON with a TTL.
type ValkeyStore struct {
	client  *redis.Client
	ttl     time.Duration
	cookies cookies
}

// NewValkeyStore creates a session store backed by the given Valkey client.
func NewValkeyStore(client *redis.Client, ttl time.Duration, secure bool) *ValkeyStore {
	ttl = ttlOrDefault(ttl)
	return &ValkeyStore{
		client:  client,
		ttl:     ttl,
		cookies: cookies{ttl: ttl, secure: secure},
	}
}

// Create stores a fresh session and sets both cookies on the response.
func (s *ValkeyStore) Create(ctx context.Context, w http.ResponseWriter, data *Data) error {
	id, err := generateID()
	if err != nil {
		return fmt.Errorf("session create: %w", err)
	}

	now := time.Now()
	data.CreatedAt = now
	data.ExpiresAt = now.Add(s.ttl)

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session store: %w", err)
	}

	s.cookies.set(w, id)
	return nil
}

// Get resolves the session referenced by the request cookie.
func (s *ValkeyStore) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	payload, err := s.client.Get(ctx, keyPrefix+cookie.Value).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // expired or never existed
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}

	return &data, nil
}

// Destroy removes the session from Valkey and expires both cookies.
func (s *ValkeyStore) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s.cookies.clear(w)

	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	if err := s.client.Del(ctx, keyPrefix+cookie.Value).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	return nil
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
