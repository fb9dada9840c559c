// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// responseKeyPrefix namespaces cached responses in Valkey.
	responseKeyPrefix = "resp:"

	// DefaultResponseTTL bounds staleness if an invalidation is ever missed.
	DefaultResponseTTL = time.Minute

	// CategoriesKey holds the public category list.
	CategoriesKey = "categories"
)

// Responses caches encoded response bodies in Valkey. A nil *Responses is
// valid and caches nothing, so callers never branch on configuration.
// Errors are logged and treated as misses.
type Responses struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponses creates a response cache backed by the given Valkey client.
func NewResponses(client *redis.Client, ttl time.Duration) *Responses {
	if ttl <= 0 {
		ttl = DefaultResponseTTL
	}
	return &Responses{client: client, ttl: ttl}
}

// Get returns the cached body for key.
func (c *Responses) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, responseKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("response cache get error", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores body under key with the configured TTL.
func (c *Responses) Set(ctx context.Context, key string, body []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, responseKeyPrefix+key, body, c.ttl).Err(); err != nil {
		slog.Warn("response cache set error", "key", key, "error", err)
	}
}

// Invalidate drops the given keys. Called after every write that changes
// what they would return.
func (c *Responses) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = responseKeyPrefix + k
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		slog.Warn("response cache invalidate error", "keys", keys, "error", err)
	}
}
