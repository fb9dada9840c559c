// Package secret stores and checks the short secrets visitors attach to
// their comments, and the configured admin password.
package secret

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns a secret into its stored form and checks candidates against it.
type Hasher interface {
	Hash(secret string) (string, error)
	// Verify reports whether candidate matches stored. An empty stored
	// value never matches.
	Verify(stored, candidate string) bool
}

// New returns the Hasher for mode: "plain" stores secrets as given, any
// other value selects bcrypt.
func New(mode string) Hasher {
	if mode == "plain" {
		return Plain{}
	}
	return Bcrypt{Cost: bcrypt.DefaultCost}
}

// Bcrypt hashes secrets with bcrypt.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(secret string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(h), nil
}

func (Bcrypt) Verify(stored, candidate string) bool {
	if stored == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}

// Plain keeps secrets verbatim. It exists for deployments migrating rows
// written before hashing was introduced.
type Plain struct{}

func (Plain) Hash(secret string) (string, error) { return secret, nil }

func (Plain) Verify(stored, candidate string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// IsBcrypt reports whether s looks like a bcrypt hash.
func IsBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// MatchConfigured checks candidate against a configured password that is
// either plaintext or a bcrypt hash.
func MatchConfigured(configured, candidate string) bool {
	if IsBcrypt(configured) {
		return Bcrypt{}.Verify(configured, candidate)
	}
	return Plain{}.Verify(configured, candidate)
}
