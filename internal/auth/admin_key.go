package auth

import (
	"errors"
	"strings"

	"github.com/alexedwards/argon2id"
)

// ErrAdminKeyNotConfigured is returned when no admin key hash is set.
var ErrAdminKeyNotConfigured = errors.New("auth: admin key not configured")

// AdminKey verifies admin API keys against an argon2id hash.
type AdminKey struct {
	Hash string
}

// HashAdminKey produces the hash stored in configuration for key.
func HashAdminKey(key string) (string, error) {
	return argon2id.CreateHash(key, argon2id.DefaultParams)
}

// Verify reports whether key matches the configured hash.
func (a AdminKey) Verify(key string) (bool, error) {
	if strings.TrimSpace(a.Hash) == "" {
		return false, ErrAdminKeyNotConfigured
	}
	if key == "" {
		return false, nil
	}
	return argon2id.ComparePasswordAndHash(key, a.Hash)
}
