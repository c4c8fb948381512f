package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Secret is a configured shared password. Hash is a bcrypt hash and wins
// over Plain when both are set.
type Secret struct {
	Hash  string
	Plain string
}

// Configured reports whether the secret can match anything.
func (s Secret) Configured() bool {
	return s.Hash != "" || s.Plain != ""
}

// Hashed reports whether the secret is stored as a bcrypt hash.
func (s Secret) Hashed() bool {
	return s.Hash != ""
}

func (s Secret) matches(password string) bool {
	if s.Hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.Hash), []byte(password)) == nil
	}
	if s.Plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.Plain), []byte(password)) == 1
}

// CredentialStore maps a presented password to a role.
type CredentialStore struct {
	admin  Secret
	viewer Secret
}

// NewCredentialStore validates any configured hashes and returns a store.
func NewCredentialStore(admin, viewer Secret) (*CredentialStore, error) {
	if !admin.Configured() {
		return nil, errors.New("admin secret not configured")
	}
	for name, s := range map[string]Secret{"admin": admin, "viewer": viewer} {
		if s.Hash == "" {
			continue
		}
		if _, err := bcrypt.Cost([]byte(s.Hash)); err != nil {
			return nil, fmt.Errorf("invalid %s password hash: %w", name, err)
		}
	}
	return &CredentialStore{admin: admin, viewer: viewer}, nil
}

// Verify returns the role whose secret matches password. The admin secret
// is checked first. An empty password never matches.
func (c *CredentialStore) Verify(password string) (Role, bool) {
	if password == "" {
		return RoleNone, false
	}
	if c.admin.matches(password) {
		return RoleAdmin, true
	}
	if c.viewer.matches(password) {
		return RoleViewer, true
	}
	return RoleNone, false
}

// ViewerEnabled reports whether a viewer secret is configured.
func (c *CredentialStore) ViewerEnabled() bool {
	return c.viewer.Configured()
}

// HashPassword returns a bcrypt hash suitable for the *_PASSWORD_HASH settings.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}
