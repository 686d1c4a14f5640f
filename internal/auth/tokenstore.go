package auth

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const (
	tokenFileName = "token"
	nameFileName  = "display_name"
)

// TokenStore persists the single bearer credential across invocations. It is
// a one-key store: a new login overwrites the previous token, and clearing an
// absent token is a no-op.
type TokenStore struct {
	dir string
}

// NewTokenStore creates a store rooted at dir. The directory is created on
// first Save.
func NewTokenStore(dir string) *TokenStore {
	return &TokenStore{dir: dir}
}

// DefaultStoreDir returns the per-user location for persisted credentials,
// typically ~/.config/clario.
func DefaultStoreDir() string {
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "clario")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".clario")
}

// Save persists the token, overwriting any existing value.
func (s *TokenStore) Save(token string) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, tokenFileName), []byte(token), 0600)
}

// Read returns the current token and whether one is present. A missing or
// unreadable file reads as absent; Read never fails.
func (s *TokenStore) Read() (string, bool) {
	raw, err := os.ReadFile(filepath.Join(s.dir, tokenFileName))
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", false
	}
	return token, true
}

// Clear removes the stored token. Clearing an already-absent token is not an
// error.
func (s *TokenStore) Clear() error {
	err := os.Remove(filepath.Join(s.dir, tokenFileName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DisplayName returns the cached display name, or empty when none is cached.
func (s *TokenStore) DisplayName() string {
	raw, err := os.ReadFile(filepath.Join(s.dir, nameFileName))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

// CacheDisplayName stores the display name unless one is already cached.
// The cached value is a read-only fallback and is never overwritten.
func (s *TokenStore) CacheDisplayName(name string) {
	if name == "" || s.DisplayName() != "" {
		return
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		log.Debug().Err(err).Msg("failed to create store directory for display name")
		return
	}
	if err := os.WriteFile(filepath.Join(s.dir, nameFileName), []byte(name), 0600); err != nil {
		log.Debug().Err(err).Msg("failed to cache display name")
	}
}

// TokenExpiry inspects a bearer token and returns its expiry time when the
// token is a JWT with an exp claim. The claims are not verified; this is a
// display aid only. Opaque tokens yield a zero time.
func TokenExpiry(token string) time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
