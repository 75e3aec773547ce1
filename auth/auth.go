// Package auth implements the shared access gate in front of the dashboard.
//
// The gate asks for an email address and a shared access key. The key is
// checked through a Verifier so the comparison can be delegated; the default
// KeyVerifier compares against a bcrypt hash instead of a plaintext secret.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmailRequired is returned when no email address was supplied.
	ErrEmailRequired = errors.New("please enter your email")

	// ErrInvalidKey is returned when the access key does not match.
	ErrInvalidKey = errors.New("invalid access key")
)

// Verifier checks a login attempt.
type Verifier interface {
	Verify(ctx context.Context, email, key string) error
}

// KeyVerifier checks the shared key against a bcrypt hash. The hash can be
// swapped at runtime when the configuration reloads.
type KeyVerifier struct {
	mu   sync.RWMutex
	hash []byte
}

// NewKeyVerifier creates a verifier for a bcrypt hash.
func NewKeyVerifier(hash string) (*KeyVerifier, error) {
	v := &KeyVerifier{}
	if err := v.SetHash(hash); err != nil {
		return nil, err
	}
	return v, nil
}

// SetHash replaces the accepted key hash.
func (v *KeyVerifier) SetHash(hash string) error {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return fmt.Errorf("invalid access key hash: %w", err)
	}
	v.mu.Lock()
	v.hash = []byte(hash)
	v.mu.Unlock()
	return nil
}

// Verify requires a non-empty email and a key matching the hash.
func (v *KeyVerifier) Verify(_ context.Context, email, key string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}

	v.mu.RLock()
	hash := v.hash
	v.mu.RUnlock()

	if err := bcrypt.CompareHashAndPassword(hash, []byte(key)); err != nil {
		return ErrInvalidKey
	}
	return nil
}

// HashKey returns the bcrypt hash to store in auth.access_key_hash.
func HashKey(key string) (string, error) {
	if key == "" {
		return "", errors.New("access key must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash access key: %w", err)
	}
	return string(hash), nil
}
