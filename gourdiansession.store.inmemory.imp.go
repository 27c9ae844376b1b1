// File: gourdiansession.store.inmemory.imp.go

package gourdiansession

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MemoryCredentialStore is an in-memory implementation of CredentialStore.
// Suitable for development, testing, or single-account deployments
type MemoryCredentialStore struct {
	mu     sync.RWMutex
	hashes map[string]string
	cost   int
}

// NewMemoryCredentialStore creates an empty store hashing passwords with the
// given bcrypt cost (bcrypt.DefaultCost when cost <= 0)
func NewMemoryCredentialStore(cost int) *MemoryCredentialStore {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &MemoryCredentialStore{
		hashes: make(map[string]string),
		cost:   cost,
	}
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// AddUser hashes password and stores it for username, replacing any
// previous entry
func (m *MemoryCredentialStore) AddUser(username, password string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	hash, err := HashPassword(password, m.cost)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.hashes[username] = hash
	return nil
}

// SetPasswordHash stores an already hashed password for username
func (m *MemoryCredentialStore) SetPasswordHash(username, hash string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return fmt.Errorf("invalid bcrypt hash: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.hashes[username] = hash
	return nil
}

// RemoveUser deletes username. Tokens issued to it stop validating.
func (m *MemoryCredentialStore) RemoveUser(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.hashes, username)
}

// ValidateUser reports whether username exists
func (m *MemoryCredentialStore) ValidateUser(ctx context.Context, username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.hashes[username]
	return exists, nil
}

// PasswordHash returns the stored hash for username
func (m *MemoryCredentialStore) PasswordHash(ctx context.Context, username string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hash, exists := m.hashes[username]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	return hash, nil
}

// Len returns the number of stored accounts
func (m *MemoryCredentialStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.hashes)
}
