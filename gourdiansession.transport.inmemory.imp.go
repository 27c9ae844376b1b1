// File: gourdiansession.transport.inmemory.imp.go

package gourdiansession

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryTokenTransport holds a single token the way a browser holds a
// cookie: it is dropped once its max-age has passed.
// Suitable for tests and command-line clients
type MemoryTokenTransport struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// NewMemoryTokenTransport creates an empty transport. now defaults to
// time.Now when nil.
func NewMemoryTokenTransport(now func() time.Time) *MemoryTokenTransport {
	if now == nil {
		now = time.Now
	}
	return &MemoryTokenTransport{now: now}
}

// ReadToken returns the held token if it has not outlived its max-age
func (m *MemoryTokenTransport) ReadToken(ctx context.Context) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == "" || !m.now().Before(m.expiresAt) {
		return "", false, nil
	}
	return m.token, true, nil
}

// WriteToken replaces the held token
func (m *MemoryTokenTransport) WriteToken(ctx context.Context, token string, maxAge time.Duration) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	if maxAge <= 0 {
		return fmt.Errorf("max age must be positive")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	m.expiresAt = m.now().Add(maxAge)
	return nil
}

// ClearToken discards the held token
func (m *MemoryTokenTransport) ClearToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	m.expiresAt = time.Time{}
	return nil
}
