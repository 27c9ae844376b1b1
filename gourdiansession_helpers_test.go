// gourdiansession_helpers_test.go

package gourdiansession

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret   = "hunter2"
	testUsername = "admin"
	testPassword = "pass"
)

// testClock is a settable time source.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) *MemoryCredentialStore {
	t.Helper()

	store := NewMemoryCredentialStore(bcrypt.MinCost)
	require.NoError(t, store.AddUser(testUsername, testPassword))
	return store
}

func newTestMaker(t *testing.T, variant Variant, store CredentialStore, clock *testClock) *SessionMaker {
	t.Helper()

	config := DefaultGourdianSessionConfig(testSecret, store)
	config.Variant = variant
	maker, err := newSessionMaker(config, applyOptions([]Option{WithClock(clock.Now)}))
	require.NoError(t, err)
	return maker
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// forgeToken signs arbitrary header and payload JSON with the key derived
// from secret, producing tokens the maker itself would never issue.
func forgeToken(t *testing.T, secret, header, payload string) string {
	t.Helper()

	h := base64.RawURLEncoding.EncodeToString([]byte(header))
	p := base64.RawURLEncoding.EncodeToString([]byte(payload))
	sig, err := sign(h+"."+p, deriveHMACKey(secret))
	require.NoError(t, err)
	return h + "." + p + "." + sig
}

func storedHash(t *testing.T, store CredentialStore, username string) string {
	t.Helper()

	hash, err := store.PasswordHash(context.Background(), username)
	require.NoError(t, err)
	return hash
}

// failingStore errors on every lookup.
type failingStore struct{}

var errStoreDown = errors.New("store unavailable")

func (failingStore) ValidateUser(ctx context.Context, username string) (bool, error) {
	return false, errStoreDown
}

func (failingStore) PasswordHash(ctx context.Context, username string) (string, error) {
	return "", errStoreDown
}

// failingTransport errors on every operation.
type failingTransport struct{}

var errTransportDown = errors.New("transport unavailable")

func (failingTransport) ReadToken(ctx context.Context) (string, bool, error) {
	return "", false, errTransportDown
}

func (failingTransport) WriteToken(ctx context.Context, token string, maxAge time.Duration) error {
	return errTransportDown
}

func (failingTransport) ClearToken(ctx context.Context) error {
	return errTransportDown
}
