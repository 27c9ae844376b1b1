// File: gourdiansession.store.redis.imp.go

package gourdiansession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const credentialsKey = "credentials"

// RedisCredentialStore keeps bcrypt hashes in a single Redis hash keyed by
// username
type RedisCredentialStore struct {
	client *redis.Client
	key    string
	cost   int
}

// NewRedisCredentialStore creates a new Redis-based credential store.
// Keys are written under prefix (e.g. "myapp:").
func NewRedisCredentialStore(client *redis.Client, prefix string, cost int) (*RedisCredentialStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisCredentialStore{
		client: client,
		key:    prefix + credentialsKey,
		cost:   cost,
	}, nil
}

// AddUser hashes password and stores it for username
func (r *RedisCredentialStore) AddUser(ctx context.Context, username, password string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	hash, err := HashPassword(password, r.cost)
	if err != nil {
		return err
	}

	if err := r.client.HSet(ctx, r.key, username, hash).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// RemoveUser deletes username
func (r *RedisCredentialStore) RemoveUser(ctx context.Context, username string) error {
	if err := r.client.HDel(ctx, r.key, username).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// ValidateUser reports whether username exists
func (r *RedisCredentialStore) ValidateUser(ctx context.Context, username string) (bool, error) {
	exists, err := r.client.HExists(ctx, r.key, username).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return exists, nil
}

// PasswordHash returns the stored hash for username
func (r *RedisCredentialStore) PasswordHash(ctx context.Context, username string) (string, error) {
	hash, err := r.client.HGet(ctx, r.key, username).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	if err != nil {
		return "", fmt.Errorf("redis error: %w", err)
	}
	return hash, nil
}
