// File: gourdiansession.transport.redis.imp.go

package gourdiansession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const tokenPrefix = "token:"

// RedisTokenTransport stores the token of one device (identified by a
// UUID) with a TTL equal to its max-age. It serves clients with no cookie
// jar of their own; the token itself stays stateless.
type RedisTokenTransport struct {
	client   *redis.Client
	deviceID uuid.UUID
	key      string
}

// NewDeviceID returns a fresh random device identifier.
func NewDeviceID() (uuid.UUID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate device ID: %w", err)
	}
	return id, nil
}

// NewRedisTokenTransport creates a transport for deviceID.
func NewRedisTokenTransport(client *redis.Client, prefix string, deviceID uuid.UUID) (*RedisTokenTransport, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	if deviceID == uuid.Nil {
		return nil, fmt.Errorf("device ID cannot be nil")
	}

	return &RedisTokenTransport{
		client:   client,
		deviceID: deviceID,
		key:      prefix + tokenPrefix + deviceID.String(),
	}, nil
}

// DeviceID returns the device this transport belongs to
func (r *RedisTokenTransport) DeviceID() uuid.UUID {
	return r.deviceID
}

// ReadToken returns the stored token, if any
func (r *RedisTokenTransport) ReadToken(ctx context.Context) (string, bool, error) {
	token, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis error: %w", err)
	}
	return token, true, nil
}

// WriteToken stores token for maxAge
func (r *RedisTokenTransport) WriteToken(ctx context.Context, token string, maxAge time.Duration) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	if maxAge <= 0 {
		return fmt.Errorf("max age must be positive")
	}

	return r.client.Set(ctx, r.key, token, maxAge).Err()
}

// ClearToken deletes the stored token
func (r *RedisTokenTransport) ClearToken(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
