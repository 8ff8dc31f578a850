package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vendaflow/backend/internal/domain/marketplace"
	"github.com/vendaflow/backend/internal/infrastructure/config"
)

// invalidMarkTTL caps how long an invalid mark sticks around on its own.
// A successful refresh clears it earlier.
const invalidMarkTTL = 30 * 24 * time.Hour

// RedisAccountStatusStore implements marketplace.AccountStatusStore on
// Redis, so the "needs reconnection" mark is shared across instances.
type RedisAccountStatusStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisAccountStatusStore connects to Redis and verifies the connection
func NewRedisAccountStatusStore(cfg config.RedisConfig) (*RedisAccountStatusStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisAccountStatusStore{
		client:    client,
		keyPrefix: "account:invalid:",
	}, nil
}

// NewRedisAccountStatusStoreWithClient wraps an existing client, useful when
// sharing a connection across components
func NewRedisAccountStatusStoreWithClient(client *redis.Client, keyPrefix string) *RedisAccountStatusStore {
	if keyPrefix == "" {
		keyPrefix = "account:invalid:"
	}
	return &RedisAccountStatusStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisAccountStatusStore) key(accountID uuid.UUID, platform marketplace.PlatformCode) string {
	return fmt.Sprintf("%s%s:%s", s.keyPrefix, platform, accountID)
}

// MarkInvalid sets the invalid mark, storing the failure reason as the value
func (s *RedisAccountStatusStore) MarkInvalid(ctx context.Context, accountID uuid.UUID, platform marketplace.PlatformCode, reason string) error {
	if err := s.client.Set(ctx, s.key(accountID, platform), reason, invalidMarkTTL).Err(); err != nil {
		return fmt.Errorf("failed to mark account invalid: %w", err)
	}
	return nil
}

// ClearInvalid removes the invalid mark; clearing an absent mark is a no-op
func (s *RedisAccountStatusStore) ClearInvalid(ctx context.Context, accountID uuid.UUID, platform marketplace.PlatformCode) error {
	if err := s.client.Del(ctx, s.key(accountID, platform)).Err(); err != nil {
		return fmt.Errorf("failed to clear invalid mark: %w", err)
	}
	return nil
}

// IsInvalid reports whether the account is currently marked invalid
func (s *RedisAccountStatusStore) IsInvalid(ctx context.Context, accountID uuid.UUID, platform marketplace.PlatformCode) (bool, error) {
	exists, err := s.client.Exists(ctx, s.key(accountID, platform)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check invalid mark: %w", err)
	}
	return exists > 0, nil
}

// Close closes the Redis client
func (s *RedisAccountStatusStore) Close() error {
	return s.client.Close()
}

var _ marketplace.AccountStatusStore = (*RedisAccountStatusStore)(nil)
