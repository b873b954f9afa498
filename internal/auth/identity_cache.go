package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const identityCachePrefix = "auth_identity:"

// RedisIdentityCache remembers the identity a token resolved to so repeat
// requests skip verification and the customer lookup.
type RedisIdentityCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisIdentityCache(client *redis.Client, ttl time.Duration) *RedisIdentityCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisIdentityCache{Client: client, TTL: ttl}
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return identityCachePrefix + hex.EncodeToString(sum[:])
}

// Get returns nil, nil on a miss.
func (c *RedisIdentityCache) Get(ctx context.Context, token string) (*Identity, error) {
	raw, err := c.Client.Get(ctx, cacheKey(token)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity from Redis: %w", err)
	}
	var id Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached identity: %w", err)
	}
	return &id, nil
}

func (c *RedisIdentityCache) Set(ctx context.Context, token string, id Identity) error {
	payload, err := json.Marshal(id)
	if err != nil {
		return err
	}
	if err := c.Client.Set(ctx, cacheKey(token), payload, c.TTL).Err(); err != nil {
		return fmt.Errorf("failed to cache identity: %w", err)
	}
	return nil
}
