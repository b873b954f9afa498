package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ms-servicing/internal/logger"

	"github.com/go-redis/redis/v8"
)

const plateLockPrefix = "plate_lock:"

// PlateLock serialises registrations of the same plate across service
// instances so the exists-check and the insert see a consistent view.
type PlateLock struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

func NewPlateLock(client *redis.Client, ttl time.Duration, log *logger.Logger) *PlateLock {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &PlateLock{
		Client: client,
		TTL:    ttl,
		Logger: log,
	}
}

func key(plate string) string {
	return plateLockPrefix + strings.ToUpper(plate)
}

// Lock returns false without error when another owner holds the plate.
func (p *PlateLock) Lock(ctx context.Context, plate, owner string) (bool, error) {
	ok, err := p.Client.SetNX(ctx, key(plate), owner, p.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to lock plate %s: %w", plate, err)
	}
	if !ok && p.Logger != nil {
		p.Logger.Warn("REDIS", fmt.Sprintf("Plate %s is locked by another registration", plate))
	}
	return ok, nil
}

// Unlock releases the plate only if owner still holds it.
func (p *PlateLock) Unlock(ctx context.Context, plate, owner string) error {
	k := key(plate)
	val, err := p.Client.Get(ctx, k).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val == owner {
		_, err := p.Client.Del(ctx, k).Result()
		return err
	}
	return nil
}

// NoopLock is used when Redis is disabled; the database unique constraint
// still rejects duplicates.
type NoopLock struct{}

func (NoopLock) Lock(context.Context, string, string) (bool, error) { return true, nil }

func (NoopLock) Unlock(context.Context, string, string) error { return nil }
