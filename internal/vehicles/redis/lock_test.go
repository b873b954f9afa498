package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis starts an in-memory Redis and a client pointed at it.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		mr.Close()
		t.Fatalf("Failed to connect to miniredis: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestPlateLock_LockUnlock(t *testing.T) {
	client, _ := setupTestRedis(t)
	lock := NewPlateLock(client, time.Minute, nil)
	ctx := context.Background()

	ok, err := lock.Lock(ctx, "mh12ab1234", "req-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = lock.Lock(ctx, "MH12AB1234", "req-2")
	require.NoError(t, err)
	assert.False(t, ok, "same plate in another case must collide")

	require.NoError(t, lock.Unlock(ctx, "MH12AB1234", "req-2"))
	ok, err = lock.Lock(ctx, "MH12AB1234", "req-2")
	require.NoError(t, err)
	assert.False(t, ok, "unlock by a non-owner must not release")

	require.NoError(t, lock.Unlock(ctx, "MH12AB1234", "req-1"))
	ok, err = lock.Lock(ctx, "MH12AB1234", "req-2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPlateLock_Expires(t *testing.T) {
	client, mr := setupTestRedis(t)
	lock := NewPlateLock(client, 5*time.Second, nil)
	ctx := context.Background()

	ok, err := lock.Lock(ctx, "KA01", "req-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists("plate_lock:KA01"))

	mr.FastForward(6 * time.Second)

	ok, err = lock.Lock(ctx, "KA01", "req-2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPlateLock_ConcurrentSingleWinner(t *testing.T) {
	client, _ := setupTestRedis(t)
	lock := NewPlateLock(client, time.Minute, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := lock.Lock(ctx, "DL3C0001", fmt.Sprintf("req-%d", i))
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}

func TestPlateLock_ServerDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	lock := NewPlateLock(client, time.Minute, nil)
	mr.Close()

	_, err := lock.Lock(context.Background(), "KA01", "req-1")
	assert.Error(t, err)
}

func TestNoopLock(t *testing.T) {
	var lock NoopLock
	ok, err := lock.Lock(context.Background(), "X", "y")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, lock.Unlock(context.Background(), "X", "y"))
}
