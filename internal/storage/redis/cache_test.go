package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"solanalysis/internal/storage"
)

// setupTestRedis starts a Redis container and returns a cache bound to it.
// Returns a cleanup function that must be called after tests complete.
func setupTestRedis(t *testing.T) (*Cache, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start redis container")

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err, "failed to get redis endpoint")

	cache := NewCache(addr, "", 0)
	require.NoError(t, cache.Ping(ctx), "failed to ping redis")

	cleanup := func() {
		cache.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return cache, cleanup
}

func TestCache_SetGetDelete(t *testing.T) {
	cache, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "rpc:getSlot", []byte(`{"result":1}`), time.Minute))

	got, err := cache.Get(ctx, "rpc:getSlot")
	require.NoError(t, err)
	require.Equal(t, `{"result":1}`, string(got))

	require.NoError(t, cache.Delete(ctx, "rpc:getSlot"))
	_, err = cache.Get(ctx, "rpc:getSlot")
	require.True(t, errors.Is(err, storage.ErrNotFound), "expected ErrNotFound, got %v", err)
}

func TestCache_NotFound(t *testing.T) {
	cache, cleanup := setupTestRedis(t)
	defer cleanup()

	_, err := cache.Get(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCache_Expiry(t *testing.T) {
	cache, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", []byte("v"), time.Second))

	require.Eventually(t, func() bool {
		_, err := cache.Get(ctx, "short")
		return errors.Is(err, storage.ErrNotFound)
	}, 5*time.Second, 100*time.Millisecond)
}

func TestCache_Prefix(t *testing.T) {
	cache, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	other := NewCacheFromClient(cache.client, "other:")
	require.NoError(t, cache.Set(ctx, "k", []byte("mine"), time.Minute))

	_, err := other.Get(ctx, "k")
	require.ErrorIs(t, err, storage.ErrNotFound)

	raw, err := cache.client.Get(ctx, DefaultPrefix+"k").Result()
	require.NoError(t, err)
	require.Equal(t, "mine", raw)
}

func TestCache_JSONHelpers(t *testing.T) {
	cache, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	in := map[string]float64{"price": 172.5}
	require.NoError(t, storage.SetJSON(ctx, cache, "price:usd", in, time.Minute))

	var out map[string]float64
	require.NoError(t, storage.GetJSON(ctx, cache, "price:usd", &out))
	require.Equal(t, in, out)
}
