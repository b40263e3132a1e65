package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestConnectThrottleMemoryStore(t *testing.T) {
	th, err := NewConnectThrottle("2-M", "memory", nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.True(t, th.Allow(ctx, "1.1.1.1"))
	require.True(t, th.Allow(ctx, "1.1.1.1"))
	require.False(t, th.Allow(ctx, "1.1.1.1"))
}

func TestConnectThrottleRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	th, err := NewConnectThrottle("1-M", "redis", client)
	require.NoError(t, err)

	ctx := context.Background()
	require.True(t, th.Allow(ctx, "2.2.2.2"))
	require.False(t, th.Allow(ctx, "2.2.2.2"))
}

func TestConnectThrottleInvalidRate(t *testing.T) {
	_, err := NewConnectThrottle("not-a-rate", "memory", nil)
	require.Error(t, err)
}

func TestConnectThrottleRedisBackendRequiresClient(t *testing.T) {
	_, err := NewConnectThrottle("2-M", "redis", nil)
	require.Error(t, err)
}

func TestConnectThrottleUnknownBackend(t *testing.T) {
	_, err := NewConnectThrottle("2-M", "bogus", nil)
	require.Error(t, err)
}
