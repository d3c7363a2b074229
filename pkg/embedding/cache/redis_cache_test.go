package cache

import (
	"context"
	"testing"

	"prime-research/internal/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, logger.NewNopLogger()), srv
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, srv := newTestRedisCache(t)
	ctx := context.Background()
	key := Fingerprint("tides")

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, key, []float32{0.25, -1}))

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []float32{0.25, -1}, got)

	assert.True(t, srv.Exists(redisKeyPrefix+key))
	assert.Zero(t, srv.TTL(redisKeyPrefix+key))
}

func TestRedisCacheMisses(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{name: "absent key"},
		{name: "corrupt entry", stored: "{not json"},
		{name: "wrong shape", stored: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newTestRedisCache(t)
			key := Fingerprint(tt.name)
			if tt.stored != "" {
				require.NoError(t, srv.Set(redisKeyPrefix+key, tt.stored))
			}

			got, ok := c.Get(context.Background(), key)
			assert.False(t, ok)
			assert.Nil(t, got)
		})
	}
}

func TestRedisCacheUnreachableServer(t *testing.T) {
	c, srv := newTestRedisCache(t)
	ctx := context.Background()
	srv.Close()

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Error(t, c.Put(ctx, "k", []float32{1}))
	assert.NoError(t, c.Flush(ctx))
}
