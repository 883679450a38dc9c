package cache

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "", time.Minute), srv
}

func TestKey_IgnoresParameterOrder(t *testing.T) {
	c := New(nil, "", 0)
	a := c.Key("/searchproperty", url.Values{"searchQuery": {"villa"}, "limit": {"20"}})
	b := c.Key("/searchproperty", url.Values{"limit": {"20"}, "searchQuery": {"villa"}})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c.Key("/location", url.Values{"searchQuery": {"villa"}, "limit": {"20"}}))
	assert.Regexp(t, `^property:[0-9a-f]{64}$`, a)
}

func TestGetSetInvalidate(t *testing.T) {
	c, srv := newCache(t)
	ctx := context.Background()
	key := c.Key("/getProperties", nil)

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	c.Set(ctx, key, []byte(`[]`))
	body, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, `[]`, string(body))
	assert.Equal(t, time.Minute, srv.TTL(key))

	require.NoError(t, srv.Set("session:1", "keep"))
	n, err := c.Invalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, srv.Exists(key))
	assert.True(t, srv.Exists("session:1"))
}

func TestGet_RedisDownIsMiss(t *testing.T) {
	c, srv := newCache(t)
	srv.Close()

	_, ok := c.Get(context.Background(), "property:x")
	assert.False(t, ok)
	_, err := c.Invalidate(context.Background())
	assert.Error(t, err)
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	n, err := c.Invalidate(ctx)
	assert.NoError(t, err)
	assert.Zero(t, n)
	c.InvalidateAsync()
}
