package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNewClient_URLAndAddr(t *testing.T) {
	mr := miniredis.RunT(t)

	c1, err := NewClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer func() { _ = c1.Close() }()

	_, err = NewClient(context.Background(), "redis://%zz")
	assert.Error(t, err)
}

func TestCacheAside_FetchesOnceThenHits(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *[]string) func() error {
		return func() error {
			calls++
			*dest = []string{"a", "b"}
			return nil
		}
	}

	var first []string
	require.NoError(t, CacheAside(ctx, client, "k", &first, time.Minute, fetch(&first)))
	var second []string
	require.NoError(t, CacheAside(ctx, client, "k", &second, time.Minute, fetch(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"a", "b"}, second)

	mr.FastForward(2 * time.Minute)
	var third []string
	require.NoError(t, CacheAside(ctx, client, "k", &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestCacheAside_FetchErrorNotCached(t *testing.T) {
	mr, client := setupRedis(t)
	boom := errors.New("boom")

	var dest []string
	err := CacheAside(context.Background(), client, "k", &dest, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestCacheAside_NilClientPassesThrough(t *testing.T) {
	var dest int
	err := CacheAside(context.Background(), nil, "k", &dest, time.Minute, func() error {
		dest = 7
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, dest)
}
