package bootstrap

import (
	"context"
	"testing"

	"memeverse/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRuntime_SQLiteWithoutRedis(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.DriverSQLite, StorePath: ":memory:", StoreMaxWriteAttempts: 3}

	store, rdb, err := InitRuntime(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	assert.Nil(t, rdb)
	assert.Equal(t, "gorm:sqlite", store.BackendName())
	assert.NoError(t, store.Ping(context.Background()))
}

func TestInitRuntime_RedisDriver(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{StoreDriver: config.DriverRedis, RedisURL: mr.Addr(), StoreMaxWriteAttempts: 3}

	store, rdb, err := InitRuntime(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NotNil(t, rdb)
	assert.Equal(t, "redis", store.BackendName())
}

func TestInitRuntime_RedisDriverUnreachable(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.DriverRedis, RedisURL: "127.0.0.1:1", StoreMaxWriteAttempts: 3}

	_, _, err := InitRuntime(context.Background(), cfg)
	assert.Error(t, err)
}

func TestInitRuntime_SQLiteToleratesRedisOutage(t *testing.T) {
	cfg := &config.Config{
		StoreDriver:           config.DriverSQLite,
		StorePath:             ":memory:",
		StoreMaxWriteAttempts: 3,
		RedisURL:              "127.0.0.1:1",
	}

	store, rdb, err := InitRuntime(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	assert.Nil(t, rdb)
}
