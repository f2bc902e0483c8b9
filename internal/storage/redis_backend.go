package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "memeverse:record:"

// RedisBackend keeps every key as a hash {value, version} and uses
// WATCH/MULTI for the versioned write.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend creates a Backend over a connected Redis client.
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Name() string {
	return "redis"
}

func (b *RedisBackend) Load(ctx context.Context, key string) (Entry, bool, error) {
	vals, err := b.client.HMGet(ctx, redisKeyPrefix+key, "value", "version").Result()
	if err != nil {
		return Entry{}, false, fmt.Errorf("load %q: %w", key, err)
	}
	if vals[0] == nil {
		return Entry{Key: key}, false, nil
	}
	value, _ := vals[0].(string)
	version, err := parseVersion(vals[1])
	if err != nil {
		return Entry{}, false, fmt.Errorf("load %q: %w", key, err)
	}
	return Entry{Key: key, Value: []byte(value), Version: version}, true, nil
}

func (b *RedisBackend) Store(ctx context.Context, key string, value []byte, expectVersion int64) (int64, error) {
	rkey := redisKeyPrefix + key
	next := expectVersion + 1

	err := b.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, rkey, "version").Result()
		switch {
		case errors.Is(err, redis.Nil):
			if expectVersion != 0 {
				return ErrVersionConflict
			}
		case err != nil:
			return err
		default:
			v, perr := parseVersion(current)
			if perr != nil {
				return perr
			}
			if v != expectVersion {
				return ErrVersionConflict
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, rkey, "value", string(value), "version", next)
			return nil
		})
		return err
	}, rkey)

	if errors.Is(err, redis.TxFailedErr) || errors.Is(err, ErrVersionConflict) {
		return 0, ErrVersionConflict
	}
	if err != nil {
		return 0, fmt.Errorf("store %q: %w", key, err)
	}
	return next, nil
}

func (b *RedisBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := b.client.Scan(ctx, 0, redisKeyPrefix+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), redisKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}

func parseVersion(v interface{}) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("missing version field")
	}
	var n int64
	if _, err := fmt.Sscan(s, &n); err != nil {
		return 0, fmt.Errorf("bad version %q: %w", s, err)
	}
	return n, nil
}
