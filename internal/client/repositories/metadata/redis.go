package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps metadata in Redis under a key prefix, so several
// client profiles can share one server.
type RedisRepository struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisRepository(rdb redis.UniversalClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "dmara:"
	}
	return &RedisRepository{rdb: rdb, prefix: prefix}
}

func (r *RedisRepository) key(k string) string { return r.prefix + k }

func (r *RedisRepository) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return data, nil
}

func (r *RedisRepository) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) SetMany(ctx context.Context, values map[string][]byte) error {
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for k, v := range values {
			p.Set(ctx, r.key(k), v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) keys(ctx context.Context) ([]string, error) {
	var out []string
	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	return out, iter.Err()
}

func (r *RedisRepository) List(ctx context.Context) (map[string][]byte, error) {
	keys, err := r.keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}
	result := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, err := r.rdb.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list metadata: %w", err)
		}
		result[strings.TrimPrefix(k, r.prefix)] = v
	}
	return result, nil
}

func (r *RedisRepository) Clear(ctx context.Context) error {
	keys, err := r.keys(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}
