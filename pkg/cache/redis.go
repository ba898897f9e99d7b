package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisCache struct {
	cli *redis.Client
}

// NewRedisCache connects and pings; values are stored JSON-encoded, so a Get
// returns json.RawMessage for the caller to decode.
func NewRedisCache(config RedisConfig) (Cache, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		ReadTimeout:  config.Timeout,
		WriteTimeout: config.Timeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &redisCache{cli: cli}, nil
}

func (r *redisCache) Get(ctx context.Context, key string) (interface{}, bool) {
	raw, err := r.cli.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return json.RawMessage(raw), true
}

func (r *redisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.cli.Set(ctx, key, raw, expiration).Err()
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.cli.Del(ctx, key).Err()
}

func (r *redisCache) Exists(ctx context.Context, key string) bool {
	n, err := r.cli.Exists(ctx, key).Result()
	return err == nil && n > 0
}

func (r *redisCache) Close() error { return r.cli.Close() }
