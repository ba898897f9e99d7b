package cache

import (
	"context"
	"time"
)

// Cache fronts hot dashboard reads (last session, recent locations). Both
// backends hold arbitrary values; the redis backend restricts them to what
// it can serialize.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) bool
	Close() error
}

type Config struct {
	// "local"/"gocache" or "redis"
	Type string `env:"CACHE_TYPE" default:"gocache"`

	Redis RedisConfig
	Local LocalConfig
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" default:"localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" default:"0"`
	PoolSize int           `env:"REDIS_POOL_SIZE" default:"10"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT" default:"3s"`
}

type LocalConfig struct {
	DefaultExpiration time.Duration `env:"LOCAL_CACHE_DEFAULT_EXPIRATION" default:"5m"`
	CleanupInterval   time.Duration `env:"LOCAL_CACHE_CLEANUP_INTERVAL" default:"10m"`
}
