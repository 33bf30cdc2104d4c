package redis

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	Client *redis.Client
	Ctx    = context.Background()
)

func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		logrus.Warn("REDIS_ADDR not set, dashboard caching disabled")
		return
	}

	Client = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	// Test connection
	if _, err := Client.Ping(Ctx).Result(); err != nil {
		logrus.WithError(err).Warn("Failed to connect to Redis, dashboard caching disabled")
		Client = nil
		return
	}
	logrus.Info("Connected to Redis")
}

// GetCached returns the cached payload for key, or "" when caching is off or
// the key is missing.
func GetCached(key string) string {
	if Client == nil {
		return ""
	}
	val, err := Client.Get(Ctx, key).Result()
	if err != nil {
		return ""
	}
	return val
}

// SetCached stores payload under key with a TTL. A no-op when caching is off.
func SetCached(key, payload string, ttl time.Duration) {
	if Client == nil {
		return
	}
	if err := Client.Set(Ctx, key, payload, ttl).Err(); err != nil {
		logrus.WithError(err).Warn("Failed to cache payload")
	}
}
