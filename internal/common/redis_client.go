package common

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"winterops/stationboard/internal/logging"
)

const redisPingTimeout = 5 * time.Second

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewRedisClient builds the client that carries the allocation change
// stream. An unreachable broker is not fatal: the pool reconnects on
// its own and the stream publisher tolerates dropped writes.
func NewRedisClient() *redis.Client {
	addr := net.JoinHostPort(envOr("REDIS_HOST", "localhost"), envOr("REDIS_PORT", "6379"))

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logging.Warn("Redis unreachable, change stream degraded",
			"addr", addr,
			"error", err.Error(),
		)
		return client
	}

	logging.Info("Connected to Redis", "addr", addr)
	return client
}
