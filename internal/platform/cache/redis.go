package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect dials Redis and pings it once. The analytics cache degrades to a
// pass-through when Redis is down, so a failed ping is logged as a warning
// and the client is still returned.
func Connect(ctx context.Context, logger *slog.Logger, addr string) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	return client
}
