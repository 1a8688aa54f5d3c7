package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrDisabled is returned when no Redis address is configured.
var ErrDisabled = errors.New("platform/cache: redis disabled")

const pingTimeout = 5 * time.Second

// New creates a Redis client and verifies it answers PING. The client is
// closed again when the ping fails.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, ErrDisabled
	}
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: pingTimeout,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/cache: ping %s: %w", addr, err)
	}

	return client, nil
}
