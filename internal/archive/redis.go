package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis keeps the session history in a capped Redis list. The key
// expires with the session TTL, matching the "no persistence beyond
// the session" contract.
type Redis struct {
	client *redis.Client
	key    string
	cap    int64
	ttl    time.Duration
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr, key string, cap int64, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{client: client, key: key, cap: cap, ttl: ttl}, nil
}

// Append pushes one raw payload and trims the list to capacity.
func (r *Redis) Append(ctx context.Context, raw []byte) error {
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, r.key, raw)
	pipe.LTrim(ctx, r.key, 0, r.cap-1)
	pipe.Expire(ctx, r.key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("archive append: %w", err)
	}
	return nil
}

// Replay returns the archived payloads oldest-first.
func (r *Redis) Replay(ctx context.Context) ([][]byte, error) {
	values, err := r.client.LRange(ctx, r.key, 0, r.cap-1).Result()
	if err != nil {
		return nil, fmt.Errorf("archive replay: %w", err)
	}
	// LPush stores newest-first; reverse back to insertion order.
	out := make([][]byte, 0, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		out = append(out, []byte(values[i]))
	}
	return out, nil
}

// Close releases the connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
