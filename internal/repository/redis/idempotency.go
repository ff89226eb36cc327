package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func idemKey(key string) string { return "idem:" + key }

// GetResult returns the cached outcome for an idempotency key, or nil when
// the key has never been seen (or its entry has expired).
func (c *Client) GetResult(ctx context.Context, key string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, idemKey(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get idempotency result: %w", err)
	}
	return json.RawMessage(data), nil
}

// StoreResult caches the outcome of a successfully applied command. Failed
// commands are never stored, so a client may retry them with the same key.
func (c *Client) StoreResult(ctx context.Context, key string, result json.RawMessage, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, idemKey(key), []byte(result), ttl).Err(); err != nil {
		return fmt.Errorf("store idempotency result: %w", err)
	}
	return nil
}
