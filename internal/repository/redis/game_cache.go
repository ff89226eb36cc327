package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

func stateKey(gameID string) string { return "game:" + gameID + ":state" }

// SetState stores the live board JSON. No TTL: the cache is invalidated
// explicitly when a game is deleted or loaded from a save.
func (c *Client) SetState(ctx context.Context, gameID string, state json.RawMessage) error {
	return c.rdb.Set(ctx, stateKey(gameID), []byte(state), 0).Err()
}

// GetState retrieves the live board JSON, or nil on a cache miss.
func (c *Client) GetState(ctx context.Context, gameID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, stateKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game state: %w", err)
	}
	return json.RawMessage(data), nil
}

// DeleteState drops the cached board for a game.
func (c *Client) DeleteState(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, stateKey(gameID)).Err()
}
