//go:build integration

package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ironholdgame/server/internal/testutil"
)

var testRDB *goredis.Client

func setup(t *testing.T) *Client {
	t.Helper()
	if testRDB == nil {
		testRDB = testutil.SetupRedis(t)
	}
	testutil.CleanupRedis(t, testRDB)
	return &Client{rdb: testRDB}
}

func TestStateRoundTrip(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	gameID := "test-game-1"

	state := json.RawMessage(`{"turn":3,"active_id":1,"units":[{"id":9,"type":"warrior"}]}`)
	if err := c.SetState(ctx, gameID, state); err != nil {
		t.Fatalf("set state: %v", err)
	}

	got, err := c.GetState(ctx, gameID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	var fetched map[string]any
	if err := json.Unmarshal(got, &fetched); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fetched["turn"].(float64) != 3 {
		t.Fatalf("state round-trip failed: %s", string(got))
	}
}

func TestStateMissAndDelete(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	got, err := c.GetState(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("get missing state: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for missing state")
	}

	c.SetState(ctx, "g", json.RawMessage(`{}`))
	if err := c.DeleteState(ctx, "g"); err != nil {
		t.Fatalf("delete state: %v", err)
	}
	got, _ = c.GetState(ctx, "g")
	if got != nil {
		t.Fatal("expected nil after delete")
	}
}

func TestIdempotencyResult(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	key := "move:game-1:client-key-1"

	got, err := c.GetResult(ctx, key)
	if err != nil {
		t.Fatalf("get unseen key: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for unseen key")
	}

	result := json.RawMessage(`{"unit_id":9,"to":{"row":3,"col":4}}`)
	if err := c.StoreResult(ctx, key, result, time.Hour); err != nil {
		t.Fatalf("store result: %v", err)
	}

	got, err = c.GetResult(ctx, key)
	if err != nil {
		t.Fatalf("get stored key: %v", err)
	}
	if string(got) != string(result) {
		t.Fatalf("result = %s, want %s", got, result)
	}
}

func TestIdempotencyExpiry(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	key := "move:game-1:short-lived"

	if err := c.StoreResult(ctx, key, json.RawMessage(`{}`), 50*time.Millisecond); err != nil {
		t.Fatalf("store result: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	got, err := c.GetResult(ctx, key)
	if err != nil {
		t.Fatalf("get expired key: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil after TTL expiry")
	}
}
