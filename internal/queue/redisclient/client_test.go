package redisclient

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping redis integration test")
	}
	c := New(Config{Addr: addr})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_PushPopFIFO(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()
	key := "test:queue:" + uuid.NewString()

	if err := c.Push(ctx, key, []byte("first")); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := c.Push(ctx, key, []byte("second")); err != nil {
		t.Fatalf("push: %v", err)
	}

	n, err := c.Len(ctx, key)
	if err != nil || n != 2 {
		t.Fatalf("expected len 2, got %d (%v)", n, err)
	}

	got, err := c.Pop(ctx, key, time.Second)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if string(got) != "first" {
		t.Fatalf("expected first, got %q", got)
	}
}

func TestClient_PopTimesOut(t *testing.T) {
	c := testClient(t)

	_, err := c.Pop(context.Background(), "test:queue:"+uuid.NewString(), time.Second)
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}
