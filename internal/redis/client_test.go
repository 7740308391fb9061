package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestLockLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	key := client.LockKey("match", "lost-1")

	ok, err := client.AcquireLock(ctx, key, "owner-a", time.Second)
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, ok=%v err=%v", ok, err)
	}

	ok, err = client.AcquireLock(ctx, key, "owner-b", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("second owner must not acquire a held lock")
	}

	if err := client.ReleaseLock(ctx, key, "owner-b"); err != nil {
		t.Fatalf("release by stranger failed: %v", err)
	}
	if _, held := mock.data[key]; !held {
		t.Fatalf("stranger must not release the lock")
	}

	if err := client.ReleaseLock(ctx, key, "owner-a"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	ok, _ = client.AcquireLock(ctx, key, "owner-b", time.Second)
	if !ok {
		t.Fatalf("expected lock to be free after release")
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.LockKey("match", "abc"); got != "lf:lock:match:abc" {
		t.Fatalf("unexpected lock key %s", got)
	}
	if got := client.RateLimitPrefix(); got != "lf:rate_limit" {
		t.Fatalf("unexpected limiter prefix %s", got)
	}
}

func TestNilClient(t *testing.T) {
	client := &Client{}
	if _, err := client.AcquireLock(context.Background(), "k", "v", time.Second); err == nil {
		t.Fatalf("expected error for uninitialized client")
	}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected error for uninitialized client")
	}
}

type mockCmdable struct {
	data map[string]string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Eval(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	if len(keys) == 1 && len(args) == 1 && m.data[keys[0]] == fmt.Sprint(args[0]) {
		delete(m.data, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}
