package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return NewRedisStore(NewRedisClient(mr.Addr())), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte(`{"a":1}`), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	data, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(data) != `{"a":1}` {
		t.Fatalf("unexpected payload: %s", data)
	}
}

func TestRedisStoreMiss(t *testing.T) {
	s, _ := newTestRedisStore(t)

	_, ok, err := s.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("miss must not error: %v", err)
	}
	if ok {
		t.Fatal("expected miss")
	}
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	mr.FastForward(61 * time.Second)

	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestCacheOverRedis(t *testing.T) {
	s, _ := newTestRedisStore(t)
	c := New(s)

	calls := 0
	compute := func(context.Context) ([]string, error) {
		calls++
		return []string{"x", "y"}, nil
	}

	for i := 0; i < 2; i++ {
		got, err := GetOrCompute(context.Background(), c, Key("trades", "BTC/USDT", "50"), time.Minute, compute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 || got[0] != "x" {
			t.Fatalf("unexpected value: %v", got)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one compute through redis, got %d", calls)
	}
}
