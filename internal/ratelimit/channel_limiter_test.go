package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, burst int, refill float64) (*ChannelLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewChannelLimiter(client, burst, refill, time.Minute), mr
}

func TestAllow_ConsumesBurstThenDenies(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3, 0) // no refill: budget is exactly the burst
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "email")
		if err != nil {
			t.Fatalf("Allow #%d: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("Allow #%d should be granted within burst", i+1)
		}
	}

	ok, err := limiter.Allow(ctx, "email")
	if err != nil {
		t.Fatalf("Allow after exhaustion: %v", err)
	}
	if ok {
		t.Error("bucket exhausted, Allow should deny")
	}
}

func TestAllow_ChannelsHaveSeparateBuckets(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, 0)
	ctx := context.Background()

	if ok, _ := limiter.Allow(ctx, "email"); !ok {
		t.Fatal("first email send should be granted")
	}
	if ok, _ := limiter.Allow(ctx, "email"); ok {
		t.Error("email bucket exhausted, should deny")
	}
	if ok, _ := limiter.Allow(ctx, "whatsapp"); !ok {
		t.Error("whatsapp bucket is independent, should still grant")
	}
}

func TestAllow_RefillsOverTime(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, 1000) // 1000 tokens/s so a few ms refills fully
	ctx := context.Background()

	if ok, _ := limiter.Allow(ctx, "email"); !ok {
		t.Fatal("first send should be granted")
	}
	time.Sleep(5 * time.Millisecond)
	if ok, _ := limiter.Allow(ctx, "email"); !ok {
		t.Error("bucket should have refilled")
	}
}

func TestAllow_RedisDownReturnsError(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1, 0)
	mr.Close()

	ok, err := limiter.Allow(context.Background(), "email")
	if err == nil {
		t.Fatal("expected error when redis is unreachable")
	}
	if ok {
		t.Error("must not grant on error")
	}
}
