package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryPutGetRoundTrip(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v, want miss", ok, err)
	}

	if err := store.Put(ctx, "k", []byte("value"), time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	value, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v, want hit", ok, err)
	}
	if string(value) != "value" {
		t.Fatalf("value = %q, want %q", value, "value")
	}
}

func TestMemoryEntriesExpire(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := NewMemory(WithMemoryClock(func() time.Time { return now }))
	ctx := context.Background()

	if err := store.Put(ctx, "k", []byte("value"), time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	now = now.Add(59 * time.Second)
	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatalf("entry expired early")
	}

	now = now.Add(2 * time.Second)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatalf("entry survived past its TTL")
	}
}

func TestMemoryPutReplacesWholesale(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	_ = store.Put(ctx, "k", []byte("old"), time.Minute)
	_ = store.Put(ctx, "k", []byte("new"), time.Minute)

	value, ok, _ := store.Get(ctx, "k")
	if !ok || string(value) != "new" {
		t.Fatalf("value = %q ok=%v, want replaced entry", value, ok)
	}
}

func TestMemoryIncrementCountsAndResets(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := NewMemory(WithMemoryClock(func() time.Time { return now }))
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := store.Increment(ctx, "counter", time.Minute)
		if err != nil {
			t.Fatalf("increment failed: %v", err)
		}
		if got != want {
			t.Fatalf("counter = %d, want %d", got, want)
		}
	}

	// Window lapse resets the counter on next touch.
	now = now.Add(61 * time.Second)
	got, err := store.Increment(ctx, "counter", time.Minute)
	if err != nil {
		t.Fatalf("post-window increment failed: %v", err)
	}
	if got != 1 {
		t.Fatalf("counter after window = %d, want 1", got)
	}
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := NewMemory(WithMemoryClock(func() time.Time { return now }))
	ctx := context.Background()

	_ = store.Put(ctx, "k", []byte("forever"), 0)

	now = now.Add(24 * time.Hour)
	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatalf("zero-ttl entry expired")
	}
}
