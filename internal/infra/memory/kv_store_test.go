package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"learnhub-quiz-service/internal/domain"
)

func TestKVStoreRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 11, 22, 9, 0, 0, 0, time.UTC)
	store := NewKVStoreWithClock(func() time.Time { return now })

	if err := store.Set(ctx, "progress:u1:quiz:1", []byte(`{"completed":true}`), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "progress:u1:book:1", []byte("true"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "progress:u2:book:1", []byte("true"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	raw, err := store.Get(ctx, "progress:u1:quiz:1")
	if err != nil || string(raw) != `{"completed":true}` {
		t.Fatalf("unexpected value %q err=%v", raw, err)
	}

	keys, _ := store.Keys(ctx, "progress:u1:")
	if len(keys) != 2 || keys[0] != "progress:u1:book:1" {
		t.Fatalf("unexpected keys %v", keys)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "progress:u1:book:1"); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected expired key to be missing, got %v", err)
	}

	_ = store.Delete(ctx, "progress:u1:quiz:1")
	if keys, _ := store.Keys(ctx, "progress:u1:"); len(keys) != 0 {
		t.Fatalf("expected no keys left, got %v", keys)
	}
}
