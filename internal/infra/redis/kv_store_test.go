package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"learnhub-quiz-service/internal/domain"
)

func TestKVStoreSetGetKeys(t *testing.T) {
	mr := startMiniredis(t)
	store := NewKVStore(newClient(mr))
	ctx := context.Background()

	for _, key := range []string{"progress:u1:quiz:1", "progress:u1:material:2", "progress:u2:quiz:1"} {
		if err := store.Set(ctx, key, []byte("true"), 0); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	raw, err := store.Get(ctx, "progress:u1:quiz:1")
	if err != nil || string(raw) != "true" {
		t.Fatalf("unexpected value %q err=%v", raw, err)
	}
	if _, err := store.Get(ctx, "progress:u1:book:9"); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected key not found, got %v", err)
	}

	keys, err := store.Keys(ctx, "progress:u1:")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "progress:u1:material:2" || keys[1] != "progress:u1:quiz:1" {
		t.Fatalf("unexpected keys %v", keys)
	}

	if err := store.Delete(ctx, "progress:u1:quiz:1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("progress:u1:quiz:1") {
		t.Fatalf("expected key deleted")
	}
}

func TestKVStoreHonoursTTL(t *testing.T) {
	mr := startMiniredis(t)
	store := NewKVStore(newClient(mr))
	ctx := context.Background()

	_ = store.Set(ctx, "autologin:u1", []byte("{}"), time.Minute)
	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, "autologin:u1"); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected expired key, got %v", err)
	}
}
