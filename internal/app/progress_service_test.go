package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"learnhub-quiz-service/internal/app"
	"learnhub-quiz-service/internal/domain"
	"learnhub-quiz-service/internal/infra/memory"
)

func TestMarkQuizCompletedRetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{KVStore: memory.NewKVStore(), failures: 2}
	progress := app.NewProgressServiceWithClock(store, time.Now)

	completedAt := time.Date(2024, 11, 22, 9, 30, 0, 0, time.UTC)
	if err := progress.MarkQuizCompleted(ctx, "u1", "1", 80, completedAt); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if store.attempts() != 3 {
		t.Fatalf("expected 3 writes, got %d", store.attempts())
	}
	c, ok, err := progress.QuizCompletion(ctx, "u1", "1")
	if err != nil || !ok {
		t.Fatalf("expected completion, ok=%v err=%v", ok, err)
	}
	if c.Score != 80 || !c.CompletedAt.Equal(completedAt) {
		t.Fatalf("unexpected completion %+v", c)
	}
}

func TestMarkQuizCompletedGivesUpWithPersistenceError(t *testing.T) {
	store := &flakyStore{KVStore: memory.NewKVStore(), failures: 100}
	progress := app.NewProgressServiceWithClock(store, time.Now)

	err := progress.MarkQuizCompleted(context.Background(), "u1", "1", 80, time.Time{})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if store.attempts() != 4 {
		t.Fatalf("expected initial write plus 3 retries, got %d", store.attempts())
	}
}

func TestProgressStatsAndClear(t *testing.T) {
	ctx := context.Background()
	progress := app.NewProgressService(memory.NewKVStore())

	_ = progress.MarkQuizCompleted(ctx, "u1", "1", 100, time.Now())
	_ = progress.MarkQuizCompleted(ctx, "u1", "2", 40, time.Now())
	_ = progress.MarkMaterialCompleted(ctx, "u1", "1")
	_ = progress.MarkBookDownloaded(ctx, "u1", "1")
	_ = progress.MarkBookDownloaded(ctx, "u1", "2")
	_ = progress.MarkMaterialCompleted(ctx, "u2", "1")

	stats, err := progress.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats != (domain.ProgressStats{Materials: 1, Quizzes: 2, Books: 2}) {
		t.Fatalf("unexpected stats %+v", stats)
	}

	if done, _ := progress.IsMaterialCompleted(ctx, "u1", "1"); !done {
		t.Fatalf("expected material completed")
	}
	if done, _ := progress.IsMaterialCompleted(ctx, "u1", "2"); done {
		t.Fatalf("material 2 was never completed")
	}

	if err := progress.Clear(ctx, "u1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	stats, _ = progress.Stats(ctx, "u1")
	if stats != (domain.ProgressStats{}) {
		t.Fatalf("expected empty stats after clear, got %+v", stats)
	}
	if done, _ := progress.IsMaterialCompleted(ctx, "u2", "1"); !done {
		t.Fatalf("clear must not touch other users")
	}
}

type flakyStore struct {
	*memory.KVStore
	mu       sync.Mutex
	failures int
	writes   int
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	f.writes++
	fail := f.writes <= f.failures
	f.mu.Unlock()
	if fail {
		return errors.New("store unavailable")
	}
	return f.KVStore.Set(ctx, key, value, ttl)
}

func (f *flakyStore) attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}
