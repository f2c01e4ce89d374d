package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"learnhub-quiz-service/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewContentStore(SampleCatalog(), domain.ScoreByCount)}
	repo := NewQuizRepository(loader, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	if _, err := repo.GetQuiz(context.Background(), "1"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}
}

func TestQuizRepositoryReloadsAfterExpiry(t *testing.T) {
	now := time.Date(2024, 11, 22, 9, 0, 0, 0, time.UTC)
	loader := &countingLoader{QuizLoader: NewContentStore(SampleCatalog(), domain.ScoreByCount)}
	repo := NewQuizRepositoryWithClock(loader, time.Minute, func() time.Time { return now })

	_, _ = repo.GetQuiz(context.Background(), "1")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetQuiz(context.Background(), "1")

	if loader.count() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.count())
	}
}

func TestQuizRepositoryReturnsIndependentCopies(t *testing.T) {
	repo := NewQuizRepository(NewContentStore(SampleCatalog(), domain.ScoreByCount), time.Minute)

	first, _ := repo.GetQuiz(context.Background(), "1")
	first.Questions[0].Options[0] = "mutated"
	first.Questions[0].Text = "mutated"

	second, _ := repo.GetQuiz(context.Background(), "1")
	if second.Questions[0].Options[0] == "mutated" || second.Questions[0].Text == "mutated" {
		t.Fatalf("cache entry was mutated through a returned quiz")
	}
}

func TestQuizRepositoryPropagatesNotFound(t *testing.T) {
	repo := NewQuizRepository(NewContentStore(SampleCatalog(), domain.ScoreByCount), time.Minute)
	if _, err := repo.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingLoader struct {
	QuizLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}
