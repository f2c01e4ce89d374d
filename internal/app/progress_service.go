package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"learnhub-quiz-service/internal/domain"
)

// KeyValueStore is the persistent key-value collaborator (in-memory, Redis, SQLite).
// Get returns domain.ErrKeyNotFound for missing or expired keys. A zero ttl never expires.
type KeyValueStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

const (
	progressQuiz     = "quiz"
	progressMaterial = "material"
	progressBook     = "book"
)

// ProgressService tracks quiz completions, finished materials and downloaded books per user.
type ProgressService struct {
	store   KeyValueStore
	now     func() time.Time
	backoff func() backoff.BackOff
}

func NewProgressService(store KeyValueStore) *ProgressService {
	return &ProgressService{
		store: store,
		now:   time.Now,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxElapsedTime = 5 * time.Second
			return backoff.WithMaxRetries(b, 3)
		},
	}
}

// NewProgressServiceWithClock is test-only for deterministic timestamps and immediate retries.
func NewProgressServiceWithClock(store KeyValueStore, now func() time.Time) *ProgressService {
	p := NewProgressService(store)
	p.now = now
	p.backoff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3)
	}
	return p
}

// MarkQuizCompleted stores the completion record, retrying transient store failures.
func (p *ProgressService) MarkQuizCompleted(ctx context.Context, userID, quizID string, score int, completedAt time.Time) error {
	if completedAt.IsZero() {
		completedAt = p.now()
	}
	raw, err := json.Marshal(domain.Completion{Completed: true, Score: score, CompletedAt: completedAt.UTC()})
	if err != nil {
		return err
	}
	key := progressKey(userID, progressQuiz, quizID)
	op := func() error {
		return p.store.Set(ctx, key, raw, 0)
	}
	if err := backoff.Retry(op, backoff.WithContext(p.backoff(), ctx)); err != nil {
		return fmt.Errorf("%w: quiz completion %s: %v", domain.ErrPersistence, quizID, err)
	}
	return nil
}

// QuizCompletion returns the stored completion, if any.
func (p *ProgressService) QuizCompletion(ctx context.Context, userID, quizID string) (domain.Completion, bool, error) {
	raw, err := p.store.Get(ctx, progressKey(userID, progressQuiz, quizID))
	if errors.Is(err, domain.ErrKeyNotFound) {
		return domain.Completion{}, false, nil
	}
	if err != nil {
		return domain.Completion{}, false, err
	}
	var c domain.Completion
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Completion{}, false, fmt.Errorf("decode completion: %w", err)
	}
	return c, c.Completed, nil
}

func (p *ProgressService) MarkMaterialCompleted(ctx context.Context, userID, materialID string) error {
	return p.setFlag(ctx, progressKey(userID, progressMaterial, materialID))
}

func (p *ProgressService) IsMaterialCompleted(ctx context.Context, userID, materialID string) (bool, error) {
	return p.flag(ctx, progressKey(userID, progressMaterial, materialID))
}

func (p *ProgressService) MarkBookDownloaded(ctx context.Context, userID, bookID string) error {
	return p.setFlag(ctx, progressKey(userID, progressBook, bookID))
}

func (p *ProgressService) IsBookDownloaded(ctx context.Context, userID, bookID string) (bool, error) {
	return p.flag(ctx, progressKey(userID, progressBook, bookID))
}

// Stats counts a user's completed quizzes and materials and downloaded books.
func (p *ProgressService) Stats(ctx context.Context, userID string) (domain.ProgressStats, error) {
	keys, err := p.store.Keys(ctx, progressPrefix(userID))
	if err != nil {
		return domain.ProgressStats{}, err
	}
	var stats domain.ProgressStats
	for _, key := range keys {
		kind := strings.SplitN(strings.TrimPrefix(key, progressPrefix(userID)), ":", 2)[0]
		switch kind {
		case progressQuiz:
			quizID := strings.TrimPrefix(key, progressPrefix(userID)+progressQuiz+":")
			if _, ok, err := p.QuizCompletion(ctx, userID, quizID); err == nil && ok {
				stats.Quizzes++
			}
		case progressMaterial:
			stats.Materials++
		case progressBook:
			stats.Books++
		}
	}
	return stats, nil
}

// Clear removes every progress record of the user.
func (p *ProgressService) Clear(ctx context.Context, userID string) error {
	keys, err := p.store.Keys(ctx, progressPrefix(userID))
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := p.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (p *ProgressService) setFlag(ctx context.Context, key string) error {
	return p.store.Set(ctx, key, []byte("true"), 0)
}

func (p *ProgressService) flag(ctx context.Context, key string) (bool, error) {
	_, err := p.store.Get(ctx, key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func progressPrefix(userID string) string {
	return "progress:" + userID + ":"
}

func progressKey(userID, kind, id string) string {
	return progressPrefix(userID) + kind + ":" + id
}
