package memory

import (
	"context"
	"errors"
	"testing"

	"learnhub-quiz-service/internal/domain"
)

func TestContentStoreSearchIsCaseInsensitive(t *testing.T) {
	store := NewContentStore(SampleCatalog(), domain.ScoreByCount)

	res, err := store.Search(context.Background(), "  GRAMMAR ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Subjects) != 1 || res.Subjects[0].ID != "2" {
		t.Fatalf("expected Indonesian subject, got %+v", res.Subjects)
	}
	if len(res.Materials) != 1 || res.Materials[0].ID != "3" {
		t.Fatalf("expected grammar material, got %+v", res.Materials)
	}
	if len(res.Books) != 1 || res.Books[0].ID != "2" {
		t.Fatalf("expected grammar book, got %+v", res.Books)
	}

	res, _ = store.Search(context.Background(), "susanto")
	if len(res.Books) != 1 || res.Books[0].ID != "1" {
		t.Fatalf("expected author match, got %+v", res.Books)
	}
}

func TestContentStoreScoresAndCountsAttempts(t *testing.T) {
	ctx := context.Background()
	store := NewContentStore(SampleCatalog(), domain.ScoreByCount)

	res, err := store.SubmitQuizAnswers(ctx, "1", []domain.Answer{
		{QuestionID: "1", Value: domain.IndexAnswer(2)},
		{QuestionID: "2", Value: domain.IndexAnswer(1)},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.ScorePercent != 50 || res.Passed || res.TotalQuestions != 2 {
		t.Fatalf("unexpected result %+v", res)
	}

	if err := store.RecordAttempt(ctx, domain.AttemptRecord{UserID: "u1", QuizID: "1", Result: res}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if n, _ := store.CountAttempts(ctx, "u1", "1"); n != 1 {
		t.Fatalf("expected one attempt, got %d", n)
	}
	if n, _ := store.CountAttempts(ctx, "u2", "1"); n != 0 {
		t.Fatalf("attempts must be per user, got %d", n)
	}

	if _, err := store.SubmitQuizAnswers(ctx, "missing", nil); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}
