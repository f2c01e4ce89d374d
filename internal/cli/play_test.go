package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"learnhub-quiz-service/internal/config"
	"learnhub-quiz-service/internal/domain"
)

func TestPlayQuizInTerminal(t *testing.T) {
	ctx := context.Background()
	svc, err := buildServices(ctx, config.Config{})
	if err != nil {
		t.Fatalf("build services: %v", err)
	}
	defer svc.Close()

	var out bytes.Buffer
	input := strings.NewReader("9\n3\nmaybe\nt\n")
	if err := playQuiz(ctx, svc.quizzes, "local", "1", input, &out); err != nil {
		t.Fatalf("play: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "pick a number between 1 and 4") || !strings.Contains(text, "answer t or f") {
		t.Fatalf("expected input validation messages, got:\n%s", text)
	}
	if !strings.Contains(text, "score 100% (2/2 correct), passed") {
		t.Fatalf("expected passing score, got:\n%s", text)
	}

	stats, err := svc.progress.Stats(ctx, "local")
	if err != nil || stats.Quizzes != 1 {
		t.Fatalf("expected completion recorded, got %+v err=%v", stats, err)
	}
}

func TestParseAnswer(t *testing.T) {
	mc := domain.Question{Kind: domain.KindMultipleChoice, Options: []string{"a", "b"}}
	if v, err := parseAnswer(mc, " 2 "); err != nil || !v.Equal(domain.IndexAnswer(1)) {
		t.Fatalf("expected index 1, got %v err=%v", v, err)
	}
	if _, err := parseAnswer(mc, "0"); err == nil {
		t.Fatalf("expected out of range error")
	}

	tf := domain.Question{Kind: domain.KindTrueFalse}
	if v, _ := parseAnswer(tf, "False"); !v.Equal(domain.IndexAnswer(1)) {
		t.Fatalf("expected false to map to index 1, got %v", v)
	}

	essay := domain.Question{Kind: domain.KindEssay}
	if v, _ := parseAnswer(essay, "  photosynthesis "); !v.Equal(domain.TextAnswer("photosynthesis")) {
		t.Fatalf("expected trimmed text answer, got %v", v)
	}
	if _, err := parseAnswer(essay, "   "); err == nil {
		t.Fatalf("expected empty essay answer rejected")
	}
}
