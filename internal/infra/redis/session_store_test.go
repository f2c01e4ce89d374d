package redis

import (
	"testing"
	"time"

	"learnhub-quiz-service/internal/app"
	"learnhub-quiz-service/internal/infra/memory"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr := startMiniredis(t)
	store := NewSessionStore(newClient(mr), time.Minute)

	session, err := app.NewSession("s-1", "u1", memory.SampleCatalog().Quizzes[0], app.SessionOptions{})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	store.Save(session)

	if got, ok := store.Get("s-1"); !ok || got != session {
		t.Fatalf("expected session in store")
	}
	marker, err := mr.Get("quiz:session:s-1")
	if err != nil || marker != "u1|1" {
		t.Fatalf("expected liveness marker, got %q err=%v", marker, err)
	}

	store.Delete("s-1")
	if mr.Exists("quiz:session:s-1") {
		t.Fatalf("expected key removed")
	}
	if _, ok := store.Get("s-1"); ok {
		t.Fatalf("expected session removed")
	}
}
