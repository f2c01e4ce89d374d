package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"learnhub-quiz-service/internal/domain"
	"learnhub-quiz-service/internal/grading"
)

// Catalog is the full set of learning content a ContentStore serves.
type Catalog struct {
	Subjects  []domain.Subject
	Materials []domain.Material
	Books     []domain.Book
	Quizzes   []domain.Quiz
}

// ContentStore is a mock content backend: catalog reads, quiz loading, server-side
// scoring and attempt bookkeeping, all held in memory.
type ContentStore struct {
	catalog Catalog
	scoring domain.ScoringMode
	clock   func() time.Time

	mu       sync.RWMutex
	counts   map[string]int
	attempts []domain.AttemptRecord
}

func NewContentStore(catalog Catalog, scoring domain.ScoringMode) *ContentStore {
	return &ContentStore{
		catalog: catalog,
		scoring: scoring,
		clock:   time.Now,
		counts:  make(map[string]int),
	}
}

func (s *ContentStore) ListSubjects(_ context.Context) ([]domain.Subject, error) {
	return append([]domain.Subject{}, s.catalog.Subjects...), nil
}

func (s *ContentStore) GetSubject(_ context.Context, subjectID string) (domain.Subject, error) {
	for _, subject := range s.catalog.Subjects {
		if subject.ID == subjectID {
			return subject, nil
		}
	}
	return domain.Subject{}, domain.ErrSubjectNotFound
}

func (s *ContentStore) ListMaterials(_ context.Context, subjectID string) ([]domain.Material, error) {
	materials := []domain.Material{}
	for _, m := range s.catalog.Materials {
		if m.SubjectID == subjectID {
			materials = append(materials, m)
		}
	}
	return materials, nil
}

func (s *ContentStore) GetMaterial(_ context.Context, materialID string) (domain.Material, error) {
	for _, m := range s.catalog.Materials {
		if m.ID == materialID {
			return m, nil
		}
	}
	return domain.Material{}, domain.ErrMaterialNotFound
}

func (s *ContentStore) ListBooks(_ context.Context, subjectID string) ([]domain.Book, error) {
	books := []domain.Book{}
	for _, b := range s.catalog.Books {
		if b.SubjectID == subjectID {
			books = append(books, b)
		}
	}
	return books, nil
}

func (s *ContentStore) GetBook(_ context.Context, bookID string) (domain.Book, error) {
	for _, b := range s.catalog.Books {
		if b.ID == bookID {
			return b, nil
		}
	}
	return domain.Book{}, domain.ErrBookNotFound
}

func (s *ContentStore) ListQuizzes(_ context.Context, subjectID string) ([]domain.Quiz, error) {
	quizzes := []domain.Quiz{}
	for _, q := range s.catalog.Quizzes {
		if q.SubjectID == subjectID {
			quizzes = append(quizzes, q)
		}
	}
	return quizzes, nil
}

// LoadQuiz satisfies QuizLoader.
func (s *ContentStore) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	quiz, ok := s.quiz(quizID)
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *ContentStore) Search(_ context.Context, query string) (domain.SearchResult, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	result := domain.SearchResult{Subjects: []domain.Subject{}, Materials: []domain.Material{}, Books: []domain.Book{}}
	if q == "" {
		return result, nil
	}
	for _, subject := range s.catalog.Subjects {
		if containsAny(q, subject.Title, subject.Description) {
			result.Subjects = append(result.Subjects, subject)
		}
	}
	for _, m := range s.catalog.Materials {
		if containsAny(q, m.Title, m.Description) {
			result.Materials = append(result.Materials, m)
		}
	}
	for _, b := range s.catalog.Books {
		if containsAny(q, b.Title, b.Author, b.Description) {
			result.Books = append(result.Books, b)
		}
	}
	return result, nil
}

func (s *ContentStore) CountAttempts(_ context.Context, userID, quizID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[attemptKey(userID, quizID)], nil
}

// SubmitQuizAnswers is the scoring authority: correctness is re-derived from the stored quiz.
func (s *ContentStore) SubmitQuizAnswers(_ context.Context, quizID string, answers []domain.Answer) (domain.Result, error) {
	quiz, ok := s.quiz(quizID)
	if !ok {
		return domain.Result{}, domain.ErrQuizNotFound
	}
	return grading.Score(quiz, answers, s.scoring, s.clock()), nil
}

func (s *ContentStore) RecordAttempt(_ context.Context, attempt domain.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[attemptKey(attempt.UserID, attempt.QuizID)]++
	s.attempts = append(s.attempts, attempt)
	return nil
}

// Attempts returns the recorded attempts of a user for a quiz, oldest first.
func (s *ContentStore) Attempts(userID, quizID string) []domain.AttemptRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.AttemptRecord
	for _, a := range s.attempts {
		if a.UserID == userID && a.QuizID == quizID {
			out = append(out, a)
		}
	}
	return out
}

func (s *ContentStore) quiz(quizID string) (domain.Quiz, bool) {
	for _, q := range s.catalog.Quizzes {
		if q.ID == quizID {
			return q, true
		}
	}
	return domain.Quiz{}, false
}

func attemptKey(userID, quizID string) string {
	return userID + "|" + quizID
}

func containsAny(query string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}
