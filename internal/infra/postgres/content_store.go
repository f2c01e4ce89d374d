package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"learnhub-quiz-service/internal/domain"
	"learnhub-quiz-service/internal/grading"
	"learnhub-quiz-service/internal/infra/memory"
)

// ContentStore serves the catalog from JSONB rows and keeps the attempt history.
// It is the production counterpart of memory.ContentStore.
type ContentStore struct {
	pool    *pgxpool.Pool
	scoring domain.ScoringMode
	clock   func() time.Time
}

func NewContentStore(pool *pgxpool.Pool, scoring domain.ScoringMode) *ContentStore {
	return &ContentStore{pool: pool, scoring: scoring, clock: time.Now}
}

func (s *ContentStore) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	return queryAll[domain.Subject](ctx, s.pool, `SELECT data FROM subjects ORDER BY id`)
}

func (s *ContentStore) GetSubject(ctx context.Context, subjectID string) (domain.Subject, error) {
	return queryOne[domain.Subject](ctx, s.pool, domain.ErrSubjectNotFound, `SELECT data FROM subjects WHERE id=$1`, subjectID)
}

func (s *ContentStore) ListMaterials(ctx context.Context, subjectID string) ([]domain.Material, error) {
	return queryAll[domain.Material](ctx, s.pool, `SELECT data FROM materials WHERE subject_id=$1 ORDER BY id`, subjectID)
}

func (s *ContentStore) GetMaterial(ctx context.Context, materialID string) (domain.Material, error) {
	return queryOne[domain.Material](ctx, s.pool, domain.ErrMaterialNotFound, `SELECT data FROM materials WHERE id=$1`, materialID)
}

func (s *ContentStore) ListBooks(ctx context.Context, subjectID string) ([]domain.Book, error) {
	return queryAll[domain.Book](ctx, s.pool, `SELECT data FROM books WHERE subject_id=$1 ORDER BY id`, subjectID)
}

func (s *ContentStore) GetBook(ctx context.Context, bookID string) (domain.Book, error) {
	return queryOne[domain.Book](ctx, s.pool, domain.ErrBookNotFound, `SELECT data FROM books WHERE id=$1`, bookID)
}

func (s *ContentStore) ListQuizzes(ctx context.Context, subjectID string) ([]domain.Quiz, error) {
	return queryAll[domain.Quiz](ctx, s.pool, `SELECT data FROM quizzes WHERE subject_id=$1 ORDER BY id`, subjectID)
}

// LoadQuiz satisfies the quiz repositories' loader.
func (s *ContentStore) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return queryOne[domain.Quiz](ctx, s.pool, domain.ErrQuizNotFound, `SELECT data FROM quizzes WHERE id=$1`, quizID)
}

// Search matches titles, descriptions and book authors case-insensitively.
func (s *ContentStore) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	result := domain.SearchResult{Subjects: []domain.Subject{}, Materials: []domain.Material{}, Books: []domain.Book{}}
	q := strings.TrimSpace(query)
	if q == "" {
		return result, nil
	}
	pattern := "%" + escapeLike(q) + "%"

	var err error
	if result.Subjects, err = queryAll[domain.Subject](ctx, s.pool,
		`SELECT data FROM subjects WHERE data->>'title' ILIKE $1 OR data->>'description' ILIKE $1 ORDER BY id`, pattern); err != nil {
		return domain.SearchResult{}, err
	}
	if result.Materials, err = queryAll[domain.Material](ctx, s.pool,
		`SELECT data FROM materials WHERE data->>'title' ILIKE $1 OR data->>'description' ILIKE $1 ORDER BY id`, pattern); err != nil {
		return domain.SearchResult{}, err
	}
	if result.Books, err = queryAll[domain.Book](ctx, s.pool,
		`SELECT data FROM books WHERE data->>'title' ILIKE $1 OR data->>'author' ILIKE $1 OR data->>'description' ILIKE $1 ORDER BY id`, pattern); err != nil {
		return domain.SearchResult{}, err
	}
	return result, nil
}

func (s *ContentStore) CountAttempts(ctx context.Context, userID, quizID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM quiz_attempts WHERE user_id=$1 AND quiz_id=$2`, userID, quizID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}

// SubmitQuizAnswers re-scores the answers against the stored quiz.
func (s *ContentStore) SubmitQuizAnswers(ctx context.Context, quizID string, answers []domain.Answer) (domain.Result, error) {
	quiz, err := s.LoadQuiz(ctx, quizID)
	if err != nil {
		return domain.Result{}, err
	}
	return grading.Score(quiz, answers, s.scoring, s.clock()), nil
}

// RecordAttempt is idempotent per session.
func (s *ContentStore) RecordAttempt(ctx context.Context, attempt domain.AttemptRecord) error {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	result, err := json.Marshal(attempt.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quiz_attempts (session_id, user_id, quiz_id, score, passed, answers, result, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8, $9)
		ON CONFLICT (session_id) DO NOTHING`,
		attempt.SessionID, attempt.UserID, attempt.QuizID, attempt.Result.ScorePercent, attempt.Result.Passed,
		string(answers), string(result), attempt.StartedAt, attempt.CompletedAt)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// Attempts returns the stored attempts of a user for a quiz, oldest first.
func (s *ContentStore) Attempts(ctx context.Context, userID, quizID string) ([]domain.AttemptRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT session_id, answers, result, started_at, completed_at
		FROM quiz_attempts WHERE user_id=$1 AND quiz_id=$2 ORDER BY id`, userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.AttemptRecord
	for rows.Next() {
		rec := domain.AttemptRecord{UserID: userID, QuizID: quizID}
		var answers, result []byte
		if err := rows.Scan(&rec.SessionID, &answers, &result, &rec.StartedAt, &rec.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if err := json.Unmarshal(answers, &rec.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		if err := json.Unmarshal(result, &rec.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Seed upserts the catalog in one transaction.
func (s *ContentStore) Seed(ctx context.Context, catalog memory.Catalog) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, subject := range catalog.Subjects {
		if err := upsert(ctx, tx, `INSERT INTO subjects (id, data) VALUES ($1, $2::jsonb)
			ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, subject.ID, subject); err != nil {
			return err
		}
	}
	for _, m := range catalog.Materials {
		if err := upsert(ctx, tx, `INSERT INTO materials (id, subject_id, data) VALUES ($1, $3, $2::jsonb)
			ON CONFLICT (id) DO UPDATE SET subject_id=EXCLUDED.subject_id, data=EXCLUDED.data`, m.ID, m, m.SubjectID); err != nil {
			return err
		}
	}
	for _, b := range catalog.Books {
		if err := upsert(ctx, tx, `INSERT INTO books (id, subject_id, data) VALUES ($1, $3, $2::jsonb)
			ON CONFLICT (id) DO UPDATE SET subject_id=EXCLUDED.subject_id, data=EXCLUDED.data`, b.ID, b, b.SubjectID); err != nil {
			return err
		}
	}
	for _, q := range catalog.Quizzes {
		if err := upsert(ctx, tx, `INSERT INTO quizzes (id, subject_id, data) VALUES ($1, $3, $2::jsonb)
			ON CONFLICT (id) DO UPDATE SET subject_id=EXCLUDED.subject_id, data=EXCLUDED.data`, q.ID, q, q.SubjectID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func upsert(ctx context.Context, tx pgx.Tx, sql, id string, doc any, extra ...any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", id, err)
	}
	args := append([]any{id, string(data)}, extra...)
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("seed %s: %w", id, err)
	}
	return nil
}

func queryOne[T any](ctx context.Context, pool *pgxpool.Pool, notFound error, sql string, args ...any) (T, error) {
	var out T
	var raw []byte
	if err := pool.QueryRow(ctx, sql, args...).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return out, notFound
		}
		return out, fmt.Errorf("query: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("unmarshal: %w", err)
	}
	return out, nil
}

func queryAll[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args ...any) ([]T, error) {
	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("unmarshal: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
