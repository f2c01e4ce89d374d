package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"learnhub-quiz-service/internal/domain"
)

// SessionRepository abstracts where live quiz sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Save(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// AttemptRepository is the server side of an attempt: attempt counting, the
// authoritative scoring and attempt history.
type AttemptRepository interface {
	CountAttempts(ctx context.Context, userID, quizID string) (int, error)
	SubmitQuizAnswers(ctx context.Context, quizID string, answers []domain.Answer) (domain.Result, error)
	RecordAttempt(ctx context.Context, attempt domain.AttemptRecord) error
}

// QuizServiceOptions tunes session creation and completion reporting.
type QuizServiceOptions struct {
	Scoring       domain.ScoringMode
	TickEvery     time.Duration
	ReportTimeout time.Duration
	Retention     time.Duration
	// IdleTimeout evicts sessions that were never started, and untimed
	// sessions without an answer for that long.
	IdleTimeout   time.Duration
	Now           func() time.Time
	NewTicker     func(time.Duration) Ticker
	AfterFunc     func(time.Duration, func())
}

// QuizService contains the quiz-taking use cases.
type QuizService struct {
	sessions SessionRepository
	quizzes  QuizRepository
	attempts AttemptRepository
	progress *ProgressService
	opts     QuizServiceOptions

	// open holds the sessions of each user and quiz that still count as an attempt
	// but are not recorded yet.
	mu   sync.Mutex
	open map[string]map[string]struct{}
}

func NewQuizService(sessions SessionRepository, quizzes QuizRepository, attempts AttemptRepository, progress *ProgressService, opts QuizServiceOptions) *QuizService {
	if opts.ReportTimeout <= 0 {
		opts.ReportTimeout = 10 * time.Second
	}
	if opts.Retention <= 0 {
		opts.Retention = 10 * time.Minute
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Minute
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &QuizService{
		sessions: sessions,
		quizzes:  quizzes,
		attempts: attempts,
		progress: progress,
		opts:     opts,
		open:     make(map[string]map[string]struct{}),
	}
}

// Prepare loads the quiz for the user and creates a NotStarted session. Open
// sessions count against MaxAttempts together with the recorded ones.
func (s *QuizService) Prepare(ctx context.Context, userID, quizID string) (domain.SessionSnapshot, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}

	// completions record and release under the same lock
	s.mu.Lock()
	recorded, err := s.attempts.CountAttempts(ctx, userID, quizID)
	if err != nil {
		s.mu.Unlock()
		return domain.SessionSnapshot{}, fmt.Errorf("count attempts: %w", err)
	}
	key := openKey(userID, quizID)
	used := recorded + len(s.open[key])
	quiz.AttemptsSoFar = used

	session, err := NewSession(uuid.NewString(), userID, quiz, SessionOptions{
		Scoring:    s.opts.Scoring,
		Now:        s.opts.Now,
		TickEvery:  s.opts.TickEvery,
		NewTicker:  s.opts.NewTicker,
		OnComplete: s.complete,
	})
	if err != nil {
		s.mu.Unlock()
		return domain.SessionSnapshot{}, err
	}
	if s.open[key] == nil {
		s.open[key] = make(map[string]struct{})
	}
	s.open[key][session.ID()] = struct{}{}
	s.mu.Unlock()

	s.sessions.Save(session)
	s.scheduleIdleCheck(session.ID(), s.opts.IdleTimeout)

	log.Info().
		Str("session_id", session.ID()).
		Str("user_id", userID).
		Str("quiz_id", quizID).
		Int("attempts", used).
		Msg("quiz session prepared")

	snapshot := session.Snapshot()
	completion, ok, err := s.progress.QuizCompletion(ctx, userID, quizID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("quiz_id", quizID).Msg("previous completion unavailable")
	} else if ok {
		snapshot.PreviousCompletion = &completion
	}
	return snapshot, nil
}

// StartQuiz prepares and starts a session in one step.
func (s *QuizService) StartQuiz(ctx context.Context, userID, quizID string) (domain.SessionSnapshot, error) {
	snapshot, err := s.Prepare(ctx, userID, quizID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	return s.Start(ctx, userID, snapshot.SessionID)
}

// Start begins the countdown of a prepared session.
func (s *QuizService) Start(_ context.Context, userID, sessionID string) (domain.SessionSnapshot, error) {
	session, err := s.owned(userID, sessionID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	if err := session.Start(); err != nil {
		return domain.SessionSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// SubmitAnswer records the answer to the current question. When it completes the
// quiz, the returned snapshot already carries the reported result.
func (s *QuizService) SubmitAnswer(_ context.Context, userID, sessionID string, value domain.AnswerValue) (domain.SessionSnapshot, error) {
	session, err := s.owned(userID, sessionID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	if _, err := session.SubmitAnswer(value); err != nil {
		return domain.SessionSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// Snapshot returns the current state of a session.
func (s *QuizService) Snapshot(_ context.Context, userID, sessionID string) (domain.SessionSnapshot, error) {
	session, err := s.owned(userID, sessionID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// Session exposes the live session, e.g. for its quiz content.
func (s *QuizService) Session(userID, sessionID string) (*Session, error) {
	return s.owned(userID, sessionID)
}

// Subscribe returns a channel that receives session snapshots until completion.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, userID, sessionID string) (<-chan domain.SessionSnapshot, func(), error) {
	session, err := s.owned(userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Discard stops the session's countdown and forgets it.
func (s *QuizService) Discard(_ context.Context, userID, sessionID string) error {
	session, err := s.owned(userID, sessionID)
	if err != nil {
		return err
	}
	session.Close()
	s.sessions.Delete(sessionID)
	s.release(session)
	return nil
}

// scheduleIdleCheck evicts the session after the delay if it was never started,
// or if it runs untimed and saw no answer within IdleTimeout. Timed sessions
// finish on their own countdown.
func (s *QuizService) scheduleIdleCheck(sessionID string, after time.Duration) {
	s.opts.AfterFunc(after, func() {
		session, ok := s.sessions.Get(sessionID)
		if !ok {
			return
		}
		switch session.State() {
		case domain.StateNotStarted:
		case domain.StateRunning:
			if session.Timed() {
				return
			}
			idle := s.opts.Now().Sub(session.LastActivity())
			if idle < s.opts.IdleTimeout {
				s.scheduleIdleCheck(sessionID, s.opts.IdleTimeout-idle)
				return
			}
		default:
			return
		}
		session.Close()
		s.sessions.Delete(sessionID)
		s.release(session)
		log.Info().
			Str("session_id", sessionID).
			Str("user_id", session.UserID()).
			Msg("idle quiz session evicted")
	})
}

// release stops counting the session as an open attempt.
func (s *QuizService) release(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked(session)
}

func (s *QuizService) releaseLocked(session *Session) {
	key := openKey(session.UserID(), session.QuizID())
	delete(s.open[key], session.ID())
	if len(s.open[key]) == 0 {
		delete(s.open, key)
	}
}

func openKey(userID, quizID string) string {
	return userID + "|" + quizID
}

func (s *QuizService) owned(userID, sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok || session.UserID() != userID {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// complete runs once per session after it finalizes. The server-scored result
// wins when available; persistence failures are logged and never hide the result.
func (s *QuizService) complete(session *Session, local domain.Result) domain.Result {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ReportTimeout)
	defer cancel()

	logger := log.With().
		Str("session_id", session.ID()).
		Str("user_id", session.UserID()).
		Str("quiz_id", session.QuizID()).
		Logger()

	answers := session.Answers()
	result := local
	remote, err := s.attempts.SubmitQuizAnswers(ctx, session.QuizID(), answers)
	if err != nil {
		logger.Warn().Err(err).Msg("server scoring unavailable, using local result")
	} else {
		remote.Reason = local.Reason
		if remote.CompletedAt.IsZero() {
			remote.CompletedAt = local.CompletedAt
		}
		result = remote
	}

	record := domain.AttemptRecord{
		SessionID:   session.ID(),
		UserID:      session.UserID(),
		QuizID:      session.QuizID(),
		Answers:     answers,
		Result:      result,
		StartedAt:   session.StartedAt(),
		CompletedAt: result.CompletedAt,
	}
	// recording and releasing together keep Prepare's count exact
	s.mu.Lock()
	err = s.attempts.RecordAttempt(ctx, record)
	s.releaseLocked(session)
	s.mu.Unlock()
	if err != nil {
		logger.Error().Err(fmt.Errorf("%w: record attempt: %v", domain.ErrPersistence, err)).Msg("attempt not recorded")
	}
	if err := s.progress.MarkQuizCompleted(ctx, session.UserID(), session.QuizID(), result.ScorePercent, result.CompletedAt); err != nil {
		logger.Error().Err(err).Msg("completion not persisted")
	}

	logger.Info().
		Int("score", result.ScorePercent).
		Bool("passed", result.Passed).
		Str("reason", string(result.Reason)).
		Msg("quiz session completed")

	// completed sessions stay readable for a while, then go
	id := session.ID()
	s.opts.AfterFunc(s.opts.Retention, func() { s.sessions.Delete(id) })
	return result
}
