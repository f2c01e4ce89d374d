package app

import (
	"sync"
	"time"

	"learnhub-quiz-service/internal/domain"
	"learnhub-quiz-service/internal/grading"
)

// Ticker delivers countdown ticks. It exists so tests can drive the countdown by hand.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// CompletionFunc is invoked exactly once when a session completes. The returned
// Result is what later snapshots report (e.g. the server-scored result).
type CompletionFunc func(s *Session, local domain.Result) domain.Result

// SessionOptions configures a quiz session. Zero values fall back to real time,
// one-second ticks and count-based scoring.
type SessionOptions struct {
	Scoring    domain.ScoringMode
	Now        func() time.Time
	TickEvery  time.Duration
	NewTicker  func(time.Duration) Ticker
	OnComplete CompletionFunc
}

// Session drives one quiz attempt: question order, countdown, answers and the final result.
type Session struct {
	id         string
	userID     string
	quiz       domain.Quiz
	scoring    domain.ScoringMode
	now        func() time.Time
	tickEvery  time.Duration
	newTicker  func(time.Duration) Ticker
	onComplete CompletionFunc

	mu          sync.Mutex
	state       domain.SessionState
	index       int
	answers     []domain.Answer
	remaining   int
	startedAt   time.Time
	presentedAt time.Time
	result      *domain.Result
	reported    *domain.Result
	closed      bool
	stop        chan struct{}
	done        chan struct{}
	subscribers map[chan domain.SessionSnapshot]struct{}
}

// NewSession validates the quiz and returns a session in the NotStarted state.
// No session is produced when the quiz is empty or its attempts are used up.
func NewSession(id, userID string, quiz domain.Quiz, opts SessionOptions) (*Session, error) {
	if len(quiz.Questions) == 0 {
		return nil, domain.ErrEmptyQuiz
	}
	if quiz.AttemptsSoFar >= quiz.MaxAttempts {
		return nil, domain.ErrAttemptsExhausted
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TickEvery <= 0 {
		opts.TickEvery = time.Second
	}
	if opts.NewTicker == nil {
		opts.NewTicker = NewTimeTicker
	}

	remaining := 0
	if quiz.TimeLimitMinutes > 0 {
		remaining = quiz.TimeLimitMinutes * 60
	}

	return &Session{
		id:          id,
		userID:      userID,
		quiz:        quiz,
		scoring:     opts.Scoring,
		now:         opts.Now,
		tickEvery:   opts.TickEvery,
		newTicker:   opts.NewTicker,
		onComplete:  opts.OnComplete,
		state:       domain.StateNotStarted,
		remaining:   remaining,
		answers:     make([]domain.Answer, 0, len(quiz.Questions)),
		done:        make(chan struct{}),
		subscribers: make(map[chan domain.SessionSnapshot]struct{}),
	}, nil
}

// StartSession creates and immediately starts a session.
func StartSession(id, userID string, quiz domain.Quiz, opts SessionOptions) (*Session, error) {
	s, err := NewSession(id, userID, quiz, opts)
	if err != nil {
		return nil, err
	}
	if err := s.Start(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) ID() string     { return s.id }
func (s *Session) UserID() string { return s.userID }
func (s *Session) QuizID() string { return s.quiz.ID }

// Quiz returns the quiz the session was created for.
func (s *Session) Quiz() domain.Quiz { return s.quiz }

// Done is closed once the completion has been reported.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Timed reports whether the session runs a countdown once started.
func (s *Session) Timed() bool { return s.quiz.TimeLimitMinutes > 0 }

// LastActivity is when the current question was presented, or zero before start.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presentedAt
}

// Start moves the session to Running and begins the countdown.
// Quizzes without a time limit run untimed.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != domain.StateNotStarted {
		return domain.ErrInvalidState
	}

	now := s.now()
	s.state = domain.StateRunning
	s.startedAt = now
	s.presentedAt = now
	if s.remaining > 0 {
		s.stop = make(chan struct{})
		go s.countdown(s.newTicker(s.tickEvery), s.stop)
	}
	s.broadcastLocked()
	return nil
}

// SubmitAnswer records the answer for the current question and advances.
// Answering the last question finalizes the session.
func (s *Session) SubmitAnswer(value domain.AnswerValue) (domain.Answer, error) {
	if value.IsZero() {
		return domain.Answer{}, domain.ErrNilAnswer
	}

	s.mu.Lock()
	if s.closed || s.state != domain.StateRunning {
		s.mu.Unlock()
		return domain.Answer{}, domain.ErrInvalidState
	}

	now := s.now()
	question := s.quiz.Questions[s.index]
	spent := int(now.Sub(s.presentedAt) / time.Second)
	if spent < 0 {
		spent = 0
	}
	answer := domain.Answer{
		QuestionID:       question.ID,
		Value:            value,
		IsCorrect:        grading.IsCorrect(question, value),
		TimeSpentSeconds: spent,
	}
	s.answers = append(s.answers, answer)
	s.index++

	if s.index < len(s.quiz.Questions) {
		s.presentedAt = now
		s.broadcastLocked()
		s.mu.Unlock()
		return answer, nil
	}

	result, ok := s.finalizeLocked(domain.ReasonAnswered)
	s.mu.Unlock()
	if ok {
		s.report(result)
	}
	return answer, nil
}

// Close discards the session: the countdown stops and subscribers are released.
// A discarded session never finalizes.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopCountdownLocked()
	s.closeSubscribersLocked()
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// LocalResult is the result computed by the session itself, before any reporting.
func (s *Session) LocalResult() (domain.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.Result{}, false
	}
	return *s.result, true
}

// Answers returns a copy of the recorded answers.
func (s *Session) Answers() []domain.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Answer(nil), s.answers...)
}

// StartedAt is zero until the session starts.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// Subscribe returns a channel of snapshots. The first value is the current state.
// Slow readers only ever see the latest snapshot. The caller must invoke cancel.
func (s *Session) Subscribe() (<-chan domain.SessionSnapshot, func()) {
	ch := make(chan domain.SessionSnapshot, 8)

	s.mu.Lock()
	initial := s.snapshotLocked()
	finished := s.closed || s.reported != nil
	if !finished {
		s.subscribers[ch] = struct{}{}
	}
	ch <- initial
	if finished {
		close(ch)
	}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) countdown(t Ticker, stop <-chan struct{}) {
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			if !s.tick() {
				return
			}
		}
	}
}

// tick decrements the remaining time and finalizes on expiry. It reports whether
// the countdown should keep running.
func (s *Session) tick() bool {
	s.mu.Lock()
	if s.closed || s.state != domain.StateRunning {
		s.mu.Unlock()
		return false
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining > 0 {
		s.broadcastLocked()
		s.mu.Unlock()
		return true
	}

	result, ok := s.finalizeLocked(domain.ReasonTimeout)
	s.mu.Unlock()
	if ok {
		s.report(result)
	}
	return false
}

// finalizeLocked performs the Running -> Completed transition. Only the first
// caller wins; later callers get ok == false.
func (s *Session) finalizeLocked(reason domain.CompletionReason) (domain.Result, bool) {
	if s.state != domain.StateRunning {
		return domain.Result{}, false
	}
	result := grading.Score(s.quiz, s.answers, s.scoring, s.now())
	result.Reason = reason
	s.state = domain.StateCompleted
	s.result = &result
	s.stopCountdownLocked()
	s.broadcastLocked()
	return result, true
}

// report runs the completion callback outside the lock, then publishes the final
// snapshot and closes subscribers.
func (s *Session) report(local domain.Result) {
	reported := local
	if s.onComplete != nil {
		reported = s.onComplete(s, local)
	}

	s.mu.Lock()
	s.reported = &reported
	if !s.closed {
		s.broadcastLocked()
		s.closeSubscribersLocked()
	}
	s.mu.Unlock()
	close(s.done)
}

func (s *Session) stopCountdownLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *Session) closeSubscribersLocked() {
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) broadcastLocked() {
	snapshot := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func (s *Session) snapshotLocked() domain.SessionSnapshot {
	snapshot := domain.SessionSnapshot{
		SessionID:        s.id,
		UserID:           s.userID,
		QuizID:           s.quiz.ID,
		State:            s.state,
		CurrentIndex:     s.index,
		TotalQuestions:   len(s.quiz.Questions),
		RemainingSeconds: s.remaining,
		Answers:          append([]domain.Answer(nil), s.answers...),
		StartedAt:        s.startedAt,
	}
	switch {
	case s.reported != nil:
		r := *s.reported
		snapshot.Result = &r
	case s.result != nil:
		r := *s.result
		snapshot.Result = &r
	}
	return snapshot
}
