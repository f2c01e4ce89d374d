package domain

import "time"

// QuestionKind enumerates supported question formats.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple-choice"
	KindTrueFalse      QuestionKind = "true-false"
	KindEssay          QuestionKind = "essay"
)

// Question models a single quiz item. CorrectAnswer is an option index for
// multiple-choice, 0 (true) or 1 (false) for true-false and free text for essays.
type Question struct {
	ID            string       `json:"id"`
	Text          string       `json:"text"`
	Kind          QuestionKind `json:"type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer AnswerValue  `json:"correctAnswer"`
	Explanation   string       `json:"explanation,omitempty"`
	Points        int          `json:"points"`
}

// Quiz is an ordered collection of questions with attempt and time limits.
type Quiz struct {
	ID               string     `json:"id"`
	SubjectID        string     `json:"subjectId"`
	MaterialID       string     `json:"materialId,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Questions        []Question `json:"questions"`
	TimeLimitMinutes int        `json:"timeLimit"`
	PassingScore     int        `json:"passingScore"`
	Difficulty       string     `json:"difficulty"`
	MaxAttempts      int        `json:"maxAttempts"`
	AttemptsSoFar    int        `json:"attempts"`
}

// Answer is recorded once per question and never changes afterwards.
type Answer struct {
	QuestionID       string      `json:"questionId"`
	Value            AnswerValue `json:"answer"`
	IsCorrect        bool        `json:"isCorrect"`
	TimeSpentSeconds int         `json:"timeSpent"`
}

// ScoringMode selects how a percentage score is derived.
type ScoringMode string

const (
	// ScoreByCount counts correct answers and ignores question points.
	ScoreByCount ScoringMode = "count"
	// ScoreByPoints weighs each question by its points.
	ScoreByPoints ScoringMode = "points"
)

// CompletionReason records which trigger finalized a session.
type CompletionReason string

const (
	ReasonAnswered CompletionReason = "answered"
	ReasonTimeout  CompletionReason = "timeout"
)

// Result summarizes a finished attempt.
type Result struct {
	QuizID         string           `json:"quizId"`
	ScorePercent   int              `json:"score"`
	Passed         bool             `json:"passed"`
	CorrectCount   int              `json:"correctAnswers"`
	TotalQuestions int              `json:"totalQuestions"`
	EarnedPoints   int              `json:"earnedPoints"`
	TotalPoints    int              `json:"totalPoints"`
	Mode           ScoringMode      `json:"mode"`
	Reason         CompletionReason `json:"reason,omitempty"`
	CompletedAt    time.Time        `json:"completedAt"`
}

// SessionState is the lifecycle position of a quiz session.
type SessionState string

const (
	StateNotStarted SessionState = "not_started"
	StateRunning    SessionState = "running"
	StateCompleted  SessionState = "completed"
)

// SessionSnapshot is a read-only view of a quiz session.
type SessionSnapshot struct {
	SessionID          string       `json:"sessionId"`
	UserID             string       `json:"userId"`
	QuizID             string       `json:"quizId"`
	State              SessionState `json:"state"`
	CurrentIndex       int          `json:"currentIndex"`
	TotalQuestions     int          `json:"totalQuestions"`
	RemainingSeconds   int          `json:"remainingSeconds"`
	Answers            []Answer     `json:"answers"`
	Result             *Result      `json:"result,omitempty"`
	StartedAt          time.Time    `json:"startedAt,omitempty"`
	// PreviousCompletion is set when a session is prepared for a quiz the user already finished.
	PreviousCompletion *Completion  `json:"previousCompletion,omitempty"`
}

// AttemptRecord is what gets reported to the content repository after completion.
type AttemptRecord struct {
	SessionID   string    `json:"sessionId"`
	UserID      string    `json:"userId"`
	QuizID      string    `json:"quizId"`
	Answers     []Answer  `json:"answers"`
	Result      Result    `json:"result"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
}

// Completion is the persisted quiz completion flag.
type Completion struct {
	Completed   bool      `json:"completed"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

// ProgressStats counts a user's completions.
type ProgressStats struct {
	Materials int `json:"materialsCount"`
	Quizzes   int `json:"quizzesCount"`
	Books     int `json:"booksCount"`
}
