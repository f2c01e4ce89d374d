package http

import "learnhub-quiz-service/internal/domain"

// questionView hides the correct answer and explanation from players.
type questionView struct {
	ID      string              `json:"id"`
	Text    string              `json:"text"`
	Kind    domain.QuestionKind `json:"type"`
	Options []string            `json:"options,omitempty"`
	Points  int                 `json:"points"`
}

type quizView struct {
	ID               string             `json:"id"`
	SubjectID        string             `json:"subjectId"`
	MaterialID       string             `json:"materialId,omitempty"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	TimeLimitMinutes int                `json:"timeLimit"`
	PassingScore     int                `json:"passingScore"`
	Difficulty       string             `json:"difficulty"`
	MaxAttempts      int                `json:"maxAttempts"`
	QuestionCount    int                `json:"questionCount"`
	Questions        []questionView     `json:"questions,omitempty"`
	Completion       *domain.Completion `json:"completion,omitempty"`
}

// reviewItem is revealed only once a session is completed.
type reviewItem struct {
	QuestionID    string             `json:"questionId"`
	CorrectAnswer domain.AnswerValue `json:"correctAnswer"`
	Explanation   string             `json:"explanation,omitempty"`
}

type sessionView struct {
	domain.SessionSnapshot
	Question *questionView `json:"question,omitempty"`
	Review   []reviewItem  `json:"review,omitempty"`
}

func newQuestionView(q domain.Question) questionView {
	return questionView{ID: q.ID, Text: q.Text, Kind: q.Kind, Options: q.Options, Points: q.Points}
}

func newQuizView(q domain.Quiz, withQuestions bool) quizView {
	v := quizView{
		ID:               q.ID,
		SubjectID:        q.SubjectID,
		MaterialID:       q.MaterialID,
		Title:            q.Title,
		Description:      q.Description,
		TimeLimitMinutes: q.TimeLimitMinutes,
		PassingScore:     q.PassingScore,
		Difficulty:       q.Difficulty,
		MaxAttempts:      q.MaxAttempts,
		QuestionCount:    len(q.Questions),
	}
	if withQuestions {
		v.Questions = make([]questionView, len(q.Questions))
		for i, question := range q.Questions {
			v.Questions[i] = newQuestionView(question)
		}
	}
	return v
}

func newQuizViews(quizzes []domain.Quiz) []quizView {
	out := make([]quizView, len(quizzes))
	for i, q := range quizzes {
		out[i] = newQuizView(q, false)
	}
	return out
}

// newSessionView attaches the current question while running and the answer
// key after completion.
func newSessionView(snapshot domain.SessionSnapshot, quiz domain.Quiz) sessionView {
	v := sessionView{SessionSnapshot: snapshot}
	switch snapshot.State {
	case domain.StateRunning:
		if snapshot.CurrentIndex < len(quiz.Questions) {
			q := newQuestionView(quiz.Questions[snapshot.CurrentIndex])
			v.Question = &q
		}
	case domain.StateCompleted:
		v.Review = make([]reviewItem, len(quiz.Questions))
		for i, q := range quiz.Questions {
			v.Review[i] = reviewItem{QuestionID: q.ID, CorrectAnswer: q.CorrectAnswer, Explanation: q.Explanation}
		}
	}
	return v
}
