package grading

import (
	"testing"
	"time"

	"learnhub-quiz-service/internal/domain"
)

func TestScoreExamples(t *testing.T) {
	quiz := twoQuestionQuiz()
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)

	res := Score(quiz, []domain.Answer{
		{QuestionID: "q1", Value: domain.IndexAnswer(2)},
		{QuestionID: "q2", Value: domain.IndexAnswer(1)},
	}, domain.ScoreByCount, now)
	if res.CorrectCount != 1 || res.ScorePercent != 50 || res.Passed {
		t.Fatalf("expected 1/2 correct, 50%%, failed; got %+v", res)
	}

	res = Score(quiz, []domain.Answer{
		{QuestionID: "q1", Value: domain.IndexAnswer(2)},
		{QuestionID: "q2", Value: domain.IndexAnswer(0)},
	}, domain.ScoreByCount, now)
	if res.CorrectCount != 2 || res.ScorePercent != 100 || !res.Passed {
		t.Fatalf("expected 2/2 correct, 100%%, passed; got %+v", res)
	}
	if !res.CompletedAt.Equal(now) {
		t.Fatalf("expected completedAt to be carried, got %v", res.CompletedAt)
	}
}

func TestScorePassesExactlyAtBoundary(t *testing.T) {
	quiz := twoQuestionQuiz()
	quiz.PassingScore = 50

	res := Score(quiz, []domain.Answer{{QuestionID: "q1", Value: domain.IndexAnswer(2)}}, domain.ScoreByCount, time.Now())
	if res.ScorePercent != 50 || !res.Passed {
		t.Fatalf("expected boundary score to pass, got %+v", res)
	}
}

func TestScoreUnansweredCountAsIncorrect(t *testing.T) {
	res := Score(twoQuestionQuiz(), nil, domain.ScoreByCount, time.Now())
	if res.CorrectCount != 0 || res.ScorePercent != 0 || res.TotalQuestions != 2 {
		t.Fatalf("expected zero score over 2 questions, got %+v", res)
	}
}

func TestScoreIgnoresCallerCorrectnessFlag(t *testing.T) {
	res := Score(twoQuestionQuiz(), []domain.Answer{
		{QuestionID: "q1", Value: domain.IndexAnswer(0), IsCorrect: true},
	}, domain.ScoreByCount, time.Now())
	if res.CorrectCount != 0 {
		t.Fatalf("expected regraded answer to be incorrect, got %+v", res)
	}
}

func TestScoreByPointsWeighsQuestions(t *testing.T) {
	quiz := twoQuestionQuiz()
	quiz.Questions[0].Points = 30
	quiz.Questions[1].Points = 10

	answers := []domain.Answer{{QuestionID: "q1", Value: domain.IndexAnswer(2)}}
	byCount := Score(quiz, answers, domain.ScoreByCount, time.Now())
	byPoints := Score(quiz, answers, domain.ScoreByPoints, time.Now())

	if byCount.ScorePercent != 50 {
		t.Fatalf("count mode should ignore points, got %d", byCount.ScorePercent)
	}
	if byPoints.ScorePercent != 75 || byPoints.EarnedPoints != 30 || byPoints.TotalPoints != 40 {
		t.Fatalf("points mode should weigh by points, got %+v", byPoints)
	}
	if !byPoints.Passed {
		t.Fatalf("75%% should pass a 70%% quiz")
	}
}

func TestPercentRoundsHalfUp(t *testing.T) {
	cases := []struct{ part, total, want int }{
		{1, 8, 13},
		{1, 3, 33},
		{2, 3, 67},
		{0, 5, 0},
		{5, 5, 100},
		{1, 0, 0},
	}
	for _, c := range cases {
		if got := Percent(c.part, c.total); got != c.want {
			t.Fatalf("Percent(%d, %d) = %d, want %d", c.part, c.total, got, c.want)
		}
	}
}

func TestIsCorrectRules(t *testing.T) {
	essay := domain.Question{ID: "e", Kind: domain.KindEssay, CorrectAnswer: domain.TextAnswer("photosynthesis")}
	if IsCorrect(essay, domain.TextAnswer("photosynthesis")) {
		t.Fatalf("essay answers must never auto-grade as correct")
	}

	mc := domain.Question{ID: "m", Kind: domain.KindMultipleChoice, CorrectAnswer: domain.IndexAnswer(2)}
	if IsCorrect(mc, domain.TextAnswer("2")) {
		t.Fatalf("text must not equal an index")
	}
	if IsCorrect(mc, domain.AnswerValue{}) {
		t.Fatalf("missing value must be incorrect")
	}
	if !IsCorrect(mc, domain.IndexAnswer(2)) {
		t.Fatalf("expected matching index to be correct")
	}
}

func twoQuestionQuiz() domain.Quiz {
	return domain.Quiz{
		ID:           "quiz-1",
		PassingScore: 70,
		MaxAttempts:  3,
		Questions: []domain.Question{
			{ID: "q1", Kind: domain.KindMultipleChoice, Options: []string{"6", "7", "8", "9"}, CorrectAnswer: domain.IndexAnswer(2), Points: 10},
			{ID: "q2", Kind: domain.KindTrueFalse, CorrectAnswer: domain.IndexAnswer(0), Points: 10},
		},
	}
}
