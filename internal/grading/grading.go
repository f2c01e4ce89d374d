// Package grading decides answer correctness and turns recorded answers into a Result.
package grading

import (
	"time"

	"learnhub-quiz-service/internal/domain"
)

// IsCorrect compares a submitted value to the question's correct answer.
// Essay questions are never auto-correct; they are left to manual grading.
func IsCorrect(q domain.Question, value domain.AnswerValue) bool {
	if q.Kind == domain.KindEssay || value.IsZero() {
		return false
	}
	return value.Equal(q.CorrectAnswer)
}

// Points returns the question weight, defaulting to 1 when unset.
func Points(q domain.Question) int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// Score builds a Result from the answers recorded so far. Questions without an
// answer count as incorrect. Correctness is re-derived from the quiz content so a
// caller-provided IsCorrect flag is never trusted.
func Score(quiz domain.Quiz, answers []domain.Answer, mode domain.ScoringMode, completedAt time.Time) domain.Result {
	byID := make(map[string]domain.AnswerValue, len(answers))
	for _, a := range answers {
		if _, seen := byID[a.QuestionID]; !seen {
			byID[a.QuestionID] = a.Value
		}
	}

	res := domain.Result{
		QuizID:         quiz.ID,
		TotalQuestions: len(quiz.Questions),
		Mode:           normalizeMode(mode),
		CompletedAt:    completedAt,
	}
	for _, q := range quiz.Questions {
		pts := Points(q)
		res.TotalPoints += pts
		value, ok := byID[q.ID]
		if ok && IsCorrect(q, value) {
			res.CorrectCount++
			res.EarnedPoints += pts
		}
	}

	if res.Mode == domain.ScoreByPoints {
		res.ScorePercent = Percent(res.EarnedPoints, res.TotalPoints)
	} else {
		res.ScorePercent = Percent(res.CorrectCount, res.TotalQuestions)
	}
	res.Passed = res.ScorePercent >= quiz.PassingScore
	return res
}

// Percent rounds 100*part/total half-up using integer arithmetic.
func Percent(part, total int) int {
	if total <= 0 || part <= 0 {
		return 0
	}
	if part > total {
		part = total
	}
	return (200*part + total) / (2 * total)
}

func normalizeMode(mode domain.ScoringMode) domain.ScoringMode {
	if mode == domain.ScoreByPoints {
		return mode
	}
	return domain.ScoreByCount
}
