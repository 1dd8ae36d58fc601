package quiz

import (
	"time"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

// NotAnswered marks a question the user skipped. The NUL byte keeps it from
// matching any decoded answer text.
const NotAnswered = "\x00not answered"

// Score aggregates a finished session into a results summary.
func Score(s Session, now time.Time) model.ResultsSummary {
	results := make([]model.QuestionResult, 0, len(s.Questions))
	correct, unanswered := 0, 0
	for _, q := range s.Questions {
		userAnswer := NotAnswered
		if q.UserAnswer != nil {
			userAnswer = *q.UserAnswer
		}
		isCorrect := q.UserAnswer != nil && *q.UserAnswer == q.CorrectAnswer
		if isCorrect {
			correct++
		}
		if userAnswer == NotAnswered {
			unanswered++
		}
		results = append(results, model.QuestionResult{
			QuestionID:    q.ID,
			Question:      q.Question,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
			Category:      q.Category,
			Difficulty:    q.Difficulty,
		})
	}
	total := len(results)
	return model.ResultsSummary{
		Email:               s.Email,
		Score:               Percentage(correct, total-unanswered),
		TotalQuestions:      total,
		CorrectAnswers:      correct,
		IncorrectAnswers:    total - correct - unanswered,
		UnansweredQuestions: unanswered,
		TimeTaken:           s.Elapsed(),
		TimeLimit:           s.TimeLimit,
		CompletedAt:         now,
		Results:             results,
	}
}

// Percentage returns round-half-up(100*part/whole), or 0 when whole is 0.
func Percentage(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}
