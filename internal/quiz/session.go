package quiz

import (
	"errors"
	"time"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

// DefaultTimeLimit is the time budget for a quiz.
const DefaultTimeLimit = 30 * time.Minute

var (
	// ErrSessionFinished is returned when answering after completion.
	ErrSessionFinished = errors.New("quiz session already finished")
	// ErrInvalidOption is returned when an answer is not one of the question's options.
	ErrInvalidOption = errors.New("answer is not one of the options")
	// ErrNoQuestion is returned when the session has no current question.
	ErrNoQuestion = errors.New("no current question")
)

// Session is a quiz in progress. Operations return a new Session and leave
// the receiver untouched.
type Session struct {
	Email     string
	Questions []model.ProcessedQuestion
	Current   int
	TimeLimit time.Duration
	Remaining time.Duration
	StartedAt time.Time
	Finished  bool
}

// NewSession starts a session on the first question.
func NewSession(email string, questions []model.ProcessedQuestion, limit time.Duration, now time.Time) Session {
	if limit <= 0 {
		limit = DefaultTimeLimit
	}
	s := Session{
		Email:     email,
		Questions: cloneQuestions(questions),
		TimeLimit: limit,
		Remaining: limit,
		StartedAt: now,
	}
	if len(s.Questions) > 0 {
		s.Questions[0].IsVisited = true
	}
	return s
}

// Goto moves to question index i and marks it visited. Out-of-range is a no-op.
func (s Session) Goto(i int) Session {
	if i < 0 || i >= len(s.Questions) {
		return s
	}
	next := s.clone()
	next.Current = i
	next.Questions[i].IsVisited = true
	return next
}

// Next moves to the following question.
func (s Session) Next() Session {
	return s.Goto(s.Current + 1)
}

// Prev moves to the preceding question.
func (s Session) Prev() Session {
	return s.Goto(s.Current - 1)
}

// Answer records option as the answer to the current question.
func (s Session) Answer(option string) (Session, error) {
	if s.Finished {
		return s, ErrSessionFinished
	}
	q, ok := s.CurrentQuestion()
	if !ok {
		return s, ErrNoQuestion
	}
	if !containsOption(q.Options, option) {
		return s, ErrInvalidOption
	}
	next := s.clone()
	answer := option
	next.Questions[s.Current].UserAnswer = &answer
	next.Questions[s.Current].IsAnswered = true
	next.Questions[s.Current].IsVisited = true
	return next, nil
}

// Tick subtracts d from the remaining time and reports whether time is up.
func (s Session) Tick(d time.Duration) (Session, bool) {
	if s.Finished {
		return s, s.Remaining <= 0
	}
	next := s
	next.Remaining -= d
	if next.Remaining < 0 {
		next.Remaining = 0
	}
	return next, next.Remaining == 0
}

// Finish marks the session complete.
func (s Session) Finish() Session {
	next := s
	next.Finished = true
	return next
}

// CurrentQuestion returns the question being displayed.
func (s Session) CurrentQuestion() (model.ProcessedQuestion, bool) {
	if s.Current < 0 || s.Current >= len(s.Questions) {
		return model.ProcessedQuestion{}, false
	}
	return s.Questions[s.Current], true
}

// AnsweredCount returns the number of answered questions.
func (s Session) AnsweredCount() int {
	n := 0
	for _, q := range s.Questions {
		if q.IsAnswered {
			n++
		}
	}
	return n
}

// Elapsed returns the time used so far, clamped at zero.
func (s Session) Elapsed() time.Duration {
	d := s.TimeLimit - s.Remaining
	if d < 0 {
		return 0
	}
	return d
}

func (s Session) clone() Session {
	next := s
	next.Questions = cloneQuestions(s.Questions)
	return next
}

func cloneQuestions(qs []model.ProcessedQuestion) []model.ProcessedQuestion {
	if qs == nil {
		return nil
	}
	out := make([]model.ProcessedQuestion, len(qs))
	copy(out, qs)
	return out
}

func containsOption(options []string, option string) bool {
	for _, o := range options {
		if o == option {
			return true
		}
	}
	return false
}
