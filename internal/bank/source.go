package bank

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/trivia"
)

// Source serves quizzes drawn from a loaded question bank.
type Source struct {
	mu        sync.Mutex
	rnd       *rand.Rand
	questions []model.RawQuestion
}

// NewSource returns a Source over questions. A nil rnd is seeded from the clock.
func NewSource(questions []model.RawQuestion, rnd *rand.Rand) *Source {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Source{rnd: rnd, questions: questions}
}

// FetchQuestions draws up to params.Amount questions matching difficulty and type.
// Categories are numeric upstream ids and are not applied to a local bank.
func (s *Source) FetchQuestions(ctx context.Context, params trivia.Params) ([]model.RawQuestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	amount := params.Amount
	if amount <= 0 {
		amount = trivia.DefaultAmount
	}
	s.mu.Lock()
	picked := Select(s.rnd, s.questions, amount, All(FilterForDifficulty(params.Difficulty), FilterForType(params.Type)))
	s.mu.Unlock()
	if len(picked) == 0 {
		return nil, fmt.Errorf("no questions in bank match difficulty %q and type %q", params.Difficulty, params.Type)
	}
	return picked, nil
}
