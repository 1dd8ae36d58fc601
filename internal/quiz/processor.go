package quiz

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

// Processor decodes raw questions and shuffles their options.
type Processor struct {
	rnd *rand.Rand
}

// New returns a Processor seeded with the current time.
func New() *Processor {
	return NewProcessor(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewProcessor returns a Processor drawing from rnd.
func NewProcessor(rnd *rand.Rand) *Processor {
	return &Processor{rnd: rnd}
}

// Process converts raw questions into processed ones, keeping their order.
func (p *Processor) Process(raw []model.RawQuestion) []model.ProcessedQuestion {
	out := make([]model.ProcessedQuestion, 0, len(raw))
	for i, rq := range raw {
		correct := DecodeEntities(rq.CorrectAnswer)
		options := make([]string, 0, 1+len(rq.IncorrectAnswers))
		options = append(options, correct)
		for _, ans := range rq.IncorrectAnswers {
			options = append(options, DecodeEntities(ans))
		}
		p.shuffle(options)
		out = append(out, model.ProcessedQuestion{
			ID:            i + 1,
			Category:      DecodeEntities(rq.Category),
			Difficulty:    rq.Difficulty,
			Question:      DecodeEntities(rq.Question),
			CorrectAnswer: correct,
			Options:       options,
		})
	}
	return out
}

// Fisher-Yates.
func (p *Processor) shuffle(options []string) {
	for i := len(options) - 1; i > 0; i-- {
		j := p.rnd.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
	}
}

// Process converts raw questions using a time-seeded Processor.
func Process(raw []model.RawQuestion) []model.ProcessedQuestion {
	return New().Process(raw)
}
