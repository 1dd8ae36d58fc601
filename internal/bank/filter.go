package bank

import (
	"math/rand"
	"strings"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

// FilterFunc returns true when a question should be kept.
type FilterFunc func(model.RawQuestion) bool

// FilterForDifficulty keeps questions of the given difficulty; empty keeps all.
func FilterForDifficulty(difficulty string) FilterFunc {
	difficulty = strings.ToLower(strings.TrimSpace(difficulty))
	if difficulty == "" {
		return func(model.RawQuestion) bool { return true }
	}
	return func(q model.RawQuestion) bool {
		return strings.EqualFold(q.Difficulty, difficulty)
	}
}

// FilterForType keeps questions of the given type ("multiple", "boolean"); empty keeps all.
func FilterForType(kind string) FilterFunc {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		return func(model.RawQuestion) bool { return true }
	}
	return func(q model.RawQuestion) bool {
		return strings.EqualFold(q.Type, kind)
	}
}

// All keeps questions accepted by every filter.
func All(filters ...FilterFunc) FilterFunc {
	return func(q model.RawQuestion) bool {
		for _, keep := range filters {
			if keep != nil && !keep(q) {
				return false
			}
		}
		return true
	}
}

// Select filters questions and draws up to amount of them without replacement.
func Select(rnd *rand.Rand, questions []model.RawQuestion, amount int, keep FilterFunc) []model.RawQuestion {
	pool := make([]model.RawQuestion, 0, len(questions))
	for _, q := range questions {
		if keep == nil || keep(q) {
			pool = append(pool, q)
		}
	}
	rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if amount > 0 && amount < len(pool) {
		pool = pool[:amount]
	}
	return pool
}
