package stats

import (
	"sort"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

// SelectWeakCategories returns the lowest-accuracy categories, weakest first.
func SelectWeakCategories(aggs []model.CategoryAggregate, top int) []string {
	if len(aggs) == 0 {
		return nil
	}
	candidates := make([]model.CategoryAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Correct+agg.Incorrect > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai := categoryAccuracy(candidates[i])
		aj := categoryAccuracy(candidates[j])
		if ai == aj {
			return candidates[i].Category < candidates[j].Category
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]string, 0, top)
	for i := 0; i < top; i++ {
		out = append(out, candidates[i].Category)
	}
	return out
}

// Unanswered questions do not count against accuracy.
func categoryAccuracy(agg model.CategoryAggregate) float64 {
	answered := agg.Correct + agg.Incorrect
	if answered == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(answered)
}
