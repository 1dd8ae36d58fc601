package stats

import (
	"context"

	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/store"
)

// Report contains precomputed data for history rendering.
type Report struct {
	Attempts       []model.AttemptAggregate
	CategoryAggs   []model.CategoryAggregate
	WeakCategories []string
	TopCategories  []string
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.HistoryConfig) (Report, error) {
	attempts, err := st.ListAttempts(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	aggs, err := st.ListCategoryAggregates(ctx, AttemptIDs(attempts))
	if err != nil {
		return Report{}, err
	}
	return Report{
		Attempts:       attempts,
		CategoryAggs:   aggs,
		WeakCategories: SelectWeakCategories(aggs, 3),
		TopCategories:  TopCategoriesByVolume(aggs, 3),
	}, nil
}

// AttemptIDs returns the ids of attempts in order.
func AttemptIDs(attempts []model.AttemptAggregate) []string {
	ids := make([]string, len(attempts))
	for i, a := range attempts {
		ids[i] = a.AttemptID
	}
	return ids
}
