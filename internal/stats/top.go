package stats

import (
	"sort"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

// TopCategoriesByVolume returns the top N categories by questions seen.
func TopCategoriesByVolume(aggs []model.CategoryAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	type item struct {
		category string
		total    int
	}
	items := make([]item, 0, len(aggs))
	for _, agg := range aggs {
		items = append(items, item{
			category: agg.Category,
			total:    agg.Correct + agg.Incorrect + agg.Unanswered,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].total == items[j].total {
			return items[i].category < items[j].category
		}
		return items[i].total > items[j].total
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, items[i].category)
	}
	return out
}
