package search

import (
	"sort"
	"strings"
	"time"
)

// Relevance weights for the three substring checks.
const (
	titleWeight       = 3
	descriptionWeight = 2
	contentWeight     = 1
)

// Result is one search hit as returned to clients and memoized by the
// cache.
type Result struct {
	ID          string
	Title       string
	Description string
	Content     string
	Tags        []string
	Category    string
	UsageCount  int64
	CreatedAt   time.Time
	Snippet     string
	Score       int
}

// Score computes the relevance of a result for a query: 3 for a title
// match, 2 for a description match, 1 for a content match, each a
// case-insensitive substring check. A blank query scores zero.
func Score(r Result, query string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	score := 0
	if strings.Contains(strings.ToLower(r.Title), q) {
		score += titleWeight
	}
	if strings.Contains(strings.ToLower(r.Description), q) {
		score += descriptionWeight
	}
	if strings.Contains(strings.ToLower(r.Content), q) {
		score += contentWeight
	}
	return score
}

// Rank orders results by descending relevance score for the query. The sort
// is stable: equal scores keep their input order on every invocation. The
// input slice is not modified.
func Rank(results []Result, query string) []Result {
	out := make([]Result, len(results))
	copy(out, results)
	for i := range out {
		out[i].Score = Score(out[i], query)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Order applies the requested sort mode. Relevance ranks by score; the
// usage-count and creation-date modes bypass scoring entirely. All modes
// are stable.
func Order(results []Result, query string, mode SortMode) []Result {
	switch mode {
	case SortUsageCount:
		out := make([]Result, len(results))
		copy(out, results)
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].UsageCount > out[j].UsageCount
		})
		return out
	case SortCreatedAt:
		out := make([]Result, len(results))
		copy(out, results)
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
		return out
	default:
		return Rank(results, query)
	}
}
