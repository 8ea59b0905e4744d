// Package search holds the pure pieces of the prompt search path: filter
// normalization, cache keys, the bounded FIFO result cache, and local
// relevance ranking. Nothing here performs I/O; the search service wires
// these around the repository and the embedding client.
package search

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SortMode selects the ordering applied to search results.
type SortMode string

const (
	SortRelevance  SortMode = "relevance"
	SortUsageCount SortMode = "usage_count"
	SortCreatedAt  SortMode = "created_at"
)

// ParseSortMode validates a sort mode string. Empty input defaults to
// relevance ordering.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(strings.TrimSpace(strings.ToLower(s))) {
	case "":
		return SortRelevance, nil
	case SortRelevance:
		return SortRelevance, nil
	case SortUsageCount, "usage":
		return SortUsageCount, nil
	case SortCreatedAt, "created":
		return SortCreatedAt, nil
	default:
		return "", fmt.Errorf("invalid sort mode: %q", s)
	}
}

// Filters narrows a search. Zero values mean "no constraint".
type Filters struct {
	CategoryID    string
	Author        string
	Tags          []string
	MinUsageCount *int64
	MaxUsageCount *int64
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Sort          SortMode
}

// Canonical serializes the filter set into a stable string: fixed field
// order, tags deduplicated and sorted (set semantics), times in RFC 3339,
// absent fields empty. Equal filter sets always serialize identically.
func (f Filters) Canonical() string {
	tags := normalizeTags(f.Tags)

	var b strings.Builder
	fmt.Fprintf(&b, "category=%s", f.CategoryID)
	fmt.Fprintf(&b, "|author=%s", f.Author)
	fmt.Fprintf(&b, "|tags=%s", strings.Join(tags, ","))
	fmt.Fprintf(&b, "|min_usage=%s", formatBound(f.MinUsageCount))
	fmt.Fprintf(&b, "|max_usage=%s", formatBound(f.MaxUsageCount))
	fmt.Fprintf(&b, "|created_after=%s", formatTime(f.CreatedAfter))
	fmt.Fprintf(&b, "|created_before=%s", formatTime(f.CreatedBefore))
	fmt.Fprintf(&b, "|sort=%s", f.Sort)
	return b.String()
}

// normalizeTags lowercases, deduplicates, and sorts a tag list.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func formatBound(v *int64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
