package service

import (
	"context"

	"github.com/promptuary/promptuary/internal/search"
)

// SearchLogEntry captures a search request and its outcome.
type SearchLogEntry struct {
	LibraryID   string
	Query       string
	Semantic    bool
	Filters     search.Filters
	ResultCount int
	DurationMs  int64
}

// SearchLogRepositoryInterface persists search logs.
type SearchLogRepositoryInterface interface {
	CreateSearchLog(ctx context.Context, entry SearchLogEntry) (string, error)
}
