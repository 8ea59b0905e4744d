package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/promptuary/promptuary/internal/service"
)

// SearchLogRepository stores search traces for ranking evaluation.
type SearchLogRepository struct {
	pool *pgxpool.Pool
}

func NewSearchLogRepository(pool *pgxpool.Pool) *SearchLogRepository {
	return &SearchLogRepository{pool: pool}
}

func (r *SearchLogRepository) CreateSearchLog(ctx context.Context, entry service.SearchLogEntry) (string, error) {
	filters := map[string]any{}
	filters["query_length"] = len(entry.Query)
	if entry.Filters.CategoryID != "" {
		filters["category_id"] = entry.Filters.CategoryID
	}
	if entry.Filters.Author != "" {
		filters["author"] = entry.Filters.Author
	}
	if len(entry.Filters.Tags) > 0 {
		filters["tags"] = entry.Filters.Tags
	}
	if entry.Filters.Sort != "" {
		filters["sort"] = string(entry.Filters.Sort)
	}

	filtersJSON, _ := json.Marshal(filters)

	var id string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO search_logs (library_id, query, semantic, filters, result_count, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		entry.LibraryID,
		entry.Query,
		entry.Semantic,
		filtersJSON,
		entry.ResultCount,
		entry.DurationMs,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
