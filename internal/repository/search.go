package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/promptuary/promptuary/internal/search"
	"github.com/promptuary/promptuary/internal/service"
)

// SearchRepository runs the database-side halves of prompt search: ILIKE
// matching for lexical queries and pgvector cosine similarity for semantic
// ones. Scoring and ordering happen in the search package, so both queries
// only narrow the candidate set.
type SearchRepository struct {
	db dbtx
}

func NewSearchRepository(pool *pgxpool.Pool) *SearchRepository {
	return &SearchRepository{db: pool}
}

func (r *SearchRepository) SearchPrompts(ctx context.Context, libraryID, query string, filters search.Filters, limit int) ([]search.Result, error) {
	if limit <= 0 {
		limit = service.DefaultSearchLimit
	}

	var sb strings.Builder
	sb.WriteString(`SELECT p.id, p.title, p.description, p.content, p.tags,
		       COALESCE(c.name, ''), p.usage_count, p.created_at
		FROM prompts p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.library_id = $1 AND p.is_active
		  AND (p.title ILIKE $2 OR p.description ILIKE $2 OR p.content ILIKE $2)`)

	args := []any{libraryID, "%" + query + "%"}
	args = appendFilterClauses(&sb, args, filters)

	fmt.Fprintf(&sb, " LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []search.Result
	for rows.Next() {
		var res search.Result
		if err := rows.Scan(&res.ID, &res.Title, &res.Description, &res.Content,
			&res.Tags, &res.Category, &res.UsageCount, &res.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *SearchRepository) SearchByEmbedding(ctx context.Context, libraryID string, embedding []float32, minSimilarity float64, limit int) ([]service.SemanticHit, error) {
	if limit <= 0 {
		limit = service.DefaultSearchLimit
	}

	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.title, p.description, p.content, p.tags,
		        COALESCE(c.name, ''), p.usage_count, p.created_at,
		        1 - (p.embedding <=> $1) AS similarity
		 FROM prompts p
		 LEFT JOIN categories c ON c.id = p.category_id
		 WHERE p.library_id = $2 AND p.is_active AND p.embedding IS NOT NULL
		   AND 1 - (p.embedding <=> $1) >= $3
		 ORDER BY similarity DESC
		 LIMIT $4`,
		pgvector.NewVector(embedding), libraryID, minSimilarity, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []service.SemanticHit
	for rows.Next() {
		var hit service.SemanticHit
		if err := rows.Scan(&hit.Result.ID, &hit.Result.Title, &hit.Result.Description,
			&hit.Result.Content, &hit.Result.Tags, &hit.Result.Category,
			&hit.Result.UsageCount, &hit.Result.CreatedAt, &hit.Similarity); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// appendFilterClauses translates a filter set into AND clauses, numbering
// placeholders after the args already collected.
func appendFilterClauses(sb *strings.Builder, args []any, f search.Filters) []any {
	if f.CategoryID != "" {
		fmt.Fprintf(sb, " AND p.category_id = $%d", len(args)+1)
		args = append(args, f.CategoryID)
	}
	if f.Author != "" {
		fmt.Fprintf(sb, " AND p.author = $%d", len(args)+1)
		args = append(args, f.Author)
	}
	if len(f.Tags) > 0 {
		fmt.Fprintf(sb, " AND p.tags @> $%d", len(args)+1)
		args = append(args, f.Tags)
	}
	if f.MinUsageCount != nil {
		fmt.Fprintf(sb, " AND p.usage_count >= $%d", len(args)+1)
		args = append(args, *f.MinUsageCount)
	}
	if f.MaxUsageCount != nil {
		fmt.Fprintf(sb, " AND p.usage_count <= $%d", len(args)+1)
		args = append(args, *f.MaxUsageCount)
	}
	if f.CreatedAfter != nil {
		fmt.Fprintf(sb, " AND p.created_at >= $%d", len(args)+1)
		args = append(args, *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		fmt.Fprintf(sb, " AND p.created_at <= $%d", len(args)+1)
		args = append(args, *f.CreatedBefore)
	}
	return args
}
