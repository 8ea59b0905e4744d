package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/pagination"
	"github.com/promptuary/promptuary/internal/service"
)

const promptColumns = `id, library_id, title, description, content, category_id, tags, author,
	is_favorite, usage_count, last_used_at, is_active, current_version, created_at, updated_at`

type PromptRepository struct {
	db dbtx
}

func NewPromptRepository(pool *pgxpool.Pool) *PromptRepository {
	return &PromptRepository{db: pool}
}

func NewPromptRepositoryWithTx(tx pgx.Tx) *PromptRepository {
	return &PromptRepository{db: tx}
}

func (r *PromptRepository) Create(ctx context.Context, p *domain.Prompt) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO prompts (id, library_id, title, description, content, category_id, tags, author,
		                      is_favorite, usage_count, is_active, current_version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.LibraryID, p.Title, p.Description, p.Content, p.CategoryID, p.Tags, p.Author,
		p.IsFavorite, p.UsageCount, p.IsActive, p.CurrentVersion, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *PromptRepository) GetByID(ctx context.Context, id string) (*domain.Prompt, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+promptColumns+` FROM prompts WHERE id = $1`,
		id,
	)
	p, err := scanPrompt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPromptNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PromptRepository) ListWithCursor(ctx context.Context, libraryID string, cursor *pagination.Cursor, limit int) (*service.PromptPageResult, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+promptColumns+`
			 FROM prompts
			 WHERE library_id = $1 AND is_active AND (updated_at, id) < ($2, $3)
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $4`,
			libraryID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+promptColumns+`
			 FROM prompts
			 WHERE library_id = $1 AND is_active
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $2`,
			libraryID, limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanPromptRows(rows)
	if err != nil {
		return nil, err
	}

	items, hasMore := pagination.Trim(items, limit)

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.UpdatedAt)
	}

	return &service.PromptPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *PromptRepository) ListFavorites(ctx context.Context, libraryID string) ([]*domain.Prompt, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+promptColumns+`
		 FROM prompts
		 WHERE library_id = $1 AND is_active AND is_favorite
		 ORDER BY updated_at DESC`,
		libraryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPromptRows(rows)
}

// ListAllPrompts returns every active prompt in a library, used by exports.
func (r *PromptRepository) ListAllPrompts(ctx context.Context, libraryID string) ([]*domain.Prompt, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+promptColumns+`
		 FROM prompts
		 WHERE library_id = $1 AND is_active
		 ORDER BY created_at ASC`,
		libraryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPromptRows(rows)
}

func (r *PromptRepository) Update(ctx context.Context, p *domain.Prompt) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE prompts
		 SET title = $1, description = $2, content = $3, category_id = $4, tags = $5,
		     current_version = $6, updated_at = $7
		 WHERE id = $8`,
		p.Title, p.Description, p.Content, p.CategoryID, p.Tags,
		p.CurrentVersion, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPromptNotFound
	}
	return nil
}

// SoftDelete clears is_active, keeping versions and audit rows pointing at
// a resolvable row.
func (r *PromptRepository) SoftDelete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE prompts SET is_active = FALSE, updated_at = $1 WHERE id = $2 AND is_active`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPromptNotFound
	}
	return nil
}

func (r *PromptRepository) SetFavorite(ctx context.Context, id string, favorite bool) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE prompts SET is_favorite = $1, updated_at = $2 WHERE id = $3`,
		favorite, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPromptNotFound
	}
	return nil
}

// IncrementUsage bumps the usage counter and stamps last_used_at in one
// statement, so concurrent uses never lose counts.
func (r *PromptRepository) IncrementUsage(ctx context.Context, id string, usedAt time.Time) (*domain.Prompt, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE prompts
		 SET usage_count = usage_count + 1, last_used_at = $1
		 WHERE id = $2
		 RETURNING `+promptColumns,
		usedAt, id,
	)
	p, err := scanPrompt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPromptNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PromptRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE prompts SET embedding = $1 WHERE id = $2`,
		pgvector.NewVector(embedding), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPromptNotFound
	}
	return nil
}

func (r *PromptRepository) CreateVersion(ctx context.Context, v *domain.PromptVersion) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO prompt_versions (id, prompt_id, version_number, title, description, content, tags, change_summary, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		v.ID, v.PromptID, v.VersionNumber, v.Title, v.Description, v.Content, v.Tags, v.ChangeSummary, v.CreatedAt,
	)
	return err
}

func (r *PromptRepository) GetVersions(ctx context.Context, promptID string) ([]*domain.PromptVersion, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, prompt_id, version_number, title, description, content, tags, change_summary, created_at
		 FROM prompt_versions WHERE prompt_id = $1 ORDER BY version_number DESC`,
		promptID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []*domain.PromptVersion
	for rows.Next() {
		var v domain.PromptVersion
		if err := rows.Scan(&v.ID, &v.PromptID, &v.VersionNumber, &v.Title, &v.Description,
			&v.Content, &v.Tags, &v.ChangeSummary, &v.CreatedAt); err != nil {
			return nil, err
		}
		versions = append(versions, &v)
	}
	return versions, rows.Err()
}

func (r *PromptRepository) GetVersion(ctx context.Context, promptID string, number int64) (*domain.PromptVersion, error) {
	var v domain.PromptVersion
	err := r.db.QueryRow(ctx,
		`SELECT id, prompt_id, version_number, title, description, content, tags, change_summary, created_at
		 FROM prompt_versions WHERE prompt_id = $1 AND version_number = $2`,
		promptID, number,
	).Scan(&v.ID, &v.PromptID, &v.VersionNumber, &v.Title, &v.Description,
		&v.Content, &v.Tags, &v.ChangeSummary, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPromptVersionNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Stats aggregates library-wide totals plus the top-5 most-used and
// most-recently-updated prompts.
func (r *PromptRepository) Stats(ctx context.Context, libraryID string) (*service.PromptStats, error) {
	stats := &service.PromptStats{}

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE is_favorite),
		        COALESCE(SUM(usage_count), 0)
		 FROM prompts WHERE library_id = $1 AND is_active`,
		libraryID,
	).Scan(&stats.TotalPrompts, &stats.TotalFavorites, &stats.TotalUsage)
	if err != nil {
		return nil, err
	}

	mostUsed, err := r.topPrompts(ctx, libraryID, `usage_count DESC, updated_at DESC`)
	if err != nil {
		return nil, err
	}
	stats.MostUsed = mostUsed

	recent, err := r.topPrompts(ctx, libraryID, `updated_at DESC`)
	if err != nil {
		return nil, err
	}
	stats.RecentlyUpdated = recent

	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.name, COUNT(p.id)
		 FROM categories c
		 LEFT JOIN prompts p ON p.category_id = c.id AND p.is_active
		 WHERE c.library_id = $1
		 GROUP BY c.id, c.name
		 ORDER BY c.name ASC`,
		libraryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var cc service.CategoryCount
		if err := rows.Scan(&cc.CategoryID, &cc.CategoryName, &cc.PromptCount); err != nil {
			return nil, err
		}
		stats.ByCategory = append(stats.ByCategory, cc)
	}
	return stats, rows.Err()
}

func (r *PromptRepository) topPrompts(ctx context.Context, libraryID, order string) ([]*domain.Prompt, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+promptColumns+`
		 FROM prompts
		 WHERE library_id = $1 AND is_active
		 ORDER BY `+order+`
		 LIMIT 5`,
		libraryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPromptRows(rows)
}

func scanPrompt(row pgx.Row) (*domain.Prompt, error) {
	var p domain.Prompt
	if err := row.Scan(&p.ID, &p.LibraryID, &p.Title, &p.Description, &p.Content, &p.CategoryID,
		&p.Tags, &p.Author, &p.IsFavorite, &p.UsageCount, &p.LastUsedAt, &p.IsActive,
		&p.CurrentVersion, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPromptRows(rows pgx.Rows) ([]*domain.Prompt, error) {
	var results []*domain.Prompt
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}
