package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/service"
)

type CategoryRepository struct {
	db dbtx
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: pool}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO categories (id, library_id, name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.LibraryID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	err := r.db.QueryRow(ctx,
		`SELECT id, library_id, name, description, created_at, updated_at
		 FROM categories WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.LibraryID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetByName does a case-insensitive lookup so "Coding" and "coding" cannot
// coexist in one library.
func (r *CategoryRepository) GetByName(ctx context.Context, libraryID, name string) (*domain.Category, error) {
	var c domain.Category
	err := r.db.QueryRow(ctx,
		`SELECT id, library_id, name, description, created_at, updated_at
		 FROM categories WHERE library_id = $1 AND LOWER(name) = LOWER($2)`,
		libraryID, name,
	).Scan(&c.ID, &c.LibraryID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context, libraryID string) ([]*domain.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, library_id, name, description, created_at, updated_at
		 FROM categories WHERE library_id = $1 ORDER BY name ASC`,
		libraryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.LibraryID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE categories SET name = $1, description = $2, updated_at = $3 WHERE id = $4`,
		c.Name, c.Description, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// Delete removes the category. Prompts keep existing; the prompts table
// FK sets their category_id to NULL.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) PromptCounts(ctx context.Context, libraryID string) ([]service.CategoryCount, error) {
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

	var counts []service.CategoryCount
	for rows.Next() {
		var cc service.CategoryCount
		if err := rows.Scan(&cc.CategoryID, &cc.CategoryName, &cc.PromptCount); err != nil {
			return nil, err
		}
		counts = append(counts, cc)
	}
	return counts, rows.Err()
}
