package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/promptuary/promptuary/internal/domain"
)

type LibraryRepository struct {
	db dbtx
}

func NewLibraryRepository(pool *pgxpool.Pool) *LibraryRepository {
	return &LibraryRepository{db: pool}
}

func (r *LibraryRepository) Create(ctx context.Context, library *domain.Library) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO libraries (id, name, created_at) VALUES ($1, $2, $3)`,
		library.ID, library.Name, library.CreatedAt,
	)
	return err
}

func (r *LibraryRepository) GetByID(ctx context.Context, id string) (*domain.Library, error) {
	var l domain.Library
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at FROM libraries WHERE id = $1`,
		id,
	).Scan(&l.ID, &l.Name, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLibraryNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *LibraryRepository) GetByName(ctx context.Context, name string) (*domain.Library, error) {
	var l domain.Library
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at FROM libraries WHERE name = $1`,
		name,
	).Scan(&l.ID, &l.Name, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLibraryNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *LibraryRepository) List(ctx context.Context) ([]*domain.Library, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, created_at FROM libraries ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var libraries []*domain.Library
	for rows.Next() {
		var l domain.Library
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
			return nil, err
		}
		libraries = append(libraries, &l)
	}
	return libraries, rows.Err()
}

// Delete cascades through every table scoped to the library.
func (r *LibraryRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM libraries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrLibraryNotFound
	}
	return nil
}
