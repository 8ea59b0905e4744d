package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/promptuary/promptuary/internal/domain"
)

type GuardrailConfigRepository struct {
	db dbtx
}

func NewGuardrailConfigRepository(pool *pgxpool.Pool) *GuardrailConfigRepository {
	return &GuardrailConfigRepository{db: pool}
}

func (r *GuardrailConfigRepository) GetActive(ctx context.Context, libraryID string, configType domain.GuardrailConfigType) (*domain.GuardrailConfig, error) {
	var c domain.GuardrailConfig
	var configJSON []byte
	err := r.db.QueryRow(ctx,
		`SELECT id, library_id, config_type, configuration, is_active, created_at, updated_at
		 FROM guardrail_configs
		 WHERE library_id = $1 AND config_type = $2 AND is_active
		 ORDER BY updated_at DESC
		 LIMIT 1`,
		libraryID, configType,
	).Scan(&c.ID, &c.LibraryID, &c.ConfigType, &configJSON, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGuardrailConfigNotFound
		}
		return nil, err
	}
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &c.Configuration); err != nil {
			return nil, fmt.Errorf("unmarshal guardrail configuration: %w", err)
		}
	}
	return &c, nil
}

// Upsert deactivates any existing config of the same type, then inserts the
// new one, so at most one config per type is active per library.
func (r *GuardrailConfigRepository) Upsert(ctx context.Context, config *domain.GuardrailConfig) error {
	configJSON, err := json.Marshal(config.Configuration)
	if err != nil {
		return fmt.Errorf("marshal guardrail configuration: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`UPDATE guardrail_configs SET is_active = FALSE, updated_at = $1
		 WHERE library_id = $2 AND config_type = $3 AND is_active`,
		config.UpdatedAt, config.LibraryID, config.ConfigType,
	)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO guardrail_configs (id, library_id, config_type, configuration, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		config.ID, config.LibraryID, config.ConfigType, configJSON, config.IsActive, config.CreatedAt, config.UpdatedAt,
	)
	return err
}

type GuardrailLogRepository struct {
	db dbtx
}

func NewGuardrailLogRepository(pool *pgxpool.Pool) *GuardrailLogRepository {
	return &GuardrailLogRepository{db: pool}
}

func (r *GuardrailLogRepository) Create(ctx context.Context, log *domain.GuardrailLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO guardrail_logs (id, library_id, action_type, log_level, allowed, risk_level, detail, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		log.ID, log.LibraryID, log.ActionType, log.LogLevel, log.Allowed, log.RiskLevel, nullableString(log.Detail), log.CreatedAt,
	)
	return err
}
