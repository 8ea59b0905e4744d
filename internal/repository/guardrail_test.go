//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardrailConfigRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	library := seedLibrary(ctx, t, pool)
	repo := NewGuardrailConfigRepository(pool)

	first := domain.NewGuardrailConfig(uuid.NewString(), library.ID, domain.GuardrailRateLimit,
		map[string]any{"requests_per_minute": float64(30)}, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Upsert(ctx, first))

	active, err := repo.GetActive(ctx, library.ID, domain.GuardrailRateLimit)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)
	assert.Equal(t, float64(30), active.Configuration["requests_per_minute"])

	// a second upsert of the same type replaces the active config
	second := domain.NewGuardrailConfig(uuid.NewString(), library.ID, domain.GuardrailRateLimit,
		map[string]any{"requests_per_minute": float64(60)}, time.Now().UTC().Add(time.Second).Truncate(time.Microsecond))
	require.NoError(t, repo.Upsert(ctx, second))

	active, err = repo.GetActive(ctx, library.ID, domain.GuardrailRateLimit)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, float64(60), active.Configuration["requests_per_minute"])
}

func TestGuardrailConfigRepository_GetActive_PerType(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	library := seedLibrary(ctx, t, pool)
	repo := NewGuardrailConfigRepository(pool)

	input := domain.NewGuardrailConfig(uuid.NewString(), library.ID, domain.GuardrailInputValidation,
		map[string]any{"strict": true}, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Upsert(ctx, input))

	active, err := repo.GetActive(ctx, library.ID, domain.GuardrailInputValidation)
	require.NoError(t, err)
	assert.Equal(t, input.ID, active.ID)

	_, err = repo.GetActive(ctx, library.ID, domain.GuardrailOutputFiltering)
	assert.ErrorIs(t, err, domain.ErrGuardrailConfigNotFound)
}

func TestGuardrailLogRepository_Create(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	library := seedLibrary(ctx, t, pool)
	repo := NewGuardrailLogRepository(pool)

	log := &domain.GuardrailLog{
		ID:         uuid.NewString(),
		LibraryID:  library.ID,
		ActionType: "validate",
		LogLevel:   "warning",
		Allowed:    false,
		RiskLevel:  domain.RiskHigh,
		Detail:     "jailbreak_attempt",
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	err := repo.Create(ctx, log)
	require.NoError(t, err)
}
