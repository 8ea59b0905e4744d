package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/theme"
)

func TestThemeService_Generate(t *testing.T) {
	t.Run("registers a derived theme", func(t *testing.T) {
		svc := NewThemeServiceWithUUIDGen(NewMockUUIDGenerator("theme-default", "theme-1"))

		generated, err := svc.Generate(context.Background(), "ocean", "#3366cc")

		require.NoError(t, err)
		assert.Equal(t, "theme-1", generated.ID)
		assert.Equal(t, "ocean", generated.Name)
		assert.False(t, generated.BuiltIn)
		assert.Len(t, generated.Palettes[theme.RolePrimary], len(theme.ShadeKeys))

		stored, err := svc.Get(context.Background(), "theme-1")
		require.NoError(t, err)
		assert.Equal(t, generated, stored)
	})

	t.Run("defaults blank name to custom", func(t *testing.T) {
		svc := NewThemeServiceWithUUIDGen(NewMockUUIDGenerator("theme-default", "theme-1"))

		generated, err := svc.Generate(context.Background(), "", "#3366cc")

		require.NoError(t, err)
		assert.Equal(t, "custom", generated.Name)
	})

	t.Run("rejects an invalid base color", func(t *testing.T) {
		svc := NewThemeServiceWithUUIDGen(NewMockUUIDGenerator("theme-default"))

		_, err := svc.Generate(context.Background(), "bad", "not-a-color")

		require.Error(t, err)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)

		themes, err := svc.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, themes, 1)
	})

	t.Run("identical base colors derive identical palettes", func(t *testing.T) {
		svc := NewThemeServiceWithUUIDGen(NewMockUUIDGenerator("theme-default", "theme-1", "theme-2"))

		first, err := svc.Generate(context.Background(), "a", "#3366cc")
		require.NoError(t, err)
		second, err := svc.Generate(context.Background(), "b", "#3366cc")
		require.NoError(t, err)

		assert.Equal(t, first.Palettes, second.Palettes)
	})
}

func TestThemeService_List(t *testing.T) {
	svc := NewThemeServiceWithUUIDGen(NewMockUUIDGenerator("theme-default", "theme-1"))

	_, err := svc.Generate(context.Background(), "ocean", "#3366cc")
	require.NoError(t, err)

	themes, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, themes, 2)
	assert.Equal(t, DefaultThemeName, themes[0].Name)
	assert.True(t, themes[0].BuiltIn)
	assert.Equal(t, "ocean", themes[1].Name)
}

func TestThemeService_CSS(t *testing.T) {
	t.Run("renders custom properties", func(t *testing.T) {
		svc := NewThemeServiceWithUUIDGen(NewMockUUIDGenerator("theme-default"))

		css, err := svc.CSS(context.Background(), "theme-default")

		require.NoError(t, err)
		assert.Contains(t, css, "--color-primary-500:")
		assert.Contains(t, css, "--color-neutral-900:")
	})

	t.Run("unknown theme", func(t *testing.T) {
		svc := NewThemeServiceWithUUIDGen(NewMockUUIDGenerator("theme-default"))

		_, err := svc.CSS(context.Background(), "theme-missing")

		assert.ErrorIs(t, err, domain.ErrThemeNotFound)
	})
}

func TestThemeService_Delete(t *testing.T) {
	t.Run("removes a generated theme", func(t *testing.T) {
		svc := NewThemeServiceWithUUIDGen(NewMockUUIDGenerator("theme-default", "theme-1"))

		_, err := svc.Generate(context.Background(), "ocean", "#3366cc")
		require.NoError(t, err)

		require.NoError(t, svc.Delete(context.Background(), "theme-1"))

		_, err = svc.Get(context.Background(), "theme-1")
		assert.ErrorIs(t, err, domain.ErrThemeNotFound)
	})

	t.Run("refuses to delete the built-in theme", func(t *testing.T) {
		svc := NewThemeServiceWithUUIDGen(NewMockUUIDGenerator("theme-default"))

		err := svc.Delete(context.Background(), "theme-default")

		assert.ErrorIs(t, err, domain.ErrBuiltInThemeImmutable)
	})

	t.Run("unknown theme", func(t *testing.T) {
		svc := NewThemeServiceWithUUIDGen(NewMockUUIDGenerator("theme-default"))

		err := svc.Delete(context.Background(), "theme-missing")

		assert.ErrorIs(t, err, domain.ErrThemeNotFound)
	})
}
