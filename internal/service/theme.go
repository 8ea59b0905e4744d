package service

import (
	"context"
	"time"

	"github.com/promptuary/promptuary/internal/domain"
	"github.com/promptuary/promptuary/internal/theme"
)

// DefaultThemeName identifies the built-in theme seeded at startup.
const DefaultThemeName = "default"

// defaultThemeBase is the base color of the built-in theme.
const defaultThemeBase = "#3b82f6"

// ThemeService owns the session-scoped theme registry. Themes are derived
// from a single base color and never persisted server-side.
type ThemeService struct {
	registry *theme.Registry
	uuidGen  UUIDGenerator
}

// NewThemeService creates a theme service seeded with the built-in default
// theme.
func NewThemeService() *ThemeService {
	return NewThemeServiceWithUUIDGen(&DefaultUUIDGenerator{})
}

// NewThemeServiceWithUUIDGen creates a theme service with a custom UUID
// generator (for testing).
func NewThemeServiceWithUUIDGen(uuidGen UUIDGenerator) *ThemeService {
	svc := &ThemeService{
		registry: theme.NewRegistry(),
		uuidGen:  uuidGen,
	}

	base := theme.MustParseColor(defaultThemeBase)
	builtin := theme.New(uuidGen.NewString(), DefaultThemeName, base, time.Now().UTC())
	builtin.BuiltIn = true
	svc.registry.Put(builtin)

	return svc
}

// Generate derives a new theme from a base color string and registers it.
// Invalid colors fail with a validation error before anything is stored.
func (s *ThemeService) Generate(ctx context.Context, name, baseColor string) (*theme.Theme, error) {
	base, err := theme.ParseColor(baseColor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid base color", err)
	}

	if name == "" {
		name = "custom"
	}

	t := theme.New(s.uuidGen.NewString(), name, base, time.Now().UTC())
	s.registry.Put(t)

	return t, nil
}

// Get returns a registered theme.
func (s *ThemeService) Get(ctx context.Context, id string) (*theme.Theme, error) {
	t, ok := s.registry.Get(id)
	if !ok {
		return nil, domain.ErrThemeNotFound
	}
	return t, nil
}

// List returns every registered theme in creation order.
func (s *ThemeService) List(ctx context.Context) ([]*theme.Theme, error) {
	return s.registry.List(), nil
}

// CSS renders a theme as CSS custom properties.
func (s *ThemeService) CSS(ctx context.Context, id string) (string, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return t.CSSVariables(), nil
}

// Delete removes a generated theme. The built-in theme is not deletable.
func (s *ThemeService) Delete(ctx context.Context, id string) error {
	t, ok := s.registry.Get(id)
	if !ok {
		return domain.ErrThemeNotFound
	}
	if t.BuiltIn {
		return domain.ErrBuiltInThemeImmutable
	}
	s.registry.Delete(id)
	return nil
}
