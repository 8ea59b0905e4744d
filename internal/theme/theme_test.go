package theme

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRampKeepsBaseAt500(t *testing.T) {
	// Shade 500 must be the unmodified base, not a lighten/darken round
	// trip: exact normalized hex equality.
	for _, hex := range []string{"#3b82f6", "#22c55e", "#808080", "#a1160a"} {
		base := MustParseColor(hex)
		p := Ramp(base)
		assert.Equal(t, hex, p[500].Hex())
		assert.Equal(t, base, p[500])
	}
}

func TestRampHasAllShades(t *testing.T) {
	p := Ramp(MustParseColor("#3b82f6"))
	require.Len(t, p, len(ShadeKeys))
	for _, shade := range ShadeKeys {
		_, ok := p[shade]
		assert.True(t, ok, "missing shade %d", shade)
	}
}

func TestRampLightnessMonotonic(t *testing.T) {
	// Lightness strictly decreases from 50 through 900 for mid-range
	// bases (clamping only collapses shades for near-white/near-black
	// bases, covered separately).
	for _, hex := range []string{"#3b82f6", "#6b7280", "#b45309"} {
		t.Run(hex, func(t *testing.T) {
			p := Ramp(MustParseColor(hex))
			for i := 1; i < len(ShadeKeys); i++ {
				prev := p[ShadeKeys[i-1]].Lightness()
				cur := p[ShadeKeys[i]].Lightness()
				assert.Greater(t, prev, cur,
					"shade %d should be lighter than shade %d", ShadeKeys[i-1], ShadeKeys[i])
			}
		})
	}
}

func TestRampExtremesStillOrdered(t *testing.T) {
	p := Ramp(MustParseColor("#3b82f6"))
	assert.Greater(t, p[50].Lightness(), p[900].Lightness())
}

func TestRampWhiteBaseCollapsesLightSide(t *testing.T) {
	// Lightening pure white clamps: the light shades collapse to white
	// instead of violating the ramp.
	p := Ramp(MustParseColor("#ffffff"))
	for _, shade := range []int{50, 100, 200, 300, 400} {
		assert.Equal(t, "#ffffff", p[shade].Hex())
	}
	assert.Less(t, p[900].Lightness(), p[500].Lightness())
}

func TestRampIsPure(t *testing.T) {
	base := MustParseColor("#3b82f6")
	assert.Equal(t, Ramp(base), Ramp(base))
}

func TestBuildPalettes(t *testing.T) {
	base := MustParseColor("#3b82f6")
	palettes := BuildPalettes(base)

	require.Len(t, palettes, len(Roles))

	t.Run("primary derives from base", func(t *testing.T) {
		assert.Equal(t, "#3b82f6", palettes[RolePrimary][500].Hex())
	})

	t.Run("secondary derives from complement", func(t *testing.T) {
		assert.Equal(t, base.Complement().Hex(), palettes[RoleSecondary][500].Hex())
	})

	t.Run("fixed roles are base-independent", func(t *testing.T) {
		other := BuildPalettes(MustParseColor("#a1160a"))
		for _, role := range []Role{RoleSuccess, RoleWarning, RoleError, RoleInfo, RoleNeutral} {
			assert.Equal(t, palettes[role], other[role], "role %s", role)
		}
		assert.Equal(t, "#22c55e", palettes[RoleSuccess][500].Hex())
		assert.Equal(t, "#f59e0b", palettes[RoleWarning][500].Hex())
		assert.Equal(t, "#ef4444", palettes[RoleError][500].Hex())
		assert.Equal(t, "#3b82f6", palettes[RoleInfo][500].Hex())
		assert.Equal(t, "#6b7280", palettes[RoleNeutral][500].Hex())
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		again := BuildPalettes(base)
		for role, palette := range palettes {
			for shade, color := range palette {
				assert.Equal(t, color.Hex(), again[role][shade].Hex(),
					"role %s shade %d", role, shade)
			}
		}
	})
}

func TestCSSVariables(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	th := New("t1", "Ocean", MustParseColor("#3b82f6"), now)

	css := th.CSSVariables()

	assert.True(t, strings.HasPrefix(css, ":root {\n"))
	assert.True(t, strings.HasSuffix(css, "}\n"))
	assert.Contains(t, css, "--color-primary-500: #3b82f6;")
	assert.Contains(t, css, "--color-success-500: #22c55e;")
	assert.Contains(t, css, "--color-neutral-900: #111827;")

	// One variable per role and shade.
	assert.Equal(t, len(Roles)*len(ShadeKeys), strings.Count(css, "--color-"))

	// Primary renders before secondary, shades ascending.
	assert.Less(t,
		strings.Index(css, "--color-primary-50:"),
		strings.Index(css, "--color-primary-100:"))
	assert.Less(t,
		strings.Index(css, "--color-primary-900:"),
		strings.Index(css, "--color-secondary-50:"))

	// Deterministic output.
	assert.Equal(t, css, th.CSSVariables())
}

func TestRegistry(t *testing.T) {
	now := time.Now()
	reg := NewRegistry()

	first := New("t1", "First", MustParseColor("#3b82f6"), now)
	second := New("t2", "Second", MustParseColor("#22c55e"), now.Add(time.Second))

	reg.Put(first)
	reg.Put(second)

	t.Run("get", func(t *testing.T) {
		got, ok := reg.Get("t1")
		require.True(t, ok)
		assert.Equal(t, "First", got.Name)

		_, ok = reg.Get("missing")
		assert.False(t, ok)
	})

	t.Run("list preserves creation order", func(t *testing.T) {
		themes := reg.List()
		require.Len(t, themes, 2)
		assert.Equal(t, "t1", themes[0].ID)
		assert.Equal(t, "t2", themes[1].ID)
	})

	t.Run("put existing id keeps order", func(t *testing.T) {
		renamed := New("t1", "Renamed", MustParseColor("#3b82f6"), now)
		reg.Put(renamed)

		themes := reg.List()
		require.Len(t, themes, 2)
		assert.Equal(t, "t1", themes[0].ID)
		assert.Equal(t, "Renamed", themes[0].Name)
	})

	t.Run("delete", func(t *testing.T) {
		assert.True(t, reg.Delete("t1"))
		assert.False(t, reg.Delete("t1"))
		assert.Equal(t, 1, reg.Len())

		themes := reg.List()
		require.Len(t, themes, 1)
		assert.Equal(t, "t2", themes[0].ID)
	})
}
