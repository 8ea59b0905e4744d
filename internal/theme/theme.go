// Package theme derives ten-shade color palettes from a single base color
// and bundles them into named themes for the UI. Generation is pure and
// deterministic; generated themes live in an in-memory registry and are
// never persisted.
package theme

import "time"

// Role identifies a semantic palette slot within a theme.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
	RoleSuccess   Role = "success"
	RoleWarning   Role = "warning"
	RoleError     Role = "error"
	RoleInfo      Role = "info"
	RoleNeutral   Role = "neutral"
)

// Roles lists every role in rendering order.
var Roles = []Role{
	RolePrimary,
	RoleSecondary,
	RoleSuccess,
	RoleWarning,
	RoleError,
	RoleInfo,
	RoleNeutral,
}

// The four semantic palettes and the neutral grayscale are fixed reference
// tables shared by every theme, independent of the chosen base color.
var (
	successPalette = mustPalette(map[int]string{
		50: "#f0fdf4", 100: "#dcfce7", 200: "#bbf7d0", 300: "#86efac", 400: "#4ade80",
		500: "#22c55e", 600: "#16a34a", 700: "#15803d", 800: "#166534", 900: "#14532d",
	})
	warningPalette = mustPalette(map[int]string{
		50: "#fffbeb", 100: "#fef3c7", 200: "#fde68a", 300: "#fcd34d", 400: "#fbbf24",
		500: "#f59e0b", 600: "#d97706", 700: "#b45309", 800: "#92400e", 900: "#78350f",
	})
	errorPalette = mustPalette(map[int]string{
		50: "#fef2f2", 100: "#fee2e2", 200: "#fecaca", 300: "#fca5a5", 400: "#f87171",
		500: "#ef4444", 600: "#dc2626", 700: "#b91c1c", 800: "#991b1b", 900: "#7f1d1d",
	})
	infoPalette = mustPalette(map[int]string{
		50: "#eff6ff", 100: "#dbeafe", 200: "#bfdbfe", 300: "#93c5fd", 400: "#60a5fa",
		500: "#3b82f6", 600: "#2563eb", 700: "#1d4ed8", 800: "#1e40af", 900: "#1e3a8a",
	})
	neutralPalette = mustPalette(map[int]string{
		50: "#f9fafb", 100: "#f3f4f6", 200: "#e5e7eb", 300: "#d1d5db", 400: "#9ca3af",
		500: "#6b7280", 600: "#4b5563", 700: "#374151", 800: "#1f2937", 900: "#111827",
	})
)

// Theme is a named bundle of palettes, one per semantic role. Primary is
// derived from the chosen base color, secondary from its complement; the
// remaining roles carry the fixed reference palettes.
type Theme struct {
	ID        string
	Name      string
	Base      Color
	BuiltIn   bool
	Palettes  map[Role]Palette
	CreatedAt time.Time
}

// BuildPalettes derives the full role→palette set for a base color. Pure:
// identical bases yield identical palettes on every call.
func BuildPalettes(base Color) map[Role]Palette {
	return map[Role]Palette{
		RolePrimary:   Ramp(base),
		RoleSecondary: Ramp(base.Complement()),
		RoleSuccess:   successPalette,
		RoleWarning:   warningPalette,
		RoleError:     errorPalette,
		RoleInfo:      infoPalette,
		RoleNeutral:   neutralPalette,
	}
}

// New assembles a theme from a base color.
func New(id, name string, base Color, createdAt time.Time) *Theme {
	return &Theme{
		ID:        id,
		Name:      name,
		Base:      base,
		Palettes:  BuildPalettes(base),
		CreatedAt: createdAt,
	}
}
