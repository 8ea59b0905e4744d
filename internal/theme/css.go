package theme

import (
	"fmt"
	"strings"
)

// CSSVariables renders the theme as CSS custom properties under :root, one
// per role and shade, named --color-<role>-<shade>. Roles render in fixed
// order and shades in ascending key order, so output is deterministic.
func (t *Theme) CSSVariables() string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, role := range Roles {
		palette, ok := t.Palettes[role]
		if !ok {
			continue
		}
		for _, shade := range ShadeKeys {
			fmt.Fprintf(&b, "  --color-%s-%d: %s;\n", role, shade, palette[shade].Hex())
		}
	}
	b.WriteString("}\n")
	return b.String()
}
