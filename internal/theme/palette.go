package theme

// ShadeKeys is the fixed ordered set of shade keys every palette carries,
// lightest to darkest.
var ShadeKeys = []int{50, 100, 200, 300, 400, 500, 600, 700, 800, 900}

// lightenSteps maps shades below 500 to the percentage-point lightness
// increase applied to the base color.
var lightenSteps = map[int]float64{
	50:  45,
	100: 40,
	200: 30,
	300: 20,
	400: 10,
}

// darkenSteps maps shades above 500 to the percentage-point lightness
// decrease applied to the base color.
var darkenSteps = map[int]float64{
	600: 10,
	700: 20,
	800: 30,
	900: 40,
}

// Palette maps a shade key to a color. Shade 500 always holds the unmodified
// base color the palette was derived from.
type Palette map[int]Color

// Ramp derives the full ten-shade palette from a base color. The base is
// stored at 500 as-is; shades below lighten it and shades above darken it by
// fixed steps. Deterministic: the same base always yields byte-identical hex
// values for every shade.
func Ramp(base Color) Palette {
	p := make(Palette, len(ShadeKeys))
	p[500] = base
	for shade, pct := range lightenSteps {
		p[shade] = base.Lighten(pct)
	}
	for shade, pct := range darkenSteps {
		p[shade] = base.Darken(pct)
	}
	return p
}

// mustPalette builds a fixed palette from a shade→hex table. For the
// package-level reference palettes only.
func mustPalette(shades map[int]string) Palette {
	if len(shades) != len(ShadeKeys) {
		panic("palette table must define all ten shades")
	}
	p := make(Palette, len(shades))
	for shade, hex := range shades {
		p[shade] = MustParseColor(hex)
	}
	return p
}
