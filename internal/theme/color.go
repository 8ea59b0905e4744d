package theme

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an immutable sRGB color value. Operations return new values and
// never mutate the receiver.
type Color struct {
	r, g, b uint8
}

// InvalidColorError reports an input string that could not be parsed as a
// color in any of the accepted forms.
type InvalidColorError struct {
	Input string
}

// Error implements the error interface
func (e *InvalidColorError) Error() string {
	return fmt.Sprintf("invalid color %q: expected hex, rgb(r, g, b), or a named color", e.Input)
}

// namedColors maps CSS color keywords to their hex values.
var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"cyan":    "#00ffff",
	"aqua":    "#00ffff",
	"magenta": "#ff00ff",
	"fuchsia": "#ff00ff",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"maroon":  "#800000",
	"olive":   "#808000",
	"lime":    "#00ff00",
	"teal":    "#008080",
	"navy":    "#000080",
	"purple":  "#800080",
	"orange":  "#ffa500",
	"pink":    "#ffc0cb",
	"brown":   "#a52a2a",
	"gold":    "#ffd700",
	"indigo":  "#4b0082",
	"violet":  "#ee82ee",
}

// ParseColor parses a color from a hex string (#rgb or #rrggbb, any case),
// an rgb(r, g, b) triplet, or a CSS color keyword. Invalid input returns an
// *InvalidColorError.
func ParseColor(input string) (Color, error) {
	s := strings.TrimSpace(input)
	lower := strings.ToLower(s)

	switch {
	case strings.HasPrefix(lower, "#"):
		c, err := colorful.Hex(lower)
		if err != nil {
			return Color{}, &InvalidColorError{Input: input}
		}
		r, g, b := c.RGB255()
		return Color{r: r, g: g, b: b}, nil

	case strings.HasPrefix(lower, "rgb(") && strings.HasSuffix(lower, ")"):
		body := strings.TrimSuffix(strings.TrimPrefix(lower, "rgb("), ")")
		parts := strings.Split(body, ",")
		if len(parts) != 3 {
			return Color{}, &InvalidColorError{Input: input}
		}
		var ch [3]uint8
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n < 0 || n > 255 {
				return Color{}, &InvalidColorError{Input: input}
			}
			ch[i] = uint8(n)
		}
		return Color{r: ch[0], g: ch[1], b: ch[2]}, nil

	default:
		hex, ok := namedColors[lower]
		if !ok {
			return Color{}, &InvalidColorError{Input: input}
		}
		return ParseColor(hex)
	}
}

// MustParseColor parses a color and panics on failure. For package-level
// constant tables only.
func MustParseColor(input string) Color {
	c, err := ParseColor(input)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns the canonical serialization: lowercase #rrggbb. Identical
// colors always serialize to byte-identical strings.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

// String implements fmt.Stringer
func (c Color) String() string {
	return c.Hex()
}

// RGB returns the 8-bit channel values.
func (c Color) RGB() (r, g, b uint8) {
	return c.r, c.g, c.b
}

// HSL returns hue in degrees [0, 360), and saturation and lightness in [0, 1].
func (c Color) HSL() (h, s, l float64) {
	return c.toColorful().Hsl()
}

// Lightness returns the HSL lightness in [0, 1].
func (c Color) Lightness() float64 {
	_, _, l := c.HSL()
	return l
}

// Lighten returns a new color with lightness increased by pct percentage
// points, clamped at pure white.
func (c Color) Lighten(pct float64) Color {
	h, s, l := c.HSL()
	l += pct / 100
	if l > 1 {
		l = 1
	}
	return fromHSL(h, s, l)
}

// Darken returns a new color with lightness decreased by pct percentage
// points, clamped at pure black.
func (c Color) Darken(pct float64) Color {
	h, s, l := c.HSL()
	l -= pct / 100
	if l < 0 {
		l = 0
	}
	return fromHSL(h, s, l)
}

// Complement returns the color 180 degrees across the hue wheel with
// saturation and lightness unchanged.
func (c Color) Complement() Color {
	h, s, l := c.HSL()
	h += 180
	if h >= 360 {
		h -= 360
	}
	return fromHSL(h, s, l)
}

// MarshalJSON serializes the color as its canonical hex string.
func (c Color) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.Hex() + `"`), nil
}

// UnmarshalJSON parses a color from any accepted string form.
func (c *Color) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return &InvalidColorError{Input: string(data)}
	}
	parsed, parseErr := ParseColor(s)
	if parseErr != nil {
		return parseErr
	}
	*c = parsed
	return nil
}

func (c Color) toColorful() colorful.Color {
	return colorful.Color{
		R: float64(c.r) / 255,
		G: float64(c.g) / 255,
		B: float64(c.b) / 255,
	}
}

func fromHSL(h, s, l float64) Color {
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return Color{r: r, g: g, b: b}
}
