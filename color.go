package canopy

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when a surface blends it.
type Color struct {
	R, G, B, A float64
}

// Common colors.
var (
	ColorTransparent = Color{}
	ColorBlack       = Color{0, 0, 0, 1}
	ColorWhite       = Color{1, 1, 1, 1}
	ColorGrey        = Color{0.5, 0.5, 0.5, 1}
)

var namedColors = map[string]Color{
	"transparent": ColorTransparent,
	"black":       ColorBlack,
	"white":       ColorWhite,
	"grey":        ColorGrey,
	"gray":        ColorGrey,
	"red":         {1, 0, 0, 1},
	"green":       {0, 0.5, 0, 1},
	"lime":        {0, 1, 0, 1},
	"blue":        {0, 0, 1, 1},
	"yellow":      {1, 1, 0, 1},
	"orange":      {1, 0.647, 0, 1},
	"purple":      {0.5, 0, 0.5, 1},
	"cyan":        {0, 1, 1, 1},
	"magenta":     {1, 0, 1, 1},
}

// RGBA implements color.Color with premultiplied 16-bit components.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(clamp01(c.A) * 0xffff)
	r = uint32(clamp01(c.R) * clamp01(c.A) * 0xffff)
	g = uint32(clamp01(c.G) * clamp01(c.A) * 0xffff)
	b = uint32(clamp01(c.B) * clamp01(c.A) * 0xffff)
	return
}

// toNRGBA converts to an 8-bit straight-alpha color.
func (c Color) toNRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

// WithAlpha returns c with its alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.A *= a
	return c
}

// IsTransparent reports whether painting with c has no visible effect.
func (c Color) IsTransparent() bool {
	return c.A <= 0
}

// UnmarshalText parses a color string with ParseColor. It lets colors be
// written as strings in YAML and JSON configuration.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor parses a CSS-like color string: a named color, "#rgb",
// "#rrggbb", "#rrggbbaa", "rgb(r, g, b)", "rgba(r, g, b, a)" or
// "hsl(h, s%, l%)".
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHexColor(s)
	case strings.HasPrefix(s, "rgba(") || strings.HasPrefix(s, "rgb("):
		return parseRGBColor(s)
	case strings.HasPrefix(s, "hsla(") || strings.HasPrefix(s, "hsl("):
		return parseHSLColor(s)
	}
	return Color{}, fmt.Errorf("parse color %q: unknown format", s)
}

// MustColor is like ParseColor but panics on error. Intended for literals.
func MustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic("canopy: " + err.Error())
	}
	return c
}

func parseHexColor(s string) (Color, error) {
	alpha := 1.0
	if len(s) == 9 {
		v, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		alpha = float64(v) / 255
		s = s[:7]
	}
	cf, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{cf.R, cf.G, cf.B, alpha}, nil
}

func colorArgs(s string) ([]string, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("parse color %q: malformed function", s)
	}
	parts := strings.Split(s[open+1:len(s)-1], ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) != 3 && len(parts) != 4 {
		return nil, fmt.Errorf("parse color %q: want 3 or 4 components, got %d", s, len(parts))
	}
	return parts, nil
}

func parseComponent(s string, scale float64) (float64, error) {
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		return v / 100, err
	}
	v, err := strconv.ParseFloat(s, 64)
	return v / scale, err
}

func parseRGBColor(s string) (Color, error) {
	parts, err := colorArgs(s)
	if err != nil {
		return Color{}, err
	}
	var v [4]float64
	v[3] = 1
	for i, p := range parts {
		scale := 255.0
		if i == 3 {
			scale = 1
		}
		if v[i], err = parseComponent(p, scale); err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
	}
	return Color{clamp01(v[0]), clamp01(v[1]), clamp01(v[2]), clamp01(v[3])}, nil
}

func parseHSLColor(s string) (Color, error) {
	parts, err := colorArgs(s)
	if err != nil {
		return Color{}, err
	}
	h, err := strconv.ParseFloat(strings.TrimSuffix(parts[0], "deg"), 64)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	sat, err := parseComponent(parts[1], 1)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	lum, err := parseComponent(parts[2], 1)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	alpha := 1.0
	if len(parts) == 4 {
		if alpha, err = parseComponent(parts[3], 1); err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
	}
	cf := colorful.Hsl(h, clamp01(sat), clamp01(lum)).Clamped()
	return Color{cf.R, cf.G, cf.B, clamp01(alpha)}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
