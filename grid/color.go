package grid

import (
	"fmt"
	"strings"
)

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// Black and White are the built-in default background/foreground colors.
var (
	Black = RGB(0, 0, 0)
	White = RGB(255, 255, 255)
)

// Palette is the fixed 16-color table used by SGR 30-47 and 90-107,
// matching the xterm defaults.
var Palette = [16]Color{
	RGB(0, 0, 0),
	RGB(205, 0, 0),
	RGB(0, 205, 0),
	RGB(205, 205, 0),
	RGB(0, 0, 238),
	RGB(205, 0, 205),
	RGB(0, 205, 205),
	RGB(229, 229, 229),
	RGB(127, 127, 127),
	RGB(255, 0, 0),
	RGB(0, 255, 0),
	RGB(255, 255, 0),
	RGB(92, 92, 255),
	RGB(255, 0, 255),
	RGB(0, 255, 255),
	RGB(255, 255, 255),
}

// ParseColor parses a "#rrggbb" or "#rrggbbaa" hex string.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}

	var v [4]uint8
	v[3] = 255
	for i := 0; i*2 < len(hex); i++ {
		var b uint8
		for _, c := range []byte(hex[i*2 : i*2+2]) {
			b <<= 4
			switch {
			case c >= '0' && c <= '9':
				b |= c - '0'
			case c >= 'a' && c <= 'f':
				b |= c - 'a' + 10
			case c >= 'A' && c <= 'F':
				b |= c - 'A' + 10
			default:
				return Color{}, fmt.Errorf("invalid color %q", s)
			}
		}
		v[i] = b
	}

	return Color{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}

// String formats the color as a "#rrggbb" or "#rrggbbaa" hex string.
func (c Color) String() string {
	if c.A != 255 {
		return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
