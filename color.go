package rml

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is an RGB color.
type Color struct {
	R, G, B uint8
}

// RGB returns the components as ints, the form the PDF writer expects.
func (c Color) RGB() (int, int, int) {
	return int(c.R), int(c.G), int(c.B)
}

var (
	Black = Color{0, 0, 0}
	White = Color{255, 255, 255}
)

var namedColors = map[string]Color{
	"black":     Black,
	"white":     White,
	"red":       {255, 0, 0},
	"green":     {0, 128, 0},
	"lime":      {0, 255, 0},
	"blue":      {0, 0, 255},
	"navy":      {0, 0, 128},
	"yellow":    {255, 255, 0},
	"orange":    {255, 165, 0},
	"purple":    {128, 0, 128},
	"magenta":   {255, 0, 255},
	"fuchsia":   {255, 0, 255},
	"cyan":      {0, 255, 255},
	"aqua":      {0, 255, 255},
	"teal":      {0, 128, 128},
	"maroon":    {128, 0, 0},
	"olive":     {128, 128, 0},
	"silver":    {192, 192, 192},
	"gray":      {128, 128, 128},
	"grey":      {128, 128, 128},
	"darkgray":  {169, 169, 169},
	"darkgrey":  {169, 169, 169},
	"lightgray": {211, 211, 211},
	"lightgrey": {211, 211, 211},
	"darkblue":  {0, 0, 139},
	"lightblue": {173, 216, 230},
	"darkred":   {139, 0, 0},
	"darkgreen": {0, 100, 0},
	"brown":     {165, 42, 42},
	"pink":      {255, 192, 203},
}

// ParseColor accepts color names, "#rgb", "#rrggbb", "0xrrggbb" and tuples
// of three components in the 0..1 range such as "(0.5, 0.5, 0.5)".
func ParseColor(value string) (Color, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return Color{}, fmt.Errorf("empty color")
	}
	lower := strings.ToLower(s)
	lower = strings.TrimPrefix(lower, "colors.")
	if c, ok := namedColors[lower]; ok {
		return c, nil
	}
	switch {
	case strings.HasPrefix(lower, "#"):
		return parseHexColor(lower[1:], value)
	case strings.HasPrefix(lower, "0x"):
		return parseHexColor(lower[2:], value)
	case strings.HasPrefix(lower, "("), strings.HasPrefix(lower, "["):
		return parseTupleColor(lower, value)
	}
	return Color{}, fmt.Errorf("invalid color %q", value)
}

func parseHexColor(hex, raw string) (Color, error) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid color %q", raw)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q", raw)
	}
	return Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

func parseTupleColor(s, raw string) (Color, error) {
	s = strings.Trim(s, "()[]")
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Color{}, fmt.Errorf("invalid color %q", raw)
	}
	var comps [3]uint8
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(f) || f < 0 || f > 1 {
			return Color{}, fmt.Errorf("invalid color %q", raw)
		}
		comps[i] = uint8(f*255 + 0.5)
	}
	return Color{R: comps[0], G: comps[1], B: comps[2]}, nil
}
