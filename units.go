package rml

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	pointsPerInch = 72.0
	pointsPerCM   = pointsPerInch / 2.54
	pointsPerMM   = pointsPerCM / 10
)

var unitScale = []struct {
	suffix string
	scale  float64
}{
	{"in", pointsPerInch},
	{"cm", pointsPerCM},
	{"mm", pointsPerMM},
	{"pt", 1},
	{"i", pointsPerInch},
}

// ParseLength converts an RML length ("1in", "2.5cm", "10mm", "12pt", "72")
// to points.
func ParseLength(value string) (float64, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, fmt.Errorf("empty length")
	}
	scale := 1.0
	lower := strings.ToLower(s)
	for _, u := range unitScale {
		if strings.HasSuffix(lower, u.suffix) {
			s = strings.TrimSpace(s[:len(s)-len(u.suffix)])
			scale = u.scale
			break
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("invalid length %q", value)
	}
	return n * scale, nil
}

// ParseLengths parses a comma separated list of lengths, optionally wrapped
// in brackets or parentheses. Entries that are empty, "*" or "None" are
// returned as 0 which callers treat as "automatic".
func ParseLengths(value string) ([]float64, error) {
	s := strings.TrimSpace(value)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "", "*", "None", "none":
			out = append(out, 0)
			continue
		}
		n, err := ParseLength(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

var namedPageSizes = map[string]Size{
	"a3":      {Width: 841.89, Height: 1190.55},
	"a4":      {Width: 595.28, Height: 841.89},
	"a5":      {Width: 419.53, Height: 595.28},
	"b5":      {Width: 498.90, Height: 708.66},
	"letter":  {Width: 612, Height: 792},
	"legal":   {Width: 612, Height: 1008},
	"tabloid": {Width: 792, Height: 1224},
}

// ParsePageSize accepts a named size ("A4", "letter", optionally followed by
// "landscape") or a tuple of two lengths such as "(21cm, 29.7cm)".
func ParsePageSize(value string) (Size, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return Size{}, fmt.Errorf("empty page size")
	}
	fields := strings.Fields(strings.ToLower(s))
	if size, ok := namedPageSizes[fields[0]]; ok {
		if len(fields) == 2 && fields[1] == "landscape" {
			size.Width, size.Height = size.Height, size.Width
		} else if len(fields) > 1 && fields[1] != "portrait" {
			return Size{}, fmt.Errorf("invalid page size %q", value)
		}
		return size, nil
	}
	lengths, err := ParseLengths(s)
	if err != nil {
		return Size{}, fmt.Errorf("invalid page size %q: %w", value, err)
	}
	if len(lengths) != 2 || lengths[0] <= 0 || lengths[1] <= 0 {
		return Size{}, fmt.Errorf("invalid page size %q", value)
	}
	return Size{Width: lengths[0], Height: lengths[1]}, nil
}

// ParseBool accepts the boolean spellings used in RML attributes.
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", value)
	}
}

// Alignment is horizontal text alignment.
type Alignment uint8

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	default:
		return "left"
	}
}

// ParseAlignment accepts names ("left", "centre", "TA_RIGHT", "justify") and
// the numeric codes 0, 1, 2 and 4.
func ParseAlignment(value string) (Alignment, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.TrimPrefix(v, "ta_")
	switch v {
	case "left", "0", "":
		return AlignLeft, nil
	case "center", "centre", "1":
		return AlignCenter, nil
	case "right", "2":
		return AlignRight, nil
	case "justify", "4":
		return AlignJustify, nil
	default:
		return AlignLeft, fmt.Errorf("invalid alignment %q", value)
	}
}

// VAlign is vertical alignment inside table cells.
type VAlign uint8

const (
	VAlignTop VAlign = iota
	VAlignMiddle
	VAlignBottom
)

// ParseVAlign accepts "top", "middle" and "bottom".
func ParseVAlign(value string) (VAlign, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "top", "":
		return VAlignTop, nil
	case "middle", "center", "centre":
		return VAlignMiddle, nil
	case "bottom":
		return VAlignBottom, nil
	default:
		return VAlignTop, fmt.Errorf("invalid vertical alignment %q", value)
	}
}
