package rml

import (
	"errors"
	"fmt"
	"strings"
)

func (p *parser) graphics(n *node) []GraphicsOp {
	var ops []GraphicsOp
	for _, c := range n.children() {
		if op := p.graphicsOp(c); op != nil {
			ops = append(ops, op)
		}
	}
	return ops
}

func (p *parser) graphicsOp(n *node) GraphicsOp {
	switch n.name {
	case "setFont":
		name := n.attr("name")
		if name == "" {
			p.fail(n, errors.New("name is required"))
		}
		size := p.length(n, "size", 10)
		return &SetFont{Name: name, Size: size, Leading: p.length(n, "leading", size*1.2)}
	case "fill":
		return &Fill{Color: p.requiredColor(n)}
	case "stroke":
		return &Stroke{Color: p.requiredColor(n)}
	case "lineMode":
		mode := &LineMode{Width: p.length(n, "width", 1)}
		if v := n.attr("dash"); v != "" {
			dash, err := ParseLengths(v)
			if err != nil {
				p.fail(n, err)
			}
			mode.Dash = dash
		}
		return mode
	case "drawString", "drawLeftString":
		return p.drawString(n, AlignLeft)
	case "drawCentredString", "drawCenteredString":
		return p.drawString(n, AlignCenter)
	case "drawRightString":
		return p.drawString(n, AlignRight)
	case "rect":
		return &Rect{
			X:      p.length(n, "x", 0),
			Y:      p.length(n, "y", 0),
			Width:  p.length(n, "width", 0),
			Height: p.length(n, "height", 0),
			Round:  p.length(n, "round", 0),
			Fill:   p.boolean(n, "fill"),
			Stroke: p.boolDefault(n, "stroke", true),
		}
	case "circle":
		x, _ := n.firstAttr("x", "x_cen")
		y, _ := n.firstAttr("y", "y_cen")
		return &Circle{
			X:      p.lengthValue(n, "x", x),
			Y:      p.lengthValue(n, "y", y),
			Radius: p.length(n, "radius", 0),
			Fill:   p.boolean(n, "fill"),
			Stroke: p.boolDefault(n, "stroke", true),
		}
	case "line":
		return &Line{
			X1: p.length(n, "x1", 0),
			Y1: p.length(n, "y1", 0),
			X2: p.length(n, "x2", 0),
			Y2: p.length(n, "y2", 0),
		}
	case "lines":
		return p.lines(n)
	case "image":
		file, _ := n.firstAttr("file", "src")
		if file == "" {
			p.fail(n, errors.New("file is required"))
		}
		return &DrawImage{
			File:   file,
			X:      p.length(n, "x", 0),
			Y:      p.length(n, "y", 0),
			Width:  p.length(n, "width", 0),
			Height: p.length(n, "height", 0),
		}
	case "place":
		return &Place{
			X:       p.length(n, "x", 0),
			Y:       p.length(n, "y", 0),
			Width:   p.length(n, "width", 0),
			Height:  p.length(n, "height", 0),
			Content: p.flowables(n),
		}
	default:
		p.skip(n)
		return nil
	}
}

func (p *parser) drawString(n *node, align Alignment) *DrawString {
	return &DrawString{
		X:         p.length(n, "x", 0),
		Y:         p.length(n, "y", 0),
		Alignment: align,
		Runs:      p.inline(n),
	}
}

// lines reads whitespace or comma separated coordinates in groups of four.
func (p *parser) lines(n *node) *Lines {
	fields := strings.FieldsFunc(n.text(), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
	if len(fields)%4 != 0 {
		p.fail(n, fmt.Errorf("expected groups of four coordinates, got %d values", len(fields)))
		return &Lines{}
	}
	out := &Lines{Segments: make([]Line, 0, len(fields)/4)}
	for i := 0; i < len(fields); i += 4 {
		var v [4]float64
		for j := range v {
			l, err := ParseLength(fields[i+j])
			if err != nil {
				p.fail(n, err)
				return out
			}
			v[j] = l
		}
		out.Segments = append(out.Segments, Line{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]})
	}
	return out
}

func (p *parser) requiredColor(n *node) Color {
	v, ok := n.firstAttr("color", "colorName")
	if !ok {
		p.fail(n, errors.New("color is required"))
		return Black
	}
	return p.color(n, v)
}

func (p *parser) boolDefault(n *node, key string, def bool) bool {
	if !n.has(key) {
		return def
	}
	return p.boolean(n, key)
}

func (p *parser) lengthValue(n *node, key, v string) float64 {
	if strings.TrimSpace(v) == "" {
		return 0
	}
	l, err := ParseLength(v)
	if err != nil {
		p.fail(n, fmt.Errorf("%s: %w", key, err))
	}
	return l
}
