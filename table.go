package rml

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var tableOps = map[string]TableOp{
	"blockFont":          OpFont,
	"blockTextColor":     OpTextColor,
	"blockBackground":    OpBackground,
	"blockAlignment":     OpAlignment,
	"blockValign":        OpVAlign,
	"blockLeftPadding":   OpPadding,
	"blockRightPadding":  OpPadding,
	"blockTopPadding":    OpPadding,
	"blockBottomPadding": OpPadding,
}

var lineKinds = map[string]TableOp{
	"GRID":       OpGrid,
	"BOX":        OpBox,
	"OUTLINE":    OpBox,
	"INNERGRID":  OpInnerGrid,
	"LINEABOVE":  OpLineAbove,
	"LINEBELOW":  OpLineBelow,
	"LINEBEFORE": OpLineBefore,
	"LINEAFTER":  OpLineAfter,
}

func (p *parser) tableStyle(n *node) TableStyle {
	style := TableStyle{ID: n.attr("id")}
	if style.ID == "" {
		style.ID = n.attr("name")
	}
	for _, c := range n.children() {
		if cmd, ok := p.tableCommand(c); ok {
			style.Commands = append(style.Commands, cmd)
		}
	}
	return style
}

func (p *parser) tableCommand(n *node) (TableCommand, bool) {
	cmd := TableCommand{
		Start: p.cell(n, "start", Cell{0, 0}),
		Stop:  p.cell(n, "stop", Cell{-1, -1}),
	}
	if n.name == "lineStyle" {
		kind := strings.ToUpper(strings.TrimSpace(n.attr("kind")))
		op, ok := lineKinds[kind]
		if !ok {
			p.fail(n, fmt.Errorf("unknown line kind %q", n.attr("kind")))
			return cmd, false
		}
		cmd.Op = op
		cmd.Color = Black
		if v, ok := n.firstAttr("colorName", "color"); ok {
			cmd.Color = p.color(n, v)
		}
		cmd.Thickness = p.length(n, "thickness", 1)
		return cmd, true
	}
	op, ok := tableOps[n.name]
	if !ok {
		p.skip(n)
		return cmd, false
	}
	cmd.Op = op
	switch op {
	case OpFont:
		cmd.FontName, _ = n.firstAttr("name", "fontName")
		cmd.FontSize = p.length(n, "size", 0)
		cmd.Leading = p.length(n, "leading", 0)
	case OpTextColor, OpBackground:
		v, _ := n.firstAttr("colorName", "color")
		cmd.Color = p.color(n, v)
	case OpAlignment:
		a, err := ParseAlignment(n.attr("value"))
		if err != nil {
			p.fail(n, err)
		}
		cmd.Alignment = a
	case OpVAlign:
		v, err := ParseVAlign(n.attr("value"))
		if err != nil {
			p.fail(n, err)
		}
		cmd.VAlign = v
	case OpPadding:
		cmd.Padding = p.length(n, "length", 0)
		cmd.PaddingSide = strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(n.name, "block"), "Padding"))
	}
	return cmd, true
}

func (p *parser) cell(n *node, key string, def Cell) Cell {
	v, ok := n.attrs[key]
	if !ok {
		return def
	}
	c, err := parseCell(v)
	if err != nil {
		p.fail(n, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return c
}

func parseCell(v string) (Cell, error) {
	v = strings.Trim(strings.TrimSpace(v), "()[]")
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return Cell{}, fmt.Errorf("invalid cell %q", v)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Cell{}, fmt.Errorf("invalid cell %q", v)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Cell{}, fmt.Errorf("invalid cell %q", v)
	}
	return Cell{Col: col, Row: row}, nil
}

func (p *parser) table(n *node) *Table {
	t := &Table{}
	if v := n.attr("colWidths"); v != "" {
		widths, err := ParseLengths(v)
		if err != nil {
			p.fail(n, err)
		}
		t.ColWidths = widths
	}
	if v := n.attr("rowHeights"); v != "" {
		heights, err := ParseLengths(v)
		if err != nil {
			p.fail(n, err)
		}
		t.RowHeights = heights
	}
	if v := n.attr("repeatRows"); v != "" {
		rows, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || rows < 0 {
			p.fail(n, fmt.Errorf("invalid repeatRows %q", v))
		}
		t.RepeatRows = rows
	}
	if id := n.attr("style"); id != "" {
		style, ok := p.doc.Stylesheet.Table(id)
		if !ok {
			p.fail(n, fmt.Errorf("unknown table style %q", id))
		}
		t.Style = TableStyle{ID: style.ID, Commands: slices.Clone(style.Commands)}
	}
	for _, c := range n.children() {
		switch c.name {
		case "blockTableStyle", "tableStyle":
			inline := p.tableStyle(c)
			t.Style.Commands = append(t.Style.Commands, inline.Commands...)
		case "tr":
			t.Rows = append(t.Rows, p.tableRow(c))
		default:
			p.skip(c)
		}
	}
	if len(t.Rows) == 0 {
		p.fail(n, errors.New("table has no rows"))
	}
	if t.RepeatRows > len(t.Rows) {
		t.RepeatRows = len(t.Rows)
	}
	return t
}

func (p *parser) tableRow(n *node) []TableCell {
	var row []TableCell
	for _, c := range n.children() {
		if c.name != "td" && c.name != "th" {
			p.skip(c)
			continue
		}
		cell := TableCell{Header: c.name == "th"}
		if hasFlowableChild(c) {
			cell.Flowables = p.flowables(c)
		} else {
			cell.Runs = p.inline(c)
		}
		row = append(row, cell)
	}
	return row
}

var cellFlowables = map[string]bool{
	"para": true, "title": true, "h1": true, "h2": true, "h3": true,
	"pre": true, "xpre": true, "spacer": true, "image": true,
	"blockTable": true, "hr": true,
}

func hasFlowableChild(n *node) bool {
	for _, c := range n.children() {
		if cellFlowables[c.name] {
			return true
		}
	}
	return false
}
