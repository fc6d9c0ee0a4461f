package pdf

import (
	"math"

	"pkt.systems/rml"
)

// cellBox is the resolved style and content of one table cell.
type cellBox struct {
	style  rml.ParaStyle
	valign rml.VAlign
	bg     *rml.Color
	pad    [4]float64 // left, right, top, bottom
	lines  []line
	flows  []rml.Flowable
	height float64
}

type tableLayout struct {
	t      *rml.Table
	cols   int
	widths []float64
	cells  [][]cellBox
	rowH   []float64
	width  float64
}

// columnWidths distributes avail among columns without a fixed width.
func columnWidths(t *rml.Table, cols int, avail float64) []float64 {
	widths := make([]float64, cols)
	var fixed float64
	auto := 0
	for i := range widths {
		if i < len(t.ColWidths) && t.ColWidths[i] > 0 {
			widths[i] = t.ColWidths[i]
			fixed += widths[i]
			continue
		}
		auto++
	}
	if auto == 0 {
		return widths
	}
	share := (avail - fixed) / float64(auto)
	if share <= 0 {
		share = avail / float64(cols)
	}
	for i := range widths {
		if widths[i] == 0 {
			widths[i] = share
		}
	}
	return widths
}

func (l *layout) cellStyle(t *rml.Table, col, row, cols, rows int) cellBox {
	base, _ := l.doc.Stylesheet.Para("Normal")
	c := cellBox{style: base, valign: rml.VAlignTop, pad: [4]float64{6, 6, 3, 3}}
	for _, cmd := range t.Style.Commands {
		if !cmd.Contains(col, row, cols, rows) {
			continue
		}
		switch cmd.Op {
		case rml.OpFont:
			if cmd.FontName != "" {
				c.style.FontName = cmd.FontName
			}
			if cmd.FontSize > 0 {
				c.style.FontSize = cmd.FontSize
				c.style.Leading = cmd.FontSize * 1.2
			}
			if cmd.Leading > 0 {
				c.style.Leading = cmd.Leading
			}
		case rml.OpTextColor:
			c.style.TextColor = cmd.Color
		case rml.OpBackground:
			bg := cmd.Color
			c.bg = &bg
		case rml.OpAlignment:
			c.style.Alignment = cmd.Alignment
		case rml.OpVAlign:
			c.valign = cmd.VAlign
		case rml.OpPadding:
			switch cmd.PaddingSide {
			case "left":
				c.pad[0] = cmd.Padding
			case "right":
				c.pad[1] = cmd.Padding
			case "top":
				c.pad[2] = cmd.Padding
			case "bottom":
				c.pad[3] = cmd.Padding
			default:
				c.pad = [4]float64{cmd.Padding, cmd.Padding, cmd.Padding, cmd.Padding}
			}
		}
	}
	c.style.SpaceBefore, c.style.SpaceAfter = 0, 0
	return c
}

// layoutTable measures every cell. Rows without a fixed height grow to their
// tallest cell.
func (l *layout) layoutTable(t *rml.Table, avail float64) (*tableLayout, error) {
	cols := t.Columns()
	rows := len(t.Rows)
	tl := &tableLayout{t: t, cols: cols, widths: columnWidths(t, cols, avail), rowH: make([]float64, rows)}
	for _, w := range tl.widths {
		tl.width += w
	}
	tl.cells = make([][]cellBox, rows)
	for r := 0; r < rows; r++ {
		tl.cells[r] = make([]cellBox, cols)
		var rowH float64
		for c := 0; c < cols; c++ {
			cb := l.cellStyle(t, c, r, cols, rows)
			inner := tl.widths[c] - cb.pad[0] - cb.pad[1]
			if c < len(t.Rows[r]) {
				cell := t.Rows[r][c]
				if len(cell.Flowables) > 0 {
					cb.flows = cell.Flowables
					h, err := l.measureFlowables(cell.Flowables, inner)
					if err != nil {
						return nil, err
					}
					cb.height = h
				} else {
					runs := cell.Runs
					if cell.Header {
						runs = boldRuns(runs)
					}
					lines, err := l.layoutText(runs, cb.style, inner)
					if err != nil {
						return nil, err
					}
					cb.lines = lines
					for _, ln := range lines {
						cb.height += ln.height
					}
				}
			}
			if cb.height == 0 {
				cb.height = cb.style.Leading
			}
			rowH = math.Max(rowH, cb.height+cb.pad[2]+cb.pad[3])
			tl.cells[r][c] = cb
		}
		if r < len(t.RowHeights) && t.RowHeights[r] > 0 {
			rowH = t.RowHeights[r]
		}
		tl.rowH[r] = rowH
	}
	return tl, nil
}

func (l *layout) measureTable(t *rml.Table, width float64) (float64, error) {
	tl, err := l.layoutTable(t, width)
	if err != nil {
		return 0, err
	}
	var h float64
	for _, rh := range tl.rowH {
		h += rh
	}
	return h, nil
}

// table draws rows top to bottom, repeating header rows after each frame
// break.
func (l *layout) table(t *rml.Table) error {
	tl, err := l.layoutTable(t, l.box.width())
	if err != nil {
		return err
	}
	for r := range t.Rows {
		if l.y+tl.rowH[r] > l.box.bottom && !l.atTop {
			if err := l.nextFrame(); err != nil {
				return err
			}
			if r >= t.RepeatRows {
				for hr := 0; hr < t.RepeatRows; hr++ {
					if err := l.tableRow(tl, hr); err != nil {
						return err
					}
				}
			}
		}
		if err := l.tableRow(tl, r); err != nil {
			return err
		}
	}
	return nil
}

func (l *layout) tableRow(tl *tableLayout, r int) error {
	x0 := l.box.left + (l.box.width()-tl.width)/2
	if tl.width > l.box.width() {
		x0 = l.box.left
	}
	top := l.y
	h := tl.rowH[r]
	x := x0
	for c := 0; c < tl.cols; c++ {
		cb := tl.cells[r][c]
		w := tl.widths[c]
		if cb.bg != nil {
			setFillColor(l.pdf, *cb.bg)
			l.pdf.Rect(x, top, w, h, "F")
		}
		inner := box{left: x + cb.pad[0], right: x + w - cb.pad[1], top: top + cb.pad[2], bottom: top + h - cb.pad[3]}
		offset := 0.0
		switch cb.valign {
		case rml.VAlignMiddle:
			offset = (inner.bottom - inner.top - cb.height) / 2
		case rml.VAlignBottom:
			offset = inner.bottom - inner.top - cb.height
		}
		if offset < 0 {
			offset = 0
		}
		if len(cb.flows) > 0 {
			inner.top += offset
			if err := l.withBox(inner, "table cell", func() error {
				for _, f := range cb.flows {
					if err := l.place(f); err != nil {
						return err
					}
				}
				return nil
			}); err != nil {
				return err
			}
		} else {
			y := inner.top + offset
			for i, ln := range cb.lines {
				l.drawTextLine(ln, inner.left, y, inner.width(), cb.style.Alignment, i == len(cb.lines)-1)
				y += ln.height
			}
		}
		x += w
	}
	l.tableRules(tl, r, x0, top, h)
	l.advance(h)
	return nil
}

// tableRules strokes the line commands that touch row r.
func (l *layout) tableRules(tl *tableLayout, r int, x0, top, h float64) {
	rows := len(tl.t.Rows)
	bottom := top + h
	for _, cmd := range tl.t.Style.Commands {
		c0, r0, c1, r1, ok := cmd.Range(tl.cols, rows)
		if !ok || r < r0 || r > r1 {
			continue
		}
		switch cmd.Op {
		case rml.OpGrid, rml.OpBox, rml.OpInnerGrid, rml.OpLineAbove, rml.OpLineBelow, rml.OpLineBefore, rml.OpLineAfter:
		default:
			continue
		}
		setDrawColor(l.pdf, cmd.Color)
		l.pdf.SetLineWidth(cmd.Thickness)
		l.pdf.SetDashPattern(nil, 0)
		x := x0
		for c := 0; c < tl.cols; c++ {
			left, right := x, x+tl.widths[c]
			x = right
			if c < c0 || c > c1 {
				continue
			}
			var above, below, before, after bool
			switch cmd.Op {
			case rml.OpGrid:
				above, below, before, after = true, true, true, true
			case rml.OpBox:
				above, below, before, after = r == r0, r == r1, c == c0, c == c1
			case rml.OpInnerGrid:
				above, before = r > r0, c > c0
			case rml.OpLineAbove:
				above = true
			case rml.OpLineBelow:
				below = true
			case rml.OpLineBefore:
				before = true
			case rml.OpLineAfter:
				after = true
			}
			if above {
				l.pdf.Line(left, top, right, top)
			}
			if below {
				l.pdf.Line(left, bottom, right, bottom)
			}
			if before {
				l.pdf.Line(left, top, left, bottom)
			}
			if after {
				l.pdf.Line(right, top, right, bottom)
			}
		}
	}
}

func boldRuns(runs []rml.Run) []rml.Run {
	out := make([]rml.Run, len(runs))
	for i, r := range runs {
		r.Bold = true
		out[i] = r
	}
	return out
}
