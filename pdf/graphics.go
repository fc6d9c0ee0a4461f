package pdf

import (
	"fmt"

	"pkt.systems/rml"
)

// canvasState is the graphics state of a page template's drawing. It starts
// fresh on every page.
type canvasState struct {
	font    string
	size    float64
	leading float64
	fill    rml.Color
	stroke  rml.Color
}

func rectStyle(fill, stroke bool) string {
	switch {
	case fill && stroke:
		return "FD"
	case fill:
		return "F"
	case stroke:
		return "D"
	default:
		return ""
	}
}

func (l *layout) drawGraphics(ops []rml.GraphicsOp) error {
	st := canvasState{font: "Helvetica", size: 12, leading: 14.4, fill: rml.Black, stroke: rml.Black}
	l.pdf.SetLineWidth(1)
	l.pdf.SetDashPattern(nil, 0)
	for _, op := range ops {
		if err := l.drawOp(&st, op); err != nil {
			return err
		}
	}
	return nil
}

func (l *layout) drawOp(st *canvasState, op rml.GraphicsOp) error {
	h := l.pageH
	switch op := op.(type) {
	case *rml.SetFont:
		st.font, st.size, st.leading = op.Name, op.Size, op.Leading
	case *rml.Fill:
		st.fill = op.Color
	case *rml.Stroke:
		st.stroke = op.Color
	case *rml.LineMode:
		l.pdf.SetLineWidth(op.Width)
		l.pdf.SetDashPattern(op.Dash, 0)
	case *rml.DrawString:
		return l.drawString(st, op)
	case *rml.Rect:
		style := rectStyle(op.Fill, op.Stroke)
		if style == "" {
			return nil
		}
		setFillColor(l.pdf, st.fill)
		setDrawColor(l.pdf, st.stroke)
		top := h - (op.Y + op.Height)
		if op.Round > 0 {
			l.pdf.RoundedRect(op.X, top, op.Width, op.Height, op.Round, "1234", style)
			return nil
		}
		l.pdf.Rect(op.X, top, op.Width, op.Height, style)
	case *rml.Circle:
		style := rectStyle(op.Fill, op.Stroke)
		if style == "" {
			return nil
		}
		setFillColor(l.pdf, st.fill)
		setDrawColor(l.pdf, st.stroke)
		l.pdf.Circle(op.X, h-op.Y, op.Radius, style)
	case *rml.Line:
		setDrawColor(l.pdf, st.stroke)
		l.pdf.Line(op.X1, h-op.Y1, op.X2, h-op.Y2)
	case *rml.Lines:
		setDrawColor(l.pdf, st.stroke)
		for _, s := range op.Segments {
			l.pdf.Line(s.X1, h-s.Y1, s.X2, h-s.Y2)
		}
	case *rml.DrawImage:
		path, opts, w, ih, err := l.imageSize(op.File, op.Width, op.Height)
		if err != nil {
			return err
		}
		l.pdf.ImageOptions(path, op.X, h-op.Y-ih, w, ih, false, opts, 0, "")
	case *rml.Place:
		b := box{left: op.X, right: op.X + op.Width, top: h - (op.Y + op.Height), bottom: h - op.Y}
		return l.withBox(b, "place", func() error {
			for _, f := range op.Content {
				if err := l.place(f); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		return fmt.Errorf("unsupported graphics operation %T", op)
	}
	return nil
}

// drawString renders one line anchored at the op's point. Inline markup is
// honoured; the text color is the current fill color.
func (l *layout) drawString(st *canvasState, op *rml.DrawString) error {
	base := rml.ParaStyle{FontName: st.font, FontSize: st.size, Leading: st.leading, TextColor: st.fill}
	words, err := l.words(op.Runs, base)
	if err != nil {
		return err
	}
	var width float64
	for i, w := range words {
		width += w.width
		if i < len(words)-1 {
			width += gapAfter(w)
		}
	}
	x := op.X
	switch op.Alignment {
	case rml.AlignCenter:
		x -= width / 2
	case rml.AlignRight:
		x -= width
	}
	baseline := l.pageH - op.Y
	for i, w := range words {
		for _, p := range w.pieces {
			l.drawPiece(p, x, baseline)
			x += p.width
		}
		if i < len(words)-1 {
			x += gapAfter(w)
		}
	}
	return nil
}
