package pdf

import (
	"strconv"
	"strings"
	"unicode"

	"pkt.systems/rml"
)

type boundaryKind uint8

const (
	// boundaryNone glues a word to the next one.
	boundaryNone boundaryKind = iota
	boundarySpace
	// boundaryBreak allows a break without a visible space, after a hyphen
	// or between ideographs.
	boundaryBreak
	boundaryNewline
)

type dynamicText uint8

const (
	dynNone dynamicText = iota
	dynPageNumber
	dynPageCount
)

type piece struct {
	text  string
	style *textStyle
	width float64
	dyn   dynamicText
}

type word struct {
	pieces     []piece
	width      float64
	boundary   boundaryKind
	spaceWidth float64
}

type line struct {
	words  []word
	width  float64
	height float64
	size   float64
	forced bool
}

// pageCountAlias is replaced with the final page count when the document is
// written.
const pageCountAlias = "{nb}"

func classifyBoundary(r rune) boundaryKind {
	switch {
	case r == '\n':
		return boundaryNewline
	case r == '\u00a0':
		return boundaryNone
	case r == ' ' || r == '\t':
		return boundarySpace
	default:
		return boundaryNone
	}
}

// isIdeograph reports runes that may be broken between without a space.
func isIdeograph(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) ||
		(r >= 0x3000 && r <= 0x303f) || (r >= 0xff00 && r <= 0xffef)
}

// wordBuilder groups styled text into unbreakable words.
type wordBuilder struct {
	words   []word
	cur     word
	open    bool
	measure func(st *textStyle, s string) float64
}

func (b *wordBuilder) add(p piece) {
	if p.width == 0 && p.text != "" {
		p.width = b.measure(p.style, p.text)
	}
	if n := len(b.cur.pieces); n > 0 && b.cur.pieces[n-1].style == p.style && p.dyn == dynNone && b.cur.pieces[n-1].dyn == dynNone {
		last := &b.cur.pieces[n-1]
		last.text += p.text
		last.width += p.width
	} else {
		b.cur.pieces = append(b.cur.pieces, p)
	}
	b.cur.width += p.width
	b.open = true
}

func (b *wordBuilder) end(kind boundaryKind, spaceWidth float64) {
	if !b.open {
		switch {
		case kind == boundaryNewline:
			b.words = append(b.words, word{boundary: boundaryNewline})
		case len(b.words) > 0 && kind == boundarySpace:
			last := &b.words[len(b.words)-1]
			if last.boundary != boundaryNewline {
				last.boundary = boundarySpace
				last.spaceWidth = spaceWidth
			}
		}
		return
	}
	b.cur.boundary = kind
	b.cur.spaceWidth = spaceWidth
	b.words = append(b.words, b.cur)
	b.cur = word{}
	b.open = false
}

func (b *wordBuilder) finish() []word {
	if b.open {
		b.end(boundaryNone, 0)
	}
	return b.words
}

// addText splits s at break opportunities.
func (b *wordBuilder) addText(st *textStyle, s string) {
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			b.add(piece{text: buf.String(), style: st})
			buf.Reset()
		}
	}
	for _, r := range s {
		switch kind := classifyBoundary(r); {
		case kind == boundarySpace:
			flush()
			b.end(boundarySpace, b.measure(st, " "))
		case kind == boundaryNewline:
			flush()
			b.end(boundaryNewline, 0)
		case isIdeograph(r):
			flush()
			if b.open {
				b.end(boundaryBreak, 0)
			}
			buf.WriteRune(r)
			flush()
			b.end(boundaryBreak, 0)
		case r == '-' && (buf.Len() > 0 || b.open):
			buf.WriteRune(r)
			flush()
			b.end(boundaryBreak, 0)
		default:
			buf.WriteRune(r)
		}
	}
	flush()
}

// runStyle resolves the look of a run against its paragraph style.
func (l *layout) runStyle(base rml.ParaStyle, r rml.Run) (*textStyle, error) {
	name := base.FontName
	if r.FontName != "" {
		name = r.FontName
	}
	size := base.FontSize
	if r.FontSize > 0 {
		size = r.FontSize
	}
	color := base.TextColor
	if r.Color != nil {
		color = *r.Color
	}
	ref, err := l.fonts.resolve(name, r.Bold, r.Italic)
	if err != nil {
		return nil, err
	}
	st := &textStyle{
		font:      ref,
		size:      size,
		color:     color,
		underline: r.Underline,
		strike:    r.Strike,
		link:      r.Link,
	}
	switch {
	case r.Super:
		st.size = size * 0.7
		st.rise = size * 0.33
	case r.Sub:
		st.size = size * 0.7
		st.rise = -size * 0.15
	}
	return st, nil
}

func (l *layout) measure(st *textStyle, s string) float64 {
	return l.fonts.width(st.font, st.size, s)
}

// words converts runs into measured words.
func (l *layout) words(runs []rml.Run, base rml.ParaStyle) ([]word, error) {
	b := &wordBuilder{measure: l.measure}
	for _, r := range runs {
		if r.LineBreak {
			b.end(boundaryNewline, 0)
			continue
		}
		st, err := l.runStyle(base, r)
		if err != nil {
			return nil, err
		}
		switch {
		case r.PageNumber:
			b.add(piece{text: strconv.Itoa(l.pageNo()), style: st, dyn: dynPageNumber})
		case r.PageCount:
			b.add(piece{text: pageCountAlias, style: st, dyn: dynPageCount})
		default:
			b.addText(st, r.Text)
		}
	}
	return b.finish(), nil
}

// breakLines fills lines greedily. first is the width of the first line,
// rest the width of the following ones.
func breakLines(words []word, first, rest float64, measure func(*textStyle, string) float64) []line {
	var (
		lines []line
		cur   line
	)
	avail := func() float64 {
		if len(lines) == 0 {
			return first
		}
		return rest
	}
	closeLine := func() {
		lines = append(lines, cur)
		cur = line{}
	}
	for _, w := range words {
		if len(cur.words) > 0 {
			prev := cur.words[len(cur.words)-1]
			if cur.width+gapAfter(prev)+w.width > avail() {
				closeLine()
			}
		}
		if len(cur.words) == 0 && w.width > avail() && len(w.pieces) > 0 {
			parts := splitWord(w, avail(), rest, measure)
			for _, p := range parts[:len(parts)-1] {
				cur.words = []word{p}
				cur.width = p.width
				closeLine()
			}
			w = parts[len(parts)-1]
		}
		if len(cur.words) > 0 {
			cur.width += gapAfter(cur.words[len(cur.words)-1])
		}
		cur.words = append(cur.words, w)
		cur.width += w.width
		if w.boundary == boundaryNewline {
			cur.forced = true
			closeLine()
		}
	}
	if len(cur.words) > 0 {
		closeLine()
	}
	return lines
}

func gapAfter(w word) float64 {
	if w.boundary == boundarySpace {
		return w.spaceWidth
	}
	return 0
}

// splitWord cuts an overlong word rune by rune. The first part is limited to
// first, later parts to rest.
func splitWord(w word, first, rest float64, measure func(*textStyle, string) float64) []word {
	var (
		parts []word
		cur   word
		limit = first
	)
	flush := func() {
		parts = append(parts, cur)
		cur = word{}
		limit = rest
	}
	for _, p := range w.pieces {
		if p.dyn != dynNone {
			if cur.width+p.width > limit && cur.width > 0 {
				flush()
			}
			cur.pieces = append(cur.pieces, p)
			cur.width += p.width
			continue
		}
		var buf strings.Builder
		var bufW float64
		for _, r := range p.text {
			rw := measure(p.style, string(r))
			if cur.width+bufW+rw > limit && cur.width+bufW > 0 {
				if buf.Len() > 0 {
					cur.pieces = append(cur.pieces, piece{text: buf.String(), style: p.style, width: bufW})
					cur.width += bufW
					buf.Reset()
					bufW = 0
				}
				flush()
			}
			buf.WriteRune(r)
			bufW += rw
		}
		if buf.Len() > 0 {
			cur.pieces = append(cur.pieces, piece{text: buf.String(), style: p.style, width: bufW})
			cur.width += bufW
		}
	}
	cur.boundary = w.boundary
	cur.spaceWidth = w.spaceWidth
	parts = append(parts, cur)
	return parts
}

// measureLines sets height and size on each line given the paragraph
// leading.
func measureLines(lines []line, style rml.ParaStyle) {
	for i := range lines {
		ln := &lines[i]
		ln.size = style.FontSize
		ln.height = style.Leading
		for _, w := range ln.words {
			for _, p := range w.pieces {
				if p.style.size > ln.size {
					ln.size = p.style.size
				}
			}
		}
		if want := ln.size * 1.2; want > ln.height {
			ln.height = want
		}
	}
}

// layoutText breaks runs into measured lines for a box of the given width.
func (l *layout) layoutText(runs []rml.Run, style rml.ParaStyle, width float64) ([]line, error) {
	words, err := l.words(runs, style)
	if err != nil {
		return nil, err
	}
	inner := width - style.LeftIndent - style.RightIndent
	lines := breakLines(words, inner-style.FirstLineIndent, inner, l.measure)
	measureLines(lines, style)
	return lines, nil
}

// drawTextLine draws ln with its top edge at top. x is the left edge of the
// text box of width avail.
func (l *layout) drawTextLine(ln line, x, top, avail float64, align rml.Alignment, last bool) {
	baseline := top + (ln.height-ln.size)/2 + ln.size*0.8
	extra := avail - ln.width
	var stretch float64
	switch align {
	case rml.AlignRight:
		x += extra
	case rml.AlignCenter:
		x += extra / 2
	case rml.AlignJustify:
		if !last && !ln.forced && extra > 0 {
			gaps := 0
			for _, w := range ln.words[:len(ln.words)-1] {
				if w.boundary == boundarySpace {
					gaps++
				}
			}
			if gaps > 0 {
				stretch = extra / float64(gaps)
			}
		}
	}
	// Unstretched lines draw runs of equally styled words as one string.
	var (
		pending  piece
		pendingX float64
		have     bool
	)
	emit := func() {
		if have {
			l.drawPiece(pending, pendingX, baseline)
			have = false
		}
	}
	for i, w := range ln.words {
		for _, p := range w.pieces {
			if have && stretch == 0 && p.dyn == dynNone && pending.dyn == dynNone && p.style == pending.style {
				pending.text += p.text
				pending.width += p.width
			} else {
				emit()
				pending, pendingX, have = p, x, true
			}
			x += p.width
		}
		if i < len(ln.words)-1 && w.boundary == boundarySpace {
			if have && stretch == 0 && pending.dyn == dynNone {
				pending.text += " "
				pending.width += w.spaceWidth
			} else {
				emit()
			}
			x += w.spaceWidth + stretch
		}
	}
	emit()
}

func (l *layout) drawPiece(p piece, x, baseline float64) {
	st := p.style
	text := p.text
	if p.dyn == dynPageNumber {
		text = strconv.Itoa(l.pageNo())
	}
	if text == "" {
		return
	}
	y := baseline - st.rise
	l.fonts.set(st.font, st.size, st.underline)
	setTextColor(l.pdf, st.color)
	l.pdf.Text(x, y, l.fonts.encode(st.font, text))
	if st.strike {
		setDrawColor(l.pdf, st.color)
		l.pdf.SetLineWidth(st.size * 0.05)
		l.pdf.Line(x, y-st.size*0.3, x+p.width, y-st.size*0.3)
	}
	if st.link != "" && p.width > 0 {
		l.pdf.LinkString(x, y-st.size, p.width, st.size*1.2, st.link)
	}
}
