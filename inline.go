package rml

import (
	"strings"
	"unicode"
)

type inlineState struct {
	bold      bool
	italic    bool
	underline bool
	strike    bool
	super     bool
	sub       bool
	fontName  string
	fontSize  float64
	color     *Color
	link      string
}

func (s inlineState) run(text string) Run {
	return Run{
		Text:      text,
		FontName:  s.fontName,
		FontSize:  s.fontSize,
		Color:     s.color,
		Bold:      s.bold,
		Italic:    s.italic,
		Underline: s.underline,
		Strike:    s.strike,
		Super:     s.super,
		Sub:       s.sub,
		Link:      s.link,
	}
}

// inline collects the runs of a mixed-content element and normalises
// whitespace the way XML paragraphs are displayed: runs of whitespace become a
// single space and the paragraph is trimmed at both ends and around breaks.
func (p *parser) inline(n *node) []Run {
	runs := p.collectRuns(n, inlineState{}, nil)
	return normalizeRuns(runs)
}

func (p *parser) collectRuns(n *node, st inlineState, out []Run) []Run {
	for _, it := range n.items {
		if it.node == nil {
			if it.text != "" {
				out = append(out, st.run(it.text))
			}
			continue
		}
		c := it.node
		next := st
		switch c.name {
		case "b", "strong":
			next.bold = true
		case "i", "em":
			next.italic = true
		case "u":
			next.underline = true
		case "strike", "s":
			next.strike = true
		case "sup", "super":
			next.super, next.sub = true, false
		case "sub":
			next.sub, next.super = true, false
		case "font":
			if v, ok := c.firstAttr("face", "name", "fontName"); ok {
				next.fontName = v
			}
			next.fontSize = p.length(c, "size", next.fontSize)
			if v, ok := c.firstAttr("color", "fg", "textColor"); ok {
				col := p.color(c, v)
				next.color = &col
			}
		case "span":
			if name := c.attr("style"); name != "" {
				if style, ok := p.doc.Stylesheet.Para(name); ok {
					next.fontName = style.FontName
					next.fontSize = style.FontSize
					col := style.TextColor
					next.color = &col
				} else {
					p.fail(c, errUnknownStyle(name))
				}
			}
			if v, ok := c.firstAttr("fontName", "face"); ok {
				next.fontName = v
			}
			next.fontSize = p.length(c, "fontSize", next.fontSize)
			if v, ok := c.firstAttr("textColor", "color"); ok {
				col := p.color(c, v)
				next.color = &col
			}
		case "a", "link":
			if v, ok := c.firstAttr("href", "destination"); ok {
				next.link = v
			}
			if v, ok := c.firstAttr("color"); ok {
				col := p.color(c, v)
				next.color = &col
			}
		case "br":
			r := st.run("")
			r.LineBreak = true
			out = append(out, r)
			continue
		case "pageNumber":
			r := st.run("")
			r.PageNumber = true
			out = append(out, r)
			continue
		case "pageCount":
			r := st.run("")
			r.PageCount = true
			out = append(out, r)
			continue
		default:
			p.skip(c)
		}
		out = p.collectRuns(c, next, out)
	}
	return out
}

func normalizeRuns(runs []Run) []Run {
	out := runs[:0]
	lastSpace := true
	for _, r := range runs {
		if r.LineBreak {
			if n := len(out); n > 0 && !out[n-1].LineBreak {
				out[n-1].Text = strings.TrimRightFunc(out[n-1].Text, unicode.IsSpace)
			}
			out = append(out, r)
			lastSpace = true
			continue
		}
		if r.PageNumber || r.PageCount {
			out = append(out, r)
			lastSpace = false
			continue
		}
		r.Text = collapseSpace(r.Text, lastSpace)
		if r.Text == "" {
			continue
		}
		lastSpace = strings.HasSuffix(r.Text, " ")
		out = append(out, r)
	}
	for n := len(out); n > 0; n = len(out) {
		last := &out[n-1]
		if last.PageNumber || last.PageCount || last.LineBreak {
			break
		}
		last.Text = strings.TrimRight(last.Text, " ")
		if last.Text != "" {
			break
		}
		out = out[:n-1]
	}
	return out
}

// collapseSpace replaces whitespace runs with one space, dropping a leading
// space when the preceding text already ended with one. No-break spaces are
// kept.
func collapseSpace(s string, trimLeading bool) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := trimLeading
	for _, r := range s {
		if r != '\u00a0' && unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		b.WriteRune(r)
		inSpace = false
	}
	return b.String()
}
