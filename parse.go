package rml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse reads an RML document.
func Parse(r io.Reader) (*Document, error) {
	if r == nil {
		return nil, errors.New("rml: reader is nil")
	}
	root, err := readTree(r)
	if err != nil {
		return nil, err
	}
	if root.name != "document" {
		return nil, &ParseError{Line: root.line, Element: root.name, Err: errors.New("root element must be <document>")}
	}
	p := &parser{doc: &Document{Stylesheet: DefaultStylesheet()}}
	p.document(root)
	if p.err != nil {
		return nil, p.err
	}
	return p.doc, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(src string) (*Document, error) {
	return Parse(strings.NewReader(src))
}

// ParseBytes is Parse over a byte slice.
func ParseBytes(src []byte) (*Document, error) {
	return Parse(bytes.NewReader(src))
}

// parser walks the element tree. The first error sticks and later helpers
// return zero values, so callers check p.err once at the end.
type parser struct {
	doc *Document
	err error
}

func (p *parser) fail(n *node, err error) {
	if p.err != nil {
		return
	}
	p.err = &ParseError{Line: n.line, Element: n.name, Err: err}
}

func (p *parser) skip(n *node) {
	p.doc.Skipped = append(p.doc.Skipped, n.name)
}

func (p *parser) document(root *node) {
	if v, ok := root.firstAttr("pageSize"); ok {
		p.doc.Template.PageSize = p.pageSize(root, v)
	}
	p.doc.Filename = root.attr("filename")
	children := documentChildren(root)
	// Styles and templates are referenced by the story, so they are read first
	// regardless of where they appear.
	for _, c := range children {
		if c.name == "stylesheet" {
			p.stylesheet(c)
		}
	}
	for _, c := range children {
		switch c.name {
		case "docinit":
			p.docinit(c)
		case "template":
			p.template(c)
		}
	}
	for _, c := range children {
		switch c.name {
		case "stylesheet", "docinit", "template":
		case "story":
			p.doc.FirstTemplate = c.attr("firstPageTemplate")
			if p.doc.FirstTemplate != "" {
				if _, ok := p.doc.Template.PageTemplateByID(p.doc.FirstTemplate); !ok {
					p.fail(c, fmt.Errorf("unknown page template %q", p.doc.FirstTemplate))
				}
			}
			p.doc.Story = append(p.doc.Story, p.flowables(c)...)
		default:
			p.skip(c)
		}
	}
}

// documentChildren returns the children of root with any <pdf> wrapper
// elements replaced by their own children.
func documentChildren(root *node) []*node {
	var out []*node
	for _, c := range root.children() {
		if c.name == "pdf" {
			out = append(out, documentChildren(c)...)
			continue
		}
		out = append(out, c)
	}
	return out
}

func (p *parser) docinit(n *node) {
	for _, c := range n.children() {
		switch c.name {
		case "registerTTFont":
			face, _ := c.firstAttr("faceName", "fontName")
			file, _ := c.firstAttr("fileName", "fontFile")
			if face == "" || file == "" {
				p.fail(c, errors.New("faceName and fileName are required"))
				continue
			}
			p.doc.DocInit.Fonts = append(p.doc.DocInit.Fonts, FontRegistration{Kind: FontTrueType, FaceName: face, FileName: file})
		case "registerCIDFont":
			face, _ := c.firstAttr("faceName", "fontName")
			if face == "" {
				p.fail(c, errors.New("faceName is required"))
				continue
			}
			p.doc.DocInit.Fonts = append(p.doc.DocInit.Fonts, FontRegistration{Kind: FontCID, FaceName: face})
		case "registerFont", "registerType1Face":
			face, _ := c.firstAttr("fontName", "name", "faceName")
			file, _ := c.firstAttr("fontFile", "afmFile", "pfbFile")
			p.doc.DocInit.Fonts = append(p.doc.DocInit.Fonts, FontRegistration{Kind: FontType1, FaceName: face, FileName: file})
		default:
			p.skip(c)
		}
	}
}

func (p *parser) template(n *node) {
	t := &p.doc.Template
	if v, ok := n.firstAttr("pageSize"); ok {
		t.PageSize = p.pageSize(n, v)
	}
	t.Title = n.attr("title")
	t.Author = n.attr("author")
	t.Subject = n.attr("subject")
	t.ShowBoundary = p.boolean(n, "showBoundary")
	for _, c := range n.children() {
		if c.name != "pageTemplate" {
			p.skip(c)
			continue
		}
		t.Pages = append(t.Pages, p.pageTemplate(c))
	}
}

func (p *parser) pageTemplate(n *node) PageTemplate {
	pt := PageTemplate{ID: n.attr("id")}
	if v, ok := n.firstAttr("pageSize"); ok {
		pt.PageSize = p.pageSize(n, v)
	}
	for _, c := range n.children() {
		switch c.name {
		case "frame":
			pt.Frames = append(pt.Frames, p.frame(c))
		case "pageGraphics":
			pt.Graphics = append(pt.Graphics, p.graphics(c)...)
		default:
			p.skip(c)
		}
	}
	return pt
}

func (p *parser) frame(n *node) Frame {
	pad := p.length(n, "padding", DefaultFramePadding)
	f := Frame{
		ID:            n.attr("id"),
		X1:            p.length(n, "x1", 0),
		Y1:            p.length(n, "y1", 0),
		Width:         p.length(n, "width", 0),
		Height:        p.length(n, "height", 0),
		LeftPadding:   p.length(n, "leftPadding", pad),
		RightPadding:  p.length(n, "rightPadding", pad),
		TopPadding:    p.length(n, "topPadding", pad),
		BottomPadding: p.length(n, "bottomPadding", pad),
		ShowBoundary:  p.boolean(n, "showBoundary"),
	}
	if f.Width <= 0 || f.Height <= 0 {
		p.fail(n, errors.New("frame width and height must be positive"))
	}
	return f
}

func (p *parser) stylesheet(n *node) {
	for _, c := range n.children() {
		switch c.name {
		case "paraStyle":
			p.paraStyle(c)
		case "blockTableStyle", "tableStyle":
			p.doc.Stylesheet.SetTable(p.tableStyle(c))
		default:
			p.skip(c)
		}
	}
}

func (p *parser) paraStyle(n *node) {
	name := n.attr("name")
	if name == "" {
		p.fail(n, errors.New("name is required"))
		return
	}
	sheet := p.doc.Stylesheet
	base, ok := sheet.Para(name)
	parent := n.attr("parent")
	switch {
	case parent != "":
		pbase, found := sheet.Para(parent)
		if !found {
			p.fail(n, fmt.Errorf("unknown parent style %q", parent))
			return
		}
		base = pbase
	case !ok:
		base, _ = sheet.Para("Normal")
		parent = "Normal"
	default:
		parent = base.Parent
	}
	style := base
	style.Name = name
	style.Parent = parent
	p.applyParaAttrs(&style, n)
	sheet.SetPara(style)
}

// applyParaAttrs overrides style fields with attributes present on n. It is
// shared by paraStyle definitions and inline overrides on para elements.
func (p *parser) applyParaAttrs(style *ParaStyle, n *node) {
	if v, ok := n.firstAttr("fontName"); ok {
		style.FontName = v
	}
	if n.has("fontSize") {
		size := p.length(n, "fontSize", style.FontSize)
		if !n.has("leading") && style.FontSize > 0 && style.Leading < size*1.2 {
			style.Leading = size * 1.2
		}
		style.FontSize = size
	}
	style.Leading = p.length(n, "leading", style.Leading)
	if v, ok := n.firstAttr("textColor", "color"); ok {
		style.TextColor = p.color(n, v)
	}
	if v, ok := n.firstAttr("backColor"); ok {
		c := p.color(n, v)
		style.BackColor = &c
	}
	if v, ok := n.firstAttr("alignment", "align"); ok {
		a, err := ParseAlignment(v)
		if err != nil {
			p.fail(n, err)
		}
		style.Alignment = a
	}
	style.SpaceBefore = p.length(n, "spaceBefore", style.SpaceBefore)
	style.SpaceAfter = p.length(n, "spaceAfter", style.SpaceAfter)
	style.LeftIndent = p.length(n, "leftIndent", style.LeftIndent)
	style.RightIndent = p.length(n, "rightIndent", style.RightIndent)
	style.FirstLineIndent = p.length(n, "firstLineIndent", style.FirstLineIndent)
}

func (p *parser) paraStyleRef(n *node, fallback string) ParaStyle {
	name := n.attr("style")
	if name == "" {
		name = fallback
	}
	style, ok := p.doc.Stylesheet.Para(name)
	if !ok {
		p.fail(n, errUnknownStyle(name))
		style, _ = p.doc.Stylesheet.Para("Normal")
	}
	return style
}

func errUnknownStyle(name string) error {
	return fmt.Errorf("unknown style %q", name)
}

var headingStyles = map[string]string{
	"title": "Title",
	"h1":    "Heading1",
	"h2":    "Heading2",
	"h3":    "Heading3",
	"h4":    "Heading3",
	"h5":    "Heading3",
	"h6":    "Heading3",
}

func (p *parser) flowables(n *node) []Flowable {
	var out []Flowable
	for _, c := range n.children() {
		if f := p.flowable(c); f != nil {
			out = append(out, f)
		}
	}
	return out
}

func (p *parser) flowable(n *node) Flowable {
	switch n.name {
	case "para":
		style := p.paraStyleRef(n, "Normal")
		p.applyParaAttrs(&style, n)
		return &Paragraph{Style: style, Runs: p.inline(n)}
	case "title", "h1", "h2", "h3", "h4", "h5", "h6":
		style := p.paraStyleRef(n, headingStyles[n.name])
		return &Paragraph{Style: style, Runs: p.inline(n)}
	case "pre", "xpre":
		style := p.paraStyleRef(n, "Code")
		return &Preformatted{Style: style, Lines: preformattedLines(n.text())}
	case "spacer":
		return &Spacer{Length: p.length(n, "length", 0)}
	case "image":
		return p.image(n)
	case "blockTable":
		return p.table(n)
	case "hr":
		return p.hrule(n)
	case "condPageBreak":
		return &CondPageBreak{Height: p.length(n, "height", 0)}
	case "nextFrame":
		return &NextFrame{Name: n.attr("name")}
	case "nextPage", "pageBreak":
		return &NextPage{}
	case "setNextTemplate":
		name := n.attr("name")
		if _, ok := p.doc.Template.PageTemplateByID(name); !ok {
			p.fail(n, fmt.Errorf("unknown page template %q", name))
		}
		return &SetNextTemplate{Name: name}
	case "keepInFrame", "keepTogether":
		return &KeepInFrame{Content: p.flowables(n)}
	default:
		p.skip(n)
		return nil
	}
}

func (p *parser) image(n *node) *Image {
	file, _ := n.firstAttr("file", "src")
	if file == "" {
		p.fail(n, errors.New("file is required"))
	}
	img := &Image{
		File:   file,
		Width:  p.length(n, "width", 0),
		Height: p.length(n, "height", 0),
	}
	if v, ok := n.firstAttr("align"); ok {
		a, err := ParseAlignment(v)
		if err != nil {
			p.fail(n, err)
		}
		img.Alignment = a
	}
	return img
}

func (p *parser) hrule(n *node) *HRule {
	hr := &HRule{
		WidthFraction: 1,
		Thickness:     p.length(n, "thickness", 1),
		Color:         Black,
		SpaceBefore:   p.length(n, "spaceBefore", 1),
		SpaceAfter:    p.length(n, "spaceAfter", 1),
		Alignment:     AlignCenter,
	}
	if v := strings.TrimSpace(n.attr("width")); v != "" {
		if strings.HasSuffix(v, "%") {
			pct, err := ParseLength(strings.TrimSuffix(v, "%"))
			if err != nil {
				p.fail(n, err)
			}
			hr.WidthFraction = pct / 100
		} else {
			hr.WidthFraction = 0
			hr.Width = p.length(n, "width", 0)
		}
	}
	if v, ok := n.firstAttr("color"); ok {
		hr.Color = p.color(n, v)
	}
	if v, ok := n.firstAttr("align"); ok {
		a, err := ParseAlignment(v)
		if err != nil {
			p.fail(n, err)
		}
		hr.Alignment = a
	}
	return hr
}

func (p *parser) pageSize(n *node, v string) Size {
	size, err := ParsePageSize(v)
	if err != nil {
		p.fail(n, err)
	}
	return size
}

func (p *parser) length(n *node, key string, def float64) float64 {
	v, ok := n.attrs[key]
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	l, err := ParseLength(v)
	if err != nil {
		p.fail(n, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return l
}

func (p *parser) boolean(n *node, key string) bool {
	v, ok := n.attrs[key]
	if !ok {
		return false
	}
	b, err := ParseBool(v)
	if err != nil {
		p.fail(n, fmt.Errorf("%s: %w", key, err))
	}
	return b
}

func (p *parser) color(n *node, v string) Color {
	c, err := ParseColor(v)
	if err != nil {
		p.fail(n, err)
	}
	return c
}

// preformattedLines removes the common indentation and surrounding blank
// lines from a pre block.
func preformattedLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	lines := strings.Split(text, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " "))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, l := range lines {
		if len(l) >= indent && indent > 0 {
			lines[i] = l[indent:]
		}
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return lines
}
