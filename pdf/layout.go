package pdf

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"pkt.systems/rml"
)

// errFrameFull stops placement inside fixed boxes that cannot advance to
// another frame.
var errFrameFull = errors.New("frame full")

// box is a rectangle in writer coordinates, origin top-left.
type box struct {
	left, top, right, bottom float64
}

func (b box) width() float64 { return b.right - b.left }

type frameState struct {
	box   box
	y     float64
	atTop bool
	fixed bool
}

// layout flows a story through page templates.
type layout struct {
	pdf   *fpdf.Fpdf
	doc   *rml.Document
	cfg   Config
	fonts *fontBook
	log   *slog.Logger

	defaultSize rml.Size
	current     *rml.PageTemplate
	next        *rml.PageTemplate
	pageH       float64
	frameIdx    int
	pageEmpty   bool

	frameState

	boundaryLayer int
	boundaryReady bool
	images        map[string]fpdf.ImageOptions
}

func newLayout(pdf *fpdf.Fpdf, doc *rml.Document, cfg Config, fonts *fontBook, log *slog.Logger, size rml.Size) *layout {
	l := &layout{
		pdf:         pdf,
		doc:         doc,
		cfg:         cfg,
		fonts:       fonts,
		log:         log,
		defaultSize: size,
		images:      make(map[string]fpdf.ImageOptions),
	}
	l.current = l.firstTemplate()
	return l
}

// firstTemplate picks the template for page one. Documents without page
// templates get a single frame inset by the configured margin.
func (l *layout) firstTemplate() *rml.PageTemplate {
	tpl := &l.doc.Template
	if len(tpl.Pages) == 0 {
		m := l.cfg.Margin
		size := l.defaultSize
		return &rml.PageTemplate{
			ID: "main",
			Frames: []rml.Frame{{
				ID:     "body",
				X1:     m,
				Y1:     m,
				Width:  size.Width - 2*m,
				Height: size.Height - 2*m,
			}},
		}
	}
	if l.doc.FirstTemplate != "" {
		if pt, ok := tpl.PageTemplateByID(l.doc.FirstTemplate); ok {
			return pt
		}
	}
	return &tpl.Pages[0]
}

func (l *layout) pageSize(pt *rml.PageTemplate) rml.Size {
	if !pt.PageSize.IsZero() {
		return pt.PageSize
	}
	return l.defaultSize
}

func (l *layout) pageNo() int {
	if n := l.pdf.PageNo(); n > 0 {
		return n
	}
	return 1
}

// run places the whole story.
func (l *layout) run() error {
	if err := l.newPage(); err != nil {
		return err
	}
	for _, f := range l.doc.Story {
		if err := l.place(f); err != nil {
			return err
		}
		if err := l.pdf.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (l *layout) newPage() error {
	if l.next != nil {
		l.current, l.next = l.next, nil
	}
	if len(l.current.Frames) == 0 {
		return fmt.Errorf("page template %q has no frames", l.current.ID)
	}
	size := l.pageSize(l.current)
	l.pdf.AddPageFormat("P", fpdf.SizeType{Wd: size.Width, Ht: size.Height})
	l.pageH = size.Height
	if err := l.drawGraphics(l.current.Graphics); err != nil {
		return err
	}
	l.drawBoundaries()
	l.pageEmpty = true
	l.frameIdx = 0
	l.enterFrame()
	return nil
}

func (l *layout) enterFrame() {
	f := l.current.Frames[l.frameIdx]
	l.box = box{
		left:   f.X1 + f.LeftPadding,
		right:  f.X1 + f.Width - f.RightPadding,
		top:    l.pageH - (f.Y1 + f.Height) + f.TopPadding,
		bottom: l.pageH - f.Y1 - f.BottomPadding,
	}
	l.y = l.box.top
	l.atTop = true
}

// nextFrame advances to the following frame, starting a page after the
// template's last frame.
func (l *layout) nextFrame() error {
	if l.fixed {
		return errFrameFull
	}
	l.frameIdx++
	if l.frameIdx >= len(l.current.Frames) {
		return l.newPage()
	}
	l.enterFrame()
	return nil
}

func (l *layout) nextNamedFrame(name string) error {
	if name == "" {
		return l.nextFrame()
	}
	if l.fixed {
		return errFrameFull
	}
	for i := l.frameIdx + 1; i < len(l.current.Frames); i++ {
		if l.current.Frames[i].ID == name {
			l.frameIdx = i
			l.enterFrame()
			return nil
		}
	}
	if err := l.newPage(); err != nil {
		return err
	}
	for i, f := range l.current.Frames {
		if f.ID == name {
			l.frameIdx = i
			l.enterFrame()
			return nil
		}
	}
	l.log.Warn("frame not found in page template", "frame", name, "template", l.current.ID)
	return nil
}

func (l *layout) remaining() float64 {
	return l.box.bottom - l.y
}

// ensure moves to a new frame when h does not fit, unless the frame is still
// empty.
func (l *layout) ensure(h float64) error {
	if l.y+h <= l.box.bottom+0.01 || l.atTop {
		return nil
	}
	return l.nextFrame()
}

func (l *layout) advance(h float64) {
	l.y += h
	l.atTop = false
	l.pageEmpty = false
}

// withBox places content in a fixed region and restores the flow state.
// Content that does not fit is dropped with a warning.
func (l *layout) withBox(b box, what string, fn func() error) error {
	saved := l.frameState
	l.frameState = frameState{box: b, y: b.top, atTop: true, fixed: true}
	err := fn()
	l.frameState = saved
	if errors.Is(err, errFrameFull) {
		l.log.Warn("content does not fit, truncated", "in", what, "page", l.pageNo())
		return nil
	}
	return err
}

func (l *layout) place(f rml.Flowable) error {
	switch f := f.(type) {
	case *rml.Paragraph:
		return l.paragraph(f)
	case *rml.Preformatted:
		return l.preformatted(f)
	case *rml.Spacer:
		if l.y+f.Length > l.box.bottom {
			if l.fixed {
				return errFrameFull
			}
			return l.nextFrame()
		}
		l.advance(f.Length)
		return nil
	case *rml.Image:
		return l.image(f)
	case *rml.Table:
		return l.table(f)
	case *rml.HRule:
		return l.hrule(f)
	case *rml.CondPageBreak:
		if l.remaining() < f.Height && !l.atTop {
			return l.nextFrame()
		}
		return nil
	case *rml.NextFrame:
		return l.nextNamedFrame(f.Name)
	case *rml.NextPage:
		if l.fixed {
			return errFrameFull
		}
		if l.pageEmpty {
			return nil
		}
		return l.newPage()
	case *rml.SetNextTemplate:
		pt, ok := l.doc.Template.PageTemplateByID(f.Name)
		if !ok {
			return fmt.Errorf("unknown page template %q", f.Name)
		}
		l.next = pt
		return nil
	case *rml.KeepInFrame:
		h, err := l.measureFlowables(f.Content, l.box.width())
		if err != nil {
			return err
		}
		if h > l.remaining() {
			if err := l.ensure(h); err != nil {
				return err
			}
		}
		for _, c := range f.Content {
			if err := l.place(c); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported flowable %T", f)
	}
}

func (l *layout) paragraph(p *rml.Paragraph) error {
	style := p.Style
	if !l.atTop && style.SpaceBefore > 0 {
		if l.y+style.SpaceBefore >= l.box.bottom {
			if err := l.nextFrame(); err != nil {
				return err
			}
		} else {
			l.y += style.SpaceBefore
		}
	}
	lines, err := l.layoutText(p.Runs, style, l.box.width())
	if err != nil {
		return err
	}
	inner := l.box.width() - style.LeftIndent - style.RightIndent
	for i, ln := range lines {
		if err := l.ensure(ln.height); err != nil {
			return err
		}
		x := l.box.left + style.LeftIndent
		avail := inner
		if i == 0 {
			x += style.FirstLineIndent
			avail -= style.FirstLineIndent
		}
		if style.BackColor != nil {
			setFillColor(l.pdf, *style.BackColor)
			l.pdf.Rect(l.box.left+style.LeftIndent, l.y, inner, ln.height, "F")
		}
		l.drawTextLine(ln, x, l.y, avail, style.Alignment, i == len(lines)-1)
		l.advance(ln.height)
	}
	l.y = math.Min(l.y+style.SpaceAfter, l.box.bottom)
	return nil
}

func (l *layout) preformatted(p *rml.Preformatted) error {
	style := p.Style
	if !l.atTop && style.SpaceBefore > 0 {
		l.y = math.Min(l.y+style.SpaceBefore, l.box.bottom)
	}
	st, err := l.runStyle(style, rml.Run{})
	if err != nil {
		return err
	}
	for _, text := range p.Lines {
		ln := line{height: style.Leading, size: style.FontSize}
		if ln.height < style.FontSize {
			ln.height = style.FontSize * 1.2
		}
		if text != "" {
			w := word{pieces: []piece{{text: text, style: st, width: l.measure(st, text)}}}
			w.width = w.pieces[0].width
			ln.words = []word{w}
			ln.width = w.width
		}
		if err := l.ensure(ln.height); err != nil {
			return err
		}
		if len(ln.words) > 0 {
			l.drawTextLine(ln, l.box.left+style.LeftIndent, l.y, l.box.width()-style.LeftIndent, rml.AlignLeft, true)
		}
		l.advance(ln.height)
	}
	l.y = math.Min(l.y+style.SpaceAfter, l.box.bottom)
	return nil
}

func (l *layout) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || l.cfg.BaseDir == "" {
		return p
	}
	return filepath.Join(l.cfg.BaseDir, p)
}

// imageSize registers the image and fills in missing dimensions from its
// intrinsic size, preserving the aspect ratio.
func (l *layout) imageSize(file string, w, h float64) (string, fpdf.ImageOptions, float64, float64, error) {
	path := l.resolvePath(file)
	opts, ok := l.images[path]
	if !ok {
		opts = fpdf.ImageOptions{ReadDpi: true}
		l.images[path] = opts
	}
	info := l.pdf.RegisterImageOptions(path, opts)
	if err := l.pdf.Error(); err != nil {
		return "", opts, 0, 0, fmt.Errorf("image %q: %w", file, err)
	}
	iw, ih := info.Extent()
	switch {
	case w <= 0 && h <= 0:
		w, h = iw, ih
	case w <= 0:
		w = iw * h / ih
	case h <= 0:
		h = ih * w / iw
	}
	return path, opts, w, h, nil
}

func (l *layout) image(img *rml.Image) error {
	path, opts, w, h, err := l.imageSize(img.File, img.Width, img.Height)
	if err != nil {
		return err
	}
	if w > l.box.width() {
		h *= l.box.width() / w
		w = l.box.width()
	}
	if err := l.ensure(h); err != nil {
		return err
	}
	x := l.box.left
	switch img.Alignment {
	case rml.AlignCenter:
		x += (l.box.width() - w) / 2
	case rml.AlignRight:
		x += l.box.width() - w
	}
	l.pdf.ImageOptions(path, x, l.y, w, h, false, opts, 0, "")
	l.advance(h)
	return nil
}

func (l *layout) hrule(r *rml.HRule) error {
	w := r.Width
	if r.WidthFraction > 0 {
		w = l.box.width() * r.WidthFraction
	}
	if w <= 0 || w > l.box.width() {
		w = l.box.width()
	}
	total := r.SpaceBefore + r.Thickness + r.SpaceAfter
	if err := l.ensure(total); err != nil {
		return err
	}
	x := l.box.left
	switch r.Alignment {
	case rml.AlignCenter:
		x += (l.box.width() - w) / 2
	case rml.AlignRight:
		x += l.box.width() - w
	}
	y := l.y + r.SpaceBefore + r.Thickness/2
	setDrawColor(l.pdf, r.Color)
	l.pdf.SetLineWidth(r.Thickness)
	l.pdf.SetDashPattern(nil, 0)
	l.pdf.Line(x, y, x+w, y)
	l.advance(math.Min(total, l.box.bottom-l.y))
	return nil
}

// measureFlowables estimates the height content needs at the given width.
func (l *layout) measureFlowables(fs []rml.Flowable, width float64) (float64, error) {
	var h float64
	for _, f := range fs {
		switch f := f.(type) {
		case *rml.Paragraph:
			lines, err := l.layoutText(f.Runs, f.Style, width)
			if err != nil {
				return 0, err
			}
			h += f.Style.SpaceBefore + f.Style.SpaceAfter
			for _, ln := range lines {
				h += ln.height
			}
		case *rml.Preformatted:
			h += f.Style.SpaceBefore + f.Style.SpaceAfter + float64(len(f.Lines))*f.Style.Leading
		case *rml.Spacer:
			h += f.Length
		case *rml.Image:
			_, _, w, ih, err := l.imageSize(f.File, f.Width, f.Height)
			if err != nil {
				return 0, err
			}
			if w > width {
				ih *= width / w
			}
			h += ih
		case *rml.HRule:
			h += f.SpaceBefore + f.Thickness + f.SpaceAfter
		case *rml.Table:
			th, err := l.measureTable(f, width)
			if err != nil {
				return 0, err
			}
			h += th
		case *rml.KeepInFrame:
			kh, err := l.measureFlowables(f.Content, width)
			if err != nil {
				return 0, err
			}
			h += kh
		}
	}
	return h, nil
}

func (l *layout) drawBoundaries() {
	var frames []rml.Frame
	for _, f := range l.current.Frames {
		if f.ShowBoundary || l.doc.Template.ShowBoundary || l.cfg.ShowBoundary {
			frames = append(frames, f)
		}
	}
	if len(frames) == 0 {
		return
	}
	if !l.boundaryReady {
		l.boundaryLayer = l.pdf.AddLayer("Frame boundaries", true)
		l.boundaryReady = true
	}
	l.pdf.BeginLayer(l.boundaryLayer)
	l.pdf.SetDrawColor(128, 128, 128)
	l.pdf.SetLineWidth(0.5)
	l.pdf.SetDashPattern(nil, 0)
	for _, f := range frames {
		l.pdf.Rect(f.X1, l.pageH-(f.Y1+f.Height), f.Width, f.Height, "D")
	}
	l.pdf.EndLayer()
}
