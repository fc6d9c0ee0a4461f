package rml

// Document is a parsed RML document.
type Document struct {
	Filename   string
	DocInit    DocInit
	Template   Template
	Stylesheet *Stylesheet
	Story      []Flowable
	// FirstTemplate names the page template used for the first page.
	FirstTemplate string
	// Skipped lists element names that were not understood, in document order.
	Skipped []string
}

// DocInit holds document initialisation directives.
type DocInit struct {
	Fonts []FontRegistration
}

// FontKind identifies the font registration element.
type FontKind uint8

const (
	// FontTrueType is a registerTTFont entry.
	FontTrueType FontKind = iota
	// FontCID is a registerCIDFont entry.
	FontCID
	// FontType1 is a registerFont entry.
	FontType1
)

func (k FontKind) String() string {
	switch k {
	case FontTrueType:
		return "ttf"
	case FontCID:
		return "cid"
	case FontType1:
		return "type1"
	default:
		return "unknown"
	}
}

// FontRegistration requests a font face to be available under FaceName.
type FontRegistration struct {
	Kind     FontKind
	FaceName string
	FileName string
}

// Size is a width/height pair in points.
type Size struct {
	Width  float64
	Height float64
}

// IsZero reports whether the size is unset.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Template describes page layout.
type Template struct {
	PageSize     Size
	Title        string
	Author       string
	Subject      string
	ShowBoundary bool
	Pages        []PageTemplate
}

// PageTemplate is a named page layout with frames and fixed graphics.
type PageTemplate struct {
	ID       string
	PageSize Size
	Frames   []Frame
	Graphics []GraphicsOp
}

// Frame is a rectangular region that receives flowables. Coordinates use the
// PDF convention: origin at the bottom-left corner of the page.
type Frame struct {
	ID            string
	X1            float64
	Y1            float64
	Width         float64
	Height        float64
	LeftPadding   float64
	RightPadding  float64
	TopPadding    float64
	BottomPadding float64
	ShowBoundary  bool
}

// DefaultFramePadding is applied on each side when a frame omits padding.
const DefaultFramePadding = 6

// PageTemplateByID returns the template with the given id.
func (t *Template) PageTemplateByID(id string) (*PageTemplate, bool) {
	for i := range t.Pages {
		if t.Pages[i].ID == id {
			return &t.Pages[i], true
		}
	}
	return nil, false
}

// Flowable is an element of the story.
type Flowable interface {
	flowable()
}

// Paragraph is a block of styled inline text.
type Paragraph struct {
	Style ParaStyle
	Runs  []Run
}

// Preformatted is text rendered line by line without wrapping.
type Preformatted struct {
	Style ParaStyle
	Lines []string
}

// Spacer adds vertical space.
type Spacer struct {
	Length float64
}

// Image places a raster image inside the frame.
type Image struct {
	File      string
	Width     float64
	Height    float64
	Alignment Alignment
}

// HRule draws a horizontal line. Width is in points; when WidthFraction is
// non-zero it wins and is relative to the frame width.
type HRule struct {
	Width         float64
	WidthFraction float64
	Thickness     float64
	Color         Color
	SpaceBefore   float64
	SpaceAfter    float64
	Alignment     Alignment
}

// CondPageBreak moves to the next frame when less than Height remains.
type CondPageBreak struct {
	Height float64
}

// NextFrame moves to the next frame, optionally a named one.
type NextFrame struct {
	Name string
}

// NextPage starts a new page.
type NextPage struct{}

// SetNextTemplate selects the page template for subsequent pages.
type SetNextTemplate struct {
	Name string
}

// KeepInFrame keeps its content together in one frame when possible.
type KeepInFrame struct {
	Content []Flowable
}

func (*Paragraph) flowable()       {}
func (*Preformatted) flowable()    {}
func (*Spacer) flowable()          {}
func (*Image) flowable()           {}
func (*Table) flowable()           {}
func (*HRule) flowable()           {}
func (*CondPageBreak) flowable()   {}
func (*NextFrame) flowable()       {}
func (*NextPage) flowable()        {}
func (*SetNextTemplate) flowable() {}
func (*KeepInFrame) flowable()     {}

// Run is a span of inline text sharing one style. Empty fields inherit from
// the paragraph style.
type Run struct {
	Text       string
	FontName   string
	FontSize   float64
	Color      *Color
	Bold       bool
	Italic     bool
	Underline  bool
	Strike     bool
	Super      bool
	Sub        bool
	Link       string
	LineBreak  bool
	PageNumber bool
	PageCount  bool
}

// PlainText concatenates the text of runs, rendering line breaks as newlines.
func PlainText(runs []Run) string {
	var n int
	for _, r := range runs {
		n += len(r.Text) + 1
	}
	buf := make([]byte, 0, n)
	for _, r := range runs {
		if r.LineBreak {
			buf = append(buf, '\n')
			continue
		}
		buf = append(buf, r.Text...)
	}
	return string(buf)
}
