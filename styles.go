package rml

import "sort"

// ParaStyle is a fully resolved paragraph style.
type ParaStyle struct {
	Name            string
	Parent          string
	FontName        string
	FontSize        float64
	Leading         float64
	TextColor       Color
	BackColor       *Color
	Alignment       Alignment
	SpaceBefore     float64
	SpaceAfter      float64
	LeftIndent      float64
	RightIndent     float64
	FirstLineIndent float64
}

// Stylesheet holds named paragraph and table styles.
type Stylesheet struct {
	paras  map[string]ParaStyle
	tables map[string]TableStyle
}

// NewStylesheet returns an empty stylesheet.
func NewStylesheet() *Stylesheet {
	return &Stylesheet{
		paras:  make(map[string]ParaStyle),
		tables: make(map[string]TableStyle),
	}
}

// DefaultStylesheet returns the base styles every document starts with:
// Normal, BodyText, Title, Heading1-3 and Code.
func DefaultStylesheet() *Stylesheet {
	s := NewStylesheet()
	normal := ParaStyle{
		Name:      "Normal",
		FontName:  "Helvetica",
		FontSize:  10,
		Leading:   12,
		TextColor: Black,
	}
	s.SetPara(normal)
	body := normal
	body.Name, body.Parent, body.SpaceBefore = "BodyText", "Normal", 6
	s.SetPara(body)
	title := normal
	title.Name, title.Parent = "Title", "Normal"
	title.FontName, title.FontSize, title.Leading = "Helvetica-Bold", 18, 22
	title.Alignment, title.SpaceAfter = AlignCenter, 6
	s.SetPara(title)
	h1 := normal
	h1.Name, h1.Parent = "Heading1", "Normal"
	h1.FontName, h1.FontSize, h1.Leading, h1.SpaceAfter = "Helvetica-Bold", 18, 22, 6
	s.SetPara(h1)
	h2 := normal
	h2.Name, h2.Parent = "Heading2", "Normal"
	h2.FontName, h2.FontSize, h2.Leading = "Helvetica-Bold", 14, 18
	h2.SpaceBefore, h2.SpaceAfter = 12, 6
	s.SetPara(h2)
	h3 := normal
	h3.Name, h3.Parent = "Heading3", "Normal"
	h3.FontName, h3.FontSize, h3.Leading = "Helvetica-BoldOblique", 12, 14
	h3.SpaceBefore, h3.SpaceAfter = 12, 6
	s.SetPara(h3)
	code := normal
	code.Name, code.Parent = "Code", "Normal"
	code.FontName, code.FontSize, code.Leading, code.LeftIndent = "Courier", 8, 8.8, 36
	s.SetPara(code)
	return s
}

// SetPara stores a paragraph style under its name, replacing any previous
// definition.
func (s *Stylesheet) SetPara(style ParaStyle) {
	s.paras[style.Name] = style
}

// Para returns the named paragraph style.
func (s *Stylesheet) Para(name string) (ParaStyle, bool) {
	style, ok := s.paras[name]
	return style, ok
}

// ParaNames lists paragraph style names in sorted order.
func (s *Stylesheet) ParaNames() []string {
	names := make([]string, 0, len(s.paras))
	for name := range s.paras {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetTable stores a table style under its id.
func (s *Stylesheet) SetTable(style TableStyle) {
	s.tables[style.ID] = style
}

// Table returns the table style with the given id.
func (s *Stylesheet) Table(id string) (TableStyle, bool) {
	style, ok := s.tables[id]
	return style, ok
}

// TableStyle is an ordered list of commands applied to table cell ranges.
type TableStyle struct {
	ID       string
	Commands []TableCommand
}

// TableOp names a table style command.
type TableOp string

const (
	OpFont       TableOp = "FONT"
	OpTextColor  TableOp = "TEXTCOLOR"
	OpBackground TableOp = "BACKGROUND"
	OpAlignment  TableOp = "ALIGNMENT"
	OpVAlign     TableOp = "VALIGN"
	OpGrid       TableOp = "GRID"
	OpBox        TableOp = "BOX"
	OpInnerGrid  TableOp = "INNERGRID"
	OpLineAbove  TableOp = "LINEABOVE"
	OpLineBelow  TableOp = "LINEBELOW"
	OpLineBefore TableOp = "LINEBEFORE"
	OpLineAfter  TableOp = "LINEAFTER"
	OpPadding    TableOp = "PADDING"
)

// Cell addresses a table cell as (column, row). Negative values count from
// the end, -1 being the last column or row.
type Cell struct {
	Col int
	Row int
}

// TableCommand applies one style operation to the cells between Start and
// Stop inclusive.
type TableCommand struct {
	Op        TableOp
	Start     Cell
	Stop      Cell
	FontName  string
	FontSize  float64
	Leading   float64
	Color     Color
	Thickness float64
	Alignment Alignment
	VAlign    VAlign
	Padding   float64
	// PaddingSide is "left", "right", "top" or "bottom" for OpPadding.
	PaddingSide string
}

// Range normalises Start and Stop against a table of cols x rows and reports
// whether the range is non-empty.
func (c TableCommand) Range(cols, rows int) (c0, r0, c1, r1 int, ok bool) {
	c0 = normIndex(c.Start.Col, cols)
	r0 = normIndex(c.Start.Row, rows)
	c1 = normIndex(c.Stop.Col, cols)
	r1 = normIndex(c.Stop.Row, rows)
	if c0 < 0 {
		c0 = 0
	}
	if r0 < 0 {
		r0 = 0
	}
	if c1 >= cols {
		c1 = cols - 1
	}
	if r1 >= rows {
		r1 = rows - 1
	}
	return c0, r0, c1, r1, c0 <= c1 && r0 <= r1
}

// Contains reports whether (col, row) falls inside the command range.
func (c TableCommand) Contains(col, row, cols, rows int) bool {
	c0, r0, c1, r1, ok := c.Range(cols, rows)
	return ok && col >= c0 && col <= c1 && row >= r0 && row <= r1
}

func normIndex(i, n int) int {
	if i < 0 {
		return n + i
	}
	return i
}

// Table is a blockTable flowable.
type Table struct {
	ColWidths  []float64
	RowHeights []float64
	RepeatRows int
	Style      TableStyle
	Rows       [][]TableCell
}

// TableCell holds either inline runs or nested flowables.
type TableCell struct {
	Runs      []Run
	Flowables []Flowable
	Header    bool
}

// Columns returns the widest row length.
func (t *Table) Columns() int {
	n := len(t.ColWidths)
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}
