package rml

// GraphicsOp is a page graphics drawing operation. Coordinates are in points
// with the origin at the bottom-left corner of the page.
type GraphicsOp interface {
	graphicsOp()
}

// SetFont changes the font used by subsequent string operations.
type SetFont struct {
	Name    string
	Size    float64
	Leading float64
}

// Fill sets the fill color, also used for text.
type Fill struct {
	Color Color
}

// Stroke sets the stroke color.
type Stroke struct {
	Color Color
}

// LineMode sets the stroke width and optional dash pattern.
type LineMode struct {
	Width float64
	Dash  []float64
}

// DrawString draws a single line of text anchored at (X, Y).
type DrawString struct {
	X, Y      float64
	Alignment Alignment
	Runs      []Run
}

// Rect draws a rectangle whose bottom-left corner is (X, Y).
type Rect struct {
	X, Y          float64
	Width, Height float64
	Round         float64
	Fill          bool
	Stroke        bool
}

// Circle draws a circle centred on (X, Y).
type Circle struct {
	X, Y   float64
	Radius float64
	Fill   bool
	Stroke bool
}

// Line is a segment from (X1, Y1) to (X2, Y2).
type Line struct {
	X1, Y1, X2, Y2 float64
}

// Lines draws several segments.
type Lines struct {
	Segments []Line
}

// DrawImage places an image with its bottom-left corner at (X, Y).
type DrawImage struct {
	File          string
	X, Y          float64
	Width, Height float64
}

// Place lays out flowables inside a fixed box whose bottom-left corner is
// (X, Y). Content that does not fit is dropped.
type Place struct {
	X, Y          float64
	Width, Height float64
	Content       []Flowable
}

func (*SetFont) graphicsOp()    {}
func (*Fill) graphicsOp()       {}
func (*Stroke) graphicsOp()     {}
func (*LineMode) graphicsOp()   {}
func (*DrawString) graphicsOp() {}
func (*Rect) graphicsOp()       {}
func (*Circle) graphicsOp()     {}
func (*Line) graphicsOp()       {}
func (*Lines) graphicsOp()      {}
func (*DrawImage) graphicsOp()  {}
func (*Place) graphicsOp()      {}
