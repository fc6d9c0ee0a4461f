package pdf

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-pdf/fpdf"

	"pkt.systems/rml"
)

// fontRef identifies a face loaded into the PDF writer.
type fontRef struct {
	family string
	style  string
	utf8   bool
}

type coreFace struct {
	family string
	style  string
}

var coreFaces = map[string]coreFace{
	"Helvetica":             {"Helvetica", ""},
	"Helvetica-Bold":        {"Helvetica", "B"},
	"Helvetica-Oblique":     {"Helvetica", "I"},
	"Helvetica-BoldOblique": {"Helvetica", "BI"},
	"Times-Roman":           {"Times", ""},
	"Times-Bold":            {"Times", "B"},
	"Times-Italic":          {"Times", "I"},
	"Times-BoldItalic":      {"Times", "BI"},
	"Courier":               {"Courier", ""},
	"Courier-Bold":          {"Courier", "B"},
	"Courier-Oblique":       {"Courier", "I"},
	"Courier-BoldOblique":   {"Courier", "BI"},
	"Symbol":                {"Symbol", ""},
	"ZapfDingbats":          {"ZapfDingbats", ""},
	"Times":                 {"Times", ""},
	"Arial":                 {"Helvetica", ""},
}

// IsCoreFont reports whether name is one of the standard PDF faces that
// need no embedding.
func IsCoreFont(name string) bool {
	_, ok := coreFaces[name]
	return ok
}

// fontBook resolves RML face names for one render.
type fontBook struct {
	pdf      *fpdf.Fpdf
	reg      *FontRegistry
	log      *slog.Logger
	fallback string
	loaded   map[string]bool
	warned   map[string]bool
	tr       func(string) string
}

func newFontBook(pdf *fpdf.Fpdf, reg *FontRegistry, log *slog.Logger, fallback string) *fontBook {
	if !IsCoreFont(fallback) && !reg.Has(fallback) {
		log.Warn("fallback font unavailable", "font", fallback, "using", "Helvetica")
		fallback = "Helvetica"
	}
	return &fontBook{
		pdf:      pdf,
		reg:      reg,
		log:      log,
		fallback: fallback,
		loaded:   make(map[string]bool),
		warned:   make(map[string]bool),
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// resolve maps a face name plus inline bold/italic to a loaded font.
// Unknown names fall back to the configured face with a single warning.
func (b *fontBook) resolve(name string, bold, italic bool) (fontRef, error) {
	if b.reg.Has(name) {
		if !b.loaded[name] {
			data, err := b.reg.load(name)
			if err != nil {
				return fontRef{}, err
			}
			if err := checkTrueType(data); err != nil {
				return fontRef{}, fmt.Errorf("font %q: %w", name, err)
			}
			if err := b.addUTF8(name, data); err != nil {
				return fontRef{}, err
			}
			b.loaded[name] = true
		}
		b.noteUnstyled(name, bold, italic)
		return fontRef{family: name, utf8: true}, nil
	}
	face, ok := coreFaces[name]
	if !ok {
		if !b.warned[name] {
			b.warned[name] = true
			b.log.Warn("font not available, substituting", "font", name, "using", b.fallback)
		}
		if name == b.fallback {
			return fontRef{family: "Helvetica"}, nil
		}
		return b.resolve(b.fallback, bold, italic)
	}
	return fontRef{family: face.family, style: combineStyle(face, bold, italic)}, nil
}

// noteUnstyled logs once per face that bold or italic text is drawn with the
// regular outlines. Registered faces carry a single style.
func (b *fontBook) noteUnstyled(name string, bold, italic bool) {
	if !bold && !italic {
		return
	}
	key := name + "\x00style"
	if b.warned[key] {
		return
	}
	b.warned[key] = true
	b.log.Warn("bold and italic not available, using regular style", "font", name)
}

func (b *fontBook) addUTF8(name string, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("font %q: unreadable TrueType data", name)
		}
	}()
	b.pdf.AddUTF8FontFromBytes(name, "", data)
	if err := b.pdf.Error(); err != nil {
		return fmt.Errorf("font %q: %w", name, err)
	}
	return nil
}

func combineStyle(face coreFace, bold, italic bool) string {
	if face.family == "Symbol" || face.family == "ZapfDingbats" {
		return ""
	}
	bold = bold || strings.Contains(face.style, "B")
	italic = italic || strings.Contains(face.style, "I")
	var sb strings.Builder
	if bold {
		sb.WriteByte('B')
	}
	if italic {
		sb.WriteByte('I')
	}
	return sb.String()
}

func (b *fontBook) set(ref fontRef, size float64, underline bool) {
	style := ref.style
	if underline {
		style += "U"
	}
	b.pdf.SetFont(ref.family, style, size)
}

// encode converts text for the font's encoding. Core fonts use cp1252.
func (b *fontBook) encode(ref fontRef, s string) string {
	if ref.utf8 {
		return s
	}
	return b.tr(s)
}

func (b *fontBook) width(ref fontRef, size float64, s string) float64 {
	b.set(ref, size, false)
	return b.pdf.GetStringWidth(b.encode(ref, s))
}

// textStyle is the resolved look of a piece of inline text.
type textStyle struct {
	font      fontRef
	size      float64
	color     rml.Color
	underline bool
	strike    bool
	rise      float64
	link      string
}

func setTextColor(pdf *fpdf.Fpdf, c rml.Color) {
	r, g, bl := c.RGB()
	pdf.SetTextColor(r, g, bl)
}

func setFillColor(pdf *fpdf.Fpdf, c rml.Color) {
	r, g, bl := c.RGB()
	pdf.SetFillColor(r, g, bl)
}

func setDrawColor(pdf *fpdf.Fpdf, c rml.Color) {
	r, g, bl := c.RGB()
	pdf.SetDrawColor(r, g, bl)
}
