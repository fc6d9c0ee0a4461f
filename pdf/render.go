package pdf

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"pkt.systems/rml"
)

// RenderRequest contains inputs for PDF rendering.
type RenderRequest struct {
	Reader io.Reader
	Writer io.Writer
	Config Config
	// Fonts supplies faces beyond the standard PDF fonts. Document level
	// registrations are added to a copy, never to this registry.
	Fonts  *FontRegistry
	Logger *slog.Logger
}

// Render parses RML from Reader and writes the PDF to Writer.
func Render(req RenderRequest) error {
	if req.Reader == nil {
		return fmt.Errorf("pdf render: reader is nil")
	}
	if req.Writer == nil {
		return fmt.Errorf("pdf render: writer is nil")
	}
	doc, err := rml.Parse(req.Reader)
	if err != nil {
		return fmt.Errorf("pdf render: %w", err)
	}
	return RenderDocument(doc, req.Writer, req.Config, req.Fonts, req.Logger)
}

// RenderBytes converts an RML document held in memory and returns the PDF.
func RenderBytes(src []byte, cfg Config, fonts *FontRegistry) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(RenderRequest{
		Reader: bytes.NewReader(src),
		Writer: &buf,
		Config: cfg,
		Fonts:  fonts,
	}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderDocument lays out a parsed document and writes the PDF to w.
func RenderDocument(doc *rml.Document, w io.Writer, config Config, fonts *FontRegistry, log *slog.Logger) error {
	if doc == nil {
		return fmt.Errorf("pdf render: document is nil")
	}
	if w == nil {
		return fmt.Errorf("pdf render: writer is nil")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	cfg := DefaultConfig()
	applyConfig(&cfg, config)
	if cfg.CreationDate.IsZero() {
		cfg.CreationDate = defaultCreationDate
	}
	size := doc.Template.PageSize
	if size.IsZero() {
		s, err := rml.ParsePageSize(cfg.PageSize)
		if err != nil {
			return fmt.Errorf("pdf render: %w", err)
		}
		size = s
	}
	if doc.Stylesheet == nil {
		doc.Stylesheet = rml.DefaultStylesheet()
	}
	for _, name := range doc.Skipped {
		log.Debug("unsupported element ignored", "element", name)
	}

	reg := fonts.Clone()
	if err := registerDocFonts(doc, reg, cfg, log); err != nil {
		return fmt.Errorf("pdf render: %w", err)
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: size.Width, Ht: size.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCompression(!cfg.DisableCompression)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(cfg.CreationDate)
	pdf.SetModificationDate(cfg.CreationDate)
	pdf.AliasNbPages(pageCountAlias)
	pdf.SetCreator(cfg.Creator, true)
	if t := doc.Template; t.Title != "" || t.Author != "" || t.Subject != "" {
		pdf.SetTitle(t.Title, true)
		pdf.SetAuthor(t.Author, true)
		pdf.SetSubject(t.Subject, true)
	}

	book := newFontBook(pdf, reg, log, cfg.FontName)
	l := newLayout(pdf, doc, cfg, book, log, size)
	if err := l.run(); err != nil {
		return fmt.Errorf("pdf render: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf render: output: %w", err)
	}
	log.Debug("pdf written", "pages", pdf.PageNo())
	return nil
}

// registerDocFonts applies docinit font registrations. TrueType files are
// loaded relative to BaseDir; CID and Type 1 faces must already be present
// in the registry.
func registerDocFonts(doc *rml.Document, reg *FontRegistry, cfg Config, log *slog.Logger) error {
	for _, f := range doc.DocInit.Fonts {
		switch f.Kind {
		case rml.FontTrueType:
			path := f.FileName
			if !filepath.IsAbs(path) && cfg.BaseDir != "" {
				path = filepath.Join(cfg.BaseDir, path)
			}
			if err := reg.RegisterTTF(f.FaceName, path); err != nil {
				return err
			}
		case rml.FontCID:
			if !reg.Has(f.FaceName) {
				log.Warn("CID font not available, text will use the fallback face", "font", f.FaceName, "fallback", cfg.FontName)
			}
		default:
			if !reg.Has(f.FaceName) && !IsCoreFont(f.FaceName) {
				log.Warn("font registration not supported", "font", f.FaceName, "kind", f.Kind.String())
			}
		}
	}
	return nil
}
