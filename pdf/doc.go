// Package pdf renders RML documents to PDF.
//
// The renderer parses RML from an io.Reader, flows the story through the
// document's page templates and writes the PDF to an io.Writer. The fourteen
// standard PDF fonts are always available; other faces come from a
// FontRegistry of TrueType files or from registerTTFont entries in the
// document itself.
//
// Example:
//
//	fonts := pdf.NewFontRegistry()
//	if err := fonts.RegisterTTF("STSong-Light", "/usr/share/fonts/NotoSerifSC-Regular.ttf"); err != nil {
//		log.Fatal(err)
//	}
//	cfg := pdf.DefaultConfig()
//	cfg.BaseDir = filepath.Dir(inputPath)
//
//	err := pdf.Render(pdf.RenderRequest{
//		Reader: src,
//		Writer: outFile,
//		Config: cfg,
//		Fonts:  fonts,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Output is reproducible: identical input, fonts and Config produce
// identical bytes.
package pdf
