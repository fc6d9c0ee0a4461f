// Package pdfcheck rasterizes rendered samples with poppler and inspects the
// resulting pages.
package pdfcheck

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png" // register PNG decoder
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	rpdf "rsc.io/pdf"

	"pkt.systems/rml/pdf"
)

const (
	dpi = "48"
	// inkThreshold is the 8-bit channel value below which a pixel counts as
	// printed.
	inkThreshold = 200
)

// Sample identifies an RML input used for rasterization checks.
type Sample struct {
	Path string
	Name string
}

// TestdataDir locates pdf/testdata relative to this source file.
func TestdataDir() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("pdfcheck: unable to resolve source path")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "testdata"), nil
}

// CollectSamples finds .rml files below root, sorted by name.
func CollectSamples(root string) ([]Sample, error) {
	var samples []Sample
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".rml") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		base := strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
		samples = append(samples, Sample{Path: path, Name: strings.ReplaceAll(base, "/", "__")})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Name < samples[j].Name
	})
	return samples, nil
}

// PDFToPPMCommand returns the pdftoppm command used to rasterize PDFs.
func PDFToPPMCommand(nicePath, pdfPath, prefix string) *exec.Cmd {
	if nicePath != "" {
		return exec.Command(nicePath, "-n", "10", "pdftoppm", "-png", "-r", dpi, pdfPath, prefix)
	}
	return exec.Command("pdftoppm", "-png", "-r", dpi, pdfPath, prefix)
}

// RenderSample renders RML with relative paths resolved against baseDir.
func RenderSample(w io.Writer, data []byte, baseDir string) error {
	cfg := pdf.DefaultConfig()
	cfg.BaseDir = baseDir
	return pdf.Render(pdf.RenderRequest{
		Reader: bytes.NewReader(data),
		Writer: w,
		Config: cfg,
		Fonts:  pdf.NewFontRegistry(),
	})
}

// PageCount parses data and returns its number of pages.
func PageCount(data []byte) (n int, err error) {
	defer func() {
		// The reader panics on malformed content instead of returning errors.
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcheck: malformed pdf: %v", r)
		}
	}()
	doc, err := rpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return doc.NumPage(), nil
}

// Rasterize writes one PNG per page of pdfPath into dir and returns their
// paths in page order.
func Rasterize(nicePath, pdfPath, dir string) ([]string, error) {
	prefix := filepath.Join(dir, "page")
	cmd := PDFToPPMCommand(nicePath, pdfPath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w\n%s", err, out)
	}
	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	sort.Strings(pages)
	return pages, nil
}

// InkRatio returns the share of pixels darker than the ink threshold.
func InkRatio(path string) (float64, error) {
	img, err := loadPNG(path)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", path, err)
	}
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0, nil
	}
	inked := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r>>8 < inkThreshold || g>>8 < inkThreshold || bl>>8 < inkThreshold {
				inked++
			}
		}
	}
	return float64(inked) / float64(total), nil
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}
