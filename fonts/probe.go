package fonts

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/parser"
)

// ErrCFFOutlines is returned by Probe for OpenType fonts with CFF outlines,
// which the PDF renderer cannot embed.
var ErrCFFOutlines = errors.New("fonts: CFF outlines are not supported")

// Face describes a probed font file.
type Face struct {
	Path   string
	Family string
	Glyphs int
}

// Probe reads the font file at path and checks that it carries TrueType
// outlines.
func Probe(path string) (Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Face{}, err
	}
	info, err := sfnt.Read(bytes.NewReader(data), parser.NewBudget(int64(len(data))))
	if err != nil {
		return Face{}, fmt.Errorf("fonts: read %s: %w", path, err)
	}
	if info.IsCFF() {
		return Face{}, fmt.Errorf("%s: %w", path, ErrCFFOutlines)
	}
	return Face{
		Path:   path,
		Family: info.FamilyName,
		Glyphs: info.NumGlyphs(),
	}, nil
}
