package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/parser"
)

// ErrNotTrueType is returned when a font file does not carry a .ttf
// extension. The PDF writer only embeds TrueType outlines.
var ErrNotTrueType = errors.New("font must be a .ttf file")

// FontRegistry maps face names to TrueType font files. Files are read the
// first time a document uses the face.
type FontRegistry struct {
	faces map[string]*fontSource
}

type fontSource struct {
	path string
	data []byte
}

// NewFontRegistry returns an empty registry.
func NewFontRegistry() *FontRegistry {
	return &FontRegistry{faces: make(map[string]*fontSource)}
}

// RegisterTTF makes the TrueType file at path available as name. An
// existing registration under the same name is replaced.
func (r *FontRegistry) RegisterTTF(name, path string) error {
	if name == "" {
		return errors.New("font name is empty")
	}
	if strings.ToLower(filepath.Ext(path)) != ".ttf" {
		return fmt.Errorf("%s: %w", path, ErrNotTrueType)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("font %q: %w", name, err)
	}
	if info.IsDir() {
		return fmt.Errorf("font %q: %s is a directory", name, path)
	}
	r.faces[name] = &fontSource{path: path}
	return nil
}

// RegisterTTFBytes registers an in-memory TrueType font as name.
func (r *FontRegistry) RegisterTTFBytes(name string, data []byte) error {
	if name == "" {
		return errors.New("font name is empty")
	}
	if len(data) == 0 {
		return fmt.Errorf("font %q: no data", name)
	}
	r.faces[name] = &fontSource{data: data}
	return nil
}

// Has reports whether name is registered.
func (r *FontRegistry) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.faces[name]
	return ok
}

// Path returns the file backing name, or "" for in-memory fonts.
func (r *FontRegistry) Path(name string) string {
	if r == nil {
		return ""
	}
	if src, ok := r.faces[name]; ok {
		return src.path
	}
	return ""
}

// Names lists registered faces in sorted order.
func (r *FontRegistry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.faces))
	for name := range r.faces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a registry with the same entries. Loaded font data is
// shared.
func (r *FontRegistry) Clone() *FontRegistry {
	out := NewFontRegistry()
	if r == nil {
		return out
	}
	for name, src := range r.faces {
		out.faces[name] = src
	}
	return out
}

func (r *FontRegistry) load(name string) ([]byte, error) {
	src, ok := r.faces[name]
	if !ok {
		return nil, fmt.Errorf("font %q is not registered", name)
	}
	if src.data == nil {
		data, err := os.ReadFile(src.path)
		if err != nil {
			return nil, fmt.Errorf("font %q: %w", name, err)
		}
		src.data = data
	}
	return src.data, nil
}

// checkTrueType rejects font data the PDF writer cannot embed.
func checkTrueType(data []byte) error {
	info, err := sfnt.Read(bytes.NewReader(data), parser.NewBudget(int64(len(data))))
	if err != nil {
		return err
	}
	if info.IsCFF() {
		return errors.New("CFF outlines are not supported")
	}
	return nil
}
