// Package fonts locates TrueType files for the standard CJK CID font names
// and registers them with the PDF renderer.
//
// Registration is best effort: every font in CJK is tried on its own and a
// font that cannot be found, read or registered is reported as skipped.
package fonts

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
)

// CIDFont is a CJK font name used by RML documents together with the
// TrueType files that can stand in for it, in order of preference.
type CIDFont struct {
	Name       string
	Lang       language.Tag
	Candidates []string
}

// CJK is the fixed, ordered list of fonts RegisterCJK tries.
var CJK = []CIDFont{
	{
		Name: "STSong-Light",
		Lang: language.SimplifiedChinese,
		Candidates: []string{
			"NotoSerifSC-Regular.ttf", "NotoSansSC-Regular.ttf",
			"simsun.ttf", "DroidSansFallbackFull.ttf",
		},
	},
	{
		Name: "MSung-Light",
		Lang: language.TraditionalChinese,
		Candidates: []string{
			"NotoSerifTC-Regular.ttf", "NotoSansTC-Regular.ttf",
			"fireflysung.ttf", "mingliu.ttf", "DroidSansFallbackFull.ttf",
		},
	},
	{
		Name: "HeiseiMin-W3",
		Lang: language.Japanese,
		Candidates: []string{
			"NotoSerifJP-Regular.ttf", "ipamp.ttf", "ipam.ttf",
			"ipaexm.ttf", "TakaoMincho.ttf",
		},
	},
	{
		Name: "HeiseiKakuGo-W5",
		Lang: language.Japanese,
		Candidates: []string{
			"NotoSansJP-Regular.ttf", "ipagp.ttf", "ipag.ttf",
			"ipaexg.ttf", "TakaoGothic.ttf",
		},
	},
	{
		Name: "HYSMyeongJo-Medium",
		Lang: language.Korean,
		Candidates: []string{
			"NotoSerifKR-Regular.ttf", "NanumMyeongjo.ttf", "UnBatang.ttf",
		},
	},
	{
		Name: "HYGothic-Medium",
		Lang: language.Korean,
		Candidates: []string{
			"NotoSansKR-Regular.ttf", "NanumGothic.ttf", "UnDotum.ttf",
		},
	},
}

var (
	// ErrNotFound is recorded for fonts none of whose candidate files exist.
	ErrNotFound = errors.New("fonts: no candidate file found")
	// ErrAlreadyRegistered is recorded for fonts the registry already holds,
	// for example from an explicit user registration.
	ErrAlreadyRegistered = errors.New("fonts: already registered")
)

// Registerer accepts TrueType files under a font name. *pdf.FontRegistry
// satisfies it. When the Registerer also has a Has(name string) bool method,
// names it already holds are left alone.
type Registerer interface {
	RegisterTTF(name, path string) error
}

type registryLookup interface {
	Has(name string) bool
}

// Options controls where fonts are searched and which are tried.
type Options struct {
	// Dirs are searched in order. Nil means DefaultDirs.
	Dirs []string
	// Languages restricts the fonts tried. Empty means all of CJK.
	Languages []language.Tag
	Logger    *slog.Logger
}

// Resolution is the outcome of searching for one font.
type Resolution struct {
	Font CIDFont
	Face Face
	Err  error
}

// Skip records a font that was not registered.
type Skip struct {
	Name string
	Err  error
}

// Report lists the fonts RegisterCJK registered and the ones it skipped.
type Report struct {
	Registered []string
	Skipped    []Skip
}

var probeFace = Probe

// ParseLanguages parses BCP 47 tags such as "zh-Hant" or "ja".
func ParseLanguages(tags []string) ([]language.Tag, error) {
	out := make([]language.Tag, 0, len(tags))
	for _, s := range tags {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		tag, err := language.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("fonts: language %q: %w", s, err)
		}
		out = append(out, tag)
	}
	return out, nil
}

// matchLanguage reports whether a font for lang is wanted by filter. A
// filter without an explicit script ("zh") matches every script of its
// language.
func matchLanguage(lang, filter language.Tag) bool {
	lb, _ := lang.Base()
	fb, _ := filter.Base()
	if lb != fb {
		return false
	}
	fs, conf := filter.Script()
	if conf != language.Exact {
		return true
	}
	ls, _ := lang.Script()
	return ls == fs
}

func wanted(f CIDFont, filters []language.Tag) bool {
	if len(filters) == 0 {
		return true
	}
	for _, tag := range filters {
		if matchLanguage(f.Lang, tag) {
			return true
		}
	}
	return false
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Resolve searches the font directories for every wanted font in CJK
// without registering anything. Per-font failures are carried in
// Resolution.Err; the returned error is ErrNoFontSource when no directory
// could be read.
func Resolve(opts Options) ([]Resolution, error) {
	dirs := opts.Dirs
	if dirs == nil {
		dirs = DefaultDirs()
	}
	idx, err := BuildIndex(dirs)
	if err != nil {
		return nil, err
	}
	log := opts.logger()
	var out []Resolution
	for _, f := range CJK {
		if !wanted(f, opts.Languages) {
			continue
		}
		res := resolveOne(idx, f)
		if res.Err != nil {
			log.Debug("cjk font unresolved", "font", f.Name, "err", res.Err)
		} else {
			log.Debug("cjk font resolved", "font", f.Name, "path", res.Face.Path, "family", res.Face.Family)
		}
		out = append(out, res)
	}
	return out, nil
}

func resolveOne(idx Index, f CIDFont) Resolution {
	var lastErr error
	for _, name := range f.Candidates {
		path, ok := idx.Lookup(name)
		if !ok {
			continue
		}
		face, err := probeFace(path)
		if err != nil {
			lastErr = err
			continue
		}
		return Resolution{Font: f, Face: face}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("%w (%s)", ErrNotFound, strings.Join(f.Candidates, ", "))
	}
	return Resolution{Font: f, Err: lastErr}
}

// RegisterCJK resolves the wanted fonts and registers each one found with
// reg. A font that fails at any step is added to Report.Skipped and the
// loop moves on. The only error returned is ErrNoFontSource.
func RegisterCJK(reg Registerer, opts Options) (Report, error) {
	if reg == nil {
		return Report{}, errors.New("fonts: registerer is nil")
	}
	resolved, err := Resolve(opts)
	if err != nil {
		return Report{}, err
	}
	log := opts.logger()
	lookup, _ := reg.(registryLookup)
	var report Report
	for _, res := range resolved {
		if lookup != nil && lookup.Has(res.Font.Name) {
			log.Debug("cjk font already registered", "font", res.Font.Name)
			report.Skipped = append(report.Skipped, Skip{Name: res.Font.Name, Err: ErrAlreadyRegistered})
			continue
		}
		if res.Err != nil {
			report.Skipped = append(report.Skipped, Skip{Name: res.Font.Name, Err: res.Err})
			continue
		}
		if err := reg.RegisterTTF(res.Font.Name, res.Face.Path); err != nil {
			log.Debug("cjk font not registered", "font", res.Font.Name, "err", err)
			report.Skipped = append(report.Skipped, Skip{Name: res.Font.Name, Err: err})
			continue
		}
		report.Registered = append(report.Registered, res.Font.Name)
	}
	return report, nil
}
