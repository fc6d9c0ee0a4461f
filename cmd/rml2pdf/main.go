package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/version"

	"pkt.systems/rml"
	"pkt.systems/rml/fonts"
	"pkt.systems/rml/internal/config"
	"pkt.systems/rml/internal/logger"
	"pkt.systems/rml/pdf"
)

func init() {
	version.SetDefaultModule("pkt.systems/rml")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var (
		configPath  string
		listFonts   bool
		printConfig bool
		showVersion bool
	)

	defaults := config.Default()
	flags := pflag.NewFlagSet("rml2pdf", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&configPath, "config", "", "Config file (default ./rml2pdf.yaml or ~/.config/rml2pdf/rml2pdf.yaml)")
	flags.Bool("cjk", defaults.CJK, "Register CJK fonts found on this host")
	flags.StringSlice("cjk-lang", nil, "Only register CJK fonts for these languages (zh-Hans, zh-Hant, ja, ko)")
	flags.StringArray("font-dir", nil, "Font directory searched before the system ones (repeatable)")
	flags.Bool("system-fonts", defaults.SystemFonts, "Search the system font directories for CJK fonts")
	flags.StringArray("font", nil, "Register a TrueType font as NAME=PATH (repeatable)")
	flags.String("page-size", defaults.PageSize, "Page size for documents that declare none")
	flags.Bool("compress", defaults.Compress, "Compress PDF streams")
	flags.BoolP("verbose", "v", false, "Debug logging on stderr")
	flags.BoolVar(&listFonts, "list-fonts", false, "Show which files provide the CJK fonts and exit")
	flags.BoolVar(&printConfig, "print-config", false, "Print the effective configuration as YAML and exit")
	flags.BoolVar(&showVersion, "version", false, "Print version and exit")
	flags.SortFlags = false
	flags.Usage = func() {
		fmt.Fprintln(stderr, version.Module(), version.Current())
		fmt.Fprintln(stderr, "Usage: rml2pdf [flags] <input.rml> <output.pdf>")
		fmt.Fprintln(stderr, "\nUse - as output to write the PDF to stdout.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}

	if showVersion {
		fmt.Fprintln(stdout, version.Module(), version.Current())
		return 0
	}
	rest := flags.Args()
	if !listFonts && !printConfig && len(rest) != 2 {
		flags.Usage()
		return 1
	}

	cfg, used, err := config.Load(config.LoadOptions{File: configPath, Flags: flags})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	reset := logger.Setup(logger.Config{Writer: stderr, Debug: cfg.Verbose})
	defer reset()
	log := logger.L()
	if used != "" {
		log.Debug("using config file", "path", used)
	}

	if printConfig {
		data, err := cfg.YAML()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		_, _ = stdout.Write(data)
		return 0
	}

	fontOpts, err := fontOptions(cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if listFonts {
		return listCJK(stdout, stderr, fontOpts)
	}

	inPath, outPath := rest[0], rest[1]

	info, err := os.Stat(inPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(stderr, "Error: Input file '%s' does not exist\n", inPath)
		} else {
			fmt.Fprintf(stderr, "Error reading file '%s': %v\n", inPath, err)
		}
		return 1
	}
	src, err := readSource(inPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(stderr, "Error: File '%s' not found\n", inPath)
		} else {
			fmt.Fprintf(stderr, "Error reading file '%s': %v\n", inPath, err)
		}
		return 1
	}

	var out io.Writer
	if outPath == "-" {
		if isTerminal(stdout) {
			fmt.Fprintln(stderr, "refusing to write PDF to terminal; give an output path")
			return 1
		}
		out = stdout
	}

	registry := pdf.NewFontRegistry()
	if err := registerUserFonts(registry, cfg); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if cfg.CJK {
		registerCJK(registry, fontOpts, stderr, log)
	}

	pdfCfg := pdf.DefaultConfig()
	pdfCfg.PageSize = cfg.PageSize
	pdfCfg.DisableCompression = !cfg.Compress
	pdfCfg.BaseDir = filepath.Dir(normalizePath(inPath))
	pdfCfg.CreationDate = info.ModTime().UTC()

	var buf bytes.Buffer
	if err := pdf.Render(pdf.RenderRequest{
		Reader: bytes.NewReader(src),
		Writer: &buf,
		Config: pdfCfg,
		Fonts:  registry,
		Logger: log,
	}); err != nil {
		fmt.Fprintf(stderr, "Error during conversion: %v\n", err)
		return 1
	}

	if out != nil {
		if _, err := out.Write(buf.Bytes()); err != nil {
			fmt.Fprintf(stderr, "Error writing file '%s': %v\n", outPath, err)
			return 1
		}
		return 0
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		fmt.Fprintf(stderr, "Error writing file '%s': %v\n", outPath, err)
		return 1
	}
	fmt.Fprintf(stdout, "Successfully converted '%s' to '%s'\n", inPath, outPath)
	return 0
}

// readSource reads path and rejects content that is not UTF-8 text.
func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := rml.ValidateInput(data); err != nil {
		return nil, err
	}
	return data, nil
}

func fontOptions(cfg config.Config, log *slog.Logger) (fonts.Options, error) {
	langs, err := fonts.ParseLanguages(cfg.CJKLanguages)
	if err != nil {
		return fonts.Options{}, err
	}
	dirs := make([]string, 0, len(cfg.FontDirs))
	for _, d := range cfg.FontDirs {
		dirs = append(dirs, normalizePath(d))
	}
	if cfg.SystemFonts {
		dirs = append(dirs, fonts.DefaultDirs()...)
	}
	return fonts.Options{
		Dirs:      dirs,
		Languages: langs,
		Logger:    log,
	}, nil
}

func registerUserFonts(reg *pdf.FontRegistry, cfg config.Config) error {
	specs, err := cfg.FontSpecs()
	if err != nil {
		return err
	}
	for _, spec := range specs {
		if err := reg.RegisterTTF(spec.Name, normalizePath(spec.Path)); err != nil {
			return fmt.Errorf("font %s: %w", spec.Name, err)
		}
	}
	return nil
}

// registerCJK never fails the conversion; problems become warnings.
func registerCJK(reg *pdf.FontRegistry, opts fonts.Options, stderr io.Writer, log *slog.Logger) {
	report, err := fonts.RegisterCJK(reg, opts)
	if err != nil {
		fmt.Fprintf(stderr, "warning: CJK font registration skipped: %v\n", err)
		return
	}
	available := len(report.Registered)
	for _, s := range report.Skipped {
		if errors.Is(s.Err, fonts.ErrAlreadyRegistered) {
			available++
		}
		log.Debug("cjk font skipped", "font", s.Name, "err", s.Err)
	}
	if available == 0 {
		fmt.Fprintln(stderr, "warning: no CJK fonts registered; CJK text may not render")
		return
	}
	log.Info("registered cjk fonts", "fonts", strings.Join(report.Registered, ", "))
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
