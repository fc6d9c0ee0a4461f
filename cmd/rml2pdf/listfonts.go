package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"
	"golang.org/x/term"

	"pkt.systems/rml/fonts"
)

const (
	defaultWidth = 100
	fontColumn   = 20
	langColumn   = 9
)

func listCJK(stdout, stderr io.Writer, opts fonts.Options) int {
	resolved, err := fonts.Resolve(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	writeFontTable(stdout, resolved, terminalWidth(stdout, defaultWidth))
	return 0
}

func writeFontTable(w io.Writer, resolved []fonts.Resolution, width int) {
	fileColumn := width - fontColumn - langColumn
	if fileColumn < 10 {
		fileColumn = 10
	}
	row := func(name, lang, file string) {
		fmt.Fprintf(w, "%s%s%s\n",
			padding.String(truncate.StringWithTail(name, fontColumn-1, "…"), fontColumn),
			padding.String(truncate.StringWithTail(lang, langColumn-1, "…"), langColumn),
			fitPath(file, fileColumn))
	}
	row("FONT", "LANG", "FILE")
	for _, res := range resolved {
		file := res.Face.Path
		if res.Err != nil {
			file = "-"
			if !errors.Is(res.Err, fonts.ErrNotFound) {
				file = "unusable: " + res.Err.Error()
			}
		}
		row(res.Font.Name, res.Font.Lang.String(), file)
	}
}

// fitPath keeps the end of a path, which carries the file name, when it is
// wider than limit.
func fitPath(path string, limit int) string {
	if ansi.PrintableRuneWidth(path) <= limit {
		return path
	}
	if limit <= 1 {
		return "…"
	}
	runes := []rune(path)
	if len(runes) <= limit {
		return path
	}
	return "…" + string(runes[len(runes)-limit+1:])
}

func terminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	fd := int(f.Fd())
	if term.IsTerminal(fd) {
		if cols, _, err := term.GetSize(fd); err == nil && cols > 0 {
			return cols
		}
	}
	return fallback
}
