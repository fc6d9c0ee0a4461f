// Package logger holds the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Config selects where log records go and how verbose they are.
type Config struct {
	// Writer receives log records. Nil means os.Stderr.
	Writer io.Writer
	// Debug lowers the level from warn to debug and adds source locations.
	Debug bool
}

var (
	mu     sync.RWMutex
	global = slog.New(slog.DiscardHandler)
)

// Setup installs a text logger built from cfg and returns a function that
// restores the discarding logger.
func Setup(cfg Config) func() {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelWarn
	addSource := false
	if cfg.Debug {
		level = slog.LevelDebug
		addSource = true
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Timestamps make CLI output noisy and unstable.
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})

	mu.Lock()
	global = slog.New(h)
	mu.Unlock()

	return func() {
		mu.Lock()
		defer mu.Unlock()
		global = slog.New(slog.DiscardHandler)
	}
}

// L returns the current logger. Before Setup it discards everything.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}
