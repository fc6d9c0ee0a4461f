package fonts

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNoFontSource is returned when none of the searched font directories
// can be read.
var ErrNoFontSource = errors.New("fonts: no readable font directory")

// Index maps lower-cased font file base names to their paths.
type Index map[string]string

// Lookup returns the path of the file named name, ignoring case.
func (idx Index) Lookup(name string) (string, bool) {
	p, ok := idx[strings.ToLower(name)]
	return p, ok
}

// DefaultDirs returns the system and per-user font directories for the
// running OS. Directories that do not exist are included; BuildIndex skips
// them.
func DefaultDirs() []string {
	home, _ := os.UserHomeDir()
	var dirs []string
	switch runtime.GOOS {
	case "windows":
		dirs = []string{`C:\Windows\Fonts`}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "AppData", "Local", "Microsoft", "Windows", "Fonts"))
		}
	case "darwin":
		dirs = []string{"/System/Library/Fonts", "/Library/Fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
	default:
		dirs = []string{"/usr/share/fonts", "/usr/local/share/fonts"}
		if home != "" {
			dirs = append(dirs,
				filepath.Join(home, ".local", "share", "fonts"),
				filepath.Join(home, ".fonts"))
		}
	}
	return dirs
}

// BuildIndex walks dirs recursively and indexes every regular file by its
// lower-cased base name. When the same name appears more than once the
// first directory in dirs wins; within a directory the lexically first path
// wins. Unreadable subdirectories are skipped.
func BuildIndex(dirs []string) (Index, error) {
	idx := make(Index)
	readable := 0
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		readable++
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() && path != dir {
					return fs.SkipDir
				}
				return nil
			}
			if !isFontFile(path, d) {
				return nil
			}
			key := strings.ToLower(d.Name())
			if _, seen := idx[key]; !seen {
				idx[key] = path
			}
			return nil
		})
	}
	if readable == 0 {
		return nil, ErrNoFontSource
	}
	return idx, nil
}

// isFontFile accepts regular files and symlinks that resolve to one. Many
// distributions install fonts as links into a shared directory.
func isFontFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
