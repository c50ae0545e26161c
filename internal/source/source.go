// Package source models routine source files and their discovery.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vvka-141/sprocc/internal/checksum"
)

// RoutineSource is an immutable view of one routine source file, created
// at the start of a compile pass and never mutated.
//
// The file-name convention binds identity: the routine name is the base
// name minus the configured extension.
type RoutineSource struct {
	// Path is the absolute path of the source file.
	Path string

	// Dir is the absolute containing directory.
	Dir string

	// Routine is the routine name derived from the file name.
	Routine string

	// Extension is the extension convention the file was matched under.
	Extension string

	// Text is the raw file content.
	Text string

	// Lines is Text split into lines, with line endings stripped.
	Lines []string

	// ModTime is the file's last-modified time at load.
	ModTime time.Time

	// Content checksums (normalized and raw).
	Checksum    string
	ChecksumRaw string
}

// Loader reads routine sources from disk.
// Safe for concurrent use as long as the calculator is.
type Loader struct {
	calculator checksum.Calculator
}

// NewLoader creates a source loader with the given checksum calculator.
// Panics if calculator is nil.
func NewLoader(calculator checksum.Calculator) *Loader {
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	return &Loader{calculator: calculator}
}

// Load reads one source file and builds its RoutineSource view.
// The extension must match the file name or an error is returned.
func (l *Loader) Load(path, extension string) (*RoutineSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %q: %w", path, err)
	}

	base := filepath.Base(abs)
	if !strings.HasSuffix(base, extension) || len(base) == len(extension) {
		return nil, fmt.Errorf("source file %q does not match extension convention %q", path, extension)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", path, err)
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}

	text := string(raw)

	return &RoutineSource{
		Path:        abs,
		Dir:         filepath.Dir(abs),
		Routine:     strings.TrimSuffix(base, extension),
		Extension:   extension,
		Text:        text,
		Lines:       splitLines(text),
		ModTime:     info.ModTime(),
		Checksum:    l.calculator.CalculateNormalized(raw),
		ChecksumRaw: l.calculator.CalculateRaw(raw),
	}, nil
}

// Discover returns the sorted absolute paths of all files in dir matching
// the extension convention. Subdirectories are not descended into: one
// directory is one compilation unit.
func Discover(dir, extension string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory %q: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, extension) || len(name) == len(extension) {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %q: %w", name, err)
		}
		paths = append(paths, abs)
	}

	// os.ReadDir returns entries sorted by name; paths inherit that order.
	return paths, nil
}

// splitLines splits text into lines, stripping \r\n and \n endings.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
