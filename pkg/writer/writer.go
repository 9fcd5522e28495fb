// Package writer persists rendered files under an output directory.
package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/blimu-dev/typegen/pkg/ir"
)

// Error reports a failed filesystem operation on one output path.
type Error struct {
	Path string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Writer writes files below OutDir, skipping paths matched by exclude globs.
type Writer struct {
	outDir   string
	excludes []string
}

// New returns a Writer for outDir. Exclude patterns use doublestar syntax
// and are matched against slash-separated paths relative to outDir; a
// pattern ending in "/" excludes everything below that directory.
func New(outDir string, excludes []string) (*Writer, error) {
	for _, pattern := range excludes {
		if !doublestar.ValidatePattern(strings.TrimSuffix(filepath.ToSlash(pattern), "/")) {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}
	return &Writer{outDir: outDir, excludes: excludes}, nil
}

// OutDir returns the output directory.
func (w *Writer) OutDir() string { return w.outDir }

// Excluded reports whether the relative path rel must not be written.
func (w *Writer) Excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.excludes {
		pattern = filepath.ToSlash(pattern)
		if dir, ok := strings.CutSuffix(pattern, "/"); ok {
			if strings.HasPrefix(rel, dir+"/") {
				return true
			}
			continue
		}
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// Write creates every file that is not excluded and returns how many were
// written. It stops at the first failure or when ctx is cancelled.
func (w *Writer) Write(ctx context.Context, files []ir.File) (int, error) {
	written := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if w.Excluded(f.Path) {
			continue
		}

		target, err := w.resolve(f.Path)
		if err != nil {
			return written, err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, &Error{Path: target, Op: "mkdir", Err: err}
		}
		if err := os.WriteFile(target, f.Content, 0o644); err != nil {
			return written, &Error{Path: target, Op: "write", Err: err}
		}
		written++
	}
	return written, nil
}

// resolve joins rel onto the output directory, refusing paths that would
// land outside of it.
func (w *Writer) resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if rel == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", &Error{Path: rel, Op: "resolve", Err: fmt.Errorf("path escapes output directory")}
	}
	return filepath.Join(w.outDir, clean), nil
}
