// Package writer places generated client files into the host project.
package writer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mark3labs/swagger-cli/internal/logging"
)

// ErrNoMatch is returned by Copy when the source pattern matches nothing.
var ErrNoMatch = errors.New("no files match")

// PlannedFile describes a file the writer wrote, or would write in dry-run mode.
type PlannedFile struct {
	Path   string // relative to the writer root when inside it
	Size   int
	Mode   os.FileMode
	Source string // set for copies
}

// Writer writes files under a root directory. It is safe for concurrent use.
type Writer struct {
	root   string
	dryRun bool
	logger *slog.Logger

	mu      sync.Mutex
	planned []PlannedFile
}

// Option configures a Writer.
type Option func(*Writer)

// WithDryRun records writes without touching the filesystem.
func WithDryRun(dryRun bool) Option { return func(w *Writer) { w.dryRun = dryRun } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(w *Writer) { w.logger = l } }

// New returns a Writer rooted at root. Relative paths passed to Write and
// Copy resolve against it.
func New(root string, opts ...Option) *Writer {
	w := &Writer{root: root, logger: logging.Discard()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Root returns the directory relative paths resolve against.
func (w *Writer) Root() string { return w.root }

// DryRun reports whether writes are only planned.
func (w *Writer) DryRun() bool { return w.dryRun }

func (w *Writer) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(w.root, path)
}

func (w *Writer) rel(abs string) string {
	if r, err := filepath.Rel(w.root, abs); err == nil && !strings.HasPrefix(r, "..") {
		return filepath.ToSlash(r)
	}
	return abs
}

func (w *Writer) record(p PlannedFile) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.planned = append(w.planned, p)
}

// Planned returns every recorded write sorted by path.
func (w *Writer) Planned() []PlannedFile {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := append([]PlannedFile(nil), w.planned...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Write replaces the file at path with content.
func (w *Writer) Write(path string, content []byte) error {
	target := w.abs(path)
	w.record(PlannedFile{Path: w.rel(target), Size: len(content), Mode: 0o644})
	if w.dryRun {
		return nil
	}
	if err := writeAtomic(target, content, 0o644); err != nil {
		return err
	}
	w.logger.Debug("wrote file", "path", w.rel(target), "bytes", len(content))
	return nil
}

// Copy copies src to dest. When src is a glob pattern, dest is a directory
// and each match keeps its base name; otherwise dest is the target file.
// Sources are read even in dry-run mode so missing output is still reported.
func (w *Writer) Copy(src, dest string) ([]string, error) {
	if !hasMeta(src) {
		target := w.abs(dest)
		if err := w.copyFile(src, target); err != nil {
			return nil, err
		}
		return []string{target}, nil
	}
	matches, err := filepath.Glob(src)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", src, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w %s", ErrNoMatch, src)
	}
	sort.Strings(matches)
	dir := w.abs(dest)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		target := filepath.Join(dir, filepath.Base(m))
		if err := w.copyFile(m, target); err != nil {
			return out, err
		}
		out = append(out, target)
	}
	return out, nil
}

func (w *Writer) copyFile(src, target string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	w.record(PlannedFile{Path: w.rel(target), Size: len(data), Mode: 0o644, Source: src})
	if w.dryRun {
		return nil
	}
	if err := writeAtomic(target, data, 0o644); err != nil {
		return err
	}
	w.logger.Debug("copied file", "from", src, "to", w.rel(target))
	return nil
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, `*?[`)
}

// writeAtomic writes through a temp file in the target directory and renames
// it over path.
func writeAtomic(path string, content []byte, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write temp %s: %w", path, err)
	}
	tmp := f.Name()
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write temp %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp %s: %w", path, err)
	}
	if err := os.Chmod(tmp, mode); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
