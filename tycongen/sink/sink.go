// Package sink provides destinations for generated files.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// ErrExists is returned by CreateFile when the path is already taken.
var ErrExists = errors.New("file already exists")

// OutputSink receives generated files. Paths are slash-separated and
// relative to the sink's root. Implementations are safe for concurrent
// use.
type OutputSink interface {
	// WriteFile writes content, replacing any existing file.
	WriteFile(ctx context.Context, path string, content []byte) error

	// CreateFile writes content only if path does not exist yet, and
	// returns an error wrapping ErrExists otherwise. Handler stubs are
	// written this way so user code is never clobbered.
	CreateFile(ctx context.Context, path string, content []byte) error
}

// FilesystemSink writes below a directory on disk. Every write goes to a
// temp file first and is then renamed or linked into place, so readers
// never observe a partial file.
type FilesystemSink struct {
	Root string

	// Mode is the permission of written files (default 0644).
	Mode os.FileMode
}

// NewFilesystemSink returns a sink rooted at root.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: 0o644}
}

// WriteFile implements OutputSink.
func (s *FilesystemSink) WriteFile(ctx context.Context, path string, content []byte) error {
	return s.write(ctx, path, content, true)
}

// CreateFile implements OutputSink.
func (s *FilesystemSink) CreateFile(ctx context.Context, path string, content []byte) error {
	return s.write(ctx, path, content, false)
}

func (s *FilesystemSink) write(ctx context.Context, path string, content []byte, replace bool) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	full := filepath.Join(s.Root, filepath.FromSlash(path))
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tycon-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	// Removing after a successful rename fails harmlessly; after a link
	// it drops the extra name.
	defer os.Remove(tmpPath)

	_, werr := tmp.Write(content)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	mode := s.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("set file mode: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if replace {
		if err := os.Rename(tmpPath, full); err != nil {
			return fmt.Errorf("rename temp file: %w", err)
		}
		return nil
	}
	// Link fails with EEXIST instead of racing a stat.
	if err := os.Link(tmpPath, full); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

// MemorySink keeps files in memory.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// WriteFile implements OutputSink.
func (s *MemorySink) WriteFile(ctx context.Context, path string, content []byte) error {
	return s.write(ctx, path, content, true)
}

// CreateFile implements OutputSink.
func (s *MemorySink) CreateFile(ctx context.Context, path string, content []byte) error {
	return s.write(ctx, path, content, false)
}

func (s *MemorySink) write(ctx context.Context, path string, content []byte, replace bool) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[path]; ok && !replace {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}
	s.files[path] = slices.Clone(content)
	return nil
}

// Get returns a copy of the file at path, or nil.
func (s *MemorySink) Get(path string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.files[path])
}

// Paths returns the written paths, sorted.
func (s *MemorySink) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Reset removes every file.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string][]byte)
}

// ValidatePath reports whether path is a clean, relative, slash-separated
// path that stays below the root.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return errors.New("path is empty")
	case strings.HasPrefix(path, "/") || len(path) >= 2 && path[1] == ':':
		return errors.New("absolute paths not allowed")
	case strings.Contains(path, `\`):
		return errors.New("backslashes not allowed")
	case !fs.ValidPath(path) || path == ".":
		if slices.Contains(strings.Split(path, "/"), "..") {
			return errors.New("path traversal not allowed")
		}
		return errors.New("path is not clean")
	}
	return nil
}
