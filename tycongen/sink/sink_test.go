package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		errMsg string
	}{
		{name: "simple", path: "server.ts"},
		{name: "nested", path: "handlers/getUser.ts"},
		{name: "empty", path: "", errMsg: "empty"},
		{name: "leading slash", path: "/etc/passwd", errMsg: "absolute paths not allowed"},
		{name: "drive letter", path: "C:/x.ts", errMsg: "absolute paths not allowed"},
		{name: "backslash", path: `handlers\x.ts`, errMsg: "backslashes"},
		{name: "dotdot inside", path: "a/../b.ts", errMsg: "path traversal not allowed"},
		{name: "dotdot prefix", path: "../b.ts", errMsg: "path traversal not allowed"},
		{name: "dotdot alone", path: "..", errMsg: "path traversal not allowed"},
		{name: "dot prefix", path: "./b.ts", errMsg: "not clean"},
		{name: "double slash", path: "a//b.ts", errMsg: "not clean"},
		{name: "trailing slash", path: "a/", errMsg: "not clean"},
		{name: "dot", path: ".", errMsg: "not clean"},
		{name: "dots in name", path: "a..b.ts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("ValidatePath(%q) = %v, want nil", tt.path, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidatePath(%q) = %v, want error containing %q", tt.path, err, tt.errMsg)
			}
		})
	}
}

func TestFilesystemSink(t *testing.T) {
	ctx := context.Background()

	t.Run("write creates directories", func(t *testing.T) {
		dir := t.TempDir()
		s := NewFilesystemSink(dir)
		if err := s.WriteFile(ctx, "handlers/getUser.ts", []byte("v1")); err != nil {
			t.Fatal(err)
		}
		got, err := os.ReadFile(filepath.Join(dir, "handlers", "getUser.ts"))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "v1" {
			t.Errorf("content = %q, want v1", got)
		}
	})

	t.Run("write replaces", func(t *testing.T) {
		dir := t.TempDir()
		s := NewFilesystemSink(dir)
		for _, v := range []string{"v1", "v2"} {
			if err := s.WriteFile(ctx, "server.ts", []byte(v)); err != nil {
				t.Fatal(err)
			}
		}
		got, _ := os.ReadFile(filepath.Join(dir, "server.ts"))
		if string(got) != "v2" {
			t.Errorf("content = %q, want v2", got)
		}
	})

	t.Run("create keeps existing", func(t *testing.T) {
		dir := t.TempDir()
		s := NewFilesystemSink(dir)
		if err := s.CreateFile(ctx, "stub.ts", []byte("user code")); err != nil {
			t.Fatal(err)
		}
		err := s.CreateFile(ctx, "stub.ts", []byte("generated"))
		if !errors.Is(err, ErrExists) {
			t.Fatalf("CreateFile() = %v, want ErrExists", err)
		}
		got, _ := os.ReadFile(filepath.Join(dir, "stub.ts"))
		if string(got) != "user code" {
			t.Errorf("content = %q, want user code", got)
		}
	})

	t.Run("no temp files left", func(t *testing.T) {
		dir := t.TempDir()
		s := NewFilesystemSink(dir)
		_ = s.WriteFile(ctx, "a.ts", []byte("a"))
		_ = s.CreateFile(ctx, "b.ts", []byte("b"))
		_ = s.CreateFile(ctx, "b.ts", []byte("b"))
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".tycon-") {
				t.Errorf("leftover temp file %s", e.Name())
			}
		}
		if len(entries) != 2 {
			t.Errorf("got %d entries, want 2", len(entries))
		}
	})

	t.Run("mode", func(t *testing.T) {
		dir := t.TempDir()
		s := &FilesystemSink{Root: dir, Mode: 0o600}
		if err := s.WriteFile(ctx, "x.ts", nil); err != nil {
			t.Fatal(err)
		}
		info, err := os.Stat(filepath.Join(dir, "x.ts"))
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Errorf("mode = %v, want 0600", info.Mode().Perm())
		}
	})

	t.Run("rejects traversal", func(t *testing.T) {
		s := NewFilesystemSink(t.TempDir())
		if err := s.WriteFile(ctx, "../escape.ts", nil); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		s := NewFilesystemSink(t.TempDir())
		if err := s.WriteFile(cctx, "x.ts", nil); !errors.Is(err, context.Canceled) {
			t.Errorf("WriteFile() = %v, want context.Canceled", err)
		}
	})
}

func TestMemorySink(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySink()

	content := []byte("hello")
	if err := s.WriteFile(ctx, "b.ts", content); err != nil {
		t.Fatal(err)
	}
	content[0] = 'j'
	if got := string(s.Get("b.ts")); got != "hello" {
		t.Errorf("Get() = %q, want copy %q", got, "hello")
	}
	if err := s.CreateFile(ctx, "a.ts", []byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateFile(ctx, "a.ts", []byte("again")); !errors.Is(err, ErrExists) {
		t.Errorf("CreateFile() = %v, want ErrExists", err)
	}
	if got := s.Paths(); len(got) != 2 || got[0] != "a.ts" || got[1] != "b.ts" {
		t.Errorf("Paths() = %v", got)
	}
	if s.Get("missing.ts") != nil {
		t.Error("Get(missing) should be nil")
	}
	s.Reset()
	if len(s.Paths()) != 0 {
		t.Error("Reset() left files")
	}
}

func TestSinks_Concurrent(t *testing.T) {
	ctx := context.Background()
	sinks := map[string]OutputSink{
		"memory":     NewMemorySink(),
		"filesystem": NewFilesystemSink(t.TempDir()),
	}
	for name, s := range sinks {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			errs := make(chan error, 40)
			for i := range 20 {
				wg.Go(func() {
					errs <- s.WriteFile(ctx, fmt.Sprintf("f%d.ts", i), []byte("x"))
				})
				wg.Go(func() {
					errs <- s.CreateFile(ctx, "shared.ts", []byte("x"))
				})
			}
			wg.Wait()
			close(errs)
			exists := 0
			for err := range errs {
				switch {
				case err == nil:
				case errors.Is(err, ErrExists):
					exists++
				default:
					t.Error(err)
				}
			}
			// Exactly one of the 20 creates wins.
			if exists != 19 {
				t.Errorf("%d creates failed with ErrExists, want 19", exists)
			}
		})
	}
}
