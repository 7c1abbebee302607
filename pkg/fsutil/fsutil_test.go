package fsutil_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yaklabco/marklint/pkg/fsutil"
)

// seedDoc writes a file and returns its path and snapshot.
func seedDoc(t *testing.T, content []byte) (string, *fsutil.FileInfo) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("seed %s: %v", path, err)
	}
	_, info, err := fsutil.ReadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("snapshot %s: %v", path, err)
	}
	return path, info
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	t.Run("returns content and snapshot", func(t *testing.T) {
		t.Parallel()

		content := []byte("# Title\n\nSome prose.\n")
		path := filepath.Join(t.TempDir(), "doc.md")
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		got, info, err := fsutil.ReadFile(context.Background(), path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}

		if string(got) != string(content) {
			t.Errorf("content = %q, want %q", got, content)
		}
		if info.Path != path {
			t.Errorf("Path = %q, want %q", info.Path, path)
		}
		if info.Size != int64(len(content)) {
			t.Errorf("Size = %d, want %d", info.Size, len(content))
		}
		if info.Mode.Perm() != 0644 {
			t.Errorf("Mode = %o, want %o", info.Mode.Perm(), 0644)
		}
		if info.Hash == ([32]byte{}) {
			t.Error("Hash is zero")
		}
		if info.ModTime.IsZero() {
			t.Error("ModTime is zero")
		}
	})

	t.Run("missing file maps to ErrNotFound", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "absent.md")
		_, _, err := fsutil.ReadFile(context.Background(), path)
		if !errors.Is(err, fsutil.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("directory maps to ErrIsDirectory", func(t *testing.T) {
		t.Parallel()

		_, _, err := fsutil.ReadFile(context.Background(), t.TempDir())
		if !errors.Is(err, fsutil.ErrIsDirectory) {
			t.Errorf("err = %v, want ErrIsDirectory", err)
		}
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, _, err := fsutil.ReadFile(ctx, "anything.md"); err == nil {
			t.Fatal("expected error for cancelled context")
		}
	})
}

func TestCheckModified(t *testing.T) {
	t.Parallel()

	t.Run("untouched file", func(t *testing.T) {
		t.Parallel()

		_, info := seedDoc(t, []byte("# Stable\n"))

		modified, err := fsutil.CheckModified(context.Background(), info)
		if err != nil {
			t.Fatalf("CheckModified: %v", err)
		}
		if modified {
			t.Error("modified = true for untouched file")
		}
	})

	t.Run("rewritten file", func(t *testing.T) {
		t.Parallel()

		path, info := seedDoc(t, []byte("# Before\n"))
		if err := os.WriteFile(path, []byte("# After, much longer\n"), 0644); err != nil {
			t.Fatalf("rewrite: %v", err)
		}

		modified, err := fsutil.CheckModified(context.Background(), info)
		if err != nil {
			t.Fatalf("CheckModified: %v", err)
		}
		if !modified {
			t.Error("modified = false after rewrite")
		}
	})

	t.Run("same size and mtime but different bytes", func(t *testing.T) {
		t.Parallel()

		// A same-length rewrite with the mtime reset slips past the
		// quick check; only the content hash catches it.
		path, info := seedDoc(t, []byte("alpha content\n"))
		if err := os.WriteFile(path, []byte("delta content\n"), 0644); err != nil {
			t.Fatalf("rewrite: %v", err)
		}
		if err := os.Chtimes(path, info.ModTime, info.ModTime); err != nil {
			t.Fatalf("chtimes: %v", err)
		}

		quick, err := fsutil.CheckModifiedQuick(context.Background(), info)
		if err != nil {
			t.Fatalf("CheckModifiedQuick: %v", err)
		}
		if quick {
			t.Fatal("quick check should not see the rewrite")
		}

		modified, err := fsutil.CheckModified(context.Background(), info)
		if err != nil {
			t.Fatalf("CheckModified: %v", err)
		}
		if !modified {
			t.Error("hash check missed a same-size rewrite")
		}
	})

	t.Run("deleted file counts as modified", func(t *testing.T) {
		t.Parallel()

		path, info := seedDoc(t, []byte("# Gone soon\n"))
		if err := os.Remove(path); err != nil {
			t.Fatalf("remove: %v", err)
		}

		modified, err := fsutil.CheckModified(context.Background(), info)
		if err != nil {
			t.Fatalf("CheckModified: %v", err)
		}
		if !modified {
			t.Error("modified = false for deleted file")
		}
	})

	t.Run("nil snapshot", func(t *testing.T) {
		t.Parallel()

		_, err := fsutil.CheckModified(context.Background(), nil)
		if !errors.Is(err, fsutil.ErrNilFileInfo) {
			t.Errorf("err = %v, want ErrNilFileInfo", err)
		}
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		info := &fsutil.FileInfo{Path: "doc.md"}
		if _, err := fsutil.CheckModified(ctx, info); err == nil {
			t.Fatal("expected error for cancelled context")
		}
	})
}

func TestCheckModifiedQuick(t *testing.T) {
	t.Parallel()

	t.Run("untouched file", func(t *testing.T) {
		t.Parallel()

		_, info := seedDoc(t, []byte("# Stable\n"))

		modified, err := fsutil.CheckModifiedQuick(context.Background(), info)
		if err != nil {
			t.Fatalf("CheckModifiedQuick: %v", err)
		}
		if modified {
			t.Error("modified = true for untouched file")
		}
	})

	t.Run("size change", func(t *testing.T) {
		t.Parallel()

		path, info := seedDoc(t, []byte("short\n"))
		if err := os.WriteFile(path, []byte("a considerably longer body\n"), 0644); err != nil {
			t.Fatalf("rewrite: %v", err)
		}

		modified, err := fsutil.CheckModifiedQuick(context.Background(), info)
		if err != nil {
			t.Fatalf("CheckModifiedQuick: %v", err)
		}
		if !modified {
			t.Error("modified = false after size change")
		}
	})

	t.Run("mtime change", func(t *testing.T) {
		t.Parallel()

		path, info := seedDoc(t, []byte("# Touched\n"))
		later := info.ModTime.Add(time.Minute)
		if err := os.Chtimes(path, later, later); err != nil {
			t.Fatalf("chtimes: %v", err)
		}

		modified, err := fsutil.CheckModifiedQuick(context.Background(), info)
		if err != nil {
			t.Fatalf("CheckModifiedQuick: %v", err)
		}
		if !modified {
			t.Error("modified = false after mtime change")
		}
	})

	t.Run("nil snapshot", func(t *testing.T) {
		t.Parallel()

		_, err := fsutil.CheckModifiedQuick(context.Background(), nil)
		if !errors.Is(err, fsutil.ErrNilFileInfo) {
			t.Errorf("err = %v, want ErrNilFileInfo", err)
		}
	})
}
