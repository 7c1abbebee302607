package fsutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is used for new files when the caller passes mode 0.
const DefaultFileMode os.FileMode = 0644

// writeTemp stages content in a temp file inside dir, synced and
// chmodded, ready to be renamed over the target. The temp file is
// removed on any failure.
func writeTemp(dir, base string, content []byte, mode os.FileMode) (string, error) {
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()

	err = func() error {
		if _, err := tmp.Write(content); err != nil {
			return fmt.Errorf("write temp file: %w", err)
		}
		if err := tmp.Chmod(mode); err != nil {
			return fmt.Errorf("chmod temp file: %w", err)
		}
		if err := tmp.Sync(); err != nil {
			return fmt.Errorf("sync temp file: %w", err)
		}
		return nil
	}()
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close temp file: %w", cerr)
	}
	if err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}

// WriteAtomic writes content to path via a temp file in the same
// directory followed by a rename, so readers observe either the old
// or the new content and a crash never leaves a partial file. If mode
// is 0, DefaultFileMode is used.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write atomic: %w", err)
	}
	if mode == 0 {
		mode = DefaultFileMode
	}

	tmpPath, err := writeTemp(filepath.Dir(path), filepath.Base(path), content, mode)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// WriteAtomicIfChanged writes content atomically unless the file
// already holds exactly that content. Reports whether a write
// happened.
func WriteAtomicIfChanged(ctx context.Context, path string, content []byte, mode os.FileMode) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("write atomic: %w", err)
	}

	existing, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No previous version; always write.
	case err != nil:
		return false, fmt.Errorf("read existing: %w", err)
	case bytes.Equal(existing, content):
		return false, nil
	}

	if err := WriteAtomic(ctx, path, content, mode); err != nil {
		return false, err
	}
	return true, nil
}
