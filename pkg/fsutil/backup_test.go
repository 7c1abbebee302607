package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/yaklabco/marklint/pkg/fsutil"
)

func sidecarConfig() fsutil.BackupConfig {
	return fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeSidecar}
}

func TestBackupPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		mode fsutil.BackupMode
		want string
	}{
		{
			name: "sidecar appends suffix",
			path: "/docs/guide.md",
			mode: fsutil.BackupModeSidecar,
			want: "/docs/guide.md" + fsutil.BackupSuffix,
		},
		{
			name: "none yields empty path",
			path: "/docs/guide.md",
			mode: fsutil.BackupModeNone,
			want: "",
		},
		{
			name: "unrecognized mode behaves like sidecar",
			path: "/docs/guide.md",
			mode: fsutil.BackupMode("zip"),
			want: "/docs/guide.md" + fsutil.BackupSuffix,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fsutil.BackupPath(tt.path, tt.mode); got != tt.want {
				t.Errorf("BackupPath(%q, %q) = %q, want %q", tt.path, tt.mode, got, tt.want)
			}
		})
	}
}

func TestDefaultBackupConfig(t *testing.T) {
	t.Parallel()

	cfg := fsutil.DefaultBackupConfig()
	if cfg.Enabled {
		t.Error("backups enabled by default")
	}
	if cfg.Mode != fsutil.BackupModeSidecar {
		t.Errorf("Mode = %q, want %q", cfg.Mode, fsutil.BackupModeSidecar)
	}
}

func TestCreateBackup(t *testing.T) {
	t.Parallel()

	t.Run("copies the original", func(t *testing.T) {
		t.Parallel()

		content := []byte("# Original\n")
		path := filepath.Join(t.TempDir(), "doc.md")
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		created, err := fsutil.CreateBackup(context.Background(), path, sidecarConfig())
		if err != nil {
			t.Fatalf("CreateBackup: %v", err)
		}
		if !created {
			t.Error("created = false, want true")
		}

		readBack(t, fsutil.BackupPath(path, fsutil.BackupModeSidecar), content)
	})

	t.Run("keeps an existing backup", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "doc.md")
		if err := os.WriteFile(path, []byte("second run\n"), 0644); err != nil {
			t.Fatalf("setup original: %v", err)
		}

		// The backup from a previous run preserves the oldest content.
		firstRun := []byte("first run\n")
		backupPath := fsutil.BackupPath(path, fsutil.BackupModeSidecar)
		if err := os.WriteFile(backupPath, firstRun, 0644); err != nil {
			t.Fatalf("setup backup: %v", err)
		}

		created, err := fsutil.CreateBackup(context.Background(), path, sidecarConfig())
		if err != nil {
			t.Fatalf("CreateBackup: %v", err)
		}
		if created {
			t.Error("created = true, want false for existing backup")
		}
		readBack(t, backupPath, firstRun)
	})

	t.Run("disabled config does nothing", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "doc.md")
		if err := os.WriteFile(path, []byte("content\n"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		cfg := fsutil.BackupConfig{Enabled: false, Mode: fsutil.BackupModeSidecar}
		created, err := fsutil.CreateBackup(context.Background(), path, cfg)
		if err != nil {
			t.Fatalf("CreateBackup: %v", err)
		}
		if created {
			t.Error("created = true with backups disabled")
		}
		if fsutil.BackupExists(path, fsutil.BackupModeSidecar) {
			t.Error("backup file written with backups disabled")
		}
	})

	t.Run("mode none does nothing", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "doc.md")
		if err := os.WriteFile(path, []byte("content\n"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		cfg := fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeNone}
		created, err := fsutil.CreateBackup(context.Background(), path, cfg)
		if err != nil {
			t.Fatalf("CreateBackup: %v", err)
		}
		if created {
			t.Error("created = true with mode none")
		}
	})

	t.Run("missing original is not an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "absent.md")
		created, err := fsutil.CreateBackup(context.Background(), path, sidecarConfig())
		if err != nil {
			t.Fatalf("CreateBackup: %v", err)
		}
		if created {
			t.Error("created = true for missing original")
		}
	})

	t.Run("backup keeps the original mode", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "doc.md")
		if err := os.WriteFile(path, []byte("private\n"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		if _, err := fsutil.CreateBackup(context.Background(), path, sidecarConfig()); err != nil {
			t.Fatalf("CreateBackup: %v", err)
		}

		stat, err := os.Stat(fsutil.BackupPath(path, fsutil.BackupModeSidecar))
		if err != nil {
			t.Fatalf("stat backup: %v", err)
		}
		if stat.Mode().Perm() != 0600 {
			t.Errorf("backup mode = %o, want %o", stat.Mode().Perm(), 0600)
		}
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "doc.md")
		if err := os.WriteFile(path, []byte("content\n"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := fsutil.CreateBackup(ctx, path, sidecarConfig()); err == nil {
			t.Fatal("expected error for cancelled context")
		}
	})
}

func TestRestoreBackup(t *testing.T) {
	t.Parallel()

	t.Run("overwrites the current file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "doc.md")
		if err := os.WriteFile(path, []byte("botched fix\n"), 0644); err != nil {
			t.Fatalf("setup current: %v", err)
		}

		saved := []byte("pristine copy\n")
		backupPath := fsutil.BackupPath(path, fsutil.BackupModeSidecar)
		if err := os.WriteFile(backupPath, saved, 0644); err != nil {
			t.Fatalf("setup backup: %v", err)
		}

		restored, err := fsutil.RestoreBackup(context.Background(), path, fsutil.BackupModeSidecar)
		if err != nil {
			t.Fatalf("RestoreBackup: %v", err)
		}
		if !restored {
			t.Error("restored = false, want true")
		}
		readBack(t, path, saved)
	})

	t.Run("no backup present", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "doc.md")
		restored, err := fsutil.RestoreBackup(context.Background(), path, fsutil.BackupModeSidecar)
		if err != nil {
			t.Fatalf("RestoreBackup: %v", err)
		}
		if restored {
			t.Error("restored = true with no backup")
		}
	})

	t.Run("mode none restores nothing", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "doc.md")
		restored, err := fsutil.RestoreBackup(context.Background(), path, fsutil.BackupModeNone)
		if err != nil {
			t.Fatalf("RestoreBackup: %v", err)
		}
		if restored {
			t.Error("restored = true with mode none")
		}
	})
}

func TestRemoveBackup(t *testing.T) {
	t.Parallel()

	t.Run("deletes the backup file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "doc.md")
		backupPath := fsutil.BackupPath(path, fsutil.BackupModeSidecar)
		if err := os.WriteFile(backupPath, []byte("old\n"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		removed, err := fsutil.RemoveBackup(path, fsutil.BackupModeSidecar)
		if err != nil {
			t.Fatalf("RemoveBackup: %v", err)
		}
		if !removed {
			t.Error("removed = false, want true")
		}
		if fsutil.BackupExists(path, fsutil.BackupModeSidecar) {
			t.Error("backup still present after removal")
		}
	})

	t.Run("nothing to delete", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "doc.md")
		removed, err := fsutil.RemoveBackup(path, fsutil.BackupModeSidecar)
		if err != nil {
			t.Fatalf("RemoveBackup: %v", err)
		}
		if removed {
			t.Error("removed = true with no backup")
		}
	})

	t.Run("mode none removes nothing", func(t *testing.T) {
		t.Parallel()

		removed, err := fsutil.RemoveBackup("/docs/guide.md", fsutil.BackupModeNone)
		if err != nil {
			t.Fatalf("RemoveBackup: %v", err)
		}
		if removed {
			t.Error("removed = true with mode none")
		}
	})
}

func TestBackupExists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.md")
	if fsutil.BackupExists(path, fsutil.BackupModeSidecar) {
		t.Error("exists = true before any backup")
	}
	if fsutil.BackupExists(path, fsutil.BackupModeNone) {
		t.Error("exists = true for mode none")
	}

	backupPath := fsutil.BackupPath(path, fsutil.BackupModeSidecar)
	if err := os.WriteFile(backupPath, []byte("saved\n"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if !fsutil.BackupExists(path, fsutil.BackupModeSidecar) {
		t.Error("exists = false after writing backup")
	}
}
