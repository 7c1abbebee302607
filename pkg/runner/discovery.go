package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Discover resolves opts.Paths against the working directory and returns the
// absolute paths of every matching Markdown file, sorted and deduplicated.
// Directories are walked recursively; explicit file paths are still checked
// against the extension and glob filters.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := baseDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	exts := opts.matchExtensions()

	var files []string
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, root := range opts.roots() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		abs := root
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(workDir, abs)
		}
		abs = filepath.Clean(abs)

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}

		if !info.IsDir() {
			if wantFile(abs, workDir, exts, opts) {
				add(abs)
			}
			continue
		}

		found, err := walkTree(ctx, abs, workDir, exts, opts)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	slices.Sort(files)
	return files, nil
}

func baseDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	return filepath.Abs(workDir)
}

// relTo rewrites path relative to workDir for glob matching, falling back to
// the absolute path when no relative form exists.
func relTo(workDir, path string) string {
	rel, err := filepath.Rel(workDir, path)
	if err != nil {
		return path
	}
	return rel
}

// walkTree walks root and collects matching files. Hidden entries are
// skipped, excluded directories are pruned without descending, and directory
// symlinks are followed only when opts.FollowSymlinks is set.
func walkTree(
	ctx context.Context,
	root string,
	workDir string,
	exts []string,
	opts Options,
) ([]string, error) {
	var files []string

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			if os.IsPermission(err) {
				return nil
			}
			return err
		}

		if entry.IsDir() {
			if path != root && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			if matchesAny(relTo(workDir, path), opts.ExcludeGlobs) {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			target, isDir, ok := linkTarget(path)
			if !ok {
				return nil
			}
			if isDir {
				if !opts.FollowSymlinks {
					return nil
				}
				// Descend into the resolved target; WalkDir itself
				// never follows the link.
				sub, serr := walkTree(ctx, target, workDir, exts, opts)
				if serr != nil {
					return serr
				}
				files = append(files, sub...)
				return nil
			}
			// File symlinks go through the regular filters below.
		}

		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}

		if wantFile(path, workDir, exts, opts) {
			files = append(files, path)
		}
		return nil
	})

	if walkErr != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, walkErr)
	}
	return files, nil
}

// linkTarget resolves a symlink and classifies its target. Broken or
// unreadable links report ok=false.
func linkTarget(path string) (target string, isDir, ok bool) {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false, false
	}
	info, err := os.Stat(target)
	if err != nil {
		return "", false, false
	}
	return target, info.IsDir(), true
}

// wantFile applies the extension, exclude, and include filters to one file.
func wantFile(path, workDir string, exts []string, opts Options) bool {
	if !extMatch(path, exts) {
		return false
	}
	rel := relTo(workDir, path)
	if matchesAny(rel, opts.ExcludeGlobs) {
		return false
	}
	return len(opts.IncludeGlobs) == 0 || matchesAny(rel, opts.IncludeGlobs)
}

func extMatch(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

func matchesAny(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		if globMatch(relPath, pattern) {
			return true
		}
	}
	return false
}

// globMatch matches a slash-normalized path against a glob pattern. Plain
// patterns use filepath.Match semantics against the whole path and again
// against the base name, so "*.md" matches at any depth. Patterns containing
// "**" match across separators.
func globMatch(path, pattern string) bool {
	path = filepath.ToSlash(path)
	pattern = filepath.ToSlash(pattern)

	if strings.Contains(pattern, "**") {
		return deepMatch(path, pattern)
	}

	if ok, err := filepath.Match(pattern, path); err == nil && ok {
		return true
	}
	ok, err := filepath.Match(pattern, filepath.Base(path))
	return err == nil && ok
}

// deepMatch handles the recursive glob forms: "**/name" matches name at any
// depth, "dir/**" matches everything under dir, and "**/name/**" matches any
// path with a component named name. A bare "**" matches everything.
func deepMatch(path, pattern string) bool {
	head, tail, _ := strings.Cut(pattern, "**")
	head = strings.TrimSuffix(head, "/")
	tail = strings.TrimPrefix(tail, "/")

	switch {
	case head == "" && tail == "":
		return true

	case head == "":
		if name, anchored := strings.CutSuffix(tail, "/**"); anchored {
			return componentMatch(path, name)
		}
		return strings.HasSuffix(path, tail) ||
			componentMatch(path, tail) ||
			strings.Contains(path, tail)

	case tail == "":
		return path == head || strings.HasPrefix(path, head+"/")

	default:
		if !strings.HasPrefix(path, head) {
			return false
		}
		if strings.HasSuffix(path, tail) {
			return true
		}
		ok, err := filepath.Match(tail, filepath.Base(path))
		return err == nil && ok
	}
}

// componentMatch reports whether any slash-separated component of path
// matches the pattern component.
func componentMatch(path, component string) bool {
	for _, part := range strings.Split(path, "/") {
		if ok, err := filepath.Match(component, part); err == nil && ok {
			return true
		}
	}
	return false
}
