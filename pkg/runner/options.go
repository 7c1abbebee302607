// Package runner fans the lint pipeline out over many files. It walks the
// requested paths to discover Markdown sources, processes them on a bounded
// worker pool, and folds the per-file outcomes into aggregate statistics.
package runner

import "github.com/yaklabco/marklint/pkg/config"

// Options selects which files a run covers and how it executes.
type Options struct {
	// Paths are the files or directories to process. An empty slice means
	// the working directory.
	Paths []string

	// WorkingDir anchors relative Paths and glob patterns. Empty means the
	// process working directory.
	WorkingDir string

	// Extensions lists the file extensions (with leading dot) treated as
	// Markdown. Empty means DefaultExtensions().
	Extensions []string

	// IncludeGlobs restricts discovery to matching paths, relative to
	// WorkingDir. Empty imposes no restriction beyond Extensions.
	IncludeGlobs []string

	// ExcludeGlobs removes matching files and directories from discovery.
	// Ignore rules from config and CLI flags land here.
	ExcludeGlobs []string

	// FollowSymlinks enables descending into directory symlinks.
	FollowSymlinks bool

	// Jobs bounds the worker pool. Zero or negative selects one worker
	// per CPU.
	Jobs int

	// Config is the resolved configuration for the run.
	Config *config.Config
}

// DefaultExtensions returns the extensions treated as Markdown when
// Options.Extensions is empty.
func DefaultExtensions() []string {
	return []string{".md", ".markdown"}
}

func (o Options) matchExtensions() []string {
	if len(o.Extensions) > 0 {
		return o.Extensions
	}
	return DefaultExtensions()
}

func (o Options) roots() []string {
	if len(o.Paths) > 0 {
		return o.Paths
	}
	return []string{"."}
}
