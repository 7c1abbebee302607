package lint

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/fsutil"
	"github.com/yaklabco/marklint/pkg/mdcontext"
)

// DefaultMaxFixPasses caps the fix loop. Rules whose fixes expose further
// fixable issues converge within a few passes; anything still unstable after
// ten is a rule conflict, not progress.
const DefaultMaxFixPasses = 10

// Sentinel errors for the failure classes callers branch on.
var (
	// ErrFileNotFound indicates the file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrWriteFailure indicates a write error.
	ErrWriteFailure = errors.New("write failure")
)

// PipelineResult describes what happened to one file: the diagnostics from
// the last lint pass plus everything the write path decided.
type PipelineResult struct {
	// FileResult holds diagnostics and edits from the final pass. With
	// multi-pass fixing this reflects the state after all passes.
	*FileResult

	// Path is the file that was processed.
	Path string

	// OriginalInfo captures the file state before processing.
	OriginalInfo *fsutil.FileInfo

	// Modified reports whether any edit changed the content.
	Modified bool

	// ModifiedContent is the new content after applying edits (nil if not
	// modified). Line endings match the original file: CRLF input produces
	// CRLF output.
	ModifiedContent []byte

	// Diff is the unified diff for dry-run mode (nil otherwise).
	Diff *fix.Diff

	// Skipped reports that the file was left untouched; SkipReason says why.
	Skipped    bool
	SkipReason string

	// BackupCreated reports whether a backup was written for this file.
	BackupCreated bool

	// Written reports whether the file was rewritten on disk.
	Written bool

	// FixPasses counts the lint-fix iterations that applied edits.
	FixPasses int

	// TotalEditsApplied sums the edits applied across all passes.
	TotalEditsApplied int
}

// Summary renders the outcome as a short status phrase.
func (pr *PipelineResult) Summary() string {
	switch {
	case pr.Skipped:
		return "skipped: " + pr.SkipReason
	case pr.Written && pr.BackupCreated:
		return "fixed (backup created)"
	case pr.Written:
		return "fixed"
	case pr.Modified:
		return "changes pending"
	case pr.FileResult != nil && pr.HasIssues():
		return "issues found"
	default:
		return "ok"
	}
}

// PipelineOptions controls fixing and the write-safety behavior around it.
type PipelineOptions struct {
	// Fix enables auto-fix mode.
	Fix bool

	// DryRun generates diffs without writing files.
	DryRun bool

	// Backup configures backup behavior.
	Backup fsutil.BackupConfig

	// StrictRaceDetection compares content hashes when checking for
	// concurrent modification. When false, only mod time and size count.
	StrictRaceDetection bool

	// MaxFixPasses bounds the fix loop; zero means DefaultMaxFixPasses.
	// A pass can unlock edits that conflicted in the previous one.
	MaxFixPasses int
}

// DefaultPipelineOptions returns sensible defaults.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		Fix:                 false,
		DryRun:              false,
		Backup:              fsutil.DefaultBackupConfig(),
		StrictRaceDetection: true,
	}
}

// Pipeline orchestrates the safe processing of a single file.
type Pipeline struct {
	// Engine is the lint engine used for rule execution.
	Engine *Engine
}

// NewPipeline creates a new safety pipeline with the given engine.
func NewPipeline(engine *Engine) *Pipeline {
	return &Pipeline{Engine: engine}
}

// ProcessFile runs the full safety pipeline for a single file: read and
// hash, lint with the multi-pass fix loop, then, when content changed and
// this is not a dry run, verify nobody else touched the file, back it up
// if configured, and write the new content atomically.
func (p *Pipeline) ProcessFile(
	ctx context.Context,
	path string,
	cfg *config.Config,
	opts PipelineOptions,
) (*PipelineResult, error) {
	originalContent, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, categorizeError(err)
	}

	result, err := p.ProcessContent(ctx, path, originalContent, cfg, opts)
	if err != nil {
		return nil, err
	}
	result.OriginalInfo = info

	if !result.Modified || opts.DryRun {
		return result, nil
	}

	// The file was read a while ago; refuse to clobber concurrent edits.
	modified, err := p.modifiedSince(ctx, info, opts.StrictRaceDetection)
	if err != nil {
		return nil, fmt.Errorf("check modified: %w", err)
	}
	if modified {
		result.Skipped = true
		result.SkipReason = "file modified during processing"
		return result, nil
	}

	if opts.Backup.Enabled {
		created, err := fsutil.CreateBackup(ctx, path, opts.Backup)
		if err != nil {
			return nil, fmt.Errorf("create backup: %w", err)
		}
		result.BackupCreated = created
	}

	if err := fsutil.WriteAtomic(ctx, path, result.ModifiedContent, info.Mode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	result.Written = true

	return result, nil
}

// ProcessContent lints in-memory content, running the same multi-pass fix
// loop as ProcessFile but never touching the filesystem.
func (p *Pipeline) ProcessContent(
	ctx context.Context,
	path string,
	originalContent []byte,
	cfg *config.Config,
	opts PipelineOptions,
) (*PipelineResult, error) {
	result := &PipelineResult{
		Path: path,
	}

	maxPasses := opts.MaxFixPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxFixPasses
	}

	content := originalContent
	hadCRLF := false
	var fileResult *FileResult

	for range maxPasses {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("processing cancelled: %w", ctx.Err())
		default:
		}

		var lintErr error
		fileResult, lintErr = p.Engine.LintFile(ctx, path, content, cfg)
		if lintErr != nil {
			return nil, lintErr
		}
		if fileResult.Doc.HadCRLF() {
			hadCRLF = true
		}

		if !opts.Fix || len(fileResult.Edits) == 0 {
			break
		}

		// Apply edits in memory. Edit offsets refer to the normalized
		// content the context was built over, not the raw input.
		content = fix.ApplyEdits(fileResult.Doc.Content(), fileResult.Edits)
		result.FixPasses++
		result.TotalEditsApplied += len(fileResult.Edits)
		result.Modified = true
	}

	result.FileResult = fileResult

	if !result.Modified {
		return result, nil
	}

	// Restore the original line-ending style before anything leaves memory.
	if hadCRLF {
		content = mdcontext.RestoreCRLF(content)
	}
	result.ModifiedContent = content

	if opts.DryRun {
		result.Diff = fix.GenerateDiff(path, originalContent, content)
	}

	return result, nil
}

// modifiedSince reports whether the file changed after info was captured.
func (p *Pipeline) modifiedSince(ctx context.Context, info *fsutil.FileInfo, strict bool) (bool, error) {
	if strict {
		return fsutil.CheckModified(ctx, info)
	}
	return fsutil.CheckModifiedQuick(ctx, info)
}

// categorizeError tags read failures with the matching sentinel.
func categorizeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fsutil.ErrNotFound) || errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	case errors.Is(err, fsutil.ErrPermissionDenied) || errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	default:
		return err
	}
}

// IsPipelineError reports whether err carries one of the pipeline sentinels.
func IsPipelineError(err error) bool {
	return errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrWriteFailure)
}

// BackupConfigFromConfig maps the backup-related config knobs onto
// fsutil.BackupConfig. The --no-backups flag overrides the config file.
func BackupConfigFromConfig(cfg *config.Config) fsutil.BackupConfig {
	if cfg == nil {
		return fsutil.DefaultBackupConfig()
	}
	return fsutil.BackupConfig{
		Enabled: cfg.Backups.Enabled && !cfg.NoBackups,
		Mode:    fsutil.BackupMode(cfg.Backups.Mode),
	}
}

// PipelineOptionsFromConfig derives PipelineOptions from resolved config.
func PipelineOptionsFromConfig(cfg *config.Config) PipelineOptions {
	if cfg == nil {
		return DefaultPipelineOptions()
	}
	return PipelineOptions{
		Fix:                 cfg.Fix,
		DryRun:              cfg.DryRun,
		Backup:              BackupConfigFromConfig(cfg),
		StrictRaceDetection: true,
	}
}
