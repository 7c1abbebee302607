package lint

import (
	"context"
	"fmt"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/mdcontext"
	"github.com/yaklabco/marklint/pkg/workspace"
)

// FileResult is the outcome of linting one file.
type FileResult struct {
	// Doc is the structural context the rules consumed.
	Doc *mdcontext.Context

	// Diagnostics holds every issue that survived inline suppression.
	Diagnostics []Diagnostic

	// Suppressed counts diagnostics dropped by inline control comments.
	Suppressed int

	// Edits holds the validated, ordered edits ready for application.
	// Empty unless fixing was requested and at least one rule produced one.
	Edits []fix.TextEdit

	// SkippedEdits holds edits dropped because they overlapped an earlier
	// edit. The edit starting first wins.
	SkippedEdits []fix.TextEdit

	// EditConflicts reports whether any edit was dropped or the whole set
	// failed validation.
	EditConflicts bool

	// RuleErrors maps rule ID to the error that aborted that rule.
	RuleErrors map[string]error
}

// HasIssues reports whether any diagnostics remain after suppression.
func (fr *FileResult) HasIssues() bool {
	return len(fr.Diagnostics) > 0
}

// HasFixes reports whether any edits are ready to apply.
func (fr *FileResult) HasFixes() bool {
	return len(fr.Edits) > 0
}

// IssueCount returns the number of diagnostics.
func (fr *FileResult) IssueCount() int {
	return len(fr.Diagnostics)
}

// FixableCount returns how many diagnostics carry a fix.
func (fr *FileResult) FixableCount() int {
	count := 0
	for _, d := range fr.Diagnostics {
		if d.HasFix() {
			count++
		}
	}
	return count
}

// Engine coordinates structural-context construction and rule execution.
type Engine struct {
	// Registry holds all available rules.
	Registry *Registry

	// Workspace provides cross-file caches to rules that need them.
	// May be nil; affected rules then probe the filesystem directly.
	Workspace *workspace.Workspace
}

// NewEngine creates a new Engine with the given registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{Registry: registry}
}

// DialectFor resolves the dialect used for a file: configuration first,
// then the file extension override.
func DialectFor(path string, cfg *config.Config) config.Dialect {
	dialect := config.DialectStandard
	if cfg != nil && cfg.Dialect.IsValid() {
		dialect = cfg.Dialect
	}
	return config.DialectFromPath(path, dialect)
}

// LintFile builds the structural context for a file's content and runs
// every resolved rule against it. Context construction cannot fail; the
// error return covers cancellation only.
func (e *Engine) LintFile(
	ctx context.Context,
	path string,
	content []byte,
	cfg *config.Config,
) (*FileResult, error) {
	doc := mdcontext.New(content, DialectFor(path, cfg))
	return e.lint(ctx, doc, path, cfg)
}

// LintContent lints in-memory content under an explicit dialect, without
// any path-based dialect inference.
func (e *Engine) LintContent(
	ctx context.Context,
	content []byte,
	dialect config.Dialect,
	cfg *config.Config,
) (*FileResult, error) {
	return e.lint(ctx, mdcontext.New(content, dialect), "", cfg)
}

func (e *Engine) lint(
	ctx context.Context,
	doc *mdcontext.Context,
	path string,
	cfg *config.Config,
) (*FileResult, error) {
	var inline *InlineConfig
	if cfg == nil || !cfg.NoInlineConfig {
		inline = ParseInlineConfig(doc)
	}

	resolved := ResolveRules(e.Registry, cfg)

	result := &FileResult{
		Doc:        doc,
		RuleErrors: make(map[string]error),
	}

	var allEdits []fix.TextEdit

	for _, rr := range resolved {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("linting cancelled: %w", ctx.Err())
		default:
		}

		ruleCtx := NewRuleContext(ctx, doc, path, cfg, rr.Config)
		ruleCtx.Registry = e.Registry
		ruleCtx.Workspace = e.Workspace

		diags, err := rr.Rule.Apply(ruleCtx)
		if err != nil {
			result.RuleErrors[rr.Rule.ID()] = err
			continue
		}

		for diagIdx := range diags {
			diag := &diags[diagIdx]

			// Drop diagnostics suppressed by inline control comments.
			if inline != nil && inline.IsDisabled(rr.Rule.ID(), rr.Rule.Name(), diag.StartLine) {
				result.Suppressed++
				continue
			}

			// The resolved severity wins over whatever the rule set.
			diag.Severity = rr.Severity

			if diag.FilePath == "" {
				diag.FilePath = path
			}
			if diag.RuleName == "" {
				diag.RuleName = rr.Rule.Name()
			}

			if rr.AutoFix && len(diag.FixEdits) > 0 {
				allEdits = append(allEdits, diag.FixEdits...)
			}

			result.Diagnostics = append(result.Diagnostics, *diag)
		}
	}

	if len(allEdits) > 0 {
		accepted, skipped, _, err := fix.PrepareEditsFiltered(allEdits, len(doc.Content()))
		if err != nil {
			// Out-of-bounds edits fail validation outright. Keep the
			// diagnostics, apply nothing.
			result.Edits = nil
			result.SkippedEdits = nil
			result.EditConflicts = true
		} else {
			result.Edits = accepted
			result.SkippedEdits = skipped
			result.EditConflicts = len(skipped) > 0
		}
	}

	return result, nil
}
