package lint_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/fsutil"
	"github.com/yaklabco/marklint/pkg/lint"
)

// fixableRule reports its diagnostics only while the target prefix is still
// present, so the multi-pass fix loop converges once the fix lands.
type fixableRule struct {
	lint.BaseRule
	target []byte
	diags  []lint.Diagnostic
}

func (r *fixableRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if !bytes.HasPrefix(ctx.Doc.Content(), r.target) {
		return nil, nil
	}
	// The engine rewrites severity on returned diagnostics; hand out copies.
	diags := slices.Clone(r.diags)
	for i := range diags {
		diags[i].FixEdits = slices.Clone(diags[i].FixEdits)
	}
	return diags, nil
}

// replacePrefixRule builds a fixableRule whose single fix replaces target
// with replacement at the start of the document.
func replacePrefixRule(id, target, replacement string) *fixableRule {
	return &fixableRule{
		BaseRule: lint.NewBaseRule(id, "replace-prefix", "", nil, true),
		target:   []byte(target),
		diags: []lint.Diagnostic{{
			RuleID:   id,
			Message:  "prefix needs rewriting",
			FixEdits: []fix.TextEdit{{StartOffset: 0, EndOffset: len(target), NewText: replacement}},
		}},
	}
}

// rewriteStep is one from-to pair for chainRule.
type rewriteStep struct {
	from string
	to   string
}

// chainRule fires on the first step whose from-prefix matches, so each fix
// pass can expose the next step.
type chainRule struct {
	lint.BaseRule
	steps []rewriteStep
}

func (r *chainRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	for _, step := range r.steps {
		if !bytes.HasPrefix(ctx.Doc.Content(), []byte(step.from)) {
			continue
		}
		return []lint.Diagnostic{{
			RuleID:  r.ID(),
			Message: "outdated prefix",
			FixEdits: []fix.TextEdit{{
				StartOffset: 0,
				EndOffset:   len(step.from),
				NewText:     step.to,
			}},
		}}, nil
	}
	return nil, nil
}

func newPipeline(rules ...lint.Rule) *lint.Pipeline {
	registry := lint.NewRegistry()
	for _, rule := range rules {
		registry.Register(rule)
	}
	return lint.NewPipeline(lint.NewEngine(registry))
}

func fixConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Fix = true
	return cfg
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func readDoc(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	return string(content)
}

func TestNewPipeline(t *testing.T) {
	t.Parallel()

	engine := lint.NewEngine(lint.NewRegistry())
	pipeline := lint.NewPipeline(engine)

	if pipeline.Engine != engine {
		t.Error("Engine not set")
	}
}

func TestPipeline_ProcessFile_LintOnly(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, "# Clean document\n")
	pipeline := newPipeline()

	result, err := pipeline.ProcessFile(context.Background(), path, config.NewConfig(), lint.DefaultPipelineOptions())
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}

	if result.Path != path {
		t.Errorf("Path = %q, want %q", result.Path, path)
	}
	if result.OriginalInfo == nil {
		t.Error("OriginalInfo should be set")
	}
	if result.Modified || result.Written {
		t.Errorf("lint-only run must not touch the file: Modified=%v Written=%v",
			result.Modified, result.Written)
	}
	if result.ModifiedContent != nil {
		t.Error("ModifiedContent should stay nil without edits")
	}
	if got := result.Summary(); got != "ok" {
		t.Errorf("Summary() = %q, want ok", got)
	}
}

func TestPipeline_ProcessFile_WithDiagnostics(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, "# Heading\n")

	rule := &diagnosticRule{
		BaseRule: lint.NewBaseRule("TEST001", "always-flags", "", nil, false),
		diags: []lint.Diagnostic{
			{RuleID: "TEST001", Message: "flagged"},
		},
	}
	pipeline := newPipeline(rule)

	result, err := pipeline.ProcessFile(context.Background(), path, config.NewConfig(), lint.DefaultPipelineOptions())
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}

	if !result.HasIssues() {
		t.Error("expected issues")
	}
	if result.Modified {
		t.Error("diagnostics without fix mode must not modify")
	}
	if got := result.Summary(); got != "issues found" {
		t.Errorf("Summary() = %q, want 'issues found'", got)
	}
}

func TestPipeline_ProcessFile_FixMode(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, "draft notes\n")
	pipeline := newPipeline(replacePrefixRule("TEST001", "draft", "final"))

	opts := lint.PipelineOptions{
		Fix:    true,
		Backup: fsutil.BackupConfig{Enabled: false},
	}

	result, err := pipeline.ProcessFile(context.Background(), path, fixConfig(), opts)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}

	if !result.Modified || !result.Written {
		t.Errorf("Modified=%v Written=%v, want both true", result.Modified, result.Written)
	}
	if result.FixPasses != 1 {
		t.Errorf("FixPasses = %d, want 1", result.FixPasses)
	}
	if result.TotalEditsApplied != 1 {
		t.Errorf("TotalEditsApplied = %d, want 1", result.TotalEditsApplied)
	}
	if got := readDoc(t, path); got != "final notes\n" {
		t.Errorf("content = %q, want %q", got, "final notes\n")
	}
	// The final pass sees the fixed content, so no diagnostics remain.
	if result.IssueCount() != 0 {
		t.Errorf("IssueCount() = %d after converged fix, want 0", result.IssueCount())
	}
	if got := result.Summary(); got != "fixed" {
		t.Errorf("Summary() = %q, want 'fixed'", got)
	}
}

func TestPipeline_ProcessFile_MultiPass(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, "one step\n")
	rule := &chainRule{
		BaseRule: lint.NewBaseRule("TEST001", "chain", "", nil, true),
		steps: []rewriteStep{
			{from: "one", to: "two"},
			{from: "two", to: "three"},
		},
	}
	pipeline := newPipeline(rule)

	result, err := pipeline.ProcessFile(context.Background(), path, fixConfig(), lint.PipelineOptions{Fix: true})
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}

	if result.FixPasses != 2 {
		t.Errorf("FixPasses = %d, want 2", result.FixPasses)
	}
	if result.TotalEditsApplied != 2 {
		t.Errorf("TotalEditsApplied = %d, want 2", result.TotalEditsApplied)
	}
	if got := readDoc(t, path); got != "three step\n" {
		t.Errorf("content = %q, want %q", got, "three step\n")
	}
}

func TestPipeline_ProcessContent_MaxFixPasses(t *testing.T) {
	t.Parallel()

	// ping and pong rewrite each other, so the loop never converges and
	// must stop at the pass budget.
	rule := &chainRule{
		BaseRule: lint.NewBaseRule("TEST001", "flip-flop", "", nil, true),
		steps: []rewriteStep{
			{from: "ping", to: "pong"},
			{from: "pong", to: "ping"},
		},
	}
	pipeline := newPipeline(rule)

	opts := lint.PipelineOptions{Fix: true, MaxFixPasses: 3}
	result, err := pipeline.ProcessContent(context.Background(), "doc.md", []byte("ping\n"), fixConfig(), opts)
	if err != nil {
		t.Fatalf("ProcessContent() error = %v", err)
	}

	if result.FixPasses != 3 {
		t.Errorf("FixPasses = %d, want 3", result.FixPasses)
	}
	if got := string(result.ModifiedContent); got != "pong\n" {
		t.Errorf("ModifiedContent = %q, want %q after an odd number of flips", got, "pong\n")
	}
}

func TestPipeline_ProcessFile_DryRun(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, "draft notes\n")
	pipeline := newPipeline(replacePrefixRule("TEST001", "draft", "final"))

	opts := lint.PipelineOptions{Fix: true, DryRun: true}
	result, err := pipeline.ProcessFile(context.Background(), path, fixConfig(), opts)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}

	if !result.Modified {
		t.Error("Modified should be true")
	}
	if result.Written {
		t.Error("dry run must not write")
	}
	if result.Diff == nil {
		t.Error("Diff should be set in dry-run mode")
	}
	if got := readDoc(t, path); got != "draft notes\n" {
		t.Errorf("file changed during dry run: %q", got)
	}
	if got := result.Summary(); got != "changes pending" {
		t.Errorf("Summary() = %q, want 'changes pending'", got)
	}
}

func TestPipeline_ProcessFile_WithBackup(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, "original text\n")
	pipeline := newPipeline(replacePrefixRule("TEST001", "original", "replaced"))

	opts := lint.PipelineOptions{
		Fix: true,
		Backup: fsutil.BackupConfig{
			Enabled: true,
			Mode:    fsutil.BackupModeSidecar,
		},
	}

	result, err := pipeline.ProcessFile(context.Background(), path, fixConfig(), opts)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}

	if !result.BackupCreated {
		t.Error("BackupCreated should be true")
	}

	backupPath := fsutil.BackupPath(path, fsutil.BackupModeSidecar)
	if got := readDoc(t, backupPath); got != "original text\n" {
		t.Errorf("backup content = %q, want the pre-fix content", got)
	}
	if got := readDoc(t, path); got != "replaced text\n" {
		t.Errorf("content = %q, want %q", got, "replaced text\n")
	}
	if got := result.Summary(); got != "fixed (backup created)" {
		t.Errorf("Summary() = %q, want 'fixed (backup created)'", got)
	}
}

func TestPipeline_ProcessFile_FileNotFound(t *testing.T) {
	t.Parallel()

	pipeline := newPipeline()

	_, err := pipeline.ProcessFile(context.Background(), "/does/not/exist.md", config.NewConfig(), lint.DefaultPipelineOptions())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, lint.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
	if !lint.IsPipelineError(err) {
		t.Error("IsPipelineError() should recognize the wrapped sentinel")
	}
}

func TestPipeline_ProcessFile_OverlappingEdits(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, "alpha beta gamma")

	// Both rules fire on the same content; their replacements overlap, so
	// the edit starting first wins and the other is skipped.
	first := &fixableRule{
		BaseRule: lint.NewBaseRule("TEST001", "first-span", "", nil, true),
		target:   []byte("alpha"),
		diags: []lint.Diagnostic{{
			RuleID:   "TEST001",
			Message:  "rewrite head",
			FixEdits: []fix.TextEdit{{StartOffset: 0, EndOffset: 9, NewText: "X"}},
		}},
	}
	second := &fixableRule{
		BaseRule: lint.NewBaseRule("TEST002", "second-span", "", nil, true),
		target:   []byte("alpha"),
		diags: []lint.Diagnostic{{
			RuleID:   "TEST002",
			Message:  "rewrite middle",
			FixEdits: []fix.TextEdit{{StartOffset: 6, EndOffset: 12, NewText: "Y"}},
		}},
	}
	pipeline := newPipeline(first, second)

	result, err := pipeline.ProcessFile(context.Background(), path, fixConfig(), lint.PipelineOptions{Fix: true})
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}

	if !result.Modified || !result.Written {
		t.Errorf("Modified=%v Written=%v, want both true", result.Modified, result.Written)
	}
	if result.TotalEditsApplied != 1 {
		t.Errorf("TotalEditsApplied = %d, want 1 (conflicting edit skipped)", result.TotalEditsApplied)
	}
	// "alpha bet" (bytes 0-9) becomes "X"; the overlapping edit is dropped.
	if got := readDoc(t, path); got != "Xa gamma" {
		t.Errorf("content = %q, want %q", got, "Xa gamma")
	}
}

func TestPipeline_Cancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("ProcessFile", func(t *testing.T) {
		t.Parallel()

		path := writeDoc(t, "# Heading\n")
		pipeline := newPipeline()

		_, err := pipeline.ProcessFile(ctx, path, config.NewConfig(), lint.DefaultPipelineOptions())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("ProcessContent", func(t *testing.T) {
		t.Parallel()

		pipeline := newPipeline()

		_, err := pipeline.ProcessContent(ctx, "doc.md", []byte("# Heading\n"), config.NewConfig(), lint.DefaultPipelineOptions())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestPipeline_ProcessContent(t *testing.T) {
	t.Parallel()

	pipeline := newPipeline(replacePrefixRule("TEST001", "draft", "final"))

	opts := lint.PipelineOptions{Fix: true, DryRun: true}
	result, err := pipeline.ProcessContent(context.Background(), "doc.md", []byte("draft\n"), fixConfig(), opts)
	if err != nil {
		t.Fatalf("ProcessContent() error = %v", err)
	}

	if !result.Modified {
		t.Error("Modified should be true")
	}
	if got := string(result.ModifiedContent); got != "final\n" {
		t.Errorf("ModifiedContent = %q, want %q", got, "final\n")
	}
	if result.Diff == nil {
		t.Error("Diff should be set")
	}
	if result.OriginalInfo != nil {
		t.Error("OriginalInfo should stay nil without file I/O")
	}
}

func TestPipeline_ProcessFile_CRLFPreserved(t *testing.T) {
	t.Parallel()

	// Rules and edits operate on normalized LF content; the written file
	// must still come back with its original CRLF endings.
	path := writeDoc(t, "intro\r\ntext\r\n")
	pipeline := newPipeline(replacePrefixRule("TEST001", "intro", "lead"))

	result, err := pipeline.ProcessFile(context.Background(), path, fixConfig(), lint.PipelineOptions{Fix: true})
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}

	if !result.Written {
		t.Fatal("Written should be true")
	}
	if got := readDoc(t, path); got != "lead\r\ntext\r\n" {
		t.Errorf("content = %q, want CRLF endings preserved", got)
	}
}

func TestPipelineResult_Summary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result *lint.PipelineResult
		want   string
	}{
		{
			name:   "skipped",
			result: &lint.PipelineResult{Skipped: true, SkipReason: "file changed"},
			want:   "skipped: file changed",
		},
		{
			name:   "written with backup",
			result: &lint.PipelineResult{Written: true, BackupCreated: true},
			want:   "fixed (backup created)",
		},
		{
			name:   "written without backup",
			result: &lint.PipelineResult{Written: true},
			want:   "fixed",
		},
		{
			name:   "modified but not written",
			result: &lint.PipelineResult{Modified: true},
			want:   "changes pending",
		},
		{
			name: "issues found",
			result: &lint.PipelineResult{
				FileResult: &lint.FileResult{
					Diagnostics: []lint.Diagnostic{{Message: "issue"}},
				},
			},
			want: "issues found",
		},
		{
			name:   "clean",
			result: &lint.PipelineResult{},
			want:   "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.result.Summary(); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultPipelineOptions(t *testing.T) {
	t.Parallel()

	opts := lint.DefaultPipelineOptions()

	if opts.Fix || opts.DryRun {
		t.Errorf("Fix=%v DryRun=%v, want both false", opts.Fix, opts.DryRun)
	}
	if !opts.StrictRaceDetection {
		t.Error("StrictRaceDetection should default to true")
	}
	if opts.MaxFixPasses != 0 {
		t.Error("MaxFixPasses should default to zero (DefaultMaxFixPasses applies)")
	}
}

func TestPipelineOptionsFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		opts := lint.PipelineOptionsFromConfig(nil)
		if opts.Fix {
			t.Error("Fix should be false for nil config")
		}
		if !opts.StrictRaceDetection {
			t.Error("StrictRaceDetection should be true for nil config")
		}
	})

	t.Run("fix and dry-run carried over", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Fix = true
		cfg.DryRun = true

		opts := lint.PipelineOptionsFromConfig(cfg)
		if !opts.Fix || !opts.DryRun {
			t.Errorf("Fix=%v DryRun=%v, want both true", opts.Fix, opts.DryRun)
		}
	})
}

func TestBackupConfigFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		backup := lint.BackupConfigFromConfig(nil)
		if backup.Enabled {
			t.Error("Enabled should be false for nil config")
		}
	})

	t.Run("enabled sidecar", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Backups.Enabled = true
		cfg.Backups.Mode = "sidecar"

		backup := lint.BackupConfigFromConfig(cfg)
		if !backup.Enabled {
			t.Error("Enabled should be true")
		}
		if backup.Mode != fsutil.BackupModeSidecar {
			t.Errorf("Mode = %q, want sidecar", backup.Mode)
		}
	})

	t.Run("no-backups flag wins", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Backups.Enabled = true
		cfg.NoBackups = true

		backup := lint.BackupConfigFromConfig(cfg)
		if backup.Enabled {
			t.Error("NoBackups must override the config file")
		}
	})
}

func TestIsPipelineError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"file not found", lint.ErrFileNotFound, true},
		{"permission denied", lint.ErrPermissionDenied, true},
		{"write failure", lint.ErrWriteFailure, true},
		{"unrelated", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := lint.IsPipelineError(tt.err); got != tt.want {
				t.Errorf("IsPipelineError() = %v, want %v", got, tt.want)
			}
		})
	}
}
