package analysis

import (
	"cmp"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/lint"
	"github.com/yaklabco/marklint/pkg/runner"
)

// ReportVersion is the current report format version.
const ReportVersion = "1.0.0"

const (
	severityError   = "error"
	severityWarning = "warning"
	severityInfo    = "info"
)

// Analyze transforms a runner.Result into a Report. A single pass over
// the diagnostics feeds the totals and both grouped views.
func Analyze(result *runner.Result, opts Options) *Report {
	report := &Report{
		Version:   ReportVersion,
		Timestamp: time.Now(),
	}
	if result == nil {
		return report
	}

	acc := newAccumulator()
	for _, file := range result.Files {
		acc.addFile(file, opts)
	}

	report.Totals = acc.totals
	report.Diagnostics = acc.diagnostics
	if opts.IncludeByRule {
		report.ByRule = acc.ruleView(opts)
	}
	if opts.IncludeByFile {
		report.ByFile = acc.fileView(opts)
	}

	return report
}

// ruleBucket and fileBucket wrap the public analysis rows with
// membership sets that dedupe file and rule associations during the
// pass.
type ruleBucket struct {
	RuleAnalysis
	seen map[string]bool
}

type fileBucket struct {
	FileAnalysis
	seen map[string]bool
}

type accumulator struct {
	totals      Totals
	diagnostics []DiagnosticEntry
	rules       map[string]*ruleBucket
	files       map[string]*fileBucket
}

func newAccumulator() *accumulator {
	return &accumulator{
		rules: make(map[string]*ruleBucket),
		files: make(map[string]*fileBucket),
	}
}

func (a *accumulator) addFile(file runner.FileOutcome, opts Options) {
	a.totals.Files++
	if file.Result == nil || file.Result.FileResult == nil {
		return
	}
	if len(file.Result.Diagnostics) > 0 {
		a.totals.FilesWithIssues++
	}

	path := displayPath(file.Path, opts.WorkingDir)
	fb := a.file(path)

	for i := range file.Result.Diagnostics {
		diag := &file.Result.Diagnostics[i]
		severity := normalizeSeverity(string(diag.Severity))
		fixable := len(diag.FixEdits) > 0

		a.totals.Issues++
		tally(severity, &a.totals.Errors, &a.totals.Warnings, &a.totals.Infos)
		if fixable {
			a.totals.Fixable++
		}

		fb.Issues++
		tally(severity, &fb.Errors, &fb.Warnings, &fb.Infos)
		fb.seen[diag.RuleID] = true

		rb := a.rule(diag.RuleID, diag.RuleName)
		rb.Issues++
		tally(severity, &rb.Errors, &rb.Warnings, &rb.Infos)
		rb.Fixable = rb.Fixable || fixable
		rb.seen[path] = true

		if opts.IncludeDiagnostics {
			a.diagnostics = append(a.diagnostics, diagnosticEntry(path, severity, diag))
		}
	}
}

func (a *accumulator) file(path string) *fileBucket {
	fb, ok := a.files[path]
	if !ok {
		fb = &fileBucket{
			FileAnalysis: FileAnalysis{Path: path},
			seen:         make(map[string]bool),
		}
		a.files[path] = fb
	}
	return fb
}

func (a *accumulator) rule(id, name string) *ruleBucket {
	rb, ok := a.rules[id]
	if !ok {
		rb = &ruleBucket{
			RuleAnalysis: RuleAnalysis{RuleID: id, RuleName: name},
			seen:         make(map[string]bool),
		}
		a.rules[id] = rb
	}
	return rb
}

func (a *accumulator) ruleView(opts Options) []RuleAnalysis {
	view := make([]RuleAnalysis, 0, len(a.rules))
	for _, rb := range a.rules {
		rb.Files = slices.Sorted(maps.Keys(rb.seen))
		view = append(view, rb.RuleAnalysis)
	}
	sortRules(view, opts.SortBy, opts.SortDesc)
	return view
}

// fileView drops files that produced no diagnostics; they still count
// toward Totals.Files.
func (a *accumulator) fileView(opts Options) []FileAnalysis {
	var view []FileAnalysis
	for _, fb := range a.files {
		if fb.Issues == 0 {
			continue
		}
		fb.Rules = slices.Sorted(maps.Keys(fb.seen))
		view = append(view, fb.FileAnalysis)
	}
	sortFiles(view, opts.SortBy, opts.SortDesc)
	return view
}

// displayPath makes path relative to workDir for presentation. An empty
// workDir or a failed conversion keeps the path as given.
func displayPath(path, workDir string) string {
	if workDir == "" {
		return path
	}
	rel, err := filepath.Rel(workDir, path)
	if err != nil {
		return path
	}
	return rel
}

// normalizeSeverity maps the empty severity to warning, matching the
// engine's default.
func normalizeSeverity(sev string) string {
	if sev == "" {
		return severityWarning
	}
	return sev
}

// tally bumps the counter matching severity.
func tally(severity string, errs, warns, infos *int) {
	switch severity {
	case severityError:
		*errs++
	case severityWarning:
		*warns++
	case severityInfo:
		*infos++
	}
}

func diagnosticEntry(path, severity string, diag *lint.Diagnostic) DiagnosticEntry {
	return DiagnosticEntry{
		FilePath:    path,
		RuleID:      diag.RuleID,
		RuleName:    diag.RuleName,
		Severity:    severity,
		Message:     diag.Message,
		StartLine:   diag.StartLine,
		StartColumn: diag.StartColumn,
		EndLine:     diag.EndLine,
		EndColumn:   diag.EndColumn,
		Suggestion:  diag.Suggestion,
		Fixable:     len(diag.FixEdits) > 0,
		Fixes:       fixEntries(diag.FixEdits),
	}
}

func fixEntries(edits []fix.TextEdit) []FixEntry {
	if len(edits) == 0 {
		return nil
	}
	entries := make([]FixEntry, len(edits))
	for i, edit := range edits {
		entries[i] = FixEntry{
			StartOffset: edit.StartOffset,
			EndOffset:   edit.EndOffset,
			NewText:     edit.NewText,
		}
	}
	return entries
}

// sortRules orders the rule view. Ties fall back to the rule ID so the
// output is stable across runs.
func sortRules(rules []RuleAnalysis, by SortField, desc bool) {
	slices.SortFunc(rules, func(l, r RuleAnalysis) int {
		var c int
		switch by {
		case SortByAlpha:
			return cmp.Compare(l.RuleID, r.RuleID)
		case SortBySeverity:
			c = cmp.Or(
				cmp.Compare(r.Errors, l.Errors),
				cmp.Compare(r.Warnings, l.Warnings),
				cmp.Compare(r.Issues, l.Issues),
			)
		default:
			c = cmp.Compare(l.Issues, r.Issues)
			if desc {
				c = -c
			}
		}
		if c == 0 {
			c = cmp.Compare(l.RuleID, r.RuleID)
		}
		return c
	})
}

// sortFiles orders the file view, tie-breaking on the path.
func sortFiles(files []FileAnalysis, by SortField, desc bool) {
	slices.SortFunc(files, func(l, r FileAnalysis) int {
		var c int
		switch by {
		case SortByAlpha:
			return cmp.Compare(l.Path, r.Path)
		case SortBySeverity:
			c = cmp.Or(
				cmp.Compare(r.Errors, l.Errors),
				cmp.Compare(r.Warnings, l.Warnings),
				cmp.Compare(r.Issues, l.Issues),
			)
		default:
			c = cmp.Compare(l.Issues, r.Issues)
			if desc {
				c = -c
			}
		}
		if c == 0 {
			c = cmp.Compare(l.Path, r.Path)
		}
		return c
	})
}
