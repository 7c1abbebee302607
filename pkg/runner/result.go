package runner

import (
	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/lint"
)

// FileOutcome is the per-file unit of a run: either a pipeline result or the
// error that prevented one.
type FileOutcome struct {
	// Path is the absolute path of the processed file.
	Path string

	// Result holds the pipeline result. Nil when Error is set.
	Result *lint.PipelineResult

	// Error is set when the file could not be processed.
	Error error
}

// Stats aggregates counts across every file in a run.
type Stats struct {
	// FilesDiscovered counts files matched during discovery.
	FilesDiscovered int

	// FilesProcessed counts files the pipeline completed.
	FilesProcessed int

	// FilesSkipped counts files left untouched, typically because they
	// changed on disk mid-run.
	FilesSkipped int

	// FilesErrored counts files that failed outright.
	FilesErrored int

	// FilesWithIssues counts files that produced at least one diagnostic.
	FilesWithIssues int

	// FilesModified counts files rewritten by fixes.
	FilesModified int

	// DiagnosticsTotal counts diagnostics across all files.
	DiagnosticsTotal int

	// DiagnosticsFixable counts diagnostics that carry an auto-fix.
	DiagnosticsFixable int

	// DiagnosticsFixed counts edits applied across all fix passes.
	DiagnosticsFixed int

	// DiagnosticsBySeverity counts diagnostics per severity name.
	DiagnosticsBySeverity map[string]int
}

// Result collects every FileOutcome of a run in discovery order, plus the
// aggregate Stats.
type Result struct {
	// Files holds one outcome per file, ordered by path.
	Files []FileOutcome

	// Stats holds the aggregate counters.
	Stats Stats

	// Errors holds failures not attributable to a single file.
	Errors []error
}

// HasFailures reports whether any error-severity diagnostics occurred.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.DiagnosticsBySeverity[string(config.SeverityError)] > 0
}

// HasIssues reports whether any diagnostics occurred at all.
func (r *Result) HasIssues() bool {
	if r == nil {
		return false
	}
	return r.Stats.DiagnosticsTotal > 0
}

func newStats() Stats {
	return Stats{DiagnosticsBySeverity: make(map[string]int)}
}

// accumulate folds one outcome into the result. Callers invoke it in
// discovery order so Files stays deterministic.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)
	r.Stats.observe(outcome)
}

func (s *Stats) observe(outcome FileOutcome) {
	if outcome.Error != nil {
		s.FilesErrored++
		return
	}

	pr := outcome.Result
	if pr == nil {
		return
	}

	s.FilesProcessed++
	if pr.Skipped {
		s.FilesSkipped++
	}
	if pr.Written {
		s.FilesModified++
	}
	s.DiagnosticsFixed += pr.TotalEditsApplied

	if pr.FileResult == nil {
		return
	}

	s.DiagnosticsTotal += len(pr.Diagnostics)
	s.DiagnosticsFixable += pr.FixableCount()
	if len(pr.Diagnostics) > 0 {
		s.FilesWithIssues++
	}
	for _, diag := range pr.Diagnostics {
		s.DiagnosticsBySeverity[severityKey(diag.Severity)]++
	}
}

// severityKey normalizes a diagnostic severity for counting. Rules that
// leave the severity blank count as warnings.
func severityKey(sev config.Severity) string {
	if sev == "" {
		return string(config.SeverityWarning)
	}
	return string(sev)
}
