package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/marklint/pkg/runner"
)

// FormatSummaryOneLine renders run statistics as one line, e.g.
// "12 issues (8 errors, 4 warnings), in 3 files, 6 fixable".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	if stats.DiagnosticsTotal == 0 {
		line := s.Success.Render("No issues found") +
			s.Dim.Render(fmt.Sprintf(" (%d %s checked)",
				stats.FilesProcessed, countNoun(stats.FilesProcessed, "file")))
		// A clean run can still have repaired files behind it.
		if stats.DiagnosticsFixed > 0 {
			line += ", " + s.Success.Render(fixedPhrase(stats))
		}
		return line + "\n"
	}

	count := fmt.Sprintf("%d %s", stats.DiagnosticsTotal, countNoun(stats.DiagnosticsTotal, "issue"))
	if breakdown := s.severityBreakdown(stats.DiagnosticsBySeverity); breakdown != "" {
		count += " (" + breakdown + ")"
	}

	parts := []string{
		count,
		fmt.Sprintf("in %d %s", stats.FilesWithIssues, countNoun(stats.FilesWithIssues, "file")),
	}
	if stats.DiagnosticsFixable > 0 {
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d fixable", stats.DiagnosticsFixable)))
	}
	if stats.DiagnosticsFixed > 0 {
		parts = append(parts, s.Success.Render(fixedPhrase(stats)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// severityBreakdown joins the non-zero severity counts, styled per
// severity, e.g. "2 errors, 1 warning".
func (s *Styles) severityBreakdown(counts map[string]int) string {
	var parts []string
	if n := counts["error"]; n > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d %s", n, countNoun(n, "error"))))
	}
	if n := counts["warning"]; n > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d %s", n, countNoun(n, "warning"))))
	}
	if n := counts["info"]; n > 0 {
		parts = append(parts, s.Info.Render(fmt.Sprintf("%d info", n)))
	}
	return strings.Join(parts, ", ")
}

// fixedPhrase describes applied fixes, e.g. "4 fixed in 2 files".
func fixedPhrase(stats runner.Stats) string {
	return fmt.Sprintf("%d fixed in %d %s",
		stats.DiagnosticsFixed, stats.FilesModified, countNoun(stats.FilesModified, "file"))
}

// countNoun pluralizes a count noun with a bare "s".
func countNoun(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
