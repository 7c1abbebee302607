package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/lint"
)

// sourceIndent aligns excerpted source under the diagnostic line.
const sourceIndent = "        "

// FormatDiagnostic renders one diagnostic as a terminal line, optionally
// followed by the offending source line and a suggestion. The rule is
// labelled per ruleFormat (ID, name, or both).
func (s *Styles) FormatDiagnostic(diag *lint.Diagnostic, showContext bool, sourceLine string, ruleFormat config.RuleFormat) string {
	location := fmt.Sprintf("%s:%d:%d",
		s.FilePath.Render(diag.FilePath), diag.StartLine, diag.StartColumn)
	ruleLabel := s.RuleID.Render("(" + config.FormatRuleID(ruleFormat, diag.RuleID, diag.RuleName) + ")")

	var b strings.Builder
	fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
		location,
		s.FormatSeverity(diag.Severity),
		s.Message.Render(diag.Message),
		ruleLabel,
	)

	if showContext && sourceLine != "" {
		b.WriteString(s.FormatSourceContext(sourceLine, diag.StartColumn))
	}
	if diag.Suggestion != "" {
		b.WriteString("    " + s.Dim.Render("Suggestion:") + " " +
			s.Suggestion.Render(diag.Suggestion) + "\n")
	}

	return b.String()
}

// FormatSeverity returns the styled severity word. Unknown severities
// pass through unstyled.
func (s *Styles) FormatSeverity(sev config.Severity) string {
	switch sev {
	case config.SeverityError:
		return s.Error.Render("error")
	case config.SeverityWarning:
		return s.Warning.Render("warning")
	case config.SeverityInfo:
		return s.Info.Render("info")
	default:
		return string(sev)
	}
}

// FormatSourceContext renders the source line with a caret under the
// reported column. Column 0 means "whole line", so no caret.
func (s *Styles) FormatSourceContext(line string, column int) string {
	out := sourceIndent + s.SourceLine.Render(line) + "\n"
	if column > 0 {
		out += sourceIndent + strings.Repeat(" ", column-1) + s.Caret.Render("^") + "\n"
	}
	return out
}

// FormatFileHeader renders a grouped-output file header, with an issue
// count when there is something to report.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	if issueCount > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d %s)", issueCount, countNoun(issueCount, "issue")))
	}
	return header
}
