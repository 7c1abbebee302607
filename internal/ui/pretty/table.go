package pretty

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/lint"
	"github.com/yaklabco/marklint/pkg/runner"
)

// Table layout constants.
const (
	fixableSymbol      = "+"
	tablePadding       = 2
	tableColumnCount   = 5 // FILE, LOC, MESSAGE, RULE, fixable
	perFileColumnCount = 4 // LOC, MESSAGE, RULE, fixable
	fixableColumnWidth = 3
	minFileWidth       = 20
	minLocWidth        = 10
	minMessageWidth    = 35
	minRuleWidth       = 8
	heavySeparator     = "="
	lightSeparator     = "-"
	defaultTermWidth   = 100
)

// tableRow is one diagnostic flattened for tabular display.
type tableRow struct {
	file     string
	location string
	message  string
	ruleID   string
	severity config.Severity
	fixable  bool
}

func newTableRow(path string, diag lint.Diagnostic) tableRow {
	return tableRow{
		file:     path,
		location: fmt.Sprintf("%d:%d", diag.StartLine, diag.StartColumn),
		message:  diag.Message,
		ruleID:   diag.RuleID,
		severity: diag.Severity,
		fixable:  len(diag.FixEdits) > 0,
	}
}

// fileRows flattens one file outcome, or returns nil when the file has
// nothing to show.
func fileRows(file runner.FileOutcome) []tableRow {
	if file.Result == nil || file.Result.FileResult == nil {
		return nil
	}
	diags := file.Result.Diagnostics
	if len(diags) == 0 {
		return nil
	}
	rows := make([]tableRow, 0, len(diags))
	for _, diag := range diags {
		rows = append(rows, newTableRow(file.Path, diag))
	}
	return rows
}

// columnWidths holds resolved column widths. file == 0 means the table
// has no FILE column (per-file view).
type columnWidths struct {
	file    int
	loc     int
	message int
	rule    int
}

func (w columnWidths) total() int {
	width := w.loc + w.message + w.rule + fixableColumnWidth
	if w.file > 0 {
		return width + w.file + tablePadding*tableColumnCount
	}
	return width + tablePadding*perFileColumnCount
}

// TableFormatter renders diagnostics as aligned, severity-colored
// tables constrained to the terminal width.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter creates a table formatter. A termWidth of zero or
// less selects a conservative default.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{styles: styles, colorEnabled: colorEnabled, termWidth: termWidth}
}

// FormatTable renders every file's diagnostics into one table, files
// separated by light rules, with a legend at the bottom.
func (t *TableFormatter) FormatTable(result *runner.Result) string {
	if result == nil {
		return ""
	}

	var groups [][]tableRow
	for _, file := range result.Files {
		if rows := fileRows(file); len(rows) > 0 {
			groups = append(groups, rows)
		}
	}
	if len(groups) == 0 {
		return ""
	}

	widths := t.fitWidths(slices.Concat(groups...), true)

	var b strings.Builder
	b.WriteString(t.formatHeader(widths) + "\n")
	b.WriteString(t.formatSeparator(widths, heavySeparator) + "\n")
	for i, rows := range groups {
		if i > 0 {
			b.WriteString(t.formatSeparator(widths, lightSeparator) + "\n")
		}
		for _, row := range rows {
			b.WriteString(t.formatRow(row, widths) + "\n")
		}
	}
	b.WriteString(t.formatSeparator(widths, heavySeparator) + "\n")
	b.WriteString(t.formatLegend() + "\n")

	return b.String()
}

// FormatFileTable renders a standalone table for one file. The caller
// prints the file name, so there is no FILE column.
func (t *TableFormatter) FormatFileTable(file runner.FileOutcome) string {
	rows := fileRows(file)
	if len(rows) == 0 {
		return ""
	}

	widths := t.fitWidths(rows, false)

	var b strings.Builder
	b.WriteString(t.formatHeader(widths) + "\n")
	b.WriteString(t.formatSeparator(widths, heavySeparator) + "\n")
	for _, row := range rows {
		b.WriteString(t.formatRow(row, widths) + "\n")
	}
	b.WriteString(t.formatSeparator(widths, heavySeparator) + "\n")
	b.WriteString(t.formatFileSummary(rows) + "\n")

	return b.String()
}

// FormatTableSummary renders the closing counts line printed under a
// table, e.g. " 3 files checked | 2 errors | 1 fixable".
func (t *TableFormatter) FormatTableSummary(stats runner.Stats) string {
	n := stats.FilesProcessed
	parts := []string{fmt.Sprintf("%d %s checked", n, countNoun(n, "file"))}

	if n := stats.DiagnosticsBySeverity["error"]; n > 0 {
		parts = append(parts, t.styles.Error.Render(fmt.Sprintf("%d %s", n, countNoun(n, "error"))))
	}
	if n := stats.DiagnosticsBySeverity["warning"]; n > 0 {
		parts = append(parts, t.styles.Warning.Render(fmt.Sprintf("%d %s", n, countNoun(n, "warning"))))
	}
	if n := stats.DiagnosticsBySeverity["info"]; n > 0 {
		parts = append(parts, t.styles.Info.Render(fmt.Sprintf("%d info", n)))
	}
	if stats.DiagnosticsFixable > 0 {
		parts = append(parts, t.styles.TableFixable.Render(
			fmt.Sprintf("%d fixable", stats.DiagnosticsFixable)))
	}

	return " " + strings.Join(parts, " | ")
}

// fitWidths sizes columns to content, then squeezes the message column
// (and last the file column) to stay inside the terminal width.
func (t *TableFormatter) fitWidths(rows []tableRow, withFile bool) columnWidths {
	w := columnWidths{loc: minLocWidth, message: minMessageWidth, rule: minRuleWidth}
	if withFile {
		w.file = minFileWidth
	}

	for _, row := range rows {
		if withFile {
			w.file = max(w.file, len(row.file))
		}
		w.loc = max(w.loc, len(row.location))
		w.message = max(w.message, len(row.message))
		w.rule = max(w.rule, len(row.ruleID))
	}

	if excess := w.total() - t.termWidth; excess > 0 {
		w.message = max(minMessageWidth, w.message-excess)
	}
	if withFile {
		if excess := w.total() - t.termWidth; excess > 0 {
			w.file = max(minFileWidth, w.file-excess)
		}
	}

	return w
}

func (t *TableFormatter) formatHeader(w columnWidths) string {
	var b strings.Builder
	b.WriteString(" ")
	if w.file > 0 {
		fmt.Fprintf(&b, "%-*s  ", w.file, "FILE")
	}
	fmt.Fprintf(&b, "%-*s  %-*s  %-*s   ", w.loc, "LOC", w.message, "MESSAGE", w.rule, "RULE")
	return t.styles.TableHeader.Render(b.String())
}

func (t *TableFormatter) formatSeparator(w columnWidths, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, w.total()))
}

// formatRow renders one row, colored by severity, with a trailing "+"
// marker for fixable diagnostics.
func (t *TableFormatter) formatRow(row tableRow, w columnWidths) string {
	marker := " "
	if row.fixable {
		marker = t.styles.TableFixable.Render(fixableSymbol)
	}

	var b strings.Builder
	b.WriteString(" ")
	if w.file > 0 {
		fmt.Fprintf(&b, "%-*s  ", w.file, truncateFilePath(row.file, w.file))
	}
	fmt.Fprintf(&b, "%-*s  %-*s  %-*s  %s",
		w.loc, truncateCell(row.location, w.loc),
		w.message, truncateCell(row.message, w.message),
		w.rule, truncateCell(row.ruleID, w.rule),
		marker,
	)

	return t.rowStyle(row.severity).Render(b.String())
}

func (t *TableFormatter) rowStyle(severity config.Severity) lipgloss.Style {
	switch severity {
	case config.SeverityError:
		return t.styles.TableErrorRow
	case config.SeverityWarning:
		return t.styles.TableWarnRow
	case config.SeverityInfo:
		return t.styles.TableInfoRow
	default:
		return lipgloss.NewStyle()
	}
}

// formatFileSummary renders per-file counts, e.g. " 2 errors | 1 fixable".
func (t *TableFormatter) formatFileSummary(rows []tableRow) string {
	var errors, warnings, infos, fixable int
	for _, row := range rows {
		switch row.severity {
		case config.SeverityError:
			errors++
		case config.SeverityWarning:
			warnings++
		case config.SeverityInfo:
			infos++
		}
		if row.fixable {
			fixable++
		}
	}

	var parts []string
	if errors > 0 {
		parts = append(parts, t.styles.Error.Render(fmt.Sprintf("%d %s", errors, countNoun(errors, "error"))))
	}
	if warnings > 0 {
		parts = append(parts, t.styles.Warning.Render(fmt.Sprintf("%d %s", warnings, countNoun(warnings, "warning"))))
	}
	if infos > 0 {
		parts = append(parts, t.styles.Info.Render(fmt.Sprintf("%d info", infos)))
	}
	if fixable > 0 {
		parts = append(parts, t.styles.TableFixable.Render(fmt.Sprintf("%d fixable", fixable)))
	}

	return " " + strings.Join(parts, " | ")
}

// formatLegend explains the row colors and the fixable marker. Without
// color the rows carry no severity cues, so only the marker is worth
// explaining.
func (t *TableFormatter) formatLegend() string {
	if !t.colorEnabled {
		return t.styles.TableLegend.Render(
			fmt.Sprintf(" Legend: %s = fixable", fixableSymbol))
	}

	return t.styles.TableLegend.Render(fmt.Sprintf(" Legend: %s = error  %s = warning  %s = fixable",
		t.styles.TableErrorRow.Render(" error "),
		t.styles.TableWarnRow.Render(" warning "),
		t.styles.TableFixable.Render(fixableSymbol),
	))
}

// truncateCell shortens a cell to maxLen with a "..." tail.
func truncateCell(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// truncateFilePath shortens a path from the left so the filename
// stays visible.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
