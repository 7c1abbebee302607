package reporter

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yaklabco/marklint/internal/ui/pretty"
	"github.com/yaklabco/marklint/pkg/analysis"
	"github.com/yaklabco/marklint/pkg/config"
)

// Column layout for the two summary tables. Both share one separator
// width so they line up when printed together.
const (
	tableWidth        = 90
	ruleColWidth      = 30
	fileColWidth      = 60
	numColWidth       = 7
	warnColWidth      = 8
	fixableColWidth   = 8
	maxRuleNameLength = 28
	maxFilePathLength = 58
)

// SummaryRenderer formats results as aggregated summary tables.
type SummaryRenderer struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewSummaryRenderer creates a new summary renderer.
func NewSummaryRenderer(opts Options) *SummaryRenderer {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &SummaryRenderer{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

// Render implements Renderer.
func (r *SummaryRenderer) Render(_ context.Context, report *analysis.Report) error {
	if report.Totals.Issues == 0 {
		fmt.Fprintln(r.out, r.styles.Success.Render("No issues found"))
		return nil
	}

	if r.opts.SummaryOrder == config.SummaryOrderFiles {
		r.renderFileTable(report.ByFile)
		fmt.Fprintln(r.out)
		r.renderRuleTable(report.ByRule)
	} else {
		r.renderRuleTable(report.ByRule)
		fmt.Fprintln(r.out)
		r.renderFileTable(report.ByFile)
	}

	fmt.Fprintln(r.out)
	r.renderTotals(report.Totals)

	return nil
}

// tableHead prints the bold title and the column header row between
// separator lines.
func (r *SummaryRenderer) tableHead(title, columns string) {
	sep := r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth))
	fmt.Fprintln(r.out, r.styles.Bold.Render(title))
	fmt.Fprintln(r.out, sep)
	fmt.Fprintln(r.out, columns)
	fmt.Fprintln(r.out, sep)
}

func (r *SummaryRenderer) renderRuleTable(rules []analysis.RuleAnalysis) {
	if len(rules) == 0 {
		return
	}

	r.tableHead("Rules Summary", fmt.Sprintf("%s %s %s %s %s",
		r.styles.TableHeader.Render(padRight("Rule", ruleColWidth)),
		r.styles.TableHeader.Render(padLeft("Count", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Errors", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Warnings", warnColWidth)),
		r.styles.TableHeader.Render(padLeft("Fixable", fixableColWidth)),
	))

	for _, rule := range rules {
		name := rule.RuleName
		if name == "" {
			name = rule.RuleID
		}

		fixable := padLeft("", fixableColWidth)
		if rule.Fixable {
			fixable = r.styles.Success.Render(padLeft("✓", fixableColWidth))
		}

		fmt.Fprintf(r.out, "%s %s %s %s %s\n",
			r.styleRow(padRight(clipTail(name, maxRuleNameLength), ruleColWidth), rule.Errors, rule.Warnings),
			padLeft(strconv.Itoa(rule.Issues), numColWidth),
			padLeft(strconv.Itoa(rule.Errors), numColWidth),
			padLeft(strconv.Itoa(rule.Warnings), warnColWidth),
			fixable,
		)
	}
}

func (r *SummaryRenderer) renderFileTable(files []analysis.FileAnalysis) {
	if len(files) == 0 {
		return
	}

	r.tableHead("Files Summary", fmt.Sprintf("%s %s %s %s",
		r.styles.TableHeader.Render(padRight("File", fileColWidth)),
		r.styles.TableHeader.Render(padLeft("Count", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Errors", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Warnings", warnColWidth)),
	))

	for _, file := range files {
		fmt.Fprintf(r.out, "%s %s %s %s\n",
			r.styleRow(padRight(clipHead(file.Path, maxFilePathLength), fileColWidth), file.Errors, file.Warnings),
			padLeft(strconv.Itoa(file.Issues), numColWidth),
			padLeft(strconv.Itoa(file.Errors), numColWidth),
			padLeft(strconv.Itoa(file.Warnings), warnColWidth),
		)
	}
}

func (r *SummaryRenderer) renderTotals(totals analysis.Totals) {
	issues := fmt.Sprintf("%d %s", totals.Issues, plural(totals.Issues, "issue", "issues"))

	var breakdown []string
	if totals.Errors > 0 {
		breakdown = append(breakdown, r.styles.Error.Render(fmt.Sprintf("%d errors", totals.Errors)))
	}
	if totals.Warnings > 0 {
		breakdown = append(breakdown, r.styles.Warning.Render(fmt.Sprintf("%d warnings", totals.Warnings)))
	}
	if len(breakdown) > 0 {
		issues += " (" + strings.Join(breakdown, ", ") + ")"
	}

	fmt.Fprintf(r.out, "%s%s in %d %s\n",
		r.styles.Bold.Render("Total: "),
		issues,
		totals.FilesWithIssues,
		plural(totals.FilesWithIssues, "file", "files"),
	)
}

// styleRow colors a padded cell by the row's worst severity. Padding
// must happen before styling so ANSI codes stay out of the width math.
func (r *SummaryRenderer) styleRow(padded string, errors, warnings int) string {
	switch {
	case errors > 0:
		return r.styles.TableErrorRow.Render(padded)
	case warnings > 0:
		return r.styles.TableWarnRow.Render(padded)
	default:
		return padded
	}
}

// clipTail truncates s to limit bytes, marking the cut with an ellipsis.
func clipTail(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "…"
}

// clipHead keeps the last limit-1 bytes of s, marking the cut in front.
// Paths truncate from the left so the filename stays visible.
func clipHead(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return "…" + s[len(s)-(limit-1):]
}

// padRight pads s with trailing spaces to width bytes. Apply before any
// ANSI styling so escape codes do not count toward the width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// padLeft pads s with leading spaces to width bytes.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
