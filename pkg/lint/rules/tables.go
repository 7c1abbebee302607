package rules

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/lint"
	"github.com/yaklabco/marklint/pkg/mdcontext"
)

// tableRowLines returns every row line of a table in document order,
// header and delimiter included.
func tableRowLines(block *mdcontext.TableBlock) []int {
	rows := make([]int, 0, len(block.ContentLines)+2)
	rows = append(rows, block.HeaderLine, block.DelimiterLine)
	return append(rows, block.ContentLines...)
}

// tableRowBody returns the row text with any blockquote prefix
// stripped, so pipe detection sees the row itself rather than the
// quote markers.
func tableRowBody(doc *mdcontext.Context, line int) []byte {
	rec := doc.Line(line)
	text := lint.LineContent(doc, line)
	if rec.Blockquote != nil && len(rec.Blockquote.Prefix) <= len(text) {
		text = text[len(rec.Blockquote.Prefix):]
	}
	return text
}

// TablePipeStyleRule checks for consistent leading/trailing pipe style in tables.
type TablePipeStyleRule struct {
	lint.BaseRule
}

// NewTablePipeStyleRule creates a new table pipe style rule.
func NewTablePipeStyleRule() *TablePipeStyleRule {
	return &TablePipeStyleRule{
		BaseRule: lint.NewBaseRule(
			"MD055",
			"table-pipe-style",
			"Table pipe style should be consistent",
			[]string{"table"},
			false, // Not auto-fixable (complex).
		),
	}
}

// PipeStyle represents the pipe style of tables.
type PipeStyle string

const (
	// PipeStyleConsistent uses whatever style is first encountered.
	PipeStyleConsistent PipeStyle = "consistent"
	// PipeStyleLeadingAndTrailing requires pipes at both ends.
	PipeStyleLeadingAndTrailing PipeStyle = "leading_and_trailing"
	// PipeStyleLeadingOnly requires pipe at start only.
	PipeStyleLeadingOnly PipeStyle = "leading_only"
	// PipeStyleTrailingOnly requires pipe at end only.
	PipeStyleTrailingOnly PipeStyle = "trailing_only"
	// PipeStyleNoLeadingOrTrailing requires no pipes at ends.
	PipeStyleNoLeadingOrTrailing PipeStyle = "no_leading_or_trailing"
)

// Apply checks table pipe style consistency.
func (r *TablePipeStyleRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}
	if !ctx.Doc.LikelyHasTables() {
		return nil, nil
	}

	configStyle := PipeStyle(ctx.OptionString("style", string(PipeStyleConsistent)))

	var expected PipeStyle
	if configStyle != PipeStyleConsistent {
		expected = configStyle
	}

	var diags []lint.Diagnostic
	tables := ctx.Doc.Tables()
	for ti := range tables {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		block := &tables[ti]
		for _, line := range tableRowLines(block) {
			trimmed := bytes.TrimSpace(tableRowBody(ctx.Doc, line))
			if len(trimmed) == 0 {
				continue
			}

			hasLeading := trimmed[0] == '|'
			hasTrailing := trimmed[len(trimmed)-1] == '|'

			var detected PipeStyle
			switch {
			case hasLeading && hasTrailing:
				detected = PipeStyleLeadingAndTrailing
			case hasLeading:
				detected = PipeStyleLeadingOnly
			case hasTrailing:
				detected = PipeStyleTrailingOnly
			default:
				detected = PipeStyleNoLeadingOrTrailing
			}

			// First row seen sets the expected style in consistent mode.
			if expected == "" {
				expected = detected
				continue
			}

			if detected != expected {
				diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, lint.SpanForLine(ctx.Doc, line),
					fmt.Sprintf("Table row pipe style '%s' does not match expected '%s'", detected, expected)).
					WithSeverity(config.SeverityWarning).
					WithSuggestion(fmt.Sprintf("Use %s pipe style for all table rows", expected)).
					Build()
				diags = append(diags, diag)
			}
		}
	}

	return diags, nil
}

// TableColumnCountRule checks that table rows have consistent column counts.
type TableColumnCountRule struct {
	lint.BaseRule
}

// NewTableColumnCountRule creates a new table column count rule.
func NewTableColumnCountRule() *TableColumnCountRule {
	return &TableColumnCountRule{
		BaseRule: lint.NewBaseRule(
			"MD056",
			"table-column-count",
			"Table rows should have consistent column counts",
			[]string{"table"},
			false, // Not auto-fixable (content decision).
		),
	}
}

// Apply checks table column consistency. The header and delimiter
// rows always agree (a mismatched pair is not recognized as a table),
// so only content rows can diverge.
func (r *TableColumnCountRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}
	if !ctx.Doc.LikelyHasTables() {
		return nil, nil
	}

	var diags []lint.Diagnostic
	tables := ctx.Doc.Tables()
	for ti := range tables {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		block := &tables[ti]
		for _, line := range block.ContentLines {
			count := len(ctx.Doc.TableCellRanges(line))
			if count == block.ColumnCount {
				continue
			}

			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, lint.SpanForLine(ctx.Doc, line),
				fmt.Sprintf("Table row has %d columns, expected %d", count, block.ColumnCount)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Ensure all rows have the same number of columns").
				Build()
			diags = append(diags, diag)
		}
	}

	return diags, nil
}

// TableAlignmentRule checks that table delimiter rows are properly formatted.
type TableAlignmentRule struct {
	lint.BaseRule
}

// NewTableAlignmentRule creates a new table alignment rule.
func NewTableAlignmentRule() *TableAlignmentRule {
	return &TableAlignmentRule{
		BaseRule: lint.NewBaseRule(
			"MDL003",
			"table-alignment",
			"Table delimiter row should be properly formatted",
			[]string{"tables", "gfm"},
			true, // Auto-fixable.
		),
	}
}

// Apply checks table delimiter row formatting.
func (r *TableAlignmentRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}
	if !ctx.Doc.LikelyHasTables() {
		return nil, nil
	}

	minDashes := ctx.OptionInt("min_dashes", 3)

	var diags []lint.Diagnostic
	tables := ctx.Doc.Tables()
	for ti := range tables {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		block := &tables[ti]
		cells := ctx.Doc.TableCellRanges(block.DelimiterLine)
		for _, cell := range cells {
			text := bytes.TrimSpace(ctx.Doc.Content()[cell.Start:cell.End])
			if len(text) == 0 {
				continue
			}

			if bytes.Count(text, []byte("-")) >= minDashes {
				continue
			}

			builder := r.buildAlignmentFix(ctx.Doc, block, minDashes)

			diagBuilder := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, lint.SpanForLine(ctx.Doc, block.DelimiterLine),
				fmt.Sprintf("Table delimiter has fewer than %d dashes", minDashes)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion(fmt.Sprintf("Use at least %d dashes in delimiter cells", minDashes))

			if builder != nil {
				diagBuilder = diagBuilder.WithFix(builder)
			}

			diags = append(diags, diagBuilder.Build())
			break // One diagnostic per delimiter row.
		}
	}

	return diags, nil
}

func (r *TableAlignmentRule) buildAlignmentFix(
	doc *mdcontext.Context,
	block *mdcontext.TableBlock,
	minDashes int,
) *fix.EditBuilder {
	cells := doc.TableCellRanges(block.DelimiterLine)
	if len(cells) == 0 {
		return nil
	}

	dashes := strings.Repeat("-", minDashes)
	newCells := make([]string, 0, len(cells))
	for _, cell := range cells {
		text := bytes.TrimSpace(doc.Content()[cell.Start:cell.End])
		if len(text) == 0 {
			newCells = append(newCells, dashes)
			continue
		}

		// Preserve alignment markers.
		leftAlign := text[0] == ':'
		rightAlign := len(text) > 1 && text[len(text)-1] == ':'

		var newCell string
		switch {
		case leftAlign && rightAlign:
			newCell = ":" + dashes + ":"
		case leftAlign:
			newCell = ":" + dashes
		case rightAlign:
			newCell = dashes + ":"
		default:
			newCell = dashes
		}
		newCells = append(newCells, newCell)
	}

	rec := doc.Line(block.DelimiterLine)
	builder := fix.NewEditBuilder()
	builder.ReplaceRange(rec.Start, rec.TextEnd, block.Prefix+"| "+strings.Join(newCells, " | ")+" |")

	return builder
}

// TableBlankLinesRule ensures blank lines around tables.
type TableBlankLinesRule struct {
	lint.BaseRule
}

// NewTableBlankLinesRule creates a new table blank lines rule.
func NewTableBlankLinesRule() *TableBlankLinesRule {
	return &TableBlankLinesRule{
		BaseRule: lint.NewBaseRule(
			"MD058",
			"blanks-around-tables",
			"Tables should be surrounded by blank lines",
			[]string{"table"},
			true, // Auto-fixable.
		),
	}
}

// DefaultSeverity returns info level for this rule.
func (r *TableBlankLinesRule) DefaultSeverity() config.Severity {
	return config.SeverityInfo
}

// Apply checks for blank lines around tables.
func (r *TableBlankLinesRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}
	if !ctx.Doc.LikelyHasTables() {
		return nil, nil
	}

	var diags []lint.Diagnostic
	tables := ctx.Doc.Tables()
	for ti := range tables {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		block := &tables[ti]

		if !boundaryOK(ctx.Doc, block.StartLine-1) {
			builder := fix.NewEditBuilder()
			builder.Insert(ctx.Doc.Line(block.StartLine).Start, "\n")

			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
				lint.LineSpan(block.StartLine+1, 1, 1),
				"Missing blank line before table").
				WithSeverity(config.SeverityInfo).
				WithSuggestion("Add a blank line before the table").
				WithFix(builder).
				Build()
			diags = append(diags, diag)
		}

		if !boundaryOK(ctx.Doc, block.EndLine+1) {
			builder := fix.NewEditBuilder()
			builder.Insert(ctx.Doc.Line(block.EndLine).End, "\n")

			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
				lint.LineSpan(block.EndLine+1, 1, 1),
				"Missing blank line after table").
				WithSeverity(config.SeverityInfo).
				WithSuggestion("Add a blank line after the table").
				WithFix(builder).
				Build()
			diags = append(diags, diag)
		}
	}

	return diags, nil
}

// TableColumnStyleRule checks for consistent column spacing style in tables.
type TableColumnStyleRule struct {
	lint.BaseRule
}

// NewTableColumnStyleRule creates a new table column style rule.
func NewTableColumnStyleRule() *TableColumnStyleRule {
	return &TableColumnStyleRule{
		BaseRule: lint.NewBaseRule(
			"MD060",
			"table-column-style",
			"Table column style should be consistent",
			[]string{"table"},
			false, // Not auto-fixable (style preference).
		),
	}
}

// DefaultEnabled returns false - this is an optional style rule.
func (r *TableColumnStyleRule) DefaultEnabled() bool {
	return false
}

// ColumnStyle represents the column spacing style of tables.
type ColumnStyle string

const (
	// ColumnStyleAny allows any consistent style.
	ColumnStyleAny ColumnStyle = "any"
	// ColumnStyleAligned requires columns to be aligned with padding.
	ColumnStyleAligned ColumnStyle = "aligned"
	// ColumnStyleCompact uses minimal spacing (single space padding).
	ColumnStyleCompact ColumnStyle = "compact"
	// ColumnStyleTight uses no extra spacing.
	ColumnStyleTight ColumnStyle = "tight"
)

// Apply checks table column spacing style.
func (r *TableColumnStyleRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}
	if !ctx.Doc.LikelyHasTables() {
		return nil, nil
	}

	configStyle := ColumnStyle(ctx.OptionString("style", string(ColumnStyleAny)))
	if configStyle == ColumnStyleAny {
		return nil, nil
	}

	var diags []lint.Diagnostic
	tables := ctx.Doc.Tables()
	for ti := range tables {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		block := &tables[ti]
		for _, line := range tableRowLines(block) {
			detected := r.detectColumnStyle(ctx.Doc, line)
			if detected == configStyle {
				continue
			}

			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, lint.SpanForLine(ctx.Doc, line),
				fmt.Sprintf("Table column style '%s' does not match expected '%s'", detected, configStyle)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion(fmt.Sprintf("Use %s column style", configStyle)).
				Build()
			diags = append(diags, diag)
		}
	}

	return diags, nil
}

func (r *TableColumnStyleRule) detectColumnStyle(doc *mdcontext.Context, line int) ColumnStyle {
	cells := doc.TableCellRanges(line)
	if len(cells) == 0 {
		return ColumnStyleCompact
	}

	content := doc.Content()
	hasLeadingSpace := true
	hasTrailingSpace := true
	allPaddedSame := true
	firstPadding := -1

	for _, cell := range cells {
		raw := content[cell.Start:cell.End]
		if len(raw) == 0 {
			continue
		}

		leading := 0
		for leading < len(raw) && raw[leading] == ' ' {
			leading++
		}

		trailing := 0
		for trailing < len(raw)-leading && raw[len(raw)-1-trailing] == ' ' {
			trailing++
		}

		if leading == 0 {
			hasLeadingSpace = false
		}
		if trailing == 0 {
			hasTrailingSpace = false
		}

		total := leading + trailing
		if firstPadding < 0 {
			firstPadding = total
		} else if total != firstPadding {
			allPaddedSame = false
		}
	}

	switch {
	case !hasLeadingSpace && !hasTrailingSpace:
		return ColumnStyleTight
	case hasLeadingSpace && hasTrailingSpace && allPaddedSame:
		if firstPadding == 2 { // Single space on each side.
			return ColumnStyleCompact
		}
		return ColumnStyleAligned
	default:
		return ColumnStyleCompact
	}
}
