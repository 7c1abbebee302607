package rules

import (
	"fmt"
	"strings"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/lint"
	"github.com/yaklabco/marklint/pkg/mdcontext"
)

// TrailingWhitespaceRule checks for trailing whitespace on lines.
type TrailingWhitespaceRule struct {
	lint.BaseRule
}

// NewTrailingWhitespaceRule creates a new trailing whitespace rule.
func NewTrailingWhitespaceRule() *TrailingWhitespaceRule {
	return &TrailingWhitespaceRule{
		BaseRule: lint.NewBaseRule(
			"MD009",
			"no-trailing-spaces",
			"Lines should not have trailing spaces",
			[]string{"whitespace"},
			true,
		),
	}
}

// Apply checks for trailing whitespace on each line. Two trailing
// spaces are a hard line break in Markdown, so br_spaces exempts
// exactly that count on prose lines when set.
func (r *TrailingWhitespaceRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil || !ctx.Doc.HasTrailingWhitespace() {
		return nil, nil
	}

	brSpaces := ctx.OptionInt("br_spaces", 0)
	listItemEmptyLines := ctx.OptionBool("list_item_empty_lines", false)
	strict := ctx.OptionBool("strict", false)

	var skip mdcontext.LineFilter
	if !ctx.OptionBool("code_blocks", true) {
		skip = mdcontext.FilterCode
	}

	var diags []lint.Diagnostic
	for i, rec := range ctx.Doc.FilteredLines(skip) {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}
		start, end := lint.TrailingWhitespaceRange(ctx.Doc, i)
		if start < 0 {
			continue
		}

		width := end - start
		if !strict && brSpaces >= 2 && width == brSpaces && !rec.Blank {
			continue
		}
		if listItemEmptyLines && rec.Blank && insideListBlock(ctx.Doc, i) {
			continue
		}

		builder := fix.NewEditBuilder()
		if !strict && brSpaces >= 2 && width > brSpaces && !rec.Blank {
			// Trim down to a valid hard break instead of removing it.
			builder.Delete(start+brSpaces, end)
		} else {
			builder.Delete(start, end)
		}

		span := lint.SpanForByteRange(ctx.Doc, start, end)
		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, span, "Trailing whitespace").
			WithSeverity(config.SeverityWarning).
			WithSuggestion("Remove trailing whitespace").
			WithFix(builder).
			Build()
		diags = append(diags, diag)
	}

	return diags, nil
}

// insideListBlock reports whether the 0-based line falls inside any
// grouped list block.
func insideListBlock(doc *mdcontext.Context, line int) bool {
	for _, b := range doc.ListBlocks() {
		if line >= b.StartLine && line <= b.EndLine {
			return true
		}
		if b.StartLine > line {
			break
		}
	}
	return false
}

// HardTabsRule checks for hard tab characters in the document.
type HardTabsRule struct {
	lint.BaseRule
}

// NewHardTabsRule creates a new hard tabs rule.
func NewHardTabsRule() *HardTabsRule {
	return &HardTabsRule{
		BaseRule: lint.NewBaseRule(
			"MD010",
			"no-hard-tabs",
			"Hard tabs should not be used",
			[]string{"hard_tab", "whitespace"},
			true,
		),
	}
}

// Apply checks for hard tab characters on each line.
func (r *HardTabsRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil || !ctx.Doc.HasTabs() {
		return nil, nil
	}

	spacesPerTab := ctx.OptionInt("spaces_per_tab", 1)
	if spacesPerTab < 1 {
		spacesPerTab = 1
	}
	ignoreLangs := languageSet(ctx.OptionStringSlice("ignore_code_languages", nil))

	var skip mdcontext.LineFilter
	if !ctx.OptionBool("code_blocks", true) {
		skip = mdcontext.FilterCode
	}

	// Fenced blocks whose language is exempt keep their tabs (Makefiles
	// embedded in docs are the usual case).
	exempt := map[int]bool{}
	if len(ignoreLangs) > 0 {
		for _, cb := range ctx.Doc.CodeBlocks() {
			lang := strings.ToLower(firstField(cb.Info))
			if lang == "" || !ignoreLangs[lang] {
				continue
			}
			for line := cb.StartLine; line <= cb.EndLine; line++ {
				exempt[line] = true
			}
		}
	}

	var diags []lint.Diagnostic
	for i := range ctx.Doc.FilteredLines(skip) {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}
		if exempt[i] {
			continue
		}
		text := lint.LineContent(ctx.Doc, i)
		tabs := tabOffsets(text)
		if len(tabs) == 0 {
			continue
		}

		lineStart := ctx.Doc.Line(i).Start
		builder := fix.NewEditBuilder()
		for _, off := range tabs {
			builder.ReplaceRange(lineStart+off, lineStart+off+1, strings.Repeat(" ", spacesPerTab))
		}

		span := lint.LineSpan(i+1, tabs[0]+1, tabs[0]+2)
		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, span, "Hard tab character found").
			WithSeverity(config.SeverityWarning).
			WithSuggestion(fmt.Sprintf("Replace tab with %d space(s)", spacesPerTab)).
			WithFix(builder).
			Build()
		diags = append(diags, diag)
	}

	return diags, nil
}

func languageSet(langs []string) map[string]bool {
	if len(langs) == 0 {
		return nil
	}
	set := make(map[string]bool, len(langs))
	for _, l := range langs {
		set[strings.ToLower(l)] = true
	}
	return set
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// tabOffsets returns the byte offsets of all tabs in the line text.
func tabOffsets(text []byte) []int {
	var offs []int
	for i, ch := range text {
		if ch == '\t' {
			offs = append(offs, i)
		}
	}
	return offs
}

// MultipleBlankLinesRule checks for consecutive blank lines.
type MultipleBlankLinesRule struct {
	lint.BaseRule
}

// NewMultipleBlankLinesRule creates a new multiple blank lines rule.
func NewMultipleBlankLinesRule() *MultipleBlankLinesRule {
	return &MultipleBlankLinesRule{
		BaseRule: lint.NewBaseRule(
			"MD012",
			"no-multiple-blank-lines",
			"Multiple consecutive blank lines should be collapsed",
			[]string{"whitespace", "layout"},
			true,
		),
	}
}

// Apply checks for runs of blank lines exceeding the maximum. Blank
// lines inside fenced code and front matter are content, not layout,
// and never count.
func (r *MultipleBlankLinesRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil || ctx.Doc.LineCount() == 0 {
		return nil, nil
	}

	maxConsecutive := ctx.OptionInt("max_consecutive", 1)
	if maxConsecutive < 0 {
		maxConsecutive = 1
	}

	var diags []lint.Diagnostic
	streakStart := 0
	streak := 0

	flush := func() {
		if streak > maxConsecutive {
			diags = append(diags, r.excessDiagnostic(ctx, streakStart, streak, maxConsecutive))
		}
		streak = 0
	}

	lines := ctx.Doc.Lines()
	for i := range lines {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}
		rec := &lines[i]
		if rec.Blank && !rec.InFencedCode && !rec.InFrontMatter {
			if streak == 0 {
				streakStart = i
			}
			streak++
			continue
		}
		flush()
	}
	flush()

	return diags, nil
}

func (r *MultipleBlankLinesRule) excessDiagnostic(
	ctx *lint.RuleContext,
	streakStart, streak, maxConsecutive int,
) lint.Diagnostic {
	firstExcess := streakStart + maxConsecutive
	lastExcess := streakStart + streak - 1

	rng := ctx.Doc.MultiLineByteRange(firstExcess+1, lastExcess+1)
	builder := fix.NewEditBuilder()
	builder.Delete(rng.Start, rng.End)

	span := lint.Span{
		StartLine: firstExcess + 1, StartColumn: 1,
		EndLine: lastExcess + 1, EndColumn: 1,
	}
	return lint.NewDiagnosticAt(r.ID(), ctx.FilePath, span,
		fmt.Sprintf("Multiple consecutive blank lines (found %d, max %d)", streak, maxConsecutive)).
		WithSeverity(config.SeverityWarning).
		WithSuggestion(fmt.Sprintf("Remove %d blank line(s)", streak-maxConsecutive)).
		WithFix(builder).
		Build()
}

// FinalNewlineRule ensures files end with a single newline.
type FinalNewlineRule struct {
	lint.BaseRule
}

// NewFinalNewlineRule creates a new final newline rule.
func NewFinalNewlineRule() *FinalNewlineRule {
	return &FinalNewlineRule{
		BaseRule: lint.NewBaseRule(
			"MD047",
			"single-trailing-newline",
			"Files should end with a single newline character",
			[]string{"blank_lines"},
			true,
		),
	}
}

// Apply checks that the file ends with exactly one newline.
func (r *FinalNewlineRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil || len(ctx.Doc.Content()) == 0 {
		return nil, nil
	}

	content := ctx.Doc.Content()
	lastLine := ctx.Doc.LineCount()

	if content[len(content)-1] != '\n' {
		builder := fix.NewEditBuilder()
		builder.Insert(len(content), "\n")

		col := lint.LineLength(ctx.Doc, lastLine-1) + 1
		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, lint.LineSpan(lastLine, col, col),
			"File should end with a newline").
			WithSeverity(config.SeverityWarning).
			WithSuggestion("Add a newline at end of file").
			WithFix(builder).
			Build()
		return []lint.Diagnostic{diag}, nil
	}

	maxTrailing := ctx.OptionInt("max_trailing_blank_lines", 1)
	trailing := 0
	for i := lastLine - 1; i >= 0 && ctx.Doc.Line(i).Blank; i-- {
		trailing++
	}
	if trailing <= maxTrailing {
		return nil, nil
	}

	excess := trailing - maxTrailing
	firstExcess := lastLine - trailing // 0-based
	rng := ctx.Doc.MultiLineByteRange(firstExcess+1, firstExcess+excess)

	builder := fix.NewEditBuilder()
	builder.Delete(rng.Start, rng.End)

	span := lint.Span{
		StartLine: firstExcess + 1, StartColumn: 1,
		EndLine: firstExcess + excess, EndColumn: 1,
	}
	diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, span,
		fmt.Sprintf("Too many trailing blank lines (found %d, max %d)", trailing, maxTrailing)).
		WithSeverity(config.SeverityWarning).
		WithSuggestion(fmt.Sprintf("Remove %d trailing blank line(s)", excess)).
		WithFix(builder).
		Build()
	return []lint.Diagnostic{diag}, nil
}
