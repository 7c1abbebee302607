package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/lint"
	"github.com/yaklabco/marklint/pkg/mdcontext"
)

// FirstLineHeadingRule checks that files begin with a top-level heading.
type FirstLineHeadingRule struct {
	lint.BaseRule
}

// NewFirstLineHeadingRule creates a new first line heading rule.
func NewFirstLineHeadingRule() *FirstLineHeadingRule {
	return &FirstLineHeadingRule{
		BaseRule: lint.NewBaseRule(
			"MD041",
			"first-line-heading",
			"First line in a file should be a top-level heading",
			[]string{"headings", "metadata"},
			false, // Not auto-fixable.
		),
	}
}

// DefaultEnabled returns false - this rule is opt-in.
func (r *FirstLineHeadingRule) DefaultEnabled() bool {
	return false
}

// Apply checks that the first content in the file is a top-level
// heading. Front matter does not count as content, and a title key
// inside it can satisfy the rule when front_matter_title is set.
func (r *FirstLineHeadingRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil || len(ctx.Doc.Content()) == 0 {
		return nil, nil
	}

	requiredLevel := ctx.OptionInt("level", 1)
	frontMatterTitlePattern := ctx.OptionString("front_matter_title", "")

	if frontMatterTitlePattern != "" && ctx.Doc.HasFrontMatter() {
		hasTitle, err := r.checkFrontMatterTitle(ctx.Doc, frontMatterTitlePattern)
		// Invalid regex is ignored; the heading check still runs.
		if err == nil && hasTitle {
			return nil, nil
		}
	}

	firstLine := r.findFirstContentLine(ctx.Doc)
	if firstLine < 0 {
		return nil, nil // Nothing but front matter and blanks.
	}

	rec := ctx.Doc.Line(firstLine)
	if rec.Heading == nil || !rec.Heading.Valid {
		var msg string
		if requiredLevel == 1 {
			msg = "First line should be a top-level heading"
		} else {
			msg = fmt.Sprintf("First line should be an H%d heading", requiredLevel)
		}

		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
			lint.LineSpan(firstLine+1, 1, 1), msg).
			WithSeverity(config.SeverityWarning).
			WithSuggestion(fmt.Sprintf("Add an H%d heading at the beginning", requiredLevel)).
			Build()
		return []lint.Diagnostic{diag}, nil
	}

	if rec.Heading.Level != requiredLevel {
		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
			lint.SpanForLine(ctx.Doc, firstLine),
			fmt.Sprintf("First heading should be H%d, found H%d", requiredLevel, rec.Heading.Level)).
			WithSeverity(config.SeverityWarning).
			WithSuggestion(fmt.Sprintf("Change to an H%d heading", requiredLevel)).
			Build()
		return []lint.Diagnostic{diag}, nil
	}

	return nil, nil
}

// findFirstContentLine returns the 0-based index of the first
// non-blank line after any front matter, or -1.
func (r *FirstLineHeadingRule) findFirstContentLine(doc *mdcontext.Context) int {
	for i := doc.FirstContentLine(); i < doc.LineCount(); i++ {
		if !doc.Line(i).Blank {
			return i
		}
	}
	return -1
}

func (r *FirstLineHeadingRule) checkFrontMatterTitle(doc *mdcontext.Context, pattern string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("invalid front matter title pattern: %w", err)
	}

	// Interior front matter lines, delimiters excluded.
	for i := 1; i < doc.FrontMatterEnd(); i++ {
		if re.Match(lint.LineContent(doc, i)) {
			return true, nil
		}
	}

	return false, nil
}

// HeadingBlankLinesRule ensures headings are surrounded by blank lines.
type HeadingBlankLinesRule struct {
	lint.BaseRule
}

// NewHeadingBlankLinesRule creates a new heading blank lines rule.
func NewHeadingBlankLinesRule() *HeadingBlankLinesRule {
	return &HeadingBlankLinesRule{
		BaseRule: lint.NewBaseRule(
			"MD022",
			"heading-blank-lines",
			"Headings should be surrounded by blank lines",
			[]string{"headings", "whitespace"},
			true, // Auto-fixable.
		),
	}
}

// Apply checks that headings have blank lines around them. The line
// right after closing front matter counts as the document start, so a
// title heading there needs no blank above it.
func (r *HeadingBlankLinesRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	linesAbove := ctx.OptionInt("lines_above", 1)
	linesBelow := ctx.OptionInt("lines_below", 1)

	var diags []lint.Diagnostic

	for _, h := range lint.Headings(ctx.Doc) {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		startLine := h.Line
		endLine := h.Line
		if underline := lint.SetextUnderlineLine(ctx.Doc, h); underline >= 0 {
			endLine = underline
		}

		if linesAbove > 0 && startLine > ctx.Doc.FirstContentLine() {
			blanksBefore := lint.CountBlankLinesBefore(ctx.Doc, startLine)
			prevLine := startLine - blanksBefore - 1
			if blanksBefore < linesAbove && !r.boundaryAbove(ctx.Doc, prevLine) {
				diags = append(diags, r.blankBeforeDiagnostic(ctx, h, startLine, blanksBefore, linesAbove))
			}
		}

		if linesBelow > 0 && endLine < ctx.Doc.LineCount()-1 {
			blanksAfter := lint.CountBlankLinesAfter(ctx.Doc, endLine)
			nextLine := endLine + blanksAfter + 1
			if blanksAfter < linesBelow && !r.headingStartsOn(ctx.Doc, nextLine) {
				diags = append(diags, r.blankAfterDiagnostic(ctx, h, endLine, blanksAfter, linesBelow))
			}
		}
	}

	return diags, nil
}

// boundaryAbove reports whether the non-blank line above a heading is
// an acceptable neighbor: another heading's last line or the front
// matter delimiter.
func (r *HeadingBlankLinesRule) boundaryAbove(doc *mdcontext.Context, line int) bool {
	if line < 0 {
		return true
	}
	rec := doc.Line(line)
	if rec.InFrontMatter {
		return true
	}
	if rec.Heading != nil {
		// An ATX heading ends on its own line; a setext facet line is
		// only the content half, so it is not a complete heading above.
		switch rec.Heading.Style {
		case mdcontext.HeadingSetextH1, mdcontext.HeadingSetextH2:
			return false
		default:
			return true
		}
	}
	if line > 0 {
		prev := doc.Line(line - 1)
		if prev.Heading != nil {
			switch prev.Heading.Style {
			case mdcontext.HeadingSetextH1, mdcontext.HeadingSetextH2:
				return true // line is the setext underline
			}
		}
	}
	return false
}

func (r *HeadingBlankLinesRule) headingStartsOn(doc *mdcontext.Context, line int) bool {
	if line < 0 || line >= doc.LineCount() {
		return false
	}
	return doc.Line(line).Heading != nil
}

func (r *HeadingBlankLinesRule) blankBeforeDiagnostic(
	ctx *lint.RuleContext,
	h lint.Heading,
	startLine, current, required int,
) lint.Diagnostic {
	blanksNeeded := required - current
	builder := fix.NewEditBuilder()
	builder.Insert(ctx.Doc.Line(startLine).Start, strings.Repeat("\n", blanksNeeded))

	return lint.NewDiagnosticAt(r.ID(), ctx.FilePath, lint.HeadingSpan(ctx.Doc, h),
		fmt.Sprintf("Heading needs %d blank line(s) above, found %d", required, current)).
		WithSeverity(config.SeverityWarning).
		WithSuggestion(fmt.Sprintf("Add %d blank line(s) before the heading", blanksNeeded)).
		WithFix(builder).
		Build()
}

func (r *HeadingBlankLinesRule) blankAfterDiagnostic(
	ctx *lint.RuleContext,
	h lint.Heading,
	endLine, current, required int,
) lint.Diagnostic {
	blanksNeeded := required - current
	builder := fix.NewEditBuilder()
	builder.Insert(ctx.Doc.Line(endLine).End, strings.Repeat("\n", blanksNeeded))

	return lint.NewDiagnosticAt(r.ID(), ctx.FilePath, lint.HeadingSpan(ctx.Doc, h),
		fmt.Sprintf("Heading needs %d blank line(s) below, found %d", required, current)).
		WithSeverity(config.SeverityWarning).
		WithSuggestion(fmt.Sprintf("Add %d blank line(s) after the heading", blanksNeeded)).
		WithFix(builder).
		Build()
}

// RequiredHeadingsRule checks that document follows required heading structure.
type RequiredHeadingsRule struct {
	lint.BaseRule
}

// NewRequiredHeadingsRule creates a new required headings rule.
func NewRequiredHeadingsRule() *RequiredHeadingsRule {
	return &RequiredHeadingsRule{
		BaseRule: lint.NewBaseRule(
			"MD043",
			"required-headings",
			"Required heading structure",
			[]string{"headings"},
			false, // Not auto-fixable.
		),
	}
}

// DefaultEnabled returns false - this rule requires configuration.
func (r *RequiredHeadingsRule) DefaultEnabled() bool {
	return false
}

// Apply checks document heading structure against the configured
// pattern. "*" matches zero or more headings, "+" one or more, and
// "?" exactly one of any text.
func (r *RequiredHeadingsRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	requiredHeadings := ctx.OptionStringSlice("headings", nil)
	if len(requiredHeadings) == 0 {
		return nil, nil
	}

	matchCase := ctx.OptionBool("match_case", false)
	headings := lint.Headings(ctx.Doc)
	actualHeadings := r.buildActualHeadings(ctx.Doc, headings)

	return r.matchHeadings(ctx, headings, actualHeadings, requiredHeadings, matchCase)
}

func (r *RequiredHeadingsRule) buildActualHeadings(doc *mdcontext.Context, headings []lint.Heading) []string {
	result := make([]string, 0, len(headings))
	for _, h := range headings {
		result = append(result, fmt.Sprintf("%s %s", strings.Repeat("#", h.Facet.Level), h.Facet.Text))
	}
	return result
}

func (r *RequiredHeadingsRule) matchHeadings(
	ctx *lint.RuleContext,
	headings []lint.Heading,
	actualHeadings, requiredHeadings []string,
	matchCase bool,
) ([]lint.Diagnostic, error) {
	reqIdx, actIdx := 0, 0

	for reqIdx < len(requiredHeadings) && actIdx < len(actualHeadings) {
		required := requiredHeadings[reqIdx]

		switch required {
		case "*", "+":
			reqIdx, actIdx = r.handleWildcard(required, reqIdx, actIdx, actualHeadings, requiredHeadings, matchCase)
		case "?":
			actIdx++
			reqIdx++
		default:
			if r.headingMatches(actualHeadings[actIdx], required, matchCase) {
				actIdx++
				reqIdx++
				continue
			}
			return r.createMismatchDiagnostic(ctx, headings, actualHeadings, required, actIdx), nil
		}
	}

	return r.checkRemainingRequired(ctx, requiredHeadings, reqIdx)
}

func (r *RequiredHeadingsRule) handleWildcard(
	pattern string,
	reqIdx, actIdx int,
	actualHeadings, requiredHeadings []string,
	matchCase bool,
) (int, int) {
	if pattern == "+" {
		actIdx++ // Must match at least one
	}
	reqIdx++

	if reqIdx >= len(requiredHeadings) {
		return reqIdx, len(actualHeadings)
	}

	nextRequired := requiredHeadings[reqIdx]
	for actIdx < len(actualHeadings) {
		if r.headingMatches(actualHeadings[actIdx], nextRequired, matchCase) {
			break
		}
		actIdx++
	}
	return reqIdx, actIdx
}

func (r *RequiredHeadingsRule) createMismatchDiagnostic(
	ctx *lint.RuleContext,
	headings []lint.Heading,
	actualHeadings []string,
	required string,
	actIdx int,
) []lint.Diagnostic {
	span := r.spanForIndex(ctx, headings, actIdx)
	msg := r.getMismatchMessage(actualHeadings, required, actIdx)

	diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, span, msg).
		WithSeverity(config.SeverityWarning).
		WithSuggestion("Update heading to match required structure").
		Build()
	return []lint.Diagnostic{diag}
}

func (r *RequiredHeadingsRule) spanForIndex(
	ctx *lint.RuleContext,
	headings []lint.Heading,
	actIdx int,
) lint.Span {
	if actIdx < len(headings) {
		return lint.HeadingSpan(ctx.Doc, headings[actIdx])
	}
	return lint.LineSpan(ctx.Doc.LineCount(), 1, 1)
}

func (r *RequiredHeadingsRule) getMismatchMessage(actualHeadings []string, required string, actIdx int) string {
	if actIdx < len(actualHeadings) {
		return fmt.Sprintf("Expected heading %q, found %q", required, actualHeadings[actIdx])
	}
	return fmt.Sprintf("Missing required heading %q", required)
}

func (r *RequiredHeadingsRule) checkRemainingRequired(
	ctx *lint.RuleContext,
	requiredHeadings []string,
	reqIdx int,
) ([]lint.Diagnostic, error) {
	for reqIdx < len(requiredHeadings) {
		required := requiredHeadings[reqIdx]
		if required != "*" && required != "+" && required != "?" {
			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
				lint.LineSpan(ctx.Doc.LineCount(), 1, 1),
				fmt.Sprintf("Missing required heading %q", required)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Add required heading").
				Build()
			return []lint.Diagnostic{diag}, nil
		}
		reqIdx++
	}
	return nil, nil
}

func (r *RequiredHeadingsRule) headingMatches(actual, required string, matchCase bool) bool {
	if matchCase {
		return actual == required
	}
	return strings.EqualFold(actual, required)
}

// FrontMatterValidRule checks that front matter parses in the format
// its delimiters declare.
type FrontMatterValidRule struct {
	lint.BaseRule
}

// NewFrontMatterValidRule creates a new front matter validation rule.
func NewFrontMatterValidRule() *FrontMatterValidRule {
	return &FrontMatterValidRule{
		BaseRule: lint.NewBaseRule(
			"MDL002",
			"front-matter-valid",
			"Front matter should be valid YAML or TOML",
			[]string{"metadata"},
			false, // Not auto-fixable.
		),
	}
}

// yamlErrorLinePattern extracts the line prefix yaml.v3 puts on syntax errors.
var yamlErrorLinePattern = regexp.MustCompile(`yaml: line (\d+):`)

// Apply parses "---" front matter as YAML and "+++" front matter as
// TOML and reports syntax errors. Documents without front matter pass.
func (r *FrontMatterValidRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil || !ctx.Doc.HasFrontMatter() {
		return nil, nil
	}

	fmEnd := ctx.Doc.FrontMatterEnd()
	if fmEnd <= 1 {
		return nil, nil // Delimiters with nothing between them.
	}

	// Interior lines, delimiters excluded. Parser line numbers are
	// 1-based within this slice, which starts on 0-based document
	// line 1, so they map directly to 0-based document lines.
	interior := ctx.Doc.Content()[ctx.Doc.Line(1).Start:ctx.Doc.Line(fmEnd - 1).End]
	opener := strings.TrimRight(string(lint.LineContent(ctx.Doc, 0)), " \t")

	format := "YAML"
	errLine := -1
	var parseErr error

	if opener == "+++" {
		format = "TOML"
		var body map[string]any
		parseErr = toml.Unmarshal(interior, &body)
		var perr toml.ParseError
		if errors.As(parseErr, &perr) {
			errLine = perr.Position.Line
		}
	} else {
		var body any
		parseErr = yaml.Unmarshal(interior, &body)
		if parseErr != nil {
			if m := yamlErrorLinePattern.FindStringSubmatch(parseErr.Error()); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					errLine = n
				}
			}
		}
	}

	if parseErr == nil {
		return nil, nil
	}

	if errLine < 1 || errLine >= fmEnd {
		errLine = 0 // Unusable position; point at the opening delimiter.
	}

	diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, lint.SpanForLine(ctx.Doc, errLine),
		fmt.Sprintf("Front matter is not valid %s: %s", format, frontMatterErrorDetail(parseErr))).
		WithSeverity(config.SeverityWarning).
		WithSuggestion(fmt.Sprintf("Fix the %s syntax in the front matter block", format)).
		Build()
	return []lint.Diagnostic{diag}, nil
}

// frontMatterErrorDetail prefers the parser's short message over the
// full error text, which repeats position info the span already carries.
func frontMatterErrorDetail(err error) string {
	var perr toml.ParseError
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return strings.TrimPrefix(err.Error(), "yaml: ")
}

// ProperNamesRule checks for correct capitalization of proper names.
type ProperNamesRule struct {
	lint.BaseRule
}

// NewProperNamesRule creates a new proper names rule.
func NewProperNamesRule() *ProperNamesRule {
	return &ProperNamesRule{
		BaseRule: lint.NewBaseRule(
			"MD044",
			"proper-names",
			"Proper names should have the correct capitalization",
			[]string{"spelling"},
			true, // Auto-fixable.
		),
	}
}

// DefaultEnabled returns false - this rule requires configuration.
func (r *ProperNamesRule) DefaultEnabled() bool {
	return false
}

// Apply checks for incorrect capitalization of proper names.
func (r *ProperNamesRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	properNames := ctx.OptionStringSlice("names", nil)
	if len(properNames) == 0 {
		return nil, nil
	}

	includeCodeBlocks := ctx.OptionBool("code_blocks", true)
	includeHTMLElements := ctx.OptionBool("html_elements", true)

	// Build a whole-word, case-insensitive pattern per name.
	type namePattern struct {
		correct string
		pattern *regexp.Regexp
	}
	patterns := make([]namePattern, 0, len(properNames))
	for _, name := range properNames {
		escaped := regexp.QuoteMeta(name)
		pattern, err := regexp.Compile(`(?i)\b` + escaped + `\b`)
		if err != nil {
			continue
		}
		patterns = append(patterns, namePattern{correct: name, pattern: pattern})
	}

	var diags []lint.Diagnostic
	lines := ctx.Doc.Lines()

	for i := range lines {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}
		rec := &lines[i]

		if rec.Blank || rec.InFrontMatter {
			continue
		}
		if !includeCodeBlocks && rec.InCode() {
			continue
		}
		if !includeHTMLElements && (rec.InHTMLBlock || rec.InHTMLComment) {
			continue
		}

		text := lint.LineContent(ctx.Doc, i)

		for _, np := range patterns {
			matches := np.pattern.FindAllIndex(text, -1)
			for _, match := range matches {
				found := string(text[match[0]:match[1]])
				if found == np.correct {
					continue
				}

				if !includeCodeBlocks && ctx.Doc.IsInCodeSpan(rec.Start+match[0]) {
					continue
				}

				builder := fix.NewEditBuilder()
				builder.ReplaceRange(rec.Start+match[0], rec.Start+match[1], np.correct)

				diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
					lint.LineSpan(i+1, match[0]+1, match[1]+1),
					fmt.Sprintf("Proper name %q should be %q", found, np.correct)).
					WithSeverity(config.SeverityWarning).
					WithSuggestion(fmt.Sprintf("Use %q", np.correct)).
					WithFix(builder).
					Build()
				diags = append(diags, diag)
			}
		}
	}

	return diags, nil
}
