package rules

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/lint"
	"github.com/yaklabco/marklint/pkg/mdcontext"
)

// NoEmphasisAsHeadingRule checks for emphasis used instead of headings.
type NoEmphasisAsHeadingRule struct {
	lint.BaseRule
}

// NewNoEmphasisAsHeadingRule creates a new no-emphasis-as-heading rule.
func NewNoEmphasisAsHeadingRule() *NoEmphasisAsHeadingRule {
	return &NoEmphasisAsHeadingRule{
		BaseRule: lint.NewBaseRule(
			"MD036",
			"no-emphasis-as-heading",
			"Emphasis used instead of a heading",
			[]string{"emphasis", "headings"},
			true, // Auto-fixable - infers heading level from context.
		),
	}
}

// defaultEmphasisPunctuation is the default punctuation that indicates emphasis is not a heading.
const defaultEmphasisPunctuation = ".,;:!?"

// emphasisSpaceMatchGroups is the minimum submatch indices for the emphasisSpacePattern.
const emphasisSpaceMatchGroups = 8

// Apply checks for emphasis used instead of headings. A paragraph
// that is nothing but a single emphasized run reads like a section
// title, so it should be one.
func (r *NoEmphasisAsHeadingRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}
	if !ctx.Doc.LikelyHasEmphasis() {
		return nil, nil
	}

	punctuation := ctx.OptionString("punctuation", defaultEmphasisPunctuation)

	var diags []lint.Diagnostic

	for _, span := range ctx.Doc.EmphasisSpans() {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		line := span.Line - 1
		rec := ctx.Doc.Line(line)
		if rec.Heading != nil || rec.ListItem != nil {
			continue
		}

		// The span must be the entire paragraph line.
		text := lint.LineContent(ctx.Doc, line)
		if rec.Blockquote != nil {
			text = text[len(rec.Blockquote.Prefix):]
		}
		trimmed := bytes.TrimSpace(text)
		spanText := ctx.Doc.Content()[span.ByteStart:span.ByteEnd]
		if !bytes.Equal(trimmed, spanText) {
			continue
		}

		// And the line must stand alone as its own paragraph.
		if !r.standsAlone(ctx.Doc, line) {
			continue
		}

		inner := string(spanText[span.Level : len(spanText)-span.Level])
		if inner == "" {
			continue
		}

		// Trailing punctuation means a short sentence, not a title.
		runes := []rune(inner)
		if strings.ContainsRune(punctuation, runes[len(runes)-1]) {
			continue
		}

		diagBuilder := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
			lint.SpanForByteRange(ctx.Doc, span.ByteStart, span.ByteEnd),
			"Emphasis used instead of a heading").
			WithSeverity(config.SeverityWarning).
			WithSuggestion("Use a heading instead of emphasis for section titles")

		// Only bold paragraphs get the autofix; italic ones are more
		// often intentional prose.
		if span.Level == 2 {
			level := r.inferHeadingLevel(ctx.Doc, line)
			replacement := strings.Repeat("#", level) + " " + inner

			builder := fix.NewEditBuilder()
			builder.ReplaceRange(span.ByteStart, span.ByteEnd, replacement)
			diagBuilder = diagBuilder.WithFix(builder)
		}

		diags = append(diags, diagBuilder.Build())
	}

	return diags, nil
}

// standsAlone reports whether the line is bounded by blanks, document
// edges, or other paragraph breaks on both sides.
func (r *NoEmphasisAsHeadingRule) standsAlone(doc *mdcontext.Context, line int) bool {
	return boundaryOK(doc, line-1) && boundaryOK(doc, line+1)
}

// inferHeadingLevel determines the appropriate heading level for an
// emphasis paragraph: the nearest preceding heading's level plus one,
// capped at H6, defaulting to H2 when no heading precedes it.
func (r *NoEmphasisAsHeadingRule) inferHeadingLevel(doc *mdcontext.Context, line int) int {
	const (
		defaultLevel = 2
		maxLevel     = 6
	)

	level := defaultLevel
	for _, h := range lint.Headings(doc) {
		if h.Line >= line {
			break
		}
		if h.Facet.Valid {
			level = h.Facet.Level + 1
		}
	}

	if level > maxLevel {
		level = maxLevel
	}
	return level
}

// NoSpaceInEmphasisRule checks for spaces inside emphasis markers.
type NoSpaceInEmphasisRule struct {
	lint.BaseRule
}

// NewNoSpaceInEmphasisRule creates a new no-space-in-emphasis rule.
func NewNoSpaceInEmphasisRule() *NoSpaceInEmphasisRule {
	return &NoSpaceInEmphasisRule{
		BaseRule: lint.NewBaseRule(
			"MD037",
			"no-space-in-emphasis",
			"Spaces inside emphasis markers",
			[]string{"emphasis", "whitespace"},
			true,
		),
	}
}

// emphasisSpacePattern matches emphasis with spaces inside. Spaces
// after the opening marker stop the run from parsing as emphasis at
// all, which is why these never show up as emphasis spans.
var emphasisSpacePattern = regexp.MustCompile(`(\*{1,2}|_{1,2})\s+([^*_]+)\s+(\*{1,2}|_{1,2})`)

// Apply checks for spaces inside emphasis markers.
func (r *NoSpaceInEmphasisRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}
	if !ctx.Doc.LikelyHasEmphasis() {
		return nil, nil
	}

	var diags []lint.Diagnostic

	for i, rec := range ctx.Doc.FilteredLines(mdcontext.FilterDefault | mdcontext.FilterBlank) {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		// Bullet markers and thematic breaks are literal asterisks.
		if rec.HorizontalRule {
			continue
		}
		scanFrom := 0
		if rec.ListItem != nil {
			scanFrom = rec.ListItem.ContentCol - 1
		}

		text := lint.LineContent(ctx.Doc, i)
		if scanFrom >= len(text) {
			continue
		}

		matches := emphasisSpacePattern.FindAllSubmatchIndex(text[scanFrom:], -1)
		for _, match := range matches {
			if len(match) < emphasisSpaceMatchGroups {
				continue
			}

			start, end := scanFrom+match[0], scanFrom+match[1]
			openMarker := string(text[scanFrom+match[2] : scanFrom+match[3]])
			content := string(text[scanFrom+match[4] : scanFrom+match[5]])
			closeMarker := string(text[scanFrom+match[6] : scanFrom+match[7]])

			// Markers should match.
			if openMarker != closeMarker {
				continue
			}

			if ctx.Doc.IsInCodeSpan(rec.Start+start) || ctx.Doc.IsInHTMLComment(rec.Start+start) ||
				ctx.Doc.IsInMathSpan(rec.Start+start) {
				continue
			}

			builder := fix.NewEditBuilder()
			fixedEmphasis := openMarker + strings.TrimSpace(content) + closeMarker
			builder.ReplaceRange(rec.Start+start, rec.Start+end, fixedEmphasis)

			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
				lint.LineSpan(i+1, start+1, end+1),
				"Spaces inside emphasis markers").
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Remove spaces from inside emphasis markers").
				WithFix(builder).
				Build()
			diags = append(diags, diag)
		}
	}

	return diags, nil
}

// EmphasisStyleRule checks for consistent emphasis style.
type EmphasisStyleRule struct {
	lint.BaseRule
}

// NewEmphasisStyleRule creates a new emphasis-style rule.
func NewEmphasisStyleRule() *EmphasisStyleRule {
	return &EmphasisStyleRule{
		BaseRule: lint.NewBaseRule(
			"MD049",
			"emphasis-style",
			"Emphasis style should be consistent",
			[]string{"emphasis"},
			true,
		),
	}
}

func emphasisMarkerStyle(marker byte) string {
	if marker == '_' {
		return "underscore"
	}
	return "asterisk"
}

func styleMarker(style string) byte {
	if style == "underscore" {
		return '_'
	}
	return '*'
}

// Apply checks for consistent emphasis style.
func (r *EmphasisStyleRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	configStyle := ctx.OptionString("style", "consistent")

	var diags []lint.Diagnostic
	var expectedStyle string

	if configStyle != "consistent" {
		expectedStyle = configStyle
	}

	for _, span := range ctx.Doc.EmphasisSpans() {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		// Strong emphasis is MD050's concern.
		if span.Level != 1 {
			continue
		}

		style := emphasisMarkerStyle(span.Marker)

		// Set expected style from first emphasis.
		if expectedStyle == "" {
			expectedStyle = style
			continue
		}

		if style != expectedStyle {
			marker := string(styleMarker(expectedStyle))
			builder := fix.NewEditBuilder()
			builder.ReplaceRange(span.ByteStart, span.ByteStart+1, marker)
			builder.ReplaceRange(span.ByteEnd-1, span.ByteEnd, marker)

			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
				lint.SpanForByteRange(ctx.Doc, span.ByteStart, span.ByteEnd),
				fmt.Sprintf("Emphasis style %q does not match expected %q", style, expectedStyle)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion(fmt.Sprintf("Use %q for all emphasis", expectedStyle)).
				WithFix(builder).
				Build()
			diags = append(diags, diag)
		}
	}

	return diags, nil
}

// StrongStyleRule checks for consistent strong (bold) style.
type StrongStyleRule struct {
	lint.BaseRule
}

// NewStrongStyleRule creates a new strong-style rule.
func NewStrongStyleRule() *StrongStyleRule {
	return &StrongStyleRule{
		BaseRule: lint.NewBaseRule(
			"MD050",
			"strong-style",
			"Strong style should be consistent",
			[]string{"emphasis"},
			true,
		),
	}
}

// Apply checks for consistent strong style.
func (r *StrongStyleRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	configStyle := ctx.OptionString("style", "consistent")

	var diags []lint.Diagnostic
	var expectedStyle string

	if configStyle != "consistent" {
		expectedStyle = configStyle
	}

	for _, span := range ctx.Doc.EmphasisSpans() {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		if span.Level != 2 {
			continue
		}

		style := emphasisMarkerStyle(span.Marker)

		// Set expected style from first strong.
		if expectedStyle == "" {
			expectedStyle = style
			continue
		}

		if style != expectedStyle {
			marker := strings.Repeat(string(styleMarker(expectedStyle)), 2)
			builder := fix.NewEditBuilder()
			builder.ReplaceRange(span.ByteStart, span.ByteStart+2, marker)
			builder.ReplaceRange(span.ByteEnd-2, span.ByteEnd, marker)

			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
				lint.SpanForByteRange(ctx.Doc, span.ByteStart, span.ByteEnd),
				fmt.Sprintf("Strong style %q does not match expected %q", style, expectedStyle)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion(fmt.Sprintf("Use %q for all strong emphasis", expectedStyle)).
				WithFix(builder).
				Build()
			diags = append(diags, diag)
		}
	}

	return diags, nil
}
