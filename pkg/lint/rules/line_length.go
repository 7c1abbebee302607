package rules

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/lint"
	"github.com/yaklabco/marklint/pkg/mdcontext"
)

// MaxLineLengthRule checks that lines do not exceed a maximum length.
type MaxLineLengthRule struct {
	lint.BaseRule
}

// NewMaxLineLengthRule creates a new max line length rule.
func NewMaxLineLengthRule() *MaxLineLengthRule {
	return &MaxLineLengthRule{
		BaseRule: lint.NewBaseRule(
			"MD013",
			"line-length",
			"Line length should not exceed the configured maximum",
			[]string{"line_length"},
			true, // Auto-fixable via line wrapping.
		),
	}
}

// defaultMaxLineLength is the default maximum line length.
const defaultMaxLineLength = 120

// Apply checks that no line exceeds the maximum length. Length is
// counted in runes so multibyte text is not penalized.
func (r *MaxLineLengthRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil || ctx.Doc.LineCount() == 0 {
		return nil, nil
	}

	maxLength := ctx.OptionInt("max", defaultMaxLineLength)
	ignoreCodeBlocks := ctx.OptionBool("ignore_code_blocks", true)
	ignoreURLs := ctx.OptionBool("ignore_urls", true)

	var diags []lint.Diagnostic
	lines := ctx.Doc.Lines()

	for i := range lines {
		if ctx.Cancelled() {
			return diags, ctx.Ctx.Err()
		}
		rec := &lines[i]

		// Byte length bounds rune length, so short lines cost nothing.
		if rec.Len() <= maxLength {
			continue
		}
		if ignoreCodeBlocks && rec.InCode() {
			continue
		}

		content := lint.LineContent(ctx.Doc, i)
		length := utf8.RuneCount(content)
		if length <= maxLength {
			continue
		}
		if ignoreURLs && lint.LineContainsURL(ctx.Doc, i) {
			continue
		}

		diagBuilder := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
			lint.LineSpan(i+1, maxLength+1, length+1),
			fmt.Sprintf("Line length %d exceeds maximum %d", length, maxLength)).
			WithSeverity(config.SeverityWarning).
			WithSuggestion(fmt.Sprintf("Shorten the line to at most %d characters", maxLength))

		if fixer := r.buildWrapFix(ctx.Doc, i, maxLength); fixer != nil {
			diagBuilder = diagBuilder.WithFix(fixer)
		}

		diags = append(diags, diagBuilder.Build())
	}

	return diags, nil
}

// buildWrapFix creates a fix to wrap a long line at a word boundary.
// Headings and table rows never wrap.
func (r *MaxLineLengthRule) buildWrapFix(doc *mdcontext.Context, line int, maxLen int) *fix.EditBuilder {
	rec := doc.Line(line)
	if rec == nil || rec.Heading != nil {
		return nil
	}
	content := string(lint.LineContent(doc, line))
	if isTableLine(content) {
		return nil
	}

	prefix, contentStart := linePrefix(content)

	wrapPoint := findWrapPoint(content, maxLen)
	if wrapPoint <= contentStart {
		return nil // No suitable break point.
	}

	firstPart := content[:wrapPoint]
	secondPart := strings.TrimLeft(content[wrapPoint:], " ")
	newContent := firstPart + "\n" + prefix + secondPart

	builder := fix.NewEditBuilder()
	builder.ReplaceRange(rec.Start, rec.TextEnd, newContent)
	return builder
}

// linePrefix extracts the prefix for continuation lines.
// Returns the prefix string and the start position of actual content.
func linePrefix(line string) (string, int) {
	pos := 0
	lineLen := len(line)
	var prefixBuilder strings.Builder

	// Skip leading whitespace.
	for pos < lineLen && (line[pos] == ' ' || line[pos] == '\t') {
		prefixBuilder.WriteByte(line[pos])
		pos++
	}
	leadingSpace := prefixBuilder.String()
	prefixBuilder.Reset()
	prefixBuilder.WriteString(leadingSpace)

	// Blockquote prefix carries over to continuation lines.
	if pos < lineLen && line[pos] == '>' {
		prefixBuilder.WriteByte('>')
		pos++
		if pos < lineLen && line[pos] == ' ' {
			prefixBuilder.WriteByte(' ')
			pos++
		}
		nestedPrefix, nestedStart := linePrefix(line[pos:])
		prefixBuilder.WriteString(nestedPrefix)
		return prefixBuilder.String(), pos + nestedStart
	}

	// Bullet list markers: continuation lines align under the content.
	listStart := pos
	if pos < lineLen && (line[pos] == '-' || line[pos] == '*' || line[pos] == '+') {
		pos++
		if pos < lineLen && line[pos] == ' ' {
			markerLen := pos - listStart + 1
			prefixBuilder.WriteString(strings.Repeat(" ", markerLen))
			pos++
			return prefixBuilder.String(), pos
		}
		pos = listStart
	}

	// Ordered list markers.
	if pos < lineLen && line[pos] >= '0' && line[pos] <= '9' {
		for pos < lineLen && line[pos] >= '0' && line[pos] <= '9' {
			pos++
		}
		if pos < lineLen && (line[pos] == '.' || line[pos] == ')') {
			pos++
			if pos < lineLen && line[pos] == ' ' {
				markerLen := pos - listStart + 1
				prefixBuilder.WriteString(strings.Repeat(" ", markerLen))
				pos++
				return prefixBuilder.String(), pos
			}
		}
	}

	// Plain paragraph: keep the indent only.
	return leadingSpace, len(leadingSpace)
}

// findWrapPoint finds the byte offset of the last space at or before
// the maxLen-th rune. Returns -1 when the line has no such space.
func findWrapPoint(line string, maxLen int) int {
	lastSpace := -1
	runes := 0
	for i, r := range line {
		if runes > maxLen {
			break
		}
		if r == ' ' {
			lastSpace = i
		}
		runes++
	}
	return lastSpace
}

// isTableLine checks if a line is part of a pipe table.
func isTableLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) > 0 && trimmed[0] == '|'
}
