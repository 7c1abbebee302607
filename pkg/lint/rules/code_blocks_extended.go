package rules

import (
	"fmt"
	"strings"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/lint"
	"github.com/yaklabco/marklint/pkg/mdcontext"
)

// BlanksAroundFencesRule checks that fenced code blocks are surrounded by blank lines.
type BlanksAroundFencesRule struct {
	lint.BaseRule
}

// NewBlanksAroundFencesRule creates a new blanks-around-fences rule.
func NewBlanksAroundFencesRule() *BlanksAroundFencesRule {
	return &BlanksAroundFencesRule{
		BaseRule: lint.NewBaseRule(
			"MD031",
			"blanks-around-fences",
			"Fenced code blocks should be surrounded by blank lines",
			[]string{"blank_lines", "code"},
			true,
		),
	}
}

// Apply checks that fenced code blocks are surrounded by blank lines.
func (r *BlanksAroundFencesRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	includeListItems := ctx.OptionBool("list_items", true)

	var diags []lint.Diagnostic

	for _, cb := range ctx.Doc.CodeBlocks() {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		if !cb.Fenced {
			continue
		}

		if !includeListItems && r.inListItem(ctx.Doc, cb.StartLine) {
			continue
		}

		if !boundaryOK(ctx.Doc, cb.StartLine-1) {
			rec := ctx.Doc.Line(cb.StartLine)

			builder := fix.NewEditBuilder()
			builder.Insert(rec.Start, "\n")

			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
				lint.LineSpan(cb.StartLine+1, 1, 1),
				"Missing blank line before fenced code block").
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Add a blank line before the fenced code block").
				WithFix(builder).
				Build()
			diags = append(diags, diag)
		}

		// An unterminated block runs to EOF, so there is no "after".
		if !fenceCloses(ctx.Doc, cb) {
			continue
		}

		if !boundaryOK(ctx.Doc, cb.EndLine+1) {
			rec := ctx.Doc.Line(cb.EndLine)

			builder := fix.NewEditBuilder()
			builder.Insert(rec.End, "\n")

			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
				lint.LineSpan(cb.EndLine+1, 1, 1),
				"Missing blank line after fenced code block").
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Add a blank line after the fenced code block").
				WithFix(builder).
				Build()
			diags = append(diags, diag)
		}
	}

	return diags, nil
}

func (r *BlanksAroundFencesRule) inListItem(doc *mdcontext.Context, line int) bool {
	for _, block := range doc.ListBlocks() {
		if line >= block.StartLine && line <= block.EndLine {
			return true
		}
	}
	return false
}

// NoSpaceInCodeRule checks for spaces inside code span elements.
type NoSpaceInCodeRule struct {
	lint.BaseRule
}

// NewNoSpaceInCodeRule creates a new no-space-in-code rule.
func NewNoSpaceInCodeRule() *NoSpaceInCodeRule {
	return &NoSpaceInCodeRule{
		BaseRule: lint.NewBaseRule(
			"MD038",
			"no-space-in-code",
			"Spaces inside code span elements",
			[]string{"code", "whitespace"},
			true,
		),
	}
}

// Apply checks for spaces inside code span elements.
func (r *NoSpaceInCodeRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	var diags []lint.Diagnostic

	for _, span := range ctx.Doc.CodeSpans() {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		content := span.Content
		if content == "" {
			continue
		}

		// Only-spaces content is allowed.
		if strings.TrimSpace(content) == "" {
			continue
		}

		hasLeading := content[0] == ' '
		hasTrailing := content[len(content)-1] == ' '

		// Single space on each side is allowed when the content itself
		// contains backticks; that padding is how the delimiters stay
		// unambiguous.
		trimmed := strings.Trim(content, " ")
		if strings.Contains(trimmed, "`") {
			if len(content) >= 2 && hasLeading && hasTrailing {
				inner := content[1 : len(content)-1]
				if !strings.HasPrefix(inner, " ") && !strings.HasSuffix(inner, " ") {
					continue
				}
			}
		}

		leadingSpaces := len(content) - len(strings.TrimLeft(content, " "))
		trailingSpaces := len(content) - len(strings.TrimRight(content, " "))

		if leadingSpaces <= 1 && trailingSpaces <= 1 {
			// Single space padding is allowed.
			continue
		}

		if !hasLeading && !hasTrailing {
			continue
		}

		var msg string
		switch {
		case hasLeading && hasTrailing && (leadingSpaces > 1 || trailingSpaces > 1):
			msg = "Excessive spaces inside code span"
		case hasLeading && leadingSpaces > 1:
			msg = "Excessive leading space inside code span"
		case hasTrailing && trailingSpaces > 1:
			msg = "Excessive trailing space inside code span"
		default:
			continue
		}

		diagBuilder := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
			lint.SpanForByteRange(ctx.Doc, span.ByteStart, span.ByteEnd), msg).
			WithSeverity(config.SeverityWarning).
			WithSuggestion("Remove extra spaces from inside the code span")

		// Rebuilding the span joins lines, so only fix single-line spans.
		if span.Line == span.EndLine {
			backticks := strings.Repeat("`", span.Backticks)
			builder := fix.NewEditBuilder()
			builder.ReplaceRange(span.ByteStart, span.ByteEnd,
				backticks+strings.TrimSpace(content)+backticks)
			diagBuilder = diagBuilder.WithFix(builder)
		}

		diags = append(diags, diagBuilder.Build())
	}

	return diags, nil
}
