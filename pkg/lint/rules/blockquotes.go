package rules

import (
	"fmt"
	"strings"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/lint"
)

// NoMultipleSpaceBlockquoteRule checks for multiple spaces after blockquote symbol.
type NoMultipleSpaceBlockquoteRule struct {
	lint.BaseRule
}

// NewNoMultipleSpaceBlockquoteRule creates a new no-multiple-space-blockquote rule.
func NewNoMultipleSpaceBlockquoteRule() *NoMultipleSpaceBlockquoteRule {
	return &NoMultipleSpaceBlockquoteRule{
		BaseRule: lint.NewBaseRule(
			"MD027",
			"no-multiple-space-blockquote",
			"Multiple spaces after blockquote symbol",
			[]string{"blockquote", "indentation", "whitespace"},
			true,
		),
	}
}

// Apply checks for multiple spaces after the blockquote symbol. The
// quote prefix consumes one space per marker; any whitespace left
// before the content means the source had more.
func (r *NoMultipleSpaceBlockquoteRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}
	if !ctx.Doc.LikelyHasBlockquotes() {
		return nil, nil
	}

	includeListItems := ctx.OptionBool("list_items", true)

	var diags []lint.Diagnostic
	lines := ctx.Doc.Lines()

	for i := range lines {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}
		rec := &lines[i]
		bq := rec.Blockquote
		if bq == nil {
			continue
		}
		if !includeListItems && rec.ListItem != nil {
			continue
		}

		text := string(lint.LineContent(ctx.Doc, i))

		lastMarker := strings.LastIndexByte(bq.Prefix, '>')
		if lastMarker < 0 {
			continue
		}
		spaceStart := lastMarker + 1

		contentStart := len(bq.Prefix)
		for contentStart < len(text) && (text[contentStart] == ' ' || text[contentStart] == '\t') {
			contentStart++
		}
		if contentStart >= len(text) {
			continue // Nothing but whitespace after the markers.
		}

		spaces := contentStart - spaceStart
		if spaces < 2 {
			continue
		}

		builder := fix.NewEditBuilder()
		builder.ReplaceRange(rec.Start+spaceStart, rec.Start+contentStart, " ")

		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
			lint.LineSpan(i+1, spaceStart+1, contentStart+1),
			fmt.Sprintf("Multiple spaces (%d) after blockquote symbol", spaces)).
			WithSeverity(config.SeverityWarning).
			WithSuggestion("Use a single space after the blockquote symbol").
			WithFix(builder).
			Build()
		diags = append(diags, diag)
	}

	return diags, nil
}

// NoBlanksBlockquoteRule checks for blank lines inside blockquotes.
type NoBlanksBlockquoteRule struct {
	lint.BaseRule
}

// NewNoBlanksBlockquoteRule creates a new no-blanks-blockquote rule.
func NewNoBlanksBlockquoteRule() *NoBlanksBlockquoteRule {
	return &NoBlanksBlockquoteRule{
		BaseRule: lint.NewBaseRule(
			"MD028",
			"no-blanks-blockquote",
			"Blank line inside blockquote",
			[]string{"blockquote", "whitespace"},
			false, // Not auto-fixable - requires human decision.
		),
	}
}

// Apply checks for blank lines separating blockquotes. Two quote
// runs divided only by blanks render as separate quotes, which is
// rarely what the author meant.
func (r *NoBlanksBlockquoteRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil || ctx.Doc.LineCount() < 3 {
		return nil, nil
	}
	if !ctx.Doc.LikelyHasBlockquotes() {
		return nil, nil
	}

	var diags []lint.Diagnostic
	lines := ctx.Doc.Lines()
	lastQuoteLine := -1

	for i := range lines {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}
		rec := &lines[i]

		switch {
		case rec.Blockquote != nil:
			if lastQuoteLine >= 0 && lastQuoteLine < i-1 {
				diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
					lint.SpanForLineRange(ctx.Doc, lastQuoteLine+1, i-1),
					"Blank line inside blockquote separates it into multiple blockquotes").
					WithSeverity(config.SeverityWarning).
					WithSuggestion("Add text between blockquotes or use '>' on blank lines").
					Build()
				diags = append(diags, diag)
			}
			lastQuoteLine = i
		case !rec.Blank:
			// Non-blank, non-blockquote line resets the tracking.
			lastQuoteLine = -1
		}
		// Blank lines keep the tracking alive so gaps are found.
	}

	return diags, nil
}
