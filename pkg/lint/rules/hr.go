package rules

import (
	"bytes"
	"fmt"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/lint"
)

// styleConsistent is the configuration value for consistent style detection.
const styleConsistent = "consistent"

// HRStyleRule checks for consistent horizontal rule style.
type HRStyleRule struct {
	lint.BaseRule
}

// NewHRStyleRule creates a new hr-style rule.
func NewHRStyleRule() *HRStyleRule {
	return &HRStyleRule{
		BaseRule: lint.NewBaseRule(
			"MD035",
			"hr-style",
			"Horizontal rule style",
			[]string{"hr"},
			true,
		),
	}
}

// Apply checks for consistent horizontal rule style. Thematic break
// lines are flagged during classification; front matter delimiters
// never carry the flag, so `---` fences around metadata stay quiet.
func (r *HRStyleRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	configStyle := ctx.OptionString("style", styleConsistent)

	var expectedStyle string
	if configStyle != styleConsistent {
		expectedStyle = configStyle
	}

	var diags []lint.Diagnostic
	lines := ctx.Doc.Lines()

	for i := range lines {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}
		if !lines[i].HorizontalRule {
			continue
		}

		hrStyle := string(bytes.TrimSpace(lint.LineContent(ctx.Doc, i)))

		// Set expected style from first HR if consistent mode.
		if expectedStyle == "" {
			expectedStyle = hrStyle
			continue
		}
		if hrStyle == expectedStyle {
			continue
		}

		rec := ctx.Doc.Line(i)
		builder := fix.NewEditBuilder()
		builder.ReplaceRange(rec.Start, rec.TextEnd, expectedStyle)

		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, lint.SpanForLine(ctx.Doc, i),
			fmt.Sprintf("Horizontal rule style %q does not match expected %q", hrStyle, expectedStyle)).
			WithSeverity(config.SeverityWarning).
			WithSuggestion(fmt.Sprintf("Use %q for all horizontal rules", expectedStyle)).
			WithFix(builder).
			Build()
		diags = append(diags, diag)
	}

	return diags, nil
}
