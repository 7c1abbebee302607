package rules

import (
	"fmt"
	"strings"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/lint"
	"github.com/yaklabco/marklint/pkg/mdcontext"
)

// HeadingIncrementRule checks that heading levels increment by one.
type HeadingIncrementRule struct {
	lint.BaseRule
}

// NewHeadingIncrementRule creates a new heading increment rule.
func NewHeadingIncrementRule() *HeadingIncrementRule {
	return &HeadingIncrementRule{
		BaseRule: lint.NewBaseRule(
			"MD001",
			"heading-increment",
			"Heading levels should only increment by one level at a time",
			[]string{"headings"},
			false,
		),
	}
}

// Apply checks that heading levels increment by at most one. Invalid
// headings (missing the space after the hashes) do not participate.
func (r *HeadingIncrementRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	var diags []lint.Diagnostic
	prevLevel := 0

	for _, h := range lint.Headings(ctx.Doc) {
		if ctx.Cancelled() {
			return diags, ctx.Ctx.Err()
		}
		if !h.Facet.Valid {
			continue
		}
		level := h.Facet.Level

		// First heading can be any level.
		if prevLevel > 0 && level > prevLevel+1 {
			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, lint.HeadingSpan(ctx.Doc, h),
				fmt.Sprintf("Heading level jumped from H%d to H%d", prevLevel, level)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion(fmt.Sprintf("Use H%d instead", prevLevel+1)).
				Build()
			diags = append(diags, diag)
		}
		prevLevel = level
	}

	return diags, nil
}

// SingleH1Rule checks that there is at most one H1 heading.
type SingleH1Rule struct {
	lint.BaseRule
}

// NewSingleH1Rule creates a new single H1 rule.
func NewSingleH1Rule() *SingleH1Rule {
	return &SingleH1Rule{
		BaseRule: lint.NewBaseRule(
			"MD025",
			"single-h1",
			"Multiple top-level headings in the same document",
			[]string{"headings"},
			false,
		),
	}
}

// Apply checks that there is at most one H1 heading.
func (r *SingleH1Rule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	allowNoH1 := ctx.OptionBool("allow_no_h1", true)

	var h1s []lint.Heading
	for _, h := range lint.Headings(ctx.Doc) {
		if ctx.Cancelled() {
			return nil, ctx.Ctx.Err()
		}
		if h.Facet.Valid && h.Facet.Level == 1 {
			h1s = append(h1s, h)
		}
	}

	var diags []lint.Diagnostic

	if !allowNoH1 && len(h1s) == 0 {
		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, lint.LineSpan(1, 1, 1),
			"Document should have an H1 heading").
			WithSeverity(config.SeverityWarning).
			WithSuggestion("Add an H1 heading at the beginning of the document").
			Build()
		diags = append(diags, diag)
	}

	for i := 1; i < len(h1s); i++ {
		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, lint.HeadingSpan(ctx.Doc, h1s[i]),
			fmt.Sprintf("Multiple H1 headings found (this is H1 #%d)", i+1)).
			WithSeverity(config.SeverityWarning).
			WithSuggestion("Use H2 or lower for subsequent headings").
			Build()
		diags = append(diags, diag)
	}

	return diags, nil
}

// HeadingStyleRule enforces consistent heading style.
type HeadingStyleRule struct {
	lint.BaseRule
}

// NewHeadingStyleRule creates a new heading style rule.
func NewHeadingStyleRule() *HeadingStyleRule {
	return &HeadingStyleRule{
		BaseRule: lint.NewBaseRule(
			"MD003",
			"heading-style",
			"Heading style should be consistent",
			[]string{"headings", "style"},
			true,
		),
	}
}

// HeadingStyle represents the style of a heading.
type HeadingStyle string

const (
	// StyleATX is the ATX style (# Heading).
	StyleATX HeadingStyle = "atx"
	// StyleATXClosed is the ATX style with closing hashes (# Heading #).
	StyleATXClosed HeadingStyle = "atx_closed"
	// StyleSetext is the setext style (underlined).
	StyleSetext HeadingStyle = "setext"
	// StyleConsistent means use whatever style is first encountered.
	StyleConsistent HeadingStyle = "consistent"
)

// facetStyle maps a heading facet to the rule's style vocabulary.
func facetStyle(f *mdcontext.HeadingFacet) HeadingStyle {
	switch f.Style {
	case mdcontext.HeadingATXClosed:
		return StyleATXClosed
	case mdcontext.HeadingSetextH1, mdcontext.HeadingSetextH2:
		return StyleSetext
	default:
		return StyleATX
	}
}

// Apply checks that all headings use a consistent style.
func (r *HeadingStyleRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	configStyle := HeadingStyle(ctx.OptionString("style", string(StyleATX)))
	requireClosingATX := ctx.OptionBool("require_closing_atx", false)

	expected := configStyle
	if configStyle == StyleConsistent {
		expected = "" // set from the first heading
	} else if requireClosingATX && configStyle == StyleATX {
		expected = StyleATXClosed
	}

	var diags []lint.Diagnostic
	for _, h := range lint.Headings(ctx.Doc) {
		if ctx.Cancelled() {
			return diags, ctx.Ctx.Err()
		}
		if !h.Facet.Valid {
			continue
		}
		detected := facetStyle(h.Facet)

		if expected == "" {
			expected = detected
			if requireClosingATX && expected == StyleATX {
				expected = StyleATXClosed
			}
			continue
		}
		if stylesMatch(detected, expected, requireClosingATX) {
			continue
		}

		msg := fmt.Sprintf("Heading style '%s' does not match expected style '%s'", detected, expected)
		builder := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, lint.HeadingSpan(ctx.Doc, h), msg).
			WithSeverity(config.SeverityWarning).
			WithSuggestion(fmt.Sprintf("Use %s style headings", expected))

		// Setext conversions change line counts; only ATX forms are fixed.
		if detected != StyleSetext && expected != StyleSetext {
			if fb := r.atxStyleFix(ctx.Doc, h, expected); fb != nil {
				builder = builder.WithFix(fb)
			}
		}
		diags = append(diags, builder.Build())
	}

	return diags, nil
}

// stylesMatch checks if two styles are compatible.
func stylesMatch(detected, expected HeadingStyle, requireClosingATX bool) bool {
	if detected == expected {
		return true
	}
	// Open and closed ATX count as one family unless closing hashes
	// are explicitly required.
	if !requireClosingATX {
		if (detected == StyleATX || detected == StyleATXClosed) &&
			(expected == StyleATX || expected == StyleATXClosed) {
			return true
		}
	}
	return false
}

// atxStyleFix rewrites an ATX heading line in the target style.
func (r *HeadingStyleRule) atxStyleFix(doc *mdcontext.Context, h lint.Heading, to HeadingStyle) *fix.EditBuilder {
	rec := doc.Line(h.Line)
	hashes := strings.Repeat("#", h.Facet.Level)

	var newLine string
	if to == StyleATXClosed {
		newLine = fmt.Sprintf("%s %s %s", hashes, h.Facet.Text, hashes)
	} else {
		newLine = fmt.Sprintf("%s %s", hashes, h.Facet.Text)
	}

	builder := fix.NewEditBuilder()
	builder.ReplaceRange(rec.Start, rec.TextEnd, newLine)
	return builder
}
