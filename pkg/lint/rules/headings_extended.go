package rules

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/lint"
	"github.com/yaklabco/marklint/pkg/mdcontext"
)

// markerStartInLine finds the 0-based byte offset of the opening hash
// run within the line text. Blockquote prefixes contain no hashes, so
// the first occurrence is always the marker.
func markerStartInLine(text []byte, marker string) int {
	return bytes.Index(text, []byte(marker))
}

// NoMissingSpaceATXRule checks for missing space after hash on ATX headings.
type NoMissingSpaceATXRule struct {
	lint.BaseRule
}

// NewNoMissingSpaceATXRule creates a new no-missing-space-atx rule.
func NewNoMissingSpaceATXRule() *NoMissingSpaceATXRule {
	return &NoMissingSpaceATXRule{
		BaseRule: lint.NewBaseRule(
			"MD018",
			"no-missing-space-atx",
			"No space after hash on ATX style heading",
			[]string{"atx", "headings", "spaces"},
			true,
		),
	}
}

// Apply checks for missing space after hash on ATX headings. Hash runs
// glued to text are classified as heading facets with Valid false, so
// the rule only has to look at those; hash characters inside code
// blocks or comments never carry a facet at all.
func (r *NoMissingSpaceATXRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	var diags []lint.Diagnostic

	for _, h := range lint.Headings(ctx.Doc) {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}
		if h.Facet.Valid {
			continue
		}

		// For invalid facets the text begins immediately after the
		// hashes, so ContentCol doubles as the insertion column.
		rec := ctx.Doc.Line(h.Line)
		markerCol := h.Facet.ContentCol - len(h.Facet.Marker)

		builder := fix.NewEditBuilder()
		builder.Insert(rec.Start+h.Facet.ContentCol-1, " ")

		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
			lint.LineSpan(h.Line+1, markerCol, h.Facet.ContentCol+1),
			"No space after hash on ATX style heading").
			WithSeverity(config.SeverityWarning).
			WithSuggestion("Add a space after the hash characters").
			WithFix(builder).
			Build()
		diags = append(diags, diag)
	}

	return diags, nil
}

// NoMultipleSpaceATXRule checks for multiple spaces after hash on ATX headings.
type NoMultipleSpaceATXRule struct {
	lint.BaseRule
}

// NewNoMultipleSpaceATXRule creates a new no-multiple-space-atx rule.
func NewNoMultipleSpaceATXRule() *NoMultipleSpaceATXRule {
	return &NoMultipleSpaceATXRule{
		BaseRule: lint.NewBaseRule(
			"MD019",
			"no-multiple-space-atx",
			"Multiple spaces after hash on ATX style heading",
			[]string{"atx", "headings", "spaces"},
			true,
		),
	}
}

// Apply checks for multiple spaces between the hashes and the text of
// an open ATX heading. Closed ATX headings are MD021 territory.
func (r *NoMultipleSpaceATXRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	var diags []lint.Diagnostic

	for _, h := range lint.Headings(ctx.Doc) {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}
		f := h.Facet
		if !f.Valid || f.Style != mdcontext.HeadingATX || f.Text == "" {
			continue
		}

		text := lint.LineContent(ctx.Doc, h.Line)
		markerStart := markerStartInLine(text, f.Marker)
		if markerStart < 0 {
			continue
		}
		spaceStart := markerStart + len(f.Marker)
		spaceEnd := f.ContentCol - 1
		gap := spaceEnd - spaceStart
		if gap < 2 {
			continue
		}

		rec := ctx.Doc.Line(h.Line)
		builder := fix.NewEditBuilder()
		builder.ReplaceRange(rec.Start+spaceStart, rec.Start+spaceEnd, " ")

		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
			lint.LineSpan(h.Line+1, spaceStart+1, spaceEnd+1),
			fmt.Sprintf("Multiple spaces (%d) after hash on ATX style heading", gap)).
			WithSeverity(config.SeverityWarning).
			WithSuggestion("Use a single space after the hash characters").
			WithFix(builder).
			Build()
		diags = append(diags, diag)
	}

	return diags, nil
}

// NoMissingSpaceClosedATXRule checks for missing space inside hashes on closed ATX headings.
type NoMissingSpaceClosedATXRule struct {
	lint.BaseRule
}

// NewNoMissingSpaceClosedATXRule creates a new no-missing-space-closed-atx rule.
func NewNoMissingSpaceClosedATXRule() *NoMissingSpaceClosedATXRule {
	return &NoMissingSpaceClosedATXRule{
		BaseRule: lint.NewBaseRule(
			"MD020",
			"no-missing-space-closed-atx",
			"No space inside hashes on closed ATX style heading",
			[]string{"atx_closed", "headings", "spaces"},
			true,
		),
	}
}

// closedATXPattern matches closed ATX headings, with or without the
// interior spaces the style calls for.
var closedATXPattern = regexp.MustCompile(`^(#{1,6})(.+?)(#{1,6})[ \t]*$`)

// Apply checks for missing space inside hashes on closed ATX headings.
// Heading facets gate the scan so hash runs in code blocks stay quiet;
// the closing side is re-read from the source text because glued
// closing hashes are folded into the facet text.
func (r *NoMissingSpaceClosedATXRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	var diags []lint.Diagnostic

	for _, h := range lint.Headings(ctx.Doc) {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}
		if h.Facet.Style == mdcontext.HeadingSetextH1 || h.Facet.Style == mdcontext.HeadingSetextH2 {
			continue
		}

		text := lint.LineContent(ctx.Doc, h.Line)
		markerStart := markerStartInLine(text, h.Facet.Marker)
		if markerStart < 0 {
			continue
		}

		match := closedATXPattern.FindSubmatch(text[markerStart:])
		if match == nil {
			continue
		}

		openHashes := match[1]
		content := match[2]
		closeHashes := match[3]

		missingOpenSpace := len(content) > 0 && !isSpaceOrTab(content[0])
		missingCloseSpace := len(content) > 0 && !isSpaceOrTab(content[len(content)-1])
		if !missingOpenSpace && !missingCloseSpace {
			continue
		}

		rec := ctx.Doc.Line(h.Line)
		contentStart := rec.Start + markerStart + len(openHashes)
		contentEnd := contentStart + len(content)

		var newContent string
		switch {
		case missingOpenSpace && missingCloseSpace:
			newContent = " " + strings.TrimSpace(string(content)) + " "
		case missingOpenSpace:
			newContent = " " + string(content)
		default:
			newContent = string(content) + " "
		}

		builder := fix.NewEditBuilder()
		builder.ReplaceRange(contentStart, contentEnd, newContent)

		var msg string
		switch {
		case missingOpenSpace && missingCloseSpace:
			msg = "No space inside hashes on closed ATX style heading (both sides)"
		case missingOpenSpace:
			msg = "No space after opening hashes on closed ATX style heading"
		default:
			msg = "No space before closing hashes on closed ATX style heading"
		}

		endCol := markerStart + len(openHashes) + len(content) + len(closeHashes) + 1
		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
			lint.LineSpan(h.Line+1, markerStart+1, endCol), msg).
			WithSeverity(config.SeverityWarning).
			WithSuggestion("Add spaces inside the hash characters").
			WithFix(builder).
			Build()
		diags = append(diags, diag)
	}

	return diags, nil
}

// NoMultipleSpaceClosedATXRule checks for multiple spaces inside hashes on closed ATX headings.
type NoMultipleSpaceClosedATXRule struct {
	lint.BaseRule
}

// NewNoMultipleSpaceClosedATXRule creates a new no-multiple-space-closed-atx rule.
func NewNoMultipleSpaceClosedATXRule() *NoMultipleSpaceClosedATXRule {
	return &NoMultipleSpaceClosedATXRule{
		BaseRule: lint.NewBaseRule(
			"MD021",
			"no-multiple-space-closed-atx",
			"Multiple spaces inside hashes on closed ATX style heading",
			[]string{"atx_closed", "headings", "spaces"},
			true,
		),
	}
}

// Apply checks for multiple spaces inside hashes on closed ATX headings.
func (r *NoMultipleSpaceClosedATXRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	var diags []lint.Diagnostic

	for _, h := range lint.Headings(ctx.Doc) {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}
		if h.Facet.Style != mdcontext.HeadingATXClosed {
			continue
		}

		text := lint.LineContent(ctx.Doc, h.Line)
		markerStart := markerStartInLine(text, h.Facet.Marker)
		if markerStart < 0 {
			continue
		}

		match := closedATXPattern.FindSubmatch(text[markerStart:])
		if match == nil {
			continue
		}

		openHashes := match[1]
		content := match[2]
		closeHashes := match[3]

		multipleOpenSpaces := len(content) >= 2 &&
			isSpaceOrTab(content[0]) && isSpaceOrTab(content[1])
		multipleCloseSpaces := len(content) >= 2 &&
			isSpaceOrTab(content[len(content)-1]) && isSpaceOrTab(content[len(content)-2])
		if !multipleOpenSpaces && !multipleCloseSpaces {
			continue
		}

		rec := ctx.Doc.Line(h.Line)
		contentStart := rec.Start + markerStart + len(openHashes)
		contentEnd := contentStart + len(content)

		builder := fix.NewEditBuilder()
		builder.ReplaceRange(contentStart, contentEnd, " "+strings.TrimSpace(string(content))+" ")

		var msg string
		switch {
		case multipleOpenSpaces && multipleCloseSpaces:
			msg = "Multiple spaces inside hashes on closed ATX style heading (both sides)"
		case multipleOpenSpaces:
			msg = "Multiple spaces after opening hashes on closed ATX style heading"
		default:
			msg = "Multiple spaces before closing hashes on closed ATX style heading"
		}

		endCol := markerStart + len(openHashes) + len(content) + len(closeHashes) + 1
		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
			lint.LineSpan(h.Line+1, markerStart+1, endCol), msg).
			WithSeverity(config.SeverityWarning).
			WithSuggestion("Use a single space inside the hash characters").
			WithFix(builder).
			Build()
		diags = append(diags, diag)
	}

	return diags, nil
}

func isSpaceOrTab(b byte) bool { return b == ' ' || b == '\t' }

// HeadingStartLeftRule checks that headings start at the beginning of the line.
type HeadingStartLeftRule struct {
	lint.BaseRule
}

// NewHeadingStartLeftRule creates a new heading-start-left rule.
func NewHeadingStartLeftRule() *HeadingStartLeftRule {
	return &HeadingStartLeftRule{
		BaseRule: lint.NewBaseRule(
			"MD023",
			"heading-start-left",
			"Headings must start at the beginning of the line",
			[]string{"headings", "spaces"},
			true,
		),
	}
}

// Apply checks that headings start at the beginning of the line. Four
// or more spaces of indent make an indented code block, which never
// carries a heading facet, so only one-to-three space indents reach
// this rule. Setext fixes trim the underline indent as well.
func (r *HeadingStartLeftRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	var diags []lint.Diagnostic

	for _, h := range lint.Headings(ctx.Doc) {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		rec := ctx.Doc.Line(h.Line)
		if rec.Blockquote != nil {
			continue
		}
		text := lint.LineContent(ctx.Doc, h.Line)
		indent := 0
		for indent < len(text) && isSpaceOrTab(text[indent]) {
			indent++
		}
		if indent == 0 {
			continue
		}

		builder := fix.NewEditBuilder()
		builder.Delete(rec.Start, rec.Start+indent)
		if under := lint.SetextUnderlineLine(ctx.Doc, h); under >= 0 {
			utext := lint.LineContent(ctx.Doc, under)
			uindent := 0
			for uindent < len(utext) && utext[uindent] == ' ' {
				uindent++
			}
			if uindent > 0 {
				urec := ctx.Doc.Line(under)
				builder.Delete(urec.Start, urec.Start+uindent)
			}
		}

		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
			lint.LineSpan(h.Line+1, 1, indent+1),
			fmt.Sprintf("Heading is indented by %d character(s)", indent)).
			WithSeverity(config.SeverityWarning).
			WithSuggestion("Remove leading whitespace from the heading").
			WithFix(builder).
			Build()
		diags = append(diags, diag)
	}

	return diags, nil
}

// NoDuplicateHeadingRule checks for multiple headings with the same content.
type NoDuplicateHeadingRule struct {
	lint.BaseRule
}

// NewNoDuplicateHeadingRule creates a new no-duplicate-heading rule.
func NewNoDuplicateHeadingRule() *NoDuplicateHeadingRule {
	return &NoDuplicateHeadingRule{
		BaseRule: lint.NewBaseRule(
			"MD024",
			"no-duplicate-heading",
			"Multiple headings with the same content",
			[]string{"headings"},
			false, // Not auto-fixable.
		),
	}
}

// Apply checks for duplicate heading content.
func (r *NoDuplicateHeadingRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	siblingsOnly := ctx.OptionBool("siblings_only", false)

	var headings []lint.Heading
	for _, h := range lint.Headings(ctx.Doc) {
		if h.Facet.Valid && h.Facet.Text != "" {
			headings = append(headings, h)
		}
	}

	if siblingsOnly {
		return r.checkSiblings(ctx, headings), nil
	}
	return r.checkAll(ctx, headings), nil
}

func (r *NoDuplicateHeadingRule) checkAll(ctx *lint.RuleContext, headings []lint.Heading) []lint.Diagnostic {
	seen := make(map[string]int)
	var diags []lint.Diagnostic

	for _, h := range headings {
		if ctx.Cancelled() {
			break
		}

		text := h.Facet.Text
		if firstLine, ok := seen[text]; ok {
			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, lint.HeadingSpan(ctx.Doc, h),
				fmt.Sprintf("Duplicate heading text %q (first occurrence on line %d)", text, firstLine+1)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Use unique heading text").
				Build()
			diags = append(diags, diag)
		} else {
			seen[text] = h.Line
		}
	}

	return diags
}

func (r *NoDuplicateHeadingRule) checkSiblings(ctx *lint.RuleContext, headings []lint.Heading) []lint.Diagnostic {
	// For siblings_only mode, headings at the same level under the
	// same chain of ancestor headings are considered siblings; the
	// ancestor chain is encoded into the map key.
	type parentInfo struct {
		level int
		text  string
	}

	var diags []lint.Diagnostic
	var parentStack []parentInfo

	seen := make(map[string]map[string]int)

	for _, h := range headings {
		if ctx.Cancelled() {
			break
		}

		level := h.Facet.Level
		text := h.Facet.Text

		for len(parentStack) > 0 && parentStack[len(parentStack)-1].level >= level {
			parentStack = parentStack[:len(parentStack)-1]
		}

		var parentKey strings.Builder
		for _, p := range parentStack {
			fmt.Fprintf(&parentKey, "%d:%s/", p.level, p.text)
		}
		contextKey := fmt.Sprintf("%d@%s", level, parentKey.String())

		if seen[contextKey] == nil {
			seen[contextKey] = make(map[string]int)
		}

		if firstLine, ok := seen[contextKey][text]; ok {
			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, lint.HeadingSpan(ctx.Doc, h),
				fmt.Sprintf("Duplicate sibling heading text %q (first occurrence on line %d)", text, firstLine+1)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Use unique heading text among siblings").
				Build()
			diags = append(diags, diag)
		} else {
			seen[contextKey][text] = h.Line
		}

		parentStack = append(parentStack, parentInfo{level: level, text: text})
	}

	return diags
}

// NoTrailingPunctuationRule checks for trailing punctuation in headings.
type NoTrailingPunctuationRule struct {
	lint.BaseRule
}

// NewNoTrailingPunctuationRule creates a new no-trailing-punctuation rule.
func NewNoTrailingPunctuationRule() *NoTrailingPunctuationRule {
	return &NoTrailingPunctuationRule{
		BaseRule: lint.NewBaseRule(
			"MD026",
			"no-trailing-punctuation",
			"Trailing punctuation in heading",
			[]string{"headings"},
			true,
		),
	}
}

// defaultPunctuation is the default set of trailing punctuation characters.
const defaultPunctuation = ".,;:!"

// htmlEntityPattern matches HTML entity references at the end of text.
var htmlEntityPattern = regexp.MustCompile(`&[a-zA-Z]+;$|&#[0-9]+;$|&#x[0-9a-fA-F]+;$`)

// Apply checks for trailing punctuation in headings. The facet text
// already excludes closing hashes and surrounding whitespace, so the
// punctuation byte is located by offsetting from ContentCol.
func (r *NoTrailingPunctuationRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	punctuation := ctx.OptionString("punctuation", defaultPunctuation)
	if punctuation == "" {
		return nil, nil // Empty string disables the rule.
	}

	var diags []lint.Diagnostic

	for _, h := range lint.Headings(ctx.Doc) {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}
		f := h.Facet
		if !f.Valid || f.Text == "" {
			continue
		}

		if htmlEntityPattern.MatchString(f.Text) {
			continue
		}

		lastRune, _ := utf8.DecodeLastRuneInString(f.Text)
		if lastRune == utf8.RuneError {
			continue
		}
		if !strings.ContainsRune(punctuation, lastRune) {
			continue
		}

		rec := ctx.Doc.Line(h.Line)
		runeLen := utf8.RuneLen(lastRune)
		punctOffset := rec.Start + f.ContentCol - 1 + len(f.Text) - runeLen
		punctCol := f.ContentCol + len(f.Text) - runeLen

		builder := fix.NewEditBuilder()
		builder.Delete(punctOffset, punctOffset+runeLen)

		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
			lint.LineSpan(h.Line+1, punctCol, punctCol+1),
			fmt.Sprintf("Heading ends with trailing punctuation %q", string(lastRune))).
			WithSeverity(config.SeverityWarning).
			WithSuggestion("Remove trailing punctuation from the heading").
			WithFix(builder).
			Build()
		diags = append(diags, diag)
	}

	return diags, nil
}
