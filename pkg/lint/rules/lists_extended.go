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

// itemIndent returns the 0-based indent of a list item's marker,
// measured after any blockquote prefix.
func itemIndent(rec *mdcontext.LineRecord, item *mdcontext.ListItemFacet) int {
	indent := item.MarkerCol - 1
	if rec.Blockquote != nil {
		indent -= len(rec.Blockquote.Prefix)
	}
	return indent
}

// reindentFix rewrites a line with the leading whitespace replaced by
// the given number of spaces.
func reindentFix(doc *mdcontext.Context, line, indent int) *fix.EditBuilder {
	rec := doc.Line(line)
	content := lint.LineContent(doc, line)
	trimmed := bytes.TrimLeft(content, " \t")

	builder := fix.NewEditBuilder()
	builder.ReplaceRange(rec.Start, rec.TextEnd, strings.Repeat(" ", indent)+string(trimmed))
	return builder
}

// ListIndentRule checks for inconsistent indentation of list items at the same level.
type ListIndentRule struct {
	lint.BaseRule
}

// NewListIndentRule creates a new list-indent rule.
func NewListIndentRule() *ListIndentRule {
	return &ListIndentRule{
		BaseRule: lint.NewBaseRule(
			"MD005",
			"list-indent",
			"Inconsistent indentation for list items at the same level",
			[]string{"bullet", "indentation", "ul"},
			true,
		),
	}
}

// Apply checks for inconsistent list item indentation. An item opens
// a child level only when its marker sits at or past the enclosing
// item's content column; anything shallower must line up with an
// already open level.
func (r *ListIndentRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}
	if !ctx.Doc.LikelyHasLists() {
		return nil, nil
	}

	var diags []lint.Diagnostic

	for _, block := range ctx.Doc.ListBlocks() {
		if ctx.Cancelled() {
			return diags, ctx.Ctx.Err()
		}
		diags = append(diags, r.checkBlock(ctx, block)...)
	}

	return diags, nil
}

// levelRef tracks one open nesting level: the marker indent its items
// share and the content column of the most recent one.
type levelRef struct {
	indent  int
	content int
}

func (r *ListIndentRule) checkBlock(ctx *lint.RuleContext, block mdcontext.ListBlock) []lint.Diagnostic {
	var diags []lint.Diagnostic
	var levels []levelRef // open levels, outermost first

	for _, line := range block.ItemLines {
		rec := ctx.Doc.Line(line)
		item := rec.ListItem
		if item == nil {
			continue
		}
		indent := itemIndent(rec, item)
		width := item.ContentCol - item.MarkerCol
		content := indent + width

		// Outdenting closes levels; keep the innermost closed indent
		// in case this item lands between two known levels.
		closed := -1
		for len(levels) > 0 && indent < levels[len(levels)-1].indent {
			closed = levels[len(levels)-1].indent
			levels = levels[:len(levels)-1]
		}

		if len(levels) == 0 {
			levels = append(levels, levelRef{indent, content})
			continue
		}

		top := &levels[len(levels)-1]
		if indent == top.indent {
			top.content = content
			continue
		}
		if closed < 0 && indent >= top.content {
			levels = append(levels, levelRef{indent, content})
			continue
		}

		// A sibling that does not line up. Items shallower than the
		// enclosing content column belong to the top level; items at
		// or past it belong to the level just closed.
		expected := top.indent
		if indent >= top.content {
			expected = closed
		}

		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
			lint.LineSpan(line+1, 1, item.MarkerCol),
			fmt.Sprintf("List item indentation %d does not match expected %d", indent, expected)).
			WithSeverity(config.SeverityWarning).
			WithSuggestion(fmt.Sprintf("Indent list item by %d spaces", expected)).
			WithFix(reindentFix(ctx.Doc, line, expected)).
			Build()
		diags = append(diags, diag)

		// Track the item as if it sat at the expected indent so later
		// siblings are judged against the same reference.
		if expected == top.indent {
			top.content = content
		} else {
			levels = append(levels, levelRef{expected, expected + width})
		}
	}

	return diags
}

// ULIndentRule checks unordered list indentation.
type ULIndentRule struct {
	lint.BaseRule
}

// NewULIndentRule creates a new ul-indent rule.
func NewULIndentRule() *ULIndentRule {
	return &ULIndentRule{
		BaseRule: lint.NewBaseRule(
			"MD007",
			"ul-indent",
			"Unordered list indentation",
			[]string{"bullet", "indentation", "ul"},
			true,
		),
	}
}

// Apply checks unordered list indentation against a fixed step per
// nesting depth. Dialects with strict list indentation (MkDocs)
// default to four spaces; everything else defaults to two.
func (r *ULIndentRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}
	if !ctx.Doc.LikelyHasLists() {
		return nil, nil
	}

	defaultIndent := 2
	if ctx.Doc.Dialect().StrictListIndent() {
		defaultIndent = 4
	}
	indent := ctx.OptionInt("indent", defaultIndent)
	startIndented := ctx.OptionBool("start_indented", false)
	startIndent := ctx.OptionInt("start_indent", indent)

	var diags []lint.Diagnostic

	for _, block := range ctx.Doc.ListBlocks() {
		if ctx.Cancelled() {
			return diags, ctx.Ctx.Err()
		}
		diags = append(diags, r.checkBlock(ctx, block, indent, startIndented, startIndent)...)
	}

	return diags, nil
}

func (r *ULIndentRule) checkBlock(
	ctx *lint.RuleContext,
	block mdcontext.ListBlock,
	indent int,
	startIndented bool,
	startIndent int,
) []lint.Diagnostic {
	var diags []lint.Diagnostic
	var stack []int // marker indents, one per depth

	for _, line := range block.ItemLines {
		rec := ctx.Doc.Line(line)
		item := rec.ListItem
		if item == nil {
			continue
		}
		actual := itemIndent(rec, item)

		// Depth is how many enclosing levels sit above this item.
		for len(stack) > 0 && stack[len(stack)-1] >= actual {
			stack = stack[:len(stack)-1]
		}
		depth := len(stack)
		stack = append(stack, actual)

		// Ordered ancestors count toward depth, but only unordered
		// markers are held to the step.
		if item.Ordered {
			continue
		}

		expected := depth * indent
		if startIndented {
			expected = startIndent + depth*indent
		}
		if actual == expected {
			continue
		}

		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
			lint.LineSpan(line+1, 1, item.MarkerCol),
			fmt.Sprintf("Unordered list indentation %d does not match expected %d", actual, expected)).
			WithSeverity(config.SeverityWarning).
			WithSuggestion(fmt.Sprintf("Indent list item by %d spaces", expected)).
			WithFix(reindentFix(ctx.Doc, line, expected)).
			Build()
		diags = append(diags, diag)
	}

	return diags
}

// ListMarkerSpaceRule checks for correct spaces after list markers.
type ListMarkerSpaceRule struct {
	lint.BaseRule
}

// NewListMarkerSpaceRule creates a new list-marker-space rule.
func NewListMarkerSpaceRule() *ListMarkerSpaceRule {
	return &ListMarkerSpaceRule{
		BaseRule: lint.NewBaseRule(
			"MD030",
			"list-marker-space",
			"Spaces after list markers",
			[]string{"ol", "ul", "whitespace"},
			true,
		),
	}
}

// Apply checks for correct spaces after list markers. Loose lists
// (blank lines between items) use the multi-paragraph options.
func (r *ListMarkerSpaceRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}
	if !ctx.Doc.LikelyHasLists() {
		return nil, nil
	}

	ulSingle := ctx.OptionInt("ul_single", 1)
	ulMulti := ctx.OptionInt("ul_multi", 1)
	olSingle := ctx.OptionInt("ol_single", 1)
	olMulti := ctx.OptionInt("ol_multi", 1)

	var diags []lint.Diagnostic

	for _, block := range ctx.Doc.ListBlocks() {
		if ctx.Cancelled() {
			return diags, ctx.Ctx.Err()
		}

		for _, line := range block.ItemLines {
			rec := ctx.Doc.Line(line)
			item := rec.ListItem
			if item == nil {
				continue
			}

			markerEnd := item.MarkerCol - 1 + len(item.Marker)
			if rec.Start+markerEnd >= rec.TextEnd {
				continue // Empty item, nothing after the marker.
			}

			var expected int
			switch {
			case item.Ordered && block.Loose:
				expected = olMulti
			case item.Ordered:
				expected = olSingle
			case block.Loose:
				expected = ulMulti
			default:
				expected = ulSingle
			}

			actual := item.ContentCol - 1 - markerEnd
			if actual == expected {
				continue
			}

			builder := fix.NewEditBuilder()
			builder.ReplaceRange(rec.Start+markerEnd, rec.Start+item.ContentCol-1,
				strings.Repeat(" ", expected))

			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
				lint.LineSpan(line+1, markerEnd+1, markerEnd+actual+1),
				fmt.Sprintf("List marker space %d does not match expected %d", actual, expected)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion(fmt.Sprintf("Use %d space(s) after the list marker", expected)).
				WithFix(builder).
				Build()
			diags = append(diags, diag)
		}
	}

	return diags, nil
}

// BlanksAroundListsRule checks that lists are surrounded by blank lines.
type BlanksAroundListsRule struct {
	lint.BaseRule
}

// NewBlanksAroundListsRule creates a new blanks-around-lists rule.
func NewBlanksAroundListsRule() *BlanksAroundListsRule {
	return &BlanksAroundListsRule{
		BaseRule: lint.NewBaseRule(
			"MD032",
			"blanks-around-lists",
			"Lists should be surrounded by blank lines",
			[]string{"blank_lines", "bullet", "ol", "ul"},
			true,
		),
	}
}

// boundaryOK reports whether a neighboring line is an acceptable list
// boundary without a blank: document edges, front matter, and comment
// lines all qualify.
func boundaryOK(doc *mdcontext.Context, line int) bool {
	if line < 0 || line >= doc.LineCount() {
		return true
	}
	rec := doc.Line(line)
	return rec.Blank || rec.InFrontMatter || rec.InHTMLComment
}

// Apply checks that lists are surrounded by blank lines.
func (r *BlanksAroundListsRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}
	if !ctx.Doc.LikelyHasLists() {
		return nil, nil
	}

	var diags []lint.Diagnostic

	for _, block := range ctx.Doc.ListBlocks() {
		if ctx.Cancelled() {
			return diags, ctx.Ctx.Err()
		}

		if !boundaryOK(ctx.Doc, block.StartLine-1) {
			rec := ctx.Doc.Line(block.StartLine)

			builder := fix.NewEditBuilder()
			builder.Insert(rec.Start, "\n")

			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
				lint.LineSpan(block.StartLine+1, 1, 1),
				"Missing blank line before list").
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Add a blank line before the list").
				WithFix(builder).
				Build()
			diags = append(diags, diag)
		}

		if !boundaryOK(ctx.Doc, block.EndLine+1) {
			rec := ctx.Doc.Line(block.EndLine)

			builder := fix.NewEditBuilder()
			builder.Insert(rec.End, "\n")

			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
				lint.LineSpan(block.EndLine+1, 1, 1),
				"Missing blank line after list").
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Add a blank line after the list").
				WithFix(builder).
				Build()
			diags = append(diags, diag)
		}
	}

	return diags, nil
}
