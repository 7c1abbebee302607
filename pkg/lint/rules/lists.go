package rules

import (
	"fmt"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/lint"
	"github.com/yaklabco/marklint/pkg/mdcontext"
)

// BulletStyle represents the style of unordered list bullets.
type BulletStyle string

const (
	// BulletDash uses "-" as the bullet marker.
	BulletDash BulletStyle = "dash"
	// BulletPlus uses "+" as the bullet marker.
	BulletPlus BulletStyle = "plus"
	// BulletAsterisk uses "*" as the bullet marker.
	BulletAsterisk BulletStyle = "asterisk"
	// BulletConsistent uses whatever style is first encountered.
	BulletConsistent BulletStyle = "consistent"
)

// getBulletMarker returns the character representation for a bullet style.
func getBulletMarker(style BulletStyle) string {
	switch style {
	case BulletDash:
		return "-"
	case BulletPlus:
		return "+"
	case BulletAsterisk:
		return "*"
	default:
		return ""
	}
}

// getBulletStyle returns the bullet style for a marker character.
func getBulletStyle(marker string) (BulletStyle, bool) {
	switch marker {
	case "-":
		return BulletDash, true
	case "+":
		return BulletPlus, true
	case "*":
		return BulletAsterisk, true
	default:
		return "", false
	}
}

// UnorderedListStyleRule enforces consistent bullet markers in unordered lists.
type UnorderedListStyleRule struct {
	lint.BaseRule
}

// NewUnorderedListStyleRule creates a new unordered list style rule.
func NewUnorderedListStyleRule() *UnorderedListStyleRule {
	return &UnorderedListStyleRule{
		BaseRule: lint.NewBaseRule(
			"MD004",
			"unordered-list-style",
			"Unordered list style should be consistent",
			[]string{"lists", "style"},
			true,
		),
	}
}

// Apply checks that all unordered list items use consistent bullet
// markers. Nested items are held to the same marker as the rest of
// the document.
func (r *UnorderedListStyleRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}
	if !ctx.Doc.LikelyHasLists() {
		return nil, nil
	}

	configStyle := BulletStyle(ctx.OptionString("style", string(BulletDash)))
	effectiveMarker := getBulletMarker(configStyle)

	var diags []lint.Diagnostic

	for _, block := range ctx.Doc.ListBlocks() {
		if ctx.Cancelled() {
			return diags, ctx.Ctx.Err()
		}

		for _, line := range block.ItemLines {
			item := ctx.Doc.Line(line).ListItem
			if item == nil || item.Ordered {
				continue
			}

			// Set consistent style from the first bullet.
			if effectiveMarker == "" {
				if _, ok := getBulletStyle(item.Marker); ok {
					effectiveMarker = item.Marker
				}
				continue
			}
			if item.Marker == effectiveMarker {
				continue
			}

			diags = append(diags, r.bulletDiagnostic(ctx, line, item, effectiveMarker))
		}
	}

	return diags, nil
}

func (r *UnorderedListStyleRule) bulletDiagnostic(
	ctx *lint.RuleContext,
	line int,
	item *mdcontext.ListItemFacet,
	expected string,
) lint.Diagnostic {
	rec := ctx.Doc.Line(line)
	markerOffset := rec.Start + item.MarkerCol - 1

	builder := fix.NewEditBuilder()
	builder.ReplaceRange(markerOffset, markerOffset+1, expected)

	return lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
		lint.LineSpan(line+1, item.MarkerCol, item.MarkerCol+1),
		fmt.Sprintf("Unordered list bullet '%s' does not match expected '%s'", item.Marker, expected)).
		WithSeverity(config.SeverityWarning).
		WithSuggestion(fmt.Sprintf("Use '%s' as the bullet marker", expected)).
		WithFix(builder).
		Build()
}

// OrderedListIncrementRule enforces sequential numbering in ordered lists.
type OrderedListIncrementRule struct {
	lint.BaseRule
}

// NewOrderedListIncrementRule creates a new ordered list increment rule.
func NewOrderedListIncrementRule() *OrderedListIncrementRule {
	return &OrderedListIncrementRule{
		BaseRule: lint.NewBaseRule(
			"MD029",
			"ol-prefix",
			"Ordered list item prefix",
			[]string{"ol"},
			true,
		),
	}
}

// Apply checks that ordered lists have sequential numbering. Each
// nesting depth keeps its own sequence, tracked by marker column.
func (r *OrderedListIncrementRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}
	if !ctx.Doc.LikelyHasLists() {
		return nil, nil
	}

	allowRenumbering := ctx.OptionBool("allow_renumbering", true)

	var diags []lint.Diagnostic

	for _, block := range ctx.Doc.ListBlocks() {
		if ctx.Cancelled() {
			return diags, ctx.Ctx.Err()
		}
		if !block.Ordered {
			continue
		}
		diags = append(diags, r.checkBlock(ctx, block, allowRenumbering)...)
	}

	return diags, nil
}

// sequence tracks expected numbering at one nesting depth.
type sequence struct {
	markerCol int
	next      int
	delimiter byte
}

func (r *OrderedListIncrementRule) checkBlock(
	ctx *lint.RuleContext,
	block mdcontext.ListBlock,
	allowRenumbering bool,
) []lint.Diagnostic {
	var diags []lint.Diagnostic
	var stack []sequence

	for _, line := range block.ItemLines {
		item := ctx.Doc.Line(line).ListItem
		if item == nil || !item.Ordered {
			continue
		}

		// Returning to a shallower indent resumes its sequence.
		for len(stack) > 0 && stack[len(stack)-1].markerCol > item.MarkerCol {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 || stack[len(stack)-1].markerCol < item.MarkerCol {
			stack = append(stack, sequence{
				markerCol: item.MarkerCol,
				next:      item.Number,
				delimiter: item.Delimiter,
			})
		}
		seq := &stack[len(stack)-1]

		if item.Number != seq.next {
			diags = append(diags, r.numberDiagnostic(ctx, line, item, seq, allowRenumbering))
		}
		seq.next++
	}

	return diags
}

func (r *OrderedListIncrementRule) numberDiagnostic(
	ctx *lint.RuleContext,
	line int,
	item *mdcontext.ListItemFacet,
	seq *sequence,
	allowRenumbering bool,
) lint.Diagnostic {
	delim := seq.delimiter
	if delim == 0 {
		delim = '.'
	}

	diagBuilder := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
		lint.LineSpan(line+1, item.MarkerCol, item.MarkerCol+len(item.Marker)),
		fmt.Sprintf("Ordered list item numbered %d should be %d", item.Number, seq.next)).
		WithSeverity(config.SeverityWarning).
		WithSuggestion(fmt.Sprintf("Use %d%c instead", seq.next, delim))

	if allowRenumbering {
		rec := ctx.Doc.Line(line)
		markerOffset := rec.Start + item.MarkerCol - 1

		builder := fix.NewEditBuilder()
		builder.ReplaceRange(markerOffset, markerOffset+len(item.Marker),
			fmt.Sprintf("%d%c", seq.next, delim))
		diagBuilder = diagBuilder.WithFix(builder)
	}

	return diagBuilder.Build()
}
