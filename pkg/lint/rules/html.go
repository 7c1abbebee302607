package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/lint"
)

// InlineHTMLRule restricts the use of raw HTML in Markdown.
type InlineHTMLRule struct {
	lint.BaseRule
}

// NewInlineHTMLRule creates a new inline HTML rule.
func NewInlineHTMLRule() *InlineHTMLRule {
	return &InlineHTMLRule{
		BaseRule: lint.NewBaseRule(
			"MD033",
			"no-inline-html",
			"Inline HTML should be avoided or restricted to allowed elements",
			[]string{"html"},
			false, // Not auto-fixable.
		),
	}
}

// commonmarkAllowedHTMLElements returns the default allowed elements
// for the standard dialect. CommonMark is strict: none.
func commonmarkAllowedHTMLElements() []string {
	return nil
}

// extendedAllowedHTMLElements returns the default allowed elements for
// non-standard dialects, matching what documentation sites render.
func extendedAllowedHTMLElements() []string {
	return []string{"br", "sup", "sub", "details", "summary", "kbd", "abbr"}
}

// DefaultEnabled returns false - this rule is opt-in.
func (r *InlineHTMLRule) DefaultEnabled() bool {
	return false
}

// htmlTagPattern matches an opening or closing HTML tag and captures
// the element name. Autolinks like <https://x> and <user@host> fail
// the name boundary and never match.
var htmlTagPattern = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9-]*)(?:\s[^<>]*?)?/?>`)

// Apply checks for raw HTML usage. Lines inside HTML blocks are
// reported once per block; everything else is scanned for inline
// tags, with code spans and comments masked out.
func (r *InlineHTMLRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}
	if !ctx.Doc.LikelyHasHTML() {
		return nil, nil
	}

	allowedSet := make(map[string]bool)
	for _, el := range r.allowedElements(ctx) {
		allowedSet[strings.ToLower(el)] = true
	}

	var diags []lint.Diagnostic
	lines := ctx.Doc.Lines()
	inBlock := false

	for i := range lines {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}
		rec := &lines[i]

		if rec.InHTMLBlock {
			if !inBlock {
				inBlock = true
				if d := r.checkBlockStart(ctx, i, allowedSet); d != nil {
					diags = append(diags, *d)
				}
			}
			continue
		}
		inBlock = false

		if rec.Blank || rec.InCode() || rec.InFrontMatter || rec.InHTMLComment || rec.Ext != 0 {
			continue
		}
		diags = append(diags, r.checkInlineTags(ctx, i, allowedSet)...)
	}

	return diags, nil
}

// checkBlockStart reports the HTML block opening on the given line.
func (r *InlineHTMLRule) checkBlockStart(ctx *lint.RuleContext, line int, allowedSet map[string]bool) *lint.Diagnostic {
	content := lint.LineContent(ctx.Doc, line)
	match := htmlTagPattern.FindSubmatch(content)

	if match == nil {
		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, lint.SpanForLine(ctx.Doc, line),
			"HTML block is not allowed").
			WithSeverity(config.SeverityWarning).
			WithSuggestion("Remove or replace with Markdown syntax").
			Build()
		return &diag
	}

	tagName := strings.ToLower(string(match[1]))
	if allowedSet[tagName] {
		return nil
	}

	diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, lint.SpanForLine(ctx.Doc, line),
		fmt.Sprintf("HTML element '%s' is not allowed", tagName)).
		WithSeverity(config.SeverityWarning).
		WithSuggestion(r.suggestion(allowedSet)).
		Build()
	return &diag
}

// checkInlineTags reports disallowed inline tags on one line.
func (r *InlineHTMLRule) checkInlineTags(ctx *lint.RuleContext, line int, allowedSet map[string]bool) []lint.Diagnostic {
	content := lint.LineContent(ctx.Doc, line)
	matches := htmlTagPattern.FindAllSubmatchIndex(content, -1)
	if matches == nil {
		return nil
	}

	rec := ctx.Doc.Line(line)
	var diags []lint.Diagnostic

	for _, m := range matches {
		start := rec.Start + m[0]
		if ctx.Doc.IsInCodeSpan(start) || ctx.Doc.IsInHTMLComment(start) {
			continue
		}
		// Closing tags pair with an opening tag already reported.
		if content[m[0]+1] == '/' {
			continue
		}
		tagName := strings.ToLower(string(content[m[2]:m[3]]))
		if allowedSet[tagName] {
			continue
		}

		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
			lint.SpanForByteRange(ctx.Doc, start, rec.Start+m[1]),
			fmt.Sprintf("HTML element '%s' is not allowed", tagName)).
			WithSeverity(config.SeverityWarning).
			WithSuggestion(r.suggestion(allowedSet)).
			Build()
		diags = append(diags, diag)
	}

	return diags
}

func (r *InlineHTMLRule) allowedElements(ctx *lint.RuleContext) []string {
	if allowed := ctx.Option("allowed_elements", nil); allowed != nil {
		if list, ok := allowed.([]any); ok {
			result := make([]string, 0, len(list))
			for _, v := range list {
				if s, ok := v.(string); ok {
					result = append(result, s)
				}
			}
			return result
		}
	}

	if ctx.Doc.Dialect() != config.DialectStandard {
		return extendedAllowedHTMLElements()
	}
	return commonmarkAllowedHTMLElements()
}

func (r *InlineHTMLRule) suggestion(allowedSet map[string]bool) string {
	if len(allowedSet) == 0 {
		return "Remove HTML or use Markdown syntax"
	}
	allowed := make([]string, 0, len(allowedSet))
	for k := range allowedSet {
		allowed = append(allowed, k)
	}
	sort.Strings(allowed)
	return "Allowed elements: " + strings.Join(allowed, ", ")
}
