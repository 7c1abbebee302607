package rules

import (
	"regexp"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/lint"
	"github.com/yaklabco/marklint/pkg/mdcontext"
)

// NoBareURLsRule checks for bare URLs without angle brackets.
type NoBareURLsRule struct {
	lint.BaseRule
}

// NewNoBareURLsRule creates a new no-bare-urls rule.
func NewNoBareURLsRule() *NoBareURLsRule {
	return &NoBareURLsRule{
		BaseRule: lint.NewBaseRule(
			"MD034",
			"no-bare-urls",
			"Bare URL used",
			[]string{"links", "url"},
			true,
		),
	}
}

// bareURLPattern matches bare URLs and emails without consuming boundary characters.
// Boundary validation (angle brackets, parens, brackets) is done in code after matching.
var bareURLPattern = regexp.MustCompile(`https?://[^\s<>\[\]()]+|[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

var emailCheckPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Apply checks for bare URLs without angle brackets. URLs already
// inside link constructs, autolinks, code spans, or comments are
// recognized by byte-range containment rather than guesswork.
func (r *NoBareURLsRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	var diags []lint.Diagnostic

	for lineNum, rec := range ctx.Doc.FilteredLines(mdcontext.FilterDefault | mdcontext.FilterBlank) {
		if ctx.Cancelled() {
			return diags, ctx.Ctx.Err()
		}

		lineContent := lint.LineContent(ctx.Doc, lineNum)
		matches := bareURLPattern.FindAllIndex(lineContent, -1)

		for _, match := range matches {
			urlStart, urlEnd := match[0], match[1]
			url := string(lineContent[urlStart:urlEnd])
			offset := rec.Start + urlStart

			if r.covered(ctx.Doc, offset) {
				continue
			}

			// Boundary characters mean the URL already sits inside
			// some construct the harvest may not have captured.
			if urlStart > 0 {
				prev := lineContent[urlStart-1]
				if prev == '<' || prev == '(' || prev == '[' {
					continue
				}
			}
			if urlEnd < len(lineContent) {
				next := lineContent[urlEnd]
				if next == '>' || next == ')' || next == ']' {
					continue
				}
			}

			// Build fix: wrap in angle brackets.
			builder := fix.NewEditBuilder()
			builder.ReplaceRange(offset, rec.Start+urlEnd, "<"+url+">")

			var msg string
			if isEmail(url) {
				msg = "Bare email address used"
			} else {
				msg = "Bare URL used"
			}

			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
				lint.LineSpan(lineNum+1, urlStart+1, urlEnd+1), msg).
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Wrap the URL/email in angle brackets").
				WithFix(builder).
				Build()
			diags = append(diags, diag)
		}
	}

	return diags, nil
}

// covered reports whether the offset falls inside a construct that
// legitimately contains a URL.
func (r *NoBareURLsRule) covered(doc *mdcontext.Context, offset int) bool {
	if doc.IsInCodeSpan(offset) || doc.IsInHTMLComment(offset) {
		return true
	}
	for _, span := range doc.LinkSpans() {
		if span.Contains(offset) {
			return true
		}
		if span.Start > offset {
			break
		}
	}
	for _, al := range doc.Autolinks() {
		if offset >= al.ByteStart && offset < al.ByteEnd {
			return true
		}
		if al.ByteStart > offset {
			break
		}
	}
	return false
}

func isEmail(s string) bool {
	return emailCheckPattern.MatchString(s)
}
