package rules

import (
	"fmt"
	"strings"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/langdetect"
	"github.com/yaklabco/marklint/pkg/lint"
	"github.com/yaklabco/marklint/pkg/mdcontext"
)

// fenceCloses reports whether the block's last line is a real closing
// fence. Unterminated blocks run to EOF and their last line is content.
func fenceCloses(doc *mdcontext.Context, cb mdcontext.CodeBlockInfo) bool {
	if !cb.Fenced || cb.EndLine == cb.StartLine {
		return false
	}
	trimmed := strings.TrimSpace(string(lint.LineContent(doc, cb.EndLine)))
	if len(trimmed) < cb.FenceLen {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != cb.FenceChar {
			return false
		}
	}
	return true
}

// codeBlockContentRange returns the 0-based inclusive line range of a
// block's content, excluding fence lines.
func codeBlockContentRange(doc *mdcontext.Context, cb mdcontext.CodeBlockInfo) (int, int) {
	if !cb.Fenced {
		return cb.StartLine, cb.EndLine
	}
	first := cb.StartLine + 1
	last := cb.EndLine
	if fenceCloses(doc, cb) {
		last--
	}
	return first, last
}

// CodeBlockLanguageRule checks that fenced code blocks have a language specified.
type CodeBlockLanguageRule struct {
	lint.BaseRule
}

// NewCodeBlockLanguageRule creates a new code block language rule.
func NewCodeBlockLanguageRule() *CodeBlockLanguageRule {
	return &CodeBlockLanguageRule{
		BaseRule: lint.NewBaseRule(
			"MD040",
			"fenced-code-language",
			"Fenced code blocks should have a language specified",
			[]string{"code"},
			true, // Auto-fixable via language detection.
		),
	}
}

// Apply checks that fenced code blocks have an info string.
func (r *CodeBlockLanguageRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	allowedLanguages := ctx.Option("allowed_languages", nil)
	var allowedSet map[string]bool
	if langs, ok := allowedLanguages.([]any); ok && len(langs) > 0 {
		allowedSet = make(map[string]bool)
		for _, l := range langs {
			if s, ok := l.(string); ok {
				allowedSet[strings.ToLower(s)] = true
			}
		}
	}

	var diags []lint.Diagnostic

	for _, cb := range ctx.Doc.CodeBlocks() {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		// Indented code blocks cannot carry an info string.
		if !cb.Fenced {
			continue
		}

		// Extract just the language part (first word).
		fields := strings.Fields(cb.Info)
		langName := ""
		if len(fields) > 0 {
			langName = strings.ToLower(fields[0])
		}

		if langName == "" {
			diagBuilder := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
				lint.SpanForLine(ctx.Doc, cb.StartLine),
				"Fenced code block has no language specified").
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Add a language identifier after the opening fence")

			if fixer := r.buildLanguageFix(ctx.Doc, cb); fixer != nil {
				diagBuilder = diagBuilder.WithFix(fixer)
			}

			diags = append(diags, diagBuilder.Build())
			continue
		}

		// Check against allowed languages if configured.
		if allowedSet != nil && !allowedSet[langName] {
			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
				lint.SpanForLine(ctx.Doc, cb.StartLine),
				fmt.Sprintf("Language '%s' is not in the allowed list", langName)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Use one of the allowed language identifiers").
				Build()
			diags = append(diags, diag)
		}
	}

	return diags, nil
}

// buildLanguageFix detects the language and creates a fix to insert it.
func (r *CodeBlockLanguageRule) buildLanguageFix(
	doc *mdcontext.Context,
	cb mdcontext.CodeBlockInfo,
) *fix.EditBuilder {
	first, last := codeBlockContentRange(doc, cb)
	if first > last {
		return nil
	}

	lines := doc.Lines()
	content := doc.Content()[lines[first].Start:lines[last].End]

	detectedLang := langdetect.Detect(content)
	if detectedLang == "text" {
		return nil // Don't insert "text" as language.
	}

	// Insert right after the opening fence run.
	fenceEnd := lines[cb.StartLine].Start + cb.Indent + cb.FenceLen
	builder := fix.NewEditBuilder()
	builder.Insert(fenceEnd, detectedLang)
	return builder
}

// CodeBlockStyleRule enforces consistent code block style (fenced vs indented).
type CodeBlockStyleRule struct {
	lint.BaseRule
}

// NewCodeBlockStyleRule creates a new code block style rule.
func NewCodeBlockStyleRule() *CodeBlockStyleRule {
	return &CodeBlockStyleRule{
		BaseRule: lint.NewBaseRule(
			"MD046",
			"code-block-style",
			"Code block style should be consistent",
			[]string{"code", "style"},
			false, // Not auto-fixable (complex transformation).
		),
	}
}

// CodeBlockStyle represents the style of code blocks.
type CodeBlockStyle string

const (
	// CodeBlockFenced uses fenced code blocks (```).
	CodeBlockFenced CodeBlockStyle = "fenced"
	// CodeBlockIndented uses indented code blocks.
	CodeBlockIndented CodeBlockStyle = "indented"
	// CodeBlockConsistent uses whatever style is first encountered.
	CodeBlockConsistent CodeBlockStyle = "consistent"
)

// Apply checks that code blocks use a consistent style.
func (r *CodeBlockStyleRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	configStyle := CodeBlockStyle(ctx.OptionString("style", string(CodeBlockFenced)))
	effectiveStyle := configStyle
	if configStyle == CodeBlockConsistent {
		effectiveStyle = "" // Will be set from first code block.
	}

	var diags []lint.Diagnostic

	for _, cb := range ctx.Doc.CodeBlocks() {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		detectedStyle := CodeBlockIndented
		if cb.Fenced {
			detectedStyle = CodeBlockFenced
		}

		// Set consistent style from first code block.
		if effectiveStyle == "" {
			effectiveStyle = detectedStyle
			continue
		}

		if detectedStyle != effectiveStyle {
			msg := fmt.Sprintf("Code block style '%s' does not match expected '%s'",
				detectedStyle, effectiveStyle)

			diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
				lint.SpanForLine(ctx.Doc, cb.StartLine), msg).
				WithSeverity(config.SeverityWarning).
				WithSuggestion(fmt.Sprintf("Use %s code blocks", effectiveStyle)).
				Build()
			diags = append(diags, diag)
		}
	}

	return diags, nil
}

// CodeFenceStyleRule enforces consistent code fence style (backtick vs tilde).
type CodeFenceStyleRule struct {
	lint.BaseRule
}

// NewCodeFenceStyleRule creates a new code fence style rule.
func NewCodeFenceStyleRule() *CodeFenceStyleRule {
	return &CodeFenceStyleRule{
		BaseRule: lint.NewBaseRule(
			"MD048",
			"code-fence-style",
			"Code fence style should be consistent",
			[]string{"code", "style"},
			true, // Auto-fixable.
		),
	}
}

// FenceStyle represents the style of code fences.
type FenceStyle string

const (
	// FenceBacktick uses backticks (```).
	FenceBacktick FenceStyle = "backtick"
	// FenceTilde uses tildes (~~~).
	FenceTilde FenceStyle = "tilde"
	// FenceConsistent uses whatever style is first encountered.
	FenceConsistent FenceStyle = "consistent"
)

// Apply checks that fenced code blocks use a consistent fence style.
func (r *CodeFenceStyleRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	configStyle := FenceStyle(ctx.OptionString("style", string(FenceBacktick)))
	effectiveStyle := configStyle
	effectiveChar := byte('`')

	switch configStyle {
	case FenceConsistent:
		effectiveStyle = "" // Will be set from first fence.
		effectiveChar = 0
	case FenceTilde:
		effectiveChar = '~'
	case FenceBacktick:
		// Default values already set.
	}

	var diags []lint.Diagnostic

	for _, cb := range ctx.Doc.CodeBlocks() {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		if !cb.Fenced {
			continue
		}

		detectedStyle := FenceTilde
		if cb.FenceChar == '`' {
			detectedStyle = FenceBacktick
		}

		// Set consistent style from first fence.
		if effectiveStyle == "" {
			effectiveStyle = detectedStyle
			effectiveChar = cb.FenceChar
			continue
		}

		if cb.FenceChar != effectiveChar {
			msg := fmt.Sprintf("Code fence style '%s' does not match expected '%s'",
				detectedStyle, effectiveStyle)

			diagBuilder := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
				lint.SpanForLine(ctx.Doc, cb.StartLine), msg).
				WithSeverity(config.SeverityWarning).
				WithSuggestion(fmt.Sprintf("Use %s for code fences", effectiveStyle))

			if builder := r.buildFenceFix(ctx.Doc, cb, effectiveChar); builder != nil {
				diagBuilder = diagBuilder.WithFix(builder)
			}

			diags = append(diags, diagBuilder.Build())
		}
	}

	return diags, nil
}

func (r *CodeFenceStyleRule) buildFenceFix(
	doc *mdcontext.Context,
	cb mdcontext.CodeBlockInfo,
	expectedChar byte,
) *fix.EditBuilder {
	lines := doc.Lines()
	builder := fix.NewEditBuilder()

	// Opening fence position is known exactly.
	openStart := lines[cb.StartLine].Start + cb.Indent
	builder.ReplaceRange(openStart, openStart+cb.FenceLen,
		strings.Repeat(string(expectedChar), cb.FenceLen))

	// The closing fence may be longer than the opening one and carry
	// its own indent, so locate its run from the text.
	if fenceCloses(doc, cb) {
		text := lint.LineContent(doc, cb.EndLine)
		runStart := 0
		for runStart < len(text) && (text[runStart] == ' ' || text[runStart] == '\t') {
			runStart++
		}
		runEnd := runStart
		for runEnd < len(text) && text[runEnd] == cb.FenceChar {
			runEnd++
		}
		if runEnd > runStart {
			builder.ReplaceRange(
				lines[cb.EndLine].Start+runStart,
				lines[cb.EndLine].Start+runEnd,
				strings.Repeat(string(expectedChar), runEnd-runStart),
			)
		}
	}

	return builder
}

// CommandsShowOutputRule checks for unnecessary dollar signs in shell code blocks.
type CommandsShowOutputRule struct {
	lint.BaseRule
}

// NewCommandsShowOutputRule creates a new commands-show-output rule.
func NewCommandsShowOutputRule() *CommandsShowOutputRule {
	return &CommandsShowOutputRule{
		BaseRule: lint.NewBaseRule(
			"MD014",
			"commands-show-output",
			"Dollar signs used before commands without showing output",
			[]string{"code"},
			true, // Auto-fixable
		),
	}
}

// Apply checks for unnecessary dollar signs in code blocks.
func (r *CommandsShowOutputRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil {
		return nil, nil
	}

	var diags []lint.Diagnostic

	for _, cb := range ctx.Doc.CodeBlocks() {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		if diag := r.checkCodeBlock(ctx, cb); diag != nil {
			diags = append(diags, *diag)
		}
	}

	return diags, nil
}

func (r *CommandsShowOutputRule) checkCodeBlock(ctx *lint.RuleContext, cb mdcontext.CodeBlockInfo) *lint.Diagnostic {
	if !r.isShellCodeBlock(cb) {
		return nil
	}

	contentLines := r.getCodeBlockContentLines(ctx.Doc, cb)
	if len(contentLines) == 0 {
		return nil
	}

	if !r.hasOnlyDollarCommands(contentLines) {
		return nil
	}

	builder := r.buildDollarRemovalFix(contentLines)
	diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath,
		lint.SpanForLine(ctx.Doc, cb.StartLine),
		"Dollar signs used before commands without showing output").
		WithSeverity(config.SeverityWarning).
		WithSuggestion("Remove dollar signs from command-only code blocks").
		WithFix(builder).
		Build()
	return &diag
}

func (r *CommandsShowOutputRule) isShellCodeBlock(cb mdcontext.CodeBlockInfo) bool {
	info := strings.ToLower(strings.TrimSpace(cb.Info))
	return info == "" || info == "sh" || info == "shell" || info == "bash" ||
		info == "zsh" || info == "console" || info == "terminal"
}

func (r *CommandsShowOutputRule) startsWithDollar(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "$ ") || strings.HasPrefix(trimmed, "$\t") || trimmed == "$"
}

func (r *CommandsShowOutputRule) hasOnlyDollarCommands(lines []codeLineInfo) bool {
	hasAnyCommand := false

	for lineIdx, line := range lines {
		trimmed := strings.TrimSpace(line.content)
		if trimmed == "" {
			continue
		}

		if !r.startsWithDollar(trimmed) {
			return false
		}
		hasAnyCommand = true

		// A command followed by output is legitimate prompt notation.
		if r.hasOutputAfter(lines, lineIdx) {
			return false
		}
	}

	return hasAnyCommand
}

func (r *CommandsShowOutputRule) hasOutputAfter(lines []codeLineInfo, startIdx int) bool {
	for j := startIdx + 1; j < len(lines); j++ {
		nextTrimmed := strings.TrimSpace(lines[j].content)
		if nextTrimmed == "" {
			continue
		}
		return !r.startsWithDollar(nextTrimmed)
	}
	return false
}

func (r *CommandsShowOutputRule) buildDollarRemovalFix(lines []codeLineInfo) *fix.EditBuilder {
	builder := fix.NewEditBuilder()
	for _, line := range lines {
		trimmed := strings.TrimSpace(line.content)
		if trimmed == "" {
			continue
		}

		dollarIdx := strings.Index(line.content, "$")
		if dollarIdx < 0 {
			continue
		}

		removeEnd := dollarIdx + 1
		if removeEnd < len(line.content) && (line.content[removeEnd] == ' ' || line.content[removeEnd] == '\t') {
			removeEnd++
		}
		builder.Delete(line.startOffset+dollarIdx, line.startOffset+removeEnd)
	}
	return builder
}

type codeLineInfo struct {
	content     string
	startOffset int
}

func (r *CommandsShowOutputRule) getCodeBlockContentLines(doc *mdcontext.Context, cb mdcontext.CodeBlockInfo) []codeLineInfo {
	first, last := codeBlockContentRange(doc, cb)

	var out []codeLineInfo
	records := doc.Lines()
	for i := first; i <= last && i < len(records); i++ {
		out = append(out, codeLineInfo{
			content:     string(lint.LineContent(doc, i)),
			startOffset: records[i].Start,
		})
	}
	return out
}
