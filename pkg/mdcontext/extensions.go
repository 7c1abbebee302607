package mdcontext

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/yaklabco/marklint/pkg/config"
)

// Dialect extension detection. Each detector is gated on the active
// dialect and only adds ExtFlags (plus, for MkDocs, corrections to
// the indented-code flag); the generic block flags from
// classifyBlocks always take precedence, and an extension opener is
// never recognized inside front matter, fenced code, or an HTML
// comment. The one deliberate exception is the kramdown tracker,
// which keeps following an open {::...} block through lines the base
// scan classified as code or HTML, because the base grammar does not
// know those regions are inert.

var (
	admonitionStartRe = regexp.MustCompile(`^(\s*)(!!!|\?\?\?\+?)\s+\S`)
	contentTabRe      = regexp.MustCompile(`^(\s*)===\s+("[^"]*"|'[^']*')\s*$`)
	definitionLineRe  = regexp.MustCompile(`^\s{0,3}:\s+\S`)
	autodocStartRe    = regexp.MustCompile(`^(\s*):::\s+([A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*)\s*$`)
	fencedDivRe       = regexp.MustCompile(`^:{3,}($|\s.*$|\{.*$)`)
	slashFenceOpenRe  = regexp.MustCompile(`^///\s+\S`)
	slashFenceCloseRe = regexp.MustCompile(`^///\s*$`)

	kramdownExtOpenRe   = regexp.MustCompile(`^\{::(comment|nomarkdown|options)(\s[^}]*)?\}$`)
	kramdownExtCloseRe  = regexp.MustCompile(`^\{:/(comment|nomarkdown|options)?\}$`)
	kramdownSelfCloseRe = regexp.MustCompile(`^\{::[a-z]+(\s[^}]*)?/\}$`)
	kramdownBlockIALRe  = regexp.MustCompile(`^\{:[^/:][^}]*\}$|^\{:\}$`)
	kramdownALDRe       = regexp.MustCompile(`^\{:[a-zA-Z][\w-]*:[^}]*\}$`)
)

// detectMkDocsConstructs marks admonitions, content tabs, and
// definition lists, and clears indented-code flags for admonition
// and tab content. Nested fenced code inside those constructs is
// already covered by the generic fence scan and stays code.
func detectMkDocsConstructs(content []byte, lines []LineRecord, dialect config.Dialect) {
	if dialect != config.DialectMkDocs {
		return
	}

	inAdmonition := false
	admonitionIndent := 0
	inTab := false
	tabIndent := 0
	inDefinition := false

	for i := range lines {
		rec := &lines[i]
		if rec.InFrontMatter || rec.InHTMLComment {
			continue
		}
		text := lineText(content, *rec)

		// Admonition markers are checked even on lines flagged as
		// indented code: a nested `!!! note` sits at 4+ columns and
		// the generic scan cannot tell it from code.
		if !rec.InFencedCode && admonitionStartRe.MatchString(text) {
			inAdmonition = true
			admonitionIndent = indentWidth(text)
			rec.Ext |= ExtAdmonition
			rec.InIndentedCode = false
		} else if inAdmonition {
			switch {
			case rec.Blank:
				rec.Ext |= ExtAdmonition
			case indentWidth(text) >= admonitionIndent+4:
				rec.Ext |= ExtAdmonition
				if !rec.InFencedCode {
					rec.InIndentedCode = false
				}
			default:
				inAdmonition = false
			}
		}

		if !rec.InFencedCode && contentTabRe.MatchString(text) {
			inTab = true
			tabIndent = indentWidth(text)
			rec.Ext |= ExtContentTab
			rec.InIndentedCode = false
		} else if inTab {
			switch {
			case rec.Blank:
				rec.Ext |= ExtContentTab
			case indentWidth(text) >= tabIndent+4:
				rec.Ext |= ExtContentTab
				if !rec.InFencedCode {
					rec.InIndentedCode = false
				}
			default:
				inTab = false
			}
		}

		if rec.InFencedCode || rec.InIndentedCode {
			continue
		}

		// Definition lists: a term line followed by `: definition`
		// lines, with indented continuations.
		switch {
		case definitionLineRe.MatchString(text):
			inDefinition = true
			rec.Ext |= ExtDefinitionList
		case inDefinition && rec.Blank:
			rec.Ext |= ExtDefinitionList
		case inDefinition && indentWidth(text) >= 4:
			rec.Ext |= ExtDefinitionList
		case inDefinition:
			// Possibly a new term directly above its definition.
			if i+1 < len(lines) && definitionLineRe.MatchString(lineText(content, lines[i+1])) {
				rec.Ext |= ExtDefinitionList
			} else {
				inDefinition = false
			}
		default:
			if i+1 < len(lines) && !rec.Blank && indentWidth(text) < 4 &&
				definitionLineRe.MatchString(lineText(content, lines[i+1])) {
				rec.Ext |= ExtDefinitionList
				inDefinition = true
			}
		}
	}
}

// detectPyMdownBlocks marks `///`-delimited block fence lines. Only
// the delimiters are flagged; the content between them is regular
// Markdown and stays lintable.
func detectPyMdownBlocks(content []byte, lines []LineRecord, dialect config.Dialect) {
	if dialect != config.DialectMkDocs {
		return
	}
	open := false
	for i := range lines {
		rec := &lines[i]
		if rec.excluded() {
			continue
		}
		text := strings.TrimRight(lineText(content, *rec), " \t")
		if !open && slashFenceOpenRe.MatchString(text) {
			rec.Ext |= ExtSlashFence
			open = true
		} else if open && slashFenceCloseRe.MatchString(text) {
			rec.Ext |= ExtSlashFence
			open = false
		}
	}
}

// detectAutodocBlocks marks mkdocstrings-style `::: identifier`
// blocks and their indented option lines. They are recognized in
// every dialect except Quarto, whose `:::` lines are fenced divs:
// the more specific grammar wins where both could match.
func detectAutodocBlocks(content []byte, lines []LineRecord, dialect config.Dialect) {
	if dialect == config.DialectQuarto {
		return
	}
	i := 0
	for i < len(lines) {
		rec := &lines[i]
		if rec.excluded() || !autodocStartRe.MatchString(lineText(content, *rec)) {
			i++
			continue
		}
		markerIndent := indentWidth(lineText(content, *rec))
		rec.Ext |= ExtAutodoc
		j := i + 1
		lastContent := i
		for j < len(lines) {
			if lines[j].Blank {
				j++
				continue
			}
			if indentWidth(lineText(content, lines[j])) <= markerIndent {
				break
			}
			lastContent = j
			j++
		}
		for k := i + 1; k <= lastContent; k++ {
			lines[k].Ext |= ExtAutodoc
			lines[k].InIndentedCode = false
		}
		i = lastContent + 1
	}
}

// detectQuartoDivs marks `:::` fenced div delimiter lines. Div
// content is ordinary Markdown and carries no flag.
func detectQuartoDivs(content []byte, lines []LineRecord, dialect config.Dialect) {
	if dialect != config.DialectQuarto {
		return
	}
	depth := 0
	for i := range lines {
		rec := &lines[i]
		if rec.excluded() {
			continue
		}
		text := strings.TrimSpace(lineText(content, *rec))
		if !strings.HasPrefix(text, ":::") {
			continue
		}
		if !fencedDivRe.MatchString(text) {
			continue
		}
		rest := strings.TrimLeft(text, ":")
		if strings.TrimSpace(rest) == "" {
			// Bare ::: closes the innermost div, or opens an
			// anonymous one when none is open.
			if depth > 0 {
				depth--
			} else {
				depth++
			}
		} else {
			depth++
		}
		rec.Ext |= ExtFencedDiv
	}
}

// detectESMBlocks marks MDX import/export statement blocks.
func detectESMBlocks(content []byte, lines []LineRecord, dialect config.Dialect) {
	if !dialect.SupportsESM() {
		return
	}

	inMultiline := false
	for i := range lines {
		rec := &lines[i]
		if rec.InFencedCode || rec.InIndentedCode || rec.InFrontMatter || rec.InHTMLComment {
			inMultiline = false
			continue
		}
		text := lineText(content, *rec)
		trimmed := strings.TrimSpace(text)

		if inMultiline {
			rec.Ext |= ExtESM
			if strings.HasSuffix(trimmed, `'`) || strings.HasSuffix(trimmed, `"`) ||
				strings.HasSuffix(trimmed, `';`) || strings.HasSuffix(trimmed, `";`) ||
				strings.Contains(text, ";") {
				inMultiline = false
			}
			continue
		}
		if rec.Blank {
			continue
		}

		isImport := strings.HasPrefix(trimmed, "import ")
		isExport := strings.HasPrefix(trimmed, "export ")
		if !isImport && !isExport {
			continue
		}
		rec.Ext |= ExtESM

		complete := strings.HasSuffix(trimmed, ";") ||
			(strings.Contains(trimmed, " from ") &&
				(strings.HasSuffix(trimmed, `'`) || strings.HasSuffix(trimmed, `"`))) ||
			(isExport && !strings.Contains(trimmed, " from ") && hasExportDeclPrefix(trimmed))

		// Only imports span multiple lines in the typical case.
		if !complete && isImport && strings.Contains(trimmed, "{") && !strings.Contains(trimmed, "}") {
			inMultiline = true
		}
	}
}

func hasExportDeclPrefix(trimmed string) bool {
	for _, p := range []string{
		"export const ", "export let ", "export var ",
		"export function ", "export class ", "export default ",
	} {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// detectJSXAndComments scans for JSX expressions `{...}` and MDX
// comments `{/* ... */}`, returning their byte ranges. Lines fully
// inside an MDX comment are flagged ExtComment. Brace matching is
// string-aware so braces inside quoted JS strings do not unbalance
// the expression.
func detectJSXAndComments(content []byte, lines []LineRecord, dialect config.Dialect) (jsx, comments []ByteRange) {
	if !dialect.SupportsJSX() {
		return nil, nil
	}

	cur := 0
	i := 0
	for i < len(content) {
		for cur < len(lines)-1 && i >= lines[cur].End {
			cur++
		}
		if lines[cur].InCode() || lines[cur].InFrontMatter || lines[cur].InHTMLComment ||
			lines[cur].Ext&ExtESM != 0 {
			i = lines[cur].End
			continue
		}
		if content[i] != '{' {
			i++
			continue
		}
		start := i

		if i+2 < len(content) && content[i+1] == '/' && content[i+2] == '*' {
			end := -1
			for j := i + 3; j+2 < len(content); j++ {
				if content[j] == '*' && content[j+1] == '/' && content[j+2] == '}' {
					end = j + 3
					break
				}
			}
			if end < 0 {
				// Unclosed comment extends to end of document.
				end = len(content)
			}
			comments = append(comments, ByteRange{Start: start, End: end})
			i = end
			continue
		}

		depth := 1
		j := i + 1
		inString := false
		var stringChar byte
		for j < len(content) && depth > 0 {
			ch := content[j]
			switch {
			case !inString && (ch == '"' || ch == '\'' || ch == '`'):
				inString = true
				stringChar = ch
			case inString && ch == stringChar && content[j-1] != '\\':
				inString = false
			case !inString && ch == '{':
				depth++
			case !inString && ch == '}':
				depth--
			}
			j++
		}
		if depth == 0 {
			jsx = append(jsx, ByteRange{Start: start, End: j})
			i = j
		} else {
			i++
		}
	}

	markFullyContained(lines, comments, ExtComment)
	return jsx, comments
}

// detectObsidianComments finds `%%`-delimited comment ranges.
// Comments do not nest: the first %% after an opener closes it. They
// are not recognized inside code blocks, code spans, or HTML
// comments. An unclosed comment extends to end of document.
func detectObsidianComments(content []byte, lines []LineRecord, dialect config.Dialect, codeSpans []CodeSpan) []ByteRange {
	if dialect != config.DialectObsidian {
		return nil
	}
	if !bytes.Contains(content, []byte("%%")) {
		return nil
	}

	var skip []ByteRange
	for i := range lines {
		if lines[i].InFencedCode || lines[i].InIndentedCode || lines[i].InHTMLComment {
			skip = append(skip, ByteRange{Start: lines[i].Start, End: lines[i].TextEnd})
		}
	}
	for _, s := range codeSpans {
		skip = append(skip, ByteRange{Start: s.ByteStart, End: s.ByteEnd})
	}
	skip = mergeRanges(skip)

	var ranges []ByteRange
	inComment := false
	commentStart := 0
	skipIdx := 0
	i := 0
	for i+1 < len(content) {
		for skipIdx < len(skip) && i >= skip[skipIdx].End {
			skipIdx++
		}
		if skipIdx < len(skip) && i >= skip[skipIdx].Start {
			i = skip[skipIdx].End
			continue
		}
		if content[i] == '%' && content[i+1] == '%' {
			if !inComment {
				inComment = true
				commentStart = i
			} else {
				ranges = append(ranges, ByteRange{Start: commentStart, End: i + 2})
				inComment = false
			}
			i += 2
			continue
		}
		i++
	}
	if inComment {
		ranges = append(ranges, ByteRange{Start: commentStart, End: len(content)})
	}

	markFullyContained(lines, ranges, ExtComment)
	return ranges
}

// detectKramdownConstructs marks {::...} extension blocks, block
// IALs, and attribute list definitions. An open extension block keeps
// tracking through lines the base scan classified as code or HTML.
func detectKramdownConstructs(content []byte, lines []LineRecord, dialect config.Dialect) {
	if !dialect.SupportsKramdown() {
		return
	}

	inBlock := false
	for i := range lines {
		rec := &lines[i]
		trimmed := strings.TrimSpace(lineText(content, *rec))

		if inBlock {
			rec.Ext |= ExtKramdownBlock
			if kramdownExtCloseRe.MatchString(trimmed) {
				inBlock = false
			}
			continue
		}

		if rec.InFencedCode || rec.InIndentedCode || rec.InFrontMatter || rec.InHTMLComment {
			continue
		}

		switch {
		case kramdownSelfCloseRe.MatchString(trimmed):
			rec.Ext |= ExtKramdownBlock
		case kramdownExtOpenRe.MatchString(trimmed):
			rec.Ext |= ExtKramdownBlock
			inBlock = true
		case kramdownBlockIALRe.MatchString(trimmed) || kramdownALDRe.MatchString(trimmed):
			rec.Ext |= ExtKramdownIAL
		}
	}
}

// markFullyContained sets flag on every line whose text lies entirely
// inside one of the (sorted, disjoint) ranges. Code and HTML-comment
// lines keep their higher-precedence classification.
func markFullyContained(lines []LineRecord, ranges []ByteRange, flag ExtFlags) {
	if len(ranges) == 0 {
		return
	}
	ri := 0
	for i := range lines {
		rec := &lines[i]
		if rec.InFencedCode || rec.InIndentedCode || rec.InHTMLComment || rec.InFrontMatter {
			continue
		}
		for ri < len(ranges) && ranges[ri].End < rec.Start {
			ri++
		}
		if ri >= len(ranges) {
			return
		}
		if ranges[ri].Start <= rec.Start && rec.TextEnd <= ranges[ri].End {
			rec.Ext |= flag
		}
	}
}

// mergeRanges sorts byte ranges and merges overlapping or adjacent
// ones.
func mergeRanges(ranges []ByteRange) []ByteRange {
	if len(ranges) < 2 {
		return ranges
	}
	sortRanges(ranges)
	merged := ranges[:1]
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

func sortRanges(ranges []ByteRange) {
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
}
