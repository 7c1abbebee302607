package mdcontext

import (
	"sort"
	"strings"
)

// CodeBlockInfo describes one fenced or indented code block.
type CodeBlockInfo struct {
	StartLine int // 0-based index of the first line (the opening fence when Fenced)
	EndLine   int // 0-based index of the last line (closing fence, or EOF when unterminated)
	Fenced    bool
	FenceChar byte // '`' or '~' when Fenced
	FenceLen  int
	Indent    int    // leading whitespace width of the opening fence line
	Info      string // trimmed info string after the opening fence
}

// ByteStart returns the byte offset where the block begins.
func (b CodeBlockInfo) ByteStart(lines []LineRecord) int { return lines[b.StartLine].Start }

// ByteEnd returns the byte offset just past the block's final line.
func (b CodeBlockInfo) ByteEnd(lines []LineRecord) int { return lines[b.EndLine].End }

// detectFrontMatterEnd returns the 0-based index of the closing front
// matter delimiter, or -1. Front matter exists only when the document
// begins with a delimiter line at byte 0 AND a matching closer is
// found; an unterminated opener is an ordinary thematic break, not
// front matter that swallows the document.
func detectFrontMatterEnd(lines []LineRecord, content []byte) int {
	if len(lines) < 2 {
		return -1
	}
	first := strings.TrimRight(lineText(content, lines[0]), " \t")
	var closers []string
	switch first {
	case "---":
		// "..." is the YAML document-end marker; both close YAML front matter.
		closers = []string{"---", "..."}
	case "+++":
		closers = []string{"+++"}
	default:
		return -1
	}
	for i := 1; i < len(lines); i++ {
		text := strings.TrimRight(lineText(content, lines[i]), " \t")
		for _, c := range closers {
			if text == c {
				return i
			}
		}
	}
	return -1
}

func lineText(content []byte, rec LineRecord) string {
	return string(content[rec.Start:rec.TextEnd])
}

// classifyBlocks is the single forward scan assigning the
// mutually-interacting block flags: front matter, fenced code, HTML
// comments, HTML blocks, and indented code. Precedence when several
// grammars could claim a line: front matter, then fenced code, then
// HTML comment/block, then indented code. An already-open block always
// wins over a would-be opener of lower or equal precedence.
func classifyBlocks(content []byte, lines []LineRecord, fmEnd int) ([]CodeBlockInfo, []ByteRange) {
	var (
		fences        []CodeBlockInfo
		commentRanges []ByteRange

		inFence    bool
		fence      CodeBlockInfo
		inComment  bool
		commentPos int
		inHTML     bool
	)

	for i := range lines {
		rec := &lines[i]
		text := lineText(content, *rec)

		if i <= fmEnd {
			rec.InFrontMatter = true
			continue
		}

		if inFence {
			rec.InFencedCode = true
			if isFenceCloser(text, fence.FenceChar, fence.FenceLen) {
				fence.EndLine = i
				fences = append(fences, fence)
				inFence = false
			}
			continue
		}

		// HTML comment state transitions can occur mid-line, so the
		// comment scanner runs before any flag is derived. It never
		// runs inside fenced code or front matter, where comment
		// markers are literal text.
		lineFullyInComment := false
		if inComment {
			if end := strings.Index(text, "-->"); end >= 0 {
				closeAt := rec.Start + end + len("-->")
				commentRanges = append(commentRanges, ByteRange{Start: commentPos, End: closeAt})
				inComment = false
				lineFullyInComment = closeAt >= rec.TextEnd
				scanCommentOpeners(text[end+len("-->"):], rec.Start+end+len("-->"), &inComment, &commentPos, &commentRanges)
			} else {
				lineFullyInComment = true
			}
		} else {
			scanCommentOpeners(text, rec.Start, &inComment, &commentPos, &commentRanges)
			if inComment && commentPos == rec.Start {
				lineFullyInComment = true
			}
		}
		if lineFullyInComment {
			rec.InHTMLComment = true
			continue
		}

		if inHTML {
			if rec.Blank {
				inHTML = false
			} else {
				rec.InHTMLBlock = true
				continue
			}
		}

		if rec.Blank {
			continue
		}

		if f, ok := parseFenceOpener(text, i); ok {
			rec.InFencedCode = true
			inFence = true
			fence = f
			fence.EndLine = len(lines) - 1 // until proven closed
			continue
		}

		if opensHTMLBlock(text) {
			rec.InHTMLBlock = true
			inHTML = true
			continue
		}

		// Indented code runs last and is evaluated line-by-line with
		// no carried state. The list-context pass and dialect passes
		// may clear the flag afterwards (nested list content,
		// admonition content), so indented blocks are grouped later
		// by groupIndentedBlocks.
		if indentWidth(text) >= 4 {
			rec.InIndentedCode = true
		}
	}

	if inFence {
		fences = append(fences, fence)
	}
	if inComment {
		// Unterminated comments extend to end of document.
		commentRanges = append(commentRanges, ByteRange{Start: commentPos, End: len(content)})
	}

	markCommentLines(lines, commentRanges)
	return fences, commentRanges
}

// groupIndentedBlocks collects runs of indented-code lines into
// CodeBlockInfo entries. Interior blank lines carry no flag but do
// not split a block; any other line does. It runs after the dialect
// passes so their flag corrections are reflected.
func groupIndentedBlocks(lines []LineRecord) []CodeBlockInfo {
	var blocks []CodeBlockInfo
	start, last := -1, -1
	flush := func() {
		if start >= 0 {
			blocks = append(blocks, CodeBlockInfo{StartLine: start, EndLine: last})
			start = -1
		}
	}
	for i := range lines {
		switch {
		case lines[i].InIndentedCode:
			if start < 0 {
				start = i
			}
			last = i
		case lines[i].Blank:
		default:
			flush()
		}
	}
	flush()
	return blocks
}

// suppressListIndentedCode clears indented-code flags the flat
// four-column scan raised inside open list items. A line less than
// four columns past the innermost item's content column belongs to
// the item (a nested marker or a continuation paragraph), not to a
// code block. Runs before facets exist, so it carries its own marker
// scan mirroring the grammar of detectListItems.
func suppressListIndentedCode(content []byte, lines []LineRecord) {
	var open []int // content indents of open items, innermost last
	pendingBlank := false
	prevInFence := false

	for i := range lines {
		rec := &lines[i]
		if rec.Blank {
			pendingBlank = true
			prevInFence = false
			continue
		}
		if rec.InFrontMatter || rec.InHTMLComment {
			open = open[:0]
			pendingBlank = false
			prevInFence = false
			continue
		}

		text := lineText(content, *rec)
		ind := indentWidth(text)

		if rec.InFencedCode {
			// An outdented fence interrupts the list; an indented one
			// is item content and leaves the stack alone.
			if !prevInFence && len(open) > 0 && ind < open[len(open)-1] {
				open = open[:0]
			}
			pendingBlank = false
			prevInFence = true
			continue
		}
		prevInFence = false

		if len(open) > 0 && ind >= open[len(open)-1]+4 {
			// Deep enough to be code inside the innermost item.
			pendingBlank = false
			continue
		}
		if len(open) == 0 && rec.InIndentedCode {
			// No list is open; the flat classification stands.
			pendingBlank = false
			continue
		}
		rec.InIndentedCode = false

		if isHRLine(text) || atxHeadingLine(text) {
			open = open[:0]
			pendingBlank = false
			continue
		}

		if c, ok := listMarkerContent(text); ok {
			for len(open) > 0 && open[len(open)-1] > ind {
				open = open[:len(open)-1]
			}
			open = append(open, c)
			pendingBlank = false
			continue
		}

		// Plain text after a blank, outdented past the innermost
		// item's content column, ends the list.
		if pendingBlank && len(open) > 0 && ind < open[len(open)-1] {
			open = open[:0]
		}
		pendingBlank = false
	}
}

// listMarkerContent reports whether the line opens a list item and,
// if so, the column where its content starts. Thematic-break lookups
// are the caller's job; the grammar otherwise mirrors
// detectListItems.
func listMarkerContent(text string) (int, bool) {
	start := 0
	for start < len(text) && (text[start] == ' ' || text[start] == '\t') {
		start++
	}
	if start >= len(text) {
		return 0, false
	}
	markerEnd := -1
	switch c := text[start]; {
	case c == '-' || c == '*' || c == '+':
		markerEnd = start + 1
	case isASCIIDigit(c):
		d := start
		for d < len(text) && isASCIIDigit(text[d]) {
			d++
		}
		if d-start <= 9 && d < len(text) && (text[d] == '.' || text[d] == ')') {
			markerEnd = d + 1
		}
	}
	if markerEnd < 0 {
		return 0, false
	}
	if markerEnd < len(text) && text[markerEnd] != ' ' && text[markerEnd] != '\t' {
		return 0, false
	}
	content := markerEnd
	for content < len(text) && (text[content] == ' ' || text[content] == '\t') {
		content++
	}
	if content >= len(text) {
		content = markerEnd + 1
	}
	return content, true
}

// atxHeadingLine matches the heading shape that interrupts a list: up
// to three spaces, one to six hashes, then whitespace or end of line.
func atxHeadingLine(text string) bool {
	ind := 0
	for ind < len(text) && text[ind] == ' ' {
		ind++
	}
	if ind > 3 {
		return false
	}
	n := 0
	for ind+n < len(text) && text[ind+n] == '#' {
		n++
	}
	if n == 0 || n > 6 {
		return false
	}
	rest := ind + n
	return rest == len(text) || text[rest] == ' ' || text[rest] == '\t'
}

// scanCommentOpeners consumes `<!--` openers in text (whose first byte
// sits at base in the document). Open-and-close pairs on the same line
// are recorded as transient ranges; a dangling opener leaves the
// comment state open for following lines.
func scanCommentOpeners(text string, base int, inComment *bool, commentPos *int, ranges *[]ByteRange) {
	pos := 0
	for {
		open := strings.Index(text[pos:], "<!--")
		if open < 0 {
			return
		}
		open += pos
		closeIdx := strings.Index(text[open+len("<!--"):], "-->")
		if closeIdx < 0 {
			*inComment = true
			*commentPos = base + open
			return
		}
		end := open + len("<!--") + closeIdx + len("-->")
		*ranges = append(*ranges, ByteRange{Start: base + open, End: base + end})
		pos = end
	}
}

// markCommentLines sets InHTMLComment on lines whose entire text lies
// inside one comment range. Lines where a comment opens or closes
// mid-line keep the flag off; the byte ranges cover those spans.
func markCommentLines(lines []LineRecord, ranges []ByteRange) {
	if len(ranges) == 0 {
		return
	}
	ri := 0
	for i := range lines {
		rec := &lines[i]
		if rec.InFrontMatter || rec.InFencedCode || rec.InHTMLComment {
			continue
		}
		for ri < len(ranges) && ranges[ri].End < rec.Start {
			ri++
		}
		if ri >= len(ranges) {
			return
		}
		r := ranges[ri]
		if r.Start <= rec.Start && rec.TextEnd <= r.End && rec.TextEnd > rec.Start {
			rec.InHTMLComment = true
			// A line absorbed into a comment cannot also be code.
			rec.InIndentedCode = false
		}
	}
}

func parseFenceOpener(text string, line int) (CodeBlockInfo, bool) {
	indent := indentWidth(text)
	trimmed := strings.TrimLeft(text, " \t")
	if len(trimmed) < 3 {
		return CodeBlockInfo{}, false
	}
	ch := trimmed[0]
	if ch != '`' && ch != '~' {
		return CodeBlockInfo{}, false
	}
	n := runLen(trimmed, ch)
	if n < 3 {
		return CodeBlockInfo{}, false
	}
	info := strings.TrimSpace(trimmed[n:])
	// A backtick fence's info string cannot contain backticks; such a
	// line is inline code, not a fence.
	if ch == '`' && strings.ContainsRune(info, '`') {
		return CodeBlockInfo{}, false
	}
	return CodeBlockInfo{
		StartLine: line,
		Fenced:    true,
		FenceChar: ch,
		FenceLen:  n,
		Indent:    indent,
		Info:      info,
	}, true
}

func isFenceCloser(text string, ch byte, minLen int) bool {
	trimmed := strings.TrimLeft(text, " \t")
	n := runLen(trimmed, ch)
	if n < minLen {
		return false
	}
	return strings.TrimRight(trimmed[n:], " \t") == ""
}

func runLen(s string, ch byte) int {
	n := 0
	for n < len(s) && s[n] == ch {
		n++
	}
	return n
}

// indentWidth measures leading whitespace, expanding tabs to the next
// 4-column stop.
func indentWidth(text string) int {
	w := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case ' ':
			w++
		case '\t':
			w += 4 - w%4
		default:
			return w
		}
	}
	return w
}

// htmlBlockTags is the set of tag names that open a blank-line
// terminated HTML block when they start a line.
var htmlBlockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"canvas": true, "center": true, "dd": true, "details": true, "dialog": true,
	"div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true, "hr": true,
	"iframe": true, "li": true, "main": true, "nav": true, "noscript": true,
	"ol": true, "p": true, "picture": true, "pre": true, "script": true,
	"section": true, "source": true, "style": true, "summary": true,
	"table": true, "tbody": true, "td": true, "tfoot": true, "th": true,
	"thead": true, "tr": true, "ul": true, "video": true,
}

func opensHTMLBlock(text string) bool {
	if indentWidth(text) > 3 {
		return false
	}
	trimmed := strings.TrimLeft(text, " \t")
	if len(trimmed) < 2 || trimmed[0] != '<' {
		return false
	}
	rest := trimmed[1:]
	if strings.HasPrefix(rest, "/") {
		rest = rest[1:]
	}
	end := 0
	for end < len(rest) && (isASCIILetter(rest[end]) || isASCIIDigit(rest[end])) {
		end++
	}
	if end == 0 {
		return false
	}
	name := strings.ToLower(rest[:end])
	if !htmlBlockTags[name] {
		return false
	}
	if end == len(rest) {
		return true
	}
	switch rest[end] {
	case ' ', '\t', '>', '/':
		return true
	}
	return false
}

func isASCIILetter(b byte) bool { return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' }
func isASCIIDigit(b byte) bool  { return b >= '0' && b <= '9' }

// sortCodeBlocks orders blocks by start line. Fenced and indented
// blocks are appended at different points of the scan, so the
// combined slice may arrive out of order.
func sortCodeBlocks(blocks []CodeBlockInfo) {
	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].StartLine < blocks[j].StartLine
	})
}
