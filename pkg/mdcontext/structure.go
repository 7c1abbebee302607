package mdcontext

import (
	"strconv"
	"strings"

	"github.com/yaklabco/marklint/pkg/config"
)

// ListBlock groups consecutive list items, their continuation lines,
// and interior blanks into one logical list. Line indices are
// 0-based. Nested items belong to the enclosing block; a switch
// between ordered and unordered at the top level starts a new block.
type ListBlock struct {
	StartLine  int
	EndLine    int
	Ordered    bool
	Marker     string
	Loose      bool // blank line between items
	QuoteDepth int
	ItemLines  []int
}

// effectiveText returns the line's text after any blockquote prefix,
// plus the byte offset of that text within the line. Quote prefixes
// are ASCII, so the offset doubles as a rune offset.
func effectiveText(content []byte, rec *LineRecord) (string, int) {
	text := lineText(content, *rec)
	if rec.Blockquote != nil {
		p := len(rec.Blockquote.Prefix)
		return text[p:], p
	}
	return text, 0
}

func quoteDepth(rec *LineRecord) int {
	if rec.Blockquote == nil {
		return 0
	}
	return rec.Blockquote.Depth
}

// detectBlockquotes attaches a BlockquoteFacet to every line opening
// with `>` markers at up to three columns of indent. Depth counts
// markers; each marker may consume one following space.
func detectBlockquotes(content []byte, lines []LineRecord) {
	for i := range lines {
		rec := &lines[i]
		if rec.Blank || rec.excluded() {
			continue
		}
		text := lineText(content, *rec)
		j := 0
		for j < 3 && j < len(text) && text[j] == ' ' {
			j++
		}
		if j >= len(text) || text[j] != '>' {
			continue
		}
		depth := 0
		for j < len(text) && text[j] == '>' {
			depth++
			j++
			if j < len(text) && text[j] == ' ' {
				j++
			}
		}
		rec.Blockquote = &BlockquoteFacet{
			Depth:      depth,
			Prefix:     text[:j],
			ContentCol: j + 1,
		}
	}
}

// detectListItems attaches ListItemFacets. Bullet markers are -, *,
// and +; ordered markers are up to nine digits followed by . or ).
// The marker needs trailing whitespace unless the item is empty.
// Thematic-break lines like `* * *` are never items.
func detectListItems(content []byte, lines []LineRecord, dialect config.Dialect) {
	for i := range lines {
		rec := &lines[i]
		if rec.Blank || rec.excluded() {
			continue
		}
		text, base := effectiveText(content, rec)
		if isHRLine(text) {
			continue
		}

		start := 0
		for start < len(text) && (text[start] == ' ' || text[start] == '\t') {
			start++
		}
		if start >= len(text) {
			continue
		}

		markerEnd := -1
		ordered := false
		number := 0
		var delim byte
		switch c := text[start]; {
		case c == '-' || c == '*' || c == '+':
			markerEnd = start + 1
		case isASCIIDigit(c):
			d := start
			for d < len(text) && isASCIIDigit(text[d]) {
				d++
			}
			if d-start <= 9 && d < len(text) && (text[d] == '.' || text[d] == ')') {
				ordered = true
				number, _ = strconv.Atoi(text[start:d])
				delim = text[d]
				markerEnd = d + 1
			}
		}
		if markerEnd < 0 {
			continue
		}
		if markerEnd < len(text) && text[markerEnd] != ' ' && text[markerEnd] != '\t' {
			continue
		}

		contentIdx := markerEnd
		for contentIdx < len(text) && (text[contentIdx] == ' ' || text[contentIdx] == '\t') {
			contentIdx++
		}
		contentCol := base + contentIdx + 1
		if contentIdx >= len(text) {
			contentCol = base + markerEnd + 2
		}

		facet := &ListItemFacet{
			Ordered:    ordered,
			Marker:     text[start:markerEnd],
			Number:     number,
			Delimiter:  delim,
			MarkerCol:  base + start + 1,
			ContentCol: contentCol,
		}

		// Task checkbox: [ ] or [x]; Obsidian accepts any single mark.
		rest := text[contentIdx:]
		if len(rest) >= 3 && rest[0] == '[' && rest[2] == ']' &&
			(len(rest) == 3 || rest[3] == ' ' || rest[3] == '\t') {
			c := rest[1]
			if c == ' ' || c == 'x' || c == 'X' || dialect == config.DialectObsidian {
				facet.Task = true
				facet.TaskChar = c
			}
		}
		rec.ListItem = facet
	}
}

// detectATXHeadings attaches heading facets for `#` headings. A run
// of one to six hashes followed by whitespace or end of line is a
// valid heading; hashes glued to text still get a facet with Valid
// false so rules can report the missing space. Seven or more hashes
// are plain text.
func detectATXHeadings(content []byte, lines []LineRecord) {
	for i := range lines {
		rec := &lines[i]
		if rec.Blank || rec.excluded() || rec.ListItem != nil {
			continue
		}
		text, base := effectiveText(content, rec)

		start := 0
		for start < 3 && start < len(text) && text[start] == ' ' {
			start++
		}
		if start >= len(text) || text[start] != '#' {
			continue
		}
		n := runLen(text[start:], '#')
		if n > 6 {
			continue
		}
		hashEnd := start + n
		after := text[hashEnd:]

		facet := &HeadingFacet{
			Level:  n,
			Style:  HeadingATX,
			Marker: text[start:hashEnd],
		}
		if after != "" && after[0] != ' ' && after[0] != '\t' {
			facet.Text = strings.TrimSpace(after)
			facet.ContentCol = base + hashEnd + 1
			rec.Heading = facet
			continue
		}
		facet.Valid = true

		trimmed := strings.Trim(after, " \t")
		textIdx := hashEnd + leadingWhitespace(after)
		if trailing := runLenRight(trimmed, '#'); trailing > 0 {
			body := trimmed[:len(trimmed)-trailing]
			if body == "" {
				facet.Style = HeadingATXClosed
				facet.Text = ""
			} else if c := body[len(body)-1]; c == ' ' || c == '\t' {
				facet.Style = HeadingATXClosed
				facet.Text = strings.Trim(body, " \t")
			} else {
				facet.Text = trimmed
			}
		} else {
			facet.Text = trimmed
		}
		if facet.Text == "" {
			facet.ContentCol = base + hashEnd + 2
		} else {
			facet.ContentCol = base + textIdx + 1
		}
		rec.Heading = facet
	}
}

// detectSetextHeadings promotes a paragraph line to a heading when
// the next line is an underline of = or - at matching quote depth.
// The underline itself carries no facet; its line indices are
// returned so later passes leave it alone. A bare dash claimed as an
// underline loses any list-item reading.
func detectSetextHeadings(content []byte, lines []LineRecord, inTable []bool) []bool {
	consumed := make([]bool, len(lines))
	for i := 1; i < len(lines); i++ {
		rec := &lines[i]
		if rec.Blank || rec.excluded() || inTable[i] {
			continue
		}
		text, _ := effectiveText(content, rec)
		marker, ok := setextUnderline(text)
		if !ok {
			continue
		}

		prev := &lines[i-1]
		if consumed[i-1] || prev.Blank || prev.excluded() || inTable[i-1] {
			continue
		}
		if prev.Heading != nil || prev.ListItem != nil {
			continue
		}
		if quoteDepth(prev) != quoteDepth(rec) {
			continue
		}
		ptext, pbase := effectiveText(content, prev)
		if isHRLine(ptext) {
			continue
		}

		level := 2
		style := HeadingSetextH2
		if marker[0] == '=' {
			level = 1
			style = HeadingSetextH1
		}
		contentIdx := leadingWhitespace(ptext)
		prev.Heading = &HeadingFacet{
			Level:      level,
			Style:      style,
			Valid:      true,
			Marker:     marker,
			ContentCol: pbase + contentIdx + 1,
			Text:       strings.TrimSpace(ptext),
		}
		rec.ListItem = nil
		consumed[i] = true
	}
	return consumed
}

// setextUnderline reports whether the text is a setext underline and
// returns the marker run. Underlines allow up to three columns of
// indent and trailing whitespace only.
func setextUnderline(text string) (string, bool) {
	start := 0
	for start < 3 && start < len(text) && text[start] == ' ' {
		start++
	}
	rest := strings.TrimRight(text[start:], " \t")
	if rest == "" {
		return "", false
	}
	ch := rest[0]
	if ch != '=' && ch != '-' {
		return "", false
	}
	if runLen(rest, ch) != len(rest) {
		return "", false
	}
	return rest, true
}

// markHorizontalRules flags thematic breaks: three or more of the
// same -, _, or * with optional interior spaces. Lines consumed as
// setext underlines or table rows are not rules.
func markHorizontalRules(content []byte, lines []LineRecord, inTable, setextConsumed []bool) {
	for i := range lines {
		rec := &lines[i]
		if rec.Blank || rec.excluded() || inTable[i] || setextConsumed[i] {
			continue
		}
		if rec.Heading != nil || rec.ListItem != nil {
			continue
		}
		text, _ := effectiveText(content, rec)
		if isHRLine(text) {
			rec.HorizontalRule = true
		}
	}
}

// isHRLine reports whether text is a thematic break: at most three
// columns of indent, then three or more of one of -, _, * with only
// whitespace between.
func isHRLine(text string) bool {
	if indentWidth(text) > 3 {
		return false
	}
	var ch byte
	count := 0
	for i := 0; i < len(text); i++ {
		b := text[i]
		if b == ' ' || b == '\t' {
			continue
		}
		if ch == 0 {
			if b != '-' && b != '_' && b != '*' {
				return false
			}
			ch = b
		} else if b != ch {
			return false
		}
		count++
	}
	return count >= 3
}

// groupListBlocks gathers item lines, lazy and indented
// continuations, and interior blanks into ListBlocks. A block closes
// on a heading, a thematic break, a quote-depth change, outdented
// text, or a top-level switch between ordered and unordered.
func groupListBlocks(content []byte, lines []LineRecord) []ListBlock {
	var blocks []ListBlock
	var cur *ListBlock
	topMarkerCol := 0
	lastContentCol := 0
	pendingBlank := false

	closeBlock := func() {
		if cur != nil {
			blocks = append(blocks, *cur)
			cur = nil
		}
		pendingBlank = false
	}

	for i := range lines {
		rec := &lines[i]
		if rec.Blank {
			if cur != nil {
				pendingBlank = true
			}
			continue
		}
		if rec.InFrontMatter || rec.InHTMLComment || rec.OpaqueExtension() {
			closeBlock()
			continue
		}

		if item := rec.ListItem; item != nil {
			if cur != nil && quoteDepth(rec) != cur.QuoteDepth {
				closeBlock()
			}
			if cur != nil && item.MarkerCol <= topMarkerCol && item.Ordered != cur.Ordered {
				closeBlock()
			}
			if cur == nil {
				cur = &ListBlock{
					StartLine:  i,
					EndLine:    i,
					Ordered:    item.Ordered,
					Marker:     item.Marker,
					QuoteDepth: quoteDepth(rec),
				}
				topMarkerCol = item.MarkerCol
			}
			if pendingBlank {
				cur.Loose = true
				pendingBlank = false
			}
			cur.ItemLines = append(cur.ItemLines, i)
			cur.EndLine = i
			lastContentCol = item.ContentCol
			continue
		}

		if cur == nil {
			continue
		}
		if rec.Heading != nil || rec.HorizontalRule || quoteDepth(rec) != cur.QuoteDepth {
			closeBlock()
			continue
		}

		// Code lines reach here only when fenced code is nested in an
		// item; their indent decides like any continuation line.
		text, _ := effectiveText(content, rec)
		ind := indentWidth(text)
		if rec.InFencedCode && ind+1 < lastContentCol {
			// An outdented fence interrupts the list even without a
			// blank line; lazy continuation is for paragraph text.
			closeBlock()
			continue
		}
		switch {
		case !pendingBlank:
			// Lazy continuation binds regardless of indent.
			cur.EndLine = i
		case ind+1 >= lastContentCol:
			cur.Loose = true
			pendingBlank = false
			cur.EndLine = i
		default:
			closeBlock()
		}
	}
	closeBlock()
	return blocks
}

func leadingWhitespace(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func runLenRight(s string, ch byte) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == ch; i-- {
		n++
	}
	return n
}
