package mdcontext

import (
	"regexp"
	"sort"
	"strings"
)

// TableBlock is a pipe table: a header row, a delimiter row, and the
// content rows that follow. Line fields are 0-based indices into the
// line table. Tables nested in a blockquote or under a list item
// record the prefix text so formatting rules can strip and reapply
// it symmetrically.
type TableBlock struct {
	StartLine     int
	EndLine       int
	HeaderLine    int
	DelimiterLine int
	ContentLines  []int
	ColumnCount   int
	Prefix        string
	ContentIndent int
}

var delimiterCellRe = regexp.MustCompile(`^:?-+:?$`)

// detectTableBlocks finds tables after heading and list facets exist.
// A table starts at a line with at least one effective pipe whose
// successor parses as a delimiter row of the same arity, and runs
// while rows keep producing effective pipes at the same quote depth.
// Pipes inside code spans or escaped with a backslash never delimit.
func detectTableBlocks(content []byte, lines []LineRecord, spans []CodeSpan) []TableBlock {
	var blocks []TableBlock
	i := 0
	for i+1 < len(lines) {
		rec := &lines[i]
		if rec.Blank || rec.excluded() || rec.Heading != nil || rec.ListItem != nil {
			i++
			continue
		}
		headerCells := rowCellRanges(content, rec, spans)
		if len(headerCells) == 0 {
			i++
			continue
		}
		delim := &lines[i+1]
		if delim.Blank || delim.excluded() || quoteDepth(delim) != quoteDepth(rec) {
			i++
			continue
		}
		if !isDelimiterRow(content, delim, spans, len(headerCells)) {
			i++
			continue
		}

		block := TableBlock{
			StartLine:     i,
			EndLine:       i + 1,
			HeaderLine:    i,
			DelimiterLine: i + 1,
			ColumnCount:   len(headerCells),
		}
		if rec.Blockquote != nil {
			block.Prefix = rec.Blockquote.Prefix
			block.ContentIndent = len(rec.Blockquote.Prefix)
		} else {
			text := lineText(content, *rec)
			ws := text[:leadingWhitespace(text)]
			block.Prefix = ws
			block.ContentIndent = indentWidth(text)
		}

		j := i + 2
		for j < len(lines) {
			row := &lines[j]
			if row.Blank || row.excluded() || row.Heading != nil ||
				quoteDepth(row) != quoteDepth(rec) {
				break
			}
			if len(rowCellRanges(content, row, spans)) == 0 {
				break
			}
			block.ContentLines = append(block.ContentLines, j)
			block.EndLine = j
			j++
		}
		blocks = append(blocks, block)
		i = j
	}
	return blocks
}

// isDelimiterRow reports whether the line is a valid table delimiter
// for the given column count: every cell is dashes with optional
// alignment colons, and at least one real pipe is present so a bare
// dash run stays available as a setext underline or thematic break.
func isDelimiterRow(content []byte, rec *LineRecord, spans []CodeSpan, arity int) bool {
	cells := rowCellRanges(content, rec, spans)
	if len(cells) != arity {
		return false
	}
	for _, cell := range cells {
		text := strings.TrimSpace(string(content[cell.Start:cell.End]))
		if !delimiterCellRe.MatchString(text) {
			return false
		}
	}
	return true
}

// rowCellRanges splits a line into table cells, returning absolute
// byte ranges of the raw cell contents between delimiters. Leading
// and trailing pipes open and close the row without producing empty
// edge cells. Nil means the line has no effective pipe at all.
func rowCellRanges(content []byte, rec *LineRecord, spans []CodeSpan) []ByteRange {
	text, base := effectiveText(content, rec)
	absStart := rec.Start + base

	var pipes []int
	for idx := 0; idx < len(text); idx++ {
		if text[idx] != '|' {
			continue
		}
		if idx > 0 && text[idx-1] == '\\' {
			continue
		}
		abs := absStart + idx
		if insideSpan(spans, abs) {
			continue
		}
		pipes = append(pipes, abs)
	}
	if len(pipes) == 0 {
		return nil
	}

	var cells []ByteRange
	segStart := absStart
	for _, p := range pipes {
		cells = append(cells, ByteRange{Start: segStart, End: p})
		segStart = p + 1
	}
	cells = append(cells, ByteRange{Start: segStart, End: rec.TextEnd})

	// A whitespace-only segment before the first or after the last
	// pipe is row punctuation, not a cell.
	if len(cells) > 0 && isBlankRange(content, cells[0]) {
		cells = cells[1:]
	}
	if len(cells) > 0 && isBlankRange(content, cells[len(cells)-1]) {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func isBlankRange(content []byte, r ByteRange) bool {
	return isBlank(content[r.Start:r.End])
}

// insideSpan reports whether the offset falls within any code span.
// Spans are produced in document order, so a binary search works.
func insideSpan(spans []CodeSpan, offset int) bool {
	idx := sort.Search(len(spans), func(k int) bool {
		return spans[k].ByteEnd > offset
	})
	return idx < len(spans) && spans[idx].ByteStart <= offset
}

// tableLineSet marks every line covered by a table block.
func tableLineSet(blocks []TableBlock, n int) []bool {
	set := make([]bool, n)
	for _, b := range blocks {
		for i := b.StartLine; i <= b.EndLine && i < n; i++ {
			set[i] = true
		}
	}
	return set
}
