package mdcontext

import (
	"sort"
	"unicode/utf8"
)

// ByteRange is a half-open [Start, End) interval into the content.
type ByteRange struct {
	Start int
	End   int
}

// Len returns the length of the range in bytes.
func (r ByteRange) Len() int { return r.End - r.Start }

// IsEmpty returns true if the range has zero length.
func (r ByteRange) IsEmpty() bool { return r.Start == r.End }

// Contains returns true if the given offset is within this range.
func (r ByteRange) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Overlaps returns true if the two ranges share at least one byte.
func (r ByteRange) Overlaps(other ByteRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// The position index converts between byte offsets and 1-based
// (line, column) pairs. Columns count Unicode scalar values from the
// line start, never raw bytes, so removing "n characters" via
// LineColToByteRange removes whole characters regardless of their
// encoded width. Every conversion clamps out-of-range input to the
// nearest document boundary; none of them panic.

// LineStartByte returns the byte offset where the 1-based line
// begins. Out-of-range lines clamp to the first or last line.
func (c *Context) LineStartByte(line int) int {
	if len(c.lines) == 0 {
		return 0
	}
	line = clampLine(line, len(c.lines))
	return c.lines[line-1].Start
}

// OffsetToLineCol converts a byte offset to a 1-based line and a
// 1-based column counted in runes from the line start. Offsets past
// the end of the document clamp to the final text position.
func (c *Context) OffsetToLineCol(offset int) (line, col int) {
	if len(c.lines) == 0 {
		return 1, 1
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(c.content) {
		offset = len(c.content)
	}

	idx := sort.Search(len(c.lines), func(i int) bool {
		return c.lines[i].End > offset
	})
	if idx >= len(c.lines) {
		idx = len(c.lines) - 1
	}

	rec := c.lines[idx]
	// The newline never contributes a column.
	end := offset
	if end > rec.TextEnd {
		end = rec.TextEnd
	}
	return idx + 1, utf8.RuneCount(c.content[rec.Start:end]) + 1
}

// LineColToByteRange converts a 1-based (line, column) plus a count
// of runes into the half-open byte range covering those runes. Both
// the column and the count clamp at the end of the line's text, so
// the result is always a valid in-bounds range on rune boundaries.
func (c *Context) LineColToByteRange(line, col, runeCount int) ByteRange {
	if len(c.lines) == 0 {
		return ByteRange{}
	}
	line = clampLine(line, len(c.lines))
	rec := c.lines[line-1]

	start := advanceRunes(c.content, rec.Start, rec.TextEnd, col-1)
	end := advanceRunes(c.content, start, rec.TextEnd, runeCount)
	return ByteRange{Start: start, End: end}
}

// MultiLineByteRange returns the byte range spanning the 1-based
// lines startLine..endLine inclusive, including the trailing newline
// of endLine when present.
func (c *Context) MultiLineByteRange(startLine, endLine int) ByteRange {
	if len(c.lines) == 0 {
		return ByteRange{}
	}
	startLine = clampLine(startLine, len(c.lines))
	endLine = clampLine(endLine, len(c.lines))
	if endLine < startLine {
		startLine, endLine = endLine, startLine
	}
	return ByteRange{Start: c.lines[startLine-1].Start, End: c.lines[endLine-1].End}
}

func clampLine(line, count int) int {
	if line < 1 {
		return 1
	}
	if line > count {
		return count
	}
	return line
}

// advanceRunes moves forward from offset by n runes, stopping at limit.
func advanceRunes(content []byte, offset, limit, n int) int {
	for n > 0 && offset < limit {
		_, size := utf8.DecodeRune(content[offset:limit])
		offset += size
		n--
	}
	return offset
}
