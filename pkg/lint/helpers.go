package lint

import (
	"bytes"

	"github.com/yaklabco/marklint/pkg/mdcontext"
)

// Line-based helpers. Line indices are 0-based to match mdcontext;
// spans convert to 1-based on the way out.

// LineContent returns the text of the given line, excluding the newline.
// Returns nil if the line index is out of range.
func LineContent(doc *mdcontext.Context, line int) []byte {
	if doc == nil || line < 0 || line >= doc.LineCount() {
		return nil
	}
	rec := doc.Line(line)
	return doc.Content()[rec.Start:rec.TextEnd]
}

// LineLength returns the byte length of the given line (excluding newline).
// Returns 0 if the line index is out of range.
func LineLength(doc *mdcontext.Context, line int) int {
	if doc == nil || line < 0 || line >= doc.LineCount() {
		return 0
	}
	return doc.Line(line).Len()
}

// IsBlankLine returns true if the line contains only whitespace.
func IsBlankLine(doc *mdcontext.Context, line int) bool {
	if doc == nil || line < 0 || line >= doc.LineCount() {
		return false
	}
	return doc.Line(line).Blank
}

// HasTrailingWhitespace returns true if the line ends with a space or tab.
func HasTrailingWhitespace(doc *mdcontext.Context, line int) bool {
	content := LineContent(doc, line)
	if len(content) == 0 {
		return false
	}
	last := content[len(content)-1]
	return last == ' ' || last == '\t'
}

// TrailingWhitespaceRange returns the byte range of trailing whitespace on a
// line. Returns (-1, -1) if there is none or the line is out of range.
func TrailingWhitespaceRange(doc *mdcontext.Context, line int) (int, int) {
	if doc == nil || line < 0 || line >= doc.LineCount() {
		return -1, -1
	}
	rec := doc.Line(line)
	content := doc.Content()[rec.Start:rec.TextEnd]
	if len(content) == 0 {
		return -1, -1
	}

	endOffset := rec.TextEnd
	startOffset := endOffset
	for idx := len(content) - 1; idx >= 0; idx-- {
		if content[idx] != ' ' && content[idx] != '\t' {
			break
		}
		startOffset = rec.Start + idx
	}

	if startOffset == endOffset {
		return -1, -1
	}
	return startOffset, endOffset
}

// CountBlankLinesBefore counts consecutive blank lines before a given line.
func CountBlankLinesBefore(doc *mdcontext.Context, line int) int {
	if doc == nil || line <= 0 {
		return 0
	}
	count := 0
	for ln := line - 1; ln >= 0; ln-- {
		if !doc.Line(ln).Blank {
			break
		}
		count++
	}
	return count
}

// CountBlankLinesAfter counts consecutive blank lines after a given line.
func CountBlankLinesAfter(doc *mdcontext.Context, line int) int {
	if doc == nil || line < 0 || line >= doc.LineCount()-1 {
		return 0
	}
	count := 0
	for ln := line + 1; ln < doc.LineCount(); ln++ {
		if !doc.Line(ln).Blank {
			break
		}
		count++
	}
	return count
}

// LineContainsURL returns true if the line contains a URL (http:// or https://).
func LineContainsURL(doc *mdcontext.Context, line int) bool {
	content := LineContent(doc, line)
	return bytes.Contains(content, []byte("http://")) || bytes.Contains(content, []byte("https://"))
}

// Span helpers.

// SpanForLine returns a span covering the whole text of a 0-based line.
func SpanForLine(doc *mdcontext.Context, line int) Span {
	length := LineLength(doc, line)
	return Span{StartLine: line + 1, StartColumn: 1, EndLine: line + 1, EndColumn: length + 1}
}

// SpanForByteRange converts a byte range to a line/column span using the
// document's position index.
func SpanForByteRange(doc *mdcontext.Context, start, end int) Span {
	startLine, startCol := doc.OffsetToLineCol(start)
	endLine, endCol := doc.OffsetToLineCol(end)
	return Span{
		StartLine:   startLine,
		StartColumn: startCol,
		EndLine:     endLine,
		EndColumn:   endCol,
	}
}

// SpanForLineRange returns a span from the start of one 0-based line to the
// end of another.
func SpanForLineRange(doc *mdcontext.Context, startLine, endLine int) Span {
	return Span{
		StartLine:   startLine + 1,
		StartColumn: 1,
		EndLine:     endLine + 1,
		EndColumn:   LineLength(doc, endLine) + 1,
	}
}

// Structural lookups.

// Heading pairs a 0-based line index with the heading facet on that line.
// Setext facets sit on the content line, not the underline.
type Heading struct {
	Line  int
	Facet *mdcontext.HeadingFacet
}

// Headings returns every heading line with its facet, in document order.
func Headings(doc *mdcontext.Context) []Heading {
	if doc == nil || !doc.LikelyHasHeadings() {
		return nil
	}
	var hs []Heading
	lines := doc.Lines()
	for i := range lines {
		if lines[i].Heading != nil {
			hs = append(hs, Heading{Line: i, Facet: lines[i].Heading})
		}
	}
	return hs
}

// FirstHeading returns the first heading in the document, or nil if none.
func FirstHeading(doc *mdcontext.Context) *Heading {
	hs := Headings(doc)
	if len(hs) == 0 {
		return nil
	}
	return &hs[0]
}

// HeadingSpan returns a span covering the heading's full line.
func HeadingSpan(doc *mdcontext.Context, h Heading) Span {
	return SpanForLine(doc, h.Line)
}

// SetextUnderlineLine returns the 0-based line index of the underline for a
// setext heading at the given line, or -1 for ATX headings.
func SetextUnderlineLine(doc *mdcontext.Context, h Heading) int {
	if h.Facet == nil {
		return -1
	}
	switch h.Facet.Style {
	case mdcontext.HeadingSetextH1, mdcontext.HeadingSetextH2:
		return h.Line + 1
	default:
		return -1
	}
}
