package mdcontext

import (
	"unicode/utf8"

	"github.com/yaklabco/marklint/pkg/config"
)

// CodeSpan is an inline backtick-delimited span. Byte offsets cover
// the delimiters; Content is the raw text between them without the
// CommonMark single-space trim, so rules can see the exact source.
type CodeSpan struct {
	Line      int // 1-based line of the opening run
	EndLine   int // 1-based line of the closing run
	Col       int // 1-based rune column of the opening run
	ByteStart int
	ByteEnd   int
	Backticks int // delimiter run length
	Content   string
}

// MathSpan is a TeX math region for dialects that render math.
// Display spans use $$ delimiters and may cross lines; inline spans
// use single $ and stay on one line.
type MathSpan struct {
	Line      int
	EndLine   int
	ByteStart int
	ByteEnd   int
	Display   bool
}

// backtickRun is a maximal run of backticks outside code blocks.
// Runs in different segments never pair: a segment break is a blank,
// code, front matter, or HTML-comment line, matching where a
// paragraph (and with it any open span) ends.
type backtickRun struct {
	start   int
	length  int
	lineIdx int
	segment int
}

func collectBacktickRuns(content []byte, lines []LineRecord) []backtickRun {
	var runs []backtickRun
	segment := 0
	for li := range lines {
		rec := &lines[li]
		if rec.Blank || rec.excluded() {
			segment++
			continue
		}
		i := rec.Start
		for i < rec.TextEnd {
			if content[i] != '`' {
				i++
				continue
			}
			j := i
			for j < rec.TextEnd && content[j] == '`' {
				j++
			}
			start, length := i, j-i
			if i > rec.Start && content[i-1] == '\\' {
				// A backslash escapes the first backtick of the run.
				start++
				length--
			}
			if length > 0 {
				runs = append(runs, backtickRun{start: start, length: length, lineIdx: li, segment: segment})
			}
			i = j
		}
	}
	return runs
}

// detectCodeSpans pairs backtick runs of equal length within a
// segment. A run that finds no equal-length partner is literal text,
// and the runs it skipped over are still free to pair among
// themselves.
func detectCodeSpans(content []byte, lines []LineRecord) []CodeSpan {
	runs := collectBacktickRuns(content, lines)
	if len(runs) == 0 {
		return nil
	}

	var spans []CodeSpan
	consumed := make([]bool, len(runs))
	for i := 0; i < len(runs); i++ {
		if consumed[i] {
			continue
		}
		opener := runs[i]
		for j := i + 1; j < len(runs); j++ {
			if runs[j].segment != opener.segment {
				break
			}
			if consumed[j] || runs[j].length != opener.length {
				continue
			}
			closer := runs[j]
			spans = append(spans, CodeSpan{
				Line:      opener.lineIdx + 1,
				EndLine:   closer.lineIdx + 1,
				Col:       runeColumn(content, lines[opener.lineIdx].Start, opener.start),
				ByteStart: opener.start,
				ByteEnd:   closer.start + closer.length,
				Backticks: opener.length,
				Content:   string(content[opener.start+opener.length : closer.start]),
			})
			// Runs between the pair are span content, not openers.
			for k := i; k <= j; k++ {
				consumed[k] = true
			}
			break
		}
	}
	return spans
}

// markCodeSpanContinuations flags every line that starts inside a
// multi-line code span, closing line included.
func markCodeSpanContinuations(lines []LineRecord, spans []CodeSpan) {
	for _, s := range spans {
		for li := s.Line + 1; li <= s.EndLine && li <= len(lines); li++ {
			lines[li-1].CodeSpanContinuation = true
		}
	}
}

// detectMathSpans finds $$ display blocks and single-$ inline math.
// Dollar signs inside code spans are plain text.
func detectMathSpans(content []byte, lines []LineRecord, dialect config.Dialect, codeSpans []CodeSpan) []MathSpan {
	if !dialect.SupportsMath() {
		return nil
	}

	inSpan := func(pos int) bool {
		for _, s := range codeSpans {
			if pos >= s.ByteStart && pos < s.ByteEnd {
				return true
			}
		}
		return false
	}

	var spans []MathSpan
	cur := 0
	i := 0
	for i < len(content) {
		for cur < len(lines)-1 && i >= lines[cur].End {
			cur++
		}
		if lines[cur].excluded() {
			i = lines[cur].End
			continue
		}
		if content[i] != '$' || inSpan(i) {
			i++
			continue
		}
		if i > 0 && content[i-1] == '\\' {
			i++
			continue
		}

		if i+1 < len(content) && content[i+1] == '$' {
			end := -1
			for j := i + 2; j+1 < len(content); j++ {
				if content[j] == '$' && content[j+1] == '$' && content[j-1] != '\\' {
					end = j + 2
					break
				}
			}
			if end < 0 {
				i += 2
				continue
			}
			spans = append(spans, MathSpan{
				Line:      lineIndexAt(lines, i) + 1,
				EndLine:   lineIndexAt(lines, end-1) + 1,
				ByteStart: i,
				ByteEnd:   end,
				Display:   true,
			})
			i = end
			continue
		}

		// Inline math: $x$ with no space after the opener, no space
		// before the closer, all on one line.
		lineEnd := lines[cur].TextEnd
		if i+1 >= lineEnd || content[i+1] == ' ' || content[i+1] == '\t' {
			i++
			continue
		}
		closed := false
		for j := i + 1; j < lineEnd; j++ {
			if content[j] != '$' || content[j-1] == '\\' {
				continue
			}
			if content[j-1] == ' ' || content[j-1] == '\t' {
				break
			}
			spans = append(spans, MathSpan{
				Line:      cur + 1,
				EndLine:   cur + 1,
				ByteStart: i,
				ByteEnd:   j + 1,
			})
			i = j + 1
			closed = true
			break
		}
		if !closed {
			i++
		}
	}
	return spans
}

// runeColumn converts a byte offset to a 1-based rune column given
// the byte offset of its line start.
func runeColumn(content []byte, lineStart, offset int) int {
	return utf8.RuneCount(content[lineStart:offset]) + 1
}

// lineIndexAt finds the 0-based line containing the byte offset.
func lineIndexAt(lines []LineRecord, offset int) int {
	lo, hi := 0, len(lines)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if lines[mid].End <= offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
