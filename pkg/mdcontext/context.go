// Package mdcontext builds the shared structural context for one
// Markdown document: a per-line classification of block membership,
// structural facets (headings, list items, blockquotes), harvested
// inline entities (links, images, reference definitions, code and
// math spans), table and list groupings, and a position index for
// byte/line/column conversions.
//
// The context is constructed once per (content, dialect) pair and is
// immutable afterwards, so one instance is safely shared by every
// rule evaluating the document, across goroutines, with no locking.
// Construction never fails: malformed input degrades to entities
// marked invalid, and unterminated blocks extend to end of document.
package mdcontext

import (
	"strings"

	"github.com/yaklabco/marklint/pkg/config"
)

// Context is the analysis context for a single document. All fields
// are populated by New and read-only afterwards.
type Context struct {
	content []byte
	dialect config.Dialect
	hadCRLF bool

	lines          []LineRecord
	frontMatterEnd int // 0-based index of the closing delimiter, -1 when absent

	codeBlocks     []CodeBlockInfo
	commentRanges  []ByteRange
	jsxRanges      []ByteRange
	mdxComments    []ByteRange
	obsidianRanges []ByteRange

	codeSpans []CodeSpan
	mathSpans []MathSpan
	emphasis  []EmphasisSpan
	linkSpans []ByteRange

	links     []LinkRef
	images    []ImageRef
	refDefs   []ReferenceDef
	refDefMap map[string]*ReferenceDef
	autolinks []Autolink
	footnotes []FootnoteRef

	tables     []TableBlock
	listBlocks []ListBlock

	freq prefilter
}

// New builds the context for content under the given dialect. Line
// endings are normalized to LF first; HadCRLF reports whether the
// original used CRLF so writers can restore it. The input slice is
// never retained or mutated.
func New(content []byte, dialect config.Dialect) *Context {
	normalized, hadCRLF := normalizeLineEndings(content)
	if !hadCRLF {
		normalized = append([]byte(nil), content...)
	}

	c := &Context{
		content: normalized,
		dialect: dialect,
		hadCRLF: hadCRLF,
		lines:   buildLineTable(normalized),
	}

	c.frontMatterEnd = detectFrontMatterEnd(c.lines, c.content)
	fences, comments := classifyBlocks(c.content, c.lines, c.frontMatterEnd)
	c.commentRanges = comments
	suppressListIndentedCode(c.content, c.lines)

	detectMkDocsConstructs(c.content, c.lines, dialect)
	detectPyMdownBlocks(c.content, c.lines, dialect)
	detectAutodocBlocks(c.content, c.lines, dialect)
	detectQuartoDivs(c.content, c.lines, dialect)
	detectESMBlocks(c.content, c.lines, dialect)
	c.jsxRanges, c.mdxComments = detectJSXAndComments(c.content, c.lines, dialect)
	detectKramdownConstructs(c.content, c.lines, dialect)

	c.codeBlocks = append(fences, groupIndentedBlocks(c.lines)...)
	sortCodeBlocks(c.codeBlocks)

	c.codeSpans = detectCodeSpans(c.content, c.lines)
	c.obsidianRanges = detectObsidianComments(c.content, c.lines, dialect, c.codeSpans)
	markCodeSpanContinuations(c.lines, c.codeSpans)
	c.mathSpans = detectMathSpans(c.content, c.lines, dialect, c.codeSpans)

	detectBlockquotes(c.content, c.lines)
	detectListItems(c.content, c.lines, dialect)
	detectATXHeadings(c.content, c.lines)
	c.tables = detectTableBlocks(c.content, c.lines, c.codeSpans)
	inTable := tableLineSet(c.tables, len(c.lines))
	setextConsumed := detectSetextHeadings(c.content, c.lines, inTable)
	markHorizontalRules(c.content, c.lines, inTable, setextConsumed)

	c.emphasis, c.linkSpans = parseInlineSpans(c.content, c.lines)
	c.links, c.images, c.refDefs, c.autolinks, c.footnotes = harvestLinks(c.content, c.lines, c.codeSpans)
	c.refDefMap = buildRefDefMap(c.refDefs)

	c.listBlocks = groupListBlocks(c.content, c.lines)
	c.freq = buildPrefilter(c.content)
	return c
}

// Content returns the normalized document bytes. Callers must not
// modify the slice.
func (c *Context) Content() []byte { return c.content }

// Dialect returns the dialect the context was built for.
func (c *Context) Dialect() config.Dialect { return c.dialect }

// HadCRLF reports whether the original input used CRLF or CR line
// endings before normalization.
func (c *Context) HadCRLF() bool { return c.hadCRLF }

// Lines returns the line table. Indices are 0-based; callers must
// not modify the records.
func (c *Context) Lines() []LineRecord { return c.lines }

// LineCount returns the number of physical lines.
func (c *Context) LineCount() int { return len(c.lines) }

// Line returns the record for a 0-based index, clamped to the table.
func (c *Context) Line(i int) *LineRecord {
	if len(c.lines) == 0 {
		return &LineRecord{}
	}
	if i < 0 {
		i = 0
	}
	if i >= len(c.lines) {
		i = len(c.lines) - 1
	}
	return &c.lines[i]
}

// RawLine returns the verbatim text of the 0-based line without its
// terminator.
func (c *Context) RawLine(i int) string {
	if i < 0 || i >= len(c.lines) {
		return ""
	}
	return lineText(c.content, c.lines[i])
}

// RawLines returns the verbatim text of every line, without
// terminators, for rules that need whole-document line access.
func (c *Context) RawLines() []string {
	out := make([]string, len(c.lines))
	for i := range c.lines {
		out[i] = lineText(c.content, c.lines[i])
	}
	return out
}

// HasFrontMatter reports whether the document opens with terminated
// front matter.
func (c *Context) HasFrontMatter() bool { return c.frontMatterEnd >= 0 }

// FrontMatterEnd returns the 0-based line index of the closing front
// matter delimiter, or -1.
func (c *Context) FrontMatterEnd() int { return c.frontMatterEnd }

// FirstContentLine returns the 0-based index of the first line after
// front matter, which heading rules treat as the document start.
func (c *Context) FirstContentLine() int { return c.frontMatterEnd + 1 }

// CodeBlocks returns fenced and indented code blocks in document
// order.
func (c *Context) CodeBlocks() []CodeBlockInfo { return c.codeBlocks }

// HTMLCommentRanges returns the byte ranges of HTML comments,
// including comments that open and close within one line.
func (c *Context) HTMLCommentRanges() []ByteRange { return c.commentRanges }

// JSXRanges returns brace-delimited JSX expression ranges (MDX).
func (c *Context) JSXRanges() []ByteRange { return c.jsxRanges }

// MDXCommentRanges returns {/* ... */} comment ranges (MDX).
func (c *Context) MDXCommentRanges() []ByteRange { return c.mdxComments }

// ObsidianCommentRanges returns %% ... %% comment ranges (Obsidian).
func (c *Context) ObsidianCommentRanges() []ByteRange { return c.obsidianRanges }

// CodeSpans returns inline code spans in document order.
func (c *Context) CodeSpans() []CodeSpan { return c.codeSpans }

// MathSpans returns inline and display math spans for math dialects.
func (c *Context) MathSpans() []MathSpan { return c.mathSpans }

// EmphasisSpans returns emphasis runs located by the inline parser.
func (c *Context) EmphasisSpans() []EmphasisSpan { return c.emphasis }

// LinkSpans returns whole-construct byte ranges for links and
// images, including constructs that wrap across lines.
func (c *Context) LinkSpans() []ByteRange { return c.linkSpans }

// Links returns harvested links.
func (c *Context) Links() []LinkRef { return c.links }

// Images returns harvested images.
func (c *Context) Images() []ImageRef { return c.images }

// ReferenceDefs returns reference definitions in document order.
func (c *Context) ReferenceDefs() []ReferenceDef { return c.refDefs }

// ReferenceDef resolves a reference label case-insensitively. The
// first definition of a duplicated label wins.
func (c *Context) ReferenceDef(label string) (*ReferenceDef, bool) {
	def, ok := c.refDefMap[strings.ToLower(label)]
	return def, ok
}

// Autolinks returns harvested angle-bracket autolinks.
func (c *Context) Autolinks() []Autolink { return c.autolinks }

// FootnoteRefs returns footnote usages and definitions in document
// order.
func (c *Context) FootnoteRefs() []FootnoteRef { return c.footnotes }

// Tables returns detected table blocks in document order.
func (c *Context) Tables() []TableBlock { return c.tables }

// ListBlocks returns grouped list blocks in document order.
func (c *Context) ListBlocks() []ListBlock { return c.listBlocks }

// TableCellRanges splits the 0-based line into cell content byte
// ranges, masking pipes inside code spans and escaped pipes. Nil
// means the line has no effective pipe.
func (c *Context) TableCellRanges(i int) []ByteRange {
	if i < 0 || i >= len(c.lines) {
		return nil
	}
	return rowCellRanges(c.content, &c.lines[i], c.codeSpans)
}

// IsInCodeSpan reports whether the byte offset falls inside an
// inline code span.
func (c *Context) IsInCodeSpan(offset int) bool {
	return insideSpan(c.codeSpans, offset)
}

// IsInMathSpan reports whether the byte offset falls inside a math
// span. Always false for dialects that do not render math.
func (c *Context) IsInMathSpan(offset int) bool {
	for _, s := range c.mathSpans {
		if offset >= s.ByteStart && offset < s.ByteEnd {
			return true
		}
		if s.ByteStart > offset {
			break
		}
	}
	return false
}

// IsInHTMLComment reports whether the byte offset falls inside an
// HTML comment range.
func (c *Context) IsInHTMLComment(offset int) bool {
	for _, r := range c.commentRanges {
		if r.Contains(offset) {
			return true
		}
		if r.Start > offset {
			break
		}
	}
	return false
}
