package mdcontext

import "bytes"

// ExtFlags marks membership in dialect-specific extension constructs.
// A line may carry more than one flag when the grammars nest (an
// admonition holding a definition list, for example).
type ExtFlags uint16

const (
	// ExtAdmonition marks MkDocs `!!!`/`???` admonition markers and content.
	ExtAdmonition ExtFlags = 1 << iota
	// ExtContentTab marks MkDocs `=== "Tab"` markers and content.
	ExtContentTab
	// ExtDefinitionList marks MkDocs definition-list terms and definitions.
	ExtDefinitionList
	// ExtAutodoc marks mkdocstrings `::: identifier` blocks including
	// their indented YAML option lines.
	ExtAutodoc
	// ExtSlashFence marks PyMdown `///` block delimiter lines.
	ExtSlashFence
	// ExtFencedDiv marks Quarto `:::` div delimiter lines.
	ExtFencedDiv
	// ExtKramdownBlock marks lines inside kramdown `{::...}` extension blocks.
	ExtKramdownBlock
	// ExtKramdownIAL marks standalone kramdown `{: ...}` attribute lines.
	ExtKramdownIAL
	// ExtESM marks MDX import/export statement blocks.
	ExtESM
	// ExtComment marks lines fully inside Obsidian `%%` or MDX `{/* */}` comments.
	ExtComment
)

// opaqueExt covers extensions whose content is not Markdown at all:
// structure facets are cleared and the harvester ignores these lines.
const opaqueExt = ExtAutodoc | ExtKramdownBlock | ExtESM | ExtComment

// HeadingStyle distinguishes the recognized heading syntaxes.
type HeadingStyle uint8

const (
	HeadingATX HeadingStyle = iota
	HeadingATXClosed
	HeadingSetextH1
	HeadingSetextH2
)

// HeadingFacet describes a heading found on a line. Malformed ATX
// headings (missing the space after the hashes) are still recorded,
// with Valid set to false, so spacing rules can flag them.
type HeadingFacet struct {
	Level      int
	Style      HeadingStyle
	Valid      bool
	Marker     string // "#", "##", ... or the setext underline text
	ContentCol int    // 1-based byte column where the heading text begins
	Text       string // heading text without markers or closing hashes
}

// ListItemFacet describes a list item marker found on a line.
type ListItemFacet struct {
	Ordered    bool
	Marker     string // "-", "*", "+", "1.", "17)"
	Number     int    // ordered items only
	Delimiter  byte   // '.' or ')' for ordered items
	MarkerCol  int    // 1-based byte column of the marker start
	ContentCol int    // 1-based byte column of the first content byte
	Task       bool   // item carries a [ ]/[x] checkbox
	TaskChar   byte   // the checkbox character when Task is true
}

// BlockquoteFacet describes the blockquote prefix of a line.
type BlockquoteFacet struct {
	Depth      int
	Prefix     string // literal prefix text up to and including the last marker space
	ContentCol int    // 1-based byte column where content after the markers begins
}

// LineRecord describes one physical line. Offsets refer to the
// normalized content; Start..TextEnd is the text, TextEnd..End the
// newline (empty on the final line when the file lacks one).
type LineRecord struct {
	Start   int
	TextEnd int
	End     int
	Blank   bool

	InFrontMatter  bool
	InFencedCode   bool
	InIndentedCode bool
	InHTMLComment  bool
	InHTMLBlock    bool
	Ext            ExtFlags

	// HorizontalRule marks thematic break lines. Front matter
	// delimiters never carry it; blank-line rules rely on the
	// distinction.
	HorizontalRule bool

	// CodeSpanContinuation marks lines that continue a code span
	// opened on an earlier line.
	CodeSpanContinuation bool

	Heading    *HeadingFacet
	ListItem   *ListItemFacet
	Blockquote *BlockquoteFacet
}

// Len returns the text length in bytes, excluding the newline.
func (lr *LineRecord) Len() int { return lr.TextEnd - lr.Start }

// InCode reports whether the line sits in fenced or indented code.
func (lr *LineRecord) InCode() bool { return lr.InFencedCode || lr.InIndentedCode }

// InExtension reports whether any dialect extension flag is set.
func (lr *LineRecord) InExtension() bool { return lr.Ext != 0 }

// OpaqueExtension reports whether the line belongs to an extension
// whose content is not Markdown (ESM code, autodoc options, kramdown
// extension blocks, comments). Structural facets are never attached
// to such lines.
func (lr *LineRecord) OpaqueExtension() bool { return lr.Ext&opaqueExt != 0 }

// excluded reports whether structure detection must skip the line.
func (lr *LineRecord) excluded() bool {
	return lr.InFrontMatter || lr.InFencedCode || lr.InIndentedCode ||
		lr.InHTMLComment || lr.OpaqueExtension()
}

// normalizeLineEndings rewrites CRLF and lone CR to LF. It returns
// the normalized text and whether any CR was found.
func normalizeLineEndings(content []byte) ([]byte, bool) {
	if !bytes.ContainsRune(content, '\r') {
		return content, false
	}
	out := make([]byte, 0, len(content))
	for i := 0; i < len(content); i++ {
		if content[i] == '\r' {
			if i+1 < len(content) && content[i+1] == '\n' {
				i++
			}
			out = append(out, '\n')
			continue
		}
		out = append(out, content[i])
	}
	return out, true
}

// RestoreCRLF rewrites every LF back to CRLF. Callers writing fixed
// content for a document whose Context reports HadCRLF use it to
// preserve the file's original line endings.
func RestoreCRLF(content []byte) []byte {
	if !bytes.ContainsRune(content, '\n') {
		return content
	}
	out := make([]byte, 0, len(content)+bytes.Count(content, []byte("\n")))
	for _, ch := range content {
		if ch == '\n' {
			out = append(out, '\r', '\n')
			continue
		}
		out = append(out, ch)
	}
	return out
}

// buildLineTable constructs one LineRecord per physical line of the
// normalized content. A trailing newline does not create a phantom
// empty line; the final record's End always equals len(content).
func buildLineTable(content []byte) []LineRecord {
	if len(content) == 0 {
		return nil
	}

	var lines []LineRecord
	lineStart := 0
	for idx, ch := range content {
		if ch != '\n' {
			continue
		}
		lines = append(lines, LineRecord{
			Start:   lineStart,
			TextEnd: idx,
			End:     idx + 1,
			Blank:   isBlank(content[lineStart:idx]),
		})
		lineStart = idx + 1
	}

	if lineStart < len(content) {
		lines = append(lines, LineRecord{
			Start:   lineStart,
			TextEnd: len(content),
			End:     len(content),
			Blank:   isBlank(content[lineStart:]),
		})
	}

	return lines
}

func isBlank(text []byte) bool {
	for _, b := range text {
		if b != ' ' && b != '\t' {
			return false
		}
	}
	return true
}
