package mdcontext

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// EmphasisSpan is an inline emphasis or strong-emphasis run located
// by the CommonMark parser, which resolves delimiter pairing rules
// that line-based scanning cannot (intraword underscores, mixed
// nesting). ByteStart and ByteEnd include the markers.
type EmphasisSpan struct {
	Line      int // 1-based line of the opening marker
	ByteStart int
	ByteEnd   int
	Marker    byte // '*' or '_'
	Level     int  // 1 emphasis, 2 strong
}

var inlineMarkdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// parseInlineSpans runs goldmark over the document and harvests
// emphasis spans plus whole-construct link and image byte ranges,
// including links that wrap across lines and are invisible to the
// per-line harvester. Spans that goldmark finds inside regions the
// classifier already excluded (front matter parsed as a paragraph,
// extension blocks) are dropped.
func parseInlineSpans(content []byte, lines []LineRecord) (emphasis []EmphasisSpan, linkSpans []ByteRange) {
	if len(content) == 0 {
		return nil, nil
	}
	reader := text.NewReader(content)
	doc := inlineMarkdown.Parser().Parse(reader, parser.WithContext(parser.NewContext()))

	lineExcluded := func(offset int) bool {
		rec := &lines[lineIndexAt(lines, offset)]
		return rec.excluded() || rec.InHTMLBlock
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Emphasis:
			r, ok := textExtent(v)
			if !ok {
				return ast.WalkContinue, nil
			}
			start := r.Start - v.Level
			end := r.End + v.Level
			if start < 0 || end > len(content) || lineExcluded(start) {
				return ast.WalkContinue, nil
			}
			marker := content[start]
			if marker != '*' && marker != '_' {
				return ast.WalkContinue, nil
			}
			emphasis = append(emphasis, EmphasisSpan{
				Line:      lineIndexAt(lines, start) + 1,
				ByteStart: start,
				ByteEnd:   end,
				Marker:    marker,
				Level:     v.Level,
			})

		case *ast.Link, *ast.Image:
			r, ok := textExtent(n)
			if !ok {
				return ast.WalkContinue, nil
			}
			start := r.Start - 1 // the [ before the text
			if _, isImage := n.(*ast.Image); isImage && start > 0 && content[start-1] == '!' {
				start--
			}
			if start < 0 || lineExcluded(start) {
				return ast.WalkContinue, nil
			}
			end := constructEnd(content, r.End)
			linkSpans = append(linkSpans, ByteRange{Start: start, End: end})
		}
		return ast.WalkContinue, nil
	})
	return emphasis, linkSpans
}

// textExtent returns the byte range covered by the text segments
// beneath an inline node.
func textExtent(n ast.Node) (ByteRange, bool) {
	start, end := -1, -1
	var visit func(ast.Node)
	visit = func(node ast.Node) {
		if t, ok := node.(*ast.Text); ok {
			if start < 0 || t.Segment.Start < start {
				start = t.Segment.Start
			}
			if t.Segment.Stop > end {
				end = t.Segment.Stop
			}
		}
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			visit(c)
		}
	}
	visit(n)
	if start < 0 {
		return ByteRange{}, false
	}
	return ByteRange{Start: start, End: end}, true
}

// constructEnd extends a link's text extent past the closing bracket
// and its destination or reference label, tracking parenthesis depth
// so destinations containing parentheses close correctly.
func constructEnd(content []byte, textStop int) int {
	i := textStop
	if i < len(content) && content[i] == ']' {
		i++
	}
	if i >= len(content) {
		return i
	}
	switch content[i] {
	case '(':
		depth := 1
		for j := i + 1; j < len(content); j++ {
			switch content[j] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return j + 1
				}
			case '\n':
				// Destinations stop at a blank line; a single break
				// inside a wrapped link is fine.
				if j+1 < len(content) && content[j+1] == '\n' {
					return i
				}
			}
		}
		return len(content)
	case '[':
		for j := i + 1; j < len(content); j++ {
			if content[j] == ']' {
				return j + 1
			}
			if content[j] == '\n' {
				break
			}
		}
		return i
	}
	return i
}
