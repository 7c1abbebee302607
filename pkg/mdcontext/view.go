package mdcontext

import "iter"

// LineFilter selects which block classifications a filtered view
// skips. Combine with bitwise or.
type LineFilter uint8

const (
	FilterFrontMatter LineFilter = 1 << iota
	FilterFencedCode
	FilterIndentedCode
	FilterHTMLBlock
	FilterHTMLComment
	FilterExtensions // any dialect extension flag
	FilterBlank

	FilterCode = FilterFencedCode | FilterIndentedCode
	// FilterDefault skips everything that is not plain Markdown text.
	FilterDefault = FilterFrontMatter | FilterCode | FilterHTMLComment | FilterExtensions
)

func (f LineFilter) skips(rec *LineRecord, extMask ExtFlags) bool {
	switch {
	case f&FilterFrontMatter != 0 && rec.InFrontMatter:
		return true
	case f&FilterFencedCode != 0 && rec.InFencedCode:
		return true
	case f&FilterIndentedCode != 0 && rec.InIndentedCode:
		return true
	case f&FilterHTMLBlock != 0 && rec.InHTMLBlock:
		return true
	case f&FilterHTMLComment != 0 && rec.InHTMLComment:
		return true
	case f&FilterExtensions != 0 && rec.Ext&extMask != 0:
		return true
	case f&FilterBlank != 0 && rec.Blank:
		return true
	}
	return false
}

// FilteredLines returns a restartable sequence over the line table
// that skips lines matching the filter. Keys are 0-based indices
// into Lines. FilterExtensions skips every extension flag; use
// FilteredLinesExt to skip only a subset.
func (c *Context) FilteredLines(skip LineFilter) iter.Seq2[int, *LineRecord] {
	return c.FilteredLinesExt(skip, ^ExtFlags(0))
}

// FilteredLinesExt is FilteredLines with an explicit extension mask:
// only lines whose flags intersect extMask are skipped when
// FilterExtensions is set.
func (c *Context) FilteredLinesExt(skip LineFilter, extMask ExtFlags) iter.Seq2[int, *LineRecord] {
	return func(yield func(int, *LineRecord) bool) {
		for i := range c.lines {
			rec := &c.lines[i]
			if skip.skips(rec, extMask) {
				continue
			}
			if !yield(i, rec) {
				return
			}
		}
	}
}
