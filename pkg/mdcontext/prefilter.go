package mdcontext

import "bytes"

// prefilter is a byte histogram plus a few substring facts, computed
// once so rule entry points can bail out without touching structure.
type prefilter struct {
	counts        [256]int
	twoSpaces     bool
	spaceNewline  bool
	endsWithSpace bool
}

func buildPrefilter(content []byte) prefilter {
	var p prefilter
	for _, b := range content {
		p.counts[b]++
	}
	p.twoSpaces = bytes.Contains(content, []byte("  "))
	p.spaceNewline = bytes.Contains(content, []byte(" \n")) || bytes.Contains(content, []byte("\t\n"))
	n := len(content)
	p.endsWithSpace = n > 0 && (content[n-1] == ' ' || content[n-1] == '\t')
	return p
}

func (p *prefilter) has(b byte) bool  { return p.counts[b] > 0 }
func (p *prefilter) count(b byte) int { return p.counts[b] }

// HasChar reports whether the byte occurs anywhere in the document.
func (c *Context) HasChar(b byte) bool { return c.freq.has(b) }

// CharCount returns how many times the byte occurs in the document.
func (c *Context) CharCount(b byte) int { return c.freq.count(b) }

// LikelyHasHeadings reports whether any heading marker byte occurs.
func (c *Context) LikelyHasHeadings() bool {
	return c.freq.has('#') || c.freq.has('=') || c.freq.has('-')
}

// LikelyHasLists reports whether any list marker byte occurs.
func (c *Context) LikelyHasLists() bool {
	if c.freq.has('-') || c.freq.has('*') || c.freq.has('+') {
		return true
	}
	for b := byte('0'); b <= '9'; b++ {
		if c.freq.has(b) {
			return c.freq.has('.') || c.freq.has(')')
		}
	}
	return false
}

// LikelyHasEmphasis reports whether * or _ occurs.
func (c *Context) LikelyHasEmphasis() bool { return c.freq.has('*') || c.freq.has('_') }

// LikelyHasCode reports whether a fence byte occurs.
func (c *Context) LikelyHasCode() bool { return c.freq.has('`') || c.freq.has('~') }

// LikelyHasTables reports whether a pipe occurs.
func (c *Context) LikelyHasTables() bool { return c.freq.has('|') }

// LikelyHasLinks reports whether link syntax can occur.
func (c *Context) LikelyHasLinks() bool { return c.freq.has('[') || c.freq.has('<') }

// LikelyHasImages reports whether image syntax can occur.
func (c *Context) LikelyHasImages() bool { return c.freq.has('!') && c.freq.has('[') }

// LikelyHasBlockquotes reports whether > occurs.
func (c *Context) LikelyHasBlockquotes() bool { return c.freq.has('>') }

// LikelyHasHTML reports whether a tag opener occurs.
func (c *Context) LikelyHasHTML() bool { return c.freq.has('<') }

// LikelyHasMath reports whether a dollar sign occurs.
func (c *Context) LikelyHasMath() bool { return c.freq.has('$') }

// HasTwoSpaces reports whether two consecutive spaces occur anywhere.
func (c *Context) HasTwoSpaces() bool { return c.freq.twoSpaces }

// HasTabs reports whether a tab occurs anywhere.
func (c *Context) HasTabs() bool { return c.freq.has('\t') }

// HasTrailingWhitespace reports whether any line can end in spaces
// or tabs.
func (c *Context) HasTrailingWhitespace() bool {
	return c.freq.spaceNewline || c.freq.endsWithSpace
}
