package refs

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/yaklabco/marklint/pkg/mdcontext"
)

// Collect builds a reference Context from a document's structural context.
// Definitions, usages, and anchors come from the precomputed line table
// and entity collections; only shortcut references and HTML anchors need
// an extra scan.
func Collect(doc *mdcontext.Context, filePath string) *Context {
	ctx := NewContext(doc, filePath)
	if doc == nil {
		return ctx
	}

	coll := &collector{ctx: ctx, doc: doc}
	coll.collectDefinitions()
	coll.collectAnchors()
	coll.collectUsages()
	coll.resolveReferences()

	return ctx
}

// collector builds a Context from the structural context.
type collector struct {
	ctx *Context
	doc *mdcontext.Context

	// harvested holds the byte ranges of links, images, and autolinks
	// already recorded, so the shortcut scan does not double-count.
	harvested []byteRange
}

type byteRange struct {
	start, end int
}

// collectDefinitions records reference definitions. The first
// definition of a label wins; later ones are marked duplicates. Each
// definition's byte range is reserved so the shortcut scan does not
// read the definition's own label as a usage.
func (c *collector) collectDefinitions() {
	for _, rd := range c.doc.ReferenceDefs() {
		normalized := NormalizeLabel(rd.Label)

		def := &ReferenceDefinition{
			Label:           rd.Label,
			NormalizedLabel: normalized,
			Destination:     rd.URL,
			Title:           rd.Title,
			LineNumber:      rd.Line,
			ByteStart:       rd.ByteStart,
			ByteEnd:         rd.ByteEnd,
		}

		if _, exists := c.ctx.Definitions[normalized]; exists {
			def.IsDuplicate = true
		} else {
			c.ctx.Definitions[normalized] = def
		}

		c.ctx.AllDefinitions = append(c.ctx.AllDefinitions, def)
		c.harvested = append(c.harvested, byteRange{rd.ByteStart, rd.ByteEnd})
	}
}

// customIDPattern matches a kramdown-style {#custom-id} attribute at
// the end of heading text.
var customIDPattern = regexp.MustCompile(`\{#([A-Za-z][A-Za-z0-9_-]*)\}\s*$`)

// htmlAttrPattern matches HTML attributes like id="value" or id='value'.
var htmlAttrPattern = regexp.MustCompile(`(?i)\b(id|name)\s*=\s*["']([^"']+)["']`)

// collectAnchors walks the line table in document order, generating
// heading anchors and harvesting explicit HTML id/name attributes.
func (c *collector) collectAnchors() {
	content := c.doc.Content()
	scanHTML := c.doc.LikelyHasHTML()

	for i, rec := range c.doc.Lines() {
		if rec.Blank || rec.InFrontMatter || rec.InCode() ||
			rec.InHTMLComment || rec.OpaqueExtension() {
			continue
		}
		lineNum := i + 1

		if h := rec.Heading; h != nil && h.Valid {
			c.addHeadingAnchor(h.Text, lineNum)
		}

		if !scanHTML {
			continue
		}
		text := content[rec.Start:rec.TextEnd]
		if !rec.InHTMLBlock && !bytes.ContainsRune(text, '<') {
			continue
		}
		c.scanHTMLAnchors(text, rec.Start, lineNum)
	}
}

// addHeadingAnchor registers the anchor for one heading. A kramdown
// {#custom-id} attribute replaces the generated anchor.
func (c *collector) addHeadingAnchor(text string, lineNum int) {
	if m := customIDPattern.FindStringSubmatch(text); m != nil {
		stripped := strings.TrimSpace(strings.TrimSuffix(text, m[0]))
		c.ctx.Anchors.Add(&Anchor{
			ID:     m[1],
			Source: AnchorFromCustomID,
			Line:   lineNum,
			Text:   stripped,
		})
		return
	}

	if strings.TrimSpace(text) == "" {
		return
	}
	c.ctx.Anchors.AddFromHeading(text, lineNum)
}

// scanHTMLAnchors extracts id and name attributes from one line.
func (c *collector) scanHTMLAnchors(text []byte, lineStart, lineNum int) {
	matches := htmlAttrPattern.FindAllSubmatchIndex(text, -1)
	for _, m := range matches {
		if c.doc.IsInCodeSpan(lineStart + m[0]) {
			continue
		}

		source := AnchorFromHTMLID
		if strings.EqualFold(string(text[m[2]:m[3]]), "name") {
			source = AnchorFromHTMLName
		}

		c.ctx.Anchors.Add(&Anchor{
			ID:     string(text[m[4]:m[5]]),
			Source: source,
			Line:   lineNum,
		})
	}
}

// collectUsages records link, image, and autolink usages, then scans
// for shortcut references the entity harvest does not cover.
func (c *collector) collectUsages() {
	content := c.doc.Content()

	for _, l := range c.doc.Links() {
		style, label := classifyStyle(content, l.ByteStart, l.ByteEnd, l.Reference, l.Label)
		c.addUsage(&ReferenceUsage{
			Style:           style,
			IsImage:         false,
			Text:            l.Text,
			Label:           label,
			NormalizedLabel: NormalizeLabel(label),
			Destination:     l.URL,
			Fragment:        ExtractFragment(l.URL),
			Line:            l.Line,
			ByteStart:       l.ByteStart,
			ByteEnd:         l.ByteEnd,
		})
	}

	for _, img := range c.doc.Images() {
		style, label := classifyStyle(content, img.ByteStart, img.ByteEnd, img.Reference, img.Label)
		c.addUsage(&ReferenceUsage{
			Style:           style,
			IsImage:         true,
			Text:            img.Alt,
			Label:           label,
			NormalizedLabel: NormalizeLabel(label),
			Destination:     img.URL,
			Fragment:        ExtractFragment(img.URL),
			Line:            img.Line,
			ByteStart:       img.ByteStart,
			ByteEnd:         img.ByteEnd,
		})
	}

	for _, a := range c.doc.Autolinks() {
		c.addUsage(&ReferenceUsage{
			Style:       StyleAutolink,
			Text:        a.URL,
			Destination: a.URL,
			Fragment:    ExtractFragment(a.URL),
			Line:        a.Line,
			ByteStart:   a.ByteStart,
			ByteEnd:     a.ByteEnd,
		})
	}

	c.collectShortcuts()

	sort.Slice(c.ctx.Usages, func(i, j int) bool {
		return c.ctx.Usages[i].ByteStart < c.ctx.Usages[j].ByteStart
	})
}

// classifyStyle distinguishes inline, full, and collapsed syntax.
// Collapsed references end with an empty label pair.
func classifyStyle(content []byte, start, end int, reference bool, label string) (ReferenceStyle, string) {
	if !reference {
		return StyleInline, ""
	}
	if end-start >= 2 && end <= len(content) && content[end-2] == '[' && content[end-1] == ']' {
		return StyleCollapsed, label
	}
	return StyleFull, label
}

// addUsage records a harvested usage and reserves its byte range so
// the shortcut scan skips it. Shortcut usages found later bypass the
// reservation; their matches are disjoint by construction.
func (c *collector) addUsage(usage *ReferenceUsage) {
	c.harvested = append(c.harvested, byteRange{usage.ByteStart, usage.ByteEnd})
	c.ctx.Usages = append(c.ctx.Usages, usage)
}

// shortcutPattern matches a bare bracketed label, optionally as an image.
var shortcutPattern = regexp.MustCompile(`!?\[((?:[^\[\]\\]|\\.)+)\]`)

// collectShortcuts finds [label] references written without a
// destination or label pair. A bare bracket only counts as a reference
// when a matching definition exists; otherwise it is plain text.
func (c *collector) collectShortcuts() {
	if len(c.ctx.Definitions) == 0 || !c.doc.LikelyHasLinks() {
		return
	}

	content := c.doc.Content()
	sort.Slice(c.harvested, func(i, j int) bool {
		return c.harvested[i].start < c.harvested[j].start
	})

	for i, rec := range c.doc.Lines() {
		if rec.Blank || rec.InFrontMatter || rec.InCode() ||
			rec.InHTMLComment || rec.OpaqueExtension() {
			continue
		}
		text := content[rec.Start:rec.TextEnd]
		if !bytes.ContainsRune(text, '[') {
			continue
		}

		for _, m := range shortcutPattern.FindAllSubmatchIndex(text, -1) {
			start := m[0]
			abs := rec.Start + start
			if start > 0 && text[start-1] == '\\' {
				continue
			}
			if c.insideHarvested(abs) || c.doc.IsInCodeSpan(abs) {
				continue
			}

			end := rec.Start + m[1]
			if end < len(content) && (content[end] == '(' || content[end] == '[') {
				continue
			}
			if text[start] != '!' && start > 0 && text[start-1] == ']' {
				continue
			}

			label := string(text[m[2]:m[3]])
			if strings.HasPrefix(label, "^") {
				continue
			}
			normalized := NormalizeLabel(label)
			if _, ok := c.ctx.Definitions[normalized]; !ok {
				continue
			}

			c.ctx.Usages = append(c.ctx.Usages, &ReferenceUsage{
				Style:           StyleShortcut,
				IsImage:         text[start] == '!',
				Text:            label,
				Label:           label,
				NormalizedLabel: normalized,
				Line:            i + 1,
				ByteStart:       abs,
				ByteEnd:         end,
			})
		}
	}
}

// insideHarvested reports whether an offset falls within an already
// recorded usage range.
func (c *collector) insideHarvested(offset int) bool {
	idx := sort.Search(len(c.harvested), func(i int) bool {
		return c.harvested[i].end > offset
	})
	return idx < len(c.harvested) && c.harvested[idx].start <= offset
}

// resolveReferences links usages to their definitions and updates
// usage counts. Reference-style usages inherit the definition's
// destination for fragment validation.
func (c *collector) resolveReferences() {
	for _, usage := range c.ctx.Usages {
		if usage.NormalizedLabel == "" {
			continue
		}

		def := c.ctx.Definitions[usage.NormalizedLabel]
		if def == nil {
			continue
		}

		usage.ResolvedDefinition = def
		def.UsageCount++
		if usage.Destination == "" {
			usage.Destination = def.Destination
			usage.Fragment = ExtractFragment(def.Destination)
		}
	}
}
