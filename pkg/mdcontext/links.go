package mdcontext

import (
	"regexp"
	"strings"
)

// LinkRef is an inline or reference link on a single line. URLs stay
// percent-encoded; decoding is a rule-level concern.
type LinkRef struct {
	Line      int // 1-based
	Col       int // 1-based rune column
	ByteStart int
	ByteEnd   int
	Text      string
	URL       string
	Title     string
	Reference bool
	Label     string // reference label; for [text][] the text itself
}

// ImageRef is an image reference, shaped like LinkRef with alt text.
type ImageRef struct {
	Line      int
	Col       int
	ByteStart int
	ByteEnd   int
	Alt       string
	URL       string
	Title     string
	Reference bool
	Label     string
}

// ReferenceDef is a `[label]: url "title"` definition line.
type ReferenceDef struct {
	Line      int
	Col       int
	ByteStart int
	ByteEnd   int
	Label     string
	URL       string
	Title     string
}

// Autolink is a `<scheme:...>` or `<user@host>` link.
type Autolink struct {
	Line      int
	Col       int
	ByteStart int
	ByteEnd   int
	URL       string
	Email     bool
}

// FootnoteRef is a footnote usage `[^id]` or definition `[^id]:`.
// Footnotes are kept apart from links and reference definitions so
// neither family mis-resolves them.
type FootnoteRef struct {
	Line       int
	Col        int
	ByteStart  int
	ByteEnd    int
	ID         string
	Definition bool
}

var (
	linkRe = regexp.MustCompile(
		`\[((?:[^\[\]\\]|\\.)*)\](?:\((?:<([^<>\n]*)>|([^)"']*))(?:\s+(?:"([^"]*)"|'([^']*)'))?\)|\[([^\]]*)\])`)
	refDefRe = regexp.MustCompile(
		`^[ ]{0,3}\[([^\]]+)\]:\s*(\S+)(?:\s+(?:"([^"]*)"|'([^']*)'))?\s*$`)
	angleAutolinkRe = regexp.MustCompile(
		`<([A-Za-z][A-Za-z0-9+.-]*:[^<>\s]+|[^@<>\s]+@[^@<>\s]+\.[^@<>\s]+)>`)
	footnoteRe = regexp.MustCompile(`\[\^([^\]\s]+)\](:?)`)
)

// harvestLinks extracts links, images, reference definitions,
// autolinks, and footnotes line by line. Matches starting inside a
// code span are dropped, and footnote constructs (`[^label]`) go to
// the footnote list rather than the link or definition lists. Every
// produced range lies within one line.
func harvestLinks(content []byte, lines []LineRecord, spans []CodeSpan) ([]LinkRef, []ImageRef, []ReferenceDef, []Autolink, []FootnoteRef) {
	var (
		links     []LinkRef
		images    []ImageRef
		defs      []ReferenceDef
		autos     []Autolink
		footnotes []FootnoteRef
	)

	for li := range lines {
		rec := &lines[li]
		if rec.Blank || rec.excluded() {
			continue
		}
		text := lineText(content, *rec)
		lineNum := li + 1

		if m := refDefRe.FindStringSubmatchIndex(text); m != nil && !rec.CodeSpanContinuation {
			label := text[m[2]:m[3]]
			if !strings.HasPrefix(label, "^") {
				def := ReferenceDef{
					Line:      lineNum,
					Col:       runeColumn(content, rec.Start, rec.Start+m[0]),
					ByteStart: rec.Start + m[0],
					ByteEnd:   rec.Start + m[1],
					Label:     label,
					URL:       text[m[4]:m[5]],
				}
				if m[6] >= 0 {
					def.Title = text[m[6]:m[7]]
				} else if m[8] >= 0 {
					def.Title = text[m[8]:m[9]]
				}
				defs = append(defs, def)
				continue
			}
		}

		for _, m := range linkRe.FindAllStringSubmatchIndex(text, -1) {
			start := m[0]
			if start > 0 && text[start-1] == '\\' {
				continue
			}
			abs := rec.Start + start
			if insideSpan(spans, abs) {
				continue
			}
			body := text[m[2]:m[3]]
			if strings.HasPrefix(body, "^") {
				continue
			}

			isImage := start > 0 && text[start-1] == '!' &&
				(start < 2 || text[start-2] != '\\')
			if isImage {
				abs--
				start--
			}

			var url, title, label string
			reference := false
			switch {
			case m[4] >= 0:
				url = text[m[4]:m[5]]
			case m[6] >= 0:
				url = strings.TrimSpace(text[m[6]:m[7]])
			default:
				reference = true
				label = text[m[12]:m[13]]
				if label == "" {
					label = body
				}
			}
			if m[8] >= 0 {
				title = text[m[8]:m[9]]
			} else if m[10] >= 0 {
				title = text[m[10]:m[11]]
			}

			col := runeColumn(content, rec.Start, abs)
			end := rec.Start + m[1]
			if isImage {
				images = append(images, ImageRef{
					Line: lineNum, Col: col, ByteStart: abs, ByteEnd: end,
					Alt: body, URL: url, Title: title,
					Reference: reference, Label: label,
				})
			} else {
				links = append(links, LinkRef{
					Line: lineNum, Col: col, ByteStart: abs, ByteEnd: end,
					Text: body, URL: url, Title: title,
					Reference: reference, Label: label,
				})
			}
		}

		for _, m := range angleAutolinkRe.FindAllStringSubmatchIndex(text, -1) {
			abs := rec.Start + m[0]
			if insideSpan(spans, abs) {
				continue
			}
			url := text[m[2]:m[3]]
			autos = append(autos, Autolink{
				Line:      lineNum,
				Col:       runeColumn(content, rec.Start, abs),
				ByteStart: abs,
				ByteEnd:   rec.Start + m[1],
				URL:       url,
				Email:     !strings.Contains(url, ":"),
			})
		}

		for _, m := range footnoteRe.FindAllStringSubmatchIndex(text, -1) {
			start := m[0]
			if start > 0 && text[start-1] == '\\' {
				continue
			}
			abs := rec.Start + start
			if insideSpan(spans, abs) {
				continue
			}
			footnotes = append(footnotes, FootnoteRef{
				Line:       lineNum,
				Col:        runeColumn(content, rec.Start, abs),
				ByteStart:  abs,
				ByteEnd:    rec.Start + m[1],
				ID:         text[m[2]:m[3]],
				Definition: m[4] < m[5],
			})
		}
	}
	return links, images, defs, autos, footnotes
}

// buildRefDefMap indexes reference definitions by lowercased label.
// The first definition of a label wins, as reference resolution does.
func buildRefDefMap(defs []ReferenceDef) map[string]*ReferenceDef {
	m := make(map[string]*ReferenceDef, len(defs))
	for i := range defs {
		key := strings.ToLower(defs[i].Label)
		if _, ok := m[key]; !ok {
			m[key] = &defs[i]
		}
	}
	return m
}
