package config

import (
	"path/filepath"
	"strings"
)

// Dialect identifies the Markdown dialect a document is written in.
// The structural context engine uses it to decide which extension
// blocks (admonitions, fenced divs, ESM blocks, comments) are live.
type Dialect string

const (
	// DialectStandard is CommonMark plus GFM tables and autolinks.
	DialectStandard Dialect = "standard"
	// DialectMkDocs enables admonitions, content tabs and strict
	// 4-space list indentation as used by MkDocs sites.
	DialectMkDocs Dialect = "mkdocs"
	// DialectMDX enables ESM import/export blocks, JSX expressions
	// and {/* */} comments.
	DialectMDX Dialect = "mdx"
	// DialectQuarto enables fenced divs, math spans and Quarto
	// shortcodes (.qmd, .Rmd files).
	DialectQuarto Dialect = "quarto"
	// DialectObsidian enables %%comments%%, wikilink-style targets
	// and permissive task checkboxes.
	DialectObsidian Dialect = "obsidian"
	// DialectKramdown enables {::} extension blocks and inline
	// attribute lists as used by Jekyll sites.
	DialectKramdown Dialect = "kramdown"
)

// dialectAliases maps accepted spellings to canonical dialects.
var dialectAliases = map[string]Dialect{
	"standard":   DialectStandard,
	"commonmark": DialectStandard,
	"gfm":        DialectStandard,
	"github":     DialectStandard,
	"mkdocs":     DialectMkDocs,
	"mdx":        DialectMDX,
	"quarto":     DialectQuarto,
	"obsidian":   DialectObsidian,
	"kramdown":   DialectKramdown,
	"jekyll":     DialectKramdown,
}

// ParseDialect resolves a dialect name or alias. Unknown names fall
// back to DialectStandard with ok=false so callers can warn without
// failing.
func ParseDialect(name string) (Dialect, bool) {
	d, ok := dialectAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return DialectStandard, false
	}
	return d, true
}

// IsValid reports whether d is one of the canonical dialects.
func (d Dialect) IsValid() bool {
	switch d {
	case DialectStandard, DialectMkDocs, DialectMDX, DialectQuarto, DialectObsidian, DialectKramdown:
		return true
	default:
		return false
	}
}

func (d Dialect) String() string {
	return string(d)
}

// SupportsESM reports whether top-of-file import/export blocks are
// treated as code rather than prose.
func (d Dialect) SupportsESM() bool {
	return d == DialectMDX
}

// SupportsJSX reports whether {expression} and JSX component blocks
// are recognized.
func (d Dialect) SupportsJSX() bool {
	return d == DialectMDX
}

// SupportsKramdown reports whether {::} extension blocks and inline
// attribute lists are recognized.
func (d Dialect) SupportsKramdown() bool {
	return d == DialectKramdown
}

// SupportsMath reports whether $...$ and $$...$$ spans are treated as
// math rather than literal dollars.
func (d Dialect) SupportsMath() bool {
	return d == DialectQuarto || d == DialectObsidian
}

// StrictListIndent reports whether nested list content must be
// indented exactly four spaces for the renderer to honor it.
func (d Dialect) StrictListIndent() bool {
	return d == DialectMkDocs
}

// DialectFromPath infers a dialect from a file extension. Files the
// extension says nothing about get the fallback.
func DialectFromPath(path string, fallback Dialect) Dialect {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mdx":
		return DialectMDX
	case ".qmd", ".rmd":
		return DialectQuarto
	default:
		return fallback
	}
}
