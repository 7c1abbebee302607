package rules

import "github.com/yaklabco/marklint/pkg/config"

// Pack is a named bundle of rule settings meant to seed a
// configuration file. A pack never changes behavior on its own; it
// only becomes effective once its Rules land in a config.
type Pack struct {
	// Name is the short identifier used on the command line.
	Name string

	// Description is a one-line summary shown next to the name.
	Description string

	// Rules holds the pack's settings keyed by rule ID.
	Rules map[string]config.RuleConfig
}

// enabledAt returns a RuleConfig enabling a rule at the given
// severity.
func enabledAt(severity string) config.RuleConfig {
	on := true
	return config.RuleConfig{
		Enabled:  &on,
		Severity: &severity,
	}
}

// CorePack bundles the essentials: whitespace hygiene and basic
// document structure. A reasonable default for most repositories.
func CorePack() Pack {
	return Pack{
		Name:        "core",
		Description: "Essential rules for clean Markdown: whitespace and basic structure",
		Rules: map[string]config.RuleConfig{
			// Whitespace hygiene.
			"MD009": enabledAt("warning"), // no-trailing-spaces
			"MD010": enabledAt("warning"), // no-hard-tabs
			"MD012": enabledAt("warning"), // no-multiple-blank-lines
			"MD047": enabledAt("warning"), // single-trailing-newline

			// Structure.
			"MD001": enabledAt("warning"), // heading-increment
			"MD003": enabledAt("info"),    // heading-style
			"MD031": enabledAt("info"),    // blanks-around-fences
			"MD032": enabledAt("info"),    // blanks-around-lists

			// Style consistency.
			"MD004": enabledAt("info"), // unordered-list-style
			"MD013": enabledAt("info"), // line-length
		},
	}
}

// StrictPack elevates the core rules to errors and adds heading,
// list, link, code, and HTML rules on top. Line length stays a
// warning; it fails too many otherwise-clean documents.
func StrictPack() Pack {
	return Pack{
		Name:        "strict",
		Description: "All core rules as errors, plus heading, link, code, and HTML rules",
		Rules: map[string]config.RuleConfig{
			// Headings.
			"MD001": enabledAt("error"), // heading-increment
			"MD003": enabledAt("error"), // heading-style
			"MD018": enabledAt("error"), // no-missing-space-atx
			"MD019": enabledAt("error"), // no-multiple-space-atx
			"MD023": enabledAt("error"), // heading-start-left
			"MD024": enabledAt("error"), // no-duplicate-heading
			"MD025": enabledAt("error"), // single-h1
			"MD026": enabledAt("error"), // no-trailing-punctuation
			"MD041": enabledAt("error"), // first-line-heading

			// Whitespace.
			"MD009": enabledAt("error"), // no-trailing-spaces
			"MD010": enabledAt("error"), // no-hard-tabs
			"MD012": enabledAt("error"), // no-multiple-blank-lines
			"MD022": enabledAt("error"), // heading-blank-lines
			"MD047": enabledAt("error"), // single-trailing-newline

			// Lists.
			"MD004": enabledAt("error"), // unordered-list-style
			"MD005": enabledAt("error"), // list-indent
			"MD007": enabledAt("error"), // ul-indent
			"MD029": enabledAt("error"), // ol-prefix
			"MD030": enabledAt("error"), // list-marker-space
			"MD032": enabledAt("error"), // blanks-around-lists

			// Line length.
			"MD013": enabledAt("warning"), // line-length

			// Links and images.
			"MD034": enabledAt("error"), // no-bare-urls
			"MD042": enabledAt("error"), // no-empty-links
			"MD045": enabledAt("error"), // no-alt-text

			// Code blocks.
			"MD031": enabledAt("error"), // blanks-around-fences
			"MD038": enabledAt("error"), // no-space-in-code
			"MD040": enabledAt("error"), // fenced-code-language
			"MD048": enabledAt("error"), // code-fence-style

			// Emphasis.
			"MD037": enabledAt("error"), // no-space-in-emphasis
			"MD049": enabledAt("error"), // emphasis-style
			"MD050": enabledAt("error"), // strong-style

			// Everything else.
			"MD033": enabledAt("error"), // no-inline-html
			"MD035": enabledAt("error"), // hr-style
		},
	}
}

// RelaxedPack keeps only the whitespace rules nobody argues about.
// Meant for legacy trees and loose style guides.
func RelaxedPack() Pack {
	return Pack{
		Name:        "relaxed",
		Description: "Whitespace essentials only, for legacy trees and loose style guides",
		Rules: map[string]config.RuleConfig{
			"MD009": enabledAt("info"), // no-trailing-spaces
			"MD047": enabledAt("info"), // single-trailing-newline
		},
	}
}

// GFMAuthoringPack tunes the set for documents rendered by GitHub:
// table validation, link and image checks, fenced code conventions.
func GFMAuthoringPack() Pack {
	return Pack{
		Name:        "gfm",
		Description: "Tables, links, and fenced code tuned for GitHub rendering",
		Rules: map[string]config.RuleConfig{
			// Tables.
			"MD055":  enabledAt("warning"), // table-pipe-style
			"MD056":  enabledAt("warning"), // table-column-count
			"MD058":  enabledAt("info"),    // blanks-around-tables
			"MDL003": enabledAt("warning"), // table-alignment

			// Links and images.
			"MD039": enabledAt("info"),    // no-space-in-links
			"MD042": enabledAt("warning"), // no-empty-links
			"MD045": enabledAt("warning"), // no-alt-text

			// Code blocks.
			"MD040": enabledAt("info"), // fenced-code-language
			"MD048": enabledAt("info"), // code-fence-style

			// Base hygiene.
			"MD001": enabledAt("warning"), // heading-increment
			"MD009": enabledAt("warning"), // no-trailing-spaces
			"MD022": enabledAt("info"),    // heading-blank-lines
			"MD047": enabledAt("warning"), // single-trailing-newline
		},
	}
}

// Packs returns the built-in packs in presentation order.
func Packs() []Pack {
	return []Pack{
		CorePack(),
		StrictPack(),
		RelaxedPack(),
		GFMAuthoringPack(),
	}
}

// PackByName resolves name to a built-in pack, or nil when no pack
// carries that name.
func PackByName(name string) *Pack {
	for _, pack := range Packs() {
		if pack.Name == name {
			return &pack
		}
	}
	return nil
}

// PackNames lists the built-in pack names in presentation order.
func PackNames() []string {
	packs := Packs()
	names := make([]string, 0, len(packs))
	for _, pack := range packs {
		names = append(names, pack.Name)
	}
	return names
}
