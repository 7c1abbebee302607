// Package configloader provides configuration loading and resolution.
package configloader

import "strings"

// aliasEntry ties a canonical rule ID to the names a configuration file
// may use for it. Most names follow markdownlint so existing configs keep
// working; a few rules carry more than one accepted spelling.
type aliasEntry struct {
	id    string
	names []string
}

// aliasTable is the single source for alias resolution. The derived
// lookup maps below are built from it once at package init.
//
//nolint:gochecknoglobals // Read-only lookup table.
var aliasTable = []aliasEntry{
	// Headings
	{"MD001", []string{"heading-increment"}},
	{"MD003", []string{"heading-style"}},
	{"MD018", []string{"no-missing-space-atx"}},
	{"MD019", []string{"no-multiple-space-atx"}},
	{"MD020", []string{"no-missing-space-closed-atx"}},
	{"MD021", []string{"no-multiple-space-closed-atx"}},
	{"MD022", []string{"blanks-around-headings"}},
	{"MD023", []string{"heading-start-left"}},
	{"MD024", []string{"no-duplicate-heading"}},
	{"MD025", []string{"single-title", "single-h1"}},
	{"MD026", []string{"no-trailing-punctuation"}},
	{"MD041", []string{"first-line-heading", "first-line-h1"}},
	{"MD043", []string{"required-headings"}},

	// Lists
	{"MD004", []string{"ul-style"}},
	{"MD005", []string{"list-indent"}},
	{"MD007", []string{"ul-indent"}},
	{"MD029", []string{"ol-prefix"}},
	{"MD030", []string{"list-marker-space"}},
	{"MD032", []string{"blanks-around-lists"}},

	// Whitespace
	{"MD009", []string{"no-trailing-spaces"}},
	{"MD010", []string{"no-hard-tabs"}},
	{"MD012", []string{"no-multiple-blanks"}},
	{"MD013", []string{"line-length"}},
	{"MD047", []string{"single-trailing-newline"}},

	// Code
	{"MD014", []string{"commands-show-output"}},
	{"MD031", []string{"blanks-around-fences"}},
	{"MD038", []string{"no-space-in-code"}},
	{"MD040", []string{"fenced-code-language"}},
	{"MD046", []string{"code-block-style"}},
	{"MD048", []string{"code-fence-style"}},

	// Links and images
	{"MD011", []string{"no-reversed-links"}},
	{"MD034", []string{"no-bare-urls"}},
	{"MD039", []string{"no-space-in-links"}},
	{"MD042", []string{"no-empty-links"}},
	{"MD045", []string{"no-alt-text"}},
	{"MD051", []string{"link-fragments"}},
	{"MD052", []string{"reference-links-images"}},
	{"MD053", []string{"link-image-reference-definitions"}},
	{"MD054", []string{"link-image-style"}},
	{"MD057", []string{"existing-relative-links", "relative-links"}},
	{"MD059", []string{"descriptive-link-text"}},
	{"MDL001", []string{"link-destination-style"}},

	// Blockquotes
	{"MD027", []string{"no-multiple-space-blockquote"}},
	{"MD028", []string{"no-blanks-blockquote"}},

	// HTML and horizontal rules
	{"MD033", []string{"no-inline-html"}},
	{"MD035", []string{"hr-style"}},

	// Emphasis
	{"MD036", []string{"no-emphasis-as-heading"}},
	{"MD037", []string{"no-space-in-emphasis"}},
	{"MD049", []string{"emphasis-style"}},
	{"MD050", []string{"strong-style"}},

	// Prose and metadata
	{"MD044", []string{"proper-names"}},
	{"MDL002", []string{"front-matter-valid"}},

	// Tables
	{"MD055", []string{"table-pipe-style"}},
	{"MD056", []string{"table-column-count"}},
	{"MD058", []string{"blanks-around-tables"}},
	{"MD060", []string{"table-column-style"}},
	{"MDL003", []string{"table-alignment"}},
}

// ruleTags maps tag names to the rule IDs they contain. Tags can be used
// in configuration to enable or disable groups of rules at once.
//
//nolint:gochecknoglobals // Read-only lookup table.
var ruleTags = map[string][]string{
	"accessibility": {"MD045", "MD059"},
	"atx":           {"MD018", "MD019"},
	"atx_closed":    {"MD020", "MD021"},
	"blank_lines":   {"MD012", "MD022", "MD031", "MD032", "MD047"},
	"blockquote":    {"MD027", "MD028"},
	"bullet":        {"MD004", "MD005", "MD007", "MD032"},
	"code":          {"MD014", "MD031", "MD038", "MD040", "MD046", "MD048"},
	"emphasis":      {"MD036", "MD037", "MD049", "MD050"},
	"front_matter":  {"MDL002"},
	"hard_tab":      {"MD010"},
	"headings":      {"MD001", "MD003", "MD018", "MD019", "MD020", "MD021", "MD022", "MD023", "MD024", "MD025", "MD026", "MD036", "MD041", "MD043"},
	"hr":            {"MD035"},
	"html":          {"MD033"},
	"images":        {"MD045", "MD052", "MD053", "MD054"},
	"indentation":   {"MD005", "MD007", "MD027"},
	"language":      {"MD040"},
	"line_length":   {"MD013"},
	"links":         {"MD011", "MD034", "MD039", "MD042", "MD051", "MD052", "MD053", "MD054", "MD057", "MD059", "MDL001"},
	"ol":            {"MD029", "MD030", "MD032"},
	"spaces":        {"MD018", "MD019", "MD020", "MD021", "MD023"},
	"spelling":      {"MD044"},
	"table":         {"MD055", "MD056", "MD058", "MD060", "MDL003"},
	"ul":            {"MD004", "MD005", "MD007", "MD030", "MD032"},
	"url":           {"MD034"},
	"whitespace":    {"MD009", "MD010", "MD012", "MD027", "MD028", "MD030", "MD037", "MD038", "MD039"},
}

// aliasIndex maps every accepted name to its canonical rule ID.
//
//nolint:gochecknoglobals // Derived read-only index.
var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]string {
	idx := make(map[string]string, len(aliasTable)*2)
	for _, entry := range aliasTable {
		for _, name := range entry.names {
			idx[name] = entry.id
		}
	}
	return idx
}

// NormalizeRuleID converts a rule alias or ID to its canonical rule ID.
// Returns empty string if the key is not a recognized rule ID or alias.
func NormalizeRuleID(key string) string {
	// Rule IDs pass through unchanged, case-folded.
	upper := strings.ToUpper(key)
	if strings.HasPrefix(upper, "MD") {
		return upper
	}
	if id, ok := aliasIndex[key]; ok {
		return id
	}
	return ""
}

// IsTag returns true if the key is a recognized tag name.
func IsTag(key string) bool {
	_, ok := ruleTags[key]
	return ok
}

// GetTagRules returns the rule IDs associated with a tag.
// Returns nil if the tag is not recognized.
func GetTagRules(tag string) []string {
	return ruleTags[tag]
}

// GetAllRuleIDs returns a slice of all rule IDs with registered aliases.
func GetAllRuleIDs() []string {
	ids := make([]string, 0, len(aliasTable))
	for _, entry := range aliasTable {
		ids = append(ids, entry.id)
	}
	return ids
}

// GetAliasesForRule returns all aliases for a given rule ID.
func GetAliasesForRule(ruleID string) []string {
	for _, entry := range aliasTable {
		if entry.id == ruleID {
			return entry.names
		}
	}
	return nil
}
