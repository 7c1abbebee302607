package config

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// commentWrapWidth is the widest a wrapped description line may be.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full documents every registered rule instead of emitting the
	// short starter file.
	Full bool

	// Format is "yaml" or "json".
	Format string

	// IncludeRules limits the full template to the listed rule IDs.
	// Empty means all rules.
	IncludeRules []string

	// IncludeDefaults writes each rule's settings uncommented even
	// when they match the rule's defaults. Off, a generated template
	// overrides nothing.
	IncludeDefaults bool

	// SeedRules pre-populates the rules section with concrete
	// settings, typically from a built-in rule pack. When set, the
	// rules section carries these entries uncommented and Full's
	// catalog is skipped.
	SeedRules map[string]RuleConfig

	// SeedComment names where SeedRules came from in the generated
	// header.
	SeedComment string
}

// RuleInfo is the slice of rule metadata templates need.
type RuleInfo struct {
	ID          string
	Name        string
	Description string
	Enabled     bool
	Severity    Severity
	Tags        []string
	CanFix      bool
}

// RuleInfoProvider supplies metadata for every registered rule.
type RuleInfoProvider func() []RuleInfo

// DefaultRuleInfoProvider is installed by the lint package at init
// time so templates can document the live registry without this
// package importing the rule implementations. When unset, templates
// fall back to a small built-in list.
//
//nolint:gochecknoglobals // Seam for the lint package to publish its registry.
var DefaultRuleInfoProvider RuleInfoProvider

// GenerateTemplate renders a starter configuration file.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if strings.EqualFold(opts.Format, "json") {
		return jsonTemplate(opts)
	}
	if len(opts.SeedRules) > 0 {
		return seededTemplate(opts), nil
	}
	if opts.Full {
		return fullTemplate(opts), nil
	}
	return minimalTemplate(), nil
}

// DefaultTemplateHeader returns the comment block generated configs
// start with.
func DefaultTemplateHeader() string {
	return `# marklint configuration
# See: https://github.com/yaklabco/marklint`
}

func minimalTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`

# Markdown dialect: standard, mkdocs, mdx, quarto, obsidian, or kramdown
dialect: standard

# Default severity for rules that do not set one: error, warning, or info
# severity_default: warning

# Glob patterns to skip during discovery
# ignore:
#   - "vendor/**"
#   - "node_modules/**"

# Per-rule settings, keyed by rule ID
# rules:
#   MD013:
#     enabled: false
#   MD030:
#     severity: error
#     options:
#       ul_single: 1
`)

	return buf.Bytes()
}

func fullTemplate(opts TemplateOptions) []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`
#
# Every rule appears below with its defaults. Uncomment a block to
# override it; rules without a block keep their defaults.

# Markdown dialect: standard, mkdocs, mdx, quarto, obsidian, or kramdown
dialect: standard

# Default severity for rules that do not set one: error, warning, or info
severity_default: warning

# Backups taken before fixes rewrite a file
backups:
  enabled: true
  mode: sidecar

# Glob patterns to skip during discovery
ignore:
  - "vendor/**"
  - "node_modules/**"
  - ".git/**"

# Per-rule settings, keyed by rule ID
rules:
`)

	for _, rule := range templateRules(opts.IncludeRules) {
		writeRuleBlock(&buf, rule, opts.IncludeDefaults)
	}

	return buf.Bytes()
}

// seededTemplate renders a config whose rules section carries the
// given settings verbatim.
func seededTemplate(opts TemplateOptions) []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	if opts.SeedComment != "" {
		buf.WriteString("\n# " + opts.SeedComment)
	}
	buf.WriteString(`

# Markdown dialect: standard, mkdocs, mdx, quarto, obsidian, or kramdown
dialect: standard

# Per-rule settings, keyed by rule ID
rules:
`)

	for _, id := range slices.Sorted(maps.Keys(opts.SeedRules)) {
		writeSeedEntry(&buf, id, opts.SeedRules[id])
	}

	return buf.Bytes()
}

// writeSeedEntry emits one concrete rule stanza, skipping fields the
// seed leaves unset.
func writeSeedEntry(buf *bytes.Buffer, id string, rc RuleConfig) {
	fmt.Fprintf(buf, "  %s:\n", id)
	if rc.Enabled != nil {
		fmt.Fprintf(buf, "    enabled: %t\n", *rc.Enabled)
	}
	if rc.Severity != nil {
		fmt.Fprintf(buf, "    severity: %s\n", *rc.Severity)
	}
	if rc.AutoFix != nil {
		fmt.Fprintf(buf, "    auto_fix: %t\n", *rc.AutoFix)
	}
	if len(rc.Options) > 0 {
		buf.WriteString("    options:\n")
		for _, key := range slices.Sorted(maps.Keys(rc.Options)) {
			fmt.Fprintf(buf, "      %s: %v\n", key, rc.Options[key])
		}
	}
}

// writeRuleBlock emits one rule stanza. Settings matching the rule's
// defaults stay commented out unless includeDefaults is set.
func writeRuleBlock(buf *bytes.Buffer, rule RuleInfo, includeDefaults bool) {
	fmt.Fprintf(buf, "\n  # %s: %s\n", rule.ID, rule.Name)
	for _, line := range wrapComment(rule.Description, commentWrapWidth) {
		fmt.Fprintf(buf, "  # %s\n", line)
	}
	if len(rule.Tags) > 0 {
		fmt.Fprintf(buf, "  # tags: %s\n", strings.Join(rule.Tags, ", "))
	}
	if rule.CanFix {
		buf.WriteString("  # fixable\n")
	}

	prefix := "  # "
	if includeDefaults {
		prefix = "  "
	}
	fmt.Fprintf(buf, "%s%s:\n", prefix, rule.ID)
	fmt.Fprintf(buf, "%s  enabled: %t\n", prefix, rule.Enabled)
	fmt.Fprintf(buf, "%s  severity: %s\n", prefix, rule.Severity)
}

// jsonTemplate renders the template as JSON. Comments cannot survive
// JSON, so the full variant lists each rule as an explicit entry.
func jsonTemplate(opts TemplateOptions) ([]byte, error) {
	rules := make(map[string]any)
	switch {
	case len(opts.SeedRules) > 0:
		for id, rc := range opts.SeedRules {
			rules[id] = seedEntryJSON(rc)
		}
	case opts.Full:
		for _, rule := range templateRules(opts.IncludeRules) {
			rules[rule.ID] = map[string]any{
				"enabled":  rule.Enabled,
				"severity": string(rule.Severity),
			}
		}
	}

	cfg := map[string]any{
		"dialect":          string(DialectStandard),
		"severity_default": string(SeverityWarning),
		"backups": map[string]any{
			"enabled": true,
			"mode":    "sidecar",
		},
		"ignore": []string{"vendor/**", "node_modules/**", ".git/**"},
		"rules":  rules,
	}

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal template: %w", err)
	}
	return append(out, '\n'), nil
}

// seedEntryJSON converts a seed's set fields into a JSON object.
func seedEntryJSON(rc RuleConfig) map[string]any {
	entry := make(map[string]any)
	if rc.Enabled != nil {
		entry["enabled"] = *rc.Enabled
	}
	if rc.Severity != nil {
		entry["severity"] = *rc.Severity
	}
	if rc.AutoFix != nil {
		entry["auto_fix"] = *rc.AutoFix
	}
	if len(rc.Options) > 0 {
		entry["options"] = rc.Options
	}
	return entry
}

// templateRules returns the rules to document, sorted by ID and
// optionally narrowed to an include list.
func templateRules(include []string) []RuleInfo {
	rules := ruleInfos()
	if len(include) > 0 {
		rules = slices.DeleteFunc(slices.Clone(rules), func(r RuleInfo) bool {
			return !slices.Contains(include, r.ID)
		})
	}
	slices.SortFunc(rules, func(a, b RuleInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return rules
}

func ruleInfos() []RuleInfo {
	if DefaultRuleInfoProvider != nil {
		return DefaultRuleInfoProvider()
	}
	return slices.Clone(builtinRuleInfos)
}

// builtinRuleInfos covers a representative subset for builds that never
// import the lint package. The live registry supersedes it.
//
//nolint:gochecknoglobals // Static fallback table.
var builtinRuleInfos = []RuleInfo{
	{
		ID: "MD001", Name: "heading-increment", Enabled: true, Severity: SeverityWarning,
		Description: "Heading levels should only increment by one level at a time",
		Tags:        []string{"headings"},
	},
	{
		ID: "MD009", Name: "no-trailing-spaces", Enabled: true, Severity: SeverityWarning,
		Description: "Lines should not have trailing spaces",
		Tags:        []string{"whitespace"}, CanFix: true,
	},
	{
		ID: "MD010", Name: "no-hard-tabs", Enabled: true, Severity: SeverityWarning,
		Description: "Hard tabs should not be used",
		Tags:        []string{"hard_tab", "whitespace"}, CanFix: true,
	},
	{
		ID: "MD012", Name: "no-multiple-blank-lines", Enabled: true, Severity: SeverityWarning,
		Description: "Multiple consecutive blank lines should be collapsed",
		Tags:        []string{"whitespace", "layout"}, CanFix: true,
	},
	{
		ID: "MD013", Name: "line-length", Enabled: true, Severity: SeverityWarning,
		Description: "Line length should not exceed the configured maximum",
		Tags:        []string{"line_length"},
	},
	{
		ID: "MD025", Name: "single-h1", Enabled: true, Severity: SeverityWarning,
		Description: "Multiple top-level headings in the same document",
		Tags:        []string{"headings"},
	},
	{
		ID: "MD047", Name: "single-trailing-newline", Enabled: true, Severity: SeverityWarning,
		Description: "Files should end with a single newline character",
		Tags:        []string{"blank_lines"}, CanFix: true,
	},
}

// wrapComment splits text into lines no wider than width, breaking on
// word boundaries.
func wrapComment(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}
