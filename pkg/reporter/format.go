package reporter

import (
	"fmt"
	"slices"
)

// Format selects an output format.
type Format string

// Output formats supported by the reporter.
const (
	FormatText    Format = "text"
	FormatTable   Format = "table"
	FormatJSON    Format = "json"
	FormatSARIF   Format = "sarif"
	FormatDiff    Format = "diff"
	FormatSummary Format = "summary"
)

// allFormats lists every supported format, in the order help text shows
// them.
var allFormats = []Format{FormatText, FormatTable, FormatJSON, FormatSARIF, FormatDiff, FormatSummary}

// ParseFormat parses a format string. The empty string means text.
func ParseFormat(formatStr string) (Format, error) {
	if formatStr == "" {
		return FormatText, nil
	}
	f := Format(formatStr)
	if !f.IsValid() {
		return "", fmt.Errorf("unknown format %q; valid formats: text, table, json, sarif, diff, summary", formatStr)
	}
	return f, nil
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid reports whether the format is one the reporter supports.
func (f Format) IsValid() bool {
	return slices.Contains(allFormats, f)
}
