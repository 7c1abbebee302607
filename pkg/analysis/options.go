package analysis

import (
	"slices"

	"github.com/yaklabco/marklint/pkg/config"
)

// SortField selects the ordering of the grouped views.
type SortField string

const (
	// SortByCount orders by issue count.
	SortByCount SortField = "count"
	// SortByAlpha orders by rule ID or file path.
	SortByAlpha SortField = "alpha"
	// SortBySeverity orders errors first, then warnings.
	SortBySeverity SortField = "severity"
)

var sortFields = []SortField{SortByCount, SortByAlpha, SortBySeverity}

// IsValid reports whether the sort field is a known value.
func (s SortField) IsValid() bool {
	return slices.Contains(sortFields, s)
}

// Options configures Analyze.
type Options struct {
	// IncludeDiagnostics keeps the flat diagnostics list on the report.
	IncludeDiagnostics bool

	// IncludeByFile and IncludeByRule build the grouped views.
	IncludeByFile bool
	IncludeByRule bool

	// SortBy orders ByFile and ByRule; SortDesc flips count ordering to
	// highest first.
	SortBy   SortField
	SortDesc bool

	// RuleFormat controls how rule identifiers appear.
	RuleFormat config.RuleFormat

	// WorkingDir is the directory paths are made relative to. Empty
	// keeps them as given.
	WorkingDir string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		IncludeDiagnostics: true,
		IncludeByFile:      true,
		IncludeByRule:      true,
		SortBy:             SortByCount,
		SortDesc:           true,
		RuleFormat:         config.RuleFormatName,
	}
}
