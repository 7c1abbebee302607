package analysis

import "time"

// Report holds the pre-computed views of a lint run. Analyze computes
// it once; every renderer reads from the same report instead of walking
// raw results again.
type Report struct {
	// Diagnostics is the flat list for detailed output.
	Diagnostics []DiagnosticEntry `json:"diagnostics,omitempty"`

	// ByFile and ByRule are the grouped views.
	ByFile []FileAnalysis `json:"byFile,omitempty"`
	ByRule []RuleAnalysis `json:"byRule,omitempty"`

	// Totals carries the aggregate counters.
	Totals Totals `json:"summary"`

	// Version is the report format version.
	Version string `json:"version"`

	// Timestamp records when the analysis ran.
	Timestamp time.Time `json:"timestamp"`
}

// DiagnosticEntry is one diagnostic flattened for presentation, with
// the severity already normalized.
type DiagnosticEntry struct {
	FilePath    string     `json:"filePath"`
	RuleID      string     `json:"ruleId"`
	RuleName    string     `json:"ruleName"`
	Severity    string     `json:"severity"`
	Message     string     `json:"message"`
	StartLine   int        `json:"startLine"`
	StartColumn int        `json:"startColumn"`
	EndLine     int        `json:"endLine"`
	EndColumn   int        `json:"endColumn"`
	Suggestion  string     `json:"suggestion,omitempty"`
	Fixable     bool       `json:"fixable"`
	Fixes       []FixEntry `json:"fixes,omitempty"`
}

// FixEntry is a proposed text edit.
type FixEntry struct {
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
	NewText     string `json:"newText"`
}

// Totals aggregates counters across the whole run.
type Totals struct {
	Files           int `json:"filesChecked"`
	FilesWithIssues int `json:"filesWithIssues"`
	Issues          int `json:"totalIssues"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Infos           int `json:"infos"`
	Fixable         int `json:"fixable"`
}

// HasIssues reports whether any diagnostics were found.
func (t Totals) HasIssues() bool {
	return t.Issues > 0
}

// HasErrors reports whether any error-severity diagnostics were found.
func (t Totals) HasErrors() bool {
	return t.Errors > 0
}

// FileAnalysis aggregates one file's diagnostics. Rules lists the rule
// IDs that fired in the file, sorted.
type FileAnalysis struct {
	Path     string   `json:"path"`
	Issues   int      `json:"issues"`
	Errors   int      `json:"errors"`
	Warnings int      `json:"warnings"`
	Infos    int      `json:"infos"`
	Rules    []string `json:"rules,omitempty"`
}

// RuleAnalysis aggregates one rule's diagnostics. Files lists the paths
// the rule fired in, sorted.
type RuleAnalysis struct {
	RuleID   string   `json:"ruleId"`
	RuleName string   `json:"ruleName"`
	Issues   int      `json:"issues"`
	Errors   int      `json:"errors"`
	Warnings int      `json:"warnings"`
	Infos    int      `json:"infos"`
	Fixable  bool     `json:"fixable"`
	Files    []string `json:"files,omitempty"`
}
