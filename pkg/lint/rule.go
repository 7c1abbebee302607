// Package lint provides the rule engine, diagnostics, and registry for marklint.
package lint

import (
	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
)

// Span is a line/column range in a file. Lines and columns are 1-based;
// the end column is exclusive.
type Span struct {
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// IsValid returns true if both endpoints have positive values.
func (s Span) IsValid() bool {
	return s.StartLine > 0 && s.StartColumn > 0 &&
		s.EndLine > 0 && s.EndColumn > 0
}

// IsSingleLine returns true if start and end are on the same line.
func (s Span) IsSingleLine() bool {
	return s.StartLine == s.EndLine
}

// LineSpan returns a span covering the given 1-based line from column
// start to column end.
func LineSpan(line, startCol, endCol int) Span {
	return Span{StartLine: line, StartColumn: startCol, EndLine: line, EndColumn: endCol}
}

// Diagnostic is one lint finding at one location.
type Diagnostic struct {
	// RuleID identifies the producing rule; RuleName is its readable
	// name ("no-trailing-spaces"). The engine fills RuleName when a rule
	// leaves it empty.
	RuleID   string
	RuleName string

	// Message describes the issue.
	Message string

	// Severity is the resolved severity, written by the engine.
	Severity config.Severity

	// FilePath names the file the issue was found in.
	FilePath string

	// Position of the issue, 1-based, end column exclusive.
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int

	// Suggestion optionally tells the reader how to resolve the issue.
	Suggestion string

	// FixEdits are the text edits that resolve the issue (may be empty).
	FixEdits []fix.TextEdit
}

// HasFix reports whether the diagnostic carries fix edits.
func (d *Diagnostic) HasFix() bool {
	return len(d.FixEdits) > 0
}

// Span returns the diagnostic position as a Span.
func (d *Diagnostic) Span() Span {
	return Span{
		StartLine:   d.StartLine,
		StartColumn: d.StartColumn,
		EndLine:     d.EndLine,
		EndColumn:   d.EndColumn,
	}
}

// Rule is the interface every lint rule implements. The descriptive
// methods come from BaseRule for most rules; Apply carries the logic.
type Rule interface {
	// ID returns the stable rule identifier ("MD001").
	ID() string

	// Name returns the human-readable rule name.
	Name() string

	// Description explains what the rule checks.
	Description() string

	// DefaultEnabled reports whether the rule runs without explicit
	// configuration.
	DefaultEnabled() bool

	// DefaultSeverity is the severity used when config does not override it.
	DefaultSeverity() config.Severity

	// Tags lists the rule's categories ("style", "heading").
	Tags() []string

	// CanFix reports whether the rule can produce fix edits.
	CanFix() bool

	// Apply runs the rule against one document and returns its findings.
	// Position and severity cleanup happens in the engine afterwards.
	// The error return is for internal failures only, never violations.
	Apply(ctx *RuleContext) ([]Diagnostic, error)
}
