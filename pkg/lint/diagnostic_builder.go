package lint

import (
	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
)

// DiagnosticBuilder assembles a Diagnostic step by step. Rules chain the
// With* methods and finish with Build.
type DiagnosticBuilder struct {
	diag Diagnostic
}

// NewDiagnosticAt starts a diagnostic for ruleID covering span.
func NewDiagnosticAt(
	ruleID string,
	filePath string,
	span Span,
	message string,
) *DiagnosticBuilder {
	return &DiagnosticBuilder{
		diag: Diagnostic{
			RuleID:      ruleID,
			Message:     message,
			FilePath:    filePath,
			StartLine:   span.StartLine,
			StartColumn: span.StartColumn,
			EndLine:     span.EndLine,
			EndColumn:   span.EndColumn,
		},
	}
}

// NewDiagnosticAtWithRegistry is NewDiagnosticAt plus a rule-name lookup, so
// the diagnostic renders with its human-readable name.
func NewDiagnosticAtWithRegistry(
	ruleID string,
	filePath string,
	span Span,
	message string,
	reg *Registry,
) *DiagnosticBuilder {
	b := NewDiagnosticAt(ruleID, filePath, span, message)
	if reg != nil {
		if rule, ok := reg.GetByID(ruleID); ok {
			b.diag.RuleName = rule.Name()
		}
	}
	return b
}

// WithSeverity sets the severity.
func (b *DiagnosticBuilder) WithSeverity(s config.Severity) *DiagnosticBuilder {
	b.diag.Severity = s
	return b
}

// WithSuggestion attaches a human-readable fix suggestion.
func (b *DiagnosticBuilder) WithSuggestion(s string) *DiagnosticBuilder {
	b.diag.Suggestion = s
	return b
}

// WithFix appends every edit accumulated in builder.
func (b *DiagnosticBuilder) WithFix(builder *fix.EditBuilder) *DiagnosticBuilder {
	if builder != nil {
		b.diag.FixEdits = append(b.diag.FixEdits, builder.Edits...)
	}
	return b
}

// WithEdit appends a single fix edit.
func (b *DiagnosticBuilder) WithEdit(edit fix.TextEdit) *DiagnosticBuilder {
	b.diag.FixEdits = append(b.diag.FixEdits, edit)
	return b
}

// Build returns the assembled Diagnostic.
func (b *DiagnosticBuilder) Build() Diagnostic {
	return b.diag
}
