package lint

import "github.com/yaklabco/marklint/pkg/config"

// BaseRule supplies the descriptive half of the Rule interface. Concrete
// rules embed it and implement Apply; fields stay unexported so they cannot
// collide with the interface methods of the same name.
type BaseRule struct {
	id      string
	name    string
	desc    string
	tags    []string
	fixable bool
}

// NewBaseRule builds the embedded descriptor for a rule.
func NewBaseRule(id, name, desc string, tags []string, fixable bool) BaseRule {
	return BaseRule{
		id:      id,
		name:    name,
		desc:    desc,
		tags:    tags,
		fixable: fixable,
	}
}

// ID returns the rule identifier, e.g. "MD001".
func (r *BaseRule) ID() string { return r.id }

// Name returns the human-readable rule name.
func (r *BaseRule) Name() string { return r.name }

// Description returns what the rule checks.
func (r *BaseRule) Description() string { return r.desc }

// Tags returns the rule's categorization tags.
func (r *BaseRule) Tags() []string { return r.tags }

// CanFix reports whether the rule proposes auto-fixes.
func (r *BaseRule) CanFix() bool { return r.fixable }

// DefaultEnabled reports whether the rule runs without explicit
// configuration. Rules that are opt-in override this.
func (r *BaseRule) DefaultEnabled() bool { return true }

// DefaultSeverity returns the severity used when configuration does not set
// one. Rules that default to errors override this.
func (r *BaseRule) DefaultSeverity() config.Severity {
	return config.SeverityWarning
}

// Apply reports nothing; concrete rules override it.
func (r *BaseRule) Apply(_ *RuleContext) ([]Diagnostic, error) {
	return nil, nil
}
