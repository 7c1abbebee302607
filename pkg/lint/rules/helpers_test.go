package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/lint"
	"github.com/yaklabco/marklint/pkg/mdcontext"
)

// runRule lints content with a single rule under the standard dialect.
func runRule(t *testing.T, rule lint.Rule, content string) []lint.Diagnostic {
	t.Helper()
	return runRuleWith(t, rule, content, config.DialectStandard, nil)
}

// runRuleOpts lints content with a single rule and the given rule
// options under the standard dialect.
func runRuleOpts(t *testing.T, rule lint.Rule, content string, opts map[string]any) []lint.Diagnostic {
	t.Helper()
	return runRuleWith(t, rule, content, config.DialectStandard, opts)
}

// runRuleWith builds a document in the given dialect and applies one
// rule to it.
func runRuleWith(t *testing.T, rule lint.Rule, content string, dialect config.Dialect, opts map[string]any) []lint.Diagnostic {
	t.Helper()

	doc := mdcontext.New([]byte(content), dialect)
	var ruleCfg *config.RuleConfig
	if opts != nil {
		ruleCfg = &config.RuleConfig{Options: opts}
	}
	ruleCtx := lint.NewRuleContext(context.Background(), doc, "test.md", config.NewConfig(), ruleCfg)

	diags, err := rule.Apply(ruleCtx)
	require.NoError(t, err)
	return diags
}

// applyRuleFixes applies every fix edit the diagnostics carry and
// returns the rewritten content.
func applyRuleFixes(t *testing.T, content string, diags []lint.Diagnostic) string {
	t.Helper()

	var edits []fix.TextEdit
	for _, d := range diags {
		edits = append(edits, d.FixEdits...)
	}
	prepared, err := fix.PrepareEdits(edits, len(content))
	require.NoError(t, err)
	return string(fix.ApplyEdits([]byte(content), prepared))
}
