package lint

import (
	"slices"

	"github.com/yaklabco/marklint/pkg/config"
)

// ResolvedRule is a rule plus the configuration that applies to it for one
// run: whether it runs, at what severity, and whether its fixes apply.
type ResolvedRule struct {
	// Rule is the underlying implementation.
	Rule Rule

	// Enabled reports whether the rule runs.
	Enabled bool

	// Severity is attached to every diagnostic the rule emits.
	Severity config.Severity

	// AutoFix gates whether the rule's edits are collected.
	AutoFix bool

	// Config is the rule-specific configuration block, nil when absent.
	Config *config.RuleConfig
}

// ResolveRules works out the effective rule set for a run: rule defaults,
// then CLI enable/disable lists, then per-rule config blocks, then the fix
// filters. Only enabled rules are returned, in registry (ID) order.
func ResolveRules(registry *Registry, cfg *config.Config) []ResolvedRule {
	var resolved []ResolvedRule
	for _, rule := range registry.Rules() {
		if rr := resolveRule(rule, cfg); rr.Enabled {
			resolved = append(resolved, rr)
		}
	}
	return resolved
}

func resolveRule(rule Rule, cfg *config.Config) ResolvedRule {
	rr := ResolvedRule{
		Rule:     rule,
		Enabled:  rule.DefaultEnabled(),
		Severity: rule.DefaultSeverity(),
		AutoFix:  rule.CanFix(),
	}
	if cfg == nil {
		return rr
	}

	// CLI lists first; the per-rule config block below wins over both.
	if slices.Contains(cfg.EnableRules, rule.ID()) {
		rr.Enabled = true
	}
	if slices.Contains(cfg.DisableRules, rule.ID()) {
		rr.Enabled = false
	}

	if ruleCfg, ok := cfg.Rules[rule.ID()]; ok {
		rr.Config = &ruleCfg
		if ruleCfg.Enabled != nil {
			rr.Enabled = *ruleCfg.Enabled
		}
		if ruleCfg.Severity != nil {
			rr.Severity = config.Severity(*ruleCfg.Severity)
		}
		if ruleCfg.AutoFix != nil {
			rr.AutoFix = *ruleCfg.AutoFix && rule.CanFix()
		}
	}

	// --fix-rules narrows fixing to the listed rules.
	if len(cfg.FixRules) > 0 {
		rr.AutoFix = slices.Contains(cfg.FixRules, rule.ID()) && rule.CanFix()
	}

	// Without --fix nothing is applied, whatever the per-rule settings say.
	if !cfg.Fix {
		rr.AutoFix = false
	}

	return rr
}
