package lint_test

import (
	"testing"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/lint"
)

const (
	ruleAlpha = "MD101"
	ruleBeta  = "MD102"
)

// testRule is a plain default-enabled rule.
type testRule struct {
	lint.BaseRule
}

func newTestRule(id string, canFix bool) *testRule {
	return &testRule{
		BaseRule: lint.NewBaseRule(id, id+"-name", "", nil, canFix),
	}
}

// optInRule stays off unless configuration turns it on.
type optInRule struct {
	lint.BaseRule
}

func (r *optInRule) DefaultEnabled() bool { return false }

func newOptInRule(id string) *optInRule {
	return &optInRule{
		BaseRule: lint.NewBaseRule(id, id+"-name", "", nil, false),
	}
}

// resolveIDs runs ResolveRules and returns the enabled rule IDs in order.
func resolveIDs(registry *lint.Registry, cfg *config.Config) []string {
	resolved := lint.ResolveRules(registry, cfg)
	ids := make([]string, 0, len(resolved))
	for _, rr := range resolved {
		ids = append(ids, rr.Rule.ID())
	}
	return ids
}

func TestResolveRules_Defaults(t *testing.T) {
	t.Parallel()

	t.Run("empty registry", func(t *testing.T) {
		t.Parallel()

		resolved := lint.ResolveRules(lint.NewRegistry(), config.NewConfig())
		if len(resolved) != 0 {
			t.Errorf("expected no rules, got %d", len(resolved))
		}
	})

	t.Run("default-enabled rules run with default severity", func(t *testing.T) {
		t.Parallel()

		registry := lint.NewRegistry()
		registry.Register(newTestRule(ruleAlpha, true))
		registry.Register(newTestRule(ruleBeta, false))

		resolved := lint.ResolveRules(registry, config.NewConfig())
		if len(resolved) != 2 {
			t.Fatalf("expected 2 rules, got %d", len(resolved))
		}
		for _, rr := range resolved {
			if rr.Severity != config.SeverityWarning {
				t.Errorf("%s severity = %v, want warning", rr.Rule.ID(), rr.Severity)
			}
			if rr.AutoFix {
				t.Errorf("%s AutoFix = true without --fix", rr.Rule.ID())
			}
		}
	})
}

func TestResolveRules_EnableDisable(t *testing.T) {
	t.Parallel()

	t.Run("CLI disable removes a rule", func(t *testing.T) {
		t.Parallel()

		registry := lint.NewRegistry()
		registry.Register(newTestRule(ruleAlpha, false))
		registry.Register(newTestRule(ruleBeta, false))

		cfg := config.NewConfig()
		cfg.DisableRules = []string{ruleAlpha}

		ids := resolveIDs(registry, cfg)
		if len(ids) != 1 || ids[0] != ruleBeta {
			t.Errorf("resolved = %v, want [%s]", ids, ruleBeta)
		}
	})

	t.Run("config disable removes a rule", func(t *testing.T) {
		t.Parallel()

		registry := lint.NewRegistry()
		registry.Register(newTestRule(ruleAlpha, false))

		cfg := config.NewConfig()
		off := false
		cfg.Rules[ruleAlpha] = config.RuleConfig{Enabled: &off}

		if ids := resolveIDs(registry, cfg); len(ids) != 0 {
			t.Errorf("resolved = %v, want none", ids)
		}
	})

	t.Run("config enable overrides CLI disable", func(t *testing.T) {
		t.Parallel()

		registry := lint.NewRegistry()
		registry.Register(newTestRule(ruleAlpha, false))

		cfg := config.NewConfig()
		cfg.DisableRules = []string{ruleAlpha}
		on := true
		cfg.Rules[ruleAlpha] = config.RuleConfig{Enabled: &on}

		if ids := resolveIDs(registry, cfg); len(ids) != 1 {
			t.Errorf("resolved = %v, want [%s]", ids, ruleAlpha)
		}
	})

	t.Run("opt-in rule stays off by default", func(t *testing.T) {
		t.Parallel()

		registry := lint.NewRegistry()
		registry.Register(newOptInRule(ruleAlpha))

		if ids := resolveIDs(registry, config.NewConfig()); len(ids) != 0 {
			t.Errorf("resolved = %v, want none", ids)
		}
	})

	t.Run("CLI enable turns an opt-in rule on", func(t *testing.T) {
		t.Parallel()

		registry := lint.NewRegistry()
		registry.Register(newOptInRule(ruleAlpha))

		cfg := config.NewConfig()
		cfg.EnableRules = []string{ruleAlpha}

		if ids := resolveIDs(registry, cfg); len(ids) != 1 {
			t.Errorf("resolved = %v, want [%s]", ids, ruleAlpha)
		}
	})

	t.Run("config enable turns an opt-in rule on", func(t *testing.T) {
		t.Parallel()

		registry := lint.NewRegistry()
		registry.Register(newOptInRule(ruleAlpha))

		cfg := config.NewConfig()
		on := true
		cfg.Rules[ruleAlpha] = config.RuleConfig{Enabled: &on}

		if ids := resolveIDs(registry, cfg); len(ids) != 1 {
			t.Errorf("resolved = %v, want [%s]", ids, ruleAlpha)
		}
	})
}

func TestResolveRules_SeverityOverride(t *testing.T) {
	t.Parallel()

	registry := lint.NewRegistry()
	registry.Register(newTestRule(ruleAlpha, false))

	cfg := config.NewConfig()
	asError := string(config.SeverityError)
	cfg.Rules[ruleAlpha] = config.RuleConfig{Severity: &asError}

	resolved := lint.ResolveRules(registry, cfg)
	if len(resolved) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(resolved))
	}
	if resolved[0].Severity != config.SeverityError {
		t.Errorf("Severity = %v, want error", resolved[0].Severity)
	}
}

func TestResolveRules_AutoFix(t *testing.T) {
	t.Parallel()

	t.Run("off without the fix flag", func(t *testing.T) {
		t.Parallel()

		registry := lint.NewRegistry()
		registry.Register(newTestRule(ruleAlpha, true))

		cfg := config.NewConfig()
		cfg.Fix = false

		resolved := lint.ResolveRules(registry, cfg)
		if len(resolved) != 1 {
			t.Fatalf("expected 1 rule, got %d", len(resolved))
		}
		if resolved[0].AutoFix {
			t.Error("AutoFix = true, want false without --fix")
		}
	})

	t.Run("on with the fix flag", func(t *testing.T) {
		t.Parallel()

		registry := lint.NewRegistry()
		registry.Register(newTestRule(ruleAlpha, true))

		cfg := config.NewConfig()
		cfg.Fix = true

		resolved := lint.ResolveRules(registry, cfg)
		if len(resolved) != 1 {
			t.Fatalf("expected 1 rule, got %d", len(resolved))
		}
		if !resolved[0].AutoFix {
			t.Error("AutoFix = false, want true with --fix")
		}
	})

	t.Run("per-rule config can veto fixing", func(t *testing.T) {
		t.Parallel()

		registry := lint.NewRegistry()
		registry.Register(newTestRule(ruleAlpha, true))

		cfg := config.NewConfig()
		cfg.Fix = true
		noFix := false
		cfg.Rules[ruleAlpha] = config.RuleConfig{AutoFix: &noFix}

		resolved := lint.ResolveRules(registry, cfg)
		if len(resolved) != 1 {
			t.Fatalf("expected 1 rule, got %d", len(resolved))
		}
		if resolved[0].AutoFix {
			t.Error("AutoFix = true, want false when vetoed by config")
		}
	})

	t.Run("never on for rules that cannot fix", func(t *testing.T) {
		t.Parallel()

		registry := lint.NewRegistry()
		registry.Register(newTestRule(ruleAlpha, false))

		cfg := config.NewConfig()
		cfg.Fix = true
		on := true
		cfg.Rules[ruleAlpha] = config.RuleConfig{AutoFix: &on}

		resolved := lint.ResolveRules(registry, cfg)
		if len(resolved) != 1 {
			t.Fatalf("expected 1 rule, got %d", len(resolved))
		}
		if resolved[0].AutoFix {
			t.Error("AutoFix = true for a rule without fix support")
		}
	})
}

func TestResolveRules_FixRulesFilter(t *testing.T) {
	t.Parallel()

	registry := lint.NewRegistry()
	registry.Register(newTestRule(ruleAlpha, true))
	registry.Register(newTestRule(ruleBeta, true))

	cfg := config.NewConfig()
	cfg.Fix = true
	cfg.FixRules = []string{ruleAlpha}

	resolved := lint.ResolveRules(registry, cfg)
	if len(resolved) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(resolved))
	}

	// Both rules still lint; only the listed one fixes.
	for _, rr := range resolved {
		switch rr.Rule.ID() {
		case ruleAlpha:
			if !rr.AutoFix {
				t.Errorf("%s AutoFix = false, want true", ruleAlpha)
			}
		case ruleBeta:
			if rr.AutoFix {
				t.Errorf("%s AutoFix = true, want false outside --fix-rules", ruleBeta)
			}
		default:
			t.Errorf("unexpected rule %s", rr.Rule.ID())
		}
	}
}

func TestResolveRules_NilConfig(t *testing.T) {
	t.Parallel()

	registry := lint.NewRegistry()
	registry.Register(newTestRule(ruleAlpha, true))

	resolved := lint.ResolveRules(registry, nil)
	if len(resolved) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(resolved))
	}
	if resolved[0].Severity != config.SeverityWarning {
		t.Errorf("Severity = %v, want warning", resolved[0].Severity)
	}
	// Without any config the rule keeps its intrinsic fix capability.
	if !resolved[0].AutoFix {
		t.Error("AutoFix = false, want true for a fixable rule under nil config")
	}
}

func TestResolvedRule_ConfigPresent(t *testing.T) {
	t.Parallel()

	registry := lint.NewRegistry()
	registry.Register(newTestRule(ruleAlpha, false))

	cfg := config.NewConfig()
	cfg.Rules[ruleAlpha] = config.RuleConfig{
		Options: map[string]any{"max_length": 80},
	}

	resolved := lint.ResolveRules(registry, cfg)
	if len(resolved) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(resolved))
	}
	if resolved[0].Config == nil {
		t.Fatal("Config = nil, want the per-rule block")
	}
	if got := resolved[0].Config.Options["max_length"]; got != 80 {
		t.Errorf("max_length = %v, want 80", got)
	}
}
