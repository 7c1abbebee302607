package lint

import (
	"context"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/fix"
	"github.com/yaklabco/marklint/pkg/lint/refs"
	"github.com/yaklabco/marklint/pkg/mdcontext"
	"github.com/yaklabco/marklint/pkg/workspace"
)

// RuleContext carries everything one rule invocation needs. It is built per
// rule per file and discarded afterwards, which is why it may hold the
// context.Context as a field; Cancelled() exposes it to rule loops.
type RuleContext struct {
	// Ctx is the context for cancellation and timeouts.
	Ctx context.Context

	// Doc is the shared structural context for the document. Rules read it
	// concurrently; it is never mutated after construction.
	Doc *mdcontext.Context

	// FilePath is the path of the file being linted, used for diagnostics.
	FilePath string

	// Config is the resolved configuration.
	Config *config.Config

	// RuleConfig is the rule-specific configuration (may be nil).
	RuleConfig *config.RuleConfig

	// Builder accumulates text edits for auto-fix.
	Builder *fix.EditBuilder

	// Registry provides access to the rule registry for name lookups.
	Registry *Registry

	// Workspace provides cross-file caches (file existence, project link
	// validation). May be nil when linting standalone content.
	Workspace *workspace.Workspace

	// refCtx is the cached reference context, lazily initialized.
	refCtx *refs.Context
}

// NewRuleContext creates a RuleContext for the given document and configuration.
func NewRuleContext(
	ctx context.Context,
	doc *mdcontext.Context,
	filePath string,
	cfg *config.Config,
	ruleCfg *config.RuleConfig,
) *RuleContext {
	return &RuleContext{
		Ctx:        ctx,
		Doc:        doc,
		FilePath:   filePath,
		Config:     cfg,
		RuleConfig: ruleCfg,
		Builder:    fix.NewEditBuilder(),
	}
}

// Cancelled reports whether the run has been cancelled. Rules with long
// per-line loops check it periodically.
func (rc *RuleContext) Cancelled() bool {
	return rc.Ctx.Err() != nil
}

// Option returns the raw rule option for key, or defaultValue when the rule
// has no configuration or the key is absent.
func (rc *RuleContext) Option(key string, defaultValue any) any {
	if rc.RuleConfig == nil || rc.RuleConfig.Options == nil {
		return defaultValue
	}
	if v, ok := rc.RuleConfig.Options[key]; ok {
		return v
	}
	return defaultValue
}

// OptionInt returns an integer option. Decoded config may carry numbers as
// int, int64, or float64 depending on the source format; all three coerce.
func (rc *RuleContext) OptionInt(key string, defaultValue int) int {
	switch val := rc.Option(key, defaultValue).(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	default:
		return defaultValue
	}
}

// OptionString returns a string option, or the default.
func (rc *RuleContext) OptionString(key string, defaultValue string) string {
	if s, ok := rc.Option(key, defaultValue).(string); ok {
		return s
	}
	return defaultValue
}

// OptionBool returns a boolean option, or the default.
func (rc *RuleContext) OptionBool(key string, defaultValue bool) bool {
	if b, ok := rc.Option(key, defaultValue).(bool); ok {
		return b
	}
	return defaultValue
}

// OptionStringSlice returns a string-slice option, or the default. Decoded
// TOML and JSON deliver lists as []any; string elements are kept and other
// element types are dropped.
func (rc *RuleContext) OptionStringSlice(key string, defaultValue []string) []string {
	switch val := rc.Option(key, defaultValue).(type) {
	case []string:
		return val
	case []any:
		strs := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				strs = append(strs, s)
			}
		}
		if len(strs) > 0 {
			return strs
		}
	}
	return defaultValue
}

// RefContext returns the reference context for this file, building it lazily.
// It holds the link and image usages, reference definitions, and document
// anchors that the reference-tracking rules share.
func (rc *RuleContext) RefContext() *refs.Context {
	if rc.refCtx == nil {
		rc.refCtx = refs.Collect(rc.Doc, rc.FilePath)
	}
	return rc.refCtx
}
