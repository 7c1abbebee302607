// Package config holds the plain configuration types shared across
// marklint. Nothing here touches Viper or the filesystem; loading and
// merging live in internal/configloader.
package config

// Severity is the level attached to a lint diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// RuleConfig is the per-rule section of a config file. Pointer fields
// distinguish "unset" from an explicit false or empty value so later
// layers can merge without clobbering.
type RuleConfig struct {
	Enabled  *bool          `mapstructure:"enabled" yaml:"enabled" toml:"enabled"`
	Severity *string        `mapstructure:"severity" yaml:"severity" toml:"severity"`
	AutoFix  *bool          `mapstructure:"auto_fix" yaml:"auto_fix" toml:"auto_fix"`
	Options  map[string]any `mapstructure:"options" yaml:"options" toml:"options"`
}

// BackupsConfig controls how originals are preserved before a fix
// rewrites them.
type BackupsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" toml:"enabled"`
	Mode    string `mapstructure:"mode" yaml:"mode" toml:"mode"` // "sidecar" or "xdg"
}

// Config is the root configuration. The first group of fields round-
// trips through config files; the rest exist only for the lifetime of
// a CLI invocation and never serialize.
type Config struct {
	// Dialect selects the Markdown dialect used to build structural
	// context. Per-file extensions (.mdx, .qmd) may override it.
	Dialect Dialect `mapstructure:"dialect" yaml:"dialect" toml:"dialect"`

	// SeverityDefault applies to rules whose config names no severity.
	SeverityDefault string `mapstructure:"severity_default" yaml:"severity_default" toml:"severity_default"`

	// Rules holds per-rule settings keyed by rule ID ("MD009").
	Rules map[string]RuleConfig `mapstructure:"rules" yaml:"rules" toml:"rules"`

	// Ignore lists glob patterns for paths to skip during discovery.
	Ignore []string `mapstructure:"ignore" yaml:"ignore" toml:"ignore"`

	// Backups configures how originals are kept when fixing.
	Backups BackupsConfig `mapstructure:"backups" yaml:"backups" toml:"backups"`

	// CLI-only fields below. None of these persist.

	// Fix applies generated edits instead of just reporting them.
	Fix bool `mapstructure:"-" yaml:"-" toml:"-"`

	// DryRun computes fixes and shows diffs without writing files.
	DryRun bool `mapstructure:"-" yaml:"-" toml:"-"`

	// Format selects the output renderer.
	Format OutputFormat `mapstructure:"-" yaml:"-" toml:"-"`

	// RuleFormat controls how rule identifiers print.
	RuleFormat RuleFormat `mapstructure:"-" yaml:"-" toml:"-"`

	// Jobs caps the worker count; zero means GOMAXPROCS.
	Jobs int `mapstructure:"-" yaml:"-" toml:"-"`

	// EnableRules and DisableRules force rules on or off regardless of
	// file config. FixRules narrows fixing to the listed rules.
	EnableRules  []string `mapstructure:"-" yaml:"-" toml:"-"`
	DisableRules []string `mapstructure:"-" yaml:"-" toml:"-"`
	FixRules     []string `mapstructure:"-" yaml:"-" toml:"-"`

	// NoBackups skips backup creation when fixing.
	NoBackups bool `mapstructure:"-" yaml:"-" toml:"-"`

	// NoInlineConfig ignores <!-- marklint-disable --> comments.
	NoInlineConfig bool `mapstructure:"-" yaml:"-" toml:"-"`
}

// NewConfig returns the defaults every load starts from.
func NewConfig() *Config {
	return &Config{
		Dialect:         DialectStandard,
		SeverityDefault: string(SeverityWarning),
		Rules:           make(map[string]RuleConfig),
		Backups: BackupsConfig{
			Enabled: true,
			Mode:    "sidecar",
		},
		Format:     FormatText,
		RuleFormat: RuleFormatName,
	}
}
