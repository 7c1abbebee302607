package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/marklint/internal/logging"
	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/lint/rules"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0644

// initFlags holds the flags for the init command.
type initFlags struct {
	force        bool
	full         bool
	withDefaults bool
	format       string
	output       string
	pack         string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new marklint configuration file",
		Long: `Create a new .marklint.yml configuration file in the current directory
with sensible defaults. The file can be customized to enable/disable rules,
change severities, and configure other options.

Examples:
  marklint init                   Create minimal .marklint.yml
  marklint init --full            Create full config with all rules documented
  marklint init --pack strict     Seed the rules section from the strict pack
  marklint init --format json     Create .marklint.json instead
  marklint init --output custom.yml  Write to a custom file path`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "Generate full template with all rules documented")
	cmd.Flags().BoolVar(&flags.withDefaults, "with-defaults", false, "Write each rule's default settings uncommented (with --full)")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "Output format: yaml or json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: .marklint.yml or .marklint.json)")
	cmd.Flags().StringVar(&flags.pack, "pack", "", "Seed the rules section from a built-in pack: "+strings.Join(rules.PackNames(), ", "))

	return cmd
}

func runInit(flags *initFlags) error {
	logger := logging.NewInteractive()

	// Validate format
	if flags.format != "yaml" && flags.format != "json" {
		return fmt.Errorf("invalid format %q: must be yaml or json", flags.format)
	}

	// Resolve the pack before touching the filesystem so a typo never
	// leaves a half-written config behind.
	var seed map[string]config.RuleConfig
	var seedNote string
	if flags.pack != "" {
		if flags.full {
			return errors.New("--pack and --full cannot be combined")
		}
		pack := rules.PackByName(flags.pack)
		if pack == nil {
			return fmt.Errorf("unknown pack %q (available: %s)", flags.pack, strings.Join(rules.PackNames(), ", "))
		}
		seed = pack.Rules
		seedNote = fmt.Sprintf("Rules seeded from the %s pack: %s", pack.Name, pack.Description)
	}

	// Determine output path
	outputPath := flags.output
	if outputPath == "" {
		if flags.format == "json" {
			outputPath = ".marklint.json"
		} else {
			outputPath = ".marklint.yml"
		}
	}

	// Make path absolute
	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); err == nil {
		if !flags.force {
			return fmt.Errorf("file %q already exists; use --force to overwrite", outputPath)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, outputPath)
	}

	// Generate template
	opts := config.TemplateOptions{
		Full:            flags.full,
		Format:          flags.format,
		IncludeDefaults: flags.withDefaults,
		SeedRules:       seed,
		SeedComment:     seedNote,
	}

	content, err := config.GenerateTemplate(opts)
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	// Write file
	if err := os.WriteFile(absPath, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)

	switch {
	case flags.pack != "":
		logger.Info("rules seeded from pack", "pack", flags.pack)
	case flags.full:
		logger.Info("full template includes all rules with documentation")
	}

	logger.Info("customize your configuration by editing the file")
	logger.Info("run 'marklint rules' to see all available rules")

	return nil
}
