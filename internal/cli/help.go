// Package cli provides the Cobra command structure for marklint.
package cli

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yaklabco/marklint/internal/ui/pretty"
)

// helpPalette holds the Lipgloss styles used when rendering command help.
// With color disabled every entry is the zero style, so rendering is a
// pass-through.
type helpPalette struct {
	command     lipgloss.Style
	heading     lipgloss.Style
	subcommand  lipgloss.Style
	flag        lipgloss.Style
	description lipgloss.Style
	example     lipgloss.Style
	alias       lipgloss.Style
	dim         lipgloss.Style
}

func newHelpPalette(colorEnabled bool) helpPalette {
	if !colorEnabled {
		return helpPalette{}
	}
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	return helpPalette{
		command:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		heading:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		subcommand:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		flag:        lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		description: lipgloss.NewStyle(),
		example:     muted,
		alias:       muted,
		dim:         muted,
	}
}

// HelpFormatter renders styled usage and help text for Cobra commands.
type HelpFormatter struct {
	palette helpPalette
}

// NewHelpFormatter creates a help formatter honoring the color mode for
// the given writer.
func NewHelpFormatter(colorMode string, writer io.Writer) *HelpFormatter {
	return &HelpFormatter{
		palette: newHelpPalette(pretty.IsColorEnabled(colorMode, writer)),
	}
}

// Template sections, concatenated into the full usage template. Cobra
// feeds the command itself as template data.
const (
	usageHead = `{{ styleHeading "Usage:" }}
  {{if .Runnable}}{{ styleCommand .UseLine }}{{end}}
  {{if .HasAvailableSubCommands}}{{ styleCommand .CommandPath }} [command]{{end}}
`

	usageAliases = `
{{- if gt (len .Aliases) 0}}

{{ styleHeading "Aliases:" }}
  {{ styleAlias (join .Aliases ", ") }}
{{- end}}
`

	usageExamples = `
{{- if .HasExample}}

{{ styleHeading "Examples:" }}
{{ styleExample .Example }}
{{- end}}
`

	usageSubcommands = `
{{- if .HasAvailableSubCommands}}

{{ styleHeading "Available Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ styleSubcommand (rpad .Name .NamePadding) }} {{ styleDescription .Short }}{{end}}{{end}}
{{- end}}
`

	usageFlags = `
{{- if .HasAvailableLocalFlags}}

{{ styleHeading "Flags:" }}
{{ styleFlagsUsage .LocalFlags }}
{{- end}}

{{- if .HasAvailableInheritedFlags}}

{{ styleHeading "Global Flags:" }}
{{ styleFlagsUsage .InheritedFlags }}
{{- end}}
`

	usageTrailer = `
{{- if .HasHelpSubCommands}}

{{ styleHeading "Additional help topics:" }}{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{ styleSubcommand (rpad .CommandPath .CommandPathPadding) }} {{ styleDescription .Short }}{{end}}{{end}}
{{- end}}

{{- if .HasAvailableSubCommands}}

Use "{{ styleCommand (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`
)

func (h *HelpFormatter) usageTemplate() string {
	return usageHead + usageAliases + usageExamples + usageSubcommands + usageFlags + usageTrailer
}

func (h *HelpFormatter) helpTemplate() string {
	return `{{if or .Runnable .HasSubCommands}}{{ styleCommand .CommandPath }}{{if .Version}} {{ styleDim .Version }}{{end}}

{{end}}{{with (or .Long .Short)}}{{ . | trimTrailingWhitespaces }}

{{end}}` + h.usageTemplate()
}

func (h *HelpFormatter) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"styleCommand":            h.palette.command.Render,
		"styleHeading":            h.palette.heading.Render,
		"styleSubcommand":         h.palette.subcommand.Render,
		"styleFlag":               h.palette.flag.Render,
		"styleDescription":        h.palette.description.Render,
		"styleExample":            h.palette.example.Render,
		"styleAlias":              h.palette.alias.Render,
		"styleDim":                h.palette.dim.Render,
		"styleFlagsUsage":         h.styleFlagsUsage,
		"join":                    strings.Join,
		"rpad":                    rpad,
		"trimTrailingWhitespaces": trimTrailingWhitespaces,
	}
}

// flagDescGap matches the run of spaces pflag puts between a flag's
// definition and its description.
var flagDescGap = regexp.MustCompile(`\S( {2,})\S`)

// styleFlagsUsage restyles the pflag FlagUsages block line by line.
func (h *HelpFormatter) styleFlagsUsage(flags any) string {
	src, ok := flags.(interface{ FlagUsages() string })
	if !ok {
		return ""
	}
	usages := src.FlagUsages()
	if usages == "" {
		return ""
	}

	lines := strings.Split(strings.TrimSuffix(usages, "\n"), "\n")
	for idx, line := range lines {
		lines[idx] = h.styleFlagLine(line)
	}
	return strings.Join(lines, "\n")
}

// styleFlagLine colors the flag tokens and description of one usage line.
// Lines that do not look like "  -f, --flag type   description" pass
// through untouched.
func (h *HelpFormatter) styleFlagLine(line string) string {
	if strings.TrimSpace(line) == "" {
		return line
	}

	body := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(body)]

	loc := flagDescGap.FindStringSubmatchIndex(body)
	if loc == nil {
		return line
	}
	flagPart := body[:loc[2]]
	descPart := body[loc[3]:]

	return indent + h.styleFlagTokens(flagPart) + "   " + h.palette.description.Render(descPart)
}

// styleFlagTokens colors "-f," and "--flag" tokens and dims type names.
func (h *HelpFormatter) styleFlagTokens(flagPart string) string {
	tokens := strings.Fields(flagPart)
	for idx, token := range tokens {
		if strings.HasPrefix(token, "-") {
			bare := strings.TrimSuffix(token, ",")
			styled := h.palette.flag.Render(bare)
			if bare != token {
				styled += ","
			}
			tokens[idx] = styled
			continue
		}
		tokens[idx] = h.palette.dim.Render(token)
	}
	return strings.Join(tokens, " ")
}

// ApplyToCommand installs the styled help and usage rendering on a Cobra
// command tree.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	funcs := h.templateFuncs()

	cmd.SetUsageTemplate(h.usageTemplate())
	cmd.SetHelpTemplate(h.helpTemplate())

	cmd.SetUsageFunc(func(command *cobra.Command) error {
		tmpl, err := template.New("usage").Funcs(funcs).Parse(h.usageTemplate())
		if err != nil {
			return fmt.Errorf("parse usage template: %w", err)
		}
		return tmpl.Execute(command.OutOrStdout(), command)
	})

	cmd.SetHelpFunc(func(command *cobra.Command, _ []string) {
		tmpl, err := template.New("help").Funcs(funcs).Parse(h.helpTemplate())
		if err != nil {
			command.PrintErrln(err)
			return
		}
		if err := tmpl.Execute(command.OutOrStdout(), command); err != nil {
			command.PrintErrln(err)
		}
	})
}

// rpad pads a string with spaces on the right up to the given width.
func rpad(str string, padding int) string {
	if len(str) >= padding {
		return str
	}
	return str + strings.Repeat(" ", padding-len(str))
}

// trimTrailingWhitespaces strips trailing spaces and tabs from each line.
func trimTrailingWhitespaces(s string) string {
	lines := strings.Split(s, "\n")
	for idx, line := range lines {
		lines[idx] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
