// Package pretty renders diagnostics, diffs, tables, and run summaries
// for human terminals. Everything goes through lipgloss styles so the
// same code paths produce plain text when color is off.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Basic ANSI palette (bright variants). Indexed colors let the user's
// terminal theme decide the exact shades.
const (
	ansiWhite  = lipgloss.Color("7")
	ansiGray   = lipgloss.Color("8")
	ansiRed    = lipgloss.Color("9")
	ansiGreen  = lipgloss.Color("10")
	ansiYellow = lipgloss.Color("11")
	ansiBlue   = lipgloss.Color("12")
	ansiCyan   = lipgloss.Color("14")
)

// Styles contains all styled renderers for CLI output.
type Styles struct {
	// Severity styles
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Diagnostic components
	FilePath   lipgloss.Style
	Location   lipgloss.Style
	RuleID     lipgloss.Style
	Message    lipgloss.Style
	Suggestion lipgloss.Style
	SourceLine lipgloss.Style
	Caret      lipgloss.Style

	// Diff styles
	DiffHeader  lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffAdd     lipgloss.Style
	DiffRemove  lipgloss.Style
	DiffContext lipgloss.Style

	// Summary styles
	SummaryTitle lipgloss.Style
	SummaryValue lipgloss.Style
	Success      lipgloss.Style
	Failure      lipgloss.Style

	// Table styles
	TableHeader    lipgloss.Style
	TableBorder    lipgloss.Style
	TableErrorRow  lipgloss.Style
	TableWarnRow   lipgloss.Style
	TableInfoRow   lipgloss.Style
	TableFixable   lipgloss.Style
	TableLegend    lipgloss.Style
	TableSeparator lipgloss.Style

	// Misc
	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// NewStyles builds the style set for the given color mode. With color
// off every style renders its input unchanged.
func NewStyles(colorEnabled bool) *Styles {
	if colorEnabled {
		return newColorStyles()
	}
	return newPlainStyles()
}

func newColorStyles() *Styles {
	var (
		plain = lipgloss.NewStyle()
		bold  = lipgloss.NewStyle().Bold(true)
		gray  = lipgloss.NewStyle().Foreground(ansiGray)
		red   = lipgloss.NewStyle().Foreground(ansiRed)
		green = lipgloss.NewStyle().Foreground(ansiGreen)
	)

	return &Styles{
		Error:   red.Bold(true),
		Warning: lipgloss.NewStyle().Foreground(ansiYellow).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(ansiBlue).Bold(true),

		FilePath:   bold,
		Location:   gray,
		RuleID:     gray,
		Message:    plain,
		Suggestion: green.Italic(true),
		SourceLine: lipgloss.NewStyle().Foreground(ansiWhite),
		Caret:      red,

		DiffHeader:  bold,
		DiffHunk:    lipgloss.NewStyle().Foreground(ansiCyan),
		DiffAdd:     green,
		DiffRemove:  red,
		DiffContext: gray,

		SummaryTitle: bold,
		SummaryValue: plain,
		Success:      green.Bold(true),
		Failure:      red.Bold(true),

		// Severity shows as row color rather than a column of its own.
		TableHeader:    bold.Foreground(ansiWhite),
		TableBorder:    gray,
		TableErrorRow:  red,
		TableWarnRow:   lipgloss.NewStyle().Foreground(ansiYellow),
		TableInfoRow:   lipgloss.NewStyle().Foreground(ansiBlue),
		TableFixable:   green,
		TableLegend:    gray.Italic(true),
		TableSeparator: gray,

		Dim:  gray,
		Bold: bold,
	}
}

func newPlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Error:          plain,
		Warning:        plain,
		Info:           plain,
		FilePath:       plain,
		Location:       plain,
		RuleID:         plain,
		Message:        plain,
		Suggestion:     plain,
		SourceLine:     plain,
		Caret:          plain,
		DiffHeader:     plain,
		DiffHunk:       plain,
		DiffAdd:        plain,
		DiffRemove:     plain,
		DiffContext:    plain,
		SummaryTitle:   plain,
		SummaryValue:   plain,
		Success:        plain,
		Failure:        plain,
		TableHeader:    plain,
		TableBorder:    plain,
		TableErrorRow:  plain,
		TableWarnRow:   plain,
		TableInfoRow:   plain,
		TableFixable:   plain,
		TableLegend:    plain,
		TableSeparator: plain,
		Dim:            plain,
		Bold:           plain,
	}
}

// IsColorEnabled resolves a color mode ("auto", "always", "never")
// against the destination writer. "always" wins even under NO_COLOR so
// piping through a pager still works; anything unrecognized behaves
// like "auto", which requires a terminal and an unset NO_COLOR
// (https://no-color.org/).
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		return writerIsTerminal(writer)
	}
}

func writerIsTerminal(writer io.Writer) bool {
	f, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
