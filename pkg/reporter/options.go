package reporter

import (
	"io"
	"os"

	"github.com/yaklabco/marklint/pkg/config"
)

// bufWriterSize is the buffer size for buffered output writers.
const bufWriterSize = 64 * 1024

// Options configures reporter behavior.
type Options struct {
	// Writer receives formatted output, ErrorWriter receives errors.
	// They default to stdout and stderr.
	Writer      io.Writer
	ErrorWriter io.Writer

	// Format selects the output format.
	Format Format

	// Color controls colorized output: "auto", "always" or "never".
	Color string

	// ShowContext includes the offending source line under each
	// diagnostic.
	ShowContext bool

	// ShowSummary appends aggregate statistics after the results.
	ShowSummary bool

	// GroupByFile groups diagnostics under one header per file.
	GroupByFile bool

	// Compact switches to minified output where the format has one.
	Compact bool

	// PerFile renders a separate table per file (table format only).
	PerFile bool

	// RuleFormat controls how rule identifiers appear in output.
	RuleFormat config.RuleFormat

	// SummaryOrder controls which summary table prints first.
	SummaryOrder config.SummaryOrder

	// WorkingDir is the directory paths are made relative to for
	// display. Empty keeps them as given.
	WorkingDir string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:       os.Stdout,
		ErrorWriter:  os.Stderr,
		Format:       FormatText,
		Color:        "auto",
		ShowContext:  true,
		ShowSummary:  true,
		GroupByFile:  true,
		RuleFormat:   config.RuleFormatName,
		SummaryOrder: config.SummaryOrderRules,
	}
}
