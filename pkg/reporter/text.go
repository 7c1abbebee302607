package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/marklint/internal/ui/pretty"
	"github.com/yaklabco/marklint/pkg/lint"
	"github.com/yaklabco/marklint/pkg/mdcontext"
	"github.com/yaklabco/marklint/pkg/runner"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(ctx context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No files to check."))
		}
		return 0, nil
	}

	var totalIssues int

	if r.opts.GroupByFile {
		totalIssues = r.reportGrouped(ctx, result)
	} else {
		totalIssues = r.reportFlat(ctx, result)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return totalIssues, nil
}

// reportGrouped writes diagnostics under one header per file.
func (r *TextReporter) reportGrouped(_ context.Context, result *runner.Result) int {
	var total int

	for _, file := range result.Files {
		diags := r.fileDiagnostics(file)
		if len(diags) == 0 {
			continue
		}

		fmt.Fprintln(r.bw, r.styles.FormatFileHeader(file.Path, len(diags)))
		total += r.writeDiagnostics(file, diags)
		fmt.Fprintln(r.bw)
	}

	return total
}

// reportFlat writes diagnostics as one continuous stream.
func (r *TextReporter) reportFlat(_ context.Context, result *runner.Result) int {
	var total int

	for _, file := range result.Files {
		total += r.writeDiagnostics(file, r.fileDiagnostics(file))
	}

	return total
}

// fileDiagnostics reports a failed file inline and returns nil for it;
// healthy files yield their diagnostics.
func (r *TextReporter) fileDiagnostics(file runner.FileOutcome) []lint.Diagnostic {
	if file.Error != nil {
		fmt.Fprintf(r.bw, "%s: %s\n",
			r.styles.FilePath.Render(file.Path),
			r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
		)
		return nil
	}
	if file.Result == nil || file.Result.FileResult == nil {
		return nil
	}
	return file.Result.Diagnostics
}

func (r *TextReporter) writeDiagnostics(file runner.FileOutcome, diags []lint.Diagnostic) int {
	for i := range diags {
		diag := &diags[i]

		var sourceLine string
		if r.opts.ShowContext && file.Result.Doc != nil {
			sourceLine = sourceLineFor(file.Result.Doc, diag.StartLine)
		}

		fmt.Fprint(r.bw, r.styles.FormatDiagnostic(diag, r.opts.ShowContext, sourceLine, r.opts.RuleFormat))
	}
	return len(diags)
}

// sourceLineFor returns the 1-based line a diagnostic points at, read from
// the document's line table.
func sourceLineFor(doc *mdcontext.Context, lineNum int) string {
	content := lint.LineContent(doc, lineNum-1)
	if content == nil {
		return ""
	}
	return string(content)
}
