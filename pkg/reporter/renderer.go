package reporter

import (
	"context"

	"github.com/yaklabco/marklint/pkg/analysis"
)

// Renderer turns an analysis.Report into formatted output. Renderers
// hold no state beyond their options; aggregation happens upstream in
// the analysis package.
type Renderer interface {
	// Render writes the formatted report to the configured output.
	Render(ctx context.Context, report *analysis.Report) error
}
