package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/lint"
)

// Runner drives a lint.Pipeline across many files concurrently.
type Runner struct {
	// Pipeline performs the per-file work, including write safety.
	Pipeline *lint.Pipeline
}

// New returns a Runner backed by the given pipeline.
func New(pipeline *lint.Pipeline) *Runner {
	return &Runner{Pipeline: pipeline}
}

// Run discovers files per opts and processes each one on a worker pool sized
// by opts.Jobs. Outcomes are folded into the Result in discovery order, so
// output is deterministic regardless of worker scheduling. A cancelled
// context returns the partial Result alongside the error.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files: make([]FileOutcome, 0, len(files)),
		Stats: newStats(),
	}
	result.Stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return result, nil
	}

	workers := opts.Jobs
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(files))

	// Workers read the config concurrently; snapshot it so the caller
	// mutating their copy cannot race the run.
	cfg := opts.Config.Clone()
	pipelineOpts := lint.PipelineOptionsFromConfig(cfg)

	paths := make(chan string)
	outcomes := make(chan FileOutcome)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, paths, outcomes, cfg, pipelineOpts)
		}()
	}

	go func() {
		defer close(paths)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case paths <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	// Workers finish out of order; index by path and replay in discovery
	// order.
	byPath := make(map[string]FileOutcome, len(files))
	for outcome := range outcomes {
		byPath[outcome.Path] = outcome
	}
	for _, path := range files {
		if outcome, ok := byPath[path]; ok {
			result.accumulate(outcome)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	return result, nil
}

func (r *Runner) worker(
	ctx context.Context,
	paths <-chan string,
	outcomes chan<- FileOutcome,
	cfg *config.Config,
	opts lint.PipelineOptions,
) {
	for path := range paths {
		if ctx.Err() != nil {
			return
		}

		outcome := FileOutcome{Path: path}
		if pr, err := r.Pipeline.ProcessFile(ctx, path, cfg, opts); err != nil {
			outcome.Error = err
		} else {
			outcome.Result = pr
		}

		select {
		case <-ctx.Done():
			return
		case outcomes <- outcome:
		}
	}
}
