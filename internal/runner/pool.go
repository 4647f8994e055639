// internal/runner/pool.go
//
// Bounded-concurrency execution of independent runs. Each job pairs a
// puzzle with a solver; the pool caps how many execute at once and records
// failed runs alongside successful ones without retrying.

package runner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/bracketlab/arena/internal/puzzles"
)

// Job is one puzzle/solver pairing to evaluate.
type Job struct {
	Puzzle puzzles.Puzzle
	Solver Solver
}

// Report wraps a job's result with its failure, if any. Err is non-nil
// only for run failures (solver error, structural error, cancellation);
// an incomplete-but-orderly run is a zero-score Result, not an error.
type Report struct {
	Result Result
	Err    error
}

// Pool runs jobs with at most Concurrency in flight.
type Pool struct {
	Runner      Runner
	Concurrency int // <=0 means serial
}

// RunAll executes every job and returns reports in job order. Jobs run
// independently; one failure cancels nothing else.
func (p *Pool) RunAll(ctx context.Context, jobs []Job) []Report {
	limit := p.Concurrency
	if limit <= 0 {
		limit = 1
	}

	reports := make([]Report, len(jobs))
	g := &errgroup.Group{}
	g.SetLimit(limit)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			res, err := p.Runner.Run(ctx, job.Puzzle, job.Solver)
			reports[i] = Report{Result: res, Err: err}
			return nil // failures are recorded per-report, never aborting the batch
		})
	}
	_ = g.Wait()
	return reports
}
