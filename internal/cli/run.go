// internal/cli/run.go
//
// `arena run` evaluates a built-in solver against one puzzle or a whole
// catalog, using the same run loop and scoring as the server, and prints
// one JSON result record per run.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bracketlab/arena/internal/puzzles"
	"github.com/bracketlab/arena/internal/runner"
)

var (
	runPuzzleID    string
	runSolverName  string
	runMaxSteps    int
	runConcurrency int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a solver against puzzles and print scored results",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		if runPuzzleID != "" {
			catalog = filterByID(catalog, runPuzzleID)
			if len(catalog) == 0 {
				return fmt.Errorf("puzzle %q not in catalog", runPuzzleID)
			}
		}

		jobs := make([]runner.Job, 0, len(catalog))
		for _, p := range catalog {
			solver, err := solverFor(runSolverName, p)
			if err != nil {
				return err
			}
			jobs = append(jobs, runner.Job{Puzzle: p, Solver: solver})
		}

		pool := &runner.Pool{
			Runner:      runner.Runner{MaxSteps: runMaxSteps, Log: log.Logger},
			Concurrency: runConcurrency,
		}
		reports := pool.RunAll(context.Background(), jobs)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		failures := 0
		for _, rep := range reports {
			if rep.Err != nil {
				failures++
				log.Error().Err(rep.Err).Str("puzzle", rep.Result.PuzzleID).Msg("run failed")
			}
			if err := enc.Encode(rep.Result); err != nil {
				return err
			}
		}
		if failures > 0 {
			return fmt.Errorf("%d of %d runs failed", failures, len(reports))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runPuzzleID, "puzzle", "", "run a single puzzle by ID (default: whole catalog)")
	runCmd.Flags().StringVar(&runSolverName, "solver", "oracle", "solver to evaluate (oracle, revealer)")
	runCmd.Flags().IntVar(&runMaxSteps, "max-steps", runner.DefaultMaxSteps, "per-run action budget")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 4, "runs in flight at once")
	rootCmd.AddCommand(runCmd)
}

// loadCatalog returns the puzzle catalog from --puzzles or the embedded set.
func loadCatalog() ([]puzzles.Puzzle, error) {
	if puzzlesFile != "" {
		return puzzles.LoadFile(puzzlesFile)
	}
	if err := puzzles.Init(); err != nil {
		return nil, err
	}
	return puzzles.All(), nil
}

func filterByID(catalog []puzzles.Puzzle, id string) []puzzles.Puzzle {
	for _, p := range catalog {
		if p.ID == id {
			return []puzzles.Puzzle{p}
		}
	}
	return nil
}

// solverFor maps a --solver flag value to a built-in solver for p.
func solverFor(name string, p puzzles.Puzzle) (runner.Solver, error) {
	switch name {
	case "oracle":
		return runner.Oracle{Key: p.Key()}, nil
	case "revealer":
		return runner.Revealer{Key: p.Key()}, nil
	default:
		return nil, fmt.Errorf("unknown solver %q (want oracle or revealer)", name)
	}
}
