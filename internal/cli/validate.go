// internal/cli/validate.go
//
// `arena validate` checks a puzzle catalog: structural validity of every
// entry, then an oracle run per puzzle to prove the answer key covers the
// whole substitution chain. A puzzle the oracle cannot finish has a broken
// key and would be unwinnable for any solver.

package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bracketlab/arena/internal/puzzles"
	"github.com/bracketlab/arena/internal/runner"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a puzzle catalog's structure and key coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}

		r := &runner.Runner{Log: log.Logger}
		bad := 0
		for _, p := range catalog {
			if err := puzzles.Validate(p); err != nil {
				bad++
				log.Error().Err(err).Str("puzzle", p.ID).Msg("invalid puzzle")
				continue
			}
			res, err := r.Run(context.Background(), p, runner.Oracle{Key: p.Key()})
			if err != nil {
				bad++
				log.Error().Err(err).Str("puzzle", p.ID).Msg("oracle run failed")
				continue
			}
			if !res.Success {
				bad++
				log.Error().
					Str("puzzle", p.ID).
					Float64("completion", res.Stats.CompletionPercentage).
					Msg("answer key does not cover all clues")
				continue
			}
			log.Info().Str("puzzle", p.ID).Int("clues", res.Stats.TotalClues).Msg("ok")
		}
		if bad > 0 {
			return fmt.Errorf("%d of %d puzzles invalid", bad, len(catalog))
		}
		fmt.Printf("all %d puzzles valid\n", len(catalog))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
