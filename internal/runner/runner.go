// internal/runner/runner.go
//
// The run driver: repeatedly asks a Solver for an action, applies it to
// the session, and stops when the puzzle is complete, the step budget is
// spent, or the solver gives up. A Pool executes many independent runs
// under a concurrency bound; each run owns its session exclusively, so
// runs share nothing mutable.

package runner

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bracketlab/arena/internal/game"
	"github.com/bracketlab/arena/internal/puzzles"
)

// Runner drives single runs to completion.
type Runner struct {
	MaxSteps int            // per-run action budget; <=0 means DefaultMaxSteps
	Log      zerolog.Logger // run-level progress logging
}

// Run drives solver against puzzle p until terminal and returns the run's
// result record. A solver or structural failure ends the run as failed
// (recorded, not retried); the result still carries whatever statistics
// accumulated.
func (r *Runner) Run(ctx context.Context, p puzzles.Puzzle, solver Solver) (Result, error) {
	sess := NewSession(p, r.MaxSteps)
	log := r.Log.With().
		Str("runId", sess.ID).
		Str("puzzle", p.ID).
		Str("solver", solver.Name()).
		Logger()

	for !sess.Exhausted() {
		if err := ctx.Err(); err != nil {
			return sess.Finish(false), err
		}

		clues, err := sess.ActiveClues()
		if err != nil {
			return sess.Finish(false), fmt.Errorf("parse display: %w", err)
		}
		if len(clues) == 0 {
			break
		}

		st := sess.Snapshot()
		act, err := solver.NextAction(ctx, View{
			Display:        sess.State().Display,
			ActiveClues:    clues,
			StepsTaken:     st.StepsTaken,
			StepsRemaining: sess.MaxSteps - st.StepsTaken,
		})
		if err == ErrNoAction {
			log.Info().Int("steps", st.StepsTaken).Msg("solver resigned")
			break
		}
		if err != nil {
			return sess.Finish(false), fmt.Errorf("solver %s: %w", solver.Name(), err)
		}

		out, err := applyAction(sess, act)
		if err == ErrBudgetExhausted {
			break
		}
		if err != nil {
			return sess.Finish(false), err
		}
		log.Debug().
			Str("action", string(act.Kind)).
			Str("expression", act.Expression).
			Bool("success", out.Success).
			Int("cluesRemaining", out.CluesRemaining).
			Msg("action applied")
	}

	completed, err := sess.Completed()
	if err != nil {
		return sess.Finish(false), err
	}
	res := sess.Finish(completed)
	log.Info().
		Bool("completed", completed).
		Int("score", res.Score).
		Str("rank", res.Rank).
		Int("steps", res.Stats.StepsTaken).
		Msg("run finished")
	return res, nil
}

// applyAction dispatches one solver action to the session.
func applyAction(sess *Session, act Action) (game.Outcome, error) {
	switch act.Kind {
	case ActionGuess:
		return sess.Guess(act.Expression, act.GuessText)
	case ActionHint:
		return sess.Hint(act.Expression)
	case ActionReveal:
		return sess.Reveal(act.Expression)
	default:
		return game.Outcome{}, fmt.Errorf("unknown action kind %q", act.Kind)
	}
}
