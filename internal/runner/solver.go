// internal/runner/solver.go
//
// The Solver interface is the boundary where a decision-maker (scripted,
// heuristic, or an external reasoning model) plugs into the run loop. The
// engine never sees a Solver; it only ever receives single actions.
//
// Two built-in solvers ship with the arena: Oracle (plays perfectly from
// the answer key, used to validate puzzle data) and Revealer (burns a
// reveal on every clue, the floor any real solver should beat).

package runner

import (
	"context"
	"errors"

	"github.com/bracketlab/arena/internal/game"
)

// ActionKind selects which engine operation a solver wants next.
type ActionKind string

const (
	ActionGuess  ActionKind = "guess"
	ActionHint   ActionKind = "hint"
	ActionReveal ActionKind = "reveal"
)

// Action is one step a solver asks the run loop to take.
type Action struct {
	Kind       ActionKind
	Expression string
	GuessText  string // guesses only
}

// View is what a solver sees before choosing an action: the current
// display, the actionable clues, and its step accounting. The answer key
// is never part of the view.
type View struct {
	Display        string
	ActiveClues    []game.Clue
	StepsTaken     int
	StepsRemaining int
}

// Solver picks the next action for a run. Implementations must be safe to
// call sequentially; the run loop never calls a solver concurrently with
// itself.
type Solver interface {
	Name() string
	NextAction(ctx context.Context, v View) (Action, error)
}

// ErrNoAction lets a solver resign: the run ends as incomplete rather
// than failed.
var ErrNoAction = errors.New("solver has no action to offer")

// Oracle answers the first active clue straight from the answer key. It
// exists to validate puzzle catalogs (a puzzle the Oracle cannot finish
// has a broken key) and to exercise the loop in tests.
type Oracle struct {
	Key game.Key
}

func (o Oracle) Name() string { return "oracle" }

func (o Oracle) NextAction(ctx context.Context, v View) (Action, error) {
	for _, c := range v.ActiveClues {
		if sol, ok := o.Key[c.Expression]; ok {
			return Action{Kind: ActionGuess, Expression: c.Expression, GuessText: sol}, nil
		}
	}
	return Action{}, ErrNoAction
}

// Revealer reveals the first active clue every turn: a zero-intelligence
// baseline that completes any well-keyed puzzle at maximum penalty.
type Revealer struct {
	Key game.Key
}

func (r Revealer) Name() string { return "revealer" }

func (r Revealer) NextAction(ctx context.Context, v View) (Action, error) {
	for _, c := range v.ActiveClues {
		if _, ok := r.Key[c.Expression]; ok {
			return Action{Kind: ActionReveal, Expression: c.Expression}, nil
		}
	}
	return Action{}, ErrNoAction
}
