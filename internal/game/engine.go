// internal/game/engine.go
//
// Action engine for the bracket puzzle.
// Responsibilities:
//   - Guess: match submitted text against the solutions of the currently
//     active clues and splice the answer into the display on success.
//   - Hint: disclose the first letter of an active clue's solution.
//   - Reveal: splice the full solution in without a guess.
//   - Track solved/hinted/revealed expressions via set semantics so
//     repeated actions never double-count.
//
// All three operations take the current State explicitly and return a new
// one; nothing in this package holds state between calls, so a caller can
// drive the engine in a tight loop and retry any call safely.

package game

import (
	"fmt"
	"strings"
)

// Guess checks guessText against the solutions of all currently active
// clues and, on a match, resolves the first matching clue in document order.
//
// Matching is case-insensitive and whitespace-trimmed, and deliberately not
// limited to the clue named by expression: a correct answer for any active
// clue is accepted even when the caller misattributed it. The spliced text
// always uses the answer key's casing, not the guess's.
//
// On a miss the prior state is returned untouched; expression only shapes
// the failure message (incorrect guess vs. stale/unknown target).
func Guess(st State, key Key, expression, guessText string) (Outcome, State, error) {
	clues, err := ExtractActiveClues(st.Display)
	if err != nil {
		return Outcome{}, st, err
	}

	want := normalizeAnswer(guessText)
	for _, c := range clues {
		sol, ok := key[c.Expression]
		if !ok || normalizeAnswer(sol) != want {
			continue
		}
		next, remaining, err := resolve(st, c, sol)
		if err != nil {
			return Outcome{}, st, err
		}
		return Outcome{
			Success:        true,
			Message:        fmt.Sprintf("correct: %q solves [%s]", sol, c.Expression),
			DisplayState:   next.Display,
			CluesRemaining: remaining,
			Expression:     c.Expression,
		}, next, nil
	}

	// No active clue wanted that answer. Classify the failure.
	out := Outcome{DisplayState: st.Display, CluesRemaining: len(clues)}
	if c, ok := findActive(clues, expression); ok {
		if _, hasKey := key[c.Expression]; hasKey {
			out.Message = fmt.Sprintf("incorrect guess for [%s]", expression)
		} else {
			out.Message = fmt.Sprintf("no solution found for [%s]", expression)
		}
	} else {
		out.Message = fmt.Sprintf("no active clue for [%s]", expression)
	}
	return out, st, nil
}

// Hint returns the first letter of the solution for an active clue.
//
// The display is untouched; the expression is recorded in the hinted set,
// so peeking the same clue twice costs a single penalty (set semantics are
// the contract, callers count len(Hinted) rather than calls).
func Hint(st State, key Key, expression string) (Outcome, State, error) {
	clues, err := ExtractActiveClues(st.Display)
	if err != nil {
		return Outcome{}, st, err
	}
	if _, ok := findActive(clues, expression); !ok {
		return Outcome{
			Message:        fmt.Sprintf("no active clue for [%s]", expression),
			DisplayState:   st.Display,
			CluesRemaining: len(clues),
		}, st, nil
	}
	sol, ok := key[expression]
	if !ok || sol == "" {
		return Outcome{
			Message:        fmt.Sprintf("no solution found for [%s]", expression),
			DisplayState:   st.Display,
			CluesRemaining: len(clues),
		}, st, nil
	}

	next := st.clone()
	next.Hinted[expression] = true
	first := string([]rune(sol)[0])
	return Outcome{
		Success:        true,
		Message:        fmt.Sprintf("hint for [%s]: starts with %q", expression, first),
		DisplayState:   next.Display,
		CluesRemaining: len(clues),
		Expression:     expression,
		Hint:           first,
	}, next, nil
}

// Reveal resolves an active clue without a guess, splicing the solution in
// exactly as a correct guess would. The expression lands in both the solved
// and revealed sets; there is no wrong reveal once the preconditions pass.
func Reveal(st State, key Key, expression string) (Outcome, State, error) {
	clues, err := ExtractActiveClues(st.Display)
	if err != nil {
		return Outcome{}, st, err
	}
	c, ok := findActive(clues, expression)
	if !ok {
		return Outcome{
			Message:        fmt.Sprintf("no active clue for [%s]", expression),
			DisplayState:   st.Display,
			CluesRemaining: len(clues),
		}, st, nil
	}
	sol, ok := key[expression]
	if !ok {
		return Outcome{
			Message:        fmt.Sprintf("no solution found for [%s]", expression),
			DisplayState:   st.Display,
			CluesRemaining: len(clues),
		}, st, nil
	}

	next, remaining, err := resolve(st, c, sol)
	if err != nil {
		return Outcome{}, st, err
	}
	next.Revealed[c.Expression] = true
	return Outcome{
		Success:        true,
		Message:        fmt.Sprintf("revealed [%s]: %q", c.Expression, sol),
		DisplayState:   next.Display,
		CluesRemaining: remaining,
		Expression:     c.Expression,
		Solution:       sol,
	}, next, nil
}

// resolve splices solution over the clue's span and marks it solved,
// returning the new state and the count of clues still active in it.
func resolve(st State, c Clue, solution string) (State, int, error) {
	next := st.clone()
	next.Display = st.Display[:c.Start] + solution + st.Display[c.End:]
	next.Solved[c.Expression] = true

	after, err := ExtractActiveClues(next.Display)
	if err != nil {
		return st, 0, err
	}
	return next, len(after), nil
}

// normalizeAnswer is the equivalence used for guess matching: surrounding
// whitespace ignored, case ignored. Nothing smarter; the engine does not
// judge natural-language equivalence.
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
