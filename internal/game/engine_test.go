package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPuzzle() (State, Key) {
	doc := "The capital of [France] is [the seat of [the French government]]."
	key := Key{
		"France":                              "France",
		"the seat of [the French government]": "Paris",
		"the French government":               "France's government",
		"the seat of France's government":     "Paris",
	}
	return NewState(doc, len(key)), key
}

// TestGuess_Correct verifies a correct guess splices the key's casing into
// the display and records the expression as solved.
func TestGuess_Correct(t *testing.T) {
	st, key := testPuzzle()
	out, next, err := Guess(st, key, "France", "france")
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "France", out.Expression)
	assert.Contains(t, next.Display, "capital of France is")
	assert.True(t, next.Solved["France"])
	// Prior state untouched.
	assert.False(t, st.Solved["France"])
	assert.Contains(t, st.Display, "[France]")
}

// TestGuess_NormalizesCaseAndWhitespace verifies "  PARIS " matches a
// stored "Paris".
func TestGuess_NormalizesCaseAndWhitespace(t *testing.T) {
	st := NewState("go to [the city of light] now", 1)
	key := Key{"the city of light": "Paris"}
	out, next, err := Guess(st, key, "the city of light", "  PARIS ")
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "go to Paris now", next.Display)
}

// TestGuess_MatchesAnyActiveClue verifies the cross-clue rule: a guess
// naming one clue but answering another still resolves the other, first in
// document order.
func TestGuess_MatchesAnyActiveClue(t *testing.T) {
	st := NewState("[first clue] and [second clue]", 2)
	key := Key{"first clue": "alpha", "second clue": "beta"}
	out, next, err := Guess(st, key, "first clue", "beta")
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "second clue", out.Expression)
	assert.Equal(t, "[first clue] and beta", next.Display)
}

// TestGuess_Incorrect verifies a wrong guess for a real active clue leaves
// the display byte-identical and reports an incorrect-guess outcome.
func TestGuess_Incorrect(t *testing.T) {
	st, key := testPuzzle()
	out, next, err := Guess(st, key, "France", "Germany")
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Contains(t, out.Message, "incorrect guess")
	assert.Equal(t, st.Display, next.Display)
	assert.Empty(t, next.Solved)
}

// TestGuess_InactiveTarget verifies guessing at a nested (not yet active)
// clue fails without touching state.
func TestGuess_InactiveTarget(t *testing.T) {
	st, key := testPuzzle()
	// Outer clue is not active while its inner clue is unresolved.
	out, next, err := Guess(st, key, "the seat of [the French government]", "wrong")
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Contains(t, out.Message, "no active clue")
	assert.Equal(t, st.Display, next.Display)
}

// TestGuess_MissingKeyEntry verifies an active clue without a key entry is
// a data-integrity failure, not a crash, and changes nothing.
func TestGuess_MissingKeyEntry(t *testing.T) {
	st := NewState("only [orphan clue] here", 1)
	out, next, err := Guess(st, Key{}, "orphan clue", "anything")
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Contains(t, out.Message, "no solution found")
	assert.Equal(t, st.Display, next.Display)
}

// TestGuess_ExposesNestedClue verifies the §8-style scenario: solving the
// inner clue makes the previously nested outer clue active.
func TestGuess_ExposesNestedClue(t *testing.T) {
	st, key := testPuzzle()

	out, st2, err := Guess(st, key, "the French government", "france's government")
	require.NoError(t, err)
	require.True(t, out.Success)

	clues, err := ExtractActiveClues(st2.Display)
	require.NoError(t, err)
	exprs := make([]string, len(clues))
	for i, c := range clues {
		exprs[i] = c.Expression
	}
	assert.Contains(t, exprs, "the seat of France's government")

	out, st3, err := Guess(st2, key, "the seat of France's government", "Paris")
	require.NoError(t, err)
	require.True(t, out.Success)

	out, st4, err := Guess(st3, key, "France", "France")
	require.NoError(t, err)
	require.True(t, out.Success)
	assert.Equal(t, "The capital of France is Paris.", st4.Display)
	assert.Zero(t, out.CluesRemaining)
}

// TestHint_ReturnsFirstLetter verifies the hint payload and that the
// display is untouched while the hinted set grows.
func TestHint_ReturnsFirstLetter(t *testing.T) {
	st, key := testPuzzle()
	out, next, err := Hint(st, key, "France")
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "F", out.Hint)
	assert.Equal(t, st.Display, next.Display)
	assert.True(t, next.Hinted["France"])
	assert.False(t, st.Hinted["France"])
}

// TestHint_Idempotent verifies hinting the same clue twice keeps the set
// at one entry, so penalty accounting cannot double-count.
func TestHint_Idempotent(t *testing.T) {
	st, key := testPuzzle()
	_, st2, err := Hint(st, key, "France")
	require.NoError(t, err)
	_, st3, err := Hint(st2, key, "France")
	require.NoError(t, err)
	assert.Len(t, st3.Hinted, 1)
}

// TestHint_Failures verifies the inactive-target and missing-answer cases.
func TestHint_Failures(t *testing.T) {
	st := NewState("[known] and [orphan]", 2)
	key := Key{"known": "yes"}

	out, next, err := Hint(st, key, "nonexistent")
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Contains(t, out.Message, "no active clue")
	assert.Empty(t, next.Hinted)

	out, next, err = Hint(st, key, "orphan")
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Contains(t, out.Message, "no solution found")
	assert.Empty(t, next.Hinted)
}

// TestReveal_SplicesSolution verifies reveal behaves like a correct guess
// plus membership in both solved and revealed sets.
func TestReveal_SplicesSolution(t *testing.T) {
	st, key := testPuzzle()
	out, next, err := Reveal(st, key, "France")
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "France", out.Solution)
	assert.Contains(t, next.Display, "capital of France is")
	assert.True(t, next.Solved["France"])
	assert.True(t, next.Revealed["France"])
}

// TestReveal_TwiceFails verifies revealing an already-resolved clue fails
// (no longer active) and does not double-add to the revealed set.
func TestReveal_TwiceFails(t *testing.T) {
	st, key := testPuzzle()
	_, st2, err := Reveal(st, key, "France")
	require.NoError(t, err)

	out, st3, err := Reveal(st2, key, "France")
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Contains(t, out.Message, "no active clue")
	assert.Len(t, st3.Revealed, 1)
	assert.Equal(t, st2.Display, st3.Display)
}

// TestActions_StructuralError verifies a broken display surfaces the
// parse error through every operation.
func TestActions_StructuralError(t *testing.T) {
	st := NewState("broken [clue", 1)
	key := Key{"clue": "x"}

	_, _, err := Guess(st, key, "clue", "x")
	assert.Error(t, err)
	_, _, err = Hint(st, key, "clue")
	assert.Error(t, err)
	_, _, err = Reveal(st, key, "clue")
	assert.Error(t, err)
}
