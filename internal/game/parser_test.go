package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExtract_Flat verifies extraction of sibling clues in document order.
func TestExtract_Flat(t *testing.T) {
	clues, err := ExtractActiveClues("go to [the big apple] and see [lady liberty] today")
	require.NoError(t, err)
	require.Len(t, clues, 2)
	assert.Equal(t, "the big apple", clues[0].Expression)
	assert.Equal(t, "lady liberty", clues[1].Expression)
	assert.Equal(t, "[the big apple]", clues[0].RawText)
}

// TestExtract_NoBrackets verifies a fully resolved document yields nothing.
func TestExtract_NoBrackets(t *testing.T) {
	clues, err := ExtractActiveClues("all done here")
	require.NoError(t, err)
	assert.Empty(t, clues)
}

// TestExtract_NestedOnlyInnermost verifies an outer span is not active
// while a nested span remains inside it.
func TestExtract_NestedOnlyInnermost(t *testing.T) {
	doc := "The capital of [France] is [the seat of [the French government]]."
	clues, err := ExtractActiveClues(doc)
	require.NoError(t, err)
	require.Len(t, clues, 2)
	assert.Equal(t, "France", clues[0].Expression)
	assert.Equal(t, "the French government", clues[1].Expression)
}

// TestExtract_DeepNesting verifies arbitrary depth resolves to the single
// innermost clue with correct absolute offsets.
func TestExtract_DeepNesting(t *testing.T) {
	doc := "x[a[b[c[d]e]f]g]y"
	clues, err := ExtractActiveClues(doc)
	require.NoError(t, err)
	require.Len(t, clues, 1)
	assert.Equal(t, "d", clues[0].Expression)
	assert.Equal(t, "[d]", doc[clues[0].Start:clues[0].End])
}

// TestExtract_Offsets verifies Start/End slice back to RawText for every
// clue, including ones found through recursion.
func TestExtract_Offsets(t *testing.T) {
	doc := "[one] and [two [three] four] and [five]"
	clues, err := ExtractActiveClues(doc)
	require.NoError(t, err)
	require.Len(t, clues, 3)
	for _, c := range clues {
		assert.Equal(t, c.RawText, doc[c.Start:c.End])
		assert.Equal(t, "["+c.Expression+"]", c.RawText)
	}
	assert.Equal(t, []string{"one", "three", "five"},
		[]string{clues[0].Expression, clues[1].Expression, clues[2].Expression})
}

// TestExtract_NonOverlapping verifies returned spans never overlap and the
// document still balances after replacing each span with a placeholder.
func TestExtract_NonOverlapping(t *testing.T) {
	doc := "[a][b [c] d][e[f][g]]"
	clues, err := ExtractActiveClues(doc)
	require.NoError(t, err)
	require.NotEmpty(t, clues)
	for i := 1; i < len(clues); i++ {
		assert.GreaterOrEqual(t, clues[i].Start, clues[i-1].End, "spans must not overlap")
	}
	// Replace innermost spans right to left; result must still parse.
	replaced := doc
	for i := len(clues) - 1; i >= 0; i-- {
		replaced = replaced[:clues[i].Start] + "#" + replaced[clues[i].End:]
	}
	_, err = ExtractActiveClues(replaced)
	assert.NoError(t, err)
}

// TestExtract_Unbalanced verifies structural errors are reported, not
// silently skipped.
func TestExtract_Unbalanced(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"unclosed", "this [never ends"},
		{"stray close", "this ] is wrong"},
		{"unclosed nested", "a [b [c] d"},
		{"stray close after span", "[ok] but ] not"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractActiveClues(tc.doc)
			require.Error(t, err)
			var ub *ErrUnbalanced
			assert.ErrorAs(t, err, &ub)
		})
	}
}

// TestExtract_RepeatedResolutionTerminates verifies that resolving every
// active clue and re-parsing strictly shrinks the bracket count until the
// document is bracket-free.
func TestExtract_RepeatedResolutionTerminates(t *testing.T) {
	doc := "[a[b][c[d]]] then [e] and [f[g]]"
	sols := Key{"a": "A", "b": "B", "c": "C", "d": "D", "e": "E", "f": "F", "g": "G"}
	// Expressions change as inner text resolves, so solve by span, not name.
	for pass := 0; pass < 20; pass++ {
		clues, err := ExtractActiveClues(doc)
		require.NoError(t, err)
		if len(clues) == 0 {
			break
		}
		before := strings.Count(doc, "[")
		// Replace right to left so earlier offsets stay valid within a pass.
		for i := len(clues) - 1; i >= 0; i-- {
			c := clues[i]
			sol, ok := sols[c.Expression]
			if !ok {
				sol = "?" // resolved inner text changed the expression
			}
			doc = doc[:c.Start] + sol + doc[c.End:]
		}
		assert.Less(t, strings.Count(doc, "["), before)
	}
	assert.NotContains(t, doc, "[")
	assert.NotContains(t, doc, "]")
}
