package puzzles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracketlab/arena/assets"
	"github.com/bracketlab/arena/internal/game"
)

// TestParse_EmbeddedCatalog verifies the shipped defaults decode, validate,
// and carry usable answer keys.
func TestParse_EmbeddedCatalog(t *testing.T) {
	raw, err := assets.PuzzlesJSON()
	require.NoError(t, err)
	ps, err := Parse(raw)
	require.NoError(t, err)
	require.NotEmpty(t, ps)
	for _, p := range ps {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.PuzzleDate)
		clues, err := game.ExtractActiveClues(p.InitialPuzzle)
		require.NoError(t, err, p.ID)
		assert.NotEmpty(t, clues, p.ID)
	}
}

// TestParse_EmbeddedCatalogSolvable verifies every embedded puzzle can be
// revealed to completion, proving key coverage for every expression that
// ever becomes active.
func TestParse_EmbeddedCatalogSolvable(t *testing.T) {
	raw, err := assets.PuzzlesJSON()
	require.NoError(t, err)
	ps, err := Parse(raw)
	require.NoError(t, err)

	for _, p := range ps {
		st := p.NewState()
		key := p.Key()
		for steps := 0; steps < 100; steps++ {
			clues, err := game.ExtractActiveClues(st.Display)
			require.NoError(t, err, p.ID)
			if len(clues) == 0 {
				break
			}
			out, next, err := game.Reveal(st, key, clues[0].Expression)
			require.NoError(t, err, p.ID)
			require.True(t, out.Success, "%s: no key entry for active clue [%s]", p.ID, clues[0].Expression)
			st = next
		}
		assert.NotContains(t, st.Display, "[", p.ID)
		assert.Equal(t, 1.0, st.Completion(), p.ID)
	}
}

// TestParse_Invalid verifies structural and shape errors are rejected.
func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"bad json", `{not json`},
		{"empty catalog", `[]`},
		{"missing id", `[{"puzzleDate":"2025-01-01","initialPuzzle":"[x]","solutions":{"x":"y"}}]`},
		{"unbalanced", `[{"id":"p","initialPuzzle":"[x","solutions":{"x":"y"}}]`},
		{"empty key", `[{"id":"p","initialPuzzle":"[x]","solutions":{}}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.raw))
			assert.Error(t, err)
		})
	}
}

// TestLookups verifies Init populates the ID/date/index lookups.
func TestLookups(t *testing.T) {
	require.NoError(t, Init())
	require.NotZero(t, Stats())

	first := All()[0]
	got, err := ByID(first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	got, err = ByDate(first.PuzzleDate)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	got, err = AtIndex(0)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = ByID("missing")
	assert.Error(t, err)
	_, err = ByDate("1900-01-01")
	assert.Error(t, err)
	_, err = AtIndex(-1)
	assert.Error(t, err)
}
