package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestScore_CleanRun verifies a penalty-free run scores 100 and earns the
// top rank with no next rank to chase.
func TestScore_CleanRun(t *testing.T) {
	d := Score(0, 0, 0)
	assert.Equal(t, 100, d.FinalScore)
	assert.Equal(t, "Puppet Master", d.Rank)
	assert.Empty(t, d.NextRank)
	assert.Zero(t, d.PointsToNextRank)
}

// TestScore_Bands verifies penalty arithmetic and threshold lookup across
// the ladder.
func TestScore_Bands(t *testing.T) {
	cases := []struct {
		name                    string
		peeks, megaPeeks, wrong int
		wantScore               int
		wantRank, wantNext      string
		wantGap                 int
	}{
		{"two peeks", 2, 0, 0, 90, "Power Broker", "Kingmaker", 1},
		{"one mega-peek", 0, 1, 0, 85, "Power Broker", "Kingmaker", 6},
		{"one wrong guess", 0, 0, 1, 98, "Kingmaker", "Puppet Master", 2},
		{"mixed", 1, 1, 2, 76, "Mayor", "Power Broker", 3},
		{"heavy reveals", 0, 5, 0, 25, "Resident", "Council Member", 6},
		{"floor", 10, 10, 10, 0, "Tourist", "Commuter", 11},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Score(tc.peeks, tc.megaPeeks, tc.wrong)
			assert.Equal(t, tc.wantScore, d.FinalScore)
			assert.Equal(t, tc.wantRank, d.Rank)
			assert.Equal(t, tc.wantNext, d.NextRank)
			assert.Equal(t, tc.wantGap, d.PointsToNextRank)
		})
	}
}

// TestScore_Breakdown verifies the per-category penalty fields.
func TestScore_Breakdown(t *testing.T) {
	d := Score(2, 1, 3)
	assert.Equal(t, 100, d.BaseScore)
	assert.Equal(t, 10, d.PeekPenalty)
	assert.Equal(t, 15, d.MegaPeekPenalty)
	assert.Equal(t, 6, d.WrongGuessPenalty)
	assert.Equal(t, 69, d.FinalScore)
	assert.Equal(t, "Mayor", d.Rank)
}

// TestScore_NegativeCountsClamped verifies defensive flooring of inputs.
func TestScore_NegativeCountsClamped(t *testing.T) {
	d := Score(-1, -2, -3)
	assert.Equal(t, 100, d.FinalScore)
	assert.Equal(t, "Puppet Master", d.Rank)
}

// TestFinalize_IncompleteForcesTourist verifies the completion gate: even a
// raw 100 reports as 0/Tourist when clues were left unsolved.
func TestFinalize_IncompleteForcesTourist(t *testing.T) {
	d := Finalize(0, 0, 0, false)
	assert.Equal(t, 0, d.FinalScore)
	assert.Equal(t, "Tourist", d.Rank)
	assert.Equal(t, "Commuter", d.NextRank)
	assert.Equal(t, 11, d.PointsToNextRank)
}

// TestFinalize_CompletePassesThrough verifies completion leaves the
// computed score intact.
func TestFinalize_CompletePassesThrough(t *testing.T) {
	d := Finalize(2, 0, 0, true)
	assert.Equal(t, 90, d.FinalScore)
	assert.Equal(t, "Power Broker", d.Rank)
}
