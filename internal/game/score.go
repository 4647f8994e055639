// internal/game/score.go
//
// Scoring engine for a completed (or abandoned) puzzle run.
// Responsibilities:
//   - Convert accumulated penalty counts into a 0-100 score.
//   - Map the score onto the named rank ladder, with the all-clean gate
//     on the top rank.
//   - Report the next rank up and the point gap to it.
//
// Weights and thresholds are fixed game constants, not configuration.

package game

// Penalty weights per action category.
const (
	peekPenalty       = 5  // hint: first letter disclosed
	megaPeekPenalty   = 15 // reveal: full answer disclosed
	wrongGuessPenalty = 2  // each guess that resolved nothing
	baseScore         = 100
)

// rankLadder maps minimum scores to rank names, ascending. A score earns
// the highest rung whose threshold it meets.
var rankLadder = []struct {
	Threshold int
	Name      string
}{
	{0, "Tourist"},
	{11, "Commuter"},
	{21, "Resident"},
	{31, "Council Member"},
	{51, "Chief of Police"},
	{68, "Mayor"},
	{79, "Power Broker"},
	{91, "Kingmaker"},
	{100, "Puppet Master"},
}

// ScoreDetails is the full scoring breakdown for a run.
type ScoreDetails struct {
	BaseScore         int    `json:"baseScore"`
	PeekPenalty       int    `json:"peekPenalty"`
	MegaPeekPenalty   int    `json:"megaPeekPenalty"`
	WrongGuessPenalty int    `json:"wrongGuessPenalty"`
	FinalScore        int    `json:"finalScore"`
	Rank              string `json:"rank"`
	NextRank          string `json:"nextRank,omitempty"`
	PointsToNextRank  int    `json:"pointsToNextRank,omitempty"`
}

// Score computes the final score and rank from penalty counts.
//
// peeks and megaPeeks are set sizes (hinted/revealed expressions), so a
// clue peeked twice costs one penalty. wrongGuesses is total guesses minus
// correct guesses, floored at zero.
//
// "Puppet Master" demands a clean 100: every peek, mega-peek, or wrong
// guess locks the ceiling at "Kingmaker" even if arithmetic says 100.
func Score(peeks, megaPeeks, wrongGuesses int) ScoreDetails {
	if peeks < 0 {
		peeks = 0
	}
	if megaPeeks < 0 {
		megaPeeks = 0
	}
	if wrongGuesses < 0 {
		wrongGuesses = 0
	}

	d := ScoreDetails{
		BaseScore:         baseScore,
		PeekPenalty:       peeks * peekPenalty,
		MegaPeekPenalty:   megaPeeks * megaPeekPenalty,
		WrongGuessPenalty: wrongGuesses * wrongGuessPenalty,
	}
	d.FinalScore = clampScore(baseScore - d.PeekPenalty - d.MegaPeekPenalty - d.WrongGuessPenalty)

	clean := peeks == 0 && megaPeeks == 0 && wrongGuesses == 0
	idx := 0
	for i, r := range rankLadder {
		if d.FinalScore >= r.Threshold {
			idx = i
		}
	}
	if idx == len(rankLadder)-1 && !clean {
		idx-- // 100 with penalties on the books is still only Kingmaker
	}
	d.Rank = rankLadder[idx].Name
	if idx < len(rankLadder)-1 {
		next := rankLadder[idx+1]
		d.NextRank = next.Name
		d.PointsToNextRank = next.Threshold - d.FinalScore
	}
	return d
}

// Finalize scores a finished run, applying the completion gate: a run that
// ended with clues still active reports score 0 and rank "Tourist" no matter
// what the arithmetic says. The penalty breakdown is kept for reporting.
func Finalize(peeks, megaPeeks, wrongGuesses int, completed bool) ScoreDetails {
	d := Score(peeks, megaPeeks, wrongGuesses)
	if !completed {
		d.FinalScore = 0
		d.Rank = rankLadder[0].Name
		d.NextRank = rankLadder[1].Name
		d.PointsToNextRank = rankLadder[1].Threshold
	}
	return d
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > baseScore {
		return baseScore
	}
	return v
}
